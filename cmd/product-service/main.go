package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/MikeMC777/ecom-returns/docs"
	"github.com/MikeMC777/ecom-returns/internal/auth"
	"github.com/MikeMC777/ecom-returns/internal/config"
	"github.com/MikeMC777/ecom-returns/internal/db"
	"github.com/MikeMC777/ecom-returns/internal/httpx"
	prod "github.com/MikeMC777/ecom-returns/internal/product"
)

// @title                       Product Service API
// @version                     1.0
// @description                 Catalog of merchant products with soft delete.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[db] %v", err)
	}
	defer pool.Close()

	r := newRouter(prod.NewPGRepo(pool), auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL))
	srv := &http.Server{Addr: cfg.ProductSvcAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Printf("product-service listening on %s", cfg.ProductSvcAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[http] %v", err)
		}
	}()
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		log.Printf("[http] shutdown: %v", err)
	}
}

func newRouter(repo prod.Repository, tokens httpx.TokenParser) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), httpx.Metrics("product-service"))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", httpx.MetricsHandler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.SwaggerInfoproduct.InstanceName())))

	r.GET("/products", listProductsHandler(repo))
	r.GET("/products/:id", getProductHandler(repo))

	w := r.Group("/products", httpx.Auth(tokens), httpx.RequireRole("MERCHANT", "ADMIN"))
	w.POST("", createProductHandler(repo))
	w.PUT("/:id", updateProductHandler(repo))
	w.DELETE("/:id", deleteProductHandler(repo))
	return r
}
