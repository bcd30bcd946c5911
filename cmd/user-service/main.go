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
	"github.com/MikeMC777/ecom-returns/internal/user"
)

// @title                       User Service API
// @version                     1.0
// @description                 Accounts and bearer tokens.
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

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	svc := user.NewService(user.NewPGRepo(pool), tokens)
	srv := &http.Server{Addr: cfg.UserSvcAddr, Handler: newRouter(svc, tokens), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Printf("user-service listening on %s", cfg.UserSvcAddr)
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

func newRouter(svc userService, tokens httpx.TokenParser) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), httpx.Metrics("user-service"))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", httpx.MetricsHandler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.SwaggerInfouser.InstanceName())))

	r.POST("/auth/register", registerHandler(svc))
	r.POST("/auth/login", loginHandler(svc))

	me := r.Group("/users/me", httpx.Auth(tokens))
	me.GET("", meHandler(svc))
	me.DELETE("", deleteMeHandler(svc))
	return r
}
