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
	"github.com/MikeMC777/ecom-returns/internal/events"
	"github.com/MikeMC777/ecom-returns/internal/httpx"
	"github.com/MikeMC777/ecom-returns/internal/ledger"
	ord "github.com/MikeMC777/ecom-returns/internal/order"
	prod "github.com/MikeMC777/ecom-returns/internal/product"
)

// @title                       Order Service API
// @version                     1.0
// @description                 Orders, returns and the transaction ledger.
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

	opts := []ord.Option{ord.WithPaymentMethod(ledger.ParsePaymentMethod(cfg.DefaultPaymentMethod))}
	if cfg.RabbitMQURL != "" {
		pub, err := events.Dial(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			log.Printf("[events] disabled: %v", err)
		} else {
			defer pub.Close()
			opts = append(opts, ord.WithPublisher(pub))
		}
	}

	var catalog ord.Catalog = prod.NewPGRepo(pool)
	if cfg.ProductSvcBaseURL != "" {
		log.Printf("[order] reading prices from %s", cfg.ProductSvcBaseURL)
		catalog = ord.NewHTTPCatalog(cfg.ProductSvcBaseURL)
	}

	svc := ord.NewService(ord.NewPGStore(pool), catalog, opts...)
	r := newRouter(svc, ledger.NewPGRepo(pool), auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL))
	srv := &http.Server{Addr: cfg.OrderSvcAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Printf("order-service listening on %s", cfg.OrderSvcAddr)
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

func newRouter(svc orderService, txs ledger.Repository, tokens httpx.TokenParser) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), httpx.Metrics("order-service"))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", httpx.MetricsHandler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.SwaggerInfoorder.InstanceName())))

	api := r.Group("/", httpx.Auth(tokens))
	api.POST("/orders", createOrderHandler(svc))
	api.GET("/orders", listOrdersHandler(svc))
	api.GET("/orders/:id", getOrderHandler(svc))
	api.POST("/orders/returns", createReturnHandler(svc))
	api.GET("/transactions", listTransactionsHandler(txs))
	api.GET("/transactions/:id", getTransactionHandler(txs))

	admin := api.Group("/admin", httpx.RequireRole("ADMIN"))
	admin.PATCH("/orders/:id/status", updateOrderStatusHandler(svc))
	admin.PATCH("/returns/:id/status", updateReturnStatusHandler(svc))
	return r
}
