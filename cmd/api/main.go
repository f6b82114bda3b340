package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order-ledger/internal/core/cache"
	"order-ledger/internal/core/config"
	"order-ledger/internal/core/logger"
	"order-ledger/internal/core/server"
	accesshandler "order-ledger/internal/features/access/handler"
	ledger "order-ledger/internal/features/ledger/service"
	orderadapter "order-ledger/internal/features/orders/adapters"
	"order-ledger/internal/features/orders/domain"
	orderhandler "order-ledger/internal/features/orders/handler"
	"order-ledger/internal/features/orders/ports"
	orderservice "order-ledger/internal/features/orders/service"
	"order-ledger/internal/features/orders/synchronizer"
	stockadapter "order-ledger/internal/features/stock/adapters"
	stockhandler "order-ledger/internal/features/stock/handler"
	stockservice "order-ledger/internal/features/stock/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// @title Order Ledger API
// @version 1.0
// @description Console back end for order pricing, payment and refund ledgers, and live order synchronization.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	domain.SetStrictInvariants(!cfg.IsProduction())
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stock alerts
	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Invalid Redis configuration", zap.Error(err))
	}
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		l.Warn("Redis unreachable, stock alerts will fail until it recovers", zap.Error(err))
	}

	alertRepo := stockadapter.NewRedisAlertRepository(redisCache, time.Duration(cfg.Stock.AlertTTLSeconds)*time.Second)
	alertSvc := stockservice.NewAlertService(alertRepo, cfg.Stock.LowStockThreshold)
	alertHdl := stockhandler.NewAlertHandler(alertSvc)

	// Ledger events
	var publisher ports.LedgerEventPublisher = orderadapter.NopLedgerPublisher{}
	if len(cfg.Kafka.BrokerList()) > 0 {
		publisher = orderadapter.NewKafkaLedgerPublisher(cfg.Kafka)
		l.Info("Publishing ledger events", zap.Strings("brokers", cfg.Kafka.BrokerList()), zap.String("topic", cfg.Kafka.LedgerTopic))
	}
	defer publisher.Close()

	// Orders
	orderAPI := orderadapter.NewOrderAPIAdapter(cfg.OrdersAPI)
	sync := synchronizer.New(synchronizer.WithStockListener(alertSvc))
	orderSvc := orderservice.NewOrderService(
		orderAPI,
		sync,
		ledger.New(),
		publisher,
		orderservice.PricingDefaultsFromConfig(cfg.Pricing),
	)
	orderHdl := orderhandler.NewOrderHandler(orderSvc)

	if err := orderSvc.Load(ctx); err != nil {
		l.Warn("Initial order load failed, starting with an empty list", zap.Error(err))
	}

	if cfg.Push.URL != "" {
		channel := orderadapter.NewWebSocketChannel(cfg.Push, cfg.OrdersAPI.Token)
		if err := sync.Bind(ctx, channel); err != nil {
			l.Error("Push channel unavailable", zap.Error(err))
		}
		defer channel.Disconnect()
	} else {
		l.Warn("PUSH_URL not set, live order updates disabled")
	}

	srv := server.New(cfg, accesshandler.Middleware())

	// Register Routes
	orderHdl.Register(srv.API)
	alertHdl.Register(srv.API)

	go func() {
		<-ctx.Done()
		l.Info("Shutting down")
		if err := srv.Shutdown(); err != nil {
			l.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
