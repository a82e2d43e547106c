package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-ordering-service/config"
	"github.com/fekuna/omnipos-ordering-service/internal/auth"
	"github.com/fekuna/omnipos-ordering-service/internal/product"
	"github.com/fekuna/omnipos-ordering-service/internal/response"
	"github.com/fekuna/omnipos-ordering-service/internal/server"
	"github.com/fekuna/omnipos-ordering-service/pkg/broker"
	"github.com/fekuna/omnipos-ordering-service/pkg/cache"
	"github.com/fekuna/omnipos-ordering-service/pkg/i18n"
	"github.com/fekuna/omnipos-ordering-service/pkg/logger"
	"github.com/fekuna/omnipos-ordering-service/pkg/postgres"
	"github.com/fekuna/omnipos-ordering-service/pkg/search"

	cartH "github.com/fekuna/omnipos-ordering-service/internal/cart/handler"
	cartRepoPkg "github.com/fekuna/omnipos-ordering-service/internal/cart/repository"
	cartUCPkg "github.com/fekuna/omnipos-ordering-service/internal/cart/usecase"

	orderH "github.com/fekuna/omnipos-ordering-service/internal/order/handler"
	orderRepoPkg "github.com/fekuna/omnipos-ordering-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-ordering-service/internal/order/usecase"

	prodH "github.com/fekuna/omnipos-ordering-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-ordering-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-ordering-service/internal/product/usecase"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// prices go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Initialize i18n
	translator, err := i18n.New(cfg.I18n.DefaultLanguage)
	if err != nil {
		log.Fatalf("failed to load locales: %v", err)
	}

	// 4. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 6. Initialize Kafka Producer
	producer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	defer producer.Close()
	appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 7. Initialize Elasticsearch
	var searcher product.Searcher
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch, catalog search falls back to the database", zap.Error(err))
	} else {
		searcher = esClient
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 8. Initialize Repositories
	prodRepo := prodRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	cartRepo := cartRepoPkg.NewRedisRepository(redisClient.Client)

	// 9. Initialize UseCases
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, redisClient, searcher, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, producer, appLogger)
	cartUC := cartUCPkg.NewCartUseCase(cartRepo, prodUC, orderUC, redisClient, cartUCPkg.Options{
		SessionTTL:    cfg.Cart.SessionTTL,
		SubmitLockTTL: cfg.Cart.SubmitLockTTL,
	}, appLogger)

	// 10. Initialize Handlers
	resp := response.New(translator, appLogger)
	gate := auth.NewGate(cfg.Business.Password, resp)
	admin := gate.RequireBusiness()

	prodHandler := prodH.NewProductHandler(prodUC, resp, appLogger)
	orderHandler := orderH.NewOrderHandler(orderUC, resp, appLogger)
	cartHandler := cartH.NewCartHandler(cartUC, resp, appLogger)

	router := server.NewRouter(appLogger, db,
		func(api gin.IRouter) { prodHandler.Register(api, admin) },
		func(api gin.IRouter) { orderHandler.Register(api, admin) },
		cartHandler.Register,
		gate.Register,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start HTTP Server
	httpServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 12. Start gRPC probe server
	grpcPort := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcPort)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", grpcPort), zap.Error(err))
	}
	grpcServer := server.NewProbeServer(ctx, appLogger, db, 10*time.Second)
	go func() {
		appLogger.Info("Starting gRPC health server", zap.String("port", grpcPort))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
