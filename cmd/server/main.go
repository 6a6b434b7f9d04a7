package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snacket-be/internal/config"
	"snacket-be/internal/coupon"
	"snacket-be/internal/db"
	"snacket-be/internal/live"
	"snacket-be/internal/logger"
	"snacket-be/internal/menu"
	"snacket-be/internal/middleware"
	"snacket-be/internal/order"
	"snacket-be/internal/payment"
	"snacket-be/internal/payment/webhook"
	"snacket-be/internal/tracker"
	"snacket-be/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	gateway := payment.NewPhonePeGateway(payment.Config{
		BaseURL:     cfg.GatewayBaseURL,
		MerchantID:  cfg.GatewayMerchantID,
		SaltKey:     cfg.GatewaySaltKey,
		SaltIndex:   cfg.GatewaySaltIndex,
		RedirectURL: cfg.GatewayRedirectURL,
		CallbackURL: cfg.GatewayCallbackURL,
	})

	orderRepo := order.NewRepository(database)
	menuRepo := menu.NewRepository(database)
	couponRepo := coupon.NewRepository(database)
	userRepo := user.NewRepository(database)
	ledger := payment.NewCallbackLedger(database)

	broker := live.NewBroker(rdb, orderRepo)

	orderSvc := order.NewService(orderRepo, menuRepo, couponRepo, userRepo, gateway, broker)
	userSvc := user.NewService(userRepo, []byte(cfg.JWTSecret))

	orderHandler := order.NewHandler(orderSvc)
	userHandler := user.NewHandler(userSvc)
	trackHandler := tracker.NewHandler(tracker.NewResolver(orderRepo), orderRepo)
	callbackHandler := webhook.NewCallbackHandler(orderSvc, gateway, ledger)

	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.RateLimit)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/api/login", userHandler.Login)
	r.Post("/payment/callback", callbackHandler.HandleCallback)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth([]byte(cfg.JWTSecret)))

		r.Post("/api/checkout", orderHandler.Checkout)
		r.Get("/api/orders", orderHandler.List)
		r.Get("/api/orders/track", trackHandler.Track)
		r.Get("/api/orders/{orderID}", orderHandler.Detail)
		r.Get("/api/profile", userHandler.Profile)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.L().Info("server listening", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.L().Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.L().Error("server shutdown failed", zap.Error(err))
	}

	logger.L().Info("server stopped")
}
