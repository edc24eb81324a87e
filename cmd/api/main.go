package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sommy-store/internal/config"
	"sommy-store/internal/database"
	"sommy-store/internal/handlers"
	"sommy-store/internal/infrastructure/notify"
	"sommy-store/internal/logger"
	"sommy-store/internal/repo"
	"sommy-store/internal/service"
	"sommy-store/internal/worker"

	"golang.org/x/sync/errgroup"
)

const notifyPoolSize = 10

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "sommy-store",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open()
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	var sink notify.Sink
	if cfg.RabbitMQURL != "" {
		rabbit, err := notify.NewRabbit(cfg.RabbitMQURL, cfg.RabbitMQQueue, notifyPoolSize)
		if err != nil {
			log.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer rabbit.Close()
		sink = rabbit
	} else {
		log.Warn("RABBITMQ_URL not set, order notifications stay in process")
		sink = notify.NewMemory()
	}

	cartRepo := repo.NewCartRepo(db)
	orderRepo := repo.NewOrderRepo(db)
	productRepo := repo.NewProductRepo(db)
	userRepo := repo.NewUserRepo(db)
	resetRepo := repo.NewPasswordResetRepo(db)

	router := handlers.NewRouter(handlers.RouterDeps{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		Health:         database.NewService(db),
		Auth:           service.NewAuthService(userRepo, resetRepo, cfg.JWTSecret, cfg.FrontendURL, log),
		Carts:          service.NewCartService(cartRepo),
		Orders:         service.NewOrderService(orderRepo, productRepo, userRepo, sink, log),
		Products:       service.NewProductService(productRepo),
		Log:            log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	refunds := worker.NewRefundWorker(orderRepo, cfg.RefundInterval, cfg.RefundGrace, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		refunds.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
