package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgdb "github.com/Skotchmaster/shopsplit/pkg/db"
	"github.com/Skotchmaster/shopsplit/pkg/events"
	"github.com/Skotchmaster/shopsplit/pkg/logging"
	"github.com/Skotchmaster/shopsplit/services/order/internal/config"
	"github.com/Skotchmaster/shopsplit/services/order/internal/httpserver"
	"github.com/Skotchmaster/shopsplit/services/order/internal/models"
	"github.com/Skotchmaster/shopsplit/services/order/internal/payment"
	"github.com/Skotchmaster/shopsplit/services/order/internal/repo"
	"github.com/Skotchmaster/shopsplit/services/order/internal/search"
	"github.com/Skotchmaster/shopsplit/services/order/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL, &models.Order{}, &models.OrderItem{})
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer pkgdb.Close(db)

	publisher := events.FromBrokers(cfg.KafkaBrokers, logger)
	defer publisher.Close()

	svc := &service.OrderService{
		Repo:     &repo.GormRepo{DB: db},
		Payments: payment.NewSimulated(cfg.PaymentSuccessRate, uint64(time.Now().UnixNano())),
		Events:   publisher,

		MaxPageSize: cfg.MaxPageSize,
	}

	if cfg.ESURL != "" {
		client, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Warn("elasticsearch disabled", "error", err)
		} else {
			svc.Indexer = search.NewIndexer(client)
		}
	}

	e := httpserver.NewEcho(&httpserver.Deps{
		OrderHandler: &httpserver.OrderHTTP{Svc: svc},
		Logger:       logger,
		Ready:        func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
	})
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	go func() {
		logger.Info("order service listening", "addr", cfg.Addr)
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
