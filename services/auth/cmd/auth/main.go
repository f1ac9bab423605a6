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
	"github.com/Skotchmaster/shopsplit/pkg/tokens"
	"github.com/Skotchmaster/shopsplit/services/auth/internal/config"
	"github.com/Skotchmaster/shopsplit/services/auth/internal/httpserver"
	"github.com/Skotchmaster/shopsplit/services/auth/internal/models"
	"github.com/Skotchmaster/shopsplit/services/auth/internal/repo"
	"github.com/Skotchmaster/shopsplit/services/auth/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL, &models.User{}, &models.RefreshToken{})
	if err != nil {
		cancel()
		log.Fatalf("db init error: %v", err)
	}
	defer pkgdb.Close(db)

	gormRepo := repo.NewGormRepo(db)
	var refreshStore service.RefreshStore = gormRepo
	if cfg.RefreshStore == "redis" {
		rs, err := repo.NewRedisRefreshStore(initCtx, cfg.RedisURL)
		if err != nil {
			cancel()
			log.Fatalf("redis init error: %v", err)
		}
		defer rs.Close()
		refreshStore = rs
	}
	cancel()

	publisher := events.FromBrokers(cfg.KafkaBrokers, logger)
	defer publisher.Close()

	authority := tokens.New(cfg.JWTSecret, tokens.WithTTL(cfg.AccessTTL, cfg.RefreshTTL))
	svc := &service.AuthService{
		Users:        gormRepo,
		RefreshStore: refreshStore,
		Tokens:       authority,
		Events:       publisher,
	}

	e := httpserver.NewEcho(&httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
		Logger:      logger,
		Ready:       func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
	})
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	go func() {
		logger.Info("auth service listening",
			"addr", cfg.Addr,
			"refresh_store", cfg.RefreshStore,
			"access_ttl", authority.AccessTTL().String(),
			"refresh_ttl", authority.RefreshTTL().String(),
		)
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
