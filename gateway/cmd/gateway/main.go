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

	"github.com/Skotchmaster/shopsplit/gateway/internal/config"
	"github.com/Skotchmaster/shopsplit/gateway/internal/httpserver"
	"github.com/Skotchmaster/shopsplit/pkg/authclient"
	"github.com/Skotchmaster/shopsplit/pkg/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	e, err := httpserver.NewEcho(&httpserver.Deps{
		AuthURL:         cfg.AuthURL,
		OrderURL:        cfg.OrderURL,
		Validator:       authclient.NewClient(cfg.AuthURL, cfg.UpstreamTimeout),
		UpstreamTimeout: cfg.UpstreamTimeout,
		Logger:          logger,
	})
	if err != nil {
		log.Fatal(err)
	}
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	go func() {
		logger.Info("gateway listening", "addr", cfg.ListenAddr, "auth", cfg.AuthURL, "orders", cfg.OrderURL)
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
