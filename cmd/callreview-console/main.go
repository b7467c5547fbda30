package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diallo/callreview/internal/calls"
	"github.com/diallo/callreview/internal/console"
	"github.com/diallo/callreview/internal/detail"
	"github.com/diallo/callreview/internal/render"
	"github.com/diallo/callreview/internal/resource"
	"github.com/diallo/callreview/internal/upload"
	"github.com/diallo/callreview/pkg/config"
	"github.com/diallo/callreview/pkg/logger"
	"github.com/diallo/callreview/pkg/messaging"
)

func main() {
	// Fails fast in staging/production when the backend is not configured
	cfg, err := config.LoadWithValidation(console.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(console.ServiceName, cfg.Server.Environment)
	log.Info().Str("backend", cfg.Backend.BaseURL).Msg("starting call review console")

	client := resource.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)
	backend := resource.NewBackend(client, cfg.Backend.ProfileParam)

	// Job outcome events are optional
	var publisher upload.Publisher
	var rmq *messaging.RabbitMQ
	deps := map[string]console.HealthChecker{}
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to RabbitMQ, upload events disabled")
		} else {
			deps["rabbitmq"] = rmq
			pub, err := messaging.NewPublisher(rmq, cfg.RabbitMQ.Exchange, console.ServiceName, log)
			if err != nil {
				log.Warn().Err(err).Msg("failed to create publisher, upload events disabled")
			} else {
				publisher = pub
			}
		}
	}

	uploads := upload.NewController(backend, publisher, cfg.Upload, log)
	list := calls.NewList(backend, cfg.Calls.DefaultPerPage, log)
	reports := detail.NewService(backend, render.New(cfg.Render), log)

	h := console.NewHandler(backend, uploads, list, reports, cfg.Upload.MaxFileSize, log)
	router := console.NewRouter(h, console.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.WriteTimeout,
		Dependencies:   deps,
	}, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if rmq != nil {
		if err := rmq.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close RabbitMQ connection")
		}
	}

	log.Info().Msg("server stopped")
}
