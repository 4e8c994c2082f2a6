package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/lumokids/companion/pkg/ai"
	"github.com/lumokids/companion/pkg/auth"
	"github.com/lumokids/companion/pkg/bootstrap"
	"github.com/lumokids/companion/pkg/chat"
	"github.com/lumokids/companion/pkg/config"
	"github.com/lumokids/companion/pkg/db"
	"github.com/lumokids/companion/pkg/server"
)

func main() {
	logger := bootstrap.NewLogger()

	envs, err := config.LoadConfig(true)
	if err != nil {
		panic(errors.Wrap(err, "Unable to load config"))
	}
	logger.Info("Using database path", "path", envs.DBPath)

	store, err := db.NewStore(envs.DBPath, logger)
	if err != nil {
		logger.Error("Unable to create or initialize database", "error", err)
		panic(errors.Wrap(err, "Unable to create or initialize database"))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Error closing store", slog.Any("error", err))
		}
	}()
	logger.Info("SQLite database initialized")

	natsServer, err := bootstrap.StartEmbeddedNATSServer(logger)
	if err != nil {
		panic(errors.Wrap(err, "Unable to start nats server"))
	}
	defer natsServer.Shutdown()

	nc, err := bootstrap.NewNatsClient()
	if err != nil {
		panic(errors.Wrap(err, "Unable to create nats client"))
	}
	defer nc.Close()
	logger.Info("NATS client started")

	aiService := ai.NewOpenAIService(logger, envs.CompletionsAPIKey, envs.CompletionsAPIURL)

	chatService := chat.NewService(logger, store, aiService, nc, chat.Config{
		CompletionsModel:  envs.CompletionsModel,
		ExtractorModel:    envs.ExtractorModel,
		HistoryWindow:     envs.HistoryWindow,
		ExtractionCadence: envs.ExtractionCadence,
		ReplyTimeout:      envs.ReplyTimeout,
		ExtractionTimeout: envs.ExtractionTimeout,
	})

	verifier := auth.NewIdentityClient(logger, envs.AuthAPIURL, envs.AuthAPIKey)

	httpServer := &http.Server{
		Addr:    ":" + envs.ChatPort,
		Handler: server.New(logger, chatService, verifier).Router(),
	}

	go func() {
		logger.Info("Chat server listening", "port", envs.ChatPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.Any("error", err))
	}
}
