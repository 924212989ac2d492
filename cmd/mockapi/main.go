package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/config"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/mockapi"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	server := mockapi.New(mockapi.OptionsFromConfig(cfg.Mock))
	defer server.Close()

	addr := cfg.Mock.Host + ":" + cfg.Mock.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Mock backend starting (demo@example.com / password123)")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Mock backend failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down mock backend...")
	// Open sockets would keep Shutdown waiting.
	server.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Mock backend shutdown error")
	}
	logger.Info().Msg("Mock backend stopped")
}
