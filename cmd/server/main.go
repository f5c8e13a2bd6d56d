package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"travel-agent/handler"
	"travel-agent/internal/app"
	"travel-agent/internal/config"
	"travel-agent/internal/integrations/paramstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	// Secrets come from the environment, e.g. /travel-agent/gemini-api-key
	// is read from GEMINI_API_KEY.
	application, err := app.Build(ctx, app.Options{
		Config:  cfg,
		Secrets: paramstore.NewEnv(),
		Logger:  slog.Default(),
	})
	if err != nil {
		slog.Error("failed to build chat service", "err", err)
		os.Exit(1)
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := handler.NewRouter(application.Chat, handler.RouterConfig{
		AllowedOrigins: cfg.CORSAllow,
		Logger:         slog.Default(),
	})
	if err != nil {
		slog.Error("failed to create router", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "err", err)
	}
	if err := application.Close(shutdownCtx); err != nil {
		slog.Error("release resources", "err", err)
	}
}
