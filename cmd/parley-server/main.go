package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/parley-app/parley/internal/relay"
	"github.com/parley-app/parley/internal/server"
)

const (
	envLocal = "local"
	envProd  = "prod"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := server.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)

	hub := relay.NewHub(log)
	go hub.Run()

	http.HandleFunc("/health", server.HealthCheck)
	http.HandleFunc("/ws", server.ServeWs(hub, cfg, log))

	log.Info("starting relay server",
		slog.String("addr", cfg.Addr()),
		slog.String("env", cfg.Env),
	)

	if err := http.ListenAndServe(cfg.Addr(), nil); err != nil {
		log.Error("http server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	case envLocal:
		fallthrough
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	slog.SetDefault(log)
	return log
}
