package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	advocaciaweb "github.com/trafer/advocacia-web"
	"github.com/trafer/advocacia-web/internal/assistant"
	"github.com/trafer/advocacia-web/internal/handlers"
	"github.com/trafer/advocacia-web/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal(fmt.Errorf("error loading .env file: %w", err))
	}

	envCfg := environment{}
	if err := env.Parse(&envCfg); err != nil {
		log.Fatal(fmt.Errorf("error parsing environment: %w", err))
	}

	cfg, err := loadConfig(envCfg)
	if err != nil {
		log.Fatal(err)
	}

	logger, logCloser, err := cfg.Log.logger()
	if err != nil {
		log.Fatal(err)
	}
	defer logCloser.Close()

	completer, err := cfg.LLM.completer(context.Background(), assistant.SystemInstruction, assistant.DefaultParameters(), logger)
	if err != nil && !errors.Is(err, errNoCredential) {
		logger.Error("Failed to create completer", slog.String("err", err.Error()))
		os.Exit(1)
	}
	llm := assistant.New(completer, logger)
	if !llm.Configured() {
		logger.Warn("API key not found, the assistant will answer with the default reply",
			slog.String("provider", cfg.LLM.base().Provider))
	}

	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0755); err != nil {
		logger.Error("Failed to create store directory", slog.String("err", err.Error()))
		os.Exit(1)
	}
	boltDB, err := services.NewBoltDB(cfg.StorePath)
	if err != nil {
		logger.Error("Failed to open store", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer boltDB.Close()

	leads, err := boltDB.Leads(context.Background())
	if err != nil {
		logger.Error("Failed to read store", slog.String("err", err.Error()))
		os.Exit(1)
	}
	logger.Info("Lead store opened", slog.String("path", cfg.StorePath), slog.Int("leads", len(leads)))

	m, err := handlers.NewMain(llm, boltDB, cfg.Site.site(), logger)
	if err != nil {
		logger.Error("Failed to create handlers", slog.String("err", err.Error()))
		os.Exit(1)
	}

	// Serve static files
	staticFS, err := fs.Sub(advocaciaweb.StaticFS, "static")
	if err != nil {
		panic(err)
	}
	fileServer := http.FileServer(http.FS(staticFS))

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", fileServer))
	mux.HandleFunc("/", m.HandleHome)
	mux.HandleFunc("/chat", m.HandleChat)
	mux.HandleFunc("/contact", m.HandleContact)
	mux.HandleFunc("/sse", m.HandleSSE)
	mux.HandleFunc("/healthz", m.HandleHealth)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv.RegisterOnShutdown(func() {
		if err := m.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown sse server", slog.String("err", err.Error()))
		}
	})

	sessionsCtx, stopSessions := context.WithCancel(context.Background())
	defer stopSessions()
	go m.ExpireSessions(sessionsCtx, cfg.SessionTTL)

	// Channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("Server starting",
			slog.String("addr", srv.Addr),
			slog.String("provider", cfg.LLM.base().Provider),
			slog.Bool("assistantConfigured", llm.Configured()))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Blocking select waiting for either interrupt or server error
	select {
	case err := <-serverErrors:
		logger.Error("Server error", slog.String("err", err.Error()))

	case sig := <-shutdown:
		logger.Info("Start shutdown", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Gracefully shutdown the server
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", slog.String("err", err.Error()))
			if err := srv.Close(); err != nil {
				logger.Error("Forcing server close", slog.String("err", err.Error()))
			}
		}
	}
}
