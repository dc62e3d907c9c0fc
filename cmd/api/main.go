package main

import (
	"context"
	"net/http"
	"os"
	"time"

	_ "biovault/docs"
	"biovault/internal/adapters/assistant/gemini"
	"biovault/internal/adapters/auth/wallet"
	pg "biovault/internal/adapters/storage/postgres"
	"biovault/internal/platform/config"
	"biovault/internal/platform/logger"
	assistantport "biovault/internal/ports/assistant"
	"biovault/internal/ports/auth"
	"biovault/internal/router"
)

// @title BioVault API
// @version 1.0
// @description Personal health record vault: time-boxed access grants, audit log and emergency access.
// @BasePath /
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		// Config rota: no hay nada que servir.
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.NewFromEnv()

	opts := router.Options{
		Log: log,
	}

	if dsn := cfg.DBDSN; dsn != "" {
		opened, err := pg.Open(dsn)
		if err != nil {
			log.Error("postgres open failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := pg.Migrate(ctx, opened); err != nil {
			cancel()
			log.Error("migrations failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		cancel()
		opts.DB = opened
	}

	opts.AuthVerifier = buildVerifier(cfg, log)
	opts.Assistant = buildAssistant(cfg, log)

	r := router.NewRouter(opts)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func buildVerifier(cfg config.Config, log logger.Logger) auth.AuthVerifier {
	if cfg.WalletAuth.BaseURL == "" || cfg.WalletAuth.APIKey == "" {
		log.Warn("wallet auth not configured, running in dev mode (X-Debug-User-ID)", nil)
		return nil
	}
	client, err := wallet.NewClient(wallet.Config{
		BaseURL: cfg.WalletAuth.BaseURL,
		APIKey:  cfg.WalletAuth.APIKey,
	})
	if err != nil {
		log.Error("wallet auth client init failed", map[string]any{"error": err.Error()})
		return nil
	}
	return wallet.NewVerifier(client)
}

func buildAssistant(cfg config.Config, log logger.Logger) assistantport.Client {
	if cfg.Assistant.APIKey == "" {
		log.Warn("assistant api key not configured, chat disabled", nil)
		return nil
	}
	client, err := gemini.NewClient(gemini.Config{
		BaseURL: cfg.Assistant.BaseURL,
		APIKey:  cfg.Assistant.APIKey,
		Model:   cfg.Assistant.Model,
	})
	if err != nil {
		log.Error("assistant client init failed", map[string]any{"error": err.Error()})
		return nil
	}
	return client
}
