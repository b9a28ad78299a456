package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"brainnotes/internal/app"
	"brainnotes/internal/config"
	"brainnotes/internal/identity"
	"brainnotes/internal/server"
	"brainnotes/internal/store"
	"brainnotes/internal/util"
	"brainnotes/pkg/ai"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	noteStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		fatal("failed to open database", "err", err)
	}

	var verifier *identity.Verifier
	if cfg.AuthJWKSURL != "" {
		verifier, err = identity.NewVerifier(identity.VerifierConfig{
			JWKSURL:    cfg.AuthJWKSURL,
			Issuer:     cfg.JWTIssuer,
			Audience:   cfg.JWTAudience,
			HTTPClient: &http.Client{Timeout: 5 * time.Second},
		})
		if err != nil {
			fatal("failed to init jwks verifier", "err", err)
		}
	}
	var sessions identity.SessionLookup
	if cfg.RedisAddr != "" {
		sessionStore := identity.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword)
		defer sessionStore.Close()
		sessions = sessionStore
	}
	resolver := identity.NewResolver(verifier, sessions)

	generator, err := ai.NewOpenAICompatGenerator(cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.GenerationModel)
	if err != nil {
		fatal("failed to init generation provider", "err", err)
	}

	appCore, err := app.New(app.Config{
		Store:      noteStore,
		Generator:  generator,
		AppBaseURL: cfg.AppBaseURL,
	})
	if err != nil {
		fatal("failed to init app", "err", err)
	}

	httpServer := server.New(server.Config{
		App:      appCore,
		Identity: resolver,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:        addr,
		Handler:     httpServer.Router(),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: chat responses stream for as long as the
		// provider keeps producing tokens.
		IdleTimeout: 60 * time.Second,
	}

	slog.Info("brainnotes server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

func fatal(msg string, attrs ...any) {
	slog.Error(msg, attrs...)
	os.Exit(1)
}
