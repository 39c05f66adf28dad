package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bloglist/internal/config"
	"github.com/robalobadob/bloglist/internal/credential"
	"github.com/robalobadob/bloglist/internal/httpserver"
	"github.com/robalobadob/bloglist/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.DevSecret() {
		log.Warn().Msg("SECRET not set, using development signing secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.StoreKind).Msg("failed to open store")
	}
	defer st.Close()

	creds, err := credential.New([]byte(cfg.Secret),
		credential.WithCost(cfg.BcryptCost),
		credential.WithTTL(cfg.TokenTTL),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init credentials")
	}

	srv := httpserver.New(st, creds, httpserver.Options{
		ClientOrigin:   cfg.ClientOrigin,
		RequestTimeout: cfg.RequestTimeout,
	})
	hs := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Str("store", cfg.StoreKind).Msg("starting bloglist server")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.StoreKind == "memory" {
		return store.NewMemoryStore(), nil
	}
	return store.OpenSQLite(ctx, cfg.DBPath)
}
