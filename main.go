package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numberguess/internal/httpserver"
	"github.com/robalobadob/numberguess/internal/rounds"
	"github.com/robalobadob/numberguess/internal/store"
)

// config is read from the environment (optionally seeded from .env).
type config struct {
	Port         string
	LogLevel     string
	Secret       string
	TTL          time.Duration
	CookieName   string
	ClientOrigin string
	SecureCookie bool
	RoundsDSN    string
}

func loadConfig() config {
	return config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Secret:       getEnv("SESSION_SECRET", "dev_secret_change_me"),
		TTL:          time.Duration(envInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		CookieName:   getEnv("COOKIE_NAME", "guess_session"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		SecureCookie: getEnv("ENVIRONMENT", "development") == "production",
		RoundsDSN:    getEnv("ROUNDS_DSN", rounds.DefaultDSN),
	}
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.Secret == "dev_secret_change_me" {
		log.Warn().Msg("SESSION_SECRET not set, using development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := rounds.Open(cfg.RoundsDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open round log")
	}
	defer db.Close()
	if err := rounds.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate round log")
	}

	srv := httpserver.New(store.NewMemoryStore(), rounds.NewStore(db), httpserver.Options{
		Secret:       []byte(cfg.Secret),
		TTL:          cfg.TTL,
		CookieName:   cfg.CookieName,
		ClientOrigin: cfg.ClientOrigin,
		SecureCookie: cfg.SecureCookie,
	})
	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("starting numberguess server")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
