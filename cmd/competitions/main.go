package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Autoloads .env file to supply environment variables
	_ "github.com/joho/godotenv/autoload"

	"github.com/gorilla/mux"
	"github.com/lildude/competitions/internal/cache"
	"github.com/lildude/competitions/internal/calendarevent"
	"github.com/lildude/competitions/internal/config"
	"github.com/lildude/competitions/internal/database"
	"github.com/lildude/competitions/internal/handlers/activity"
	"github.com/lildude/competitions/internal/handlers/auth"
	"github.com/lildude/competitions/internal/handlers/callback"
	"github.com/lildude/competitions/internal/handlers/competitions"
	"github.com/lildude/competitions/internal/handlers/update"
	"github.com/lildude/competitions/internal/logger"
	"github.com/lildude/competitions/internal/middleware"
	"github.com/lildude/competitions/internal/scoring"
	"github.com/lildude/competitions/internal/sessions"
	"github.com/lildude/competitions/internal/strava"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := logger.NewLogger(cfg.Env, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg config.Config, log logrus.FieldLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store, err := database.InitDB(cfg.DatabaseURL, loc)
	if err != nil {
		return err
	}

	oauthConfig := strava.OauthConfig(cfg.StravaClientID, cfg.StravaClientSecret, cfg.StravaRedirectURI)

	var provider scoring.Provider = store
	if cfg.ActivitySource == "strava" {
		provider = strava.NewProvider(store, oauthConfig)
	}

	var invalidator activity.Invalidator
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return err
		}
		defer rc.Close()
		cached := cache.NewProvider(provider, rc, log)
		provider, invalidator = cached, cached
	}

	sessionStore, err := sessions.NewStore(cfg.SessionKey, cfg.Env != "dev")
	if err != nil {
		return err
	}

	engine := scoring.NewEngine(provider, store, loc, cfg.FetchWorkers)
	calendar := calendarevent.NewCalendarService(&http.Client{Timeout: 10 * time.Second})

	r := mux.NewRouter()
	r.HandleFunc("/", indexHandler).Methods(http.MethodGet)
	r.Handle("/auth", &auth.Handler{
		Config:     oauthConfig,
		StateToken: cfg.StateToken,
		Athletes:   store,
		Sessions:   sessionStore,
		Log:        log,
		Landing:    "/competitions",
	}).Methods(http.MethodGet)
	r.HandleFunc("/webhook", callback.Handler(cfg.StravaVerifyToken)).Methods(http.MethodGet)
	r.Handle("/webhook", &update.Handler{Athletes: store, Cache: invalidator, Log: log}).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(middleware.RequireAuthentication(sessionStore))
	competitions.NewHandler(store, engine, calendar, log).Register(api)
	(&activity.Handler{Recorder: store, Cache: invalidator, Log: log}).Register(api)

	if cfg.StravaCallbackURI != "" {
		go subscribe(ctx, cfg, log)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("starting server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func subscribe(ctx context.Context, cfg config.Config, log logrus.FieldLogger) {
	sub := strava.Subscription{
		ClientID:     cfg.StravaClientID,
		ClientSecret: cfg.StravaClientSecret,
		CallbackURL:  cfg.StravaCallbackURI,
		VerifyToken:  cfg.StravaVerifyToken,
	}
	created, err := sub.Subscribe(ctx)
	if err != nil {
		log.WithError(err).Error("failed to subscribe to strava webhook")
		return
	}
	if created {
		log.Info("successfully subscribed to strava activity feed")
	}
}

func indexHandler(w http.ResponseWriter, _ *http.Request) {
	if _, err := w.Write([]byte("Competitions")); err != nil {
		logrus.WithError(err).Error("writing index")
	}
}
