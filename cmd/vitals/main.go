package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	adapthttp "vitals/internal/adapter/http"
	"vitals/internal/adapter/memory"
	"vitals/internal/adapter/postgres"
	"vitals/internal/app"
	"vitals/internal/config"
	"vitals/internal/domain"
	"vitals/internal/logging"
	"vitals/internal/metrics"
)

type repositories struct {
	weights  domain.WeightRepository
	goals    domain.GoalRepository
	water    domain.WaterRepository
	users    domain.UserRepository
	sessions domain.SessionRepository
	closer   io.Closer
}

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
	})
	log.Infof("running in [%s] environment", *env)

	repos, err := openRepositories(cfg)
	if err != nil {
		log.Fatalf("db open: %s", err)
	}

	authSvc := app.NewAuthService(repos.users, repos.sessions).WithSessionTTL(cfg.SessionTTL.Duration)
	services := adapthttp.Services{
		Weight:    app.NewWeightService(repos.weights, repos.goals),
		Dashboard: app.NewDashboardService(repos.weights, repos.goals),
		Goals:     app.NewGoalService(repos.goals),
		Water:     app.NewWaterService(repos.water),
		Auth:      authSvc,
	}

	metricsManager := metrics.NewManager(cfg.MetricsNamespace, "server", prometheus.DefaultRegisterer)
	srv := adapthttp.New(services, cfg.WebDir).WithMetrics(metricsManager, promhttp.Handler())
	if cfg.DisableAuth {
		log.Warn("authentication is disabled")
		srv.WithoutAuth()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OIDC.Enabled() {
		oidcCfg, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.OIDC.RedirectURL)
		if err != nil {
			log.Errorf("sso disabled: %s", err)
		} else {
			srv.WithOIDC(oidcCfg)
		}
	}

	go purgeSessions(ctx, authSvc, cfg.PurgeInterval.Duration)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with their request context, so requests
		// inherit the signal context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("http server: %s", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.RegisterOnShutdown(stop)
	err = multierr.Combine(
		httpServer.Shutdown(shutdownCtx),
		repos.closer.Close(),
	)
	if err != nil {
		log.Errorf("shutdown: %s", err)
		os.Exit(1)
	}
}

func openRepositories(cfg *config.Config) (*repositories, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using the in-memory store")
		db := memory.New()
		if cfg.SeedFile != "" {
			imported, skipped, err := db.SeedFile(context.Background(), cfg.SeedFile)
			if err != nil {
				return nil, fmt.Errorf("seed %s: %w", cfg.SeedFile, err)
			}
			log.Infof("seeded %d weight readings from %s (%d skipped)", imported, cfg.SeedFile, skipped)
		}
		return &repositories{
			weights:  db,
			goals:    db,
			water:    db,
			users:    db,
			sessions: db.NewSessionRepo(),
			closer:   io.NopCloser(nil),
		}, nil
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &repositories{
		weights:  db,
		goals:    db,
		water:    db,
		users:    db,
		sessions: postgres.NewSessionRepo(db),
		closer:   db,
	}, nil
}

func purgeSessions(ctx context.Context, auth *app.AuthService, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.PurgeExpired(ctx); err != nil {
				log.WithError(err).Warn("purge expired sessions")
			}
		}
	}
}
