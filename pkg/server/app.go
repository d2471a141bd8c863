package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "FuelPricer/internal/domain/repository"
	"FuelPricer/internal/handler/api"
	"FuelPricer/internal/usecase"
	"FuelPricer/pkg/cache"
	pkgch "FuelPricer/pkg/clickhouse"
	"FuelPricer/pkg/config"
	xhttp "FuelPricer/pkg/http"
	applogger "FuelPricer/pkg/logger"
)

// App encapsulates the entire application lifecycle: initial history
// load, periodic snapshot refresh, the HTTP server and graceful
// teardown of infrastructure clients.
type App struct {
	cfg        *config.Config
	rec        *usecase.Recommender
	chClient   *pkgch.Client
	cacheSvc   cache.Service
	audit      domrepo.AuditPublisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. chClient may be
// nil when history is served from CSV.
func New(
	cfg *config.Config,
	rec *usecase.Recommender,
	chClient *pkgch.Client,
	cacheSvc cache.Service,
	audit domrepo.AuditPublisher,
) *App {
	return &App{
		cfg:      cfg,
		rec:      rec,
		chClient: chClient,
		cacheSvc: cacheSvc,
		audit:    audit,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l, err := applogger.New(&applogger.Config{
		Level:  a.cfg.Log.Level,
		Format: a.cfg.Log.Format,
		Output: a.cfg.Log.Output,
	})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}

	// Load the initial history snapshot before accepting traffic.
	loadCtx, loadCancel := context.WithTimeout(ctx, 30*time.Second)
	err = a.rec.Refresh(loadCtx)
	loadCancel()
	if err != nil {
		l.Error("initial history load failed", applogger.Error(err))
		return err
	}

	if interval := a.cfg.History.RefreshInterval; interval > 0 {
		go a.refreshLoop(ctx, l, interval)
		l.Info("history refresh loop started", applogger.Duration("interval_ms", interval))
	}

	handler := api.NewRecommendHandler(a.rec)
	handler.SetLogger(l)

	a.httpServer = xhttp.NewServer(handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("serving recommendations",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("history_backend", a.cfg.History.Backend),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx, l)
}

// refreshLoop rebuilds the history snapshot on a fixed interval until
// the context is cancelled. A failed refresh keeps the previous snapshot.
func (a *App) refreshLoop(ctx context.Context, l *applogger.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.rec.Refresh(ctx); err != nil {
				l.Warn("periodic history refresh failed", applogger.Error(err))
			}
		}
	}
}

// shutdown gracefully stops the server and closes infrastructure clients.
func (a *App) shutdown(ctx context.Context, l *applogger.Logger) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			l.Warn("audit publisher close error", applogger.Error(err))
		}
	}
	if a.cacheSvc != nil {
		if err := a.cacheSvc.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
