package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"InlineRank/internal/domain/repository"
	"InlineRank/pkg/config"
	xhttp "InlineRank/pkg/http"
	applogger "InlineRank/pkg/logger"
)

type namedCloser struct {
	name string
	c    io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	closers    []namedCloser
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	archive repository.HistoryArchive,
	pub repository.RankingPublisher,
) *App {
	a := &App{cfg: cfg, logger: l, httpServer: srv}
	// publisher first so buffered rankings flush before the archive goes away
	a.AddCloser("publisher", pub)
	a.AddCloser("archive", archive)
	return a
}

// AddCloser registers a resource closed on shutdown, in registration order.
func (a *App) AddCloser(name string, c io.Closer) {
	if c != nil {
		a.closers = append(a.closers, namedCloser{name: name, c: c})
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext serves until ctx is done, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("inlinerank started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("upstream", a.cfg.Upstream.BaseURL),
		applogger.String("cache", a.cfg.Cache.Backend),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
		applogger.Bool("clickhouse", a.cfg.ClickHouse.Enabled),
	)

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}
	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.logger.Warn("close error", applogger.String("resource", nc.name), applogger.Error(err))
		}
	}
	a.logger.Info("shutdown complete")
	return nil
}
