package main

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/LeoDroves/mtga-log-client/internal/api"
	"github.com/LeoDroves/mtga-log-client/internal/arenapath"
	"github.com/LeoDroves/mtga-log-client/internal/config"
	"github.com/LeoDroves/mtga-log-client/internal/constants"
	"github.com/LeoDroves/mtga-log-client/internal/follower"
	"github.com/LeoDroves/mtga-log-client/internal/logger"
	"github.com/LeoDroves/mtga-log-client/internal/status"
	"github.com/LeoDroves/mtga-log-client/internal/token"
	"github.com/LeoDroves/mtga-log-client/internal/tracker"
	"github.com/LeoDroves/mtga-log-client/pkg/health"
	"github.com/LeoDroves/mtga-log-client/pkg/metrics"
)

type App struct {
	cfg *config.Config
	log logger.Logger

	client       *api.Client
	tracker      *tracker.Tracker
	follower     *follower.Follower
	statusServer *status.Server
	logPath      string
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		cfg: cfg,
		log: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	metrics.Register()

	clientToken, err := token.Acquire(a.cfg.API.TokenFile)
	if err != nil {
		return fmt.Errorf("failed to acquire client token: %w", err)
	}
	a.log.Infow("Using client token", "token", clientToken)

	a.client = api.NewClient(a.cfg.API, a.cfg.Retry, a.cfg.Breaker, clientToken, a.log)

	version := a.client.CheckMinVersion(ctx)
	if !version.Supported {
		return fmt.Errorf("client version %s is below the minimum supported version %s; please update",
			constants.ClientVersion, version.MinVersion)
	}

	logPath, err := arenapath.Resolve(a.cfg.Follower.LogFile)
	if err != nil {
		return err
	}
	a.logPath = logPath

	a.tracker = tracker.New(a.client, a.log)
	a.follower = follower.New(a.tracker, a.log, a.cfg.Follower.PollInterval)

	if a.cfg.Status.Enabled {
		checkers := health.NewCheckerRegistry()
		checkers.Register(health.NewLogFileChecker(a.logPath))
		checkers.Register(health.NewAPIChecker(a.cfg.API.Host, a.cfg.API.RequestTimeout))
		a.statusServer = status.New(a.cfg.Status.Port, a.tracker, checkers, a.log)
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	// The status server must not keep the process alive after a --once run
	// finishes, so its shutdown is keyed to the follower's lifetime.
	runCtx, cancelRun := context.WithCancel(gCtx)
	defer cancelRun()

	if a.statusServer != nil {
		g.Go(func() error {
			return a.statusServer.Start()
		})
		g.Go(func() error {
			<-runCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			return a.statusServer.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancelRun()
		a.log.Infow("Following along", "path", a.logPath)
		return a.follower.Run(runCtx, a.logPath, !a.cfg.Follower.Once)
	})

	return g.Wait()
}
