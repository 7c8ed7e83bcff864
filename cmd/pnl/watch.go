package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-pnl/internal/config"
	"github.com/rxtech-lab/argo-pnl/internal/dashboard"
	"github.com/rxtech-lab/argo-pnl/internal/logger"
	"github.com/rxtech-lab/argo-pnl/internal/presentation"
	"github.com/rxtech-lab/argo-pnl/internal/tracker"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Recompute statistics on every trade change and publish them",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show the live dashboard instead of logging each update",
			},
		},
		Action: watchAction,
	}
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tui := cmd.Bool("tui")

	// Log lines would tear the dashboard; errors reach it through the tracker.
	log := logger.NewNopLogger()
	if !tui {
		log, err = logger.NewLoggerWithLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
	}
	defer log.Sync()

	aggConfig, err := cfg.AggregationConfig()
	if err != nil {
		return err
	}

	src, err := openSource(cfg, log)
	if err != nil {
		return err
	}
	defer src.Close()

	presenters, cleanup, err := buildPresenters(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if !tui {
		presenters = append(presenters, presentation.NewLogPresenter(log, cfg.Display.Currency))

		t := tracker.NewTracker(src, presenters, aggConfig, log)
		if err := t.Start(ctx); err != nil {
			return err
		}
		defer t.Stop()

		log.Info("Watching trades", zap.String("source", src.name))
		<-ctx.Done()

		return nil
	}

	program := tea.NewProgram(
		dashboard.NewModel(src.name, cfg.Display.Currency),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	view := dashboard.NewProgramPresenter(program)
	presenters = append(presenters, view)

	t := tracker.NewTracker(src, presenters, aggConfig, log, tracker.WithErrorHandler(view.ReportError))

	// Send blocks until the program reads its messages, so the tracker starts
	// in the background.
	started := make(chan error, 1)
	go func() {
		err := t.Start(ctx)
		if err != nil {
			view.ReportError(err)
		}
		started <- err
	}()

	_, runErr := program.Run()
	startErr := <-started
	t.Stop()

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}

	return startErr
}

// buildPresenters creates the outputs enabled in the config. cleanup releases
// them.
func buildPresenters(cfg config.Config, log *logger.Logger) (presentation.Multi, func(), error) {
	var presenters presentation.Multi
	cleanup := func() {}

	if cfg.Output.StatsPath != "" {
		presenters = append(presenters, presentation.NewYAMLFilePresenter(cfg.Output.StatsPath, cfg.Display.Currency))
	}

	if cfg.Output.Redis.Addr != "" {
		redisPresenter, err := presentation.NewRedisPresenter(presentation.RedisOptions{
			Addr:     cfg.Output.Redis.Addr,
			Password: cfg.Output.Redis.Password,
			DB:       cfg.Output.Redis.DB,
			Key:      cfg.Output.Redis.Key,
			Channel:  cfg.Output.Redis.Channel,
			Currency: cfg.Display.Currency,
		})
		if err != nil {
			return nil, cleanup, err
		}

		log.Info("Publishing statistics to redis", zap.String("addr", cfg.Output.Redis.Addr))

		cleanup = func() {
			if err := redisPresenter.Close(); err != nil {
				log.Warn("Failed to close redis client", zap.Error(err))
			}
		}
		presenters = append(presenters, redisPresenter)
	}

	return presenters, cleanup, nil
}
