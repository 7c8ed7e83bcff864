package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rxtech-lab/argo-pnl/internal/version"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "pnl",
		Usage:   "Track win rate and realized PnL of closed trades",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config `FILE`. Defaults apply when the default file is missing.",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Overrides log.level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			watchCommand(),
			snapshotCommand(),
			recordCommand(),
			importCommand(),
			configCommand(),
			versionCommand(),
		},
	}
}

// exitCode is 2 for invalid parameters or configuration and 1 otherwise.
func exitCode(err error) int {
	code := errors.GetCode(err)
	if code >= errors.ErrCodeInvalidParameter && code < errors.ErrCodeDataNotFound {
		return 2
	}

	return 1
}

func main() {
	// A missing .env is fine
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		stop()
		log.Print(err)
		os.Exit(exitCode(err))
	}
}
