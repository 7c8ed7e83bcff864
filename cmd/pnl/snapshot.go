package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/rxtech-lab/argo-pnl/internal/aggregation"
	"github.com/rxtech-lab/argo-pnl/internal/logger"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Compute the statistics once and print them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: yaml or json",
				Value: "yaml",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Print full precision values instead of the display form",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the source",
				Value: 30 * time.Second,
			},
		},
		Action: snapshotAction,
	}
}

func snapshotAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLoggerWithLevel(cfg.Log.Level)
	if err != nil {
		return err
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

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	records, err := firstSnapshot(ctx, src)
	if err != nil {
		return err
	}

	snapshot := aggregation.Aggregate(records, time.Now(), aggConfig)

	var out any = snapshot.Display(cfg.Display.Currency)
	if cmd.Bool("raw") {
		out = snapshot
	}

	return writeOutput(cmd.Root().Writer, cmd.String("format"), out)
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(v); err != nil {
			return err
		}

		return encoder.Close()
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported format %q", format)
	}
}

