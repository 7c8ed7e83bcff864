package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-pnl/internal/logger"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/urfave/cli/v3"
)

func recordCommand() *cli.Command {
	return &cli.Command{
		Name:  "record",
		Usage: "Append one closed trade to the store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "pnl",
				Usage:    "Realized PnL of the trade, e.g. -12.5",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "timestamp",
				Usage: "When the trade closed (RFC 3339, ISO date-time or unix ms). Defaults to now.",
			},
			&cli.StringFlag{
				Name:  "symbol",
				Usage: "Traded pair, e.g. BTCUSDT",
			},
			&cli.StringFlag{
				Name:  "side",
				Usage: "Closing side, BUY or SELL",
			},
		},
		Action: recordAction,
	}
}

func recordAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLoggerWithLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	src, err := openSource(cfg, log)
	if err != nil {
		return err
	}
	defer src.Close()

	store, err := src.Store()
	if err != nil {
		return err
	}

	timestamp := cmd.String("timestamp")
	if timestamp == "" {
		timestamp = time.Now().Format(time.RFC3339)
	}

	id, err := store.Append(ctx, types.TradeRecord{
		Symbol:    strings.ToUpper(cmd.String("symbol")),
		Side:      strings.ToUpper(cmd.String("side")),
		PnL:       cmd.String("pnl"),
		Timestamp: timestamp,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, id)

	return nil
}
