package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-pnl/internal/config"
	"github.com/rxtech-lab/argo-pnl/internal/logger"
	"github.com/rxtech-lab/argo-pnl/internal/source"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
	"github.com/urfave/cli/v3"
)

// loadConfig reads the --config file. When the flag was not given and the
// default file does not exist, the built-in defaults are used instead.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	path := cmd.String("config")

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		if cmd.IsSet("config") || !errors.Is(err, os.ErrNotExist) {
			return config.Config{}, err
		}

		cfg = config.Default()
		cfg.ApplyEnv()
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// tradeSource is the source selected by source.type.
type tradeSource struct {
	source.TradeSource

	name  string
	store source.TradeStore
	close func() error
}

func openSource(cfg config.Config, log *logger.Logger) (*tradeSource, error) {
	switch cfg.Source.Type {
	case config.SourceTypeMemory:
		store := source.NewMemoryStore()

		return &tradeSource{TradeSource: store, name: "memory", store: store, close: store.Close}, nil

	case config.SourceTypeDuckDB:
		path := cfg.Source.DuckDB.ParquetPath
		if path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to create data directory", err)
			}
		}

		store, err := source.NewDuckDBStore(path, log)
		if err != nil {
			return nil, err
		}

		name := "duckdb"
		if path != "" {
			name = "duckdb " + path
		}

		return &tradeSource{TradeSource: store, name: name, store: store, close: store.Close}, nil

	case config.SourceTypeBinance:
		b := cfg.Source.Binance

		src, err := source.NewBinanceSource(source.BinanceSourceConfig{
			APIKey:       b.APIKey,
			SecretKey:    b.SecretKey,
			Symbols:      b.Symbols,
			PollInterval: b.PollInterval,
			Testnet:      b.Testnet,
			BaseURL:      b.BaseURL,
		}, log)
		if err != nil {
			return nil, err
		}

		name := "binance futures"
		if b.Testnet {
			name += " (testnet)"
		}

		return &tradeSource{TradeSource: src, name: name, close: src.Close}, nil
	}

	return nil, errors.Newf(errors.ErrCodeInvalidSourceType, "unsupported source type %q", cfg.Source.Type)
}

// Store returns the writable store behind the source.
func (s *tradeSource) Store() (source.TradeStore, error) {
	if s.store == nil {
		return nil, errors.Newf(errors.ErrCodeInvalidSourceType, "source %s is read-only", s.name)
	}

	return s.store, nil
}

func (s *tradeSource) Close() error {
	return s.close()
}

// firstSnapshot waits for the first record set or error the source delivers.
func firstSnapshot(ctx context.Context, src source.TradeSource) ([]types.TradeRecord, error) {
	snapshots := make(chan []types.TradeRecord, 1)
	failures := make(chan error, 1)

	sub, err := src.Subscribe(ctx,
		func(records []types.TradeRecord) {
			select {
			case snapshots <- records:
			default:
			}
		},
		func(err error) {
			select {
			case failures <- err:
			default:
			}
		},
	)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	select {
	case records := <-snapshots:
		return records, nil
	case err := <-failures:
		return nil, err
	case <-ctx.Done():
		return nil, errors.Wrap(errors.ErrCodeSourceFetchFailed, "no trades received", ctx.Err())
	}
}
