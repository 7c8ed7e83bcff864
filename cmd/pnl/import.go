package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rxtech-lab/argo-pnl/internal/logger"
	"github.com/rxtech-lab/argo-pnl/internal/source"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// firebaseTradesKey is the node the trading bot pushed its trades to.
const firebaseTradesKey = "trades"

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import trades from a Firebase Realtime Database JSON export",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the export `FILE`",
				Required: true,
			},
		},
		Action: importAction,
	}
}

func importAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLoggerWithLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	data, err := os.ReadFile(cmd.String("file"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeImportFailed, "failed to read export", err)
	}

	records, err := parseFirebaseExport(data)
	if err != nil {
		return err
	}

	src, err := openSource(cfg, log)
	if err != nil {
		return err
	}
	defer src.Close()

	store, err := src.Store()
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetDescription("Importing trades"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(cmd.Root().ErrWriter),
	)

	imported, skipped, err := importRecords(ctx, store, records, func() { _ = bar.Add(1) })
	_ = bar.Finish()

	if err != nil {
		return err
	}

	log.Info("Import finished",
		zap.Int("imported", imported),
		zap.Int("skipped", skipped),
		zap.String("source", src.name),
	)
	fmt.Fprintf(cmd.Root().Writer, "imported %d trades, skipped %d already present\n", imported, skipped)

	return nil
}

// importRecords appends the records whose id is not in the store yet. progress
// is called once per record.
func importRecords(ctx context.Context, store source.TradeStore, records []types.TradeRecord, progress func()) (imported, skipped int, err error) {
	existing, err := store.List(ctx)
	if err != nil {
		return 0, 0, err
	}

	ids := make(map[string]struct{}, len(existing))
	for _, record := range existing {
		ids[record.ID] = struct{}{}
	}

	for _, record := range records {
		if _, ok := ids[record.ID]; ok {
			skipped++
		} else {
			if _, err := store.Append(ctx, record); err != nil {
				return imported, skipped, errors.Wrapf(errors.ErrCodeImportFailed, err, "failed to import trade %s", record.ID)
			}

			ids[record.ID] = struct{}{}
			imported++
		}

		if progress != nil {
			progress()
		}
	}

	return imported, skipped, nil
}

// parseFirebaseExport reads an export of either the whole database
// ({"trades": {pushId: trade}}) or of the trades node alone. Records come back
// ordered by push id, which is chronological.
func parseFirebaseExport(data []byte) ([]types.TradeRecord, error) {
	root, err := decodeObject(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImportFailed, "export is not a JSON object", err)
	}

	if raw, ok := root[firebaseTradesKey]; ok {
		if root, err = decodeObject(raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeImportFailed, "trades node is not a JSON object", err)
		}
	}

	ids := make([]string, 0, len(root))
	for id := range root {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]types.TradeRecord, 0, len(ids))

	for _, id := range ids {
		// Deleted nodes export as null
		if string(bytes.TrimSpace(root[id])) == "null" {
			continue
		}

		var fields map[string]any

		decoder := json.NewDecoder(bytes.NewReader(root[id]))
		decoder.UseNumber()

		if err := decoder.Decode(&fields); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeImportFailed, err, "trade %s is not a JSON object", id)
		}

		records = append(records, types.TradeRecord{
			ID:        id,
			Symbol:    stringField(fields, "symbol"),
			Side:      stringField(fields, "side"),
			PnL:       fields["pnl"],
			Timestamp: fields["timestamp"],
		})
	}

	return records, nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(data, &object); err != nil {
		return nil, err
	}

	if object == nil {
		return nil, fmt.Errorf("got null")
	}

	return object, nil
}

func stringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)

	return s
}
