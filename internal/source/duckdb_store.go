package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-pnl/internal/logger"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
	"go.uber.org/zap"
)

const tradesTable = "trades"

var tradeColumns = []string{"id", "seq", "symbol", "side", "pnl", "timestamp", "created_at"}

// DuckDBStore is a TradeStore backed by an in-memory DuckDB database.
//
// When a parquet path is set, existing records are loaded from it on open and
// the whole table is exported back to it after every change. pnl and timestamp
// are stored as text, exactly as delivered.
//
// Subscribers are notified while the store's lock is held, so handlers must
// not write to the store synchronously.
type DuckDBStore struct {
	*Hub

	db          *sql.DB
	parquetPath string
	sq          squirrel.StatementBuilderType
	logger      *logger.Logger
	now         func() time.Time
	mu          sync.Mutex
}

// NewDuckDBStore opens a store. An empty parquetPath keeps records in memory
// only.
func NewDuckDBStore(parquetPath string, log *logger.Logger) (*DuckDBStore, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		log.Error("Failed to open database", zap.Error(err))

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to connect to database", err)
	}

	store := &DuckDBStore{
		Hub:         NewHub(),
		db:          db,
		parquetPath: parquetPath,
		sq:          squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger:      log,
		now:         time.Now,
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	records, err := store.list()
	if err != nil {
		db.Close()

		return nil, err
	}

	store.Publish(records)

	return store, nil
}

func (s *DuckDBStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			seq BIGINT NOT NULL,
			symbol TEXT,
			side TEXT,
			pnl TEXT,
			timestamp TEXT,
			created_at TIMESTAMP
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreNotInitialized, "failed to create trades table", err)
	}

	if s.parquetPath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.parquetPath), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeStoreNotInitialized, "failed to create data directory", err)
	}

	if _, err := os.Stat(s.parquetPath); err != nil {
		return nil
	}

	_, err = s.db.Exec(fmt.Sprintf(`
		INSERT INTO trades
		SELECT id, seq, symbol, side, pnl, timestamp, created_at FROM read_parquet('%s')
	`, escapeLiteral(s.parquetPath)))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStoreNotInitialized, err, "failed to load trades from %s", s.parquetPath)
	}

	s.logger.Info("Loaded trades from parquet", zap.String("path", s.parquetPath))

	return nil
}

// Append stores a record and notifies subscribers.
func (s *DuckDBStore) Append(ctx context.Context, record types.TradeRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return "", errors.New(errors.ErrCodeStoreNotInitialized, "store is closed")
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	var seq int64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM trades").Scan(&seq); err != nil {
		return "", errors.Wrap(errors.ErrCodeQueryFailed, "failed to allocate sequence", err)
	}

	_, err := s.sq.
		Insert(tradesTable).
		Columns(tradeColumns...).
		Values(
			record.ID, seq, record.Symbol, record.Side,
			encodeField(record.PnL), encodeField(record.Timestamp), s.now().UTC(),
		).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodePersistFailed, err, "failed to insert trade %s", record.ID)
	}

	s.logger.Debug("Trade appended", zap.String("id", record.ID), zap.Int64("seq", seq))

	if err := s.commit(ctx); err != nil {
		return "", err
	}

	return record.ID, nil
}

// Update replaces the fields of an existing record and notifies subscribers.
func (s *DuckDBStore) Update(ctx context.Context, id string, record types.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return errors.New(errors.ErrCodeStoreNotInitialized, "store is closed")
	}

	result, err := s.sq.
		Update(tradesTable).
		Set("symbol", record.Symbol).
		Set("side", record.Side).
		Set("pnl", encodeField(record.PnL)).
		Set("timestamp", encodeField(record.Timestamp)).
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrCodePersistFailed, err, "failed to update trade %s", id)
	}

	if err := requireAffected(result, id); err != nil {
		return err
	}

	return s.commit(ctx)
}

// Delete removes a record and notifies subscribers.
func (s *DuckDBStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return errors.New(errors.ErrCodeStoreNotInitialized, "store is closed")
	}

	result, err := s.sq.
		Delete(tradesTable).
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrCodePersistFailed, err, "failed to delete trade %s", id)
	}

	if err := requireAffected(result, id); err != nil {
		return err
	}

	return s.commit(ctx)
}

// List returns every record in insertion order.
func (s *DuckDBStore) List(_ context.Context) ([]types.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, errors.New(errors.ErrCodeStoreNotInitialized, "store is closed")
	}

	return s.list()
}

// Count returns the number of stored records.
func (s *DuckDBStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return 0, errors.New(errors.ErrCodeStoreNotInitialized, "store is closed")
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM trades").Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count trades", err)
	}

	return count, nil
}

// GetOutputPath returns the parquet file path, empty when not persisted.
func (s *DuckDBStore) GetOutputPath() string {
	return s.parquetPath
}

// Close drops all subscriptions and releases database resources.
func (s *DuckDBStore) Close() error {
	s.Hub.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeUnknown, "failed to close database", err)
		}

		s.db = nil
	}

	return nil
}

// commit persists the table and publishes the new snapshot.
//
//nolint:funcorder // helper method used by Append, Update and Delete
func (s *DuckDBStore) commit(ctx context.Context) error {
	if err := s.exportToParquet(ctx); err != nil {
		return err
	}

	records, err := s.list()
	if err != nil {
		return err
	}

	s.Publish(records)

	return nil
}

//nolint:funcorder // helper method used by commit
func (s *DuckDBStore) exportToParquet(ctx context.Context) error {
	if s.parquetPath == "" {
		return nil
	}

	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		COPY (SELECT * FROM trades ORDER BY seq ASC)
		TO '%s' (FORMAT PARQUET)
	`, escapeLiteral(s.parquetPath)))
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistFailed, "failed to export to parquet", err)
	}

	return nil
}

//nolint:funcorder // helper method used by List and commit
func (s *DuckDBStore) list() ([]types.TradeRecord, error) {
	rows, err := s.sq.
		Select("id", "symbol", "side", "pnl", "timestamp").
		From(tradesTable).
		OrderBy("seq ASC").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	records := make([]types.TradeRecord, 0)

	for rows.Next() {
		var (
			record    types.TradeRecord
			symbol    sql.NullString
			side      sql.NullString
			pnl       sql.NullString
			timestamp sql.NullString
		)

		if err := rows.Scan(&record.ID, &symbol, &side, &pnl, &timestamp); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan trade", err)
		}

		record.Symbol = symbol.String
		record.Side = side.String
		record.PnL = decodeField(pnl)
		record.Timestamp = decodeField(timestamp)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate trades", err)
	}

	return records, nil
}

func requireAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to read affected rows", err)
	}

	if affected == 0 {
		return errors.Newf(errors.ErrCodeRecordNotFound, "record not found: %s", id)
	}

	return nil
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
