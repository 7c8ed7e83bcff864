package source

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
)

// MemoryStore is an in-process TradeStore. It publishes an empty snapshot on
// creation.
type MemoryStore struct {
	*Hub

	mu      sync.Mutex
	order   []string
	records map[string]types.TradeRecord
}

// NewMemoryStore creates a store holding records, in order.
func NewMemoryStore(records ...types.TradeRecord) *MemoryStore {
	store := &MemoryStore{
		Hub:     NewHub(),
		records: make(map[string]types.TradeRecord, len(records)),
	}

	for _, record := range records {
		store.insert(record)
	}

	store.Publish(store.snapshot())

	return store
}

func (s *MemoryStore) Append(_ context.Context, record types.TradeRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists && record.ID != "" {
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "record %s already exists", record.ID)
	}

	id := s.insert(record)
	s.Publish(s.snapshot())

	return id, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, record types.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; !exists {
		return errors.Newf(errors.ErrCodeRecordNotFound, "record not found: %s", id)
	}

	record.ID = id
	s.records[id] = record
	s.Publish(s.snapshot())

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; !exists {
		return errors.Newf(errors.ErrCodeRecordNotFound, "record not found: %s", id)
	}

	delete(s.records, id)

	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)

			break
		}
	}

	s.Publish(s.snapshot())

	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]types.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot(), nil
}

func (s *MemoryStore) Close() error {
	s.Hub.Close()

	return nil
}

func (s *MemoryStore) insert(record types.TradeRecord) string {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	s.records[record.ID] = record
	s.order = append(s.order, record.ID)

	return record.ID
}

func (s *MemoryStore) snapshot() []types.TradeRecord {
	records := make([]types.TradeRecord, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.records[id])
	}

	return records
}
