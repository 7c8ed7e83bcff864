package source

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
)

// Hub fans snapshots and errors out to subscribers.
//
// Deliveries are serialized: no two handler invocations of a Hub run at the
// same time, and every subscriber sees snapshots in publish order. Handlers may
// call Unsubscribe but must not call Publish on the same Hub.
type Hub struct {
	deliverMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	subs    map[uint64]*hubSubscription
	current []types.TradeRecord
	ready   bool
	closed  bool
}

type hubSubscription struct {
	id         uint64
	hub        *Hub
	onSnapshot SnapshotHandler
	onError    ErrorHandler
	active     atomic.Bool
	once       sync.Once
	stop       func() bool
}

// NewHub creates a Hub without a current snapshot.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[uint64]*hubSubscription),
	}
}

// Subscribe implements TradeSource.
func (h *Hub) Subscribe(ctx context.Context, onSnapshot SnapshotHandler, onError ErrorHandler) (Subscription, error) {
	if onSnapshot == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "snapshot handler is required")
	}

	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()

		return nil, errors.New(errors.ErrCodeSourceClosed, "trade source is closed")
	}

	h.nextID++
	sub := &hubSubscription{
		id:         h.nextID,
		hub:        h,
		onSnapshot: onSnapshot,
		onError:    onError,
	}
	sub.active.Store(true)
	h.subs[sub.id] = sub

	current, ready := h.current, h.ready
	h.mu.Unlock()

	if ctx != nil {
		stop := context.AfterFunc(ctx, sub.Unsubscribe)

		h.mu.Lock()
		sub.stop = stop
		h.mu.Unlock()
	}

	if ready {
		sub.deliver(current)
	}

	return sub, nil
}

// Publish makes records the current snapshot and delivers it to every
// subscriber. The slice is copied.
func (h *Hub) Publish(records []types.TradeRecord) {
	snapshot := make([]types.TradeRecord, len(records))
	copy(snapshot, records)

	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()

		return
	}

	h.current = snapshot
	h.ready = true
	subs := h.activeSubscriptions()
	h.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(snapshot)
	}
}

// PublishError delivers err to every subscriber that registered an error
// handler. The current snapshot is left unchanged.
func (h *Hub) PublishError(err error) {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()

	h.mu.Lock()
	subs := h.activeSubscriptions()
	h.mu.Unlock()

	for _, sub := range subs {
		if sub.onError != nil && sub.active.Load() {
			sub.onError(err)
		}
	}
}

// Current returns the last published snapshot and whether one exists.
func (h *Hub) Current() ([]types.TradeRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.current, h.ready
}

// SubscriberCount returns the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}

// Close drops every subscription. Later calls to Subscribe fail and later
// publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := h.activeSubscriptions()
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

func (h *Hub) activeSubscriptions() []*hubSubscription {
	subs := make([]*hubSubscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}

	return subs
}

func (s *hubSubscription) deliver(records []types.TradeRecord) {
	if s.active.Load() {
		s.onSnapshot(records)
	}
}

func (s *hubSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.active.Store(false)

		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		stop := s.stop
		s.hub.mu.Unlock()

		if stop != nil {
			stop()
		}
	})
}
