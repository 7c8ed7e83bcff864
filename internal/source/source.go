// Package source provides push-based trade sources.
//
// A TradeSource delivers the full current collection of trade records to its
// subscribers every time the collection changes. Deliveries are snapshots, not
// deltas, so a subscriber can recompute from scratch on every call.
package source

import (
	"context"

	"github.com/rxtech-lab/argo-pnl/internal/types"
)

// SnapshotHandler receives the full current collection of records.
// The slice is shared between subscribers and must not be modified.
type SnapshotHandler func(records []types.TradeRecord)

// ErrorHandler receives upstream failures. The subscription stays active.
type ErrorHandler func(err error)

// Subscription is the handle returned by TradeSource.Subscribe.
type Subscription interface {
	// Unsubscribe stops further deliveries. Calling it again is a no-op.
	Unsubscribe()
}

// TradeSource is a push-based collection of trade records.
type TradeSource interface {
	// Subscribe registers the handlers. If the source already holds a
	// snapshot it is delivered before Subscribe returns. The subscription
	// ends when ctx is cancelled or Unsubscribe is called.
	Subscribe(ctx context.Context, onSnapshot SnapshotHandler, onError ErrorHandler) (Subscription, error)
}

// TradeStore is a TradeSource that can also be written to.
type TradeStore interface {
	TradeSource
	// Append stores a record and returns its id. An empty record ID is
	// replaced by a generated one.
	Append(ctx context.Context, record types.TradeRecord) (string, error)
	// Update replaces the record with the given id.
	Update(ctx context.Context, id string, record types.TradeRecord) error
	// Delete removes the record with the given id.
	Delete(ctx context.Context, id string) error
	// List returns the current collection in insertion order.
	List(ctx context.Context) ([]types.TradeRecord, error)
	Close() error
}
