// Package tracker keeps trade statistics current.
//
// A Tracker subscribes to a trade source, recomputes the full metrics snapshot
// on every delivered record set, and hands each snapshot to a presenter. It
// also recomputes at every local midnight from the last record set so the
// day, week and month buckets roll over without new trades.
package tracker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rxtech-lab/argo-pnl/internal/aggregation"
	"github.com/rxtech-lab/argo-pnl/internal/logger"
	"github.com/rxtech-lab/argo-pnl/internal/presentation"
	"github.com/rxtech-lab/argo-pnl/internal/source"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
	"go.uber.org/zap"
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithErrorHandler is called with every source error, after it is logged.
func WithErrorHandler(handler func(error)) Option {
	return func(t *Tracker) {
		t.onError = handler
	}
}

// WithoutBoundarySchedule disables the midnight recompute.
func WithoutBoundarySchedule() Option {
	return func(t *Tracker) {
		t.scheduleBoundaries = false
	}
}

// Tracker tracks trade statistics in real time.
type Tracker struct {
	source    source.TradeSource
	presenter presentation.Presenter
	config    aggregation.Config
	logger    *logger.Logger
	now       func() time.Time
	onError   func(error)

	scheduleBoundaries bool

	latest atomic.Pointer[types.MetricsSnapshot]

	// mu serializes recomputation and guards the fields below.
	mu      sync.Mutex
	records []types.TradeRecord
	seen    bool
	lastErr error
	ctx     context.Context

	lifecycleMu  sync.Mutex
	subscription source.Subscription
	scheduler    *boundaryScheduler
}

// NewTracker creates a Tracker. presenter may be nil.
func NewTracker(
	src source.TradeSource,
	presenter presentation.Presenter,
	config aggregation.Config,
	log *logger.Logger,
	opts ...Option,
) *Tracker {
	if log == nil {
		log = logger.NewNopLogger()
	}

	t := &Tracker{
		source:             src,
		presenter:          presenter,
		config:             config,
		logger:             log,
		now:                time.Now,
		scheduleBoundaries: true,
		ctx:                context.Background(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Start subscribes to the source. If the source already holds records the
// first snapshot is computed before Start returns. The subscription ends with
// ctx or Stop.
func (t *Tracker) Start(ctx context.Context) error {
	t.lifecycleMu.Lock()
	defer t.lifecycleMu.Unlock()

	if t.subscription != nil {
		return errors.New(errors.ErrCodeTrackerAlreadyStarted, "tracker already started")
	}

	t.mu.Lock()
	t.ctx = ctx
	t.mu.Unlock()

	if t.scheduleBoundaries {
		scheduler := newBoundaryScheduler(t.logger, t.config.Location, ctx)
		if _, err := scheduler.add(func(context.Context) { t.Refresh() }); err != nil {
			return errors.Wrap(errors.ErrCodeScheduleFailed, "failed to schedule boundary recompute", err)
		}

		t.scheduler = scheduler
	}

	subscription, err := t.source.Subscribe(ctx, t.handleSnapshot, t.handleError)
	if err != nil {
		t.scheduler = nil

		if errors.HasCode(err, errors.ErrCodeSourceClosed) {
			return err
		}

		return errors.Wrap(errors.ErrCodeSubscriptionFailed, "failed to subscribe to trade source", err)
	}

	t.subscription = subscription

	if t.scheduler != nil {
		t.scheduler.start()
	}

	t.logger.Info("Tracker started",
		zap.String("week_starts_on", string(t.config.WeekStartsOn)),
		zap.String("position_notional", t.config.PositionNotional.String()),
		zap.String("commission_per_trade", t.config.CommissionPerTrade().String()),
	)

	return nil
}

// Stop unsubscribes and stops the boundary schedule. The latest snapshot
// stays readable. Stop on a stopped tracker is a no-op.
func (t *Tracker) Stop() {
	t.lifecycleMu.Lock()
	defer t.lifecycleMu.Unlock()

	if t.subscription == nil {
		return
	}

	t.subscription.Unsubscribe()
	t.subscription = nil

	if t.scheduler != nil {
		t.scheduler.stop()
		t.scheduler = nil
	}

	t.logger.Info("Tracker stopped")
}

// Latest returns the most recent snapshot. ok is false until the first
// record set has been delivered.
func (t *Tracker) Latest() (snapshot types.MetricsSnapshot, ok bool) {
	latest := t.latest.Load()
	if latest == nil {
		return types.MetricsSnapshot{}, false
	}

	return *latest, true
}

// LastError returns the most recent source error, nil after a successful
// delivery.
func (t *Tracker) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.lastErr
}

// Refresh recomputes from the last delivered record set at the current
// instant. It does nothing before the first delivery.
func (t *Tracker) Refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.seen {
		return
	}

	t.logger.Info("Recomputing at window boundary", zap.Time("now", t.now()))
	t.recompute()
}

func (t *Tracker) handleSnapshot(records []types.TradeRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = records
	t.seen = true
	t.lastErr = nil
	t.recompute()
}

func (t *Tracker) handleError(err error) {
	t.mu.Lock()
	t.lastErr = err
	t.mu.Unlock()

	if errors.IsSourceError(err) {
		t.logger.Warn("Trade source error, keeping last snapshot", zap.Error(err))
	} else {
		t.logger.Error("Trade subscription failed, keeping last snapshot",
			zap.Error(err),
			zap.Int("code", int(errors.GetCode(err))),
		)
	}

	if t.onError != nil {
		t.onError(err)
	}
}

// recompute must be called with mu held.
func (t *Tracker) recompute() {
	snapshot := aggregation.Aggregate(t.records, t.now(), t.config)
	t.latest.Store(&snapshot)

	t.logger.Debug("Statistics recomputed",
		zap.Int("total_trades", snapshot.TotalTrades),
		zap.Int("winning_trades", snapshot.WinningTrades),
		zap.String("net_pnl", snapshot.NetPnL.String()),
	)

	if t.presenter == nil {
		return
	}

	if err := t.presenter.Present(t.ctx, snapshot); err != nil {
		t.logger.Warn("Failed to present statistics", zap.Error(err))
	}
}
