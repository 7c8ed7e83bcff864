package tracker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rxtech-lab/argo-pnl/internal/logger"
	"go.uber.org/zap"
)

// midnightSpec fires at 00:00:00 every day, in the scheduler's location.
const midnightSpec = "0 0 0 * * *"

// boundaryScheduler runs a job at every local midnight, when the day, week
// and month buckets can roll over.
type boundaryScheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	baseCtx context.Context
}

func newBoundaryScheduler(log *logger.Logger, loc *time.Location, baseCtx context.Context) *boundaryScheduler {
	if loc == nil {
		loc = time.Local
	}

	if baseCtx == nil {
		baseCtx = context.Background()
	}

	return &boundaryScheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		logger:  log,
		baseCtx: baseCtx,
	}
}

func (b *boundaryScheduler) add(job func(context.Context)) (cron.EntryID, error) {
	return b.cron.AddFunc(midnightSpec, func() {
		job(b.baseCtx)
	})
}

// next returns the next scheduled run, zero when nothing is scheduled.
func (b *boundaryScheduler) next() time.Time {
	entries := b.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}

	return entries[0].Next
}

func (b *boundaryScheduler) start() {
	b.cron.Start()
	b.logger.Debug("Boundary scheduler started", zap.Time("next_run", b.next()))
}

func (b *boundaryScheduler) stop() {
	ctx := b.cron.Stop()
	<-ctx.Done()
	b.logger.Debug("Boundary scheduler stopped")
}
