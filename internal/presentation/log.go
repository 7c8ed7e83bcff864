package presentation

import (
	"context"

	"github.com/rxtech-lab/argo-pnl/internal/logger"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"go.uber.org/zap"
)

// LogPresenter writes one structured log line per snapshot.
type LogPresenter struct {
	logger   *logger.Logger
	currency string
}

func NewLogPresenter(log *logger.Logger, currency string) *LogPresenter {
	return &LogPresenter{logger: log, currency: currency}
}

func (p *LogPresenter) Present(_ context.Context, snapshot types.MetricsSnapshot) error {
	display := snapshot.Display(p.currency)

	p.logger.Info("Trade statistics",
		zap.Int("total_trades", display.TotalTrades),
		zap.String("winning", display.Winning),
		zap.String("gross_pnl", display.GrossPnL.Text),
		zap.String("net_pnl", display.NetPnL.Text),
		zap.String("daily_pnl", display.DailyPnL.Text),
		zap.String("weekly_pnl", display.WeeklyPnL.Text),
		zap.String("monthly_pnl", display.MonthlyPnL.Text),
		zap.Time("computed_at", display.ComputedAt),
	)

	return nil
}
