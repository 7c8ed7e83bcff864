// Package aggregation turns a snapshot of trade records into trade statistics.
//
// Aggregate is a pure function of the records, the current instant and the
// configuration. It never fails: malformed fields are coerced by ParseRecord.
package aggregation

import (
	"time"

	"github.com/rxtech-lab/argo-pnl/internal/commission_fee"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/rxtech-lab/argo-pnl/internal/window"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Config holds everything Aggregate needs besides the records and the clock.
type Config struct {
	// WeekStartsOn selects the first day of the weekly bucket.
	WeekStartsOn types.WeekStart
	// PositionNotional is order size times leverage.
	PositionNotional decimal.Decimal
	// FeeRatePerLeg is the fee fraction charged on entry and again on exit.
	FeeRatePerLeg decimal.Decimal
	// Commission overrides the fee model. Nil means a round trip at FeeRatePerLeg.
	Commission commission_fee.CommissionFee
	// Location is the calendar timezone. Nil means now's location.
	Location *time.Location
}

// DefaultConfig returns a Monday-first configuration for a 20 USDT order at
// 10x leverage with the default fee rate, in the local timezone.
func DefaultConfig() Config {
	return Config{
		WeekStartsOn:     types.DefaultWeekStart,
		PositionNotional: decimal.NewFromInt(20 * 10),
		FeeRatePerLeg:    commission_fee.DefaultFeeRatePerLeg,
		Location:         time.Local,
	}
}

// CommissionPerTrade returns the estimated commission of one trade.
func (c Config) CommissionPerTrade() decimal.Decimal {
	if c.Commission != nil {
		return c.Commission.Calculate(c.PositionNotional)
	}

	return commission_fee.EstimatedCommissionPerTrade(c.PositionNotional, c.FeeRatePerLeg)
}

func (c Config) location(now time.Time) *time.Location {
	if c.Location != nil {
		return c.Location
	}

	return now.Location()
}

// Aggregate computes the statistics of records as seen at now.
//
// Every record counts toward the totals and the net PnL. Only records with a
// valid timestamp on or after a bucket start count toward that bucket. The
// result does not depend on the order of records.
func Aggregate(records []types.TradeRecord, now time.Time, cfg Config) types.MetricsSnapshot {
	loc := cfg.location(now)
	now = now.In(loc)
	windows := window.Starts(now, cfg.WeekStartsOn)
	commission := cfg.CommissionPerTrade()

	var winning int

	net := decimal.Zero
	daily := decimal.Zero
	weekly := decimal.Zero
	monthly := decimal.Zero

	for _, record := range records {
		trade := ParseRecord(record, loc)

		if trade.IsWin() {
			winning++
		}

		net = net.Add(trade.PnL)

		if trade.OnOrAfter(windows.Day) {
			daily = daily.Add(trade.PnL)
		}

		if trade.OnOrAfter(windows.Week) {
			weekly = weekly.Add(trade.PnL)
		}

		if trade.OnOrAfter(windows.Month) {
			monthly = monthly.Add(trade.PnL)
		}
	}

	total := len(records)

	return types.MetricsSnapshot{
		TotalTrades:        total,
		WinningTrades:      winning,
		WinRate:            WinRate(winning, total),
		NetPnL:             net,
		GrossPnL:           net.Add(commission.Mul(decimal.NewFromInt(int64(total)))),
		DailyPnL:           daily,
		WeeklyPnL:          weekly,
		MonthlyPnL:         monthly,
		CommissionPerTrade: commission,
		ComputedAt:         now,
		DayStart:           windows.Day,
		WeekStart:          windows.Week,
		MonthStart:         windows.Month,
	}
}

// WinRate returns winning / total * 100 rounded to one decimal, or 0 when
// total is 0.
func WinRate(winning, total int) float64 {
	if total <= 0 {
		return 0
	}

	rate := decimal.NewFromInt(int64(winning)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(1)

	return rate.InexactFloat64()
}
