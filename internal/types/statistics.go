package types

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultCurrency is the settlement currency label used when none is configured.
const DefaultCurrency = "USDT"

// MetricsSnapshot is the full set of trade statistics computed from one
// snapshot of trade records at one instant. It is rebuilt from scratch on
// every recomputation and never mutated afterwards.
//
// PnL fields keep full precision; rounding happens in Display.
type MetricsSnapshot struct {
	// Count of all records.
	TotalTrades int `yaml:"total_trades" json:"total_trades"`
	// Count of records with pnl > 0.
	WinningTrades int `yaml:"winning_trades" json:"winning_trades"`
	// WinningTrades / TotalTrades * 100, rounded to one decimal. 0 without trades.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// Sum of pnl over all records.
	NetPnL decimal.Decimal `yaml:"net_pnl" json:"net_pnl"`
	// NetPnL plus the estimated commission of every trade.
	GrossPnL decimal.Decimal `yaml:"gross_pnl" json:"gross_pnl"`
	// Sum of pnl over records attributed to today.
	DailyPnL decimal.Decimal `yaml:"daily_pnl" json:"daily_pnl"`
	// Sum of pnl over records attributed to the current week.
	WeeklyPnL decimal.Decimal `yaml:"weekly_pnl" json:"weekly_pnl"`
	// Sum of pnl over records attributed to the current month.
	MonthlyPnL decimal.Decimal `yaml:"monthly_pnl" json:"monthly_pnl"`
	// Estimated round-trip commission of a single trade.
	CommissionPerTrade decimal.Decimal `yaml:"commission_per_trade" json:"commission_per_trade"`

	// ComputedAt is the instant the windows were derived from.
	ComputedAt time.Time `yaml:"computed_at" json:"computed_at"`
	DayStart   time.Time `yaml:"day_start" json:"day_start"`
	WeekStart  time.Time `yaml:"week_start" json:"week_start"`
	MonthStart time.Time `yaml:"month_start" json:"month_start"`
}

// PnLSign classifies an amount for rendering.
type PnLSign string

const (
	PnLSignPositive PnLSign = "positive"
	PnLSignNegative PnLSign = "negative"
	PnLSignNeutral  PnLSign = "neutral"
)

// SignOf returns the sign class of d.
func SignOf(d decimal.Decimal) PnLSign {
	switch d.Sign() {
	case 1:
		return PnLSignPositive
	case -1:
		return PnLSignNegative
	default:
		return PnLSignNeutral
	}
}

// PnLFigure is a currency amount formatted for display.
type PnLFigure struct {
	// Amount rounded to two decimals, e.g. "-12.50".
	Amount string `yaml:"amount" json:"amount"`
	// Text is Amount followed by the currency, e.g. "-12.50 USDT".
	Text string  `yaml:"text" json:"text"`
	Sign PnLSign `yaml:"sign" json:"sign"`
}

// MetricsDisplay is the rounded, human-readable form of a MetricsSnapshot.
type MetricsDisplay struct {
	Currency      string `yaml:"currency" json:"currency"`
	TotalTrades   int    `yaml:"total_trades" json:"total_trades"`
	WinningTrades int    `yaml:"winning_trades" json:"winning_trades"`
	// WinRate with one decimal, e.g. "33.3".
	WinRate string `yaml:"win_rate" json:"win_rate"`
	// Winning is "<winning> (%<win rate>)".
	Winning    string    `yaml:"winning" json:"winning"`
	GrossPnL   PnLFigure `yaml:"gross_pnl" json:"gross_pnl"`
	NetPnL     PnLFigure `yaml:"net_pnl" json:"net_pnl"`
	DailyPnL   PnLFigure `yaml:"daily_pnl" json:"daily_pnl"`
	WeeklyPnL  PnLFigure `yaml:"weekly_pnl" json:"weekly_pnl"`
	MonthlyPnL PnLFigure `yaml:"monthly_pnl" json:"monthly_pnl"`
	ComputedAt time.Time `yaml:"computed_at" json:"computed_at"`
	DayStart   time.Time `yaml:"day_start" json:"day_start"`
	WeekStart  time.Time `yaml:"week_start" json:"week_start"`
	MonthStart time.Time `yaml:"month_start" json:"month_start"`
}

// Display rounds the snapshot for output. An empty currency falls back to
// DefaultCurrency.
func (m MetricsSnapshot) Display(currency string) MetricsDisplay {
	if currency == "" {
		currency = DefaultCurrency
	}

	winRate := decimal.NewFromFloat(m.WinRate).StringFixed(1)

	return MetricsDisplay{
		Currency:      currency,
		TotalTrades:   m.TotalTrades,
		WinningTrades: m.WinningTrades,
		WinRate:       winRate,
		Winning:       fmt.Sprintf("%d (%%%s)", m.WinningTrades, winRate),
		GrossPnL:      formatPnL(m.GrossPnL, currency),
		NetPnL:        formatPnL(m.NetPnL, currency),
		DailyPnL:      formatPnL(m.DailyPnL, currency),
		WeeklyPnL:     formatPnL(m.WeeklyPnL, currency),
		MonthlyPnL:    formatPnL(m.MonthlyPnL, currency),
		ComputedAt:    m.ComputedAt,
		DayStart:      m.DayStart,
		WeekStart:     m.WeekStart,
		MonthStart:    m.MonthStart,
	}
}

func formatPnL(d decimal.Decimal, currency string) PnLFigure {
	amount := d.StringFixed(2)

	return PnLFigure{
		Amount: amount,
		Text:   amount + " " + currency,
		Sign:   SignOf(d),
	}
}

// WriteMetricsSnapshot writes the display form of a snapshot to a YAML file.
func WriteMetricsSnapshot(path string, snapshot MetricsSnapshot, currency string) error {
	data, err := yaml.Marshal(snapshot.Display(currency))
	if err != nil {
		return fmt.Errorf("failed to marshal metrics snapshot to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metrics snapshot to file: %w", err)
	}

	return nil
}

// ReadMetricsDisplay reads a file written by WriteMetricsSnapshot.
func ReadMetricsDisplay(path string) (MetricsDisplay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MetricsDisplay{}, fmt.Errorf("failed to read metrics file: %w", err)
	}

	var display MetricsDisplay
	if err := yaml.Unmarshal(data, &display); err != nil {
		return MetricsDisplay{}, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}

	return display, nil
}
