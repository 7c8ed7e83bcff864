package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// TradeRecord is a closed trade as delivered by a trade source.
// Sources are loosely typed (JSON exports, text columns, exchange strings), so
// PnL and Timestamp are kept as delivered and parsed at the aggregation boundary.
type TradeRecord struct {
	// ID identifies the record inside its source (push id, uuid, order id).
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// Symbol is the traded pair, e.g. BTCUSDT. Optional.
	Symbol string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	// Side is the closing side reported by the source. Optional.
	Side string `json:"side,omitempty" yaml:"side,omitempty"`
	// PnL is the realized profit or loss of the trade in the settlement currency.
	// A number, a numeric string or nil.
	PnL any `json:"pnl,omitempty" yaml:"pnl,omitempty"`
	// Timestamp is the instant the PnL is attributed to.
	// A time.Time, an ISO-8601 string, unix milliseconds or nil.
	Timestamp any `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// Trade is a TradeRecord after parsing.
type Trade struct {
	ID     string
	Symbol string
	// PnL is zero when the record's pnl was missing or not numeric.
	PnL decimal.Decimal
	// Timestamp is None when the record's timestamp was missing or invalid.
	Timestamp optional.Option[time.Time]
}

// IsWin reports whether the trade closed with a strictly positive PnL.
func (t Trade) IsWin() bool {
	return t.PnL.IsPositive()
}

// OnOrAfter reports whether the trade is attributed to start or later.
// A trade without a valid timestamp is never on or after any instant.
func (t Trade) OnOrAfter(start time.Time) bool {
	if t.Timestamp.IsNone() {
		return false
	}

	return !t.Timestamp.Unwrap().Before(start)
}
