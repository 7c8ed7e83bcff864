package aggregation

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/shopspring/decimal"
)

// maxEpochMillis bounds numeric timestamps to the range a JavaScript Date
// accepts (±100,000,000 days around the epoch).
const maxEpochMillis = 8.64e15

// Layouts tried for timestamps without an explicit UTC offset. They are read in
// the configured calendar location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Layouts with an explicit offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseRecord converts a loosely typed record into a Trade.
//
// A missing or non-numeric pnl becomes zero. A missing or unparseable
// timestamp becomes None. ParseRecord never fails.
func ParseRecord(rec types.TradeRecord, loc *time.Location) types.Trade {
	if loc == nil {
		loc = time.Local
	}

	return types.Trade{
		ID:        rec.ID,
		Symbol:    rec.Symbol,
		PnL:       ParsePnL(rec.PnL),
		Timestamp: ParseTimestamp(rec.Timestamp, loc),
	}
}

// ParsePnL coerces a pnl field to a decimal, defaulting to zero.
func ParsePnL(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero
		}

		return *x
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return decimal.NewFromInt(int64(x))
	case int8:
		return decimal.NewFromInt(int64(x))
	case int16:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return fromUint(uint64(x))
	case uint16:
		return fromUint(uint64(x))
	case uint32:
		return fromUint(uint64(x))
	case uint64:
		return fromUint(x)
	case json.Number:
		return fromString(x.String())
	case string:
		return fromString(x)
	case []byte:
		return fromString(string(x))
	default:
		return decimal.Zero
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}

	return decimal.NewFromFloat(f)
}

func fromUint(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

func fromString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}

	return d
}

// ParseTimestamp coerces a timestamp field to an instant.
//
// Numbers and digit-only strings are unix milliseconds. Strings with a UTC
// offset are absolute; strings without one are read in loc, except bare
// dates (2006-01-02), which are UTC midnight.
func ParseTimestamp(v any, loc *time.Location) optional.Option[time.Time] {
	if loc == nil {
		loc = time.Local
	}

	switch x := v.(type) {
	case nil:
		return optional.None[time.Time]()
	case time.Time:
		if x.IsZero() {
			return optional.None[time.Time]()
		}

		return optional.Some(x)
	case *time.Time:
		if x == nil || x.IsZero() {
			return optional.None[time.Time]()
		}

		return optional.Some(*x)
	case int:
		return fromMillis(float64(x))
	case int32:
		return fromMillis(float64(x))
	case int64:
		return fromMillis(float64(x))
	case uint32:
		return fromMillis(float64(x))
	case uint64:
		return fromMillis(float64(x))
	case float64:
		return fromMillis(x)
	case float32:
		return fromMillis(float64(x))
	case json.Number:
		return timestampFromString(x.String(), loc)
	case string:
		return timestampFromString(x, loc)
	case []byte:
		return timestampFromString(string(x), loc)
	default:
		return optional.None[time.Time]()
	}
}

func fromMillis(ms float64) optional.Option[time.Time] {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return optional.None[time.Time]()
	}

	return optional.Some(time.UnixMilli(int64(ms)))
}

func timestampFromString(s string, loc *time.Location) optional.Option[time.Time] {
	s = strings.TrimSpace(s)
	if s == "" {
		return optional.None[time.Time]()
	}

	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		return fromMillis(ms)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return optional.Some(t)
		}
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return optional.Some(t)
		}
	}

	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return optional.Some(t)
	}

	return optional.None[time.Time]()
}
