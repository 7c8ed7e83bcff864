package source

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// encodeField renders a loosely typed record field as text for storage.
// Parsing is left to the aggregation boundary, so nothing is validated here.
func encodeField(v any) sql.NullString {
	switch x := v.(type) {
	case nil:
		return sql.NullString{}
	case string:
		return sql.NullString{String: x, Valid: true}
	case []byte:
		return sql.NullString{String: string(x), Valid: true}
	case json.Number:
		return sql.NullString{String: x.String(), Valid: true}
	case decimal.Decimal:
		return sql.NullString{String: x.String(), Valid: true}
	case time.Time:
		if x.IsZero() {
			return sql.NullString{}
		}

		return sql.NullString{String: x.Format(time.RFC3339Nano), Valid: true}
	case float64:
		return encodeFloat(x)
	case float32:
		return encodeFloat(float64(x))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return sql.NullString{String: fmt.Sprintf("%d", x), Valid: true}
	default:
		return sql.NullString{String: fmt.Sprint(x), Valid: true}
	}
}

func encodeFloat(f float64) sql.NullString {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullString{}
	}

	return sql.NullString{String: strconv.FormatFloat(f, 'f', -1, 64), Valid: true}
}

// decodeField is the inverse of encodeField. NULL becomes nil.
func decodeField(s sql.NullString) any {
	if !s.Valid {
		return nil
	}

	return s.String
}
