package mocks

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-pnl/internal/types"
)

// DataGenerator generates realistic trade records for testing and benchmarking.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how trade records are generated.
type GeneratorConfig struct {
	// Symbol is the traded pair (e.g., "BTCUSDT")
	Symbol string
	// StartTime is the close time of the first trade
	StartTime time.Time
	// Interval is the duration between two closes
	Interval time.Duration
	// Count is the number of records to generate
	Count int
	// WinProbability is the chance that a trade closes in profit (0.0 to 1.0)
	WinProbability float64
	// AverageWin is the mean profit of a winning trade
	AverageWin float64
	// AverageLoss is the mean loss of a losing trade, as a positive number
	AverageLoss float64
	// Jitter is the relative spread around the averages (0.0 to 1.0)
	Jitter float64
	// AsStrings renders pnl and timestamp the way JSON exports do
	AsStrings bool
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "BTCUSDT",
		StartTime:      time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Interval:       time.Hour,
		Count:          10000,
		WinProbability: 0.55,
		AverageWin:     12.0,
		AverageLoss:    10.0,
		Jitter:         0.5,
		AsStrings:      false,
	}
}

// Generate creates a slice of TradeRecord based on the configuration.
// Records are in chronological order and pnl is rounded to cents.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.TradeRecord {
	records := make([]types.TradeRecord, config.Count)
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		spread := 1.0 + (g.rng.Float64()*2-1)*config.Jitter

		pnl := -config.AverageLoss * spread
		side := "BUY"

		if g.rng.Float64() < config.WinProbability {
			pnl = config.AverageWin * spread
			side = "SELL"
		}

		pnl = roundToDecimals(pnl, 2)

		record := types.TradeRecord{
			ID:        fmt.Sprintf("%s-%06d", config.Symbol, i+1),
			Symbol:    config.Symbol,
			Side:      side,
			PnL:       pnl,
			Timestamp: currentTime,
		}

		if config.AsStrings {
			record.PnL = fmt.Sprintf("%.2f", pnl)
			record.Timestamp = currentTime.Format("2006-01-02T15:04:05.000000")
		}

		records[i] = record
		currentTime = currentTime.Add(config.Interval)
	}

	return records
}

// GenerateMultiSymbol generates records for multiple symbols.
func (g *DataGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) []types.TradeRecord {
	var all []types.TradeRecord

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		// Vary the edge slightly per symbol
		config.WinProbability = math.Min(1, baseConfig.WinProbability*(0.8+g.rng.Float64()*0.4))

		all = append(all, g.Generate(config)...)
	}

	return all
}

// Generate10K is a convenience function to generate 10,000 records
// with default settings for benchmarking.
func Generate10K(symbol string) []types.TradeRecord {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Symbol = symbol
	config.Count = 10000
	return gen.Generate(config)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
