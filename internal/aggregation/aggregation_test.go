package aggregation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-pnl/internal/commission_fee"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/rxtech-lab/argo-pnl/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AggregationTestSuite struct {
	suite.Suite
	now      time.Time
	dayStart time.Time
	cfg      Config
}

func TestAggregationSuite(t *testing.T) {
	suite.Run(t, new(AggregationTestSuite))
}

func (suite *AggregationTestSuite) SetupTest() {
	// Wednesday
	suite.now = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	suite.dayStart = time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	suite.cfg = Config{
		WeekStartsOn:     types.WeekStartMonday,
		PositionNotional: decimal.NewFromInt(100 * 5),
		FeeRatePerLeg:    decimal.RequireFromString("0.0005"),
		Location:         time.UTC,
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (suite *AggregationTestSuite) assertDecimal(expected string, actual decimal.Decimal, field string) {
	suite.Truef(d(expected).Equal(actual), "%s: expected %s, got %s", field, expected, actual.String())
}

func (suite *AggregationTestSuite) scenarioRecords() []types.TradeRecord {
	return []types.TradeRecord{
		{ID: "a", PnL: 100, Timestamp: suite.dayStart.Add(time.Hour)},
		{ID: "b", PnL: -40, Timestamp: suite.dayStart.Add(-25 * time.Hour)},
		{ID: "c", PnL: 0, Timestamp: suite.dayStart.Add(2 * time.Hour)},
	}
}

func (suite *AggregationTestSuite) TestScenario() {
	snapshot := Aggregate(suite.scenarioRecords(), suite.now, suite.cfg)

	suite.Equal(3, snapshot.TotalTrades)
	suite.Equal(1, snapshot.WinningTrades)
	suite.Equal(33.3, snapshot.WinRate)
	suite.assertDecimal("60", snapshot.NetPnL, "net")
	suite.assertDecimal("0.5", snapshot.CommissionPerTrade, "commission")
	suite.assertDecimal("61.5", snapshot.GrossPnL, "gross")
	suite.assertDecimal("100", snapshot.DailyPnL, "daily")
	suite.assertDecimal("60", snapshot.WeeklyPnL, "weekly")
	suite.assertDecimal("60", snapshot.MonthlyPnL, "monthly")

	suite.Equal(suite.now, snapshot.ComputedAt)
	suite.Equal(suite.dayStart, snapshot.DayStart)
	suite.Equal(time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), snapshot.WeekStart)
	suite.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), snapshot.MonthStart)
}

func (suite *AggregationTestSuite) TestScenarioWithStringFields() {
	records := []types.TradeRecord{
		{PnL: "100", Timestamp: "2024-05-15T01:00:00"},
		{PnL: "-40.0", Timestamp: "2024-05-13T23:00:00.123456"},
		{PnL: "0", Timestamp: suite.dayStart.Add(2 * time.Hour).UnixMilli()},
	}

	snapshot := Aggregate(records, suite.now, suite.cfg)

	suite.Equal(3, snapshot.TotalTrades)
	suite.Equal(1, snapshot.WinningTrades)
	suite.assertDecimal("60", snapshot.NetPnL, "net")
	suite.assertDecimal("100", snapshot.DailyPnL, "daily")
	suite.assertDecimal("60", snapshot.WeeklyPnL, "weekly")
}

func (suite *AggregationTestSuite) TestEmpty() {
	for _, records := range [][]types.TradeRecord{nil, {}} {
		snapshot := Aggregate(records, suite.now, suite.cfg)

		suite.Equal(0, snapshot.TotalTrades)
		suite.Equal(0, snapshot.WinningTrades)
		suite.Equal(0.0, snapshot.WinRate)
		suite.True(snapshot.NetPnL.IsZero())
		suite.True(snapshot.GrossPnL.IsZero())
		suite.True(snapshot.DailyPnL.IsZero())
		suite.True(snapshot.WeeklyPnL.IsZero())
		suite.True(snapshot.MonthlyPnL.IsZero())
	}
}

func (suite *AggregationTestSuite) TestMissingPnLCountsAsZero() {
	records := []types.TradeRecord{
		{Timestamp: suite.now},
		{PnL: "not a number", Timestamp: suite.now},
		{PnL: 5, Timestamp: suite.now},
	}

	snapshot := Aggregate(records, suite.now, suite.cfg)

	suite.Equal(3, snapshot.TotalTrades)
	suite.Equal(1, snapshot.WinningTrades)
	suite.assertDecimal("5", snapshot.NetPnL, "net")
	suite.assertDecimal("5", snapshot.DailyPnL, "daily")
}

func (suite *AggregationTestSuite) TestInvalidTimestampOnlyCountsTowardTotals() {
	records := []types.TradeRecord{
		{PnL: 10, Timestamp: "yesterday-ish"},
		{PnL: 20},
		{PnL: 30, Timestamp: suite.now},
	}

	snapshot := Aggregate(records, suite.now, suite.cfg)

	suite.Equal(3, snapshot.TotalTrades)
	suite.assertDecimal("60", snapshot.NetPnL, "net")
	suite.assertDecimal("30", snapshot.DailyPnL, "daily")
	suite.assertDecimal("30", snapshot.WeeklyPnL, "weekly")
	suite.assertDecimal("30", snapshot.MonthlyPnL, "monthly")
}

func (suite *AggregationTestSuite) TestFutureTimestampCountsInEveryBucket() {
	records := []types.TradeRecord{{PnL: 7, Timestamp: suite.now.Add(48 * time.Hour)}}

	snapshot := Aggregate(records, suite.now, suite.cfg)

	suite.assertDecimal("7", snapshot.DailyPnL, "daily")
	suite.assertDecimal("7", snapshot.WeeklyPnL, "weekly")
	suite.assertDecimal("7", snapshot.MonthlyPnL, "monthly")
}

func (suite *AggregationTestSuite) TestBucketBoundaryIsInclusive() {
	records := []types.TradeRecord{
		{PnL: 1, Timestamp: suite.dayStart},
		{PnL: 2, Timestamp: suite.dayStart.Add(-time.Nanosecond)},
	}

	snapshot := Aggregate(records, suite.now, suite.cfg)

	suite.assertDecimal("1", snapshot.DailyPnL, "daily")
	suite.assertDecimal("3", snapshot.WeeklyPnL, "weekly")
}

func (suite *AggregationTestSuite) TestOrderIndependence() {
	records := []types.TradeRecord{
		{PnL: 0.1, Timestamp: suite.now},
		{PnL: 0.2, Timestamp: suite.now.Add(-72 * time.Hour)},
		{PnL: "-0.3", Timestamp: "2024-04-30T12:00:00Z"},
		{PnL: 12.345, Timestamp: "2024-05-01"},
		{PnL: nil, Timestamp: nil},
		{PnL: "1e2", Timestamp: suite.now},
	}

	expected := Aggregate(records, suite.now, suite.cfg)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		shuffled := append([]types.TradeRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		actual := Aggregate(shuffled, suite.now, suite.cfg)

		suite.Equal(expected.TotalTrades, actual.TotalTrades)
		suite.Equal(expected.WinningTrades, actual.WinningTrades)
		suite.Equal(expected.WinRate, actual.WinRate)
		suite.True(expected.NetPnL.Equal(actual.NetPnL))
		suite.True(expected.GrossPnL.Equal(actual.GrossPnL))
		suite.True(expected.DailyPnL.Equal(actual.DailyPnL))
		suite.True(expected.WeeklyPnL.Equal(actual.WeeklyPnL))
		suite.True(expected.MonthlyPnL.Equal(actual.MonthlyPnL))
	}
}

func (suite *AggregationTestSuite) TestWinRateBounds() {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		n := rng.Intn(30)
		records := make([]types.TradeRecord, n)
		for j := range records {
			records[j] = types.TradeRecord{PnL: rng.Intn(21) - 10, Timestamp: suite.now}
		}

		snapshot := Aggregate(records, suite.now, suite.cfg)

		suite.LessOrEqual(snapshot.WinningTrades, snapshot.TotalTrades)
		suite.GreaterOrEqual(snapshot.WinRate, 0.0)
		suite.LessOrEqual(snapshot.WinRate, 100.0)
		suite.True(snapshot.GrossPnL.GreaterThanOrEqual(snapshot.NetPnL))
	}
}

func (suite *AggregationTestSuite) TestGeneratedHistory() {
	config := mocks.DefaultConfig()
	config.StartTime = time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)
	config.Count = 5000

	numeric := mocks.NewDataGenerator(3).Generate(config)

	config.AsStrings = true
	textual := mocks.NewDataGenerator(3).Generate(config)

	winning := 0
	net := decimal.Zero
	for _, record := range numeric {
		pnl := ParsePnL(record.PnL)
		net = net.Add(pnl)
		if pnl.IsPositive() {
			winning++
		}
	}

	fromNumeric := Aggregate(numeric, suite.now, suite.cfg)
	fromText := Aggregate(textual, suite.now, suite.cfg)

	suite.Equal(5000, fromNumeric.TotalTrades)
	suite.Equal(winning, fromNumeric.WinningTrades)
	suite.True(net.Equal(fromNumeric.NetPnL))

	suite.Equal(fromNumeric.WinningTrades, fromText.WinningTrades)
	suite.True(fromNumeric.NetPnL.Equal(fromText.NetPnL))
	suite.True(fromNumeric.DailyPnL.Equal(fromText.DailyPnL))
	suite.True(fromNumeric.WeeklyPnL.Equal(fromText.WeeklyPnL))
	suite.True(fromNumeric.MonthlyPnL.Equal(fromText.MonthlyPnL))
}

func (suite *AggregationTestSuite) TestGrossEqualsNetWithoutFees() {
	cfg := suite.cfg
	cfg.FeeRatePerLeg = decimal.Zero

	snapshot := Aggregate(suite.scenarioRecords(), suite.now, cfg)
	suite.True(snapshot.GrossPnL.Equal(snapshot.NetPnL))

	cfg = suite.cfg
	cfg.Commission = commission_fee.NewZeroCommissionFee()

	snapshot = Aggregate(suite.scenarioRecords(), suite.now, cfg)
	suite.True(snapshot.GrossPnL.Equal(snapshot.NetPnL))
	suite.True(snapshot.CommissionPerTrade.IsZero())
}

func (suite *AggregationTestSuite) TestCommissionOverride() {
	cfg := suite.cfg
	cfg.Commission = commission_fee.GetCommissionFeeHandler(commission_fee.BrokerBinanceFutures, d("0.001"))

	snapshot := Aggregate(suite.scenarioRecords(), suite.now, cfg)

	suite.assertDecimal("1", snapshot.CommissionPerTrade, "commission")
	suite.assertDecimal("63", snapshot.GrossPnL, "gross")
}

func (suite *AggregationTestSuite) TestSundayFirstWeek() {
	cfg := suite.cfg
	cfg.WeekStartsOn = types.WeekStartSunday

	records := []types.TradeRecord{
		// Sunday 12 May
		{PnL: 4, Timestamp: time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)},
		// Saturday 11 May
		{PnL: 8, Timestamp: time.Date(2024, 5, 11, 9, 0, 0, 0, time.UTC)},
	}

	snapshot := Aggregate(records, suite.now, cfg)
	suite.assertDecimal("4", snapshot.WeeklyPnL, "weekly")

	cfg.WeekStartsOn = types.WeekStartMonday
	snapshot = Aggregate(records, suite.now, cfg)
	suite.True(snapshot.WeeklyPnL.IsZero())
}

func (suite *AggregationTestSuite) TestLocationDrivesWindows() {
	tokyo := time.FixedZone("JST", 9*60*60)

	cfg := suite.cfg
	cfg.Location = tokyo

	// 2024-05-15 23:30 UTC is already 16 May in Tokyo.
	now := time.Date(2024, 5, 15, 23, 30, 0, 0, time.UTC)
	records := []types.TradeRecord{
		{PnL: 1, Timestamp: time.Date(2024, 5, 15, 14, 0, 0, 0, time.UTC)},
		{PnL: 2, Timestamp: time.Date(2024, 5, 15, 16, 0, 0, 0, time.UTC)},
	}

	snapshot := Aggregate(records, now, cfg)

	suite.assertDecimal("2", snapshot.DailyPnL, "daily")
	suite.Equal(time.Date(2024, 5, 16, 0, 0, 0, 0, tokyo), snapshot.DayStart)
	suite.Equal(tokyo, snapshot.ComputedAt.Location())
}

func (suite *AggregationTestSuite) TestWinRate() {
	tests := []struct {
		name     string
		winning  int
		total    int
		expected float64
	}{
		{name: "no trades", winning: 0, total: 0, expected: 0},
		{name: "one third", winning: 1, total: 3, expected: 33.3},
		{name: "two thirds", winning: 2, total: 3, expected: 66.7},
		{name: "all", winning: 4, total: 4, expected: 100},
		{name: "none", winning: 0, total: 4, expected: 0},
		{name: "one seventh", winning: 1, total: 7, expected: 14.3},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, WinRate(tc.winning, tc.total))
		})
	}
}

func (suite *AggregationTestSuite) TestDefaultConfig() {
	cfg := DefaultConfig()

	suite.Equal(types.WeekStartMonday, cfg.WeekStartsOn)
	suite.assertDecimal("0.2", cfg.CommissionPerTrade(), "commission")
}

func BenchmarkAggregate10K(b *testing.B) {
	records := mocks.Generate10K("BTCUSDT")
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()
	cfg.Location = time.UTC

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		Aggregate(records, now, cfg)
	}
}
