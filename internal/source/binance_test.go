package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-pnl/internal/logger"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockFill mirrors one element of /fapi/v1/userTrades.
type mockFill struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"orderId"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	RealizedPnl string `json:"realizedPnl"`
	Commission  string `json:"commission"`
	Time        int64  `json:"time"`
}

// tradeQuery is the time window of one /fapi/v1/userTrades request.
type tradeQuery struct {
	symbol    string
	startTime int64
	endTime   int64
}

// mockFuturesServer serves account fills per symbol.
type mockFuturesServer struct {
	mu       sync.Mutex
	fills    map[string][]mockFill
	failing  map[string]bool
	queries  []tradeQuery
	pageSize int
	server   *httptest.Server
}

func newMockFuturesServer() *mockFuturesServer {
	m := &mockFuturesServer{
		fills:    make(map[string][]mockFill),
		failing:  make(map[string]bool),
		pageSize: binanceTradeLimit,
	}

	router := mux.NewRouter()
	router.HandleFunc("/fapi/v1/userTrades", m.handleUserTrades).Methods("GET")
	m.server = httptest.NewServer(router)

	return m
}

func (m *mockFuturesServer) add(fills ...mockFill) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, fill := range fills {
		m.fills[fill.Symbol] = append(m.fills[fill.Symbol], fill)
	}
}

func (m *mockFuturesServer) handleUserTrades(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	symbol := query.Get("symbol")
	startTime, _ := strconv.ParseInt(query.Get("startTime"), 10, 64)
	endTime, _ := strconv.ParseInt(query.Get("endTime"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))

	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries = append(m.queries, tradeQuery{symbol: symbol, startTime: startTime, endTime: endTime})

	if m.failing[symbol] {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))

		return
	}

	if endTime != 0 && endTime-startTime > binanceTradeWindow.Milliseconds() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-4166,"msg":"Search window is restricted to recent 7 days only."}`))

		return
	}

	if limit <= 0 || limit > m.pageSize {
		limit = m.pageSize
	}

	fills := append([]mockFill(nil), m.fills[symbol]...)
	sort.SliceStable(fills, func(i, j int) bool { return fills[i].Time < fills[j].Time })

	page := make([]mockFill, 0)

	for _, fill := range fills {
		if fill.Time < startTime || (endTime != 0 && fill.Time > endTime) {
			continue
		}

		page = append(page, fill)
		if len(page) >= limit {
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

func (m *mockFuturesServer) startTimes(symbol string) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var starts []int64

	for _, q := range m.queries {
		if q.symbol == symbol {
			starts = append(starts, q.startTime)
		}
	}

	return starts
}

type BinanceSourceTestSuite struct {
	suite.Suite
	mock   *mockFuturesServer
	source *BinanceSource
	base   time.Time
}

func TestBinanceSourceSuite(t *testing.T) {
	suite.Run(t, new(BinanceSourceTestSuite))
}

func (suite *BinanceSourceTestSuite) SetupTest() {
	suite.mock = newMockFuturesServer()
	suite.base = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

	source, err := NewBinanceSource(BinanceSourceConfig{
		APIKey:       "key",
		SecretKey:    "secret",
		Symbols:      []string{"BTCUSDT", "ETHUSDT"},
		PollInterval: 20 * time.Millisecond,
		BaseURL:      suite.mock.server.URL,
	}, logger.NewNopLogger())
	suite.Require().NoError(err)

	source.now = func() time.Time { return suite.base.Add(2 * time.Hour) }
	suite.source = source
}

func (suite *BinanceSourceTestSuite) TearDownTest() {
	suite.Require().NoError(suite.source.Close())
	suite.mock.server.Close()
}

func (suite *BinanceSourceTestSuite) ms(offset time.Duration) int64 {
	return suite.base.Add(offset).UnixMilli()
}

func (suite *BinanceSourceTestSuite) TestPollGroupsFillsPerOrder() {
	suite.mock.add(
		// opening fill carries no realized pnl
		mockFill{ID: 1, OrderID: 10, Symbol: "BTCUSDT", Side: "BUY", RealizedPnl: "0", Time: suite.ms(0)},
		mockFill{ID: 2, OrderID: 11, Symbol: "BTCUSDT", Side: "SELL", RealizedPnl: "5.5", Time: suite.ms(time.Minute)},
		mockFill{ID: 3, OrderID: 11, Symbol: "BTCUSDT", Side: "SELL", RealizedPnl: "-1.5", Time: suite.ms(2 * time.Minute)},
		mockFill{ID: 4, OrderID: 20, Symbol: "ETHUSDT", Side: "BUY", RealizedPnl: "-3", Time: suite.ms(time.Hour)},
	)

	changed, err := suite.source.Poll(context.Background())
	suite.Require().NoError(err)
	suite.True(changed)

	records := suite.source.Records()
	suite.Require().Len(records, 2)

	suite.Equal(types.TradeRecord{
		ID:        "BTCUSDT-11",
		Symbol:    "BTCUSDT",
		Side:      "SELL",
		PnL:       "4",
		Timestamp: suite.ms(2 * time.Minute),
	}, records[0])
	suite.Equal("ETHUSDT-20", records[1].ID)
	suite.Equal("-3", records[1].PnL)
}

func (suite *BinanceSourceTestSuite) TestPollIsIncremental() {
	suite.source.now = func() time.Time { return suite.base.Add(10 * time.Second) }
	suite.mock.add(mockFill{ID: 7, OrderID: 30, Symbol: "BTCUSDT", Side: "SELL", RealizedPnl: "2", Time: suite.ms(0)})

	changed, err := suite.source.Poll(context.Background())
	suite.Require().NoError(err)
	suite.True(changed)

	changed, err = suite.source.Poll(context.Background())
	suite.Require().NoError(err)
	suite.False(changed)

	suite.mock.add(mockFill{ID: 8, OrderID: 30, Symbol: "BTCUSDT", Side: "SELL", RealizedPnl: "1.25", Time: suite.ms(time.Second)})

	changed, err = suite.source.Poll(context.Background())
	suite.Require().NoError(err)
	suite.True(changed)

	records := suite.source.Records()
	suite.Require().Len(records, 1)
	suite.Equal("3.25", records[0].PnL)
	suite.Equal(suite.ms(time.Second), records[0].Timestamp)

	// Later polls start at the newest fill instead of re-reading the week
	starts := suite.mock.startTimes("BTCUSDT")
	suite.Require().Len(starts, 3)
	suite.Equal(suite.ms(0), starts[1])
	suite.Equal(suite.ms(0), starts[2])
}

func (suite *BinanceSourceTestSuite) TestRepeatedPollsDoNotInflatePnL() {
	// The fill stays inside the settle lag, so every poll receives it again
	suite.source.now = func() time.Time { return suite.base.Add(10 * time.Second) }
	suite.mock.add(mockFill{ID: 1, OrderID: 5, Symbol: "BTCUSDT", Side: "SELL", RealizedPnl: "5.0", Time: suite.ms(0)})

	for i := 0; i < 3; i++ {
		_, err := suite.source.Poll(context.Background())
		suite.Require().NoError(err)
	}

	records := suite.source.Records()
	suite.Require().Len(records, 1)
	suite.Equal("5", records[0].PnL)
}

func (suite *BinanceSourceTestSuite) TestRepeatedPollsAfterSettleLag() {
	suite.mock.add(mockFill{ID: 1, OrderID: 5, Symbol: "BTCUSDT", Side: "SELL", RealizedPnl: "5", Time: suite.ms(0)})

	_, err := suite.source.Poll(context.Background())
	suite.Require().NoError(err)

	// A fill that shows up late but inside the settle lag is still picked up
	suite.mock.add(mockFill{ID: 2, OrderID: 6, Symbol: "BTCUSDT", Side: "SELL", RealizedPnl: "1", Time: suite.ms(2*time.Hour - 30*time.Second)})
	suite.source.now = func() time.Time { return suite.base.Add(2*time.Hour + 10*time.Second) }

	for i := 0; i < 3; i++ {
		_, err = suite.source.Poll(context.Background())
		suite.Require().NoError(err)
	}

	records := suite.source.Records()
	suite.Require().Len(records, 2)
	suite.Equal("5", records[0].PnL)
	suite.Equal("1", records[1].PnL)
}

func (suite *BinanceSourceTestSuite) TestPollFollowsPages() {
	suite.source.pageLimit = 2

	for i := int64(1); i <= 5; i++ {
		suite.mock.add(mockFill{ID: i, OrderID: 100 + i, Symbol: "BTCUSDT", Side: "SELL", RealizedPnl: "1", Time: suite.ms(time.Duration(i) * time.Second)})
	}

	_, err := suite.source.Poll(context.Background())
	suite.Require().NoError(err)

	records := suite.source.Records()
	suite.Require().Len(records, 5)

	for _, record := range records {
		suite.Equal("1", record.PnL)
	}

	starts := suite.mock.startTimes("BTCUSDT")
	suite.Contains(starts, suite.ms(3*time.Second))
	suite.Contains(starts, suite.ms(5*time.Second))
}

func (suite *BinanceSourceTestSuite) TestPollWalksSevenDayWindows() {
	suite.source.since = suite.base.Add(-20 * 24 * time.Hour)

	suite.mock.add(
		mockFill{ID: 1, OrderID: 1, Symbol: "ETHUSDT", Side: "SELL", RealizedPnl: "4", Time: suite.ms(-15 * 24 * time.Hour)},
		mockFill{ID: 2, OrderID: 2, Symbol: "ETHUSDT", Side: "BUY", RealizedPnl: "-1", Time: suite.ms(time.Hour)},
	)

	_, err := suite.source.Poll(context.Background())
	suite.Require().NoError(err)

	records := suite.source.Records()
	suite.Require().Len(records, 2)
	suite.Equal("4", records[0].PnL)
	suite.Equal("-1", records[1].PnL)

	suite.mock.mu.Lock()
	defer suite.mock.mu.Unlock()

	for _, q := range suite.mock.queries {
		suite.LessOrEqual(q.endTime-q.startTime, binanceTradeWindow.Milliseconds())
	}
}

func (suite *BinanceSourceTestSuite) TestTestnetIsPerClient() {
	source, err := NewBinanceSource(BinanceSourceConfig{
		APIKey:    "key",
		SecretKey: "secret",
		Symbols:   []string{"BTCUSDT"},
		Testnet:   true,
	}, nil)
	suite.Require().NoError(err)

	client, ok := source.client.(*realBinanceClient)
	suite.Require().True(ok)
	suite.Equal(futures.BaseApiTestnetUrl, client.client.BaseURL)
	suite.False(futures.UseTestnet)

	live, err := NewBinanceSource(BinanceSourceConfig{Symbols: []string{"BTCUSDT"}}, nil)
	suite.Require().NoError(err)
	suite.Equal(futures.BaseApiMainUrl, live.client.(*realBinanceClient).client.BaseURL)
}

func (suite *BinanceSourceTestSuite) TestPollFailureIsSourceError() {
	suite.mock.failing["ETHUSDT"] = true
	suite.mock.add(mockFill{ID: 1, OrderID: 1, Symbol: "BTCUSDT", Side: "SELL", RealizedPnl: "1", Time: suite.ms(0)})

	changed, err := suite.source.Poll(context.Background())
	suite.Require().Error(err)
	suite.True(changed)
	suite.True(errors.IsSourceError(err))
	suite.Contains(err.Error(), "ETHUSDT")
	suite.Len(suite.source.Records(), 1)
}

func (suite *BinanceSourceTestSuite) TestSubscribePublishes() {
	suite.mock.add(mockFill{ID: 1, OrderID: 1, Symbol: "BTCUSDT", Side: "SELL", RealizedPnl: "1", Time: suite.ms(0)})

	snapshots := make(chan []types.TradeRecord, 16)

	sub, err := suite.source.Subscribe(context.Background(), func(records []types.TradeRecord) {
		snapshots <- records
	}, nil)
	suite.Require().NoError(err)

	defer sub.Unsubscribe()

	select {
	case records := <-snapshots:
		suite.Len(records, 1)
	case <-time.After(2 * time.Second):
		suite.Fail("no snapshot delivered")
	}

	suite.mock.add(mockFill{ID: 2, OrderID: 2, Symbol: "ETHUSDT", Side: "BUY", RealizedPnl: "-2", Time: suite.ms(2*time.Hour - 10*time.Second)})

	select {
	case records := <-snapshots:
		suite.Len(records, 2)
	case <-time.After(2 * time.Second):
		suite.Fail("no update delivered")
	}
}

func (suite *BinanceSourceTestSuite) TestSubscribeReportsErrors() {
	suite.mock.failing["BTCUSDT"] = true

	errs := make(chan error, 16)

	sub, err := suite.source.Subscribe(context.Background(), func(_ []types.TradeRecord) {}, func(err error) {
		errs <- err
	})
	suite.Require().NoError(err)

	defer sub.Unsubscribe()

	select {
	case err := <-errs:
		suite.True(errors.IsSourceError(err))
	case <-time.After(2 * time.Second):
		suite.Fail("no error delivered")
	}
}

func (suite *BinanceSourceTestSuite) TestRequiresSymbols() {
	_, err := NewBinanceSource(BinanceSourceConfig{}, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}
