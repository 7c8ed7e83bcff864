package source

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rxtech-lab/argo-pnl/internal/logger"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	binanceSourceName = "binance"
	// binanceTradeLimit is the largest page /fapi/v1/userTrades returns.
	binanceTradeLimit = 1000
	// binanceTradeWindow is the widest startTime..endTime span the endpoint
	// accepts.
	binanceTradeWindow = 7*24*time.Hour - time.Millisecond
	// binanceSettleLag is how far behind now a fill may still show up.
	binanceSettleLag = time.Minute
	// DefaultPollInterval is used when BinanceSourceConfig.PollInterval is zero.
	DefaultPollInterval = 30 * time.Second
)

// BinanceSourceConfig configures a BinanceSource.
type BinanceSourceConfig struct {
	APIKey    string
	SecretKey string
	// Symbols are the USDT-M futures pairs to follow, e.g. BTCUSDT.
	Symbols      []string
	PollInterval time.Duration
	// Testnet switches to the futures testnet. BaseURL takes precedence.
	Testnet bool
	BaseURL string
	// Since bounds the first fetch of each symbol. Zero lets the exchange
	// pick its default window.
	Since time.Time
}

type fillKey struct {
	symbol string
	id     int64
}

type orderKey struct {
	symbol  string
	orderID int64
}

// orderPnL is the realized PnL of one order, summed over its fills.
type orderPnL struct {
	key      orderKey
	side     string
	pnl      decimal.Decimal
	lastFill int64
}

// BinanceSource turns the account's USDT-M futures fills into trade records.
//
// It polls the fills of each symbol incrementally. Fills with a non-zero
// realized PnL close (part of) a position; they are grouped per order into one
// record whose pnl is the summed realized PnL and whose timestamp is the last
// fill time in unix milliseconds. Polling starts with the first subscription
// and the full set is published whenever it changes.
type BinanceSource struct {
	*Hub

	client    BinanceClient
	symbols   []string
	interval  time.Duration
	since     time.Time
	pageLimit int
	now       func() time.Time
	logger    *logger.Logger

	mu     sync.Mutex
	orders map[orderKey]*orderPnL
	// cursor is the inclusive start time, in unix ms, of the next query.
	cursor map[string]int64
	// folded maps fills already added to an order to their time.
	folded    map[fillKey]int64
	published bool

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewBinanceSource creates a source backed by the Binance futures REST API.
func NewBinanceSource(cfg BinanceSourceConfig, log *logger.Logger) (*BinanceSource, error) {
	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	switch {
	case cfg.BaseURL != "":
		client.BaseURL = cfg.BaseURL
	case cfg.Testnet:
		client.BaseURL = futures.BaseApiTestnetUrl
	default:
		client.BaseURL = futures.BaseApiMainUrl
	}

	return newBinanceSourceWithClient(&realBinanceClient{client: client}, cfg, log)
}

// newBinanceSourceWithClient creates a source with a custom client.
// This is used for testing with mock clients.
func newBinanceSourceWithClient(client BinanceClient, cfg BinanceSourceConfig, log *logger.Logger) (*BinanceSource, error) {
	if len(cfg.Symbols) == 0 {
		return nil, errors.New(errors.ErrCodeMissingParameter, "at least one symbol is required")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &BinanceSource{
		Hub:       NewHub(),
		client:    client,
		symbols:   cfg.Symbols,
		interval:  interval,
		since:     cfg.Since,
		pageLimit: binanceTradeLimit,
		now:       time.Now,
		logger:    log,
		orders:    make(map[orderKey]*orderPnL),
		cursor:    make(map[string]int64),
		folded:    make(map[fillKey]int64),
		done:      make(chan struct{}),
	}, nil
}

// Subscribe implements TradeSource and starts polling on first use.
func (s *BinanceSource) Subscribe(ctx context.Context, onSnapshot SnapshotHandler, onError ErrorHandler) (Subscription, error) {
	sub, err := s.Hub.Subscribe(ctx, onSnapshot, onError)
	if err != nil {
		return nil, err
	}

	s.startOnce.Do(func() {
		pollCtx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel

		go s.run(pollCtx)
	})

	return sub, nil
}

// Close stops polling and drops all subscriptions.
func (s *BinanceSource) Close() error {
	s.startOnce.Do(func() {})

	if s.cancel != nil {
		s.cancel()
		<-s.done
	}

	s.Hub.Close()

	return nil
}

func (s *BinanceSource) run(ctx context.Context) {
	defer close(s.done)

	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

// refresh runs one poll and publishes its outcome.
func (s *BinanceSource) refresh(ctx context.Context) {
	changed, err := s.Poll(ctx)

	s.mu.Lock()
	publish := changed || (!s.published && err == nil)
	if publish {
		s.published = true
	}
	s.mu.Unlock()

	if publish {
		records := s.Records()

		s.logger.Debug("Publishing binance trades", zap.Int("records", len(records)))
		s.Publish(records)
	}

	if err != nil && ctx.Err() == nil {
		s.logger.Warn("Failed to poll binance trades", zap.Error(err))
		s.PublishError(err)
	}
}

// Poll fetches new fills for every symbol and reports whether any record
// changed. Progress made before a failure is kept.
func (s *BinanceSource) Poll(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false

	var firstErr error

	for _, symbol := range s.symbols {
		symbolChanged, err := s.fetchSymbol(ctx, symbol)
		changed = changed || symbolChanged

		if err != nil && firstErr == nil {
			firstErr = errors.NewSourceError(binanceSourceName, fmt.Sprintf("failed to list trades for %s", symbol), err)
		}
	}

	return changed, firstErr
}

// fetchSymbol reads the fills of symbol from its cursor up to now, one time
// window and page at a time. Windows overlap by a millisecond, so every fill
// is deduplicated by id before it is folded.
//
//nolint:funcorder // helper method used by Poll
func (s *BinanceSource) fetchSymbol(ctx context.Context, symbol string) (bool, error) {
	changed := false
	now := s.now().UnixMilli()

	start, ok := s.cursor[symbol]
	if !ok {
		start = s.initialCursor(now)
	}

	for {
		end := min(start+binanceTradeWindow.Milliseconds(), now)

		trades, err := s.client.NewListAccountTradeService().
			Symbol(symbol).
			StartTime(start).
			EndTime(end).
			Limit(s.pageLimit).
			Do(ctx)
		if err != nil {
			return changed, err
		}

		latest := start
		fresh := 0

		for _, trade := range trades {
			if trade == nil {
				continue
			}

			latest = max(latest, trade.Time)

			key := fillKey{symbol: symbol, id: trade.ID}
			if _, done := s.folded[key]; done {
				continue
			}

			s.folded[key] = trade.Time
			fresh++

			if s.fold(trade) {
				changed = true
			}
		}

		switch {
		case len(trades) >= s.pageLimit:
			// A full page with nothing new means more than a page of fills
			// share one millisecond; skip past it.
			if fresh == 0 {
				latest++
			}

			start = latest
		case end < now:
			start = end + 1
		default:
			start = max(latest, now-binanceSettleLag.Milliseconds(), start)
			s.advance(symbol, start)

			s.logger.Debug("Fetched binance trades",
				zap.String("symbol", symbol),
				zap.Int64("cursor", start),
			)

			return changed, nil
		}

		s.advance(symbol, start)
	}
}

func (s *BinanceSource) initialCursor(now int64) int64 {
	if !s.since.IsZero() {
		return s.since.UnixMilli()
	}

	// The endpoint's own default is the last seven days.
	return now - binanceTradeWindow.Milliseconds()
}

// advance moves the cursor of symbol and forgets fills that no later query
// can return.
func (s *BinanceSource) advance(symbol string, cursor int64) {
	s.cursor[symbol] = cursor

	for key, at := range s.folded {
		if key.symbol == symbol && at < cursor {
			delete(s.folded, key)
		}
	}
}

// fold adds a fill to its order. Fills without realized PnL are ignored.
//
//nolint:funcorder // helper method used by fetchSymbol
func (s *BinanceSource) fold(trade *futures.AccountTrade) bool {
	pnl, err := decimal.NewFromString(trade.RealizedPnl)
	if err != nil || pnl.IsZero() {
		return false
	}

	key := orderKey{symbol: trade.Symbol, orderID: trade.OrderID}

	order, exists := s.orders[key]
	if !exists {
		order = &orderPnL{key: key, side: string(trade.Side), pnl: decimal.Zero}
		s.orders[key] = order
	}

	order.pnl = order.pnl.Add(pnl)
	order.lastFill = max(order.lastFill, trade.Time)

	return true
}

// Records returns the current records ordered by close time.
func (s *BinanceSource) Records() []types.TradeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]*orderPnL, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, order)
	}

	sort.Slice(orders, func(i, j int) bool {
		if orders[i].lastFill != orders[j].lastFill {
			return orders[i].lastFill < orders[j].lastFill
		}

		if orders[i].key.symbol != orders[j].key.symbol {
			return orders[i].key.symbol < orders[j].key.symbol
		}

		return orders[i].key.orderID < orders[j].key.orderID
	})

	records := make([]types.TradeRecord, 0, len(orders))
	for _, order := range orders {
		records = append(records, types.TradeRecord{
			ID:        fmt.Sprintf("%s-%d", order.key.symbol, order.key.orderID),
			Symbol:    order.key.symbol,
			Side:      order.side,
			PnL:       order.pnl.String(),
			Timestamp: order.lastFill,
		})
	}

	return records
}
