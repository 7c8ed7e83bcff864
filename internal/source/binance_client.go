package source

import (
	"context"

	"github.com/adshao/go-binance/v2/futures"
)

// Service interfaces for mocking the Binance futures API

// ListAccountTradeService lists the account's futures fills (/fapi/v1/userTrades).
type ListAccountTradeService interface {
	Symbol(symbol string) ListAccountTradeService
	StartTime(startTime int64) ListAccountTradeService
	EndTime(endTime int64) ListAccountTradeService
	Limit(limit int) ListAccountTradeService
	Do(ctx context.Context) ([]*futures.AccountTrade, error)
}

// BinanceClient abstracts the futures client for testing.
type BinanceClient interface {
	NewListAccountTradeService() ListAccountTradeService
}

// realBinanceClient wraps the actual futures.Client.
type realBinanceClient struct {
	client *futures.Client
}

func (r *realBinanceClient) NewListAccountTradeService() ListAccountTradeService {
	return &realListAccountTradeService{service: r.client.NewListAccountTradeService()}
}

type realListAccountTradeService struct {
	service *futures.ListAccountTradeService
}

func (s *realListAccountTradeService) Symbol(symbol string) ListAccountTradeService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realListAccountTradeService) StartTime(startTime int64) ListAccountTradeService {
	s.service = s.service.StartTime(startTime)

	return s
}

func (s *realListAccountTradeService) EndTime(endTime int64) ListAccountTradeService {
	s.service = s.service.EndTime(endTime)

	return s
}

func (s *realListAccountTradeService) Limit(limit int) ListAccountTradeService {
	s.service = s.service.Limit(limit)

	return s
}

func (s *realListAccountTradeService) Do(ctx context.Context) ([]*futures.AccountTrade, error) {
	return s.service.Do(ctx)
}
