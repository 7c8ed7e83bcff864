package commission_fee

import "github.com/shopspring/decimal"

// DefaultFeeRatePerLeg is the taker/maker fee charged on one leg of a trade (5 bps).
var DefaultFeeRatePerLeg = decimal.RequireFromString("0.0005")

// legsPerTrade counts one entry and one exit.
var legsPerTrade = decimal.NewFromInt(2)

type CommissionFee interface {
	// Calculate returns the estimated commission of one round-trip trade on
	// the given position notional, in the settlement currency.
	Calculate(notional decimal.Decimal) decimal.Decimal
}

type Broker string

const (
	BrokerBinanceFutures Broker = "binance_futures"
	BrokerZero           Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerBinanceFutures,
	BrokerZero,
}

// GetCommissionFeeHandler returns the fee model of a broker. feeRatePerLeg is
// only used by percentage-based brokers.
func GetCommissionFeeHandler(broker Broker, feeRatePerLeg decimal.Decimal) CommissionFee {
	switch broker {
	case BrokerBinanceFutures:
		return NewRoundTripCommissionFee(feeRatePerLeg)
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}

// EstimatedCommissionPerTrade is positionNotional * feeRatePerLeg * 2.
//
// It assumes every trade used the same notional and fee rate and does not
// reconcile against fees actually charged.
func EstimatedCommissionPerTrade(positionNotional, feeRatePerLeg decimal.Decimal) decimal.Decimal {
	return positionNotional.Mul(feeRatePerLeg).Mul(legsPerTrade)
}
