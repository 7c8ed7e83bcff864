package commission_fee

import "github.com/shopspring/decimal"

// RoundTripCommissionFee charges a fixed fraction of the notional on entry and
// again on exit, like exchange futures taker fees.
type RoundTripCommissionFee struct {
	FeeRatePerLeg decimal.Decimal
}

// NewRoundTripCommissionFee creates a round-trip fee model.
func NewRoundTripCommissionFee(feeRatePerLeg decimal.Decimal) CommissionFee {
	return &RoundTripCommissionFee{FeeRatePerLeg: feeRatePerLeg}
}

func (c *RoundTripCommissionFee) Calculate(notional decimal.Decimal) decimal.Decimal {
	return EstimatedCommissionPerTrade(notional, c.FeeRatePerLeg)
}
