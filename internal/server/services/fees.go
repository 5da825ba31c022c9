package services

import "github.com/shopspring/decimal"

// feeTier maps an inclusive amount upper bound to a flat fee in currency
// units. The table mirrors the commercial fee grid for P2P transfers.
type feeTier struct {
	upTo decimal.Decimal
	fee  decimal.Decimal
}

var transferFeeTiers = []feeTier{
	{upTo: decimal.NewFromInt(5000), fee: decimal.Zero},
	{upTo: decimal.NewFromInt(25000), fee: decimal.Zero},
	{upTo: decimal.NewFromInt(50000), fee: decimal.Zero},
	{upTo: decimal.NewFromInt(100000), fee: decimal.NewFromInt(100)},
}

// feeAboveTiers applies to amounts beyond the last tier bound.
var feeAboveTiers = decimal.NewFromInt(200)

// TransferFee returns the flat fee for a P2P transfer of amount. Bounds are
// inclusive: 100,000 costs 100, 100,000.01 costs 200.
func TransferFee(amount decimal.Decimal) decimal.Decimal {
	for _, t := range transferFeeTiers {
		if amount.LessThanOrEqual(t.upTo) {
			return t.fee
		}
	}
	return feeAboveTiers
}
