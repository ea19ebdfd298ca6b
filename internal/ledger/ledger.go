// Package ledger holds the pure arithmetic behind seed distributions,
// harvest entries and farmer receipts. All money and weight math runs on
// decimals so that per-entry totals and receipt aggregation cannot drift
// apart.
package ledger

import (
	"github.com/shopspring/decimal"

	"ricemill-service/internal/model"
)

// SeedTotal returns bags given times the rate per bag.
func SeedTotal(bagsGiven int, ratePerBag float64) float64 {
	total := decimal.NewFromInt(int64(bagsGiven)).Mul(decimal.NewFromFloat(ratePerBag))
	return total.InexactFloat64()
}

// HarvestWeightQuintals converts returned bags and net weight per bag in kg
// into quintals (1 quintal = 100 kg).
func HarvestWeightQuintals(bagsReturned int, netWeightPerBagKg float64) float64 {
	kg := decimal.NewFromInt(int64(bagsReturned)).Mul(decimal.NewFromFloat(netWeightPerBagKg))
	return kg.Div(decimal.NewFromInt(100)).InexactFloat64()
}

// HarvestTotal returns the sale amount for a weight at the given rate per
// quintal.
func HarvestTotal(weightQuintals, ratePerQuintal float64) float64 {
	total := decimal.NewFromFloat(weightQuintals).Mul(decimal.NewFromFloat(ratePerQuintal))
	return total.InexactFloat64()
}

// Summary is the aggregate of a farmer's full transaction history as of the
// moment of computation.
type Summary struct {
	SeedCostDebit  float64
	RiceSaleCredit float64
	FinalBalance   float64
}

// Summarize sums every seed distribution into the debit side and every
// harvest entry into the credit side. No date filtering: receipts are
// cumulative lifetime aggregations.
func Summarize(seeds []model.SeedDistribution, harvests []model.HarvestEntry) Summary {
	debit := decimal.Zero
	for _, sd := range seeds {
		debit = debit.Add(decimal.NewFromFloat(sd.TotalAmount))
	}

	credit := decimal.Zero
	for _, he := range harvests {
		credit = credit.Add(decimal.NewFromFloat(he.TotalAmount))
	}

	return Summary{
		SeedCostDebit:  debit.InexactFloat64(),
		RiceSaleCredit: credit.InexactFloat64(),
		FinalBalance:   credit.Sub(debit).InexactFloat64(),
	}
}
