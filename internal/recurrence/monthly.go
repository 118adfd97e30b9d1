package recurrence

import "github.com/shopspring/decimal"

// Periods per month for each frequency, kept as exact ratios:
// 52 weeks / 12 months ≈ 4.33 and 26 fortnights / 12 months ≈ 2.17.
var (
	WeeksPerMonth      = decimal.NewFromInt(52).Div(decimal.NewFromInt(12))
	FortnightsPerMonth = decimal.NewFromInt(26).Div(decimal.NewFromInt(12))
	MonthsPerQuarter   = decimal.NewFromInt(3)
	MonthsPerYear      = decimal.NewFromInt(12)
)

// MonthlyEquivalent converts a per-period amount in cents to its unrounded
// monthly equivalent. It is meant for budget-level comparisons only and is
// never used to schedule instalments.
func MonthlyEquivalent(amountCents int64, f Frequency) decimal.Decimal {
	amount := decimal.NewFromInt(amountCents)
	switch f.Normalized() {
	case Weekly:
		return amount.Mul(WeeksPerMonth)
	case Fortnightly:
		return amount.Mul(FortnightsPerMonth)
	case Quarterly:
		return amount.Div(MonthsPerQuarter)
	case Yearly:
		return amount.Div(MonthsPerYear)
	default:
		return amount
	}
}

// MonthlyEquivalentCents is MonthlyEquivalent rounded to the nearest cent.
func MonthlyEquivalentCents(amountCents int64, f Frequency) int64 {
	return RoundCents(MonthlyEquivalent(amountCents, f))
}

// Amount is a per-period amount with its frequency.
type Amount struct {
	Cents     int64
	Frequency Frequency
}

// MonthlyTotalCents sums the monthly equivalents of amounts and rounds once,
// so per-item rounding error does not accumulate.
func MonthlyTotalCents(amounts ...Amount) int64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(MonthlyEquivalent(a.Cents, a.Frequency))
	}
	return RoundCents(total)
}

// RoundCents rounds a fractional cent amount to the nearest whole cent,
// halves away from zero.
func RoundCents(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
