// Package forecast is the public entry point to the paycycle forecasting
// core: date recurrence, BNPL plan advancement, safe-to-spend projection and
// category anomaly detection. All functions are pure.
package forecast

import (
	"time"

	"fjacquet/paycycle/internal/anomaly"
	"fjacquet/paycycle/internal/bnpl"
	"fjacquet/paycycle/internal/cashflow"
	"fjacquet/paycycle/internal/finerror"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/obligations"
	"fjacquet/paycycle/internal/recurrence"
)

type (
	Frequency            = recurrence.Frequency
	IncomeEvent          = models.IncomeEvent
	FixedExpense         = models.FixedExpense
	BnplPlan             = models.BnplPlan
	CreditCardObligation = models.CreditCardObligation
	Transaction          = models.Transaction
	SafeToSpendResult    = models.SafeToSpendResult
	CategoryPeriodTotal  = models.CategoryPeriodTotal
	Input                = cashflow.Input
	Projection           = cashflow.Projection
	AdvanceResult        = bnpl.Result
	PaymentResult        = bnpl.PaymentResult
	MinimumPaymentPolicy = obligations.MinimumPaymentPolicy
	AnomalyPolicy        = anomaly.Policy
)

const (
	Weekly      = recurrence.Weekly
	Fortnightly = recurrence.Fortnightly
	Monthly     = recurrence.Monthly
	Quarterly   = recurrence.Quarterly
	Yearly      = recurrence.Yearly
)

// ErrNoRemainingInstalments is returned by RecordPayment on a finished plan.
var ErrNoRemainingInstalments = finerror.ErrNoRemainingInstalments

// NextDate returns the next occurrence of a date repeating at f.
func NextDate(date time.Time, f Frequency) time.Time {
	return recurrence.Advance(date, f)
}

// MonthlyEquivalentCents converts a per-occurrence amount to a monthly one.
func MonthlyEquivalentCents(amountCents int64, f Frequency) int64 {
	return recurrence.MonthlyEquivalentCents(amountCents, f)
}

// AdvanceOverdue consumes every instalment of plan due on or before today.
func AdvanceOverdue(plan BnplPlan, today time.Time) AdvanceResult {
	return bnpl.AdvanceOverdue(plan, today)
}

// RecordPayment takes one instalment from plan regardless of its date.
func RecordPayment(plan BnplPlan) (PaymentResult, error) {
	return bnpl.RecordPayment(plan)
}

// SafeToSpend computes the safe-to-spend amount with the default credit card
// minimum payment policy.
func SafeToSpend(in Input, today time.Time) SafeToSpendResult {
	return cashflow.ComputeSafeToSpend(in, today, obligations.DefaultMinimumPaymentPolicy())
}

// Project returns the full projection behind SafeToSpend.
func Project(in Input, today time.Time, policy MinimumPaymentPolicy) Projection {
	return cashflow.Project(in, today, policy)
}

// DetectAnomalies compares per-category spend of two periods with the
// default thresholds.
func DetectAnomalies(current, previous []Transaction) []CategoryPeriodTotal {
	return anomaly.DetectAnomalies(current, previous)
}
