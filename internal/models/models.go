// Package models holds the entities read and written by the forecasting core.
// All money is integer cents; all dates are calendar dates (UTC midnight).
package models

import (
	"time"

	"fjacquet/paycycle/internal/recurrence"
)

// IncomeEvent is a recurring pay.
type IncomeEvent struct {
	ID          string               `json:"id" yaml:"id"`
	Name        string               `json:"name" yaml:"name"`
	AmountCents int64                `json:"amount_cents" yaml:"amount_cents"`
	Frequency   recurrence.Frequency `json:"frequency" yaml:"frequency"`
	NextPayDate time.Time            `json:"next_pay_date" yaml:"next_pay_date"`
}

// FixedExpense is a recurring bill. Inactive expenses are excluded from all
// projections.
type FixedExpense struct {
	ID          string               `json:"id" yaml:"id"`
	Name        string               `json:"name" yaml:"name"`
	AmountCents int64                `json:"amount_cents" yaml:"amount_cents"`
	Frequency   recurrence.Frequency `json:"frequency" yaml:"frequency"`
	NextDueDate time.Time            `json:"next_due_date" yaml:"next_due_date"`
	IsActive    bool                 `json:"is_active" yaml:"is_active"`
}

// CreditCardObligation is a card balance with a monthly minimum payment due
// on DueDayOfMonth.
type CreditCardObligation struct {
	ID                  string `json:"id" yaml:"id"`
	Name                string `json:"name" yaml:"name"`
	BalanceCents        int64  `json:"balance_cents" yaml:"balance_cents"`
	MinimumPaymentCents int64  `json:"minimum_payment_cents" yaml:"minimum_payment_cents"`
	DueDayOfMonth       int    `json:"due_day_of_month" yaml:"due_day_of_month"`
}

// SafeToSpendResult is the output of the cashflow simulator.
type SafeToSpendResult struct {
	SafeToSpendCents int64 `json:"safe_to_spend_cents" yaml:"safe_to_spend_cents"`
	DaysUntilPay     int   `json:"days_until_pay" yaml:"days_until_pay"`
}

// CategoryPeriodTotal compares one category's spend across two adjacent
// months. ChangePercent is nil when the previous month has no spend.
type CategoryPeriodTotal struct {
	Category      string    `json:"category" yaml:"category"`
	CurrentCents  int64     `json:"current_cents" yaml:"current_cents"`
	PreviousCents int64     `json:"previous_cents" yaml:"previous_cents"`
	ChangePercent *int64    `json:"change_percent" yaml:"change_percent"`
	IsAnomaly     bool      `json:"is_anomaly" yaml:"is_anomaly"`
	Direction     Direction `json:"direction" yaml:"direction"`
}
