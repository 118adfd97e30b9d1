// Package cashflow projects the bank balance forward to the next pay date
// and derives how much can be spent today without the projection going
// negative.
package cashflow

import (
	"sort"
	"time"

	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/obligations"
)

// Input is everything the simulator reads. Filtering of inactive expenses,
// completed plans and zero-balance cards happens during normalisation, so
// callers may pass raw store rows.
type Input struct {
	CurrentBalanceCents int64
	Incomes             []models.IncomeEvent
	Expenses            []models.FixedExpense
	BnplPlans           []models.BnplPlan
	CreditCards         []models.CreditCardObligation
}

// Event is one debit applied during the walk, with the balance after it.
type Event struct {
	Date         time.Time        `json:"date"`
	Name         string           `json:"name"`
	Kind         obligations.Kind `json:"kind"`
	AmountCents  int64            `json:"amount_cents"`
	BalanceCents int64            `json:"balance_cents"`
}

// Projection is the full walk from today to the next pay date.
type Projection struct {
	Today                time.Time `json:"today"`
	Horizon              time.Time `json:"horizon"`
	HasHorizon           bool      `json:"has_horizon"`
	DaysUntilPay         int       `json:"days_until_pay"`
	StartingBalanceCents int64     `json:"starting_balance_cents"`
	Events               []Event   `json:"events"`
	MinimumBalanceCents  int64     `json:"minimum_balance_cents"`
	// MinimumDate is when the minimum is first reached; today when the
	// starting balance is the minimum.
	MinimumDate time.Time `json:"minimum_date"`
}

// SafeToSpendCents is the minimum balance reached, floored at zero. Without a
// pay date there is no refill point and nothing is considered safe.
func (p Projection) SafeToSpendCents() int64 {
	if !p.HasHorizon || p.MinimumBalanceCents < 0 {
		return 0
	}
	return p.MinimumBalanceCents
}

// Result converts the projection to the public result shape.
func (p Projection) Result() models.SafeToSpendResult {
	if !p.HasHorizon {
		return models.SafeToSpendResult{}
	}
	return models.SafeToSpendResult{
		SafeToSpendCents: p.SafeToSpendCents(),
		DaysUntilPay:     p.DaysUntilPay,
	}
}

// ComputeSafeToSpend returns the safe-to-spend figure and the number of days
// until the next pay.
func ComputeSafeToSpend(in Input, today time.Time, policy obligations.MinimumPaymentPolicy) models.SafeToSpendResult {
	return Project(in, today, policy).Result()
}

// Project walks every debit due after today and up to and including the
// next pay date, in date order, tracking the lowest balance reached. The
// starting balance counts towards the minimum. Debits larger than the
// running balance are applied in full.
//
// Debits on the same date apply in input order: fixed expenses, then BNPL
// instalments, then card minimums.
func Project(in Input, today time.Time, policy obligations.MinimumPaymentPolicy) Projection {
	today = dateutils.Normalize(today)
	set := obligations.Normalize(obligations.Records{
		Incomes:     in.Incomes,
		Expenses:    in.Expenses,
		Plans:       in.BnplPlans,
		CreditCards: in.CreditCards,
	}, today, policy)

	p := Projection{
		Today:                today,
		StartingBalanceCents: in.CurrentBalanceCents,
		MinimumBalanceCents:  in.CurrentBalanceCents,
		MinimumDate:          today,
		Events:               []Event{},
	}

	horizon, ok := NextPayDate(set.Incomes, today)
	if !ok {
		return p
	}
	p.Horizon = horizon
	p.HasHorizon = true
	p.DaysUntilPay = dateutils.DaysBetween(today, horizon)

	var due []obligations.CashMovement
	windowStart := today.AddDate(0, 0, 1)
	for _, o := range set.Debits() {
		due = append(due, o.Movements(windowStart, horizon)...)
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Date.Before(due[j].Date)
	})

	balance := in.CurrentBalanceCents
	for _, m := range due {
		balance += m.AmountCents
		p.Events = append(p.Events, Event{
			Date:         m.Date,
			Name:         m.Name,
			Kind:         m.Kind,
			AmountCents:  m.AmountCents,
			BalanceCents: balance,
		})
		if balance < p.MinimumBalanceCents {
			p.MinimumBalanceCents = balance
			p.MinimumDate = m.Date
		}
	}
	return p
}

// NextPayDate returns the earliest income occurrence on or after today.
func NextPayDate(incomes []obligations.Obligation, today time.Time) (time.Time, bool) {
	var (
		next  time.Time
		found bool
	)
	for _, in := range incomes {
		d := in.NextOccurrence(today)
		if !found || d.Before(next) {
			next = d
			found = true
		}
	}
	return next, found
}
