package obligations

import (
	"time"

	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/recurrence"
)

// Default credit-card minimum payment policy: the greater of $25 or 2% of
// the balance.
const (
	DefaultMinimumFloorCents  int64 = 2500
	DefaultMinimumRatePercent int64 = 2
)

// MinimumPaymentPolicy derives a card's minimum payment from its balance.
type MinimumPaymentPolicy struct {
	FloorCents  int64
	RatePercent int64
}

// DefaultMinimumPaymentPolicy returns the $25 / 2% policy.
func DefaultMinimumPaymentPolicy() MinimumPaymentPolicy {
	return MinimumPaymentPolicy{
		FloorCents:  DefaultMinimumFloorCents,
		RatePercent: DefaultMinimumRatePercent,
	}
}

// MinimumPayment returns max(FloorCents, ceil(balance * RatePercent / 100))
// for a positive balance, and zero otherwise.
func (p MinimumPaymentPolicy) MinimumPayment(balanceCents int64) int64 {
	if balanceCents <= 0 {
		return 0
	}
	proportional := (balanceCents*p.RatePercent + 99) / 100
	if proportional > p.FloorCents {
		return proportional
	}
	return p.FloorCents
}

// Apply returns card with MinimumPaymentCents recomputed from its balance.
func (p MinimumPaymentPolicy) Apply(card models.CreditCardObligation) models.CreditCardObligation {
	card.MinimumPaymentCents = p.MinimumPayment(card.BalanceCents)
	return card
}

// NextCardDueDate returns the first date on or after from whose day-of-month
// is dueDay, clamped to the month's last day (a due day of 31 falls on the
// 30th in April).
func NextCardDueDate(dueDay int, from time.Time) time.Time {
	from = dateutils.Normalize(from)
	if dueDay < 1 {
		dueDay = 1
	}
	due := dateutils.DayInMonth(from.Year(), from.Month(), dueDay)
	if due.Before(from) {
		next := dateutils.StartOfMonth(from).AddDate(0, 1, 0)
		due = dateutils.DayInMonth(next.Year(), next.Month(), dueDay)
	}
	return due
}

// FromIncome converts an income event.
func FromIncome(in models.IncomeEvent) Obligation {
	return Obligation{
		Kind:        KindIncome,
		SourceID:    in.ID,
		Name:        in.Name,
		AmountCents: in.AmountCents,
		Frequency:   in.Frequency.Normalized(),
		NextDue:     dateutils.Normalize(in.NextPayDate),
	}
}

// FromFixedExpense converts an expense; ok is false for inactive expenses.
func FromFixedExpense(e models.FixedExpense) (Obligation, bool) {
	if !e.IsActive {
		return Obligation{}, false
	}
	return Obligation{
		Kind:        KindFixedExpense,
		SourceID:    e.ID,
		Name:        e.Name,
		AmountCents: e.AmountCents,
		Frequency:   e.Frequency.Normalized(),
		NextDue:     dateutils.Normalize(e.NextDueDate),
	}, true
}

// FromBnplPlan converts a plan; ok is false for completed plans.
func FromBnplPlan(p models.BnplPlan) (Obligation, bool) {
	if p.IsCompleted() {
		return Obligation{}, false
	}
	return Obligation{
		Kind:           KindBnpl,
		SourceID:       p.ID,
		Name:           p.ItemName,
		Provider:       p.Provider,
		AmountCents:    p.InstalmentAmountCents,
		Frequency:      p.Frequency.Normalized(),
		NextDue:        dateutils.Normalize(p.NextPaymentDate),
		MaxOccurrences: p.InstalmentsRemaining,
	}, true
}

// FromCreditCard converts a card into a monthly minimum-payment stream
// starting at its next due date on or after today; ok is false for cards
// without a positive balance.
func FromCreditCard(c models.CreditCardObligation, today time.Time, policy MinimumPaymentPolicy) (Obligation, bool) {
	if c.BalanceCents <= 0 {
		return Obligation{}, false
	}
	return Obligation{
		Kind:        KindCreditCard,
		SourceID:    c.ID,
		Name:        c.Name,
		AmountCents: policy.MinimumPayment(c.BalanceCents),
		Frequency:   recurrence.Monthly,
		NextDue:     NextCardDueDate(c.DueDayOfMonth, today),
	}, true
}
