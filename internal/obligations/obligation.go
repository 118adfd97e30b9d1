// Package obligations normalises the four recurring record kinds (income,
// fixed expense, BNPL instalment, credit-card minimum payment) into one
// Obligation shape that can be expanded into dated, signed cash movements.
package obligations

import (
	"time"

	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/recurrence"
)

// Kind identifies which record an Obligation came from.
type Kind string

const (
	KindIncome       Kind = "income"
	KindFixedExpense Kind = "fixed_expense"
	KindBnpl         Kind = "bnpl"
	KindCreditCard   Kind = "credit_card"
)

// Obligation is one recurring stream of cash movements. AmountCents is the
// unsigned per-occurrence amount; the sign comes from Kind.
type Obligation struct {
	Kind        Kind
	SourceID    string
	Name        string
	Provider    string
	AmountCents int64
	Frequency   recurrence.Frequency
	NextDue     time.Time
	// MaxOccurrences caps how many more times the stream fires; zero means
	// unbounded. BNPL plans set it to their remaining instalments.
	MaxOccurrences int
}

// CashMovement is a single dated, signed amount: positive for money in,
// negative for money out.
type CashMovement struct {
	Date        time.Time
	AmountCents int64
	Kind        Kind
	Name        string
}

// IsIncome reports whether the obligation brings money in.
func (o Obligation) IsIncome() bool {
	return o.Kind == KindIncome
}

// SignedAmount returns the per-occurrence amount with its cash direction.
func (o Obligation) SignedAmount() int64 {
	if o.IsIncome() {
		return o.AmountCents
	}
	return -o.AmountCents
}

// Movement converts one occurrence on date into a CashMovement.
func (o Obligation) Movement(date time.Time) CashMovement {
	return CashMovement{
		Date:        dateutils.Normalize(date),
		AmountCents: o.SignedAmount(),
		Kind:        o.Kind,
		Name:        o.Name,
	}
}

// NextOccurrence returns the first due date on or after from, rolling the
// obligation's own schedule forward when its stored due date is in the past.
func (o Obligation) NextOccurrence(from time.Time) time.Time {
	return recurrence.NextOnOrAfter(o.NextDue, o.Frequency, from)
}

// Movements expands the obligation into every occurrence within [from, to],
// respecting MaxOccurrences.
//
// For a capped stream the cap counts from the stored NextDue, so instalments
// that fell before from (not yet reconciled) still use up the cap.
func (o Obligation) Movements(from, to time.Time) []CashMovement {
	limit := o.MaxOccurrences
	if limit > 0 {
		skipped := len(recurrence.Occurrences(o.NextDue, o.Frequency, o.NextDue, dateutils.Normalize(from).AddDate(0, 0, -1), limit))
		limit -= skipped
		if limit <= 0 {
			return nil
		}
	}

	dates := recurrence.Occurrences(o.NextDue, o.Frequency, from, to, limit)
	out := make([]CashMovement, 0, len(dates))
	for _, d := range dates {
		out = append(out, o.Movement(d))
	}
	return out
}
