package obligations

import (
	"time"

	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/recurrence"
)

// Records is the raw input read from the store.
type Records struct {
	Incomes     []models.IncomeEvent
	Expenses    []models.FixedExpense
	Plans       []models.BnplPlan
	CreditCards []models.CreditCardObligation
}

// Set is the normalised obligation stream, grouped by kind and kept in input
// order within each group.
type Set struct {
	Incomes     []Obligation
	Expenses    []Obligation
	Bnpl        []Obligation
	CreditCards []Obligation
}

// Normalize converts records into obligations, dropping inactive expenses,
// completed plans and cards without a positive balance.
func Normalize(r Records, today time.Time, policy MinimumPaymentPolicy) Set {
	var s Set
	for _, in := range r.Incomes {
		s.Incomes = append(s.Incomes, FromIncome(in))
	}
	for _, e := range r.Expenses {
		if o, ok := FromFixedExpense(e); ok {
			s.Expenses = append(s.Expenses, o)
		}
	}
	for _, p := range r.Plans {
		if o, ok := FromBnplPlan(p); ok {
			s.Bnpl = append(s.Bnpl, o)
		}
	}
	for _, c := range r.CreditCards {
		if o, ok := FromCreditCard(c, today, policy); ok {
			s.CreditCards = append(s.CreditCards, o)
		}
	}
	return s
}

// Debits returns every outgoing obligation: fixed expenses, then BNPL
// instalments, then credit-card minimums.
func (s Set) Debits() []Obligation {
	out := make([]Obligation, 0, len(s.Expenses)+len(s.Bnpl)+len(s.CreditCards))
	out = append(out, s.Expenses...)
	out = append(out, s.Bnpl...)
	out = append(out, s.CreditCards...)
	return out
}

// MonthlyTotals are budget-level monthly equivalents, each rounded once.
type MonthlyTotals struct {
	IncomeCents        int64 `json:"income_cents" yaml:"income_cents"`
	FixedExpensesCents int64 `json:"fixed_expenses_cents" yaml:"fixed_expenses_cents"`
	BnplCents          int64 `json:"bnpl_cents" yaml:"bnpl_cents"`
	CreditCardCents    int64 `json:"credit_card_cents" yaml:"credit_card_cents"`
	TotalOutgoingCents int64 `json:"total_outgoing_cents" yaml:"total_outgoing_cents"`
	NetCents           int64 `json:"net_cents" yaml:"net_cents"`
}

// MonthlyTotals converts every stream to its monthly equivalent.
func (s Set) MonthlyTotals() MonthlyTotals {
	income := amounts(s.Incomes)
	expenses := amounts(s.Expenses)
	bnpl := amounts(s.Bnpl)
	cards := amounts(s.CreditCards)

	outgoing := append(append(append([]recurrence.Amount{}, expenses...), bnpl...), cards...)

	t := MonthlyTotals{
		IncomeCents:        recurrence.MonthlyTotalCents(income...),
		FixedExpensesCents: recurrence.MonthlyTotalCents(expenses...),
		BnplCents:          recurrence.MonthlyTotalCents(bnpl...),
		CreditCardCents:    recurrence.MonthlyTotalCents(cards...),
		TotalOutgoingCents: recurrence.MonthlyTotalCents(outgoing...),
	}
	t.NetCents = t.IncomeCents - t.TotalOutgoingCents
	return t
}

func amounts(obs []Obligation) []recurrence.Amount {
	out := make([]recurrence.Amount, 0, len(obs))
	for _, o := range obs {
		out = append(out, recurrence.Amount{Cents: o.AmountCents, Frequency: o.Frequency})
	}
	return out
}
