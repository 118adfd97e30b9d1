package obligations

import (
	"testing"

	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/recurrence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d = dateutils.MustParseISODate

func TestMinimumPayment(t *testing.T) {
	policy := DefaultMinimumPaymentPolicy()

	tests := []struct {
		name     string
		balance  int64
		expected int64
	}{
		{"zero balance", 0, 0},
		{"negative balance", -500, 0},
		{"floor applies", 100000, 2500},
		{"floor applies above balance", 1000, 2500},
		{"exactly at floor", 125000, 2500},
		{"proportional", 500000, 10000},
		{"rounds up", 125001, 2501},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, policy.MinimumPayment(tt.balance))
		})
	}
}

func TestMinimumPaymentPolicy_Apply(t *testing.T) {
	card := models.CreditCardObligation{ID: "c1", BalanceCents: 500000, MinimumPaymentCents: 1}
	got := DefaultMinimumPaymentPolicy().Apply(card)
	assert.Equal(t, int64(10000), got.MinimumPaymentCents)
	assert.Equal(t, int64(1), card.MinimumPaymentCents)
}

func TestNextCardDueDate(t *testing.T) {
	tests := []struct {
		name     string
		dueDay   int
		from     string
		expected string
	}{
		{"later this month", 15, "2024-03-10", "2024-03-15"},
		{"today", 10, "2024-03-10", "2024-03-10"},
		{"next month", 5, "2024-03-10", "2024-04-05"},
		{"clamped in short month", 31, "2024-04-10", "2024-04-30"},
		{"clamped next month", 31, "2024-01-31", "2024-01-31"},
		{"february leap", 30, "2024-02-01", "2024-02-29"},
		{"year rollover", 1, "2024-12-15", "2025-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, d(tt.expected), NextCardDueDate(tt.dueDay, d(tt.from)))
		})
	}
}

func TestSignedAmount(t *testing.T) {
	income := FromIncome(models.IncomeEvent{ID: "i", AmountCents: 300000, Frequency: recurrence.Fortnightly, NextPayDate: d("2024-01-05")})
	assert.True(t, income.IsIncome())
	assert.Equal(t, int64(300000), income.SignedAmount())

	expense, ok := FromFixedExpense(models.FixedExpense{ID: "e", AmountCents: 2000, IsActive: true})
	require.True(t, ok)
	assert.False(t, expense.IsIncome())
	assert.Equal(t, int64(-2000), expense.SignedAmount())
}

func TestFromFixedExpense_Inactive(t *testing.T) {
	_, ok := FromFixedExpense(models.FixedExpense{ID: "e", AmountCents: 2000, IsActive: false})
	assert.False(t, ok)
}

func TestFromBnplPlan(t *testing.T) {
	plan := models.BnplPlan{
		ID:                    "p1",
		ItemName:              "Headphones",
		Provider:              "Afterpay",
		InstalmentAmountCents: 5000,
		Frequency:             recurrence.Fortnightly,
		InstalmentsTotal:      4,
		InstalmentsRemaining:  3,
		NextPaymentDate:       d("2024-01-10"),
	}

	o, ok := FromBnplPlan(plan)
	require.True(t, ok)
	assert.Equal(t, KindBnpl, o.Kind)
	assert.Equal(t, "Afterpay", o.Provider)
	assert.Equal(t, 3, o.MaxOccurrences)

	plan.InstalmentsRemaining = 0
	_, ok = FromBnplPlan(plan)
	assert.False(t, ok)
}

func TestFromCreditCard(t *testing.T) {
	policy := DefaultMinimumPaymentPolicy()

	o, ok := FromCreditCard(models.CreditCardObligation{ID: "c", BalanceCents: 500000, MinimumPaymentCents: 99, DueDayOfMonth: 20}, d("2024-03-25"), policy)
	require.True(t, ok)
	assert.Equal(t, int64(10000), o.AmountCents)
	assert.Equal(t, d("2024-04-20"), o.NextDue)
	assert.Equal(t, recurrence.Monthly, o.Frequency)

	_, ok = FromCreditCard(models.CreditCardObligation{ID: "c", BalanceCents: 0, DueDayOfMonth: 20}, d("2024-03-25"), policy)
	assert.False(t, ok)
}

func TestMovements(t *testing.T) {
	o := Obligation{Kind: KindFixedExpense, Name: "Gym", AmountCents: 1500, Frequency: recurrence.Weekly, NextDue: d("2024-01-03")}

	got := o.Movements(d("2024-01-01"), d("2024-01-20"))
	require.Len(t, got, 3)
	assert.Equal(t, d("2024-01-03"), got[0].Date)
	assert.Equal(t, d("2024-01-17"), got[2].Date)
	for _, m := range got {
		assert.Equal(t, int64(-1500), m.AmountCents)
		assert.Equal(t, "Gym", m.Name)
	}
}

func TestMovements_PastDueRollsForward(t *testing.T) {
	o := Obligation{Kind: KindIncome, AmountCents: 100, Frequency: recurrence.Monthly, NextDue: d("2023-11-15")}

	got := o.Movements(d("2024-01-01"), d("2024-02-28"))
	require.Len(t, got, 2)
	assert.Equal(t, d("2024-01-15"), got[0].Date)
	assert.Equal(t, d("2024-02-15"), got[1].Date)
}

func TestMovements_CapCountsPastInstalments(t *testing.T) {
	o := Obligation{Kind: KindBnpl, AmountCents: 2500, Frequency: recurrence.Fortnightly, NextDue: d("2024-01-01"), MaxOccurrences: 3}

	// 2024-01-01 and 2024-01-15 fell before the window; only one instalment remains.
	got := o.Movements(d("2024-01-20"), d("2024-03-31"))
	require.Len(t, got, 1)
	assert.Equal(t, d("2024-01-29"), got[0].Date)

	assert.Empty(t, o.Movements(d("2024-02-01"), d("2024-03-31")))
}

func TestNormalize(t *testing.T) {
	records := Records{
		Incomes: []models.IncomeEvent{{ID: "i1", AmountCents: 100000, Frequency: recurrence.Monthly, NextPayDate: d("2024-01-15")}},
		Expenses: []models.FixedExpense{
			{ID: "e1", AmountCents: 2000, IsActive: true, Frequency: recurrence.Monthly},
			{ID: "e2", AmountCents: 3000, IsActive: false, Frequency: recurrence.Monthly},
		},
		Plans: []models.BnplPlan{
			{ID: "p1", InstalmentAmountCents: 5000, InstalmentsTotal: 4, InstalmentsRemaining: 2, Frequency: recurrence.Fortnightly},
			{ID: "p2", InstalmentAmountCents: 5000, InstalmentsTotal: 4, InstalmentsRemaining: 0, Frequency: recurrence.Fortnightly},
		},
		CreditCards: []models.CreditCardObligation{
			{ID: "c1", BalanceCents: 100000, DueDayOfMonth: 28},
			{ID: "c2", BalanceCents: 0, DueDayOfMonth: 28},
		},
	}

	set := Normalize(records, d("2024-01-10"), DefaultMinimumPaymentPolicy())
	assert.Len(t, set.Incomes, 1)
	assert.Len(t, set.Expenses, 1)
	assert.Len(t, set.Bnpl, 1)
	assert.Len(t, set.CreditCards, 1)

	debits := set.Debits()
	require.Len(t, debits, 3)
	assert.Equal(t, "e1", debits[0].SourceID)
	assert.Equal(t, "p1", debits[1].SourceID)
	assert.Equal(t, "c1", debits[2].SourceID)
}

func TestMonthlyTotals(t *testing.T) {
	set := Set{
		Incomes:     []Obligation{{Kind: KindIncome, AmountCents: 300000, Frequency: recurrence.Fortnightly}},
		Expenses:    []Obligation{{Kind: KindFixedExpense, AmountCents: 10000, Frequency: recurrence.Weekly}},
		Bnpl:        []Obligation{{Kind: KindBnpl, AmountCents: 3000, Frequency: recurrence.Quarterly}},
		CreditCards: []Obligation{{Kind: KindCreditCard, AmountCents: 2500, Frequency: recurrence.Monthly}},
	}

	totals := set.MonthlyTotals()
	assert.Equal(t, int64(650000), totals.IncomeCents)
	assert.Equal(t, int64(43333), totals.FixedExpensesCents)
	assert.Equal(t, int64(1000), totals.BnplCents)
	assert.Equal(t, int64(2500), totals.CreditCardCents)
	assert.Equal(t, int64(46833), totals.TotalOutgoingCents)
	assert.Equal(t, int64(650000-46833), totals.NetCents)
}
