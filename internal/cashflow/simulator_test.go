package cashflow

import (
	"testing"

	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/obligations"
	"fjacquet/paycycle/internal/recurrence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	d      = dateutils.MustParseISODate
	policy = obligations.DefaultMinimumPaymentPolicy()
)

func salary(next string) models.IncomeEvent {
	return models.IncomeEvent{ID: "pay", Name: "Salary", AmountCents: 400000, Frequency: recurrence.Fortnightly, NextPayDate: d(next)}
}

func expense(name string, cents int64, freq recurrence.Frequency, next string) models.FixedExpense {
	return models.FixedExpense{ID: name, Name: name, AmountCents: cents, Frequency: freq, NextDueDate: d(next), IsActive: true}
}

func TestComputeSafeToSpend_SingleExpenseBeforePay(t *testing.T) {
	today := d("2024-03-01")
	in := Input{
		CurrentBalanceCents: 50000,
		Incomes:             []models.IncomeEvent{salary("2024-03-11")},
		Expenses:            []models.FixedExpense{expense("Rent", 20000, recurrence.Monthly, "2024-03-04")},
	}

	got := ComputeSafeToSpend(in, today, policy)
	assert.Equal(t, models.SafeToSpendResult{SafeToSpendCents: 30000, DaysUntilPay: 10}, got)
}

func TestComputeSafeToSpend_NoIncome(t *testing.T) {
	in := Input{
		CurrentBalanceCents: 50000,
		Expenses:            []models.FixedExpense{expense("Rent", 20000, recurrence.Monthly, "2024-03-04")},
	}
	assert.Equal(t, models.SafeToSpendResult{}, ComputeSafeToSpend(in, d("2024-03-01"), policy))
}

func TestComputeSafeToSpend(t *testing.T) {
	today := d("2024-03-01")

	tests := []struct {
		name     string
		in       Input
		expected models.SafeToSpendResult
	}{
		{
			name: "no obligations keeps full balance",
			in: Input{
				CurrentBalanceCents: 12345,
				Incomes:             []models.IncomeEvent{salary("2024-03-05")},
			},
			expected: models.SafeToSpendResult{SafeToSpendCents: 12345, DaysUntilPay: 4},
		},
		{
			name: "negative starting balance floors at zero",
			in: Input{
				CurrentBalanceCents: -500,
				Incomes:             []models.IncomeEvent{salary("2024-03-05")},
			},
			expected: models.SafeToSpendResult{SafeToSpendCents: 0, DaysUntilPay: 4},
		},
		{
			name: "overdraft is not clamped",
			in: Input{
				CurrentBalanceCents: 10000,
				Incomes:             []models.IncomeEvent{salary("2024-03-10")},
				Expenses:            []models.FixedExpense{expense("Rent", 20000, recurrence.Monthly, "2024-03-02")},
			},
			expected: models.SafeToSpendResult{SafeToSpendCents: 0, DaysUntilPay: 9},
		},
		{
			name: "obligation due today is excluded",
			in: Input{
				CurrentBalanceCents: 50000,
				Incomes:             []models.IncomeEvent{salary("2024-03-10")},
				Expenses:            []models.FixedExpense{expense("Rent", 20000, recurrence.Monthly, "2024-03-01")},
			},
			expected: models.SafeToSpendResult{SafeToSpendCents: 50000, DaysUntilPay: 9},
		},
		{
			name: "obligation due on pay date is included",
			in: Input{
				CurrentBalanceCents: 50000,
				Incomes:             []models.IncomeEvent{salary("2024-03-10")},
				Expenses:            []models.FixedExpense{expense("Rent", 20000, recurrence.Monthly, "2024-03-10")},
			},
			expected: models.SafeToSpendResult{SafeToSpendCents: 30000, DaysUntilPay: 9},
		},
		{
			name: "inactive expense ignored",
			in: Input{
				CurrentBalanceCents: 50000,
				Incomes:             []models.IncomeEvent{salary("2024-03-10")},
				Expenses: []models.FixedExpense{{
					Name: "Old gym", AmountCents: 5000, Frequency: recurrence.Monthly,
					NextDueDate: d("2024-03-05"), IsActive: false,
				}},
			},
			expected: models.SafeToSpendResult{SafeToSpendCents: 50000, DaysUntilPay: 9},
		},
		{
			name: "past due schedule rolls forward into window",
			in: Input{
				CurrentBalanceCents: 50000,
				Incomes:             []models.IncomeEvent{salary("2024-03-10")},
				Expenses:            []models.FixedExpense{expense("Phone", 4000, recurrence.Monthly, "2024-01-05")},
			},
			expected: models.SafeToSpendResult{SafeToSpendCents: 46000, DaysUntilPay: 9},
		},
		{
			name: "weekly expense recurs inside window",
			in: Input{
				CurrentBalanceCents: 50000,
				Incomes:             []models.IncomeEvent{salary("2024-03-15")},
				Expenses:            []models.FixedExpense{expense("Groceries", 10000, recurrence.Weekly, "2024-03-02")},
			},
			expected: models.SafeToSpendResult{SafeToSpendCents: 30000, DaysUntilPay: 14},
		},
		{
			name: "past pay date rolls to next occurrence",
			in: Input{
				CurrentBalanceCents: 50000,
				Incomes:             []models.IncomeEvent{salary("2024-02-20")},
			},
			expected: models.SafeToSpendResult{SafeToSpendCents: 50000, DaysUntilPay: 4},
		},
		{
			name: "earliest of several incomes is the horizon",
			in: Input{
				CurrentBalanceCents: 50000,
				Incomes: []models.IncomeEvent{
					salary("2024-03-20"),
					{Name: "Side gig", AmountCents: 1000, Frequency: recurrence.Monthly, NextPayDate: d("2024-03-06")},
				},
				Expenses: []models.FixedExpense{expense("Rent", 20000, recurrence.Monthly, "2024-03-10")},
			},
			expected: models.SafeToSpendResult{SafeToSpendCents: 50000, DaysUntilPay: 5},
		},
		{
			name: "bnpl and card minimum",
			in: Input{
				CurrentBalanceCents: 60000,
				Incomes:             []models.IncomeEvent{salary("2024-03-15")},
				BnplPlans: []models.BnplPlan{{
					ID: "p", ItemName: "TV", InstalmentAmountCents: 5000, Frequency: recurrence.Weekly,
					InstalmentsTotal: 4, InstalmentsRemaining: 1, NextPaymentDate: d("2024-03-04"),
				}},
				CreditCards: []models.CreditCardObligation{{ID: "c", Name: "Visa", BalanceCents: 100000, DueDayOfMonth: 12}},
			},
			expected: models.SafeToSpendResult{SafeToSpendCents: 52500, DaysUntilPay: 14},
		},
		{
			name: "zero balance card excluded",
			in: Input{
				CurrentBalanceCents: 60000,
				Incomes:             []models.IncomeEvent{salary("2024-03-15")},
				CreditCards:         []models.CreditCardObligation{{ID: "c", Name: "Visa", BalanceCents: 0, MinimumPaymentCents: 2500, DueDayOfMonth: 12}},
			},
			expected: models.SafeToSpendResult{SafeToSpendCents: 60000, DaysUntilPay: 14},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeSafeToSpend(tt.in, today, policy))
		})
	}
}

func TestProject_EventsAndMinimum(t *testing.T) {
	today := d("2024-03-01")
	in := Input{
		CurrentBalanceCents: 50000,
		Incomes:             []models.IncomeEvent{salary("2024-03-15")},
		Expenses: []models.FixedExpense{
			expense("Rent", 30000, recurrence.Monthly, "2024-03-08"),
			expense("Gym", 2000, recurrence.Weekly, "2024-03-03"),
		},
	}

	p := Project(in, today, policy)
	require.True(t, p.HasHorizon)
	assert.Equal(t, d("2024-03-15"), p.Horizon)

	require.Len(t, p.Events, 3)
	assert.Equal(t, "Gym", p.Events[0].Name)
	assert.Equal(t, d("2024-03-03"), p.Events[0].Date)
	assert.Equal(t, int64(48000), p.Events[0].BalanceCents)
	assert.Equal(t, "Rent", p.Events[1].Name)
	assert.Equal(t, int64(18000), p.Events[1].BalanceCents)
	assert.Equal(t, "Gym", p.Events[2].Name)
	assert.Equal(t, d("2024-03-10"), p.Events[2].Date)

	assert.Equal(t, int64(16000), p.MinimumBalanceCents)
	assert.Equal(t, d("2024-03-10"), p.MinimumDate)
	assert.Equal(t, int64(16000), p.SafeToSpendCents())
}

func TestProject_SameDayOrder(t *testing.T) {
	today := d("2024-03-01")
	in := Input{
		CurrentBalanceCents: 100000,
		Incomes:             []models.IncomeEvent{salary("2024-03-15")},
		Expenses:            []models.FixedExpense{expense("Rent", 1000, recurrence.Monthly, "2024-03-05")},
		BnplPlans: []models.BnplPlan{{
			ID: "p", ItemName: "TV", InstalmentAmountCents: 2000, Frequency: recurrence.Weekly,
			InstalmentsTotal: 4, InstalmentsRemaining: 4, NextPaymentDate: d("2024-03-05"),
		}},
		CreditCards: []models.CreditCardObligation{{ID: "c", Name: "Visa", BalanceCents: 100000, DueDayOfMonth: 5}},
	}

	p := Project(in, today, policy)
	require.GreaterOrEqual(t, len(p.Events), 3)
	assert.Equal(t, obligations.KindFixedExpense, p.Events[0].Kind)
	assert.Equal(t, obligations.KindBnpl, p.Events[1].Kind)
	assert.Equal(t, obligations.KindCreditCard, p.Events[2].Kind)
}

func TestProject_StartingBalanceIsMinimum(t *testing.T) {
	today := d("2024-03-01")
	p := Project(Input{CurrentBalanceCents: 700, Incomes: []models.IncomeEvent{salary("2024-03-01")}}, today, policy)
	assert.True(t, p.HasHorizon)
	assert.Equal(t, 0, p.DaysUntilPay)
	assert.Equal(t, today, p.MinimumDate)
	assert.Equal(t, int64(700), p.SafeToSpendCents())
}
