package snapshot

import (
	"context"
	"encoding/json"
	"testing"

	"fjacquet/paycycle/internal/anomaly"
	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/obligations"
	"fjacquet/paycycle/internal/recurrence"
	"fjacquet/paycycle/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var d = dateutils.MustParseISODate

func seededStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	ctx := context.Background()
	repo := store.NewMemoryStore()

	require.NoError(t, repo.SetCurrentBalance(ctx, 50000))
	_, err := repo.CreateIncome(ctx, models.IncomeEvent{Name: "Salary", AmountCents: 400000, Frequency: recurrence.Fortnightly, NextPayDate: d("2024-03-11")})
	require.NoError(t, err)
	_, err = repo.CreateFixedExpense(ctx, models.FixedExpense{Name: "Rent", AmountCents: 20000, Frequency: recurrence.Monthly, NextDueDate: d("2024-03-04"), IsActive: true})
	require.NoError(t, err)
	_, err = repo.CreateFixedExpense(ctx, models.FixedExpense{Name: "Old", AmountCents: 99999, Frequency: recurrence.Monthly, NextDueDate: d("2024-03-05"), IsActive: false})
	require.NoError(t, err)
	_, err = repo.CreateBnplPlan(ctx, models.BnplPlan{
		ID: "p1", ItemName: "Phone", Provider: "Zip", InstalmentAmountCents: 5000, Frequency: recurrence.Weekly,
		InstalmentsTotal: 4, InstalmentsRemaining: 2, NextPaymentDate: d("2024-03-20"),
	})
	require.NoError(t, err)
	_, err = repo.CreateTransactions(ctx, []models.Transaction{
		{Date: d("2024-02-10"), AmountCents: -2000, Category: "Dining"},
		{Date: d("2024-03-01"), AmountCents: -5000, Category: "Dining"},
		{Date: d("2024-03-01"), AmountCents: 400000, IsIncome: true},
	})
	require.NoError(t, err)
	return repo
}

func newBuilder(repo store.Repository) *Builder {
	return NewBuilder(repo, obligations.DefaultMinimumPaymentPolicy(), anomaly.DefaultPolicy(), "AUD", logging.NewMockLogger())
}

func TestBuilder_Build(t *testing.T) {
	repo := seededStore(t)
	s, err := newBuilder(repo).Build(context.Background(), d("2024-03-01"))
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", s.GeneratedOn)
	assert.Equal(t, "AUD", s.Currency)
	assert.Equal(t, int64(50000), s.BalanceCents)
	assert.Equal(t, models.SafeToSpendResult{SafeToSpendCents: 30000, DaysUntilPay: 10}, s.SafeToSpend)
	assert.Equal(t, "2024-03-11", s.NextPayDate)

	assert.Equal(t, int64(866667), s.Monthly.IncomeCents)
	assert.Equal(t, int64(20000), s.Monthly.FixedExpensesCents)
	assert.Equal(t, int64(21667), s.Monthly.BnplCents)
	assert.Equal(t, int64(41667), s.Monthly.TotalOutgoingCents)

	require.Len(t, s.BnplPlans, 1)
	assert.Equal(t, 2, s.BnplPlans[0].InstalmentsPaid)
	assert.Equal(t, int64(10000), s.BnplPlans[0].OutstandingCents)
	assert.Equal(t, int64(10000), s.BnplOutstandingCents)

	assert.Equal(t, "2024-03", s.AnomalyMonth)
	require.Len(t, s.Anomalies, 1)
	assert.True(t, s.Anomalies[0].IsAnomaly)
	assert.Equal(t, "Dining", s.Anomalies[0].Category)
}

func TestBuilder_BuildDoesNotMutatePlans(t *testing.T) {
	repo := seededStore(t)
	_, err := newBuilder(repo).Build(context.Background(), d("2024-05-01"))
	require.NoError(t, err)

	p, err := repo.GetBnplPlan(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.InstalmentsRemaining)
	assert.Equal(t, d("2024-03-20"), p.NextPaymentDate)
}

func TestBuilder_StoreError(t *testing.T) {
	repo := store.NewMemoryStore()
	repo.Err = assert.AnError
	_, err := newBuilder(repo).Build(context.Background(), d("2024-03-01"))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBuilder_Projection(t *testing.T) {
	p, err := newBuilder(seededStore(t)).Projection(context.Background(), d("2024-03-01"))
	require.NoError(t, err)
	require.Len(t, p.Events, 1)
	assert.Equal(t, "Rent", p.Events[0].Name)
	assert.Equal(t, int64(30000), p.SafeToSpendCents())
}

func TestRenderer_Render(t *testing.T) {
	s, err := newBuilder(seededStore(t)).Build(context.Background(), d("2024-03-01"))
	require.NoError(t, err)
	r := NewRenderer(logging.NewMockLogger())

	out, err := r.Render(s, FormatJSON)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "2024-03-01", decoded["generated_on"])

	out, err = r.Render(s, FormatYAML)
	require.NoError(t, err)
	var fromYAML Snapshot
	require.NoError(t, yaml.Unmarshal(out, &fromYAML))
	assert.Equal(t, s.SafeToSpend, fromYAML.SafeToSpend)

	out, err = r.Render(s, FormatText)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Safe to spend:  300.00 AUD")
	assert.Contains(t, string(out), "Dining up 150%")

	_, err = r.Render(s, "xml")
	assert.Error(t, err)
	_, err = r.Render(nil, FormatJSON)
	assert.Error(t, err)
}
