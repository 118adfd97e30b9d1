package bnpl

import (
	"bytes"
	"context"
	"testing"

	bnplsvc "fjacquet/paycycle/internal/bnpl"
	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/finerror"
	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/recurrence"
	"fjacquet/paycycle/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d = dateutils.MustParseISODate

func newReconciler(t *testing.T) (*bnplsvc.Reconciler, *store.MemoryStore) {
	t.Helper()
	repo := store.NewMemoryStore()
	_, err := repo.CreateBnplPlan(context.Background(), models.BnplPlan{
		ID: "tv", ItemName: "TV", Provider: "Afterpay", InstalmentAmountCents: 12500,
		Frequency: recurrence.Fortnightly, InstalmentsTotal: 4, InstalmentsRemaining: 2,
		NextPaymentDate: d("2024-02-01"),
	})
	require.NoError(t, err)
	return bnplsvc.NewReconciler(repo, logging.NewMockLogger()), repo
}

func TestBnplCommand_Structure(t *testing.T) {
	assert.Equal(t, "bnpl", Cmd.Use)
	names := make([]string, 0)
	for _, sub := range Cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "add", "pay", "reconcile"}, names)

	freq := addCmd.Flags().Lookup("frequency")
	require.NotNil(t, freq)
	assert.Equal(t, "fortnightly", freq.DefValue)
	total := addCmd.Flags().Lookup("total")
	require.NotNil(t, total)
	assert.Equal(t, "4", total.DefValue)
	assert.NotNil(t, reconcileCmd.Flags().Lookup("today"))
}

func TestRunList(t *testing.T) {
	r, _ := newReconciler(t)
	var out bytes.Buffer
	require.NoError(t, RunList(context.Background(), r, &out, "AUD"))

	assert.Contains(t, out.String(), "TV")
	assert.Contains(t, out.String(), "2/4")
	assert.Contains(t, out.String(), "Total outstanding: 250.00 AUD")

	out.Reset()
	empty := bnplsvc.NewReconciler(store.NewMemoryStore(), logging.NewMockLogger())
	require.NoError(t, RunList(context.Background(), empty, &out, "AUD"))
	assert.Contains(t, out.String(), "No active plans.")
}

func TestRunAdd(t *testing.T) {
	tests := []struct {
		name    string
		opts    AddOptions
		wantErr bool
	}{
		{"valid", AddOptions{Item: "Shoes", Provider: "Zip", Amount: "30.00", Frequency: "weekly", Total: 4, NextPayment: "2024-03-01"}, false},
		{"bad amount", AddOptions{Item: "Shoes", Amount: "thirty", Total: 4, NextPayment: "2024-03-01"}, true},
		{"bad date", AddOptions{Item: "Shoes", Amount: "30", Total: 4, NextPayment: "tomorrow"}, true},
		{"remaining over total", AddOptions{Item: "Shoes", Amount: "30", Total: 4, Remaining: 5, NextPayment: "2024-03-01"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo := newReconciler(t)
			var out bytes.Buffer
			err := RunAdd(context.Background(), r, &out, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), "Shoes, 4 x 30.00 weekly, next payment 2024-03-01")

			plans, err := repo.ListBnplPlans(context.Background())
			require.NoError(t, err)
			assert.Len(t, plans, 2)
		})
	}
}

func TestRunPay(t *testing.T) {
	r, _ := newReconciler(t)
	var out bytes.Buffer

	require.NoError(t, RunPay(context.Background(), r, &out, "tv"))
	assert.Contains(t, out.String(), "1 remaining, next payment 2024-02-15")

	require.NoError(t, RunPay(context.Background(), r, &out, "tv"))
	assert.Contains(t, out.String(), "Plan tv is now paid off.")

	err := RunPay(context.Background(), r, &out, "tv")
	assert.ErrorIs(t, err, finerror.ErrNoRemainingInstalments)
}

func TestRunReconcile(t *testing.T) {
	r, repo := newReconciler(t)
	var out bytes.Buffer

	require.NoError(t, RunReconcile(context.Background(), r, &out, d("2024-03-01")))
	assert.Contains(t, out.String(), "Checked 1 plans: 0 advanced, 2 instalments consumed, 1 completed")
	assert.Contains(t, out.String(), "completed: tv")

	plans, err := repo.ListBnplPlans(context.Background())
	require.NoError(t, err)
	assert.Empty(t, plans)
}
