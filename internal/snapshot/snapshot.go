// Package snapshot assembles the financial snapshot handed to the advisory
// collaborator and rendered by the CLI and HTTP adapters. Building a
// snapshot only reads from the store.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"fjacquet/paycycle/internal/anomaly"
	"fjacquet/paycycle/internal/bnpl"
	"fjacquet/paycycle/internal/cashflow"
	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/obligations"
	"fjacquet/paycycle/internal/store"
)

// Snapshot is the point-in-time view of the user's finances.
type Snapshot struct {
	GeneratedOn          string                       `json:"generated_on" yaml:"generated_on"`
	Currency             string                       `json:"currency" yaml:"currency"`
	BalanceCents         int64                        `json:"balance_cents" yaml:"balance_cents"`
	SafeToSpend          models.SafeToSpendResult     `json:"safe_to_spend" yaml:"safe_to_spend"`
	NextPayDate          string                       `json:"next_pay_date,omitempty" yaml:"next_pay_date,omitempty"`
	Monthly              obligations.MonthlyTotals    `json:"monthly" yaml:"monthly"`
	BnplPlans            []PlanSummary                `json:"bnpl_plans" yaml:"bnpl_plans"`
	BnplOutstandingCents int64                        `json:"bnpl_outstanding_cents" yaml:"bnpl_outstanding_cents"`
	AnomalyMonth         string                       `json:"anomaly_month" yaml:"anomaly_month"`
	Anomalies            []models.CategoryPeriodTotal `json:"anomalies" yaml:"anomalies"`
}

// PlanSummary is an active BNPL plan with its derived figures.
type PlanSummary struct {
	ID                    string `json:"id" yaml:"id"`
	ItemName              string `json:"item_name" yaml:"item_name"`
	Provider              string `json:"provider" yaml:"provider"`
	InstalmentAmountCents int64  `json:"instalment_amount_cents" yaml:"instalment_amount_cents"`
	Frequency             string `json:"frequency" yaml:"frequency"`
	InstalmentsPaid       int    `json:"instalments_paid" yaml:"instalments_paid"`
	InstalmentsRemaining  int    `json:"instalments_remaining" yaml:"instalments_remaining"`
	NextPaymentDate       string `json:"next_payment_date" yaml:"next_payment_date"`
	OutstandingCents      int64  `json:"outstanding_cents" yaml:"outstanding_cents"`
}

// Builder reads the store and runs the forecasting core over it.
type Builder struct {
	repo          store.Repository
	minimumPolicy obligations.MinimumPaymentPolicy
	anomalyPolicy anomaly.Policy
	currency      string
	logger        logging.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(repo store.Repository, minimumPolicy obligations.MinimumPaymentPolicy, anomalyPolicy anomaly.Policy, currency string, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Builder{
		repo:          repo,
		minimumPolicy: minimumPolicy,
		anomalyPolicy: anomalyPolicy,
		currency:      currency,
		logger:        logger,
	}
}

// Currency returns the display currency.
func (b *Builder) Currency() string {
	return b.currency
}

// Input loads the simulator input: balance, incomes, active expenses,
// active plans and cards with a positive balance.
func (b *Builder) Input(ctx context.Context) (cashflow.Input, error) {
	var (
		in  cashflow.Input
		err error
	)
	if in.CurrentBalanceCents, err = b.repo.CurrentBalance(ctx); err != nil {
		return in, fmt.Errorf("loading balance: %w", err)
	}
	if in.Incomes, err = b.repo.ListIncomes(ctx); err != nil {
		return in, fmt.Errorf("loading incomes: %w", err)
	}
	if in.Expenses, err = b.repo.ListFixedExpenses(ctx, true); err != nil {
		return in, fmt.Errorf("loading fixed expenses: %w", err)
	}
	plans, err := b.repo.ListBnplPlans(ctx)
	if err != nil {
		return in, fmt.Errorf("loading bnpl plans: %w", err)
	}
	in.BnplPlans = bnpl.Active(plans)
	if in.CreditCards, err = b.repo.ListCreditCards(ctx, true); err != nil {
		return in, fmt.Errorf("loading credit cards: %w", err)
	}
	return in, nil
}

// Projection runs the cashflow simulator over the stored records.
func (b *Builder) Projection(ctx context.Context, today time.Time) (cashflow.Projection, error) {
	in, err := b.Input(ctx)
	if err != nil {
		return cashflow.Projection{}, err
	}
	p := cashflow.Project(in, today, b.minimumPolicy)

	b.logger.Debug("Projected cashflow",
		logging.F(logging.FieldToday, dateutils.ToISODate(today)),
		logging.F(logging.FieldHorizon, dateutils.ToISODate(p.Horizon)),
		logging.F(logging.FieldCount, len(p.Events)))
	return p, nil
}

// Anomalies compares spend in the month containing month with the month
// before it.
func (b *Builder) Anomalies(ctx context.Context, month time.Time) ([]models.CategoryPeriodTotal, error) {
	from := anomaly.PreviousMonth(month)
	to := dateutils.EndOfMonth(month)

	txns, err := b.repo.ListTransactions(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	current, previous := anomaly.SplitByMonth(txns, month)
	return anomaly.Detect(current, previous, b.anomalyPolicy), nil
}

// Build assembles the full snapshot as of today.
func (b *Builder) Build(ctx context.Context, today time.Time) (*Snapshot, error) {
	today = dateutils.Normalize(today)

	in, err := b.Input(ctx)
	if err != nil {
		return nil, err
	}
	projection := cashflow.Project(in, today, b.minimumPolicy)

	set := obligations.Normalize(obligations.Records{
		Incomes:     in.Incomes,
		Expenses:    in.Expenses,
		Plans:       in.BnplPlans,
		CreditCards: in.CreditCards,
	}, today, b.minimumPolicy)

	anomalies, err := b.Anomalies(ctx, today)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		GeneratedOn:  dateutils.ToISODate(today),
		Currency:     b.currency,
		BalanceCents: in.CurrentBalanceCents,
		SafeToSpend:  projection.Result(),
		Monthly:      set.MonthlyTotals(),
		BnplPlans:    make([]PlanSummary, 0, len(in.BnplPlans)),
		AnomalyMonth: today.Format(dateutils.MonthLayoutISO),
		Anomalies:    anomalies,
	}
	if projection.HasHorizon {
		s.NextPayDate = dateutils.ToISODate(projection.Horizon)
	}
	for _, p := range in.BnplPlans {
		s.BnplPlans = append(s.BnplPlans, Summarize(p))
		s.BnplOutstandingCents += p.OutstandingCents()
	}

	b.logger.Info("Snapshot built",
		logging.F(logging.FieldToday, s.GeneratedOn),
		logging.F("bnpl_plans", len(s.BnplPlans)),
		logging.F("anomalies", len(s.Anomalies)))
	return s, nil
}

// Summarize derives the reporting view of a plan.
func Summarize(p models.BnplPlan) PlanSummary {
	return PlanSummary{
		ID:                    p.ID,
		ItemName:              p.ItemName,
		Provider:              p.Provider,
		InstalmentAmountCents: p.InstalmentAmountCents,
		Frequency:             p.Frequency.Normalized().String(),
		InstalmentsPaid:       p.InstalmentsPaid(),
		InstalmentsRemaining:  p.InstalmentsRemaining,
		NextPaymentDate:       dateutils.ToISODate(p.NextPaymentDate),
		OutstandingCents:      p.OutstandingCents(),
	}
}
