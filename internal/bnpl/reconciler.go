package bnpl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fjacquet/paycycle/internal/finerror"
	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/models"
)

// PlanStore is the persistence collaborator for BNPL plans. Each method is
// expected to be atomic on its own; the Reconciler serialises the
// read-modify-write sequence per plan.
type PlanStore interface {
	ListBnplPlans(ctx context.Context) ([]models.BnplPlan, error)
	GetBnplPlan(ctx context.Context, id string) (models.BnplPlan, error)
	CreateBnplPlan(ctx context.Context, plan models.BnplPlan) (models.BnplPlan, error)
	UpdateBnplPlan(ctx context.Context, plan models.BnplPlan) error
	DeleteBnplPlan(ctx context.Context, id string) error
}

// Summary reports what a reconciliation pass did.
type Summary struct {
	Checked   int      `json:"checked"`
	Advanced  int      `json:"advanced"`
	Completed []string `json:"completed"`
	Consumed  int      `json:"instalments_consumed"`
}

// Reconciler applies catch-up and manual payments to stored plans.
type Reconciler struct {
	store  PlanStore
	logger logging.Logger
	locks  *keyedMutex
}

// NewReconciler creates a Reconciler over store.
func NewReconciler(store PlanStore, logger logging.Logger) *Reconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Reconciler{
		store:  store,
		logger: logger,
		locks:  newKeyedMutex(),
	}
}

// List returns the active plans without modifying anything.
func (r *Reconciler) List(ctx context.Context) ([]models.BnplPlan, error) {
	plans, err := r.store.ListBnplPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bnpl plans: %w", err)
	}
	return Active(plans), nil
}

// Add validates and stores a new plan.
func (r *Reconciler) Add(ctx context.Context, plan models.BnplPlan) (models.BnplPlan, error) {
	plan = Normalize(plan)
	if err := Validate(plan); err != nil {
		return models.BnplPlan{}, err
	}

	created, err := r.store.CreateBnplPlan(ctx, plan)
	if err != nil {
		return models.BnplPlan{}, fmt.Errorf("failed to create bnpl plan: %w", err)
	}

	r.logger.Info("BNPL plan created",
		logging.F(logging.FieldPlanID, created.ID),
		logging.F(logging.FieldProvider, created.Provider),
		logging.F(logging.FieldItem, created.ItemName),
		logging.F(logging.FieldRemaining, created.InstalmentsRemaining))
	return created, nil
}

// Reconcile catches a single plan up to today, writing the result back and
// deleting the plan if it completed.
func (r *Reconciler) Reconcile(ctx context.Context, id string, today time.Time) (Result, error) {
	unlock := r.locks.Lock(id)
	defer unlock()

	plan, err := r.store.GetBnplPlan(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return r.apply(ctx, plan, today)
}

// ReconcileAll catches every stored plan up to today. It stops at the first
// persistence failure.
func (r *Reconciler) ReconcileAll(ctx context.Context, today time.Time) (Summary, error) {
	plans, err := r.store.ListBnplPlans(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list bnpl plans: %w", err)
	}

	summary := Summary{Completed: []string{}}
	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res, err := r.Reconcile(ctx, p.ID, today)
		if err != nil {
			if finerror.IsNotFound(err) {
				continue
			}
			return summary, err
		}

		summary.Checked++
		summary.Consumed += res.Consumed
		if res.Completed {
			summary.Completed = append(summary.Completed, p.ID)
		} else if res.Changed {
			summary.Advanced++
		}
	}

	r.logger.Info("BNPL reconciliation finished",
		logging.F(logging.FieldToday, today.Format("2006-01-02")),
		logging.F(logging.FieldCount, summary.Checked),
		logging.F("advanced", summary.Advanced),
		logging.F("completed", len(summary.Completed)))
	return summary, nil
}

// Pay records one manual payment against a stored plan.
func (r *Reconciler) Pay(ctx context.Context, id string) (PaymentResult, error) {
	unlock := r.locks.Lock(id)
	defer unlock()

	plan, err := r.store.GetBnplPlan(ctx, id)
	if err != nil {
		if finerror.IsNotFound(err) {
			// A completed plan has been deleted, so an absent plan has nothing left to pay.
			return PaymentResult{}, &finerror.PlanError{
				PlanID: id,
				Op:     "record payment",
				Err:    fmt.Errorf("%w: %w", finerror.ErrNoRemainingInstalments, err),
			}
		}
		return PaymentResult{}, err
	}

	res, err := RecordPayment(plan)
	if err != nil {
		r.logger.WithError(err).Warn("Payment rejected", logging.F(logging.FieldPlanID, id))
		return PaymentResult{}, err
	}

	if res.Completed {
		if err := r.store.DeleteBnplPlan(ctx, id); err != nil {
			return PaymentResult{}, fmt.Errorf("failed to delete completed plan %s: %w", id, err)
		}
		r.logger.Info("BNPL plan completed",
			logging.F(logging.FieldPlanID, id),
			logging.F(logging.FieldOperation, "record_payment"))
		return res, nil
	}

	if err := r.store.UpdateBnplPlan(ctx, *res.Plan); err != nil {
		return PaymentResult{}, fmt.Errorf("failed to update plan %s: %w", id, err)
	}
	r.logger.Info("BNPL payment recorded",
		logging.F(logging.FieldPlanID, id),
		logging.F(logging.FieldRemaining, res.Plan.InstalmentsRemaining),
		logging.F(logging.FieldNextPayment, res.Plan.NextPaymentDate.Format("2006-01-02")))
	return res, nil
}

func (r *Reconciler) apply(ctx context.Context, plan models.BnplPlan, today time.Time) (Result, error) {
	res := AdvanceOverdue(plan, today)

	switch {
	case res.Completed:
		if err := r.store.DeleteBnplPlan(ctx, plan.ID); err != nil {
			return Result{}, fmt.Errorf("failed to delete completed plan %s: %w", plan.ID, err)
		}
		r.logger.Info("BNPL plan completed",
			logging.F(logging.FieldPlanID, plan.ID),
			logging.F(logging.FieldOperation, "catch_up"),
			logging.F(logging.FieldCount, res.Consumed))
	case res.Changed:
		if err := r.store.UpdateBnplPlan(ctx, *res.Plan); err != nil {
			return Result{}, fmt.Errorf("failed to update plan %s: %w", plan.ID, err)
		}
		r.logger.Debug("BNPL plan advanced",
			logging.F(logging.FieldPlanID, plan.ID),
			logging.F(logging.FieldCount, res.Consumed),
			logging.F(logging.FieldRemaining, res.Plan.InstalmentsRemaining))
	}
	return res, nil
}

// keyedMutex hands out one mutex per plan ID. Entries are dropped when no
// goroutine holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock acquires the mutex for key and returns its release function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
