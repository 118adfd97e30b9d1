// Package bnpl keeps buy-now-pay-later instalment schedules consistent with
// elapsed time.
//
// A plan is ACTIVE while InstalmentsRemaining > 0 and COMPLETED once it
// reaches zero. Completed plans have no further representation: every
// operation here signals completion with a nil Plan and the caller deletes
// the stored row.
package bnpl

import (
	"time"

	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/finerror"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/recurrence"
)

// Result is the outcome of AdvanceOverdue.
type Result struct {
	// Plan is the updated plan, or nil when the plan completed.
	Plan      *models.BnplPlan
	Changed   bool
	Completed bool
	// Consumed is the number of instalments taken by this call.
	Consumed int
}

// PaymentResult is the outcome of RecordPayment.
type PaymentResult struct {
	// Plan is the updated plan, or nil when the plan completed.
	Plan      *models.BnplPlan
	Completed bool
}

// AdvanceOverdue consumes every instalment whose payment date is on or before
// today. The next payment date is advanced after each consumed instalment
// except the last one, so a completed plan keeps the date of its final
// payment. Calling it again with the same today is a no-op.
//
// The input plan is not modified.
func AdvanceOverdue(plan models.BnplPlan, today time.Time) Result {
	today = dateutils.Normalize(today)
	plan.NextPaymentDate = dateutils.Normalize(plan.NextPaymentDate)

	consumed := 0
	for !plan.NextPaymentDate.After(today) && plan.InstalmentsRemaining > 0 {
		plan.InstalmentsRemaining--
		consumed++
		if plan.InstalmentsRemaining == 0 {
			break
		}
		plan.NextPaymentDate = recurrence.Advance(plan.NextPaymentDate, plan.Frequency)
	}

	if plan.InstalmentsRemaining <= 0 {
		return Result{Changed: consumed > 0, Completed: true, Consumed: consumed}
	}
	return Result{Plan: &plan, Changed: consumed > 0, Consumed: consumed}
}

// RecordPayment takes exactly one instalment regardless of date. The next
// payment date moves one period on from its current value, not from today.
// It fails with finerror.ErrNoRemainingInstalments when nothing is left.
func RecordPayment(plan models.BnplPlan) (PaymentResult, error) {
	if plan.InstalmentsRemaining <= 0 {
		return PaymentResult{}, &finerror.PlanError{
			PlanID: plan.ID,
			Op:     "record payment",
			Err:    finerror.ErrNoRemainingInstalments,
		}
	}

	plan.InstalmentsRemaining--
	if plan.InstalmentsRemaining == 0 {
		return PaymentResult{Completed: true}, nil
	}
	plan.NextPaymentDate = recurrence.Advance(plan.NextPaymentDate, plan.Frequency)
	return PaymentResult{Plan: &plan}, nil
}
