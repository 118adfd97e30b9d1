package bnpl

import (
	"strings"

	"fjacquet/paycycle/internal/finerror"
	"fjacquet/paycycle/internal/models"
)

// Normalize fills defaults on a plan about to be created: an unset remaining
// count means nothing has been paid yet, and the frequency falls back to
// monthly.
func Normalize(plan models.BnplPlan) models.BnplPlan {
	plan.ItemName = strings.TrimSpace(plan.ItemName)
	plan.Provider = strings.TrimSpace(plan.Provider)
	plan.Frequency = plan.Frequency.Normalized()
	if plan.InstalmentsRemaining == 0 {
		plan.InstalmentsRemaining = plan.InstalmentsTotal
	}
	return plan
}

// Validate checks the fields and invariants of a new or updated plan.
func Validate(plan models.BnplPlan) error {
	invalid := func(field, reason string) error {
		return &finerror.ValidationError{Entity: "bnpl plan", Field: field, Reason: reason}
	}

	switch {
	case plan.ItemName == "":
		return invalid("item_name", "must not be empty")
	case plan.InstalmentAmountCents <= 0:
		return invalid("instalment_amount_cents", "must be positive")
	case plan.InstalmentsTotal <= 0:
		return invalid("instalments_total", "must be positive")
	case plan.InstalmentsRemaining <= 0:
		return invalid("instalments_remaining", "must be positive")
	case plan.InstalmentsRemaining > plan.InstalmentsTotal:
		return invalid("instalments_remaining", "must not exceed instalments_total")
	case plan.NextPaymentDate.IsZero():
		return invalid("next_payment_date", "is required")
	}
	return nil
}

// Active returns the plans that still have instalments to pay, in input order.
func Active(plans []models.BnplPlan) []models.BnplPlan {
	out := make([]models.BnplPlan, 0, len(plans))
	for _, p := range plans {
		if !p.IsCompleted() {
			out = append(out, p)
		}
	}
	return out
}
