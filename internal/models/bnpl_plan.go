package models

import (
	"time"

	"fjacquet/paycycle/internal/recurrence"
)

// BnplPlan is a buy-now-pay-later purchase repaid in fixed instalments.
// Invariant: 0 <= InstalmentsRemaining <= InstalmentsTotal. A plan with zero
// remaining instalments is completed and is deleted from the store.
type BnplPlan struct {
	ID                    string               `json:"id" yaml:"id"`
	ItemName              string               `json:"item_name" yaml:"item_name"`
	Provider              string               `json:"provider" yaml:"provider"`
	InstalmentAmountCents int64                `json:"instalment_amount_cents" yaml:"instalment_amount_cents"`
	Frequency             recurrence.Frequency `json:"frequency" yaml:"frequency"`
	InstalmentsTotal      int                  `json:"instalments_total" yaml:"instalments_total"`
	InstalmentsRemaining  int                  `json:"instalments_remaining" yaml:"instalments_remaining"`
	NextPaymentDate       time.Time            `json:"next_payment_date" yaml:"next_payment_date"`
}

// IsCompleted reports whether no instalments remain.
func (p BnplPlan) IsCompleted() bool {
	return p.InstalmentsRemaining <= 0
}

// OutstandingCents is the sum of the instalments still to pay.
func (p BnplPlan) OutstandingCents() int64 {
	if p.InstalmentsRemaining <= 0 {
		return 0
	}
	return int64(p.InstalmentsRemaining) * p.InstalmentAmountCents
}

// InstalmentsPaid is the number of instalments already consumed.
func (p BnplPlan) InstalmentsPaid() int {
	return p.InstalmentsTotal - p.InstalmentsRemaining
}
