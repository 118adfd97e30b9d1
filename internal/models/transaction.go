package models

import (
	"strings"
	"time"
)

// Transaction is a dated bank movement. Spend is negative; Category is empty
// when the source did not provide one.
type Transaction struct {
	ID          string    `json:"id" yaml:"id"`
	Date        time.Time `json:"date" yaml:"date"`
	Description string    `json:"description" yaml:"description"`
	AmountCents int64     `json:"amount_cents" yaml:"amount_cents"`
	IsIncome    bool      `json:"is_income" yaml:"is_income"`
	Category    string    `json:"category,omitempty" yaml:"category,omitempty"`
}

// CategoryOrDefault returns the category, or CategoryOther when unset.
func (t Transaction) CategoryOrDefault() string {
	if c := strings.TrimSpace(t.Category); c != "" {
		return c
	}
	return CategoryOther
}

// IsSpend reports whether the transaction is outgoing, non-income money.
func (t Transaction) IsSpend() bool {
	return !t.IsIncome && t.AmountCents < 0
}
