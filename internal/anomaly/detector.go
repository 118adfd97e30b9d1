// Package anomaly compares category spend across two adjacent calendar
// months and flags significant changes.
package anomaly

import (
	"sort"
	"time"

	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/models"

	"github.com/shopspring/decimal"
)

// Default thresholds: a 30% change of at least $10 on a category with at
// least $10 of current spend.
const (
	DefaultThresholdPercent int64 = 30
	DefaultMinDeltaCents    int64 = 1000
	DefaultMinCurrentCents  int64 = 1000
)

// Policy holds the thresholds that must all hold for a change to be an
// anomaly.
type Policy struct {
	ThresholdPercent int64
	MinDeltaCents    int64
	MinCurrentCents  int64
}

// DefaultPolicy returns the 30% / $10 / $10 policy.
func DefaultPolicy() Policy {
	return Policy{
		ThresholdPercent: DefaultThresholdPercent,
		MinDeltaCents:    DefaultMinDeltaCents,
		MinCurrentCents:  DefaultMinCurrentCents,
	}
}

// IsAnomaly reports whether a category total crosses every threshold. A
// category without a baseline (nil changePercent) is never an anomaly.
func (p Policy) IsAnomaly(current, previous int64, changePercent *int64) bool {
	if changePercent == nil {
		return false
	}
	return abs(*changePercent) >= p.ThresholdPercent &&
		abs(current-previous) >= p.MinDeltaCents &&
		current >= p.MinCurrentCents
}

// DetectAnomalies runs Detect with the default policy.
func DetectAnomalies(current, previous []models.Transaction) []models.CategoryPeriodTotal {
	return Detect(current, previous, DefaultPolicy())
}

// Detect builds one row per category seen in either period. Rows are ordered
// anomalies first, then by descending current spend; ties keep category name
// order.
func Detect(current, previous []models.Transaction, policy Policy) []models.CategoryPeriodTotal {
	cur := SpendByCategory(current)
	prev := SpendByCategory(previous)

	keys := make([]string, 0, len(cur)+len(prev))
	for k := range cur {
		keys = append(keys, k)
	}
	for k := range prev {
		if _, ok := cur[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	rows := make([]models.CategoryPeriodTotal, 0, len(keys))
	for _, k := range keys {
		c, p := cur[k], prev[k]
		change := ChangePercent(c, p)

		direction := models.DirectionUp
		if c < p {
			direction = models.DirectionDown
		}

		rows = append(rows, models.CategoryPeriodTotal{
			Category:      k,
			CurrentCents:  c,
			PreviousCents: p,
			ChangePercent: change,
			IsAnomaly:     policy.IsAnomaly(c, p, change),
			Direction:     direction,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].IsAnomaly != rows[j].IsAnomaly {
			return rows[i].IsAnomaly
		}
		return rows[i].CurrentCents > rows[j].CurrentCents
	})
	return rows
}

// SpendByCategory sums the absolute spend per category, skipping income and
// non-negative amounts. Uncategorised spend is grouped under "Other".
func SpendByCategory(txns []models.Transaction) map[string]int64 {
	totals := make(map[string]int64)
	for _, t := range txns {
		if !t.IsSpend() {
			continue
		}
		totals[t.CategoryOrDefault()] += -t.AmountCents
	}
	return totals
}

// ChangePercent returns round((current-previous)/previous*100), halves away
// from zero, or nil when previous is not positive.
func ChangePercent(current, previous int64) *int64 {
	if previous <= 0 {
		return nil
	}
	pct := decimal.NewFromInt(current - previous).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(previous)).
		Round(0).
		IntPart()
	return &pct
}

// Flagged returns the rows marked as anomalies, keeping their order.
func Flagged(rows []models.CategoryPeriodTotal) []models.CategoryPeriodTotal {
	out := make([]models.CategoryPeriodTotal, 0, len(rows))
	for _, r := range rows {
		if r.IsAnomaly {
			out = append(out, r)
		}
	}
	return out
}

// PreviousMonth returns the first day of the month before month.
func PreviousMonth(month time.Time) time.Time {
	return dateutils.StartOfMonth(month).AddDate(0, -1, 0)
}

// SplitByMonth partitions transactions into those dated in month and those
// dated in the month before it. Everything else is dropped.
func SplitByMonth(txns []models.Transaction, month time.Time) (current, previous []models.Transaction) {
	prevMonth := PreviousMonth(month)
	for _, t := range txns {
		switch {
		case dateutils.SameMonth(t.Date, month):
			current = append(current, t)
		case dateutils.SameMonth(t.Date, prevMonth):
			previous = append(previous, t)
		}
	}
	return current, previous
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
