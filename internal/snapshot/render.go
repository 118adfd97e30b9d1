package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/models"

	"gopkg.in/yaml.v3"
)

// Supported render formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// Renderer serialises snapshots.
type Renderer struct {
	logger logging.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(logger logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Renderer{logger: logger.WithField("component", "SnapshotRenderer")}
}

// Render returns s in format (json, yaml or text).
func (r *Renderer) Render(s *Snapshot, format string) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("cannot render nil snapshot")
	}
	switch strings.ToLower(format) {
	case FormatJSON:
		return r.renderJSON(s)
	case FormatYAML:
		return r.renderYAML(s)
	case FormatText, "":
		return renderText(s), nil
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", format)
	}
}

func (r *Renderer) renderJSON(s *Snapshot) ([]byte, error) {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		r.logger.WithError(err).Error("Failed to marshal JSON snapshot")
		return nil, fmt.Errorf("failed to marshal JSON snapshot: %w", err)
	}
	return out, nil
}

func (r *Renderer) renderYAML(s *Snapshot) ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		r.logger.WithError(err).Error("Failed to marshal YAML snapshot")
		return nil, fmt.Errorf("failed to marshal YAML snapshot: %w", err)
	}
	return out, nil
}

func renderText(s *Snapshot) []byte {
	money := func(c int64) string { return models.FormatCents(c, s.Currency) }

	var b strings.Builder
	fmt.Fprintf(&b, "Snapshot %s\n", s.GeneratedOn)
	fmt.Fprintf(&b, "  Balance:        %s\n", money(s.BalanceCents))
	fmt.Fprintf(&b, "  Safe to spend:  %s\n", money(s.SafeToSpend.SafeToSpendCents))
	if s.NextPayDate != "" {
		fmt.Fprintf(&b, "  Next pay:       %s (%d days)\n", s.NextPayDate, s.SafeToSpend.DaysUntilPay)
	} else {
		b.WriteString("  Next pay:       none\n")
	}

	b.WriteString("Monthly\n")
	fmt.Fprintf(&b, "  Income:         %s\n", money(s.Monthly.IncomeCents))
	fmt.Fprintf(&b, "  Fixed expenses: %s\n", money(s.Monthly.FixedExpensesCents))
	fmt.Fprintf(&b, "  BNPL:           %s\n", money(s.Monthly.BnplCents))
	fmt.Fprintf(&b, "  Card minimums:  %s\n", money(s.Monthly.CreditCardCents))
	fmt.Fprintf(&b, "  Net:            %s\n", money(s.Monthly.NetCents))

	fmt.Fprintf(&b, "BNPL (%d active, %s outstanding)\n", len(s.BnplPlans), money(s.BnplOutstandingCents))
	for _, p := range s.BnplPlans {
		fmt.Fprintf(&b, "  %s (%s): %d/%d left, next %s\n",
			p.ItemName, p.Provider, p.InstalmentsRemaining, p.InstalmentsPaid+p.InstalmentsRemaining, p.NextPaymentDate)
	}

	fmt.Fprintf(&b, "Anomalies %s\n", s.AnomalyMonth)
	flagged := 0
	for _, a := range s.Anomalies {
		if !a.IsAnomaly {
			continue
		}
		flagged++
		fmt.Fprintf(&b, "  %s %s %d%% (%s -> %s)\n",
			a.Category, a.Direction, *a.ChangePercent, money(a.PreviousCents), money(a.CurrentCents))
	}
	if flagged == 0 {
		b.WriteString("  none\n")
	}
	return []byte(b.String())
}
