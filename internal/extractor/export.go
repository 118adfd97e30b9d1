package extractor

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"fjacquet/paycycle/internal/models"

	"github.com/gocarina/gocsv"
)

// AnomalyCSVRow is the exported form of a CategoryPeriodTotal. Amounts are
// in major units.
type AnomalyCSVRow struct {
	Category      string `csv:"category"`
	Current       string `csv:"current"`
	Previous      string `csv:"previous"`
	ChangePercent string `csv:"change_percent"`
	IsAnomaly     bool   `csv:"is_anomaly"`
	Direction     string `csv:"direction"`
}

// WriteAnomaliesCSV writes rows to w with a header line. A missing change
// percentage is written as an empty cell.
func WriteAnomaliesCSV(w io.Writer, rows []models.CategoryPeriodTotal, delimiter rune) error {
	out := make([]*AnomalyCSVRow, 0, len(rows))
	for _, r := range rows {
		pct := ""
		if r.ChangePercent != nil {
			pct = strconv.FormatInt(*r.ChangePercent, 10)
		}
		out = append(out, &AnomalyCSVRow{
			Category:      r.Category,
			Current:       models.FormatCents(r.CurrentCents, ""),
			Previous:      models.FormatCents(r.PreviousCents, ""),
			ChangePercent: pct,
			IsAnomaly:     r.IsAnomaly,
			Direction:     string(r.Direction),
		})
	}

	csvWriter := csv.NewWriter(w)
	if delimiter != 0 {
		csvWriter.Comma = delimiter
	}
	if err := gocsv.MarshalCSV(out, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}
