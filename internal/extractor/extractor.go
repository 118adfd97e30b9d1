// Package extractor turns external documents into candidate transactions.
package extractor

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/finerror"
	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/models"

	"github.com/gocarina/gocsv"
)

// DocumentExtractor produces candidate transactions from a document. The
// AI-backed PDF and screenshot extractors live outside this module and
// satisfy the same contract.
type DocumentExtractor interface {
	Extract(ctx context.Context, r io.Reader) ([]models.Transaction, error)
}

// TransactionCSVRow is one row of a bank CSV export.
//
//	date,description,amount,category,type
//	2024-03-02,Coffee,-4.50,Dining,
type TransactionCSVRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Category    string `csv:"category"`
	// Type is "income" or "expense"; when empty the amount's sign decides.
	Type string `csv:"type"`
}

// CSVExtractor reads TransactionCSVRow exports.
type CSVExtractor struct {
	Delimiter rune
	logger    logging.Logger
}

// NewCSVExtractor creates a CSVExtractor. A zero delimiter means comma.
func NewCSVExtractor(delimiter rune, logger logging.Logger) *CSVExtractor {
	if logger == nil {
		logger = logging.Default()
	}
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVExtractor{Delimiter: delimiter, logger: logger}
}

// Extract parses every row of r. Rows that cannot be converted are logged
// and skipped; a malformed CSV document is an error.
func (e *CSVExtractor) Extract(ctx context.Context, r io.Reader) ([]models.Transaction, error) {
	reader := csv.NewReader(r)
	reader.Comma = e.Delimiter
	reader.TrimLeadingSpace = true

	var rows []*TransactionCSVRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error reading transactions CSV: %w", err)
	}

	transactions := make([]models.Transaction, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(row.Date) == "" {
			continue
		}

		tx, err := convertRow(*row)
		if err != nil {
			e.logger.WithError(err).Warn("Failed to convert row to transaction, skipping",
				logging.F("row", i+2))
			continue
		}
		transactions = append(transactions, tx)
	}

	e.logger.Info("Extracted transactions from CSV",
		logging.F(logging.FieldCount, len(transactions)),
		logging.F("rows", len(rows)))
	return transactions, nil
}

// ExtractFile opens path and runs ex over it.
func ExtractFile(ctx context.Context, ex DocumentExtractor, path string) ([]models.Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening input file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ex.Extract(ctx, file)
}

func convertRow(row TransactionCSVRow) (models.Transaction, error) {
	date, err := dateutils.ParseDate(row.Date)
	if err != nil {
		return models.Transaction{}, &finerror.ParseError{Source: "csv", Field: "date", Value: row.Date, Err: err}
	}
	cents, err := models.ParseCents(row.Amount)
	if err != nil {
		return models.Transaction{}, &finerror.ParseError{Source: "csv", Field: "amount", Value: row.Amount, Err: err}
	}

	var income bool
	switch strings.ToLower(strings.TrimSpace(row.Type)) {
	case "income", "credit":
		income = true
	case "expense", "debit":
		income = false
	default:
		income = cents > 0
	}
	// Expense rows exported as positive numbers are still spend.
	if !income && cents > 0 {
		cents = -cents
	}

	return models.Transaction{
		Date:        date,
		Description: strings.TrimSpace(row.Description),
		AmountCents: cents,
		IsIncome:    income,
		Category:    strings.TrimSpace(row.Category),
	}, nil
}
