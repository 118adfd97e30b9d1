package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/finerror"
	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/recurrence"

	"github.com/google/uuid"
)

const (
	settingCurrentBalance = "current_balance_cents"
	createdAtLayout       = "2006-01-02T15:04:05.000000000Z"
)

// CurrentBalance returns the stored bank balance, zero when never set.
func (s *SQLStore) CurrentBalance(ctx context.Context) (int64, error) {
	var raw string
	err := s.queryRow(ctx, "SELECT value FROM settings WHERE key = ?", settingCurrentBalance).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading current balance: %w", err)
	}
	cents, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &finerror.ParseError{Source: "settings", Field: settingCurrentBalance, Value: raw, Err: err}
	}
	return cents, nil
}

// SetCurrentBalance stores the bank balance.
func (s *SQLStore) SetCurrentBalance(ctx context.Context, cents int64) error {
	_, err := s.exec(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		settingCurrentBalance, strconv.FormatInt(cents, 10))
	if err != nil {
		return fmt.Errorf("saving current balance: %w", err)
	}
	return nil
}

// ListIncomes returns every income event ordered by name.
func (s *SQLStore) ListIncomes(ctx context.Context) ([]models.IncomeEvent, error) {
	rows, err := s.query(ctx, `SELECT id, name, amount_cents, frequency, next_pay_date
		FROM incomes ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying incomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.IncomeEvent
	for rows.Next() {
		var (
			in   models.IncomeEvent
			freq string
			next string
		)
		if err := rows.Scan(&in.ID, &in.Name, &in.AmountCents, &freq, &next); err != nil {
			return nil, fmt.Errorf("scanning income: %w", err)
		}
		in.Frequency = recurrence.ParseFrequency(freq)
		if in.NextPayDate, err = parseStoredDate("incomes", "next_pay_date", next); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// CreateIncome inserts an income event, assigning an ID when empty.
func (s *SQLStore) CreateIncome(ctx context.Context, in models.IncomeEvent) (models.IncomeEvent, error) {
	in.ID = ensureID(in.ID)
	_, err := s.exec(ctx, `INSERT INTO incomes (id, name, amount_cents, frequency, next_pay_date)
		VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.Name, in.AmountCents, in.Frequency.Normalized().String(), dateutils.ToISODate(in.NextPayDate))
	if err != nil {
		return models.IncomeEvent{}, fmt.Errorf("inserting income: %w", err)
	}
	return in, nil
}

// ListFixedExpenses returns fixed expenses ordered by name, optionally only
// the active ones.
func (s *SQLStore) ListFixedExpenses(ctx context.Context, activeOnly bool) ([]models.FixedExpense, error) {
	q := `SELECT id, name, amount_cents, frequency, next_due_date, is_active FROM fixed_expenses`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY name, id`

	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying fixed expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.FixedExpense
	for rows.Next() {
		var (
			e      models.FixedExpense
			freq   string
			next   string
			active int
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.AmountCents, &freq, &next, &active); err != nil {
			return nil, fmt.Errorf("scanning fixed expense: %w", err)
		}
		e.Frequency = recurrence.ParseFrequency(freq)
		e.IsActive = active != 0
		if e.NextDueDate, err = parseStoredDate("fixed_expenses", "next_due_date", next); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateFixedExpense inserts a fixed expense, assigning an ID when empty.
func (s *SQLStore) CreateFixedExpense(ctx context.Context, e models.FixedExpense) (models.FixedExpense, error) {
	e.ID = ensureID(e.ID)
	_, err := s.exec(ctx, `INSERT INTO fixed_expenses (id, name, amount_cents, frequency, next_due_date, is_active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.AmountCents, e.Frequency.Normalized().String(), dateutils.ToISODate(e.NextDueDate), boolToInt(e.IsActive))
	if err != nil {
		return models.FixedExpense{}, fmt.Errorf("inserting fixed expense: %w", err)
	}
	return e, nil
}

// ListCreditCards returns credit cards ordered by name, optionally only
// those with a positive balance.
func (s *SQLStore) ListCreditCards(ctx context.Context, positiveBalanceOnly bool) ([]models.CreditCardObligation, error) {
	q := `SELECT id, name, balance_cents, minimum_payment_cents, due_day_of_month FROM credit_cards`
	if positiveBalanceOnly {
		q += ` WHERE balance_cents > 0`
	}
	q += ` ORDER BY name, id`

	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying credit cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.CreditCardObligation
	for rows.Next() {
		var c models.CreditCardObligation
		if err := rows.Scan(&c.ID, &c.Name, &c.BalanceCents, &c.MinimumPaymentCents, &c.DueDayOfMonth); err != nil {
			return nil, fmt.Errorf("scanning credit card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCreditCard inserts a credit card, assigning an ID when empty.
func (s *SQLStore) CreateCreditCard(ctx context.Context, c models.CreditCardObligation) (models.CreditCardObligation, error) {
	c.ID = ensureID(c.ID)
	_, err := s.exec(ctx, `INSERT INTO credit_cards (id, name, balance_cents, minimum_payment_cents, due_day_of_month)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.BalanceCents, c.MinimumPaymentCents, c.DueDayOfMonth)
	if err != nil {
		return models.CreditCardObligation{}, fmt.Errorf("inserting credit card: %w", err)
	}
	return c, nil
}

const bnplColumns = `id, item_name, provider, instalment_amount_cents, frequency,
	instalments_total, instalments_remaining, next_payment_date`

// ListBnplPlans returns every stored plan in creation order.
func (s *SQLStore) ListBnplPlans(ctx context.Context) ([]models.BnplPlan, error) {
	rows, err := s.query(ctx, `SELECT `+bnplColumns+` FROM bnpl_plans ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying bnpl plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.BnplPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetBnplPlan returns a plan by ID or a NotFoundError.
func (s *SQLStore) GetBnplPlan(ctx context.Context, id string) (models.BnplPlan, error) {
	p, err := scanPlan(s.queryRow(ctx, `SELECT `+bnplColumns+` FROM bnpl_plans WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.BnplPlan{}, &finerror.NotFoundError{Entity: "bnpl plan", ID: id}
	}
	return p, err
}

// CreateBnplPlan inserts a plan, assigning an ID when empty.
func (s *SQLStore) CreateBnplPlan(ctx context.Context, p models.BnplPlan) (models.BnplPlan, error) {
	p.ID = ensureID(p.ID)
	_, err := s.exec(ctx, `INSERT INTO bnpl_plans (`+bnplColumns+`, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ItemName, p.Provider, p.InstalmentAmountCents, p.Frequency.Normalized().String(),
		p.InstalmentsTotal, p.InstalmentsRemaining, dateutils.ToISODate(p.NextPaymentDate),
		time.Now().UTC().Format(createdAtLayout))
	if err != nil {
		return models.BnplPlan{}, fmt.Errorf("inserting bnpl plan: %w", err)
	}
	s.logger.Debug("Stored bnpl plan", logging.F(logging.FieldPlanID, p.ID))
	return p, nil
}

// UpdateBnplPlan writes back the schedule fields of an existing plan.
func (s *SQLStore) UpdateBnplPlan(ctx context.Context, p models.BnplPlan) error {
	res, err := s.exec(ctx, `UPDATE bnpl_plans
		SET instalments_remaining = ?, next_payment_date = ?
		WHERE id = ?`,
		p.InstalmentsRemaining, dateutils.ToISODate(p.NextPaymentDate), p.ID)
	if err != nil {
		return fmt.Errorf("updating bnpl plan %s: %w", p.ID, err)
	}
	return expectOneRow(res, "bnpl plan", p.ID)
}

// DeleteBnplPlan removes a plan. Deleting an absent plan is not an error.
func (s *SQLStore) DeleteBnplPlan(ctx context.Context, id string) error {
	if _, err := s.exec(ctx, `DELETE FROM bnpl_plans WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting bnpl plan %s: %w", id, err)
	}
	return nil
}

// ListTransactions returns transactions dated within [from, to], oldest first.
func (s *SQLStore) ListTransactions(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	rows, err := s.query(ctx, `SELECT id, date, description, amount_cents, is_income, category
		FROM transactions WHERE date >= ? AND date <= ? ORDER BY date, id`,
		dateutils.ToISODate(from), dateutils.ToISODate(to))
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Transaction
	for rows.Next() {
		var (
			t      models.Transaction
			date   string
			income int
		)
		if err := rows.Scan(&t.ID, &date, &t.Description, &t.AmountCents, &income, &t.Category); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		t.IsIncome = income != 0
		if t.Date, err = parseStoredDate("transactions", "date", date); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTransactions inserts txns in one database transaction and returns
// how many were written.
func (s *SQLStore) CreateTransactions(ctx context.Context, txns []models.Transaction) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO transactions
		(id, date, description, amount_cents, is_income, category)
		VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("preparing transaction insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range txns {
		if _, err := stmt.ExecContext(ctx, ensureID(t.ID), dateutils.ToISODate(t.Date),
			t.Description, t.AmountCents, boolToInt(t.IsIncome), strings.TrimSpace(t.Category)); err != nil {
			return 0, fmt.Errorf("inserting transaction: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(txns), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlan(r rowScanner) (models.BnplPlan, error) {
	var (
		p    models.BnplPlan
		freq string
		next string
	)
	if err := r.Scan(&p.ID, &p.ItemName, &p.Provider, &p.InstalmentAmountCents, &freq,
		&p.InstalmentsTotal, &p.InstalmentsRemaining, &next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BnplPlan{}, err
		}
		return models.BnplPlan{}, fmt.Errorf("scanning bnpl plan: %w", err)
	}
	p.Frequency = recurrence.ParseFrequency(freq)
	var err error
	if p.NextPaymentDate, err = parseStoredDate("bnpl_plans", "next_payment_date", next); err != nil {
		return models.BnplPlan{}, err
	}
	return p, nil
}

func parseStoredDate(table, column, raw string) (time.Time, error) {
	t, err := dateutils.ParseISODate(raw)
	if err != nil {
		return time.Time{}, &finerror.ParseError{Source: table, Field: column, Value: raw, Err: err}
	}
	return t, nil
}

func expectOneRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &finerror.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

func ensureID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
