package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fjacquet/paycycle/internal/bnpl"
	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/finerror"
	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/obligations"
	"fjacquet/paycycle/internal/recurrence"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML document accepted by ImportSeed. Amounts are decimal
// strings ("1,234.50"), dates are ISO or dd.mm.yyyy.
type Seed struct {
	Balance     string           `yaml:"balance"`
	Incomes     []SeedIncome     `yaml:"incomes"`
	Expenses    []SeedExpense    `yaml:"expenses"`
	BnplPlans   []SeedBnplPlan   `yaml:"bnpl_plans"`
	CreditCards []SeedCreditCard `yaml:"credit_cards"`
}

type SeedIncome struct {
	Name        string `yaml:"name"`
	Amount      string `yaml:"amount"`
	Frequency   string `yaml:"frequency"`
	NextPayDate string `yaml:"next_pay_date"`
}

type SeedExpense struct {
	Name        string `yaml:"name"`
	Amount      string `yaml:"amount"`
	Frequency   string `yaml:"frequency"`
	NextDueDate string `yaml:"next_due_date"`
	// Active defaults to true when omitted.
	Active *bool `yaml:"active"`
}

type SeedBnplPlan struct {
	Item                 string `yaml:"item"`
	Provider             string `yaml:"provider"`
	InstalmentAmount     string `yaml:"instalment_amount"`
	Frequency            string `yaml:"frequency"`
	InstalmentsTotal     int    `yaml:"instalments_total"`
	InstalmentsRemaining int    `yaml:"instalments_remaining"`
	NextPaymentDate      string `yaml:"next_payment_date"`
}

type SeedCreditCard struct {
	Name          string `yaml:"name"`
	Balance       string `yaml:"balance"`
	DueDayOfMonth int    `yaml:"due_day_of_month"`
}

// ImportSummary counts the records written by ImportSeed.
type ImportSummary struct {
	BalanceSet  bool `json:"balance_set"`
	Incomes     int  `json:"incomes"`
	Expenses    int  `json:"expenses"`
	BnplPlans   int  `json:"bnpl_plans"`
	CreditCards int  `json:"credit_cards"`
}

// FindSeedFile looks for filename as given, then under ./config and
// $HOME/.paycycle.
func FindSeedFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err != nil {
			return "", err
		}
		return filename, nil
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".paycycle", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadSeed reads and decodes a seed file.
func LoadSeed(filename string) (*Seed, error) {
	path, err := FindSeedFile(filename)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", filename, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("error parsing seed file: %w", err)
	}
	return &seed, nil
}

// ImportSeed converts and writes every record of seed. Credit-card minimum
// payments are derived from the balance with policy. Conversion of the whole
// document happens before the first write, so a malformed seed writes
// nothing.
func ImportSeed(ctx context.Context, repo Repository, seed *Seed, policy obligations.MinimumPaymentPolicy, logger logging.Logger) (ImportSummary, error) {
	if logger == nil {
		logger = logging.Default()
	}

	records, balance, hasBalance, err := convertSeed(seed, policy)
	if err != nil {
		return ImportSummary{}, err
	}

	var summary ImportSummary
	if hasBalance {
		if err := repo.SetCurrentBalance(ctx, balance); err != nil {
			return summary, err
		}
		summary.BalanceSet = true
	}
	for _, in := range records.Incomes {
		if _, err := repo.CreateIncome(ctx, in); err != nil {
			return summary, err
		}
		summary.Incomes++
	}
	for _, e := range records.Expenses {
		if _, err := repo.CreateFixedExpense(ctx, e); err != nil {
			return summary, err
		}
		summary.Expenses++
	}
	for _, p := range records.Plans {
		if _, err := repo.CreateBnplPlan(ctx, p); err != nil {
			return summary, err
		}
		summary.BnplPlans++
	}
	for _, c := range records.CreditCards {
		if _, err := repo.CreateCreditCard(ctx, c); err != nil {
			return summary, err
		}
		summary.CreditCards++
	}

	logger.Info("Seed imported",
		logging.F("incomes", summary.Incomes),
		logging.F("expenses", summary.Expenses),
		logging.F("bnpl_plans", summary.BnplPlans),
		logging.F("credit_cards", summary.CreditCards))
	return summary, nil
}

func convertSeed(seed *Seed, policy obligations.MinimumPaymentPolicy) (obligations.Records, int64, bool, error) {
	var (
		r          obligations.Records
		balance    int64
		hasBalance bool
	)
	if seed == nil {
		return r, 0, false, nil
	}

	if seed.Balance != "" {
		cents, err := seedCents("balance", seed.Balance)
		if err != nil {
			return r, 0, false, err
		}
		balance, hasBalance = cents, true
	}

	for _, s := range seed.Incomes {
		amount, err := seedCents("incomes.amount", s.Amount)
		if err != nil {
			return r, 0, false, err
		}
		next, err := seedDate("incomes.next_pay_date", s.NextPayDate)
		if err != nil {
			return r, 0, false, err
		}
		r.Incomes = append(r.Incomes, models.IncomeEvent{
			Name:        s.Name,
			AmountCents: amount,
			Frequency:   recurrence.ParseFrequency(s.Frequency),
			NextPayDate: next,
		})
	}

	for _, s := range seed.Expenses {
		amount, err := seedCents("expenses.amount", s.Amount)
		if err != nil {
			return r, 0, false, err
		}
		next, err := seedDate("expenses.next_due_date", s.NextDueDate)
		if err != nil {
			return r, 0, false, err
		}
		active := true
		if s.Active != nil {
			active = *s.Active
		}
		r.Expenses = append(r.Expenses, models.FixedExpense{
			Name:        s.Name,
			AmountCents: amount,
			Frequency:   recurrence.ParseFrequency(s.Frequency),
			NextDueDate: next,
			IsActive:    active,
		})
	}

	for _, s := range seed.BnplPlans {
		amount, err := seedCents("bnpl_plans.instalment_amount", s.InstalmentAmount)
		if err != nil {
			return r, 0, false, err
		}
		next, err := seedDate("bnpl_plans.next_payment_date", s.NextPaymentDate)
		if err != nil {
			return r, 0, false, err
		}
		plan := bnpl.Normalize(models.BnplPlan{
			ItemName:              s.Item,
			Provider:              s.Provider,
			InstalmentAmountCents: amount,
			Frequency:             recurrence.ParseFrequency(s.Frequency),
			InstalmentsTotal:      s.InstalmentsTotal,
			InstalmentsRemaining:  s.InstalmentsRemaining,
			NextPaymentDate:       next,
		})
		if err := bnpl.Validate(plan); err != nil {
			return r, 0, false, err
		}
		r.Plans = append(r.Plans, plan)
	}

	for _, s := range seed.CreditCards {
		bal, err := seedCents("credit_cards.balance", s.Balance)
		if err != nil {
			return r, 0, false, err
		}
		if s.DueDayOfMonth < 1 || s.DueDayOfMonth > 31 {
			return r, 0, false, &finerror.ValidationError{Entity: "credit card", Field: "due_day_of_month", Reason: "must be between 1 and 31"}
		}
		r.CreditCards = append(r.CreditCards, policy.Apply(models.CreditCardObligation{
			Name:          s.Name,
			BalanceCents:  bal,
			DueDayOfMonth: s.DueDayOfMonth,
		}))
	}

	return r, balance, hasBalance, nil
}

func seedCents(field, raw string) (int64, error) {
	cents, err := models.ParseCents(raw)
	if err != nil {
		return 0, &finerror.ParseError{Source: "seed", Field: field, Value: raw, Err: err}
	}
	return cents, nil
}

func seedDate(field, raw string) (time.Time, error) {
	t, err := dateutils.ParseDate(raw)
	if err != nil {
		return time.Time{}, &finerror.ParseError{Source: "seed", Field: field, Value: raw, Err: err}
	}
	return t, nil
}
