package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/finerror"
	"fjacquet/paycycle/internal/models"
)

// MemoryStore is an in-memory Repository for tests and dry runs.
type MemoryStore struct {
	mu           sync.RWMutex
	balance      int64
	incomes      []models.IncomeEvent
	expenses     []models.FixedExpense
	cards        []models.CreditCardObligation
	plans        []models.BnplPlan
	transactions []models.Transaction

	// Err, when set, is returned by every method.
	Err error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) CurrentBalance(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balance, m.Err
}

func (m *MemoryStore) SetCurrentBalance(_ context.Context, cents int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.balance = cents
	return nil
}

func (m *MemoryStore) ListIncomes(_ context.Context) ([]models.IncomeEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := append([]models.IncomeEvent(nil), m.incomes...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) CreateIncome(_ context.Context, in models.IncomeEvent) (models.IncomeEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.IncomeEvent{}, m.Err
	}
	in.ID = ensureID(in.ID)
	in.Frequency = in.Frequency.Normalized()
	in.NextPayDate = dateutils.Normalize(in.NextPayDate)
	m.incomes = append(m.incomes, in)
	return in, nil
}

func (m *MemoryStore) ListFixedExpenses(_ context.Context, activeOnly bool) ([]models.FixedExpense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.FixedExpense
	for _, e := range m.expenses {
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) CreateFixedExpense(_ context.Context, e models.FixedExpense) (models.FixedExpense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.FixedExpense{}, m.Err
	}
	e.ID = ensureID(e.ID)
	e.Frequency = e.Frequency.Normalized()
	e.NextDueDate = dateutils.Normalize(e.NextDueDate)
	m.expenses = append(m.expenses, e)
	return e, nil
}

func (m *MemoryStore) ListCreditCards(_ context.Context, positiveBalanceOnly bool) ([]models.CreditCardObligation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.CreditCardObligation
	for _, c := range m.cards {
		if positiveBalanceOnly && c.BalanceCents <= 0 {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) CreateCreditCard(_ context.Context, c models.CreditCardObligation) (models.CreditCardObligation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.CreditCardObligation{}, m.Err
	}
	c.ID = ensureID(c.ID)
	m.cards = append(m.cards, c)
	return c, nil
}

func (m *MemoryStore) ListBnplPlans(_ context.Context) ([]models.BnplPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.BnplPlan(nil), m.plans...), nil
}

func (m *MemoryStore) GetBnplPlan(_ context.Context, id string) (models.BnplPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return models.BnplPlan{}, m.Err
	}
	if i := m.planIndex(id); i >= 0 {
		return m.plans[i], nil
	}
	return models.BnplPlan{}, &finerror.NotFoundError{Entity: "bnpl plan", ID: id}
}

func (m *MemoryStore) CreateBnplPlan(_ context.Context, p models.BnplPlan) (models.BnplPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.BnplPlan{}, m.Err
	}
	p.ID = ensureID(p.ID)
	p.Frequency = p.Frequency.Normalized()
	p.NextPaymentDate = dateutils.Normalize(p.NextPaymentDate)
	m.plans = append(m.plans, p)
	return p, nil
}

func (m *MemoryStore) UpdateBnplPlan(_ context.Context, p models.BnplPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	i := m.planIndex(p.ID)
	if i < 0 {
		return &finerror.NotFoundError{Entity: "bnpl plan", ID: p.ID}
	}
	m.plans[i].InstalmentsRemaining = p.InstalmentsRemaining
	m.plans[i].NextPaymentDate = dateutils.Normalize(p.NextPaymentDate)
	return nil
}

func (m *MemoryStore) DeleteBnplPlan(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if i := m.planIndex(id); i >= 0 {
		m.plans = append(m.plans[:i], m.plans[i+1:]...)
	}
	return nil
}

func (m *MemoryStore) ListTransactions(_ context.Context, from, to time.Time) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	from, to = dateutils.Normalize(from), dateutils.Normalize(to)
	var out []models.Transaction
	for _, t := range m.transactions {
		if t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemoryStore) CreateTransactions(_ context.Context, txns []models.Transaction) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	for _, t := range txns {
		t.ID = ensureID(t.ID)
		t.Date = dateutils.Normalize(t.Date)
		t.Category = strings.TrimSpace(t.Category)
		m.transactions = append(m.transactions, t)
	}
	return len(txns), nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) planIndex(id string) int {
	for i, p := range m.plans {
		if p.ID == id {
			return i
		}
	}
	return -1
}

var (
	_ Repository = (*SQLStore)(nil)
	_ Repository = (*MemoryStore)(nil)
)
