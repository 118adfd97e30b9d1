// Package store persists the forecasting records in a SQL database
// (SQLite by default, PostgreSQL optionally) and offers an in-memory
// implementation with the same contract for tests.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/models"

	_ "github.com/lib/pq"  // register postgres driver
	_ "modernc.org/sqlite" // register sqlite driver
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultDSN is the SQLite database used when none is configured.
const DefaultDSN = "paycycle.db"

// Repository is the record store consumed by the services. Reads never
// mutate; every write is atomic on its own.
type Repository interface {
	CurrentBalance(ctx context.Context) (int64, error)
	SetCurrentBalance(ctx context.Context, cents int64) error

	ListIncomes(ctx context.Context) ([]models.IncomeEvent, error)
	CreateIncome(ctx context.Context, in models.IncomeEvent) (models.IncomeEvent, error)

	ListFixedExpenses(ctx context.Context, activeOnly bool) ([]models.FixedExpense, error)
	CreateFixedExpense(ctx context.Context, e models.FixedExpense) (models.FixedExpense, error)

	ListCreditCards(ctx context.Context, positiveBalanceOnly bool) ([]models.CreditCardObligation, error)
	CreateCreditCard(ctx context.Context, c models.CreditCardObligation) (models.CreditCardObligation, error)

	ListBnplPlans(ctx context.Context) ([]models.BnplPlan, error)
	GetBnplPlan(ctx context.Context, id string) (models.BnplPlan, error)
	CreateBnplPlan(ctx context.Context, plan models.BnplPlan) (models.BnplPlan, error)
	UpdateBnplPlan(ctx context.Context, plan models.BnplPlan) error
	DeleteBnplPlan(ctx context.Context, id string) error

	// ListTransactions returns transactions dated within [from, to], oldest first.
	ListTransactions(ctx context.Context, from, to time.Time) ([]models.Transaction, error)
	CreateTransactions(ctx context.Context, txns []models.Transaction) (int, error)

	Close() error
}

// SQLStore is the database-backed Repository.
type SQLStore struct {
	db     *sql.DB
	driver string
	logger logging.Logger
}

// Open opens or creates the database and applies the schema. An empty
// driver means SQLite; an empty SQLite DSN means DefaultDSN.
func Open(ctx context.Context, driver, dsn string, logger logging.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = DefaultDSN
		}
		db, err = openSQLite(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres driver requires a dsn")
		}
		db, err = sql.Open(DriverPostgres, dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("Store opened", logging.F(logging.FieldDriver, driver))
	return &SQLStore{db: db, driver: driver, logger: logger}, nil
}

func openSQLite(path string) (*sql.DB, error) {
	source := path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
		source = path + "?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open(DriverSQLite, source)
	if err != nil {
		return nil, err
	}
	// A single connection keeps SQLite writers serialised.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Driver returns the database driver name.
func (s *SQLStore) Driver() string {
	return s.driver
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	return rebind(s.driver, query)
}

func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
