package store

// schemaSQL is portable between SQLite and PostgreSQL: dates are ISO text,
// money is integer cents, booleans are 0/1 integers.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS incomes (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    amount_cents    BIGINT NOT NULL,
    frequency       TEXT NOT NULL,
    next_pay_date   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fixed_expenses (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    amount_cents    BIGINT NOT NULL,
    frequency       TEXT NOT NULL,
    next_due_date   TEXT NOT NULL,
    is_active       INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS bnpl_plans (
    id                       TEXT PRIMARY KEY,
    item_name                TEXT NOT NULL,
    provider                 TEXT NOT NULL DEFAULT '',
    instalment_amount_cents  BIGINT NOT NULL,
    frequency                TEXT NOT NULL,
    instalments_total        INTEGER NOT NULL,
    instalments_remaining    INTEGER NOT NULL,
    next_payment_date        TEXT NOT NULL,
    created_at               TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS credit_cards (
    id                     TEXT PRIMARY KEY,
    name                   TEXT NOT NULL,
    balance_cents          BIGINT NOT NULL,
    minimum_payment_cents  BIGINT NOT NULL,
    due_day_of_month       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id              TEXT PRIMARY KEY,
    date            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    amount_cents    BIGINT NOT NULL,
    is_income       INTEGER NOT NULL DEFAULT 0,
    category        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);

CREATE TABLE IF NOT EXISTS settings (
    key    TEXT PRIMARY KEY,
    value  TEXT NOT NULL
);
`
