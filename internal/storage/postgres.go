// Package storage persists admin rates and saved loans in PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rgehrsitz/fincalc/internal/calculator"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/shopspring/decimal"
)

var (
	_ rates.Store             = (*Postgres)(nil)
	_ calculator.LoanRecorder = (*Postgres)(nil)
)

// ErrDuplicateLoan is returned when a loan ID is saved twice
var ErrDuplicateLoan = errors.New("loan already saved")

const uniqueViolation = "23505"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS rate_settings (
		key        TEXT PRIMARY KEY,
		value      NUMERIC NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		id             UUID PRIMARY KEY,
		principal      NUMERIC NOT NULL,
		rate_percent   NUMERIC NOT NULL,
		rate_source    TEXT NOT NULL,
		term_months    INTEGER NOT NULL,
		emi            NUMERIC NOT NULL,
		total_interest NUMERIC NOT NULL,
		total_payment  NUMERIC NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
}

// Postgres provides database operations for rates and loans
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open database handle
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// OpenPostgres connects to url and checks the connection
func OpenPostgres(ctx context.Context, url string, maxOpenConns int) (*Postgres, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Close closes the database handle
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Migrate creates the tables when they do not exist
func (p *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Rate(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	var value decimal.Decimal
	err := p.db.QueryRowContext(ctx, `SELECT value FROM rate_settings WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read rate %s: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) SetRate(ctx context.Context, key string, value decimal.Decimal) error {
	if key == "" {
		return fmt.Errorf("rate key is required")
	}
	query := `
		INSERT INTO rate_settings (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := p.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set rate %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) DeleteRate(ctx context.Context, key string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM rate_settings WHERE key = $1`, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete rate %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete rate %s: %w", key, err)
	}
	return n > 0, nil
}

func (p *Postgres) ListRates(ctx context.Context) ([]rates.Entry, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT key, value FROM rate_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	defer rows.Close()

	var entries []rates.Entry
	for rows.Next() {
		var e rates.Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("failed to scan rate: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	return entries, nil
}

// SaveLoan stores a computed loan
func (p *Postgres) SaveLoan(ctx context.Context, loan calculator.LoanRecord) error {
	query := `
		INSERT INTO loans (id, principal, rate_percent, rate_source, term_months, emi, total_interest, total_payment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := p.db.ExecContext(ctx, query,
		loan.ID, loan.Principal, loan.RatePercent, string(loan.RateSource), loan.TermMonths,
		loan.EMI, loan.TotalInterest, loan.TotalPayment, loan.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateLoan, loan.ID)
		}
		return fmt.Errorf("failed to save loan: %w", err)
	}
	return nil
}

// Loan retrieves a saved loan by ID
func (p *Postgres) Loan(ctx context.Context, id string) (*calculator.LoanRecord, error) {
	loan := &calculator.LoanRecord{}
	var source string
	query := `
		SELECT id, principal, rate_percent, rate_source, term_months, emi, total_interest, total_payment, created_at
		FROM loans
		WHERE id = $1`
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&loan.ID, &loan.Principal, &loan.RatePercent, &source, &loan.TermMonths,
		&loan.EMI, &loan.TotalInterest, &loan.TotalPayment, &loan.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("loan %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find loan: %w", err)
	}
	loan.RateSource = rates.Source(source)
	return loan, nil
}
