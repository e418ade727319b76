// Package postgres provides a PostgreSQL-backed Store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq" // also registers the "postgres" driver

	invoicer "github.com/elevatehq/invoicer"
	"github.com/elevatehq/invoicer/id"
	"github.com/elevatehq/invoicer/invoice"
	invoicerstore "github.com/elevatehq/invoicer/store"
)

// compile-time interface check
var _ invoicerstore.Store = (*Store)(nil)

// Store implements store.Store on PostgreSQL via database/sql.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL store over an existing connection pool.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open dials PostgreSQL with the given DSN and returns a store over it.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("invoicer/postgres: open: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying pool for direct access.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate applies pending schema migrations in version order.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS invoicer_schema_migrations (
    version    TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
	if err != nil {
		return fmt.Errorf("invoicer/postgres: migration table: %w", err)
	}

	for _, m := range Migrations {
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM invoicer_schema_migrations WHERE version = $1)`,
			m.Version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("invoicer/postgres: migration check %s: %w", m.Version, err)
		}
		if exists {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("invoicer/postgres: begin migration %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("invoicer/postgres: apply %s (%s): %w", m.Name, m.Version, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO invoicer_schema_migrations (version, name) VALUES ($1, $2)`,
			m.Version, m.Name,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("invoicer/postgres: record %s: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("invoicer/postgres: commit %s: %w", m.Version, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Counter store ====================

// IncrementCounter bumps the named counter by one and returns the new
// value. The upsert-with-RETURNING form makes the whole operation a
// single atomic statement, so concurrent issuers across processes each
// observe a distinct consecutive value.
func (s *Store) IncrementCounter(ctx context.Context, name string) (int64, error) {
	var value int64
	err := s.db.QueryRowContext(ctx, `
INSERT INTO invoicer_counters (name, value)
VALUES ($1, 1)
ON CONFLICT (name) DO UPDATE SET value = invoicer_counters.value + 1
RETURNING value`,
		name,
	).Scan(&value)
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (s *Store) GetCounter(ctx context.Context, name string) (int64, error) {
	var value int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM invoicer_counters WHERE name = $1`,
		name,
	).Scan(&value)
	if err != nil {
		if isNoRows(err) {
			return 0, invoicer.ErrCounterNotFound
		}
		return 0, err
	}
	return value, nil
}

// ==================== Invoice store ====================

func (s *Store) CreateInvoice(ctx context.Context, rec *invoice.Record) error {
	m, err := toInvoiceModel(rec)
	if err != nil {
		return err
	}

	// JSONB params go over as text; []byte would be sent as bytea.
	_, err = s.db.ExecContext(ctx, `
INSERT INTO invoicer_invoices
    (id, number, status, client_name, client_email, issue_date,
     currency, terms, line_items, company, total_amount, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		m.ID, m.Number, m.Status, m.ClientName, m.ClientEmail, m.IssueDate,
		m.Currency, m.Terms, string(m.LineItems), string(m.Company), m.TotalAmount,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return invoicer.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, recID id.InvoiceID) (*invoice.Record, error) {
	m := new(invoiceModel)
	err := s.db.QueryRowContext(ctx, `
SELECT id, number, status, client_name, client_email, issue_date,
       currency, terms, line_items, company, total_amount, created_at, updated_at
FROM invoicer_invoices WHERE id = $1`,
		recID.String(),
	).Scan(
		&m.ID, &m.Number, &m.Status, &m.ClientName, &m.ClientEmail, &m.IssueDate,
		&m.Currency, &m.Terms, &m.LineItems, &m.Company, &m.TotalAmount,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, invoicer.ErrInvoiceNotFound
		}
		return nil, err
	}
	return fromInvoiceModel(m)
}

func (s *Store) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Record, error) {
	var sb strings.Builder
	sb.WriteString(`
SELECT id, number, status, client_name, client_email, issue_date,
       currency, terms, line_items, company, total_amount, created_at, updated_at
FROM invoicer_invoices`)

	args := make([]any, 0, 3)
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		fmt.Fprintf(&sb, " WHERE status = $%d", len(args))
	}
	sb.WriteString(" ORDER BY created_at DESC, id")
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := make([]*invoice.Record, 0)
	for rows.Next() {
		m := new(invoiceModel)
		if err := rows.Scan(
			&m.ID, &m.Number, &m.Status, &m.ClientName, &m.ClientEmail, &m.IssueDate,
			&m.Currency, &m.Terms, &m.LineItems, &m.Company, &m.TotalAmount,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rec, err := fromInvoiceModel(m)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *Store) UpdateInvoice(ctx context.Context, rec *invoice.Record) error {
	m, err := toInvoiceModel(rec)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
UPDATE invoicer_invoices SET
    number = $2, status = $3, client_name = $4, client_email = $5,
    issue_date = $6, currency = $7, terms = $8, line_items = $9,
    company = $10, total_amount = $11, updated_at = $12
WHERE id = $1`,
		m.ID, m.Number, m.Status, m.ClientName, m.ClientEmail, m.IssueDate,
		m.Currency, m.Terms, string(m.LineItems), string(m.Company), m.TotalAmount,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return invoicer.ErrInvoiceNotFound
	}
	return nil
}

// IssueInvoice transitions a draft in one guarded UPDATE. The status
// predicate makes the compare-and-set atomic at the database, so a
// concurrent issuer loses with ErrAlreadyIssued instead of rebinding
// the number.
func (s *Store) IssueInvoice(ctx context.Context, rec *invoice.Record) error {
	m, err := toInvoiceModel(rec)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
UPDATE invoicer_invoices SET
    number = $2, status = $3, client_name = $4, client_email = $5,
    issue_date = $6, currency = $7, terms = $8, line_items = $9,
    company = $10, total_amount = $11, updated_at = $12
WHERE id = $1 AND status = 'draft'`,
		m.ID, m.Number, m.Status, m.ClientName, m.ClientEmail, m.IssueDate,
		m.Currency, m.Terms, string(m.LineItems), string(m.Company), m.TotalAmount,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var status string
		err := s.db.QueryRowContext(ctx,
			`SELECT status FROM invoicer_invoices WHERE id = $1`,
			m.ID,
		).Scan(&status)
		if isNoRows(err) {
			return invoicer.ErrInvoiceNotFound
		}
		return invoicer.ErrAlreadyIssued
	}
	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, recID id.InvoiceID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM invoicer_invoices WHERE id = $1`,
		recID.String(),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return invoicer.ErrInvoiceNotFound
	}
	return nil
}

// ==================== Helpers ====================

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
