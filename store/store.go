// Package store defines the unified storage interface for Invoicer.
package store

import (
	"context"

	"github.com/elevatehq/invoicer/id"
	"github.com/elevatehq/invoicer/invoice"
)

// CounterName is the durable sequence counter key for invoice numbers.
const CounterName = "invoice"

// Store is the unified storage interface for invoice records and the
// durable sequence counter.
//
// IncrementCounter is the only write path for counters and must be atomic
// at the store: one indivisible increment-and-return, creating the counter
// at value 1 when absent. Concurrent callers must each observe a distinct
// consecutive value. A read-modify-write pair in the client is not an
// acceptable implementation; multiple process instances may share the
// store, so in-memory locking cannot provide the guarantee.
type Store interface {
	// Counter methods
	IncrementCounter(ctx context.Context, name string) (int64, error)
	GetCounter(ctx context.Context, name string) (int64, error)

	// Invoice methods
	CreateInvoice(ctx context.Context, rec *invoice.Record) error
	GetInvoice(ctx context.Context, recID id.InvoiceID) (*invoice.Record, error)
	ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Record, error)
	UpdateInvoice(ctx context.Context, rec *invoice.Record) error
	DeleteInvoice(ctx context.Context, recID id.InvoiceID) error

	// IssueInvoice persists rec only if the stored record is still a
	// draft, as one atomic compare-and-set at the store. A record that is
	// already issued fails with the already-issued sentinel, so a number
	// can never be rebound even when issuers race across processes.
	IssueInvoice(ctx context.Context, rec *invoice.Record) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
