// Package memory provides an in-memory Store for tests and examples.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/elevatehq/invoicer"
	"github.com/elevatehq/invoicer/id"
	"github.com/elevatehq/invoicer/invoice"
	"github.com/elevatehq/invoicer/store"
)

type Store struct {
	mu sync.RWMutex

	// Invoice storage
	invoices map[string]*invoice.Record

	// Durable counters
	counters map[string]int64

	closed bool
}

func New() *Store {
	return &Store{
		invoices: make(map[string]*invoice.Record),
		counters: make(map[string]int64),
	}
}

var _ store.Store = (*Store)(nil)

// Counter implementation

func (s *Store) IncrementCounter(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, invoicer.ErrStoreClosed
	}

	s.counters[name]++
	return s.counters[name], nil
}

func (s *Store) GetCounter(_ context.Context, name string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, invoicer.ErrStoreClosed
	}

	if v, ok := s.counters[name]; ok {
		return v, nil
	}
	return 0, invoicer.ErrCounterNotFound
}

// Invoice implementation

func (s *Store) CreateInvoice(_ context.Context, rec *invoice.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return invoicer.ErrStoreClosed
	}

	if _, exists := s.invoices[rec.ID.String()]; exists {
		return invoicer.ErrAlreadyExists
	}
	s.invoices[rec.ID.String()] = rec.Clone()
	return nil
}

func (s *Store) GetInvoice(_ context.Context, recID id.InvoiceID) (*invoice.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, invoicer.ErrStoreClosed
	}

	if rec, ok := s.invoices[recID.String()]; ok {
		return rec.Clone(), nil
	}
	return nil, invoicer.ErrInvoiceNotFound
}

func (s *Store) ListInvoices(_ context.Context, opts invoice.ListOpts) ([]*invoice.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, invoicer.ErrStoreClosed
	}

	recs := make([]*invoice.Record, 0, len(s.invoices))
	for _, rec := range s.invoices {
		if opts.Status != "" && rec.Status != opts.Status {
			continue
		}
		recs = append(recs, rec.Clone())
	}

	// Newest first, ties broken by key for a stable order.
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID.String() < recs[j].ID.String()
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(recs) {
			return []*invoice.Record{}, nil
		}
		recs = recs[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(recs) {
		recs = recs[:opts.Limit]
	}
	return recs, nil
}

func (s *Store) UpdateInvoice(_ context.Context, rec *invoice.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return invoicer.ErrStoreClosed
	}

	if _, exists := s.invoices[rec.ID.String()]; !exists {
		return invoicer.ErrInvoiceNotFound
	}
	s.invoices[rec.ID.String()] = rec.Clone()
	return nil
}

func (s *Store) IssueInvoice(_ context.Context, rec *invoice.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return invoicer.ErrStoreClosed
	}

	existing, ok := s.invoices[rec.ID.String()]
	if !ok {
		return invoicer.ErrInvoiceNotFound
	}
	if existing.Status != invoice.StatusDraft {
		return invoicer.ErrAlreadyIssued
	}
	s.invoices[rec.ID.String()] = rec.Clone()
	return nil
}

func (s *Store) DeleteInvoice(_ context.Context, recID id.InvoiceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return invoicer.ErrStoreClosed
	}

	if _, exists := s.invoices[recID.String()]; !exists {
		return invoicer.ErrInvoiceNotFound
	}
	delete(s.invoices, recID.String())
	return nil
}

// Store management

func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return invoicer.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
