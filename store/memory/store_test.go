package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/elevatehq/invoicer"
	"github.com/elevatehq/invoicer/id"
	"github.com/elevatehq/invoicer/invoice"
	"github.com/elevatehq/invoicer/store"
	"github.com/elevatehq/invoicer/types"
)

func newRecord(client string) *invoice.Record {
	return &invoice.Record{
		Entity:     types.NewEntity(),
		ID:         id.NewInvoiceID(),
		ClientName: client,
		Currency:   types.DefaultCurrency,
		Status:     invoice.StatusDraft,
		LineItems: []invoice.LineItem{
			invoice.NewLineItem("Consulting", 500, types.DefaultCurrency),
		},
	}
}

func TestIncrementCounterStartsAtOne(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetCounter(ctx, store.CounterName); !errors.Is(err, invoicer.ErrCounterNotFound) {
		t.Fatalf("GetCounter before first increment: err = %v, want ErrCounterNotFound", err)
	}

	for want := int64(1); want <= 3; want++ {
		got, err := s.IncrementCounter(ctx, store.CounterName)
		if err != nil {
			t.Fatalf("IncrementCounter: %v", err)
		}
		if got != want {
			t.Fatalf("IncrementCounter = %d, want %d", got, want)
		}
	}

	if v, err := s.GetCounter(ctx, store.CounterName); err != nil || v != 3 {
		t.Fatalf("GetCounter = %d, %v, want 3, nil", v, err)
	}
}

func TestIncrementCounterConcurrent(t *testing.T) {
	s := New()
	ctx := context.Background()

	const goroutines = 50
	values := make([]int64, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := s.IncrementCounter(ctx, store.CounterName)
			if err != nil {
				t.Errorf("IncrementCounter: %v", err)
				return
			}
			values[i] = v
		}(i)
	}
	wg.Wait()

	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	for i, v := range values {
		if v != int64(i+1) {
			t.Fatalf("values[%d] = %d, want %d (duplicate or gap)", i, v, i+1)
		}
	}
}

func TestInvoiceCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := newRecord("Acme Ltd")
	if err := s.CreateInvoice(ctx, rec); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if err := s.CreateInvoice(ctx, rec); !errors.Is(err, invoicer.ErrAlreadyExists) {
		t.Fatalf("duplicate CreateInvoice: err = %v, want ErrAlreadyExists", err)
	}

	got, err := s.GetInvoice(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.ClientName != "Acme Ltd" {
		t.Fatalf("ClientName = %q, want %q", got.ClientName, "Acme Ltd")
	}

	// The store must hand back copies, not shared pointers.
	got.ClientName = "Mutated"
	again, _ := s.GetInvoice(ctx, rec.ID)
	if again.ClientName != "Acme Ltd" {
		t.Fatal("store returned a shared pointer; mutation leaked")
	}

	got.ClientName = "Acme Ltd (updated)"
	if err := s.UpdateInvoice(ctx, got); err != nil {
		t.Fatalf("UpdateInvoice: %v", err)
	}
	after, _ := s.GetInvoice(ctx, rec.ID)
	if after.ClientName != "Acme Ltd (updated)" {
		t.Fatalf("ClientName after update = %q", after.ClientName)
	}

	if err := s.DeleteInvoice(ctx, rec.ID); err != nil {
		t.Fatalf("DeleteInvoice: %v", err)
	}
	if _, err := s.GetInvoice(ctx, rec.ID); !invoicer.IsNotFound(err) {
		t.Fatalf("GetInvoice after delete: err = %v, want not-found", err)
	}
	if err := s.DeleteInvoice(ctx, rec.ID); !invoicer.IsNotFound(err) {
		t.Fatalf("second DeleteInvoice: err = %v, want not-found", err)
	}
}

func TestIssueInvoiceGuardsDraftTransition(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := newRecord("Acme Ltd")
	if err := s.CreateInvoice(ctx, rec); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	issued := rec.Clone()
	issued.Number = "INV-00001"
	issued.Status = invoice.StatusIssued
	if err := s.IssueInvoice(ctx, issued); err != nil {
		t.Fatalf("IssueInvoice: %v", err)
	}

	// A second transition must lose and leave the bound number alone.
	again := rec.Clone()
	again.Number = "INV-00002"
	again.Status = invoice.StatusIssued
	if err := s.IssueInvoice(ctx, again); !errors.Is(err, invoicer.ErrAlreadyIssued) {
		t.Fatalf("second IssueInvoice: err = %v, want ErrAlreadyIssued", err)
	}

	got, err := s.GetInvoice(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.Number != "INV-00001" {
		t.Fatalf("number rebound to %q", got.Number)
	}

	missing := newRecord("Ghost")
	missing.Status = invoice.StatusIssued
	missing.Number = "INV-00003"
	if err := s.IssueInvoice(ctx, missing); !invoicer.IsNotFound(err) {
		t.Fatalf("IssueInvoice unknown record: err = %v, want not-found", err)
	}
}

func TestListInvoicesFiltersAndPages(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := newRecord("Client")
		if i < 2 {
			rec.Status = invoice.StatusIssued
		}
		if err := s.CreateInvoice(ctx, rec); err != nil {
			t.Fatalf("CreateInvoice: %v", err)
		}
	}

	all, err := s.ListInvoices(ctx, invoice.ListOpts{})
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len(all) = %d, want 5", len(all))
	}

	issued, err := s.ListInvoices(ctx, invoice.ListOpts{Status: invoice.StatusIssued})
	if err != nil {
		t.Fatalf("ListInvoices issued: %v", err)
	}
	if len(issued) != 2 {
		t.Fatalf("len(issued) = %d, want 2", len(issued))
	}

	page, err := s.ListInvoices(ctx, invoice.ListOpts{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("ListInvoices paged: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("len(page) = %d, want 1", len(page))
	}

	empty, err := s.ListInvoices(ctx, invoice.ListOpts{Offset: 10})
	if err != nil || len(empty) != 0 {
		t.Fatalf("ListInvoices past end = %d recs, %v", len(empty), err)
	}
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping before close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := s.Ping(ctx); !errors.Is(err, invoicer.ErrStoreClosed) {
		t.Fatalf("Ping after close: err = %v, want ErrStoreClosed", err)
	}
	if _, err := s.IncrementCounter(ctx, store.CounterName); !errors.Is(err, invoicer.ErrStoreClosed) {
		t.Fatalf("IncrementCounter after close: err = %v, want ErrStoreClosed", err)
	}
	if err := s.CreateInvoice(ctx, newRecord("X")); !errors.Is(err, invoicer.ErrStoreClosed) {
		t.Fatalf("CreateInvoice after close: err = %v, want ErrStoreClosed", err)
	}
}
