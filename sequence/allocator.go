// Package sequence allocates sequential invoice numbers.
//
// The allocator never computes the next number itself: scanning the highest
// existing invoice and adding one loses updates when two issuance requests
// race. Every allocation is a single atomic increment-and-fetch against the
// durable counter in the store, which also creates the counter at 1 on the
// first call. Numbers lost to aborted issuance stay consumed; gaps are
// tolerated, duplicates are not.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// CounterStore is the durable atomic counter capability the allocator
// depends on. IncrementCounter must be one indivisible increment-and-return
// provided by the store itself (upsert-returning SQL, $inc upsert, etc.).
type CounterStore interface {
	IncrementCounter(ctx context.Context, name string) (int64, error)
}

// DefaultCounter is the counter key invoice numbers are drawn from.
const DefaultCounter = "invoice"

// DefaultTimeout bounds the counter round-trip so a dead store surfaces
// as an allocation failure instead of a hung issuance request.
const DefaultTimeout = 5 * time.Second

// ErrAllocationFailed indicates the durable counter could not be
// incremented. The issuance attempt must fail; no number was consumed, so
// the caller may retry. Inventing a fallback number reopens the collision
// hazard and is never done.
var ErrAllocationFailed = errors.New("sequence: allocation failed")

// AllocationError wraps a counter store failure with its context.
type AllocationError struct {
	Counter string
	Err     error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("sequence: allocate from counter %q: %v", e.Counter, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// Is reports ErrAllocationFailed so callers can match with errors.Is
// without depending on the concrete type.
func (e *AllocationError) Is(target error) bool { return target == ErrAllocationFailed }

// Allocator issues unique, strictly increasing invoice numbers.
type Allocator struct {
	store   CounterStore
	counter string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithCounter overrides the counter key.
func WithCounter(name string) Option {
	return func(a *Allocator) {
		a.counter = name
	}
}

// WithTimeout bounds the counter store round-trip.
func WithTimeout(d time.Duration) Option {
	return func(a *Allocator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Allocator) {
		a.logger = logger
	}
}

// New creates an Allocator drawing from the given counter store.
func New(store CounterStore, opts ...Option) *Allocator {
	a := &Allocator{
		store:   store,
		counter: DefaultCounter,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Next allocates and formats the next invoice number. For any set of N
// concurrent calls the results are N distinct consecutive numbers,
// regardless of interleaving; the guarantee comes entirely from the
// store's atomic increment.
func (a *Allocator) Next(ctx context.Context) (string, error) {
	n, err := a.NextValue(ctx)
	if err != nil {
		return "", err
	}
	return Format(n), nil
}

// NextValue allocates the next raw counter value.
func (a *Allocator) NextValue(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	n, err := a.store.IncrementCounter(ctx, a.counter)
	if err != nil {
		a.logger.Error("counter increment failed",
			"counter", a.counter,
			"error", err,
		)
		return 0, &AllocationError{Counter: a.counter, Err: err}
	}

	a.logger.Debug("allocated invoice number",
		"counter", a.counter,
		"value", n,
	)
	return n, nil
}

// Format renders a counter value as an invoice number: "INV-" plus the
// value zero-padded to five digits. Values past 99999 simply grow wider;
// there is no upper bound and no wraparound.
func Format(n int64) string {
	return fmt.Sprintf("INV-%05d", n)
}
