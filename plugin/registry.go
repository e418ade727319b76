package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery: each hook interface is checked once at
// registration rather than on every event.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	onInit             []OnInit
	onShutdown         []OnShutdown
	onDraftCreated     []OnDraftCreated
	onInvoiceIssued    []OnInvoiceIssued
	onInvoiceDeleted   []OnInvoiceDeleted
	onDocumentRendered []OnDocumentRendered
	onAllocationFailed []OnAllocationFailed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnDraftCreated); ok {
		r.onDraftCreated = append(r.onDraftCreated, v)
	}
	if v, ok := p.(OnInvoiceIssued); ok {
		r.onInvoiceIssued = append(r.onInvoiceIssued, v)
	}
	if v, ok := p.(OnInvoiceDeleted); ok {
		r.onInvoiceDeleted = append(r.onInvoiceDeleted, v)
	}
	if v, ok := p.(OnDocumentRendered); ok {
		r.onDocumentRendered = append(r.onDocumentRendered, v)
	}
	if v, ok := p.(OnAllocationFailed); ok {
		r.onAllocationFailed = append(r.onAllocationFailed, v)
	}

	return nil
}

// Plugins returns the names of all registered plugins.
func (r *Registry) Plugins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.plugins))
	for i, p := range r.plugins {
		names[i] = p.Name()
	}
	return names
}

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, issuer interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, issuer)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDraftCreated emits a draft created event.
func (r *Registry) EmitDraftCreated(ctx context.Context, rec interface{}) {
	r.mu.RLock()
	plugins := r.onDraftCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDraftCreated(ctx, rec)
		}); err != nil {
			r.logger.Warn("plugin OnDraftCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoiceIssued emits an invoice issued event.
func (r *Registry) EmitInvoiceIssued(ctx context.Context, rec interface{}) {
	r.mu.RLock()
	plugins := r.onInvoiceIssued
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceIssued(ctx, rec)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceIssued failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoiceDeleted emits an invoice deleted event.
func (r *Registry) EmitInvoiceDeleted(ctx context.Context, recID string) {
	r.mu.RLock()
	plugins := r.onInvoiceDeleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceDeleted(ctx, recID)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceDeleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDocumentRendered emits a document rendered event.
func (r *Registry) EmitDocumentRendered(ctx context.Context, recID string, size int) {
	r.mu.RLock()
	plugins := r.onDocumentRendered
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDocumentRendered(ctx, recID, size)
		}); err != nil {
			r.logger.Warn("plugin OnDocumentRendered failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitAllocationFailed emits an allocation failed event.
func (r *Registry) EmitAllocationFailed(ctx context.Context, recID string, cause error) {
	r.mu.RLock()
	plugins := r.onAllocationFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnAllocationFailed(ctx, recID, cause)
		}); err != nil {
			r.logger.Warn("plugin OnAllocationFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the issuance pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
