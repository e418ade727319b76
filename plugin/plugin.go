// Package plugin provides an extensible hook system for Invoicer.
// Plugins observe issuance lifecycle events to extend functionality
// (audit trails, outbound notifications, metrics) without the engine
// knowing about any of them.
package plugin

import "context"

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// OnInit is called when the engine starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, issuer interface{}) error
}

// OnShutdown is called when the engine is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// OnDraftCreated is called when a new draft invoice is stored.
type OnDraftCreated interface {
	Plugin
	OnDraftCreated(ctx context.Context, rec interface{}) error
}

// OnInvoiceIssued is called when a draft is bound to a sequence number
// and becomes immutable.
type OnInvoiceIssued interface {
	Plugin
	OnInvoiceIssued(ctx context.Context, rec interface{}) error
}

// OnInvoiceDeleted is called after a record is removed. The record's
// number is never released back to the pool.
type OnInvoiceDeleted interface {
	Plugin
	OnInvoiceDeleted(ctx context.Context, recID string) error
}

// OnDocumentRendered is called after a record is laid out and emitted.
type OnDocumentRendered interface {
	Plugin
	OnDocumentRendered(ctx context.Context, recID string, size int) error
}

// OnAllocationFailed is called when the durable counter could not be
// incremented and an issuance attempt failed.
type OnAllocationFailed interface {
	Plugin
	OnAllocationFailed(ctx context.Context, recID string, err error) error
}
