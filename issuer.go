package invoicer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elevatehq/invoicer/emitter/pdf"
	"github.com/elevatehq/invoicer/id"
	"github.com/elevatehq/invoicer/invoice"
	"github.com/elevatehq/invoicer/layout"
	"github.com/elevatehq/invoicer/plugin"
	"github.com/elevatehq/invoicer/sequence"
	"github.com/elevatehq/invoicer/store"
	"github.com/elevatehq/invoicer/types"
)

// Issuer is the invoice issuance engine.
type Issuer struct {
	store   store.Store
	alloc   *sequence.Allocator
	engine  *layout.Engine
	emitter *pdf.Emitter
	plugins *plugin.Registry
	logger  *slog.Logger

	// Configuration
	company         invoice.CompanyProfile
	currency        string
	allocateTimeout time.Duration
	overflowPolicy  layout.OverflowPolicy
}

// New creates a new Issuer instance over the given store.
func New(s store.Store, opts ...Option) *Issuer {
	iss := &Issuer{
		store:           s,
		plugins:         plugin.NewRegistry(),
		logger:          slog.Default(),
		currency:        types.DefaultCurrency,
		allocateTimeout: sequence.DefaultTimeout,
		overflowPolicy:  layout.OverflowPaginate,
	}

	for _, opt := range opts {
		opt(iss)
	}

	iss.alloc = sequence.New(s,
		sequence.WithCounter(store.CounterName),
		sequence.WithTimeout(iss.allocateTimeout),
		sequence.WithLogger(iss.logger),
	)
	iss.engine = layout.New(layout.WithOverflowPolicy(iss.overflowPolicy))
	iss.emitter = pdf.New()

	return iss
}

// Option configures an Issuer instance.
type Option func(*Issuer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(iss *Issuer) {
		iss.logger = logger
		iss.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(iss *Issuer) {
		_ = iss.plugins.Register(p)
	}
}

// WithAllocateTimeout bounds the counter store round-trip during
// issuance. A dead store surfaces as an AllocationError instead of a
// hung request.
func WithAllocateTimeout(d time.Duration) Option {
	return func(iss *Issuer) {
		iss.allocateTimeout = d
	}
}

// WithOverflowPolicy selects what happens when a long table outgrows the
// page: paginate (default) or fail closed.
func WithOverflowPolicy(p layout.OverflowPolicy) Option {
	return func(iss *Issuer) {
		iss.overflowPolicy = p
	}
}

// WithCompanyProfile sets the default letterhead applied to drafts that
// do not carry their own.
func WithCompanyProfile(c invoice.CompanyProfile) Option {
	return func(iss *Issuer) {
		iss.company = c
	}
}

// WithCurrency sets the default display currency for new drafts.
func WithCurrency(code string) Option {
	return func(iss *Issuer) {
		iss.currency = code
	}
}

// Start migrates the store and initializes plugins.
func (iss *Issuer) Start(ctx context.Context) error {
	if err := iss.store.Migrate(ctx); err != nil {
		return err
	}

	iss.plugins.EmitInit(ctx, iss)

	iss.logger.Info("invoicer started",
		"allocate_timeout", iss.allocateTimeout,
		"plugins", iss.plugins.Plugins(),
	)
	return nil
}

// Stop shuts down the Issuer.
func (iss *Issuer) Stop() error {
	iss.plugins.EmitShutdown(context.Background())
	return iss.store.Close()
}

// ──────────────────────────────────────────────────
// Draft lifecycle
// ──────────────────────────────────────────────────

// CreateDraft validates and stores a new draft record. The total is
// recomputed from the line items; any total supplied by the caller is
// discarded. Malformed line prices were already degraded to zero by the
// money model, so a partially bad invoice still stores.
func (iss *Issuer) CreateDraft(ctx context.Context, rec *invoice.Record) error {
	if rec.ClientName == "" {
		return ValidationError{Field: "client_name", Message: "required"}
	}

	if rec.ID.IsNil() {
		rec.ID = id.NewInvoiceID()
	}
	rec.Entity = types.NewEntity()
	if rec.Currency == "" {
		rec.Currency = iss.currency
	}
	if rec.Company == (invoice.CompanyProfile{}) {
		rec.Company = iss.company
	}
	for i := range rec.LineItems {
		if rec.LineItems[i].ID.IsNil() {
			rec.LineItems[i].ID = id.NewLineItemID()
		}
	}

	if err := validateLineCurrencies(rec); err != nil {
		return err
	}

	// A draft never carries a number; issuance binds it exactly once.
	rec.Number = ""
	rec.Status = invoice.StatusDraft
	rec.Total = rec.ComputeTotal()

	if err := iss.store.CreateInvoice(ctx, rec); err != nil {
		return err
	}

	iss.plugins.EmitDraftCreated(ctx, rec)
	iss.logger.Debug("draft created",
		"record_id", rec.ID.String(),
		"line_items", len(rec.LineItems),
	)
	return nil
}

// validateLineCurrencies rejects line items whose currency conflicts
// with the record's. An empty item currency inherits the record's; a
// conflicting one must be refused here because mixed-currency arithmetic
// in the money model is a programming fault, not degradable input.
func validateLineCurrencies(rec *invoice.Record) error {
	for _, item := range rec.LineItems {
		c := strings.TrimSpace(item.UnitPrice.Currency)
		if c != "" && !strings.EqualFold(c, strings.TrimSpace(rec.Currency)) {
			return ValidationError{
				Field:   "line_items",
				Message: fmt.Sprintf("currency %s conflicts with invoice currency %s", c, rec.Currency),
			}
		}
	}
	return nil
}

// Get retrieves a record by its storage key.
func (iss *Issuer) Get(ctx context.Context, recID id.InvoiceID) (*invoice.Record, error) {
	return iss.store.GetInvoice(ctx, recID)
}

// List returns records matching the given options.
func (iss *Issuer) List(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Record, error) {
	return iss.store.ListInvoices(ctx, opts)
}

// Update replaces a draft's content. Issued records are immutable and
// return ErrRecordImmutable. The total is recomputed; the draft keeps
// its storage key and creation time.
func (iss *Issuer) Update(ctx context.Context, rec *invoice.Record) error {
	existing, err := iss.store.GetInvoice(ctx, rec.ID)
	if err != nil {
		return err
	}
	if existing.Issued() {
		return ErrRecordImmutable
	}

	if rec.Currency == "" {
		rec.Currency = iss.currency
	}
	if err := validateLineCurrencies(rec); err != nil {
		return err
	}

	rec.CreatedAt = existing.CreatedAt
	rec.Number = ""
	rec.Status = invoice.StatusDraft
	rec.Total = rec.ComputeTotal()
	rec.Touch()

	return iss.store.UpdateInvoice(ctx, rec)
}

// Copy duplicates a record into a fresh draft: new storage key, number
// cleared, status reset. Copying an issued invoice yields an unissued
// draft with the same content.
func (iss *Issuer) Copy(ctx context.Context, recID id.InvoiceID) (*invoice.Record, error) {
	rec, err := iss.store.GetInvoice(ctx, recID)
	if err != nil {
		return nil, err
	}

	dup := rec.Clone()
	dup.ID = id.NewInvoiceID()
	dup.Number = ""
	dup.Status = invoice.StatusDraft
	dup.IssueDate = time.Time{}
	dup.Entity = types.NewEntity()
	for i := range dup.LineItems {
		dup.LineItems[i].ID = id.NewLineItemID()
	}

	if err := iss.store.CreateInvoice(ctx, dup); err != nil {
		return nil, err
	}

	iss.plugins.EmitDraftCreated(ctx, dup)
	return dup, nil
}

// Delete removes a record. Its number, if issued, is never released back
// to the pool: the sequence only moves forward.
func (iss *Issuer) Delete(ctx context.Context, recID id.InvoiceID) error {
	if err := iss.store.DeleteInvoice(ctx, recID); err != nil {
		return err
	}

	iss.plugins.EmitInvoiceDeleted(ctx, recID.String())
	return nil
}

// ──────────────────────────────────────────────────
// Issuance
// ──────────────────────────────────────────────────

// Issue binds the next sequence number to a draft and marks it issued.
// The total is recomputed from the stored line items first, so the
// document and the record cannot disagree. Issuing an already-issued
// record returns ErrAlreadyIssued; the bound number never changes.
//
// On allocation failure nothing is persisted and no number was consumed:
// the call is safe to retry. If persisting fails after allocation, the
// allocated number is permanently lost — a gap, never a duplicate. The
// Draft->Issued transition itself is a compare-and-set at the store, so
// racing issuers cannot both bind a number: the loser gets
// ErrAlreadyIssued and its allocated number becomes a gap.
func (iss *Issuer) Issue(ctx context.Context, recID id.InvoiceID) (*invoice.Record, error) {
	rec, err := iss.store.GetInvoice(ctx, recID)
	if err != nil {
		return nil, err
	}
	if rec.Issued() {
		return nil, ErrAlreadyIssued
	}

	rec.Total = rec.ComputeTotal()

	number, err := iss.alloc.Next(ctx)
	if err != nil {
		iss.plugins.EmitAllocationFailed(ctx, recID.String(), err)
		return nil, err
	}

	rec.Number = number
	rec.Status = invoice.StatusIssued
	if rec.IssueDate.IsZero() {
		rec.IssueDate = time.Now().UTC()
	}
	rec.Touch()

	if err := iss.store.IssueInvoice(ctx, rec); err != nil {
		iss.logger.Warn("allocated number lost: record not persisted",
			"record_id", recID.String(),
			"number", number,
			"error", err,
		)
		return nil, err
	}

	iss.plugins.EmitInvoiceIssued(ctx, rec)
	iss.logger.Info("invoice issued",
		"record_id", rec.ID.String(),
		"number", rec.Number,
		"total", rec.Total.Format(),
	)
	return rec, nil
}

// ──────────────────────────────────────────────────
// Rendering
// ──────────────────────────────────────────────────

// Render lays out a record into draw instructions.
func (iss *Issuer) Render(ctx context.Context, recID id.InvoiceID) ([]layout.Instruction, error) {
	rec, err := iss.store.GetInvoice(ctx, recID)
	if err != nil {
		return nil, err
	}
	return iss.engine.Render(rec)
}

// Document renders a record and emits it as PDF bytes, returning the
// conventional filename invoice-<identifier>.pdf. Unissued drafts use
// the record key in place of the number.
func (iss *Issuer) Document(ctx context.Context, recID id.InvoiceID) ([]byte, string, error) {
	rec, err := iss.store.GetInvoice(ctx, recID)
	if err != nil {
		return nil, "", err
	}

	ins, err := iss.engine.Render(rec)
	if err != nil {
		return nil, "", err
	}

	out, err := iss.emitter.Emit(iss.engine.Page(), ins)
	if err != nil {
		return nil, "", err
	}

	name := rec.Number
	if name == "" {
		name = rec.ID.String()
	}
	filename := "invoice-" + name + ".pdf"

	iss.plugins.EmitDocumentRendered(ctx, rec.ID.String(), len(out))
	return out, filename, nil
}
