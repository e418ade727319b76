// Package invoice defines the invoice record model and its lifecycle.
package invoice

import (
	"time"

	"github.com/elevatehq/invoicer/id"
	"github.com/elevatehq/invoicer/types"
)

// Status tracks the record lifecycle. A record is created as a draft and
// becomes issued exactly when a sequence number is bound to it. Issued
// records are immutable.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusIssued Status = "issued"
)

// LineItem is a single billable row. Immutable once its invoice is issued.
type LineItem struct {
	ID          id.LineItemID `json:"id" bson:"_id"`
	Description string        `json:"description" bson:"description"`
	UnitPrice   types.Money   `json:"unit_price" bson:"unit_price"`
}

// NewLineItem builds a line item from loosely typed input. A missing or
// non-numeric price degrades to zero rather than rejecting the invoice.
func NewLineItem(description string, price any, currency string) LineItem {
	return LineItem{
		ID:          id.NewLineItemID(),
		Description: description,
		UnitPrice:   types.New(types.AmountOf(price), currency),
	}
}

// CompanyProfile carries the issuing company's letterhead and payment
// details. Every field is optional at render time; the layout engine
// substitutes documented defaults for missing values.
type CompanyProfile struct {
	Name          string `json:"name" bson:"name"`
	LogoRef       string `json:"logo_ref,omitempty" bson:"logo_ref,omitempty"`
	BankName      string `json:"bank_name,omitempty" bson:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty" bson:"account_number,omitempty"`
	Administrator string `json:"administrator,omitempty" bson:"administrator,omitempty"`
	Phone         string `json:"phone,omitempty" bson:"phone,omitempty"`
	Email         string `json:"email,omitempty" bson:"email,omitempty"`
	Address       string `json:"address,omitempty" bson:"address,omitempty"`
}

// Record is an invoice. Number is empty until issuance binds a sequence
// identifier (INV-NNNNN); it is assigned exactly once and never reused,
// even after the record is deleted.
type Record struct {
	types.Entity `bson:",inline"`

	ID          id.InvoiceID   `json:"id" bson:"_id"`
	Number      string         `json:"number,omitempty" bson:"number,omitempty"`
	IssueDate   time.Time      `json:"issue_date" bson:"issue_date"`
	ClientName  string         `json:"client_name" bson:"client_name"`
	ClientEmail string         `json:"client_email,omitempty" bson:"client_email,omitempty"`
	LineItems   []LineItem     `json:"line_items" bson:"line_items"`
	Company     CompanyProfile `json:"company" bson:"company"`
	Currency    string         `json:"currency" bson:"currency"`
	Terms       string         `json:"terms,omitempty" bson:"terms,omitempty"`
	Total       types.Money    `json:"total" bson:"total"`
	Status      Status         `json:"status" bson:"status"`
}

// Issued reports whether a sequence number has been bound.
func (r *Record) Issued() bool {
	return r.Status == StatusIssued && r.Number != ""
}

// ComputeTotal sums the line item prices in the record's currency.
// The stored Total is never trusted as input: issuance always recomputes
// so the document and the record cannot disagree.
func (r *Record) ComputeTotal() types.Money {
	total := types.Zero(r.Currency)
	for _, item := range r.LineItems {
		total = total.Add(item.UnitPrice)
	}
	return total
}

// Clone returns a deep copy of the record, for copy-to-new-draft flows.
func (r *Record) Clone() *Record {
	dup := *r
	dup.LineItems = make([]LineItem, len(r.LineItems))
	copy(dup.LineItems, r.LineItems)
	return &dup
}
