package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elevatehq/invoicer/id"
	"github.com/elevatehq/invoicer/invoice"
	"github.com/elevatehq/invoicer/types"
)

// ==================== Invoice model ====================

type invoiceModel struct {
	ID          string
	Number      string
	Status      string
	ClientName  string
	ClientEmail string
	IssueDate   sql.NullTime
	Currency    string
	Terms       string
	LineItems   []byte
	Company     []byte
	TotalAmount string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func toInvoiceModel(rec *invoice.Record) (*invoiceModel, error) {
	items, err := json.Marshal(rec.LineItems)
	if err != nil {
		return nil, err
	}
	company, err := json.Marshal(rec.Company)
	if err != nil {
		return nil, err
	}

	m := &invoiceModel{
		ID:          rec.ID.String(),
		Number:      rec.Number,
		Status:      string(rec.Status),
		ClientName:  rec.ClientName,
		ClientEmail: rec.ClientEmail,
		Currency:    rec.Currency,
		Terms:       rec.Terms,
		LineItems:   items,
		Company:     company,
		TotalAmount: rec.Total.Amount.String(),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if !rec.IssueDate.IsZero() {
		m.IssueDate = sql.NullTime{Time: rec.IssueDate, Valid: true}
	}
	return m, nil
}

func fromInvoiceModel(m *invoiceModel) (*invoice.Record, error) {
	recID, err := id.ParseWithPrefix(m.ID, id.PrefixInvoice)
	if err != nil {
		return nil, err
	}

	var items []invoice.LineItem
	if len(m.LineItems) > 0 {
		if err := json.Unmarshal(m.LineItems, &items); err != nil {
			return nil, err
		}
	}
	var company invoice.CompanyProfile
	if len(m.Company) > 0 {
		if err := json.Unmarshal(m.Company, &company); err != nil {
			return nil, err
		}
	}

	amount, err := decimal.NewFromString(m.TotalAmount)
	if err != nil {
		amount = decimal.Zero
	}

	rec := &invoice.Record{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          recID,
		Number:      m.Number,
		ClientName:  m.ClientName,
		ClientEmail: m.ClientEmail,
		LineItems:   items,
		Company:     company,
		Currency:    m.Currency,
		Terms:       m.Terms,
		Total:       types.New(amount, m.Currency),
		Status:      invoice.Status(m.Status),
	}
	if m.IssueDate.Valid {
		rec.IssueDate = m.IssueDate.Time
	}
	return rec, nil
}
