package mongo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/elevatehq/invoicer/id"
	"github.com/elevatehq/invoicer/invoice"
	"github.com/elevatehq/invoicer/types"
)

// ==================== Invoice models ====================

// Amounts are stored as decimal strings so values round-trip without
// float drift.
type invoiceModel struct {
	ID          string          `bson:"_id"`
	Number      string          `bson:"number"`
	Status      string          `bson:"status"`
	ClientName  string          `bson:"client_name"`
	ClientEmail string          `bson:"client_email,omitempty"`
	IssueDate   *time.Time      `bson:"issue_date,omitempty"`
	Currency    string          `bson:"currency"`
	Terms       string          `bson:"terms,omitempty"`
	LineItems   []lineItemModel `bson:"line_items"`
	Company     companyModel    `bson:"company"`
	TotalAmount string          `bson:"total_amount"`
	CreatedAt   time.Time       `bson:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at"`
}

type lineItemModel struct {
	ID          string `bson:"_id"`
	Description string `bson:"description"`
	UnitPrice   string `bson:"unit_price"`
	Currency    string `bson:"currency"`
}

type companyModel struct {
	Name          string `bson:"name"`
	LogoRef       string `bson:"logo_ref,omitempty"`
	BankName      string `bson:"bank_name,omitempty"`
	AccountNumber string `bson:"account_number,omitempty"`
	Administrator string `bson:"administrator,omitempty"`
	Phone         string `bson:"phone,omitempty"`
	Email         string `bson:"email,omitempty"`
	Address       string `bson:"address,omitempty"`
}

type counterModel struct {
	Name  string `bson:"_id"`
	Value int64  `bson:"value"`
}

func toInvoiceModel(rec *invoice.Record) *invoiceModel {
	items := make([]lineItemModel, len(rec.LineItems))
	for i, item := range rec.LineItems {
		items[i] = lineItemModel{
			ID:          item.ID.String(),
			Description: item.Description,
			UnitPrice:   item.UnitPrice.Amount.String(),
			Currency:    item.UnitPrice.Currency,
		}
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
		Company: companyModel{
			Name:          rec.Company.Name,
			LogoRef:       rec.Company.LogoRef,
			BankName:      rec.Company.BankName,
			AccountNumber: rec.Company.AccountNumber,
			Administrator: rec.Company.Administrator,
			Phone:         rec.Company.Phone,
			Email:         rec.Company.Email,
			Address:       rec.Company.Address,
		},
		TotalAmount: rec.Total.Amount.String(),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if !rec.IssueDate.IsZero() {
		issueDate := rec.IssueDate
		m.IssueDate = &issueDate
	}
	return m
}

func fromInvoiceModel(m *invoiceModel) (*invoice.Record, error) {
	recID, err := id.ParseWithPrefix(m.ID, id.PrefixInvoice)
	if err != nil {
		return nil, err
	}

	items := make([]invoice.LineItem, len(m.LineItems))
	for i, im := range m.LineItems {
		itemID, err := id.ParseWithPrefix(im.ID, id.PrefixLineItem)
		if err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(im.UnitPrice)
		if err != nil {
			amount = decimal.Zero
		}
		items[i] = invoice.LineItem{
			ID:          itemID,
			Description: im.Description,
			UnitPrice:   types.New(amount, im.Currency),
		}
	}

	total, err := decimal.NewFromString(m.TotalAmount)
	if err != nil {
		total = decimal.Zero
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
		Company: invoice.CompanyProfile{
			Name:          m.Company.Name,
			LogoRef:       m.Company.LogoRef,
			BankName:      m.Company.BankName,
			AccountNumber: m.Company.AccountNumber,
			Administrator: m.Company.Administrator,
			Phone:         m.Company.Phone,
			Email:         m.Company.Email,
			Address:       m.Company.Address,
		},
		Currency: m.Currency,
		Terms:    m.Terms,
		Total:    types.New(total, m.Currency),
		Status:   invoice.Status(m.Status),
	}
	if m.IssueDate != nil {
		rec.IssueDate = *m.IssueDate
	}
	return rec, nil
}
