package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/elevatehq/invoicer/emitter/pdf"
	"github.com/elevatehq/invoicer/id"
	"github.com/elevatehq/invoicer/invoice"
	"github.com/elevatehq/invoicer/layout"
)

func TestEmitProducesPDF(t *testing.T) {
	rec := &invoice.Record{
		ID:         id.NewInvoiceID(),
		Number:     "INV-00001",
		IssueDate:  time.Date(2025, time.September, 2, 0, 0, 0, 0, time.UTC),
		ClientName: "Acme Events",
		Currency:   "KSH",
		LineItems: []invoice.LineItem{
			invoice.NewLineItem("Cleaning", 1000, "KSH"),
			invoice.NewLineItem("Supplies", 250, "KSH"),
		},
		Status: invoice.StatusIssued,
	}
	rec.Total = rec.ComputeTotal()

	ins, err := layout.New().Render(rec)
	if err != nil {
		t.Fatal(err)
	}

	out, err := pdf.New().Emit(layout.A4, ins)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", out[:min(len(out), 8)])
	}
}

func TestEmitSkipsMissingLogo(t *testing.T) {
	ins := []layout.Instruction{
		layout.Image{Ref: "/nonexistent/logo.png", X: 40, Y: 40, W: 65, H: 50},
		layout.Text{Content: "after image", X: 40, Y: 120, Font: layout.Helvetica, Size: 10},
	}

	out, err := pdf.New().Emit(layout.A4, ins)
	if err != nil {
		t.Fatalf("missing logo must not break the document: %v", err)
	}
	if len(out) == 0 {
		t.Error("empty document")
	}
}

func TestEmitPageBreak(t *testing.T) {
	ins := []layout.Instruction{
		layout.Text{Content: "page one", X: 40, Y: 40, Font: layout.Helvetica, Size: 10},
		layout.PageBreak{},
		layout.Text{Content: "page two", X: 40, Y: 40, Font: layout.Helvetica, Size: 10},
	}

	out, err := pdf.New().Emit(layout.A4, ins)
	if err != nil {
		t.Fatal(err)
	}
	// Two page objects in the document catalog.
	if got := bytes.Count(out, []byte("/Type /Page")); got < 2 {
		t.Errorf("expected at least 2 page objects, found %d", got)
	}
}
