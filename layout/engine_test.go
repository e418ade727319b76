package layout_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/elevatehq/invoicer/id"
	"github.com/elevatehq/invoicer/invoice"
	"github.com/elevatehq/invoicer/layout"
	"github.com/elevatehq/invoicer/types"
)

func sampleRecord(items ...invoice.LineItem) *invoice.Record {
	rec := &invoice.Record{
		ID:         id.NewInvoiceID(),
		Number:     "INV-00042",
		IssueDate:  time.Date(2025, time.September, 2, 0, 0, 0, 0, time.UTC),
		ClientName: "Acme Events",
		Currency:   "KSH",
		LineItems:  items,
		Company: invoice.CompanyProfile{
			Name:  "Elevate\nCleaning Co.",
			Phone: "+254 700 000000",
		},
		Status: invoice.StatusIssued,
	}
	rec.Total = rec.ComputeTotal()
	return rec
}

func textInstructions(ins []layout.Instruction) []layout.Text {
	var texts []layout.Text
	for _, in := range ins {
		if t, ok := in.(layout.Text); ok {
			texts = append(texts, t)
		}
	}
	return texts
}

func findText(ins []layout.Instruction, content string) (layout.Text, bool) {
	for _, t := range textInstructions(ins) {
		if t.Content == content {
			return t, true
		}
	}
	return layout.Text{}, false
}

func TestRenderDeterministic(t *testing.T) {
	rec := sampleRecord(
		invoice.NewLineItem("Cleaning", 1000, "KSH"),
		invoice.NewLineItem("Supplies", 250, "KSH"),
	)
	engine := layout.New()

	first, err := engine.Render(rec)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := engine.Render(rec)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("rendering the same record twice produced different instructions")
	}
}

func TestRenderGrandTotal(t *testing.T) {
	rec := sampleRecord(
		invoice.NewLineItem("Cleaning", 1000, "KSH"),
		invoice.NewLineItem("Supplies", 250, "KSH"),
	)
	if !rec.Total.Equal(types.KSH(1250)) {
		t.Fatalf("computed total = %s, want KSH 1,250", rec.Total)
	}

	ins, err := layout.New().Render(rec)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := findText(ins, "KSH 1,250"); !ok {
		t.Error("grand total box text KSH 1,250 not found")
	}
}

func TestRenderZeroItems(t *testing.T) {
	rec := sampleRecord()

	ins, err := layout.New().Render(rec)
	if err != nil {
		t.Fatal(err)
	}

	// Table header still renders with an empty body.
	for _, label := range []string{"NO", "DESCRIPTION", "PRICE", "TOTAL"} {
		if _, ok := findText(ins, label); !ok {
			t.Errorf("table header label %q missing", label)
		}
	}
	if _, ok := findText(ins, "KSH 0"); !ok {
		t.Error("grand total should read KSH 0 for an empty invoice")
	}
}

func TestBadgeLabelCenteredInBadgeBounds(t *testing.T) {
	ins, err := layout.New().Render(sampleRecord())
	if err != nil {
		t.Fatal(err)
	}

	var badge layout.RoundedRect
	foundBadge := false
	for _, in := range ins {
		if r, ok := in.(layout.RoundedRect); ok && r.W == 120 && r.H == 34 {
			badge, foundBadge = r, true
			break
		}
	}
	if !foundBadge {
		t.Fatal("badge rectangle not found")
	}

	label, ok := findText(ins, "INVOICE")
	if !ok {
		t.Fatal("badge label not found")
	}
	if label.X != badge.X || label.Width != badge.W {
		t.Errorf("label bounds (x=%v w=%v) not derived from badge bounds (x=%v w=%v)",
			label.X, label.Width, badge.X, badge.W)
	}
	if label.Align != layout.AlignCenter {
		t.Error("badge label must be centered within the badge bounds")
	}

	// The badge paints before its label so the label stays visible.
	badgeIdx, labelIdx := -1, -1
	for i, in := range ins {
		switch v := in.(type) {
		case layout.RoundedRect:
			if v.W == 120 && v.H == 34 && badgeIdx < 0 {
				badgeIdx = i
			}
		case layout.Text:
			if v.Content == "INVOICE" && labelIdx < 0 {
				labelIdx = i
			}
		}
	}
	if badgeIdx >= labelIdx {
		t.Error("badge must be drawn before its label")
	}
}

func TestLongDescriptionStaysClearOfPriceColumn(t *testing.T) {
	long := strings.Repeat("deep clean of all carpeted areas including stairwells ", 6)
	rec := sampleRecord(invoice.NewLineItem(long, 5000, "KSH"))

	ins, err := layout.New().Render(rec)
	if err != nil {
		t.Fatal(err)
	}

	page := layout.New().Page()
	priceColX := page.Margin + 330

	found := false
	for _, text := range textInstructions(ins) {
		// The table header label shares the description X; rows use the
		// regular face.
		if text.X != page.Margin+50 || text.Font != layout.Helvetica {
			continue
		}
		found = true
		if text.Width == 0 || text.X+text.Width > priceColX {
			t.Errorf("description line %q extends to %v, past price column at %v",
				text.Content, text.X+text.Width, priceColX)
		}
		estimated := float64(len(text.Content)) * text.Size * 0.55
		if text.X+estimated > priceColX {
			t.Errorf("description line %q estimated to reach %v, past price column at %v",
				text.Content, text.X+estimated, priceColX)
		}
	}
	if !found {
		t.Fatal("no description lines found")
	}
}

func TestWrappedMultibyteTextStaysValidUTF8(t *testing.T) {
	long := strings.Repeat("é", 200)
	rec := sampleRecord(invoice.NewLineItem(long, 5000, "KSH"))

	ins, err := layout.New().Render(rec)
	if err != nil {
		t.Fatal(err)
	}

	page := layout.New().Page()
	priceColX := page.Margin + 330

	found := false
	for _, text := range textInstructions(ins) {
		if !utf8.ValidString(text.Content) {
			t.Fatalf("instruction carries invalid UTF-8: %q", text.Content)
		}
		if text.X != page.Margin+50 || text.Font != layout.Helvetica {
			continue
		}
		found = true
		estimated := float64(utf8.RuneCountInString(text.Content)) * text.Size * 0.55
		if text.X+estimated > priceColX {
			t.Errorf("description line of %d runes estimated to reach %v, past price column at %v",
				utf8.RuneCountInString(text.Content), text.X+estimated, priceColX)
		}
	}
	if !found {
		t.Fatal("no wrapped description lines found")
	}
}

func TestRowCursorAdvancesFixedHeight(t *testing.T) {
	rec := sampleRecord(
		invoice.NewLineItem("First", 100, "KSH"),
		invoice.NewLineItem("Second", 200, "KSH"),
		invoice.NewLineItem("Third", 300, "KSH"),
	)

	ins, err := layout.New().Render(rec)
	if err != nil {
		t.Fatal(err)
	}

	first, ok := findText(ins, "First")
	if !ok {
		t.Fatal("first row missing")
	}
	third, ok := findText(ins, "Third")
	if !ok {
		t.Fatal("third row missing")
	}
	if got := third.Y - first.Y; got != 48 {
		t.Errorf("two row advances moved cursor by %v, want 48", got)
	}
}

func TestOverflowFailPolicy(t *testing.T) {
	items := make([]invoice.LineItem, 40)
	for i := range items {
		items[i] = invoice.NewLineItem("Recurring service visit", 500, "KSH")
	}
	rec := sampleRecord(items...)

	_, err := layout.New(layout.WithOverflowPolicy(layout.OverflowFail)).Render(rec)
	if err == nil {
		t.Fatal("expected overflow error for 40 rows under OverflowFail")
	}

	var overflow *layout.OverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("expected *OverflowError, got %T", err)
	}
	if !errors.Is(err, layout.ErrOverflow) {
		t.Error("expected errors.Is(err, ErrOverflow)")
	}
}

func TestOverflowPaginatePolicy(t *testing.T) {
	items := make([]invoice.LineItem, 40)
	for i := range items {
		items[i] = invoice.NewLineItem("Recurring service visit", 500, "KSH")
	}
	rec := sampleRecord(items...)

	ins, err := layout.New().Render(rec)
	if err != nil {
		t.Fatalf("paginate policy must not fail on overflow: %v", err)
	}

	breaks := 0
	headers := 0
	for _, in := range ins {
		switch v := in.(type) {
		case layout.PageBreak:
			breaks++
		case layout.Text:
			if v.Content == "DESCRIPTION" {
				headers++
			}
		}
	}
	if breaks == 0 {
		t.Fatal("expected at least one page break for 40 rows")
	}
	// Every continuation page repeats the table header.
	if headers != breaks+1 {
		t.Errorf("got %d table headers for %d page breaks, want %d", headers, breaks, breaks+1)
	}

	// All 40 row indexes are present: nothing was dropped.
	if _, ok := findText(ins, "40"); !ok {
		t.Error("row 40 missing after pagination")
	}
}

func TestContactLinePinnedToBottom(t *testing.T) {
	engine := layout.New()
	ins, err := engine.Render(sampleRecord(invoice.NewLineItem("One", 10, "KSH")))
	if err != nil {
		t.Fatal(err)
	}

	phone, ok := findText(ins, "Phone: +254 700 000000")
	if !ok {
		t.Fatal("contact line missing")
	}
	want := engine.Page().Height - 70
	if phone.Y != want {
		t.Errorf("contact line at y=%v, want %v", phone.Y, want)
	}
}

func TestDefaultsForMissingFields(t *testing.T) {
	rec := &invoice.Record{
		ID:       id.NewInvoiceID(),
		Currency: "KSH",
	}
	rec.Total = rec.ComputeTotal()

	ins, err := layout.New().Render(rec)
	if err != nil {
		t.Fatalf("missing optional fields must not fail layout: %v", err)
	}

	for _, want := range []string{
		layout.DefaultClientName,
		layout.DefaultBankName,
		layout.DefaultAccountNumber,
		layout.DefaultAdministrator,
		"Invoice No: " + layout.NumberPlaceholder,
	} {
		if _, ok := findText(ins, want); !ok {
			t.Errorf("default %q not rendered", want)
		}
	}
}
