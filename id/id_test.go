package id_test

import (
	"strings"
	"testing"

	"github.com/elevatehq/invoicer/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"InvoiceID", id.NewInvoiceID, "inv_"},
		{"LineItemID", id.NewLineItemID, "li_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixInvoice)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixInvoice {
		t.Errorf("expected prefix %q, got %q", id.PrefixInvoice, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"InvoiceID", id.NewInvoiceID, id.ParseInvoiceID},
		{"LineItemID", id.NewLineItemID, id.ParseLineItemID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round trip mismatch: %q != %q", parsed, original)
			}
		})
	}
}

func TestParseWithPrefixMismatch(t *testing.T) {
	invID := id.NewInvoiceID()

	if _, err := id.ParseLineItemID(invID.String()); err == nil {
		t.Error("expected prefix mismatch error, got nil")
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"garbage", "not-a-typeid"},
		{"bad suffix", "inv_!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := id.Parse(tt.input); err == nil {
				t.Errorf("expected error for %q, got nil", tt.input)
			}
		})
	}
}

func TestNilID(t *testing.T) {
	var nilID id.ID

	if !nilID.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if nilID.String() != "" {
		t.Errorf("nil ID String() should be empty, got %q", nilID.String())
	}
	if nilID.Prefix() != "" {
		t.Errorf("nil ID Prefix() should be empty, got %q", nilID.Prefix())
	}
}

func TestUniqueness(t *testing.T) {
	const n = 1000

	seen := make(map[string]bool, n)
	for range n {
		s := id.NewInvoiceID().String()
		if seen[s] {
			t.Fatalf("duplicate ID generated: %s", s)
		}
		seen[s] = true
	}
}

func TestTextMarshaling(t *testing.T) {
	original := id.NewInvoiceID()

	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var restored id.ID
	if err := restored.UnmarshalText(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if restored.String() != original.String() {
		t.Errorf("text round trip mismatch: %q != %q", restored, original)
	}
}

func TestSQLValueScan(t *testing.T) {
	original := id.NewInvoiceID()

	v, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var restored id.ID
	if err := restored.Scan(v); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if restored.String() != original.String() {
		t.Errorf("sql round trip mismatch: %q != %q", restored, original)
	}

	var fromNil id.ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if !fromNil.IsNil() {
		t.Error("Scan(nil) should yield the nil ID")
	}
}
