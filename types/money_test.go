package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmountOf(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"int", 1000, "1000"},
		{"int64", int64(250), "250"},
		{"float", 10.5, "10.5"},
		{"numeric string", "1250", "1250"},
		{"decimal string", "99.99", "99.99"},
		{"padded string", "  42 ", "42"},
		{"json number", json.Number("750.25"), "750.25"},
		{"decimal value", decimal.NewFromInt(7), "7"},
		{"nil", nil, "0"},
		{"garbage string", "bad", "0"},
		{"empty string", "", "0"},
		{"unsupported type", struct{}{}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AmountOf(tt.input)
			if got.String() != tt.want {
				t.Errorf("AmountOf(%v) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestSumDegradesBadLines(t *testing.T) {
	// One malformed price zeroes that line only, never the whole invoice.
	total := Sum(KSH(10), KSH("bad"), KSH(5))
	if !total.Equal(KSH(15)) {
		t.Errorf("total = %s, want KSH 15", total)
	}
}

func TestSumEmpty(t *testing.T) {
	total := Sum()
	if !total.IsZero() {
		t.Errorf("empty sum = %s, want zero", total)
	}
	if total.Currency != DefaultCurrency {
		t.Errorf("empty sum currency = %q, want %q", total.Currency, DefaultCurrency)
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{"grouped", "1250", "KSH", "KSH 1,250"},
		{"small", "250", "KSH", "KSH 250"},
		{"zero", "0", "KSH", "KSH 0"},
		{"millions", "1234567", "KSH", "KSH 1,234,567"},
		{"exact boundary", "1000", "KSH", "KSH 1,000"},
		{"fraction preserved", "1250.5", "KSH", "KSH 1,250.5"},
		{"two decimals", "99999.99", "KSH", "KSH 99,999.99"},
		{"negative", "-4500", "KSH", "KSH -4,500"},
		{"lowercase code", "1250", "ksh", "KSH 1,250"},
		{"empty code defaults", "1250", "", "KSH 1,250"},
		{"other code", "500", "USD", "USD 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			if err != nil {
				t.Fatalf("bad test amount %q: %v", tt.amount, err)
			}
			got := FormatCurrency(amount, tt.currency)
			if got != tt.want {
				t.Errorf("FormatCurrency(%s, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}

func TestFormatDeterministic(t *testing.T) {
	m := KSH("1250.50")
	first := m.Format()
	for range 10 {
		if got := m.Format(); got != first {
			t.Fatalf("Format not deterministic: %q then %q", first, got)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   func() Money
		want Money
	}{
		{"Add", func() Money { return KSH(1000).Add(KSH(250)) }, KSH(1250)},
		{"Sub", func() Money { return KSH(1000).Sub(KSH(250)) }, KSH(750)},
		{"Add fraction", func() Money { return KSH("0.1").Add(KSH("0.2")) }, KSH("0.3")},
		{"Add empty currency", func() Money { return KSH(100).Add(Money{Amount: AmountOf(50)}) }, KSH(150)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.op()
			if !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for currency mismatch")
		}
	}()

	_ = KSH(100).Add(New(decimal.NewFromInt(100), "USD"))
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(KSH(1250))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"display":"KSH 1,250"`) {
		t.Errorf("marshaled JSON missing display field: %s", data)
	}
}
