// Package types provides common types used across Invoicer.
package types

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the display code used when a record carries none.
const DefaultCurrency = "KSH"

// Money is an exact decimal amount paired with a display currency code.
// Amounts keep the precision they were given: no rounding, no padding to
// two decimal places. A value that arrives malformed degrades to zero
// rather than erroring, so a partially bad invoice stays issuable.
type Money struct {
	Amount   decimal.Decimal `json:"amount" bson:"amount"`
	Currency string          `json:"currency" bson:"currency"`
}

// New creates a Money value from an exact decimal amount.
func New(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: normalizeCurrency(currency)}
}

// KSH creates a Money value in Kenyan Shillings from any loosely typed
// amount. Non-numeric input degrades to zero.
func KSH(v any) Money { return Money{Amount: AmountOf(v), Currency: DefaultCurrency} }

// Zero returns a zero Money value in the specified currency.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: normalizeCurrency(currency)}
}

// AmountOf converts a loosely typed price into an exact decimal.
// Missing (nil) or non-numeric input yields zero; this mirrors how the
// issuance pipeline treats malformed line items: never fatal.
func AmountOf(v any) decimal.Decimal {
	switch a := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return a
	case *decimal.Decimal:
		if a == nil {
			return decimal.Zero
		}
		return *a
	case int:
		return decimal.NewFromInt(int64(a))
	case int32:
		return decimal.NewFromInt(int64(a))
	case int64:
		return decimal.NewFromInt(a)
	case float32:
		return decimal.NewFromFloat32(a)
	case float64:
		return decimal.NewFromFloat(a)
	case json.Number:
		d, err := decimal.NewFromString(a.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(a))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// Add adds two Money values. The currency of the receiver wins when the
// other side carries none; mismatched non-empty currencies panic, since
// silently mixing currencies corrupts totals.
func (m Money) Add(other Money) Money {
	cur := m.assertCompatible(other)
	return Money{Amount: m.Amount.Add(other.Amount), Currency: cur}
}

// Sub subtracts another Money value under the same currency rules as Add.
func (m Money) Sub(other Money) Money {
	cur := m.assertCompatible(other)
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: cur}
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// Equal returns true if both Money values have equal amounts and the same
// currency. Amounts compare numerically: 1250 equals 1250.0.
func (m Money) Equal(other Money) bool {
	return m.Amount.Equal(other.Amount) && normalizeCurrency(m.Currency) == normalizeCurrency(other.Currency)
}

// Format returns the display string: currency code, a space, and the
// thousands-grouped amount. Examples: "KSH 1,250", "KSH 1,250.5", "KSH 0".
func (m Money) Format() string {
	return FormatCurrency(m.Amount, m.Currency)
}

// String implements fmt.Stringer.
func (m Money) String() string { return m.Format() }

// MarshalJSON implements json.Marshaler, adding a display field.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
		Display  string          `json:"display"`
	}{
		Amount:   m.Amount,
		Currency: normalizeCurrency(m.Currency),
		Display:  m.Format(),
	})
}

// Sum calculates the sum of multiple Money values. All must be currency
// compatible. An empty sum is zero in the default currency.
func Sum(values ...Money) Money {
	if len(values) == 0 {
		return Zero(DefaultCurrency)
	}

	result := values[0]
	for i := 1; i < len(values); i++ {
		result = result.Add(values[i])
	}
	return result
}

// FormatCurrency renders an amount with a thousands-separated integer part
// and the fractional digits exactly as given. The currency code prefixes
// the number; an empty code falls back to the default.
func FormatCurrency(amount decimal.Decimal, currency string) string {
	return normalizeCurrency(currency) + " " + groupThousands(amount.String())
}

// assertCompatible returns the effective currency for a binary operation.
func (m Money) assertCompatible(other Money) string {
	a := normalizeCurrency(m.Currency)
	b := normalizeCurrency(other.Currency)
	if other.Currency == "" || a == b {
		return a
	}
	if m.Currency == "" {
		return b
	}
	panic("money: currency mismatch: " + a + " != " + b)
}

func normalizeCurrency(currency string) string {
	c := strings.ToUpper(strings.TrimSpace(currency))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

// groupThousands inserts comma separators into the integer part of a plain
// decimal string, leaving sign and fraction untouched.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}

	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
