package order

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Money is a CLP amount. CLP has no minor unit in practice, so amounts are
// whole pesos; the decimal backing absorbs upstream payloads that ship
// amounts as floats or quoted strings.
type Money struct {
	d decimal.Decimal
}

// NewMoney returns a Money of n whole pesos.
func NewMoney(n int64) Money {
	return Money{d: decimal.NewFromInt(n)}
}

// MoneyFromDecimal wraps an existing decimal amount.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Int returns the amount truncated to whole pesos.
func (m Money) Int() int64 { return m.d.IntPart() }

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.d.IsPositive() }

// Format renders the amount the way every price in the panel is shown:
// "$" followed by the whole-peso digits grouped by dots. 19600 -> "$19.600",
// 0 -> "$0". Decimals are truncated, never rounded up.
func (m Money) Format() string {
	digits := m.d.IntPart()

	neg := digits < 0
	if neg {
		digits = -digits
	}

	s := decimal.NewFromInt(digits).String()

	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + 2)
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte('.')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func (m Money) String() string { return m.Format() }

// decodeMoney reads a money scalar that may arrive as a JSON number or as a
// quoted numeric string. Null decodes as zero.
func decodeMoney(d *jx.Decoder) (Money, error) {
	switch d.Next() {
	case jx.Null:
		if err := d.Null(); err != nil {
			return Money{}, err
		}
		return Money{}, nil
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return Money{}, err
		}
		if s == "" {
			return Money{}, nil
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return Money{}, errors.Wrapf(err, "money string %q", s)
		}
		return Money{d: v}, nil
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return Money{}, err
		}
		v, err := decimal.NewFromString(string(n))
		if err != nil {
			return Money{}, errors.Wrap(err, "money number")
		}
		return Money{d: v}, nil
	default:
		return Money{}, errors.Errorf("unexpected money token %v", d.Next())
	}
}

// encodeMoney writes the amount as a plain JSON number of whole pesos.
func encodeMoney(e *jx.Encoder, m Money) {
	e.Int64(m.d.IntPart())
}
