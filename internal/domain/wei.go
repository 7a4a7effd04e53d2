package domain

import (
	"fmt"
	"math/big"
)

// maxWeiBits is the width of an on-ledger amount. Values are unsigned
// and must fit 256 bits.
const maxWeiBits = 256

// Wei is an unsigned 256-bit amount in the smallest payment unit.
// The zero value is zero wei. Wei is immutable; arithmetic returns
// new values.
type Wei struct {
	i big.Int
}

// ParseWei parses a canonical decimal string: digits only, no sign,
// no leading zeros (except "0" itself), at most 256 bits.
func ParseWei(s string) (Wei, error) {
	if s == "" {
		return Wei{}, fmt.Errorf("%w: empty amount", ErrInvalidWeiAmount)
	}
	if len(s) > 1 && s[0] == '0' {
		return Wei{}, fmt.Errorf("%w: leading zeros in %q", ErrInvalidWeiAmount, s)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return Wei{}, fmt.Errorf("%w: non-digit in %q", ErrInvalidWeiAmount, s)
		}
	}

	var w Wei
	if _, ok := w.i.SetString(s, 10); !ok {
		return Wei{}, fmt.Errorf("%w: %q", ErrInvalidWeiAmount, s)
	}
	if w.i.BitLen() > maxWeiBits {
		return Wei{}, fmt.Errorf("%w: %q exceeds 256 bits", ErrInvalidWeiAmount, s)
	}
	return w, nil
}

// MustParseWei panics on invalid input. For tests and literals.
func MustParseWei(s string) Wei {
	w, err := ParseWei(s)
	if err != nil {
		panic(err)
	}
	return w
}

// WeiFromUint64 builds an amount from a uint64
func WeiFromUint64(v uint64) Wei {
	var w Wei
	w.i.SetUint64(v)
	return w
}

// String returns the canonical decimal representation
func (w Wei) String() string {
	return w.i.String()
}

// Cmp compares two amounts: -1 if w < o, 0 if equal, 1 if w > o
func (w Wei) Cmp(o Wei) int {
	return w.i.Cmp(&o.i)
}

// Equal reports whether two amounts are the same
func (w Wei) Equal(o Wei) bool {
	return w.i.Cmp(&o.i) == 0
}

// IsZero reports whether the amount is zero
func (w Wei) IsZero() bool {
	return w.i.Sign() == 0
}

// Add returns w + o. The result may exceed 256 bits only through
// repeated addition of maximal values, which no ledger path produces.
func (w Wei) Add(o Wei) Wei {
	var out Wei
	out.i.Add(&w.i, &o.i)
	return out
}

// MarshalJSON encodes the amount as a decimal string
func (w Wei) MarshalJSON() ([]byte, error) {
	return []byte(`"` + w.String() + `"`), nil
}

// UnmarshalJSON decodes a canonical decimal string
func (w *Wei) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%w: amount must be a decimal string", ErrInvalidWeiAmount)
	}
	parsed, err := ParseWei(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
