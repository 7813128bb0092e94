package value

import (
	"errors"
	"fmt"
	"math/big"
)

// Bounds of the 128-bit signed integer range.
var (
	MaxInteger = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	MinInteger = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// ErrOverflow is returned when an integer result leaves the 128-bit range.
var ErrOverflow = errors.New("integer overflow")

func NewInt(i int64) Integer { return Integer{V: big.NewInt(i)} }

// IntegerFromBig checks that n fits in 128 bits. n is copied.
func IntegerFromBig(n *big.Int) (Integer, error) {
	if n.Cmp(MaxInteger) > 0 || n.Cmp(MinInteger) < 0 {
		return Integer{}, ErrOverflow
	}
	return Integer{V: new(big.Int).Set(n)}, nil
}

// Int64 returns the value if it fits in an int64.
func (i Integer) Int64() (int64, bool) {
	if !i.V.IsInt64() {
		return 0, false
	}
	return i.V.Int64(), true
}

func (i Integer) IsZero() bool { return i.V.Sign() == 0 }

func (i Integer) Cmp(other Integer) int { return i.V.Cmp(other.V) }

// Arith applies op to two integers. Division truncates toward zero; the
// caller rejects a zero divisor.
func (i Integer) Arith(op string, other Integer) (Integer, error) {
	r := new(big.Int)
	switch op {
	case "+":
		r.Add(i.V, other.V)
	case "-":
		r.Sub(i.V, other.V)
	case "*":
		r.Mul(i.V, other.V)
	case "/":
		r.Quo(i.V, other.V)
	case "%":
		r.Rem(i.V, other.V)
	default:
		return Integer{}, fmt.Errorf("unknown integer operator %s", op)
	}
	if r.Cmp(MaxInteger) > 0 || r.Cmp(MinInteger) < 0 {
		return Integer{}, ErrOverflow
	}
	return Integer{V: r}, nil
}
