package calc

import (
	"fmt"
	"math"
)

// Node is a parsed expression. Eval substitutes x and y and returns the
// value, failing on division by zero and non-finite results.
type Node interface {
	Eval(x, y float64) (float64, error)
}

type num float64

func (n num) Eval(_, _ float64) (float64, error) { return float64(n), nil }

type varX struct{}

func (varX) Eval(x, _ float64) (float64, error) { return x, nil }

type varY struct{}

func (varY) Eval(_, y float64) (float64, error) { return y, nil }

type neg struct {
	arg Node
}

func (n neg) Eval(x, y float64) (float64, error) {
	v, err := n.arg.Eval(x, y)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

type binary struct {
	op          byte
	left, right Node
}

func (b binary) Eval(x, y float64) (float64, error) {
	l, err := b.left.Eval(x, y)
	if err != nil {
		return 0, err
	}
	r, err := b.right.Eval(x, y)
	if err != nil {
		return 0, err
	}

	var v float64
	switch b.op {
	case '+':
		v = l + r
	case '-':
		v = l - r
	case '*':
		v = l * r
	case '/':
		if r == 0 {
			return 0, ErrDivisionZero
		}
		v = l / r
	case '^':
		v = math.Pow(l, r)
	default:
		return 0, fmt.Errorf("%w: operator %q", ErrSyntax, b.op)
	}
	return finite(v)
}

type call struct {
	name string
	fn   func(float64) float64
	arg  Node
}

func (c call) Eval(x, y float64) (float64, error) {
	v, err := c.arg.Eval(x, y)
	if err != nil {
		return 0, err
	}
	out, err := finite(c.fn(v))
	if err != nil {
		return 0, fmt.Errorf("%s(%g): %w", c.name, v, err)
	}
	return out, nil
}

func finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNonFinite
	}
	return v, nil
}
