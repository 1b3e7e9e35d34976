package calc

import (
	"fmt"
	"strconv"
	"strings"

	"ovlmap/internal/model"
)

type term struct {
	power uint32
	coeff float64
}

// equation is one compiled equation: polynomial in the family's own
// variable times an optional companion function. err is set when the
// equation could not be built; it then contributes nothing.
type equation struct {
	label     model.Label
	terms     []term
	companion Node
	err       error
}

// Program is a compiled equation model. It is read-only after Compile and
// safe for concurrent Evaluate calls.
type Program struct {
	equations []equation
}

// Compile builds every equation of m. Failures are kept per equation and
// reported by Evaluate; they never fail the whole program.
func Compile(m *model.Model) *Program {
	p := &Program{}
	for _, l := range m.Labels() {
		e, _ := m.Equation(l)
		p.equations = append(p.equations, compileEquation(e))
	}
	return p
}

func compileEquation(e model.Equation) equation {
	out := equation{label: e.Label}
	for _, t := range e.Terms {
		c, err := strconv.ParseFloat(strings.TrimSpace(t.Coeff), 64)
		if err != nil {
			out.err = fmt.Errorf("%s: term %s: %w: %q", e.Label, t.Key, ErrBadCoefficient, t.Coeff)
			return out
		}
		out.terms = append(out.terms, term{power: t.Power, coeff: c})
	}

	if s, ok := e.Companion(e.Label.Family.Companion()); ok {
		n, err := companion(s)
		if err != nil {
			out.err = fmt.Errorf("%s: companion %q: %w", e.Label, s, err)
			return out
		}
		out.companion = n
	}
	return out
}

// companion parses s as an expression, falling back to a plain number.
func companion(s string) (Node, error) {
	n, err := ParseExpr(s)
	if err == nil {
		return n, nil
	}
	if v, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64); ferr == nil {
		return num(v), nil
	}
	return nil, err
}

// Len returns the number of compiled equations.
func (p *Program) Len() int { return len(p.equations) }

// Err returns the compile error of equation l, if any.
func (p *Program) Err(l model.Label) error {
	for _, e := range p.equations {
		if e.label == l {
			return e.err
		}
	}
	return nil
}

func (e equation) eval(x, y float64) (float64, error) {
	if e.err != nil {
		return 0, e.err
	}
	own := x
	if e.label.Family == model.FamilyY {
		own = y
	}

	poly := 0.0
	for _, t := range e.terms {
		v, err := finite(pow(own, t.power))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", e.label, err)
		}
		poly += t.coeff * v
	}

	factor := 1.0
	if e.companion != nil {
		v, err := e.companion.Eval(x, y)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", e.label, err)
		}
		factor = v
	}

	v, err := finite(poly * factor)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", e.label, err)
	}
	return v, nil
}

// pow computes v**n by squaring; 0**0 is 1.
func pow(v float64, n uint32) float64 {
	out := 1.0
	for n > 0 {
		if n&1 == 1 {
			out *= v
		}
		v *= v
		n >>= 1
	}
	return out
}

// Contribution is one equation's share of OVLX or OVLY at a point.
// Err is set when the equation failed; Value is then 0.
type Contribution struct {
	Label model.Label
	Value float64
	Err   error
}

// Contributions evaluates every equation at (x, y).
func (p *Program) Contributions(x, y float64) []Contribution {
	out := make([]Contribution, len(p.equations))
	for i, e := range p.equations {
		v, err := e.eval(x, y)
		out[i] = Contribution{Label: e.label, Value: v, Err: err}
	}
	return out
}

// Values holds OVLX and OVLY at one point plus the equations skipped there.
type Values struct {
	OVLX   float64
	OVLY   float64
	Failed []model.Label
}

// Evaluate sums X-family contributions into OVLX and Y-family ones into
// OVLY. A failing equation contributes 0 and is listed in Failed. It
// returns ErrNonFinite when x or y is NaN or infinite.
func (p *Program) Evaluate(x, y float64) (Values, error) {
	if _, err := finite(x); err != nil {
		return Values{}, fmt.Errorf("x: %w", err)
	}
	if _, err := finite(y); err != nil {
		return Values{}, fmt.Errorf("y: %w", err)
	}

	var out Values
	for _, c := range p.Contributions(x, y) {
		if c.Err != nil {
			out.Failed = append(out.Failed, c.Label)
			continue
		}
		switch c.Label.Family {
		case model.FamilyX:
			out.OVLX += c.Value
		case model.FamilyY:
			out.OVLY += c.Value
		}
	}
	return out, nil
}

// Evaluate compiles m and evaluates it once at (x, y).
func Evaluate(m *model.Model, x, y float64) (Values, error) {
	return Compile(m).Evaluate(x, y)
}
