// Package model holds the typed equation model reconstructed from a
// coefficient table: equation labels, power terms and companion functions.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrBadPower is returned when a power key is not a non-negative decimal
	// integer that fits in 32 bits.
	ErrBadPower = errors.New("model: invalid power key")
)

// Family is the equation family, X or Y.
type Family byte

const (
	FamilyX Family = 'X'
	FamilyY Family = 'Y'
)

// ParseFamily maps 'X' or 'Y' to a Family.
func ParseFamily(b byte) (Family, bool) {
	switch Family(b) {
	case FamilyX, FamilyY:
		return Family(b), true
	}
	return 0, false
}

func (f Family) String() string { return string(rune(f)) }

// Own returns the variable the family's polynomials are written in.
func (f Family) Own() Var {
	if f == FamilyY {
		return VarY
	}
	return VarX
}

// Companion returns the other variable.
func (f Family) Companion() Var {
	if f == FamilyY {
		return VarX
	}
	return VarY
}

// Var is one of the two independent variables.
type Var byte

const (
	VarX Var = 'x'
	VarY Var = 'y'
)

// ParseVar maps "x" or "y" to a Var.
func ParseVar(s string) (Var, bool) {
	switch s {
	case "x":
		return VarX, true
	case "y":
		return VarY, true
	}
	return 0, false
}

func (v Var) String() string { return string(rune(v)) }

// Label identifies one equation: family plus index (X1, X2, Y1, ...).
//
// Digits holds the index as written when that differs from its decimal
// form, so X01 and X00 are labels of their own, distinct from X1 and X0.
// Use NewLabel to fill it in.
type Label struct {
	Family Family
	Index  int
	Digits string
}

// NewLabel returns the label written as family f followed by digits.
// digits must be a non-empty run of ASCII digits. A run too long for an
// int keeps its text and sorts after every other index of the family.
func NewLabel(f Family, digits string) Label {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return Label{Family: f, Index: math.MaxInt, Digits: digits}
	}
	l := Label{Family: f, Index: n}
	if strconv.Itoa(n) != digits {
		l.Digits = digits
	}
	return l
}

func (l Label) String() string {
	if l.Digits != "" {
		return l.Family.String() + l.Digits
	}
	return l.Family.String() + strconv.Itoa(l.Index)
}

// Less orders labels by family, then by index, then by written digits.
func (l Label) Less(o Label) bool {
	if l.Family != o.Family {
		return l.Family < o.Family
	}
	if l.Index != o.Index {
		return l.Index < o.Index
	}
	return l.Digits < o.Digits
}

// Term is one polynomial term. Key is the decimal key as written in the
// column label, so "05" and "5" are distinct terms of power 5.
type Term struct {
	Key   string
	Power uint32
	Coeff string
}

// Equation is a polynomial in the family's own variable, optionally
// multiplied by companion functions keyed by variable.
type Equation struct {
	Label      Label
	Terms      []Term
	Companions map[Var]string
}

// Companion returns the raw companion expression for v.
func (e Equation) Companion(v Var) (string, bool) {
	s, ok := e.Companions[v]
	return s, ok
}

func (e *Equation) setTerm(key string, power uint32, coeff string) {
	for i := range e.Terms {
		if e.Terms[i].Key == key {
			e.Terms[i].Coeff = coeff
			return
		}
	}
	e.Terms = append(e.Terms, Term{Key: key, Power: power, Coeff: coeff})
}

// Model is the nested equation model. It is read-only once built.
type Model struct {
	equations map[Label]*Equation
	labels    []Label

	// Skipped lists the columns that contributed nothing to the model.
	Skipped []string
}

// Len returns the number of equations.
func (m *Model) Len() int {
	if m == nil {
		return 0
	}
	return len(m.labels)
}

// Labels returns equation labels in family/index order.
func (m *Model) Labels() []Label {
	if m == nil {
		return nil
	}
	out := make([]Label, len(m.labels))
	copy(out, m.labels)
	return out
}

// Equation returns a copy of the equation stored under l.
func (m *Model) Equation(l Label) (Equation, bool) {
	if m == nil {
		return Equation{}, false
	}
	e, ok := m.equations[l]
	if !ok {
		return Equation{}, false
	}
	return e.clone(), true
}

func (e *Equation) clone() Equation {
	c := Equation{Label: e.Label, Terms: append([]Term(nil), e.Terms...)}
	if len(e.Companions) > 0 {
		c.Companions = make(map[Var]string, len(e.Companions))
		for k, v := range e.Companions {
			c.Companions[k] = v
		}
	}
	return c
}

// Fingerprint hashes a canonical rendering of the model with xxHash64.
// Two models built from the same table have the same fingerprint.
func (m *Model) Fingerprint() uint64 {
	var sb strings.Builder
	for _, l := range m.Labels() {
		e := m.equations[l]
		sb.WriteString(l.String())
		sb.WriteByte('{')
		terms := append([]Term(nil), e.Terms...)
		sort.Slice(terms, func(i, j int) bool { return terms[i].Key < terms[j].Key })
		for _, t := range terms {
			fmt.Fprintf(&sb, "%s=%s;", t.Key, t.Coeff)
		}
		for _, v := range []Var{VarX, VarY} {
			if s, ok := e.Companions[v]; ok {
				fmt.Fprintf(&sb, "%s()=%s;", v, s)
			}
		}
		sb.WriteByte('}')
	}
	return xxhash.Sum64String(sb.String())
}

// MarshalJSON renders the model as label -> term key -> raw value, the
// layout users see when inspecting a parsed table.
func (m *Model) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]string, m.Len())
	for _, l := range m.Labels() {
		e := m.equations[l]
		terms := make(map[string]string, len(e.Terms)+len(e.Companions))
		for _, t := range e.Terms {
			terms[t.Key] = t.Coeff
		}
		for v, s := range e.Companions {
			terms[v.String()] = s
		}
		out[l.String()] = terms
	}
	return json.Marshal(out)
}

// Builder accumulates equations. The last write for a term key wins.
type Builder struct {
	m *Model
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{m: &Model{equations: map[Label]*Equation{}}}
}

func (b *Builder) equation(l Label) *Equation {
	e, ok := b.m.equations[l]
	if !ok {
		e = &Equation{Label: l}
		b.m.equations[l] = e
		b.m.labels = append(b.m.labels, l)
	}
	return e
}

// Term stores coeff under the power key of equation l. A key that is not
// a decimal uint32 is rejected with ErrBadPower and l is left untouched.
func (b *Builder) Term(l Label, key, coeff string) error {
	p, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrBadPower, key)
	}
	b.equation(l).setTerm(key, uint32(p), coeff)
	return nil
}

// Companion stores expr as the companion function in v of equation l.
func (b *Builder) Companion(l Label, v Var, expr string) {
	e := b.equation(l)
	if e.Companions == nil {
		e.Companions = map[Var]string{}
	}
	e.Companions[v] = expr
}

// Skip records a column that contributed nothing.
func (b *Builder) Skip(column string) {
	for _, c := range b.m.Skipped {
		if c == column {
			return
		}
	}
	b.m.Skipped = append(b.m.Skipped, column)
}

// Build returns the model. The builder must not be used afterwards.
func (b *Builder) Build() *Model {
	m := b.m
	b.m = nil
	sort.Slice(m.labels, func(i, j int) bool { return m.labels[i].Less(m.labels[j]) })
	return m
}
