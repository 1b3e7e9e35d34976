// Package calc evaluates equation models numerically.
//
// Every X-family equation is a polynomial in x multiplied by an optional
// companion function of y; every Y-family equation is a polynomial in y
// multiplied by an optional companion function of x. Evaluating a Program
// at (x, y) sums the X-family equations into OVLX and the Y-family ones
// into OVLY.
//
// Companion functions are parsed by a small recursive-descent parser into
// an expression tree that is evaluated by direct substitution:
//
//	n, err := calc.ParseExpr("y**2 + 2*y + 1")
//	v, err := n.Eval(0, 3) // 16
//
// An equation that cannot be built or evaluated (bad coefficient, broken
// companion function, division by zero, overflow) contributes 0 and is
// reported in Values.Failed; the other equations are unaffected.
package calc
