package calc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseExpr(t *testing.T) {
	cases := []struct {
		expr string
		x, y float64
		want float64
	}{
		{"1", 0, 0, 1},
		{".5", 0, 0, 0.5},
		{"1e-3", 0, 0, 0.001},
		{"2.5E2", 0, 0, 250},
		{"y**2 + 2*y + 1", 0, 0, 1},
		{"y**2 + 2*y + 1", 0, 3, 16},
		{"y**2 + 4*y + 1", 0, 1, 6},
		{"4*y + 1", 0, 0.5, 3},
		{"3*x + 3", 2, 0, 9},
		{"x*y", 3, 4, 12},
		{"y^2", 0, 3, 9},
		{"2**3**2", 0, 0, 512},
		{"-y**2", 0, 3, -9},
		{"(-y)**2", 0, 3, 9},
		{"2**-1", 0, 0, 0.5},
		{"--2", 0, 0, 2},
		{"+3", 0, 0, 3},
		{"10 - 4 - 3", 0, 0, 3},
		{"12 / 3 / 2", 0, 0, 2},
		{"2 * (3 + 4)", 0, 0, 14},
		{"  1 +\t2 ", 0, 0, 3},
		{"sqrt(x)", 16, 0, 4},
		{"abs(-y)", 0, 2, 2},
		{"exp(0) + log(E)", 0, 0, 2},
		{"ln(1)", 0, 0, 0},
		{"cos(pi)", 0, 0, -1},
		{"sin(0) + tan(0)", 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			n, err := ParseExpr(tc.expr)
			require.NoError(t, err)
			v, err := n.Eval(tc.x, tc.y)
			require.NoError(t, err)
			require.InDelta(t, tc.want, v, 1e-12)
		})
	}
}

func TestParseExprErrors(t *testing.T) {
	cases := []struct {
		expr string
		want error
	}{
		{"", ErrSyntax},
		{"1 +", ErrSyntax},
		{"(1 + 2", ErrSyntax},
		{"1 2", ErrSyntax},
		{"2y", ErrSyntax},
		{"1e", ErrSyntax},
		{"y ** ", ErrSyntax},
		{"#", ErrSyntax},
		{"z + 1", ErrUnknownName},
		{"e", ErrUnknownName},
		{"X", ErrUnknownName},
		{"foo(1)", ErrUnknownFunc},
		{"sqrt(1", ErrSyntax},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			_, err := ParseExpr(tc.expr)
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.want), err.Error())
		})
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		expr string
		x, y float64
		want error
	}{
		{"1 / y", 0, 0, ErrDivisionZero},
		{"sqrt(-1)", 0, 0, ErrNonFinite},
		{"log(0)", 0, 0, ErrNonFinite},
		{"(-8)**(1/3)", 0, 0, ErrNonFinite},
		{"10**400", 0, 0, ErrNonFinite},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			n, err := ParseExpr(tc.expr)
			require.NoError(t, err)
			_, err = n.Eval(tc.x, tc.y)
			require.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestPow(t *testing.T) {
	require.Equal(t, 1.0, pow(0, 0))
	require.Equal(t, 0.0, pow(0, 3))
	require.Equal(t, 1024.0, pow(2, 10))
	require.Equal(t, -8.0, pow(-2, 3))
	require.InDelta(t, math.Pow(1.1, 7), pow(1.1, 7), 1e-12)
	require.True(t, math.IsInf(pow(10, 400), 1))
}
