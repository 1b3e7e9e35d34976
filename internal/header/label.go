package header

import "ovlmap/internal/model"

// columnLabel is a column header split into its parts:
// family letter, digit run and optional "(x)"/"(y)" suffix.
type columnLabel struct {
	family     model.Family
	digits     string
	variable   model.Var
	functional bool
}

// splitLabel scans labels like X, X12, Y2(x). It accepts exactly the two
// column grammars [XY]\d* and [XY]\d*\([xy]\).
func splitLabel(name string) (columnLabel, bool) {
	var cl columnLabel
	if name == "" {
		return cl, false
	}
	f, ok := model.ParseFamily(name[0])
	if !ok {
		return cl, false
	}
	cl.family = f

	i := 1
	for i < len(name) && isDigit(name[i]) {
		i++
	}
	cl.digits = name[1:i]
	if i == len(name) {
		return cl, true
	}

	rest := name[i:]
	if len(rest) != 3 || rest[0] != '(' || rest[2] != ')' {
		return cl, false
	}
	v, ok := model.ParseVar(rest[1:2])
	if !ok {
		return cl, false
	}
	cl.variable = v
	cl.functional = true
	return cl, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
