package header

import "ovlmap/internal/model"

// target is where the cells of one column go in the model.
type target struct {
	label      model.Label
	key        string
	variable   model.Var
	functional bool
}

// resolveColumn maps a column label to its equation and term key.
//
// Functional columns name their equation with the prefix as written: X(y)
// is X1, X12(y) is X12 and X01(y) is X01, an equation apart from X1. Bare
// columns encode equation and power together: with two or more digits a
// leading digit d >= 1 selects equation d and the remaining digits are the
// power (X22 is X2, power 2); a leading 0 keeps equation 1 and the whole
// digit run is the power (X05 is X1, power "05"). A single digit is a power
// of equation 1. A bare family letter has no power and is unusable.
func resolveColumn(name string) (target, bool) {
	cl, ok := splitLabel(name)
	if !ok {
		return target{}, false
	}

	if cl.functional {
		label := model.Label{Family: cl.family, Index: 1}
		if cl.digits != "" {
			label = model.NewLabel(cl.family, cl.digits)
		}
		return target{label: label, variable: cl.variable, functional: true}, true
	}

	order := cl.digits
	if order == "" {
		return target{}, false
	}
	tg := target{label: model.Label{Family: cl.family, Index: 1}, key: order}
	if len(order) >= 2 {
		if d := int(order[0] - '0'); d >= 1 {
			tg.label.Index = d
			tg.key = order[1:]
		}
	}
	return tg, true
}

// Parse rebuilds the equation model from t. Every row is applied in order,
// so a later row overwrites an earlier one for the same term; empty cells
// leave earlier values in place. Columns that cannot contribute (a bare
// family letter, labels outside the grammar, a power key the builder
// rejects) are listed in Model.Skipped.
//
// Parse expects a table that passed Validate.
func Parse(t model.Table) *model.Model {
	b := model.NewBuilder()

	targets := make([]target, len(t.Columns))
	usable := make([]bool, len(t.Columns))
	for i, name := range t.Columns {
		targets[i], usable[i] = resolveColumn(name)
		if !usable[i] {
			b.Skip(name)
		}
	}

	for r := range t.Rows {
		for c, tg := range targets {
			if !usable[c] {
				continue
			}
			v := t.Cell(r, c)
			if v == "" {
				continue
			}
			if tg.functional {
				b.Companion(tg.label, tg.variable, v)
				continue
			}
			if err := b.Term(tg.label, tg.key, v); err != nil {
				usable[c] = false
				b.Skip(t.Columns[c])
			}
		}
	}

	return b.Build()
}
