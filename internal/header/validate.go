// Package header checks coefficient-table column labels and rebuilds the
// nested equation model from them.
//
// Two column grammars are accepted:
//
//	X, X1, Y22     bare form: family letter and optional digits
//	X2(y), Y(x)    functional form: bare form followed by (x) or (y)
package header

import (
	"errors"
	"fmt"
	"strings"

	"ovlmap/internal/model"
)

// ErrEmptyTable is returned for a table without data rows.
var ErrEmptyTable = errors.New("header: table has no rows")

// ValidationError lists every column label that matches neither grammar.
type ValidationError struct {
	Invalid []string
}

func (e *ValidationError) Error() string {
	quoted := make([]string, len(e.Invalid))
	for i, s := range e.Invalid {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "header: invalid column labels: [" + strings.Join(quoted, ", ") + "]"
}

// Validate reports whether t can be parsed. It returns ErrEmptyTable or a
// *ValidationError carrying the offending labels in column order.
func Validate(t model.Table) error {
	if len(t.Rows) == 0 {
		return ErrEmptyTable
	}

	var invalid []string
	for _, col := range t.Columns {
		if _, ok := splitLabel(col); !ok {
			invalid = append(invalid, col)
		}
	}
	if len(invalid) > 0 {
		return &ValidationError{Invalid: invalid}
	}
	return nil
}

// Result is the outcome of Check.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Check wraps Validate into a valid flag plus message.
func Check(t model.Table) Result {
	if err := Validate(t); err != nil {
		return Result{Valid: false, Error: err.Error()}
	}
	return Result{Valid: true}
}
