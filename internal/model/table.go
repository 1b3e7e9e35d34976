package model

// Table is a raw coefficient table: labeled columns and rows of cell text.
// Rows shorter than Columns read as empty cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Cell returns the text at (row, col), or "" when the row is short.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// SampleTable returns the built-in example table: three X equations with
// companion functions of y and one Y equation with a companion function of x.
func SampleTable() Table {
	return Table{
		Columns: []string{
			"X22", "X21", "X20", "X2(y)",
			"X32", "X31", "X30", "X3(y)",
			"X2", "X1", "X0", "X(y)",
			"Y6", "Y5", "Y4", "Y(x)",
		},
		Rows: [][]string{{
			"2", "1", "1.0", "4*y + 1",
			"2.0", "1", "1", "y**2 + 4*y + 1",
			"2", "1", "1.0", "y**2 + 2*y + 1",
			"1.0", "0.8", "0.6", "3*x + 3",
		}},
	}
}
