package grid

import (
	"fmt"
	"math"
)

// Columns are the result table columns in export order.
var Columns = []string{"x", "y", "ovlx", "ovly"}

// Row is one sampled cell center.
type Row struct {
	X, Y       float64
	OVLX, OVLY float64
}

// Result is the output of one sweep. Rows are in y-outer, x-inner order,
// so row i*NX+j is the cell at y index i and x index j. Callers must not
// modify a Result they did not build.
type Result struct {
	Domain Domain
	Rows   []Row

	// Failed counts points whose evaluation failed; their outputs are NaN.
	Failed int
	// EquationFailures counts equation contributions skipped across all
	// points that were evaluated.
	EquationFailures int
}

// Len returns the number of rows.
func (r *Result) Len() int { return len(r.Rows) }

// At returns the cell at y index i and x index j.
func (r *Result) At(i, j int) Row {
	return r.Rows[i*r.Domain.NX+j]
}

// Field returns one column by name: x, y, ovlx or ovly.
func (r *Result) Field(name string) ([]float64, error) {
	get, err := fieldGetter(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = get(row)
	}
	return out, nil
}

// Reshape returns a field as an NY×NX matrix.
func (r *Result) Reshape(name string) ([][]float64, error) {
	col, err := r.Field(name)
	if err != nil {
		return nil, err
	}
	nx, ny := r.Domain.NX, r.Domain.NY
	if nx < 1 || ny < 1 || nx*ny != len(col) {
		return nil, fmt.Errorf("%w: %d rows for %dx%d", ErrShape, len(col), nx, ny)
	}
	out := make([][]float64, ny)
	for i := range out {
		out[i] = col[i*nx : (i+1)*nx : (i+1)*nx]
	}
	return out, nil
}

func fieldGetter(name string) (func(Row) float64, error) {
	switch name {
	case "x":
		return func(r Row) float64 { return r.X }, nil
	case "y":
		return func(r Row) float64 { return r.Y }, nil
	case "ovlx":
		return func(r Row) float64 { return r.OVLX }, nil
	case "ovly":
		return func(r Row) float64 { return r.OVLY }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// FromRows rebuilds a Result from rows in y-outer, x-inner order, such as
// rows read back from an export. NX is the length of the leading run of
// equal y. When every y is equal (a zero-height y range), NX is where the x
// sequence first repeats. Rows that are all the same point cannot be told
// apart and come back as a single grid row. The domain bounds are recovered
// from the cell centers and are exact up to rounding.
func FromRows(rows []Row) (*Result, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrShape)
	}
	nx := 1
	for nx < len(rows) && rows[nx].Y == rows[0].Y {
		nx++
	}
	if nx == len(rows) && nx > 1 && rows[1].X != rows[0].X {
		for j := 1; j < len(rows); j++ {
			if rows[j].X == rows[0].X {
				nx = j
				break
			}
		}
	}
	if len(rows)%nx != 0 {
		return nil, fmt.Errorf("%w: %d rows are not a multiple of %d", ErrShape, len(rows), nx)
	}
	ny := len(rows) / nx

	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			row := rows[i*nx+j]
			if row.X != rows[j].X || row.Y != rows[i*nx].Y {
				return nil, fmt.Errorf("%w: row %d out of order", ErrShape, i*nx+j)
			}
		}
	}

	xs := make([]float64, nx)
	for j := range xs {
		xs[j] = rows[j].X
	}
	ys := make([]float64, ny)
	for i := range ys {
		ys[i] = rows[i*nx].Y
	}
	xmin, xmax := bounds(xs)
	ymin, ymax := bounds(ys)

	res := &Result{
		Domain: Domain{XMin: xmin, XMax: xmax, YMin: ymin, YMax: ymax, NX: nx, NY: ny},
		Rows:   append([]Row(nil), rows...),
	}
	for _, row := range rows {
		if math.IsNaN(row.OVLX) && math.IsNaN(row.OVLY) {
			res.Failed++
		}
	}
	return res, nil
}

// bounds recovers the cell edges around evenly spaced centers.
func bounds(c []float64) (lo, hi float64) {
	if len(c) == 1 {
		return c[0], c[0]
	}
	half := (c[len(c)-1] - c[0]) / float64(len(c)-1) / 2
	return c[0] - half, c[len(c)-1] + half
}
