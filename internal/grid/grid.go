// Package grid samples an evaluator over the cell centers of a rectangular
// domain and collects the results in row-major order (y outer, x inner).
package grid

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidDomain is returned for a domain that breaks the sampling
	// contract: non-finite bounds, min > max or fewer than one cell.
	ErrInvalidDomain = errors.New("grid: invalid domain")

	// ErrAborted is returned when the progress callback stops a sweep.
	ErrAborted = errors.New("grid: sweep aborted")

	ErrUnknownField = errors.New("grid: unknown field")
	ErrShape        = errors.New("grid: rows do not form a grid")
)

// Domain is the rectangle [XMin,XMax]×[YMin,YMax] split into NX×NY cells.
type Domain struct {
	XMin, XMax float64
	YMin, YMax float64
	NX, NY     int
}

// Validate checks the sampling contract.
func (d Domain) Validate() error {
	for _, v := range []float64{d.XMin, d.XMax, d.YMin, d.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bound %v", ErrInvalidDomain, v)
		}
	}
	if d.XMin > d.XMax {
		return fmt.Errorf("%w: x range [%g, %g]", ErrInvalidDomain, d.XMin, d.XMax)
	}
	if d.YMin > d.YMax {
		return fmt.Errorf("%w: y range [%g, %g]", ErrInvalidDomain, d.YMin, d.YMax)
	}
	if d.NX < 1 || d.NY < 1 {
		return fmt.Errorf("%w: %dx%d cells", ErrInvalidDomain, d.NX, d.NY)
	}
	return nil
}

// Points returns NX*NY.
func (d Domain) Points() int { return d.NX * d.NY }

// XCenters returns the NX cell centers along x.
func (d Domain) XCenters() []float64 { return Centers(d.XMin, d.XMax, d.NX) }

// YCenters returns the NY cell centers along y.
func (d Domain) YCenters() []float64 { return Centers(d.YMin, d.YMax, d.NY) }

// Centers splits [lo, hi] into n equal cells and returns their midpoints.
// The n+1 edges are spaced like a linspace whose last edge is exactly hi.
func Centers(lo, hi float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	edges := make([]float64, n+1)
	step := (hi - lo) / float64(n)
	for i := range edges {
		edges[i] = lo + float64(i)*step
	}
	edges[n] = hi

	out := make([]float64, n)
	for i := range out {
		out[i] = (edges[i] + edges[i+1]) / 2
	}
	return out
}
