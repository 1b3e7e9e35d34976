// Package plot renders a sampled field as a PNG scatter map.
package plot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"ovlmap/internal/grid"
)

// ErrNoData is returned when every value of the field is NaN.
var ErrNoData = errors.New("plot: no finite values to draw")

const (
	DefaultWidth  = 800
	DefaultHeight = 800
)

// Field draws one field ("ovlx" or "ovly") of r to w as PNG. Each grid
// point is a dot colored on the field's scale (see ColormapFor) between
// the field's minimum and maximum; NaN points are left out.
func Field(w io.Writer, r *grid.Result, field string) error {
	vals, err := r.Field(field)
	if err != nil {
		return err
	}

	var xs, ys, vs []float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, row := range r.Rows {
		v := vals[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xs = append(xs, row.X)
		ys = append(ys, row.Y)
		vs = append(vs, v)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if len(vs) == 0 {
		return fmt.Errorf("%w: %s", ErrNoData, field)
	}
	if hi == lo {
		hi = lo + 1
	}

	dot := dotWidth(r.Domain)
	cm := ColormapFor(field)
	series := chart.ContinuousSeries{
		Name:    field,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    dot,
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				return cm(vs[index], lo, hi)
			},
		},
	}

	xmin, xmax := span(r.Domain.XMin, r.Domain.XMax)
	ymin, ymax := span(r.Domain.YMin, r.Domain.YMax)
	ch := chart.Chart{
		Title:      fmt.Sprintf("%s  [%.4g, %.4g]", field, lo, hi),
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "x", Range: &chart.ContinuousRange{Min: xmin, Max: xmax}},
		YAxis:      chart.YAxis{Name: "y", Range: &chart.ContinuousRange{Min: ymin, Max: ymax}},
		Series:     []chart.Series{series},
	}
	return ch.Render(chart.PNG, w)
}

// Save draws field to a PNG file.
func Save(filename string, r *grid.Result, field string) error {
	var buf bytes.Buffer
	if err := Field(&buf, r, field); err != nil {
		return err
	}
	return os.WriteFile(filename, buf.Bytes(), 0o644)
}

// dotWidth sizes dots so neighbouring cells roughly touch.
func dotWidth(d grid.Domain) float64 {
	n := max(d.NX, d.NY, 1)
	w := float64(DefaultWidth) / float64(n) / 2
	return math.Max(1, math.Min(w, 12))
}

// span widens a degenerate range so the axis can be drawn.
func span(lo, hi float64) (float64, float64) {
	if hi > lo {
		return lo, hi
	}
	return lo - 0.5, hi + 0.5
}
