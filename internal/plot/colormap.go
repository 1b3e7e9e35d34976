package plot

import (
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Colormap maps v between lo and hi to a color.
type Colormap func(v, lo, hi float64) drawing.Color

// ColormapFor returns the scale a field is drawn with: viridis for ovlx,
// plasma for ovly.
func ColormapFor(field string) Colormap {
	if field == "ovly" {
		return Plasma
	}
	return chart.Viridis
}

// plasmaStops samples the plasma scale at nine evenly spaced points.
var plasmaStops = []drawing.Color{
	{R: 13, G: 8, B: 135, A: 255},
	{R: 76, G: 2, B: 161, A: 255},
	{R: 126, G: 3, B: 168, A: 255},
	{R: 169, G: 35, B: 149, A: 255},
	{R: 204, G: 71, B: 120, A: 255},
	{R: 230, G: 108, B: 92, A: 255},
	{R: 248, G: 149, B: 64, A: 255},
	{R: 253, G: 197, B: 39, A: 255},
	{R: 240, G: 249, B: 33, A: 255},
}

// Plasma maps v onto the plasma scale, interpolating linearly between
// stops. Values outside [lo, hi] are clamped.
func Plasma(v, lo, hi float64) drawing.Color {
	t := 0.0
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Max(0, math.Min(1, t))

	pos := t * float64(len(plasmaStops)-1)
	i := int(pos)
	if i >= len(plasmaStops)-1 {
		return plasmaStops[len(plasmaStops)-1]
	}
	a, b := plasmaStops[i], plasmaStops[i+1]
	f := pos - float64(i)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}
