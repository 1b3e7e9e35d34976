package plot

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	chart "github.com/wcharczuk/go-chart/v2"

	"ovlmap/internal/calc"
	"ovlmap/internal/grid"
	"ovlmap/internal/header"
	"ovlmap/internal/model"
)

func sampled(t *testing.T, n int) *grid.Result {
	t.Helper()
	p := calc.Compile(header.Parse(model.SampleTable()))
	res, err := grid.Sample(p, grid.Domain{XMin: 0, XMax: 1, YMin: 0, YMax: 1, NX: n, NY: n})
	require.NoError(t, err)
	return res
}

func TestFieldPNG(t *testing.T) {
	res := sampled(t, 10)
	for _, field := range []string{"ovlx", "ovly"} {
		t.Run(field, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Field(&buf, res, field))

			img, err := png.Decode(&buf)
			require.NoError(t, err)
			require.Equal(t, DefaultWidth, img.Bounds().Dx())
			require.Equal(t, DefaultHeight, img.Bounds().Dy())
		})
	}
}

func TestFieldSinglePoint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Field(&buf, sampled(t, 1), "ovlx"))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestFieldErrors(t *testing.T) {
	res := sampled(t, 3)

	err := Field(&bytes.Buffer{}, res, "ovlz")
	require.True(t, errors.Is(err, grid.ErrUnknownField))

	for i := range res.Rows {
		res.Rows[i].OVLY = math.NaN()
	}
	err = Field(&bytes.Buffer{}, res, "ovly")
	require.True(t, errors.Is(err, ErrNoData))
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ovlx.png")
	require.NoError(t, Save(path, sampled(t, 5), "ovlx"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestDotWidth(t *testing.T) {
	require.Equal(t, 12.0, dotWidth(grid.Domain{NX: 1, NY: 1}))
	require.Equal(t, 8.0, dotWidth(grid.Domain{NX: 50, NY: 50}))
	require.Equal(t, 1.0, dotWidth(grid.Domain{NX: 2000, NY: 10}))
}

func TestColormapFor(t *testing.T) {
	require.Equal(t, chart.Viridis(0.3, 0, 1), ColormapFor("ovlx")(0.3, 0, 1))
	require.Equal(t, Plasma(0.3, 0, 1), ColormapFor("ovly")(0.3, 0, 1))
	require.NotEqual(t, ColormapFor("ovlx")(0, 0, 1), ColormapFor("ovly")(0, 0, 1))
}

func TestPlasma(t *testing.T) {
	require.Equal(t, plasmaStops[0], Plasma(0, 0, 1))
	require.Equal(t, plasmaStops[len(plasmaStops)-1], Plasma(1, 0, 1))
	require.Equal(t, plasmaStops[4], Plasma(5, 0, 10))

	require.Equal(t, Plasma(0, 0, 1), Plasma(-3, 0, 1))
	require.Equal(t, Plasma(1, 0, 1), Plasma(7, 0, 1))
	require.Equal(t, plasmaStops[0], Plasma(2, 2, 2))
	require.Equal(t, plasmaStops[0], Plasma(math.NaN(), 0, 1))

	mid := Plasma(1.0/16, 0, 1)
	require.Equal(t, uint8(45), mid.R)
	require.Equal(t, uint8(255), mid.A)
}
