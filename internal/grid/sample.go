package grid

import (
	"errors"
	"fmt"
	"math"

	"ovlmap/internal/calc"
	"ovlmap/internal/options"
)

// DefaultProgressEvery is the default number of points between progress
// reports.
const DefaultProgressEvery = 100

// Evaluator computes OVLX and OVLY at one point. *calc.Program implements it.
type Evaluator interface {
	Evaluate(x, y float64) (calc.Values, error)
}

var _ Evaluator = (*calc.Program)(nil)

// ProgressFunc receives the completed fraction of a sweep, in (0, 1].
// Returning an error aborts the sweep.
type ProgressFunc func(fraction float64) error

type sampleConfig struct {
	progress ProgressFunc
	every    int
}

// Option configures Sample.
type Option = options.Option[*sampleConfig]

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return options.NoError(func(c *sampleConfig) {
		c.progress = fn
	})
}

// WithProgressEvery reports progress every n points instead of every 100.
func WithProgressEvery(n int) Option {
	return options.New(func(c *sampleConfig) error {
		if n < 1 {
			return fmt.Errorf("grid: progress interval must be positive, got %d", n)
		}
		c.every = n
		return nil
	})
}

var errPanic = errors.New("grid: evaluator panicked")

// Sample evaluates ev at every cell center of d, y outer and x inner.
//
// A point whose evaluation fails gets NaN for both outputs and the sweep
// goes on; Result.Failed counts such points. The progress callback, if set,
// sees (i+1)/total for every point i that is a multiple of the interval
// and always a final 1.0.
func Sample(ev Evaluator, d Domain, opts ...Option) (*Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	cfg := &sampleConfig{every: DefaultProgressEvery}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	xs := d.XCenters()
	ys := d.YCenters()
	total := d.Points()

	res := &Result{Domain: d, Rows: make([]Row, 0, total)}
	i := 0
	for _, y := range ys {
		for _, x := range xs {
			row := Row{X: x, Y: y}
			v, err := evalPoint(ev, x, y)
			if err != nil {
				row.OVLX, row.OVLY = math.NaN(), math.NaN()
				res.Failed++
			} else {
				row.OVLX, row.OVLY = v.OVLX, v.OVLY
				res.EquationFailures += len(v.Failed)
			}
			res.Rows = append(res.Rows, row)

			if cfg.progress != nil && i%cfg.every == 0 {
				if err := cfg.progress(float64(i+1) / float64(total)); err != nil {
					return nil, fmt.Errorf("%w at point %d of %d: %w", ErrAborted, i+1, total, err)
				}
			}
			i++
		}
	}

	if cfg.progress != nil {
		if err := cfg.progress(1.0); err != nil {
			return nil, fmt.Errorf("%w at completion: %w", ErrAborted, err)
		}
	}
	return res, nil
}

func evalPoint(ev Evaluator, x, y float64) (v calc.Values, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w at (%g, %g): %v", errPanic, x, y, r)
		}
	}()
	return ev.Evaluate(x, y)
}
