package grid

import (
	"math"
	"sort"
)

// Stats summarizes one output field. NaN values are left out and counted
// in NaN; with no values every statistic is NaN.
type Stats struct {
	Count  int
	NaN    int
	Min    float64
	Max    float64
	Mean   float64
	Std    float64 // sample standard deviation, NaN for fewer than 2 values
	Median float64
}

// Summary holds Stats for both outputs.
type Summary struct {
	OVLX Stats
	OVLY Stats
}

// Summary computes statistics over the ovlx and ovly columns.
func (r *Result) Summary() Summary {
	ovlx, _ := r.Field("ovlx")
	ovly, _ := r.Field("ovly")
	return Summary{OVLX: Describe(ovlx), OVLY: Describe(ovly)}
}

// Describe computes Stats over values.
func Describe(values []float64) Stats {
	vals := make([]float64, 0, len(values))
	st := Stats{}
	for _, v := range values {
		if math.IsNaN(v) {
			st.NaN++
			continue
		}
		vals = append(vals, v)
	}
	st.Count = len(vals)

	nan := math.NaN()
	if st.Count == 0 {
		st.Min, st.Max, st.Mean, st.Std, st.Median = nan, nan, nan, nan, nan
		return st
	}

	sort.Float64s(vals)
	st.Min = vals[0]
	st.Max = vals[len(vals)-1]

	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	st.Mean = sum / float64(st.Count)

	if st.Count < 2 {
		st.Std = nan
	} else {
		ss := 0.0
		for _, v := range vals {
			d := v - st.Mean
			ss += d * d
		}
		st.Std = math.Sqrt(ss / float64(st.Count-1))
	}

	mid := st.Count / 2
	if st.Count%2 == 1 {
		st.Median = vals[mid]
	} else {
		st.Median = (vals[mid-1] + vals[mid]) / 2
	}
	return st
}
