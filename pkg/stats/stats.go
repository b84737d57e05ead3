package stats

import (
	"gonum.org/v1/gonum/stat"
)

// Summary describes a trend line: its central value, spread and the slope of
// its least squares fit against the sample index.
type Summary struct {
	Count     int
	Mean      float64
	StdDev    float64
	Intercept float64
	Slope     float64
	Last      float64
}

// Summarize skips the leading zero placeholders given by shift. Fewer than two
// remaining values only yield Count and Last.
func Summarize(values []float64, shift int) Summary {
	if shift > 0 && shift <= len(values) {
		values = values[shift:]
	}
	s := Summary{Count: len(values)}
	if len(values) == 0 {
		return s
	}
	s.Last = values[len(values)-1]
	if len(values) < 2 {
		return s
	}

	x := make([]float64, len(values))
	for i := range x {
		x[i] = float64(i + 1)
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	s.Intercept, s.Slope = stat.LinearRegression(x, values, nil, false)
	return s
}
