package trend

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mikesmitty/covid-charts/pkg/parse"
	"github.com/mikesmitty/covid-charts/pkg/swma"
)

const (
	PlainAverage Strategy = iota
	WeightedAverage
)

var ErrUnknownStrategy = errors.New("unknown trend strategy")

// Strategy selects how a full window is reduced to a trend value.
type Strategy int

func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "plain", "average", "sma":
		return PlainAverage, nil
	case "weighted", "triangular", "wma":
		return WeightedAverage, nil
	}
	return PlainAverage, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
}

func (s Strategy) String() string {
	switch s {
	case PlainAverage:
		return "plain"
	case WeightedAverage:
		return "weighted"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func (s Strategy) average(w *swma.SlidingWindow) float64 {
	if s == WeightedAverage {
		return w.WeightedAverage()
	}
	return w.Average()
}

// Builder produces trend lines. With Strict set, Build stops at the first
// value that is not a number instead of carrying NaN through the window.
type Builder struct {
	Window   int
	Shift    int
	Strategy Strategy
	Strict   bool
}

// Build returns Shift zeros followed by one value per full window. While
// walking the input the window's average is taken before the current value is
// pushed, and the window left after the last push is taken once more.
func (b Builder) Build(values []string) ([]float64, error) {
	trend := make([]float64, max(b.Shift, 0), b.capacity(len(values)))
	w := swma.NewSlidingWindow(b.Window)
	for i, value := range values {
		if w.Full() {
			trend = append(trend, b.Strategy.average(w))
		}
		v, err := parse.Int(value)
		if err != nil {
			if b.Strict {
				return nil, fmt.Errorf("trend value %d: %w", i, err)
			}
			slog.Debug("trend input is not a number", "index", i, "value", value, "module", "trend")
		}
		w.PushValue(v)
	}
	return b.last(trend, w), nil
}

func (b Builder) BuildValues(values []float64) []float64 {
	trend := make([]float64, max(b.Shift, 0), b.capacity(len(values)))
	w := swma.NewSlidingWindow(b.Window)
	for _, v := range values {
		if w.Full() {
			trend = append(trend, b.Strategy.average(w))
		}
		w.PushValue(v)
	}
	return b.last(trend, w)
}

func (b Builder) last(trend []float64, w *swma.SlidingWindow) []float64 {
	if w.Len() > 0 && w.Full() {
		trend = append(trend, b.Strategy.average(w))
	}
	return trend
}

func (b Builder) capacity(n int) int {
	emitted := n + 1
	if b.Window > 0 && b.Window <= n {
		emitted = n - b.Window + 1
	}
	return max(b.Shift, 0) + emitted
}

// Generate builds a trend line from raw values, carrying unparsable values
// through as NaN.
func Generate(values []string, window, shift int, strategy Strategy) []float64 {
	trend, _ := Builder{Window: window, Shift: shift, Strategy: strategy}.Build(values)
	return trend
}

func GenerateValues(values []float64, window, shift int, strategy Strategy) []float64 {
	return Builder{Window: window, Shift: shift, Strategy: strategy}.BuildValues(values)
}
