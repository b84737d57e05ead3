package swma

import (
	"log/slog"

	"github.com/mikesmitty/covid-charts/pkg/parse"
)

// SlidingWindow holds the most recent values pushed to it, oldest first.
type SlidingWindow struct {
	window     []float64
	windowSize int
}

// NewSlidingWindow does not allocate for windowSize up front; the buffer grows
// with the values pushed.
func NewSlidingWindow(windowSize int) *SlidingWindow {
	return &SlidingWindow{
		windowSize: windowSize,
	}
}

// Push parses value and adds it to the window. Unparsable values are added as
// NaN and poison every sum they take part in until they are evicted.
func (s *SlidingWindow) Push(value string) {
	v, err := parse.Int(value)
	if err != nil {
		slog.Debug("pushing unparsable value", "value", value, "error", err, "module", "swma")
	}
	s.push(v)
}

func (s *SlidingWindow) PushValue(value float64) {
	s.push(parse.Value(value))
}

func (s *SlidingWindow) push(value float64) {
	if len(s.window) >= s.windowSize && len(s.window) > 0 {
		s.window = append(s.window[:0], s.window[1:]...)
	}
	s.window = append(s.window, value)
}

func (s *SlidingWindow) Sum() float64 {
	sum := 0.0
	for _, v := range s.window {
		sum += v
	}
	return sum
}

// Average divides the sum by the window size rather than the number of values
// held, so it only yields a mean once the window is full.
func (s *SlidingWindow) Average() float64 {
	return s.Sum() / float64(s.windowSize)
}

// WeightedAverage weights the values with a tent that rises by one per value
// up to the middle of the window and falls by one after it.
func (s *SlidingWindow) WeightedAverage() float64 {
	half := (len(s.window) + 1) / 2
	weight := 1.0
	sum, weights := 0.0, 0.0
	for i, v := range s.window {
		sum += v * weight
		weights += weight
		if i < half {
			weight++
		} else {
			weight--
		}
	}
	return sum / weights
}

func (s *SlidingWindow) Full() bool {
	return len(s.window) == s.windowSize
}

func (s *SlidingWindow) Len() int {
	return len(s.window)
}

func (s *SlidingWindow) Reset() {
	s.window = s.window[:0]
}

func (s *SlidingWindow) Window() []float64 {
	return append([]float64(nil), s.window...)
}

func (s *SlidingWindow) WindowSize() int {
	return s.windowSize
}
