package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mikesmitty/covid-charts/pkg/parse"
	"github.com/mikesmitty/covid-charts/pkg/trend"
	"github.com/spf13/viper"
)

const (
	DefaultWindow = 5

	// MaxWindow bounds both the window and the shift of a configured trend.
	MaxWindow = 1 << 16

	ScaleLinear      = "linear"
	ScaleLogarithmic = "logarithmic"
)

var (
	ErrInvalidWindow = errors.New("invalid window size")
	ErrInvalidScale  = errors.New("invalid scale")
)

type Config struct {
	Window     int
	Shift      int
	Strategy   trend.Strategy
	DailyScale string
	CumulScale string
	// Average toggles the trend overlay on the daily chart.
	Average bool
}

func Default() Config {
	return Config{
		Window:     DefaultWindow,
		Shift:      DerivedShift(DefaultWindow),
		Strategy:   trend.PlainAverage,
		DailyScale: ScaleLinear,
		CumulScale: ScaleLogarithmic,
		Average:    true,
	}
}

// DerivedShift centers the trend line on its window: ceil(window/2).
func DerivedShift(window int) int {
	if window <= 0 {
		return 0
	}
	return (window + 1) / 2
}

// FromViper reads window, shift, strategy, daily-scale, cumul-scale and
// average. A negative or unset shift is derived from the window.
func FromViper(v *viper.Viper) (Config, error) {
	c := Default()
	if v.IsSet("window") {
		c.Window = v.GetInt("window")
	}
	c.Shift = DerivedShift(c.Window)
	if v.IsSet("shift") && v.GetInt("shift") >= 0 {
		c.Shift = v.GetInt("shift")
	}
	if s := v.GetString("daily-scale"); s != "" {
		c.DailyScale = s
	}
	if s := v.GetString("cumul-scale"); s != "" {
		c.CumulScale = s
	}
	if v.IsSet("average") {
		c.Average = v.GetBool("average")
	}
	var err error
	if c.Strategy, err = trend.ParseStrategy(v.GetString("strategy")); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// FromQuery reads the window from the "window" parameter, falling back to
// DefaultWindow when it is missing or not a number. Shift is derived unless
// given. The strategy is read from "strategy".
func FromQuery(q url.Values) (Config, error) {
	c := Default()
	if w, err := parse.Int(q.Get("window")); err == nil {
		if c.Window, err = bounded("window", w); err != nil {
			return Config{}, err
		}
	}
	c.Shift = DerivedShift(c.Window)
	if q.Has("shift") {
		s, err := parse.Int(q.Get("shift"))
		if err != nil {
			return Config{}, fmt.Errorf("shift: %w", err)
		}
		if c.Shift, err = bounded("shift", s); err != nil {
			return Config{}, err
		}
	}
	var err error
	if c.Strategy, err = trend.ParseStrategy(q.Get("strategy")); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// bounded converts a parsed query value to an int, rejecting it before the
// conversion when it falls outside [0, MaxWindow].
func bounded(name string, v float64) (int, error) {
	if v < 0 || v > MaxWindow {
		return 0, fmt.Errorf("%w: %s %.0f outside 0..%d", ErrInvalidWindow, name, v, MaxWindow)
	}
	return int(v), nil
}

func (c Config) Validate() error {
	if c.Window < 0 || c.Window > MaxWindow {
		return fmt.Errorf("%w: %d outside 0..%d", ErrInvalidWindow, c.Window, MaxWindow)
	}
	if c.Shift < 0 || c.Shift > MaxWindow {
		return fmt.Errorf("%w: shift %d outside 0..%d", ErrInvalidWindow, c.Shift, MaxWindow)
	}
	for _, s := range []string{c.DailyScale, c.CumulScale} {
		if err := ValidScale(s); err != nil {
			return err
		}
	}
	return nil
}

func ValidScale(s string) error {
	switch strings.ToLower(s) {
	case ScaleLinear, ScaleLogarithmic:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidScale, s)
}
