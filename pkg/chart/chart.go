package chart

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mikesmitty/covid-charts/pkg/series"
	"github.com/mikesmitty/covid-charts/pkg/trend"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	casesBackground       = "rgba(54, 162, 235, 0.2)"
	casesBorder           = "rgba(54, 162, 235, 1)"
	casesTrendBackground  = "rgba(54, 162, 255, 0.2)"
	casesTrendBorder      = "rgba(54, 162, 255, 1)"
	deathsBackground      = "rgba(235, 54, 54, 0.2)"
	deathsBorder          = "rgba(235, 54, 54, 1)"
	deathsTrendBackground = "rgba(255, 54, 54, 0.2)"
	deathsTrendBorder     = "rgba(255, 54, 54, 1)"
)

// Value is a chart data point. Values that are not finite are written as null
// so the surface leaves a gap.
type Value float64

func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

type Chart struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string  `json:"label"`
	Data            []Value `json:"data"`
	BackgroundColor string  `json:"backgroundColor"`
	BorderColor     string  `json:"borderColor"`
	BorderWidth     int     `json:"borderWidth,omitempty"`
	Type            string  `json:"type,omitempty"`
}

type Options struct {
	Title  Title  `json:"title"`
	Scales Scales `json:"scales"`
}

type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type Scales struct {
	YAxes []Axis `json:"yAxes"`
}

type Axis struct {
	Type  string `json:"type"`
	Ticks Ticks  `json:"ticks"`
}

type Ticks struct {
	BeginAtZero bool `json:"beginAtZero"`
}

// Spec describes one chart: which fields to read, how to title and scale it,
// and whether to overlay trend lines.
type Spec struct {
	Type     string
	Title    string
	Window   int
	Shift    int
	Scale    string
	Average  bool
	Strategy trend.Strategy
}

// Canvas is the name of the drawing surface a chart type is bound to.
func (s Spec) Canvas() string {
	return s.Type + "-canvas"
}

func (s Spec) title() string {
	if s.Title != "" {
		return s.Title
	}
	return cases.Title(language.English).String(s.Type)
}

// Assemble reads the cases, deaths and labels fields for spec.Type and builds
// the chart: cases bars, the cases trend, deaths bars, the deaths trend. Trend
// datasets are only present when spec.Average is set.
func Assemble(src series.Source, spec Spec) (*Chart, error) {
	set, err := series.Load(src, spec.Type)
	if err != nil {
		return nil, fmt.Errorf("%s chart: %w", spec.Type, err)
	}
	trendLabel := fmt.Sprintf("%d days moving average", spec.Window)

	datasets := make([]Dataset, 0, 4)
	datasets = append(datasets, Dataset{
		Label:           "Cases",
		Data:            raw(set.Cases),
		BackgroundColor: casesBackground,
		BorderColor:     casesBorder,
		BorderWidth:     1,
	})
	if spec.Average {
		datasets = append(datasets, Dataset{
			Label:           trendLabel,
			Data:            values(trend.Generate(set.Cases, spec.Window, spec.Shift, spec.Strategy)),
			BackgroundColor: casesTrendBackground,
			BorderColor:     casesTrendBorder,
			Type:            "line",
		})
	}
	datasets = append(datasets, Dataset{
		Label:           "Deaths",
		Data:            raw(set.Deaths),
		BackgroundColor: deathsBackground,
		BorderColor:     deathsBorder,
		BorderWidth:     1,
	})
	if spec.Average {
		datasets = append(datasets, Dataset{
			Label:           trendLabel,
			Data:            values(trend.Generate(set.Deaths, spec.Window, spec.Shift, spec.Strategy)),
			BackgroundColor: deathsTrendBackground,
			BorderColor:     deathsTrendBorder,
			Type:            "line",
		})
	}

	return &Chart{
		Type: "bar",
		Data: Data{
			Labels:   set.Labels,
			Datasets: datasets,
		},
		Options: Options{
			Title: Title{
				Display: true,
				Text:    spec.title() + " View",
			},
			Scales: Scales{
				YAxes: []Axis{{
					Type:  spec.Scale,
					Ticks: Ticks{BeginAtZero: true},
				}},
			},
		},
	}, nil
}

// Trend returns the trend line overlaid on the raw dataset with the given
// label, or nil when there is none.
func (c *Chart) Trend(label string) []float64 {
	for i, d := range c.Data.Datasets {
		if d.Type != "line" || i == 0 || c.Data.Datasets[i-1].Label != label {
			continue
		}
		out := make([]float64, len(d.Data))
		for j := range d.Data {
			out[j] = float64(d.Data[j])
		}
		return out
	}
	return nil
}

// raw keeps bar values as written; only the trend window truncates to
// integers.
func raw(in []string) []Value {
	out := make([]Value, len(in))
	for i := range in {
		v, err := strconv.ParseFloat(strings.TrimSpace(in[i]), 64)
		if err != nil {
			v = math.NaN()
		}
		out[i] = Value(v)
	}
	return out
}

func values(in []float64) []Value {
	out := make([]Value, len(in))
	for i := range in {
		out[i] = Value(in[i])
	}
	return out
}
