package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/mikesmitty/covid-charts/pkg/chart"
	"github.com/mikesmitty/covid-charts/pkg/series"
	"github.com/mikesmitty/covid-charts/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newFakeToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type fakeClient struct {
	paho.Client
	mu        sync.Mutex
	err       error
	retained  map[string]bool
	published map[string]string
	counts    map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		retained:  make(map[string]bool),
		published: make(map[string]string),
		counts:    make(map[string]int),
	}
}

func (f *fakeClient) count(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[topic]
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch p := payload.(type) {
	case []byte:
		f.published[topic] = string(p)
	case string:
		f.published[topic] = p
	}
	f.retained[topic] = retained
	f.counts[topic]++
	return newFakeToken(f.err)
}

func (f *fakeClient) payload(topic string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.published[topic]
	return p, ok
}

func TestRender(t *testing.T) {
	fc := newFakeClient()
	c := newClient(fc, "kitchen", "kitchen")

	ch, err := chart.Assemble(series.Fields{
		"daily-cases":  "1,2,3",
		"daily-deaths": "0,1,0",
		"daily-labels": "a,b,c",
	}, chart.Spec{Type: "daily", Window: 2, Average: true, Scale: "linear"})
	require.NoError(t, err)

	require.NoError(t, c.Render(context.Background(), "daily-canvas", ch))

	topic := "covid-charts/kitchen/chart/daily-canvas"
	assert.Equal(t, topic, c.ChartTopic("daily-canvas"))
	p, ok := fc.payload(topic)
	require.True(t, ok)
	assert.True(t, fc.retained[topic])

	var out chart.Chart
	require.NoError(t, json.Unmarshal([]byte(p), &out))
	assert.Len(t, out.Data.Datasets, 4)
}

func TestRenderError(t *testing.T) {
	fc := newFakeClient()
	fc.err = errors.New("broker gone")
	c := newClient(fc, "kitchen", "kitchen")
	err := c.Render(context.Background(), "daily-canvas", &chart.Chart{})
	assert.EqualError(t, err, "broker gone")
}

func TestPublishTrend(t *testing.T) {
	fc := newFakeClient()
	c := newClient(fc, "kitchen", "kitchen")
	daily := chart.Spec{Type: "daily", Title: "Daily"}

	require.NoError(t, c.PublishTrend(daily, "Cases", stats.Summary{Last: 12.5, Slope: -0.25}))
	require.NoError(t, c.PublishTrend(daily, "Cases", stats.Summary{Last: 13, Slope: 0.5}))

	p, ok := fc.payload("covid-charts/kitchen/chart/daily-canvas/cases/last")
	require.True(t, ok)
	assert.Equal(t, "13.00", p)

	p, ok = fc.payload("covid-charts/kitchen/chart/daily-canvas/cases/slope")
	require.True(t, ok)
	assert.Equal(t, "0.5000", p)

	configTopic := "homeassistant/sensor/kitchen_daily_canvas_cases_last/config"
	p, ok = fc.payload(configTopic)
	require.True(t, ok)
	assert.Equal(t, 1, fc.count(configTopic))

	var sensor HassSensor
	require.NoError(t, json.Unmarshal([]byte(p), &sensor))
	assert.Equal(t, "Daily Cases Trend", sensor.Name)
	assert.Equal(t, "kitchen_daily_canvas_cases_last", sensor.UniqueID)
	assert.Equal(t, "Kitchen", sensor.Device.Name)
	assert.Equal(t, "people", sensor.UnitOfMeasurement)
	assert.Equal(t, "covid-charts/kitchen/chart/daily-canvas/cases/last", sensor.StateTopic)
}

func TestPublishTrendSeparatesCanvases(t *testing.T) {
	fc := newFakeClient()
	c := newClient(fc, "kitchen", "kitchen")

	require.NoError(t, c.PublishTrend(chart.Spec{Type: "daily", Title: "Daily"}, "Cases", stats.Summary{Last: 1}))
	require.NoError(t, c.PublishTrend(chart.Spec{Type: "cumul"}, "Cases", stats.Summary{Last: 2}))

	assert.Len(t, c.trends, 2)
	p, ok := fc.payload("homeassistant/sensor/kitchen_cumul_canvas_cases_slope/config")
	require.True(t, ok)
	var sensor HassSensor
	require.NoError(t, json.Unmarshal([]byte(p), &sensor))
	assert.Equal(t, "Cumul Cases Trend Slope", sensor.Name)
}

func TestPublishTrendConcurrent(t *testing.T) {
	fc := newFakeClient()
	c := newClient(fc, "kitchen", "kitchen")
	daily := chart.Spec{Type: "daily", Title: "Daily"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.PublishTrend(daily, "Deaths", stats.Summary{Last: float64(i)}))
		}()
	}
	wg.Wait()

	assert.Len(t, c.trends, 1)
	assert.Equal(t, 1, fc.count("homeassistant/sensor/kitchen_daily_canvas_deaths_last/config"))
	assert.Equal(t, 1, fc.count("homeassistant/sensor/kitchen_daily_canvas_deaths_slope/config"))
	assert.Equal(t, 16, fc.count("covid-charts/kitchen/chart/daily-canvas/deaths/last"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "kitchen_daily_canvas_cases", slugify("Kitchen_daily-canvas_Cases"))
	assert.Equal(t, "a_b", slugify("--A  b--"))
	assert.Equal(t, "", slugify("---"))
}
