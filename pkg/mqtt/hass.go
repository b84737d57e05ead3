package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/mikesmitty/covid-charts/pkg/chart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const hassStatusTopic = "homeassistant/status"

type HassSensor struct {
	configTopic       string
	Name              string     `json:"name"`
	UniqueID          string     `json:"unique_id"`
	Device            HassDevice `json:"device,omitempty"`
	StateClass        string     `json:"state_class,omitempty"`
	StateTopic        string     `json:"state_topic"`
	UnitOfMeasurement string     `json:"unit_of_measurement,omitempty"`
	Icon              string     `json:"icon,omitempty"`
}

type HassDevice struct {
	Name        string   `json:"name,omitempty"`
	Identifiers []string `json:"identifiers,omitempty"`
	Model       string   `json:"model,omitempty"`
}

// TrendSensors are the two sensors describing one trend line of a chart.
type TrendSensors struct {
	Last  HassSensor
	Slope HassSensor
}

// HomeAssistant re-announces every trend sensor whenever Home Assistant comes
// back online.
func (c *Client) HomeAssistant() error {
	return c.Subscribe(hassStatusTopic, func(client paho.Client, msg paho.Message) {
		payload := string(msg.Payload())
		slog.Info("homeassistant status watcher", "status", payload)
		if payload == "online" {
			c.announceAll()
		}
	})
}

func (c *Client) announceAll() {
	c.mu.Lock()
	sensors := make([]HassSensor, 0, 2*len(c.trends))
	for _, t := range c.trends {
		sensors = append(sensors, t.Last, t.Slope)
	}
	c.mu.Unlock()

	slog.Info("announcing homeassistant sensors", "count", len(sensors))
	for _, sensor := range sensors {
		if err := c.announce(sensor); err != nil {
			slog.Error("homeassistant announce failed", "sensor", sensor.UniqueID, "error", err, "module", "mqtt")
		}
	}
}

// newTrendSensors derives names, IDs and state topics from the chart canvas,
// so the same series on two charts never shares a sensor.
// State is published under <prefix>/chart/<canvas>/<series>/{last,slope}.
func (c *Client) newTrendSensors(spec chart.Spec, label string) TrendSensors {
	title := spec.Title
	if title == "" {
		title = cases.Title(language.English).String(spec.Type)
	}
	device := HassDevice{
		Name:        cases.Title(language.English).String(c.clientID),
		Identifiers: []string{slugify(c.clientID)},
		Model:       "covid-charts",
	}
	base := c.ChartTopic(spec.Canvas()) + "/" + slugify(label)
	id := slugify(c.clientID + "_" + spec.Canvas() + "_" + label)

	last := HassSensor{
		Name:              fmt.Sprintf("%s %s Trend", title, label),
		UniqueID:          id + "_last",
		Device:            device,
		StateClass:        "measurement",
		StateTopic:        base + "/last",
		UnitOfMeasurement: "people",
		Icon:              "mdi:account-group",
	}
	slope := HassSensor{
		Name:       fmt.Sprintf("%s %s Trend Slope", title, label),
		UniqueID:   id + "_slope",
		Device:     device,
		StateClass: "measurement",
		StateTopic: base + "/slope",
		Icon:       "mdi:chart-line",
	}
	last.configTopic = "homeassistant/sensor/" + last.UniqueID + "/config"
	slope.configTopic = "homeassistant/sensor/" + slope.UniqueID + "/config"
	return TrendSensors{Last: last, Slope: slope}
}

func (c *Client) announce(sensor HassSensor) error {
	payload, err := json.Marshal(sensor)
	if err != nil {
		return fmt.Errorf("encoding sensor %s: %w", sensor.UniqueID, err)
	}
	c.Publish(sensor.configTopic, string(payload))
	return nil
}

// slugify lower-cases s and turns every run of characters that are not
// letters or digits into a single underscore.
func slugify(s string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			sep = false
			continue
		}
		sep = true
	}
	return b.String()
}
