package mqtt

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/mikesmitty/covid-charts/pkg/chart"
	"github.com/mikesmitty/covid-charts/pkg/stats"
)

const publishTimeout = 5 * time.Second

type Client struct {
	client      paho.Client
	clientID    string
	topicPrefix string
	qos         byte
	retained    bool
	trends      map[string]TrendSensors
	mu          sync.Mutex
}

func NewClient(broker *url.URL) *Client {
	var urls []*url.URL
	urls = append(urls, broker)

	hostname, _ := os.Hostname()
	hostname = strings.Split(hostname, ".")[0]
	clientID := hostname
	if clientID == "" {
		now := time.Now().UnixNano()
		sum := md5.New().Sum([]byte(strconv.FormatInt(now, 10)))
		clientID = string(sum)
	}

	slog.Info("connecting to mqtt", "url", broker, "clientid", clientID)
	pc := paho.NewClient(&paho.ClientOptions{
		Servers:        urls,
		ClientID:       clientID,
		ConnectRetry:   true,
		ConnectTimeout: 30 * time.Second,
	})
	return newClient(pc, clientID, hostname)
}

func newClient(pc paho.Client, clientID, hostname string) *Client {
	return &Client{
		client:      pc,
		clientID:    clientID,
		topicPrefix: "covid-charts/" + hostname,
		qos:         1,
		retained:    true,
		trends:      make(map[string]TrendSensors),
	}
}

func (c *Client) Connect() error {
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		slog.Error("mqtt connection failed", "error", token.Error())
		return token.Error()
	}
	return nil
}

func (c *Client) Disconnect() {
	c.client.Disconnect(250)
}

func (c *Client) Subscribe(topic string, handler paho.MessageHandler) error {
	if token := c.client.Subscribe(topic, c.qos, handler); token.Wait() && token.Error() != nil {
		slog.Error("mqtt subscription failed", "error", token.Error())
		return token.Error()
	}
	return nil
}

func (c *Client) ChartTopic(canvas string) string {
	return c.topicPrefix + "/chart/" + canvas
}

// Render publishes the chart to <prefix>/chart/<canvas> and waits for the
// broker to acknowledge it.
func (c *Client) Render(ctx context.Context, canvas string, ch *chart.Chart) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", canvas, err)
	}
	topic := c.ChartTopic(canvas)
	slog.Debug("mqtt publishing chart", "canvas", canvas, "topic", topic, "bytes", len(payload), "module", "mqtt")
	t := c.client.Publish(topic, c.qos, c.retained, payload)

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return fmt.Errorf("publishing %s: %w", canvas, ctx.Err())
	}
}

// PublishTrend reports the latest value and slope of the trend line drawn
// over the label series of a chart. The sensors are registered and announced
// to Home Assistant the first time a chart and series pair is seen.
func (c *Client) PublishTrend(spec chart.Spec, label string, s stats.Summary) error {
	key := spec.Canvas() + "/" + label
	c.mu.Lock()
	sensors, ok := c.trends[key]
	if !ok {
		sensors = c.newTrendSensors(spec, label)
		c.trends[key] = sensors
	}
	c.mu.Unlock()

	if !ok {
		slog.Debug("registered trend sensors", "canvas", spec.Canvas(), "series", label, "module", "mqtt")
		if err := c.announce(sensors.Last); err != nil {
			return err
		}
		if err := c.announce(sensors.Slope); err != nil {
			return err
		}
	}
	c.Publish(sensors.Last.StateTopic, strconv.FormatFloat(s.Last, 'f', 2, 64))
	c.Publish(sensors.Slope.StateTopic, strconv.FormatFloat(s.Slope, 'f', 4, 64))
	return nil
}

func (p *Client) Publish(topic string, msg string) {
	t := p.client.Publish(topic, p.qos, p.retained, msg)
	go func() {
		_ = t.WaitTimeout(publishTimeout)
		if t.Error() != nil {
			slog.Error("mqtt message publish failed", "error", t.Error())
		}
	}()
}
