package covidcharts

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikesmitty/covid-charts/pkg/chart"
	"github.com/mikesmitty/covid-charts/pkg/config"
	"github.com/mikesmitty/covid-charts/pkg/mqtt"
	"github.com/mikesmitty/covid-charts/pkg/series"
	"github.com/mikesmitty/covid-charts/pkg/stats"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

type trendPublisher interface {
	PublishTrend(spec chart.Spec, label string, s stats.Summary) error
}

// Render assembles the daily and cumulative charts and draws them on every
// configured surface.
func Render() func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := config.FromViper(viper.GetViper())
		errChk(err)
		slog.Debug("loaded config", "window", cfg.Window, "shift", cfg.Shift, "strategy", cfg.Strategy)

		src, err := series.LoadFile(viper.GetString("input"))
		errChk(err)

		var surfaces chart.MultiSurface
		if dir := viper.GetString("out-dir"); dir != "" {
			ds, err := chart.NewDirSurface(dir)
			errChk(err)
			surfaces = append(surfaces, ds)
		} else {
			surfaces = append(surfaces, chart.NewWriterSurface(os.Stdout))
		}

		var publisher trendPublisher
		if broker := viper.GetString("mqtt-broker"); broker != "" {
			mqttUrl, err := url.Parse(broker)
			errChk(err)
			mc := mqtt.NewClient(mqttUrl)
			errChk(mc.Connect())
			defer mc.Disconnect()
			errChk(mc.HomeAssistant())
			surfaces = append(surfaces, mc)
			publisher = mc
		}

		ctx, cancelFunc := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)
		defer cancelFunc()

		errChk(RenderAll(ctx, src, cfg, surfaces, publisher))
		slog.Info("charts rendered")
	}
}

// RenderAll renders each chart of Specs(cfg) concurrently. Charts share
// nothing but the source and the surface.
func RenderAll(ctx context.Context, src series.Source, cfg config.Config, surface chart.Surface, publisher trendPublisher) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, spec := range Specs(cfg) {
		g.Go(func() error {
			return renderChart(ctx, src, spec, surface, publisher)
		})
	}
	return g.Wait()
}

func renderChart(ctx context.Context, src series.Source, spec chart.Spec, surface chart.Surface, publisher trendPublisher) error {
	c, err := chart.Assemble(src, spec)
	if err != nil {
		return err
	}
	if err := surface.Render(ctx, spec.Canvas(), c); err != nil {
		return err
	}
	slog.Debug("chart rendered", "canvas", spec.Canvas(), "datasets", len(c.Data.Datasets))

	for _, label := range []string{"Cases", "Deaths"} {
		tr := c.Trend(label)
		if tr == nil {
			continue
		}
		s := stats.Summarize(tr, spec.Shift)
		slog.Info("trend", "chart", spec.Type, "series", label, "last", s.Last, "mean", s.Mean, "stddev", s.StdDev, "slope", s.Slope)
		if publisher == nil {
			continue
		}
		if err := publisher.PublishTrend(spec, label, s); err != nil {
			return err
		}
	}
	return nil
}

// Specs lays out the page: a linear daily chart with trend lines and a
// logarithmic cumulative chart without.
func Specs(cfg config.Config) []chart.Spec {
	return []chart.Spec{
		SpecFor("daily", cfg),
		SpecFor("cumul", cfg),
	}
}

func SpecFor(kind string, cfg config.Config) chart.Spec {
	s := chart.Spec{
		Type:     kind,
		Window:   cfg.Window,
		Shift:    cfg.Shift,
		Strategy: cfg.Strategy,
		Scale:    cfg.DailyScale,
		Average:  cfg.Average,
	}
	switch kind {
	case "daily":
		s.Title = "Daily"
	case "cumul":
		s.Title = "Cumulative"
		s.Scale = cfg.CumulScale
		s.Average = false
	}
	return s
}

func setupLogging() {
	slogOpts := slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if viper.GetBool("debug") {
		slogOpts.Level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slogOpts))
	slog.SetDefault(log)
}

func errChk(err error) {
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
