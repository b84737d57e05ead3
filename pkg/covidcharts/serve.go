package covidcharts

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mikesmitty/covid-charts/pkg/chart"
	"github.com/mikesmitty/covid-charts/pkg/config"
	"github.com/mikesmitty/covid-charts/pkg/series"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// Serve answers GET /chart/{type} with the chart JSON for that type, taking
// window, shift, strategy, scale and average from the query string.
func Serve() func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		setupLogging()

		src, err := series.LoadFile(viper.GetString("input"))
		errChk(err)

		srv := &http.Server{
			Addr:              viper.GetString("addr"),
			Handler:           NewHandler(src, config.Default()),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, cancelFunc := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)
		defer cancelFunc()
		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			slog.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			slog.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		errChk(g.Wait())
	}
}

// NewHandler serves charts built from src. Unset query parameters fall back
// to defaults, with the window defaulting to 5 and the shift to half of it.
func NewHandler(src series.Source, defaults config.Config) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /chart/{type}", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		cfg, err := config.FromQuery(q)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}
		cfg.DailyScale = defaults.DailyScale
		cfg.CumulScale = defaults.CumulScale
		cfg.Average = defaults.Average

		spec := SpecFor(r.PathValue("type"), cfg)
		if q.Has("scale") {
			spec.Scale = q.Get("scale")
		}
		if err := config.ValidScale(spec.Scale); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}
		if q.Has("average") {
			spec.Average, err = strconv.ParseBool(q.Get("average"))
			if err != nil {
				jsonError(w, http.StatusBadRequest, err)
				return
			}
		}

		c, err := chart.Assemble(src, spec)
		switch {
		case errors.Is(err, series.ErrMissingField):
			jsonError(w, http.StatusNotFound, err)
			return
		case err != nil:
			jsonError(w, http.StatusInternalServerError, err)
			return
		}
		slog.Debug("serving chart", "canvas", spec.Canvas(), "window", spec.Window, "shift", spec.Shift, "strategy", spec.Strategy)
		jsonResponse(w, http.StatusOK, chart.Document{Canvas: spec.Canvas(), Chart: c})
	})
	return mux
}

func jsonError(w http.ResponseWriter, status int, err error) {
	slog.Debug("request failed", "status", status, "error", err)
	jsonResponse(w, status, map[string]string{"error": err.Error()})
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}
