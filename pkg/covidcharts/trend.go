package covidcharts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mikesmitty/covid-charts/pkg/config"
	"github.com/mikesmitty/covid-charts/pkg/parse"
	"github.com/mikesmitty/covid-charts/pkg/trend"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Trend prints the trend line of the comma separated values given as the
// first argument.
func Trend() func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := config.FromViper(viper.GetViper())
		errChk(err)

		out, err := FormatTrend(args[0], trend.Builder{
			Window:   cfg.Window,
			Shift:    cfg.Shift,
			Strategy: cfg.Strategy,
			Strict:   viper.GetBool("strict"),
		})
		errChk(err)
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}
}

func FormatTrend(field string, b trend.Builder) (string, error) {
	values, err := b.Build(parse.Split(field))
	if err != nil {
		return "", err
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(out, ","), nil
}
