/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mikesmitty/covid-charts/pkg/covidcharts"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "covid-charts",
	Short: "Build case and death charts with moving average trend lines",
	Long: `covid-charts reads comma separated case, death and label series
(daily-cases, daily-deaths, daily-labels and their cumul-* counterparts)
and builds bar charts with moving average trend lines overlaid.

Charts are written as JSON to stdout, to --out-dir, and to an MQTT broker
when --mqtt-broker is set.`,
	Run: covidcharts.Render(),
}

var trendCmd = &cobra.Command{
	Use:   "trend VALUES",
	Short: "Print the moving average trend of comma separated values",
	Args:  cobra.ExactArgs(1),
	Run:   covidcharts.Trend(),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve charts over HTTP at /chart/{type}",
	Run:   covidcharts.Serve(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.covid-charts.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Int("window", 5, "moving average window in days")
	rootCmd.PersistentFlags().Int("shift", -1, "leading zero placeholders in trend lines (default ceil(window/2))")
	rootCmd.PersistentFlags().String("strategy", "plain", "trend strategy: plain or weighted")
	rootCmd.PersistentFlags().String("input", "fields.yaml", "file holding the comma separated series fields")

	rootCmd.Flags().String("out-dir", "", "write <canvas>.json files to this directory instead of stdout")
	rootCmd.Flags().String("mqtt-broker", "", "mqtt broker url")
	rootCmd.Flags().String("daily-scale", "linear", "y axis scale of the daily chart")
	rootCmd.Flags().String("cumul-scale", "logarithmic", "y axis scale of the cumulative chart")
	rootCmd.Flags().Bool("average", true, "overlay trend lines on the daily chart")

	trendCmd.Flags().Bool("strict", false, "fail on values that are not numbers instead of propagating NaN")

	serveCmd.Flags().String("addr", ":8080", "listen address")

	rootCmd.AddCommand(trendCmd, serveCmd)

	viper.BindPFlags(rootCmd.PersistentFlags())
	viper.BindPFlags(rootCmd.Flags())
	viper.BindPFlags(trendCmd.Flags())
	viper.BindPFlags(serveCmd.Flags())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".covid-charts" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".covid-charts")
	}

	// A missing .env is fine.
	_ = godotenv.Load(".env")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
