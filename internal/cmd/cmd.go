package cmd

import (
	"errors"
	"github.com/clambin/go-common/charmer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io"
	"log/slog"
	"os"
	"time"
)

var (
	configFilename string
	RootCmd        = cobra.Command{
		Use:   "icomfort",
		Short: "Utility for Lennox iComfort thermostats",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), viper.GetBool("debug")))
		},
	}
)

var args = charmer.Arguments{
	"debug":                charmer.Argument{Default: false, Help: "Log debug messages"},
	"icomfort.username":    charmer.Argument{Default: "", Help: "iComfort username"},
	"icomfort.password":    charmer.Argument{Default: "", Help: "iComfort password"},
	"icomfort.service":     charmer.Argument{Default: "lennox", Help: "iComfort cloud service (lennox or airease)"},
	"icomfort.url":         charmer.Argument{Default: "", Help: "iComfort service URL (overrides icomfort.service)"},
	"icomfort.system":      charmer.Argument{Default: 0, Help: "System index"},
	"icomfort.zone":        charmer.Argument{Default: 0, Help: "Zone index"},
	"icomfort.units":       charmer.Argument{Default: "F", Help: "Temperature units (F, C or device)"},
	"climate.name":         charmer.Argument{Default: "iComfort", Help: "Name of the thermostat"},
	"poller.interval":      charmer.Argument{Default: time.Minute, Help: "Poller interval"},
	"exporter.addr":        charmer.Argument{Default: ":9090", Help: "Address of Prometheus exporter"},
	"health.addr":          charmer.Argument{Default: ":8080", Help: "Address of /health endpoint"},
	"mqtt.broker":          charmer.Argument{Default: "", Help: "MQTT broker (mqtt bridge is disabled if empty)"},
	"mqtt.username":        charmer.Argument{Default: "", Help: "MQTT username"},
	"mqtt.password":        charmer.Argument{Default: "", Help: "MQTT password"},
	"mqtt.prefix":          charmer.Argument{Default: "icomfort", Help: "MQTT topic prefix"},
	"mqtt.discoveryPrefix": charmer.Argument{Default: "homeassistant", Help: "Home Assistant discovery prefix"},
	"slack.token":          charmer.Argument{Default: "", Help: "Slack token"},
	"slack.channel":        charmer.Argument{Default: "", Help: "Slack channel (all joined channels if empty)"},
}

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVar(&configFilename, "config", "", "Configuration file")
	if err := charmer.SetPersistentFlags(&RootCmd, viper.GetViper(), args); err != nil {
		panic("failed to set flags: " + err.Error())
	}
	// no defaults: an unset limit falls back to the default for the units
	for _, limit := range []string{"climate.minTemp", "climate.maxTemp"} {
		RootCmd.PersistentFlags().Float64(limit, 0, "Temperature limit (default for the units if not set)")
		if err := viper.BindPFlag(limit, RootCmd.PersistentFlags().Lookup(limit)); err != nil {
			panic("failed to bind flag: " + err.Error())
		}
	}
	RootCmd.AddCommand(&monitorCmd, &statusCmd, &setCmd)
}

func initConfig() {
	if configFilename != "" {
		viper.SetConfigFile(configFilename)
	} else {
		viper.AddConfigPath("/etc/icomfort-monitor/")
		viper.AddConfigPath("$HOME/.icomfort-monitor")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("ICOMFORT_MONITOR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// flags and environment variables are enough to run
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return
		}
		slog.Error("failed to read config file", "err", err)
		os.Exit(1)
	}
}

// newLogger sets up JSON logging. codeberg.org/clambin/go-common/charmer has SetJSONLogger for this, but the
// github.com module we use does not.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	var opts slog.HandlerOptions
	if debug {
		opts.Level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &opts))
}
