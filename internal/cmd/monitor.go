package cmd

import (
	"github.com/clambin/icomfort-monitor/internal/app"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

var monitorCmd = cobra.Command{
	Use:   "monitor",
	Short: "Export the thermostat's state to Prometheus and Home Assistant",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		m, err := app.New(ctx, viper.GetViper(), cmd.Root().Version, prometheus.DefaultRegisterer, slog.Default())
		if err != nil {
			return err
		}
		return m.Run(ctx)
	},
}
