package cmd

import (
	"encoding/json"
	"fmt"
	"github.com/clambin/icomfort-monitor/internal/app"
	"github.com/clambin/icomfort-monitor/internal/climate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"io"
	"log/slog"
)

var statusCmd = cobra.Command{
	Use:   "status",
	Short: "Show the thermostat's state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		e, err := app.NewEntity(cmd.Context(), viper.GetViper(), nil, slog.Default())
		if err != nil {
			return err
		}
		return writeState(cmd.OutOrStdout(), e.State(), format)
	},
}

func init() {
	statusCmd.Flags().String("format", "yaml", "Output format (yaml or json)")
}

func writeState(w io.Writer, state climate.State, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(state); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	default:
		return fmt.Errorf("invalid format %q", format)
	}
}
