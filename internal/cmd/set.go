package cmd

import (
	"context"
	"fmt"
	"github.com/clambin/icomfort-monitor/internal/app"
	"github.com/clambin/icomfort-monitor/internal/climate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log/slog"
	"strings"
)

var setCmd = cobra.Command{
	Use:   "set",
	Short: "Change the thermostat's settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var req setRequest
		req.mode, _ = cmd.Flags().GetString("mode")
		req.fan, _ = cmd.Flags().GetString("fan")
		req.preset, _ = cmd.Flags().GetString("preset")
		req.aux, _ = cmd.Flags().GetString("aux")
		for name, target := range map[string]**float64{"temperature": &req.temperature, "low": &req.low, "high": &req.high} {
			if cmd.Flags().Changed(name) {
				value, _ := cmd.Flags().GetFloat64(name)
				*target = &value
			}
		}
		format, _ := cmd.Flags().GetString("format")

		e, err := app.NewEntity(cmd.Context(), viper.GetViper(), nil, slog.Default())
		if err != nil {
			return err
		}
		if err = req.apply(cmd.Context(), e); err != nil {
			return err
		}
		if err = e.Refresh(cmd.Context()); err != nil {
			return err
		}
		return writeState(cmd.OutOrStdout(), e.State(), format)
	},
}

func init() {
	setCmd.Flags().String("mode", "", "HVAC mode (off, heat, cool, heat_cool)")
	setCmd.Flags().String("fan", "", "Fan mode (auto, on, circulate)")
	setCmd.Flags().String("preset", "", "Preset (none, away)")
	setCmd.Flags().String("aux", "", "Aux heat (on, off)")
	setCmd.Flags().Float64("temperature", 0, "Target temperature")
	setCmd.Flags().Float64("low", 0, "Low target temperature (heat_cool mode)")
	setCmd.Flags().Float64("high", 0, "High target temperature (heat_cool mode)")
	setCmd.Flags().String("format", "yaml", "Output format (yaml or json)")
}

type setRequest struct {
	mode   string
	fan    string
	preset string
	aux    string

	temperature *float64
	low         *float64
	high        *float64
}

// apply executes the requested changes. Leaving away mode happens first and entering it happens last,
// so the other changes aren't ignored while the thermostat is away.
func (r setRequest) apply(ctx context.Context, e *climate.Entity) error {
	if r.preset == string(climate.PresetNone) {
		if err := e.SetPresetMode(ctx, climate.PresetNone); err != nil {
			return fmt.Errorf("preset: %w", err)
		}
		// away mode is only reported after the next pull
		if err := e.Refresh(ctx); err != nil {
			return err
		}
	}
	if r.mode != "" {
		if err := e.SetHVACMode(ctx, climate.HVACMode(r.mode)); err != nil {
			return fmt.Errorf("mode: %w", err)
		}
	}
	switch strings.ToLower(r.aux) {
	case "":
	case "on":
		if err := e.TurnAuxHeatOn(ctx); err != nil {
			return fmt.Errorf("aux: %w", err)
		}
	case "off":
		if err := e.TurnAuxHeatOff(ctx); err != nil {
			return fmt.Errorf("aux: %w", err)
		}
	default:
		return fmt.Errorf("aux %q: %w", r.aux, climate.ErrInvalidMode)
	}
	if r.fan != "" {
		if err := e.SetFanMode(ctx, climate.FanMode(r.fan)); err != nil {
			return fmt.Errorf("fan: %w", err)
		}
	}
	if r.temperature != nil || r.low != nil || r.high != nil {
		req := climate.TemperatureRequest{Temperature: r.temperature, Low: r.low, High: r.high}
		if err := e.SetTemperature(ctx, req); err != nil {
			return fmt.Errorf("temperature: %w", err)
		}
	}
	if r.preset != "" && r.preset != string(climate.PresetNone) {
		if err := e.SetPresetMode(ctx, climate.Preset(r.preset)); err != nil {
			return fmt.Errorf("preset: %w", err)
		}
	}
	return nil
}
