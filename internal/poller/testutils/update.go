package testutils

import (
	"github.com/clambin/icomfort-monitor/internal/climate"
	"github.com/clambin/icomfort-monitor/internal/poller"
	"time"
)

// Update returns a poller.Update for a zone named "home" in heat mode, in degrees Fahrenheit. Options modify the state.
func Update(options ...UpdateOption) poller.Update {
	u := poller.Update{
		State: climate.State{
			Name:               "home",
			TemperatureUnit:    "°F",
			CurrentTemperature: 68,
			CurrentHumidity:    45,
			TargetTemperature:  VarP(70.0),
			MinTemp:            44.6,
			MaxTemp:            95,
			HVACMode:           climate.HVACModeHeat,
			HVACModes:          []climate.HVACMode{climate.HVACModeOff, climate.HVACModeHeat, climate.HVACModeCool, climate.HVACModeHeatCool},
			HVACAction:         climate.HVACActionHeating,
			FanMode:            climate.FanModeAuto,
			FanModes:           []climate.FanMode{climate.FanModeAuto, climate.FanModeOn, climate.FanModeCirculate},
			PresetMode:         climate.PresetNone,
			PresetModes:        []climate.Preset{climate.PresetNone, climate.PresetAway},
			SupportedFeatures:  91,
		},
		Timestamp: time.Date(2024, time.December, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, option := range options {
		option(&u)
	}
	return u
}

type UpdateOption func(*poller.Update)

func WithMode(mode climate.HVACMode, action climate.HVACAction) UpdateOption {
	return func(u *poller.Update) {
		u.State.HVACMode = mode
		u.State.HVACAction = action
	}
}

// WithTarget sets a single target temperature.
func WithTarget(target float64) UpdateOption {
	return func(u *poller.Update) {
		u.State.TargetTemperature = VarP(target)
		u.State.TargetTemperatureLow = nil
		u.State.TargetTemperatureHigh = nil
	}
}

// WithRange switches to heat_cool mode with the given target range.
func WithRange(low, high float64) UpdateOption {
	return func(u *poller.Update) {
		u.State.HVACMode = climate.HVACModeHeatCool
		u.State.TargetTemperature = nil
		u.State.TargetTemperatureLow = VarP(low)
		u.State.TargetTemperatureHigh = VarP(high)
	}
}

func WithAway() UpdateOption {
	return func(u *poller.Update) {
		u.State.PresetMode = climate.PresetAway
	}
}

func WithAuxHeat() UpdateOption {
	return func(u *poller.Update) {
		u.State.AuxHeat = true
	}
}

func WithFanMode(mode climate.FanMode) UpdateOption {
	return func(u *poller.Update) {
		u.State.FanMode = mode
	}
}

func VarP[T any](v T) *T {
	return &v
}
