package poller

import (
	"fmt"
	"github.com/clambin/icomfort-monitor/internal/climate"
	"strings"
	"time"
)

// Update is the state of the entity, as published by the poller.
type Update struct {
	State     climate.State `json:"state"`
	Timestamp time.Time     `json:"timestamp"`
}

func summarize(state climate.State) string {
	parts := []string{
		"mode: " + string(state.HVACMode),
		"fan: " + string(state.FanMode),
	}
	if state.AuxHeat {
		parts = append(parts, "aux heat: on")
	}
	if state.TargetTemperature != nil {
		parts = append(parts, fmt.Sprintf("target: %.1f%s", *state.TargetTemperature, state.TemperatureUnit))
	}
	if state.TargetTemperatureLow != nil && state.TargetTemperatureHigh != nil {
		parts = append(parts, fmt.Sprintf("range: %.1f-%.1f%s", *state.TargetTemperatureLow, *state.TargetTemperatureHigh, state.TemperatureUnit))
	}
	if state.Away() {
		parts = append(parts, "away")
	}
	return strings.Join(parts, ", ")
}
