package climate

import "log/slog"

// State is the complete reported state of an Entity.
type State struct {
	Name                  string     `json:"name" yaml:"name"`
	TemperatureUnit       string     `json:"temperature_unit" yaml:"temperature_unit"`
	CurrentTemperature    float64    `json:"current_temperature" yaml:"current_temperature"`
	CurrentHumidity       float64    `json:"current_humidity" yaml:"current_humidity"`
	TargetTemperature     *float64   `json:"target_temperature" yaml:"target_temperature"`
	TargetTemperatureLow  *float64   `json:"target_temperature_low" yaml:"target_temperature_low"`
	TargetTemperatureHigh *float64   `json:"target_temperature_high" yaml:"target_temperature_high"`
	MinTemp               float64    `json:"min_temp" yaml:"min_temp"`
	MaxTemp               float64    `json:"max_temp" yaml:"max_temp"`
	HVACMode              HVACMode   `json:"hvac_mode" yaml:"hvac_mode"`
	HVACModes             []HVACMode `json:"hvac_modes" yaml:"hvac_modes"`
	HVACAction            HVACAction `json:"hvac_action" yaml:"hvac_action"`
	FanMode               FanMode    `json:"fan_mode" yaml:"fan_mode"`
	FanModes              []FanMode  `json:"fan_modes" yaml:"fan_modes"`
	PresetMode            Preset     `json:"preset_mode" yaml:"preset_mode"`
	PresetModes           []Preset   `json:"preset_modes" yaml:"preset_modes"`
	AuxHeat               bool       `json:"aux_heat" yaml:"aux_heat"`
	SystemWaiting         bool       `json:"system_waiting" yaml:"system_waiting"`
	SupportedFeatures     Feature    `json:"supported_features" yaml:"supported_features"`
}

// State returns the current state of the entity.
func (e *Entity) State() State {
	waiting, _ := e.ExtraAttributes()["system_waiting"].(bool)
	return State{
		Name:                  e.Name(),
		TemperatureUnit:       e.TemperatureUnit(),
		CurrentTemperature:    e.CurrentTemperature(),
		CurrentHumidity:       e.CurrentHumidity(),
		TargetTemperature:     e.TargetTemperature(),
		TargetTemperatureLow:  e.TargetTemperatureLow(),
		TargetTemperatureHigh: e.TargetTemperatureHigh(),
		MinTemp:               e.MinTemp(),
		MaxTemp:               e.MaxTemp(),
		HVACMode:              e.HVACMode(),
		HVACModes:             e.HVACModes(),
		HVACAction:            e.HVACAction(),
		FanMode:               e.FanMode(),
		FanModes:              e.FanModes(),
		PresetMode:            e.PresetMode(),
		PresetModes:           e.PresetModes(),
		AuxHeat:               e.IsAuxHeat(),
		SystemWaiting:         waiting,
		SupportedFeatures:     e.SupportedFeatures(),
	}
}

// Away reports whether the thermostat is in away mode.
func (s State) Away() bool {
	return s.PresetMode == PresetAway
}

func (s State) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 8)
	attrs = append(attrs,
		slog.String("mode", string(s.HVACMode)),
		slog.String("action", string(s.HVACAction)),
		slog.String("fan", string(s.FanMode)),
		slog.String("preset", string(s.PresetMode)),
		slog.Float64("temperature", s.CurrentTemperature),
	)
	if s.TargetTemperature != nil {
		attrs = append(attrs, slog.Float64("target", *s.TargetTemperature))
	}
	if s.TargetTemperatureLow != nil && s.TargetTemperatureHigh != nil {
		attrs = append(attrs, slog.Float64("low", *s.TargetTemperatureLow), slog.Float64("high", *s.TargetTemperatureHigh))
	}
	return slog.GroupValue(attrs...)
}
