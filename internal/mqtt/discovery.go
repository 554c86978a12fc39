package mqtt

import (
	"encoding/json"
	"github.com/clambin/icomfort-monitor/internal/climate"
	"strings"
)

// discoveryMsg is a Home Assistant MQTT discovery message.
type discoveryMsg struct {
	Topic   string
	Payload []byte
}

type haDevice struct {
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	Name         string   `json:"name"`
}

type haClimate struct {
	Name                         string   `json:"name"`
	UniqueID                     string   `json:"unique_id"`
	AvailabilityTopic            string   `json:"availability_topic"`
	TemperatureUnit              string   `json:"temperature_unit"`
	MinTemp                      float64  `json:"min_temp"`
	MaxTemp                      float64  `json:"max_temp"`
	Precision                    float64  `json:"precision"`
	Modes                        []string `json:"modes"`
	ModeStateTopic               string   `json:"mode_state_topic"`
	ModeStateTemplate            string   `json:"mode_state_template"`
	ModeCommandTopic             string   `json:"mode_command_topic"`
	ActionTopic                  string   `json:"action_topic"`
	ActionTemplate               string   `json:"action_template"`
	CurrentTemperatureTopic      string   `json:"current_temperature_topic"`
	CurrentTemperatureTemplate   string   `json:"current_temperature_template"`
	CurrentHumidityTopic         string   `json:"current_humidity_topic"`
	CurrentHumidityTemplate      string   `json:"current_humidity_template"`
	TemperatureStateTopic        string   `json:"temperature_state_topic"`
	TemperatureStateTemplate     string   `json:"temperature_state_template"`
	TemperatureCommandTopic      string   `json:"temperature_command_topic"`
	TemperatureLowStateTopic     string   `json:"temperature_low_state_topic"`
	TemperatureLowStateTemplate  string   `json:"temperature_low_state_template"`
	TemperatureLowCommandTopic   string   `json:"temperature_low_command_topic"`
	TemperatureHighStateTopic    string   `json:"temperature_high_state_topic"`
	TemperatureHighStateTemplate string   `json:"temperature_high_state_template"`
	TemperatureHighCommandTopic  string   `json:"temperature_high_command_topic"`
	FanModes                     []string `json:"fan_modes"`
	FanModeStateTopic            string   `json:"fan_mode_state_topic"`
	FanModeStateTemplate         string   `json:"fan_mode_state_template"`
	FanModeCommandTopic          string   `json:"fan_mode_command_topic"`
	PresetModes                  []string `json:"preset_modes"`
	PresetModeStateTopic         string   `json:"preset_mode_state_topic"`
	PresetModeValueTemplate      string   `json:"preset_mode_value_template"`
	PresetModeCommandTopic       string   `json:"preset_mode_command_topic"`
	JSONAttributesTopic          string   `json:"json_attributes_topic"`
	JSONAttributesTemplate       string   `json:"json_attributes_template"`
	Device                       haDevice `json:"device"`
}

type haSwitch struct {
	Name              string   `json:"name"`
	UniqueID          string   `json:"unique_id"`
	AvailabilityTopic string   `json:"availability_topic"`
	StateTopic        string   `json:"state_topic"`
	ValueTemplate     string   `json:"value_template"`
	CommandTopic      string   `json:"command_topic"`
	PayloadOn         string   `json:"payload_on"`
	PayloadOff        string   `json:"payload_off"`
	Icon              string   `json:"icon"`
	Device            haDevice `json:"device"`
}

// buildDiscovery returns the discovery messages for the climate entity and its aux heat switch.
func (b *Bridge) buildDiscovery(state climate.State) []discoveryMsg {
	device := haDevice{
		Identifiers:  []string{"icomfort_" + b.id},
		Manufacturer: "Lennox",
		Model:        "iComfort WiFi",
		Name:         state.Name,
	}
	stateTopic := b.topic("state")

	climateConfig, _ := json.Marshal(haClimate{
		Name:                         state.Name,
		UniqueID:                     "icomfort_" + b.id,
		AvailabilityTopic:            b.topic("availability"),
		TemperatureUnit:              strings.TrimPrefix(state.TemperatureUnit, "°"),
		MinTemp:                      state.MinTemp,
		MaxTemp:                      state.MaxTemp,
		Precision:                    precision(state.TemperatureUnit),
		Modes:                        toStrings(state.HVACModes),
		ModeStateTopic:               stateTopic,
		ModeStateTemplate:            "{{ value_json.hvac_mode }}",
		ModeCommandTopic:             b.commandTopic(cmdMode),
		ActionTopic:                  stateTopic,
		ActionTemplate:               "{{ value_json.hvac_action }}",
		CurrentTemperatureTopic:      stateTopic,
		CurrentTemperatureTemplate:   "{{ value_json.current_temperature }}",
		CurrentHumidityTopic:         stateTopic,
		CurrentHumidityTemplate:      "{{ value_json.current_humidity }}",
		TemperatureStateTopic:        stateTopic,
		TemperatureStateTemplate:     "{{ value_json.target_temperature }}",
		TemperatureCommandTopic:      b.commandTopic(cmdTemperature),
		TemperatureLowStateTopic:     stateTopic,
		TemperatureLowStateTemplate:  "{{ value_json.target_temperature_low }}",
		TemperatureLowCommandTopic:   b.commandTopic(cmdTemperatureLow),
		TemperatureHighStateTopic:    stateTopic,
		TemperatureHighStateTemplate: "{{ value_json.target_temperature_high }}",
		TemperatureHighCommandTopic:  b.commandTopic(cmdTemperatureHigh),
		FanModes:                     toStrings(state.FanModes),
		FanModeStateTopic:            stateTopic,
		FanModeStateTemplate:         "{{ value_json.fan_mode }}",
		FanModeCommandTopic:          b.commandTopic(cmdFanMode),
		// Home Assistant adds "none" itself
		PresetModes:             []string{string(climate.PresetAway)},
		PresetModeStateTopic:    stateTopic,
		PresetModeValueTemplate: "{{ value_json.preset_mode }}",
		PresetModeCommandTopic:  b.commandTopic(cmdPresetMode),
		JSONAttributesTopic:     stateTopic,
		JSONAttributesTemplate:  `{{ {"system_waiting": value_json.system_waiting} | tojson }}`,
		Device:                  device,
	})

	switchConfig, _ := json.Marshal(haSwitch{
		Name:              state.Name + " Aux Heat",
		UniqueID:          "icomfort_" + b.id + "_aux_heat",
		AvailabilityTopic: b.topic("availability"),
		StateTopic:        stateTopic,
		ValueTemplate:     "{{ 'ON' if value_json.aux_heat else 'OFF' }}",
		CommandTopic:      b.commandTopic(cmdAuxHeat),
		PayloadOn:         "ON",
		PayloadOff:        "OFF",
		Icon:              "mdi:fire-alert",
		Device:            device,
	})

	return []discoveryMsg{
		{Topic: b.cfg.DiscoveryPrefix + "/climate/icomfort_" + b.id + "/config", Payload: climateConfig},
		{Topic: b.cfg.DiscoveryPrefix + "/switch/icomfort_" + b.id + "/aux_heat/config", Payload: switchConfig},
	}
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = string(value)
	}
	return out
}

func precision(unit string) float64 {
	if unit == "°C" {
		return 0.5
	}
	return 1
}

// slug turns a name into a string that is safe to use in MQTT topics and Home Assistant IDs.
func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, name)
}
