package icomfort

import (
	"fmt"
	"strings"
)

// TemperatureUnits is the unit in which the service renders and accepts temperatures.
type TemperatureUnits int

const (
	Fahrenheit TemperatureUnits = 0
	Celsius    TemperatureUnits = 1
)

func (u TemperatureUnits) String() string {
	switch u {
	case Fahrenheit:
		return "F"
	case Celsius:
		return "C"
	default:
		return fmt.Sprintf("Unknown(%d)", int(u))
	}
}

// UnitsPreference selects the TemperatureUnits used by a Client.
type UnitsPreference int

const (
	PreferFahrenheit UnitsPreference = iota
	PreferCelsius
	// TrackDeviceUnits uses whatever units the thermostat itself is configured for.
	TrackDeviceUnits
)

// ParseUnitsPreference parses "F", "C" or "device" (case-insensitive).
func ParseUnitsPreference(s string) (UnitsPreference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "f", "fahrenheit":
		return PreferFahrenheit, nil
	case "c", "celsius":
		return PreferCelsius, nil
	case "device", "track":
		return TrackDeviceUnits, nil
	default:
		return PreferFahrenheit, fmt.Errorf("invalid units preference %q", s)
	}
}

// OperatingMode is the thermostat's operating mode, in the service's numeric encoding.
type OperatingMode int

const (
	Off         OperatingMode = 0
	Heat        OperatingMode = 1
	Cool        OperatingMode = 2
	HeatAndCool OperatingMode = 3
	// AuxHeat is not part of the service's own enumeration. It is sent and received
	// as operating mode 4 by thermostats with auxiliary/emergency heat.
	AuxHeat OperatingMode = 4
)

func (m OperatingMode) String() string {
	switch m {
	case Off:
		return "Off"
	case Heat:
		return "Heat"
	case Cool:
		return "Cool"
	case HeatAndCool:
		return "HeatAndCool"
	case AuxHeat:
		return "AuxHeat"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// FanMode is the thermostat's fan mode.
type FanMode int

const (
	FanAuto      FanMode = 0
	FanOn        FanMode = 1
	FanCirculate FanMode = 2
)

func (m FanMode) String() string {
	switch m {
	case FanAuto:
		return "Auto"
	case FanOn:
		return "On"
	case FanCirculate:
		return "Circulate"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ActivityState is what the HVAC system is currently doing.
type ActivityState int

const (
	Idle    ActivityState = 0
	Heating ActivityState = 1
	Cooling ActivityState = 2
	// Waiting is reported by some firmware revisions between cycles.
	Waiting ActivityState = 3
)

func (s ActivityState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Heating:
		return "Heating"
	case Cooling:
		return "Cooling"
	case Waiting:
		return "Waiting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Snapshot is the status of one zone, as returned by the last successful PullStatus.
type Snapshot struct {
	OperatingMode      OperatingMode
	FanMode            FanMode
	ActivityState      ActivityState
	AwayMode           bool
	HeatSetPoint       float64
	CoolSetPoint       float64
	CurrentTemperature float64
	CurrentHumidity    float64
	// DeviceUnits are the units the thermostat is configured to display.
	DeviceUnits TemperatureUnits
}
