package climate

import (
	"fmt"
	"github.com/clambin/go-common/set"
	"github.com/clambin/icomfort-monitor/pkg/icomfort"
)

// HVACMode is the operating mode, as reported to the host.
type HVACMode string

const (
	HVACModeOff      HVACMode = "off"
	HVACModeHeat     HVACMode = "heat"
	HVACModeCool     HVACMode = "cool"
	HVACModeHeatCool HVACMode = "heat_cool"
)

// HVACAction is what the system is currently doing, as reported to the host.
type HVACAction string

const (
	HVACActionIdle    HVACAction = "idle"
	HVACActionHeating HVACAction = "heating"
	HVACActionCooling HVACAction = "cooling"
)

type FanMode string

const (
	FanModeAuto      FanMode = "auto"
	FanModeOn        FanMode = "on"
	FanModeCirculate FanMode = "circulate"
)

type Preset string

const (
	PresetNone Preset = "none"
	PresetAway Preset = "away"
)

var (
	hvacModes   = []HVACMode{HVACModeOff, HVACModeHeat, HVACModeCool, HVACModeHeatCool}
	fanModes    = []FanMode{FanModeAuto, FanModeOn, FanModeCirculate}
	presetModes = []Preset{PresetNone, PresetAway}

	// modes that have one target temperature
	singleSetPointModes = set.New(icomfort.Heat, icomfort.Cool, icomfort.AuxHeat)
)

// toHVACMode never fails: AuxHeat is reported as heat and unknown modes as off.
func toHVACMode(mode icomfort.OperatingMode) HVACMode {
	switch mode {
	case icomfort.Heat, icomfort.AuxHeat:
		return HVACModeHeat
	case icomfort.Cool:
		return HVACModeCool
	case icomfort.HeatAndCool:
		return HVACModeHeatCool
	default:
		return HVACModeOff
	}
}

func fromHVACMode(mode HVACMode) (icomfort.OperatingMode, error) {
	switch mode {
	case HVACModeOff:
		return icomfort.Off, nil
	case HVACModeHeat:
		return icomfort.Heat, nil
	case HVACModeCool:
		return icomfort.Cool, nil
	case HVACModeHeatCool:
		return icomfort.HeatAndCool, nil
	default:
		return icomfort.Off, fmt.Errorf("hvac mode %q: %w", mode, ErrInvalidMode)
	}
}

// toHVACAction never fails: Waiting and unknown states are reported as idle.
func toHVACAction(state icomfort.ActivityState) HVACAction {
	switch state {
	case icomfort.Heating:
		return HVACActionHeating
	case icomfort.Cooling:
		return HVACActionCooling
	default:
		return HVACActionIdle
	}
}

func toFanMode(mode icomfort.FanMode) FanMode {
	switch mode {
	case icomfort.FanOn:
		return FanModeOn
	case icomfort.FanCirculate:
		return FanModeCirculate
	default:
		return FanModeAuto
	}
}

func fromFanMode(mode FanMode) (icomfort.FanMode, error) {
	switch mode {
	case FanModeAuto:
		return icomfort.FanAuto, nil
	case FanModeOn:
		return icomfort.FanOn, nil
	case FanModeCirculate:
		return icomfort.FanCirculate, nil
	default:
		return icomfort.FanAuto, fmt.Errorf("fan mode %q: %w", mode, ErrInvalidMode)
	}
}

// Feature is a capability flag, using Home Assistant's climate entity values.
type Feature int

const (
	FeatureTargetTemperature      Feature = 1
	FeatureTargetTemperatureRange Feature = 2
	FeatureFanMode                Feature = 8
	FeaturePresetMode             Feature = 16
	FeatureAuxHeat                Feature = 64
)

const supportedFeatures = FeatureTargetTemperature | FeatureTargetTemperatureRange | FeatureFanMode | FeaturePresetMode | FeatureAuxHeat

// Has reports whether all flags of f2 are set in f.
func (f Feature) Has(f2 Feature) bool {
	return f&f2 == f2
}
