// Package climate presents one iComfort zone as a climate entity, using the vocabulary of Home Assistant.
//
// While the thermostat is in away mode, the entity ignores all commands except SetPresetMode:
// away mode set points can only be changed on the thermostat itself.
package climate

import (
	"context"
	"errors"
	"fmt"
	"github.com/clambin/icomfort-monitor/pkg/icomfort"
	"log/slog"
	"slices"
)

var (
	ErrInvalidMode        = errors.New("invalid mode")
	ErrInvalidTemperature = errors.New("invalid temperature request")
)

// Thermostat is the zone controlled by an Entity. It is implemented by *icomfort.Client.
type Thermostat interface {
	PullStatus(ctx context.Context) error
	Units() icomfort.TemperatureUnits
	OperatingMode() icomfort.OperatingMode
	FanMode() icomfort.FanMode
	ActivityState() icomfort.ActivityState
	AwayMode() bool
	SetPoints() (heat float64, cool float64)
	CurrentTemperature() float64
	CurrentHumidity() float64
	SetOperatingMode(ctx context.Context, mode icomfort.OperatingMode) error
	SetFanMode(ctx context.Context, mode icomfort.FanMode) error
	SetSetPoint(ctx context.Context, value float64) error
	SetSetPointRange(ctx context.Context, low float64, high float64) error
	SetAwayMode(ctx context.Context, away bool) error
}

var _ Thermostat = &icomfort.Client{}

type Config struct {
	Name string
	// MinTemp and MaxTemp override the default temperature range. nil uses the default.
	MinTemp *float64
	MaxTemp *float64
}

// Entity is a climate entity. Like the Thermostat it wraps, it is not safe for concurrent use.
type Entity struct {
	api     Thermostat
	name    string
	minTemp *float64
	maxTemp *float64
	logger  *slog.Logger
	ignored int
}

func New(api Thermostat, cfg Config, logger *slog.Logger) *Entity {
	return &Entity{
		api:     api,
		name:    cfg.Name,
		minTemp: cfg.MinTemp,
		maxTemp: cfg.MaxTemp,
		logger:  logger,
	}
}

// Refresh pulls the status of the zone.
func (e *Entity) Refresh(ctx context.Context) error {
	return e.api.PullStatus(ctx)
}

func (e *Entity) Name() string {
	return e.name
}

// TemperatureUnit returns the unit of all temperatures, as "°F" or "°C".
func (e *Entity) TemperatureUnit() string {
	if e.api.Units() == icomfort.Celsius {
		return "°C"
	}
	return "°F"
}

func (e *Entity) CurrentTemperature() float64 {
	return e.api.CurrentTemperature()
}

func (e *Entity) CurrentHumidity() float64 {
	return e.api.CurrentHumidity()
}

// TargetTemperature returns the target temperature in heat and cool mode. In any other mode, it returns nil.
func (e *Entity) TargetTemperature() *float64 {
	mode := e.api.OperatingMode()
	if !singleSetPointModes.Contains(mode) {
		return nil
	}
	heat, cool := e.api.SetPoints()
	target := min(heat, cool)
	if mode == icomfort.Cool {
		target = max(heat, cool)
	}
	return &target
}

// TargetTemperatureLow returns the lower bound of the target range in heat_cool mode. In any other mode, it returns nil.
func (e *Entity) TargetTemperatureLow() *float64 {
	if e.api.OperatingMode() != icomfort.HeatAndCool {
		return nil
	}
	heat, cool := e.api.SetPoints()
	low := min(heat, cool)
	return &low
}

// TargetTemperatureHigh returns the upper bound of the target range in heat_cool mode. In any other mode, it returns nil.
func (e *Entity) TargetTemperatureHigh() *float64 {
	if e.api.OperatingMode() != icomfort.HeatAndCool {
		return nil
	}
	heat, cool := e.api.SetPoints()
	high := max(heat, cool)
	return &high
}

func (e *Entity) HVACMode() HVACMode {
	return toHVACMode(e.api.OperatingMode())
}

func (e *Entity) HVACModes() []HVACMode {
	return slices.Clone(hvacModes)
}

func (e *Entity) HVACAction() HVACAction {
	return toHVACAction(e.api.ActivityState())
}

func (e *Entity) FanMode() FanMode {
	return toFanMode(e.api.FanMode())
}

func (e *Entity) FanModes() []FanMode {
	return slices.Clone(fanModes)
}

func (e *Entity) PresetMode() Preset {
	if e.api.AwayMode() {
		return PresetAway
	}
	return PresetNone
}

func (e *Entity) PresetModes() []Preset {
	return slices.Clone(presetModes)
}

// IsAuxHeat reports whether the thermostat is in auxiliary heat mode. HVACMode reports this mode as heat.
func (e *Entity) IsAuxHeat() bool {
	return e.api.OperatingMode() == icomfort.AuxHeat
}

func (e *Entity) SupportedFeatures() Feature {
	return supportedFeatures
}

// MinTemp returns the configured minimum temperature, or 7°C expressed in the entity's unit.
func (e *Entity) MinTemp() float64 {
	if e.minTemp != nil {
		return *e.minTemp
	}
	if e.api.Units() == icomfort.Celsius {
		return 7
	}
	return 44.6
}

// MaxTemp returns the configured maximum temperature, or 35°C expressed in the entity's unit.
func (e *Entity) MaxTemp() float64 {
	if e.maxTemp != nil {
		return *e.maxTemp
	}
	if e.api.Units() == icomfort.Celsius {
		return 35
	}
	return 95
}

// ExtraAttributes returns the vendor-specific attributes of the entity.
func (e *Entity) ExtraAttributes() map[string]any {
	return map[string]any{
		"system_waiting": e.api.ActivityState() == icomfort.Waiting,
	}
}

// CanWrite reports whether the entity accepts commands that change the thermostat's modes or set points.
// It returns false while the thermostat is in away mode.
func (e *Entity) CanWrite() bool {
	return !e.api.AwayMode()
}

// TemperatureRequest sets either a single target temperature or a target range.
type TemperatureRequest struct {
	Temperature *float64
	Low         *float64
	High        *float64
}

// SetTemperature sets the target temperature. Temperature is used in all modes except heat_cool.
// Otherwise, or if Temperature is not set, Low and High set the target range.
func (e *Entity) SetTemperature(ctx context.Context, req TemperatureRequest) error {
	if !e.CanWrite() {
		e.ignore("set temperature")
		return nil
	}
	mode := e.api.OperatingMode()
	if req.Temperature != nil && mode != icomfort.HeatAndCool {
		return e.api.SetSetPoint(ctx, *req.Temperature)
	}
	if req.Low == nil || req.High == nil {
		return fmt.Errorf("%s needs a low and high temperature: %w", toHVACMode(mode), ErrInvalidTemperature)
	}
	return e.api.SetSetPointRange(ctx, *req.Low, *req.High)
}

func (e *Entity) SetFanMode(ctx context.Context, mode FanMode) error {
	if !e.CanWrite() {
		e.ignore("set fan mode")
		return nil
	}
	fanMode, err := fromFanMode(mode)
	if err != nil {
		return err
	}
	return e.api.SetFanMode(ctx, fanMode)
}

func (e *Entity) SetHVACMode(ctx context.Context, mode HVACMode) error {
	if !e.CanWrite() {
		e.ignore("set hvac mode")
		return nil
	}
	operatingMode, err := fromHVACMode(mode)
	if err != nil {
		return err
	}
	return e.api.SetOperatingMode(ctx, operatingMode)
}

// SetPresetMode switches away mode on (PresetAway) or off (PresetNone). It is accepted in any state and
// always sends the request, even if the thermostat is already in the requested state.
func (e *Entity) SetPresetMode(ctx context.Context, preset Preset) error {
	switch preset {
	case PresetAway:
		return e.api.SetAwayMode(ctx, true)
	case PresetNone:
		return e.api.SetAwayMode(ctx, false)
	default:
		return fmt.Errorf("preset %q: %w", preset, ErrInvalidMode)
	}
}

func (e *Entity) TurnAuxHeatOn(ctx context.Context) error {
	if !e.CanWrite() {
		e.ignore("turn aux heat on")
		return nil
	}
	return e.api.SetOperatingMode(ctx, icomfort.AuxHeat)
}

// TurnAuxHeatOff switches the thermostat to plain heat mode.
func (e *Entity) TurnAuxHeatOff(ctx context.Context) error {
	if !e.CanWrite() {
		e.ignore("turn aux heat off")
		return nil
	}
	return e.api.SetOperatingMode(ctx, icomfort.Heat)
}

// Ignored returns the number of commands ignored because the thermostat was in away mode.
func (e *Entity) Ignored() int {
	return e.ignored
}

func (e *Entity) ignore(command string) {
	e.ignored++
	e.logger.Debug("away mode active. command ignored", slog.String("command", command))
}
