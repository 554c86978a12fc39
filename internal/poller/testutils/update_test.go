package testutils

import (
	"github.com/clambin/icomfort-monitor/internal/climate"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestUpdate(t *testing.T) {
	u := Update(WithRange(65, 78), WithAway(), WithAuxHeat(), WithFanMode(climate.FanModeOn))
	assert.Equal(t, climate.HVACModeHeatCool, u.State.HVACMode)
	assert.Nil(t, u.State.TargetTemperature)
	assert.Equal(t, 65.0, *u.State.TargetTemperatureLow)
	assert.Equal(t, 78.0, *u.State.TargetTemperatureHigh)
	assert.True(t, u.State.Away())
	assert.True(t, u.State.AuxHeat)
	assert.Equal(t, climate.FanModeOn, u.State.FanMode)

	u = Update(WithMode(climate.HVACModeCool, climate.HVACActionCooling), WithTarget(75))
	assert.Equal(t, climate.HVACModeCool, u.State.HVACMode)
	assert.Equal(t, 75.0, *u.State.TargetTemperature)
}
