package collector

import (
	"context"
	"github.com/clambin/icomfort-monitor/internal/poller"
	"github.com/prometheus/client_golang/prometheus"
	"log/slog"
	"strings"
	"sync"
)

var (
	icomfortZoneTemperature = prometheus.NewDesc(
		prometheus.BuildFQName("icomfort", "zone", "temperature"),
		"Current temperature of this zone. Label unit specifies the unit",
		[]string{"name", "unit"},
		nil,
	)
	icomfortZoneHumidityPercentage = prometheus.NewDesc(
		prometheus.BuildFQName("icomfort", "zone", "humidity_percentage"),
		"Current humidity percentage in this zone",
		[]string{"name"},
		nil,
	)
	icomfortZoneTargetTemperature = prometheus.NewDesc(
		prometheus.BuildFQName("icomfort", "zone", "target_temperature"),
		"Target temperature of this zone. Label bound is single in heat or cool mode, low or high in heat_cool mode",
		[]string{"name", "unit", "bound"},
		nil,
	)
	icomfortZoneHVACMode = prometheus.NewDesc(
		prometheus.BuildFQName("icomfort", "zone", "hvac_mode"),
		"HVAC mode of this zone. Always one. Label mode specifies the mode",
		[]string{"name", "mode"},
		nil,
	)
	icomfortZoneHVACAction = prometheus.NewDesc(
		prometheus.BuildFQName("icomfort", "zone", "hvac_action"),
		"Current action of the HVAC system. Always one. Label action specifies the action",
		[]string{"name", "action"},
		nil,
	)
	icomfortZoneFanMode = prometheus.NewDesc(
		prometheus.BuildFQName("icomfort", "zone", "fan_mode"),
		"Fan mode of this zone. Always one. Label mode specifies the mode",
		[]string{"name", "mode"},
		nil,
	)
	icomfortZoneAway = prometheus.NewDesc(
		prometheus.BuildFQName("icomfort", "zone", "away"),
		"1 if the thermostat is in away mode",
		[]string{"name"},
		nil,
	)
	icomfortZoneAuxHeat = prometheus.NewDesc(
		prometheus.BuildFQName("icomfort", "zone", "aux_heat"),
		"1 if the thermostat is in auxiliary heat mode",
		[]string{"name"},
		nil,
	)
)

var _ prometheus.Collector = &Collector{}

// Collector exposes the last state published by the Poller as Prometheus metrics.
type Collector struct {
	Poller     poller.Poller
	Logger     *slog.Logger
	lock       sync.RWMutex
	lastUpdate *poller.Update
}

func (c *Collector) Run(ctx context.Context) error {
	c.Logger.Debug("started")
	defer c.Logger.Debug("stopped")

	ch := c.Poller.Subscribe()
	defer c.Poller.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-ch:
			c.process(update)
		}
	}
}

func (c *Collector) process(update poller.Update) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.lastUpdate = &update
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- icomfortZoneTemperature
	ch <- icomfortZoneHumidityPercentage
	ch <- icomfortZoneTargetTemperature
	ch <- icomfortZoneHVACMode
	ch <- icomfortZoneHVACAction
	ch <- icomfortZoneFanMode
	ch <- icomfortZoneAway
	ch <- icomfortZoneAuxHeat
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.lastUpdate == nil {
		return
	}

	state := c.lastUpdate.State
	unit := strings.TrimPrefix(state.TemperatureUnit, "°")

	ch <- prometheus.MustNewConstMetric(icomfortZoneTemperature, prometheus.GaugeValue, state.CurrentTemperature, state.Name, unit)
	ch <- prometheus.MustNewConstMetric(icomfortZoneHumidityPercentage, prometheus.GaugeValue, state.CurrentHumidity, state.Name)
	if state.TargetTemperature != nil {
		ch <- prometheus.MustNewConstMetric(icomfortZoneTargetTemperature, prometheus.GaugeValue, *state.TargetTemperature, state.Name, unit, "single")
	}
	if state.TargetTemperatureLow != nil {
		ch <- prometheus.MustNewConstMetric(icomfortZoneTargetTemperature, prometheus.GaugeValue, *state.TargetTemperatureLow, state.Name, unit, "low")
	}
	if state.TargetTemperatureHigh != nil {
		ch <- prometheus.MustNewConstMetric(icomfortZoneTargetTemperature, prometheus.GaugeValue, *state.TargetTemperatureHigh, state.Name, unit, "high")
	}
	ch <- prometheus.MustNewConstMetric(icomfortZoneHVACMode, prometheus.GaugeValue, 1, state.Name, string(state.HVACMode))
	ch <- prometheus.MustNewConstMetric(icomfortZoneHVACAction, prometheus.GaugeValue, 1, state.Name, string(state.HVACAction))
	ch <- prometheus.MustNewConstMetric(icomfortZoneFanMode, prometheus.GaugeValue, 1, state.Name, string(state.FanMode))
	ch <- prometheus.MustNewConstMetric(icomfortZoneAway, prometheus.GaugeValue, boolValue(state.Away()), state.Name)
	ch <- prometheus.MustNewConstMetric(icomfortZoneAuxHeat, prometheus.GaugeValue, boolValue(state.AuxHeat), state.Name)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
