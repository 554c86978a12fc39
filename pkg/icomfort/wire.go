package icomfort

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type systemsInfo struct {
	Systems []struct {
		GatewaySN string `json:"Gateway_SN"`
	} `json:"Systems"`
}

type statusInfo struct {
	TStatInfo []zoneStatus `json:"tStatInfo"`
}

type zoneStatus struct {
	SystemStatus   number `json:"System_Status"`
	OperationMode  number `json:"Operation_Mode"`
	FanMode        number `json:"Fan_Mode"`
	AwayMode       number `json:"Away_Mode"`
	IndoorTemp     number `json:"Indoor_Temp"`
	IndoorHumidity number `json:"Indoor_Humidity"`
	HeatSetPoint   number `json:"Heat_Set_Point"`
	CoolSetPoint   number `json:"Cool_Set_Point"`
	PrefTempUnits  number `json:"Pref_Temp_Units"`
}

func (z zoneStatus) snapshot() Snapshot {
	return Snapshot{
		OperatingMode:      OperatingMode(z.OperationMode.int()),
		FanMode:            FanMode(z.FanMode.int()),
		ActivityState:      ActivityState(z.SystemStatus.int()),
		AwayMode:           z.AwayMode.int() != 0,
		HeatSetPoint:       float64(z.HeatSetPoint),
		CoolSetPoint:       float64(z.CoolSetPoint),
		CurrentTemperature: float64(z.IndoorTemp),
		CurrentHumidity:    float64(z.IndoorHumidity),
		DeviceUnits:        TemperatureUnits(z.PrefTempUnits.int()),
	}
}

type settings struct {
	CoolSetPoint  float64       `json:"Cool_Set_Point"`
	HeatSetPoint  float64       `json:"Heat_Set_Point"`
	FanMode       FanMode       `json:"Fan_Mode"`
	OperationMode OperatingMode `json:"Operation_Mode"`
	PrefTempUnits string        `json:"Pref_Temp_Units"`
	ZoneNumber    int           `json:"Zone_Number"`
	GatewaySN     string        `json:"GatewaySN"`
}

// number decodes a JSON number that the service may also send as a string.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		data = []byte(s)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", string(data), err)
	}
	*n = number(f)
	return nil
}

func (n number) int() int {
	return int(n)
}
