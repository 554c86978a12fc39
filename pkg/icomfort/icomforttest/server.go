// Package icomforttest provides a fake iComfort service for testing.
package icomforttest

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// Zone is the state of one zone. Temperatures are in degrees Fahrenheit.
type Zone struct {
	SystemStatus   int
	OperationMode  int
	FanMode        int
	AwayMode       int
	IndoorTemp     float64
	IndoorHumidity float64
	HeatSetPoint   float64
	CoolSetPoint   float64
	// PrefTempUnits are the units the thermostat displays: 0 is Fahrenheit, 1 is Celsius
	PrefTempUnits int
}

// System is a system registered to the account.
type System struct {
	SerialNumber string
	Zones        []Zone
}

// Settings is a settings push received by the server.
type Settings struct {
	CoolSetPoint  float64 `json:"Cool_Set_Point"`
	HeatSetPoint  float64 `json:"Heat_Set_Point"`
	FanMode       int     `json:"Fan_Mode"`
	OperationMode int     `json:"Operation_Mode"`
	PrefTempUnits string  `json:"Pref_Temp_Units"`
	ZoneNumber    int     `json:"Zone_Number"`
	GatewaySN     string  `json:"GatewaySN"`
}

// Endpoints of the iComfort service
const (
	GetSystemsInfo   = "GetSystemsInfo"
	GetTStatInfoList = "GetTStatInfoList"
	SetTStatInfo     = "SetTStatInfo"
	SetAwayModeNew   = "SetAwayModeNew"
)

// Server is a fake iComfort service. Accepted settings and away mode changes are applied to the server's zones,
// so they are reported on the next status request.
type Server struct {
	*httptest.Server
	username  string
	password  string
	lock      sync.Mutex
	systems   []System
	failures  map[string]int
	calls     map[string]int
	settings  []Settings
	awayModes []int
}

// NewServer starts a fake service, accepting the provided credentials.
func NewServer(username, password string, systems ...System) *Server {
	s := Server{
		username: username,
		password: password,
		systems:  systems,
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
	m := http.NewServeMux()
	m.HandleFunc("GET /"+GetSystemsInfo, s.getSystemsInfo)
	m.HandleFunc("GET /"+GetTStatInfoList, s.getTStatInfoList)
	m.HandleFunc("PUT /"+SetTStatInfo, s.setTStatInfo)
	m.HandleFunc("PUT /"+SetAwayModeNew, s.setAwayModeNew)
	s.Server = httptest.NewServer(s.authenticate(m))
	return &s
}

// Fail makes all subsequent calls to endpoint fail with statusCode. A statusCode of zero clears the failure.
func (s *Server) Fail(endpoint string, statusCode int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if statusCode == 0 {
		delete(s.failures, endpoint)
		return
	}
	s.failures[endpoint] = statusCode
}

// Calls returns the number of calls received for endpoint, including failed ones.
func (s *Server) Calls(endpoint string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls[endpoint]
}

// Settings returns all settings pushes received so far.
func (s *Server) Settings() []Settings {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Settings(nil), s.settings...)
}

// AwayModes returns the value of every away mode request received so far.
func (s *Server) AwayModes() []int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]int(nil), s.awayModes...)
}

// Zone returns the current state of a zone.
func (s *Server) Zone(system, zone int) Zone {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.systems[system].Zones[zone]
}

// SetZone replaces the state of a zone.
func (s *Server) SetZone(system, zone int, state Zone) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.systems[system].Zones[zone] = state
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if username, password, ok := r.BasicAuth(); !ok || username != s.username || password != s.password {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		endpoint := r.URL.Path[1:]
		s.lock.Lock()
		s.calls[endpoint]++
		statusCode, fail := s.failures[endpoint]
		s.lock.Unlock()
		if fail {
			http.Error(w, "failure injected", statusCode)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getSystemsInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("UserId") != s.username {
		http.Error(w, "invalid user", http.StatusForbidden)
		return
	}
	type system struct {
		GatewaySN string `json:"Gateway_SN"`
	}
	var response struct {
		Systems []system `json:"Systems"`
	}
	s.lock.Lock()
	for _, sys := range s.systems {
		response.Systems = append(response.Systems, system{GatewaySN: sys.SerialNumber})
	}
	s.lock.Unlock()
	writeJSON(w, response)
}

func (s *Server) getTStatInfoList(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	index, ok := s.findSystem(r.URL.Query().Get("gatewaysn"))
	if !ok {
		http.Error(w, "unknown gateway", http.StatusNotFound)
		return
	}
	celsius := r.URL.Query().Get("TempUnit") == "1"

	type zoneStatus struct {
		SystemStatus   int     `json:"System_Status"`
		OperationMode  int     `json:"Operation_Mode"`
		FanMode        int     `json:"Fan_Mode"`
		AwayMode       int     `json:"Away_Mode"`
		IndoorTemp     float64 `json:"Indoor_Temp"`
		IndoorHumidity float64 `json:"Indoor_Humidity"`
		HeatSetPoint   float64 `json:"Heat_Set_Point"`
		CoolSetPoint   float64 `json:"Cool_Set_Point"`
		PrefTempUnits  string  `json:"Pref_Temp_Units"`
	}
	var response struct {
		TStatInfo []zoneStatus `json:"tStatInfo"`
	}
	for _, z := range s.systems[index].Zones {
		response.TStatInfo = append(response.TStatInfo, zoneStatus{
			SystemStatus:   z.SystemStatus,
			OperationMode:  z.OperationMode,
			FanMode:        z.FanMode,
			AwayMode:       z.AwayMode,
			IndoorTemp:     render(z.IndoorTemp, celsius),
			IndoorHumidity: z.IndoorHumidity,
			HeatSetPoint:   render(z.HeatSetPoint, celsius),
			CoolSetPoint:   render(z.CoolSetPoint, celsius),
			PrefTempUnits:  strconv.Itoa(z.PrefTempUnits),
		})
	}
	writeJSON(w, response)
}

func (s *Server) setTStatInfo(w http.ResponseWriter, r *http.Request) {
	var settings Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.settings = append(s.settings, settings)
	index, ok := s.findSystem(settings.GatewaySN)
	if !ok || settings.ZoneNumber < 0 || settings.ZoneNumber >= len(s.systems[index].Zones) {
		http.Error(w, "unknown zone", http.StatusNotFound)
		return
	}
	celsius := settings.PrefTempUnits == "1"
	z := &s.systems[index].Zones[settings.ZoneNumber]
	z.HeatSetPoint = parse(settings.HeatSetPoint, celsius)
	z.CoolSetPoint = parse(settings.CoolSetPoint, celsius)
	z.FanMode = settings.FanMode
	z.OperationMode = settings.OperationMode
	w.WriteHeader(http.StatusOK)
}

func (s *Server) setAwayModeNew(w http.ResponseWriter, r *http.Request) {
	awayMode, err := strconv.Atoi(r.URL.Query().Get("awaymode"))
	if err != nil {
		http.Error(w, "invalid away mode", http.StatusBadRequest)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.awayModes = append(s.awayModes, awayMode)
	index, ok := s.findSystem(r.URL.Query().Get("gatewaysn"))
	if !ok {
		http.Error(w, "unknown gateway", http.StatusNotFound)
		return
	}
	for i := range s.systems[index].Zones {
		s.systems[index].Zones[i].AwayMode = awayMode
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) findSystem(serialNumber string) (int, bool) {
	for i, sys := range s.systems {
		if sys.SerialNumber == serialNumber {
			return i, true
		}
	}
	return 0, false
}

func render(fahrenheit float64, celsius bool) float64 {
	if !celsius {
		return fahrenheit
	}
	return math.Round((fahrenheit-32)*5/9*2) / 2
}

func parse(value float64, celsius bool) float64 {
	if !celsius {
		return value
	}
	return math.Round(value*9/5 + 32)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
