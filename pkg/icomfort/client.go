// Package icomfort provides a client for the Lennox iComfort WiFi thermostat cloud service.
//
// A Client is bound to one zone of one system registered to the account:
//
//	c, err := icomfort.New(ctx, icomfort.Config{
//		Username: "your-username",
//		Password: "your-password",
//	})
//
// New resolves the system's gateway serial number and pulls the zone's status. Afterwards,
// the getters report the status of the last successful PullStatus. The setters update the
// local status and push the complete settings of the zone to the service.
//
// A Client is not safe for concurrent use. Callers must serialize calls to a Client.
package icomfort

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Config contains the parameters for New.
type Config struct {
	Username string
	Password string
	// URL of the iComfort service. Defaults to DefaultURL.
	URL string
	// SystemIndex selects the system, in the order the account's systems are reported by the service.
	SystemIndex int
	// ZoneIndex selects the zone within the system.
	ZoneIndex int
	Units     UnitsPreference
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the http.Client used to call the service.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger. By default, the client doesn't log.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client monitors and controls one zone of an iComfort system.
type Client struct {
	httpClient   *http.Client
	logger       *slog.Logger
	baseURL      *url.URL
	username     string
	password     string
	systemIndex  int
	zoneIndex    int
	serialNumber string
	units        TemperatureUnits
	snapshot     Snapshot
}

// New connects to the iComfort service and pulls the status of the configured zone.
// Any failure is returned as a *ConnectionError.
//
// If cfg.Units is TrackDeviceUnits, New pulls the status a second time, in the units reported by the
// thermostat during the first pull. The selected units are fixed for the lifetime of the Client.
func New(ctx context.Context, cfg Config, options ...Option) (*Client, error) {
	rawURL := cfg.URL
	if rawURL == "" {
		rawURL = DefaultURL
	}
	if !strings.HasSuffix(rawURL, "/") {
		rawURL += "/"
	}
	baseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("invalid url: %w", err)}
	}

	c := Client{
		httpClient:  &http.Client{},
		logger:      slog.New(discardHandler{}),
		baseURL:     baseURL,
		username:    cfg.Username,
		password:    cfg.Password,
		systemIndex: cfg.SystemIndex,
		zoneIndex:   cfg.ZoneIndex,
	}
	for _, option := range options {
		option(&c)
	}
	if cfg.Units == PreferCelsius {
		c.units = Celsius
	}

	if c.serialNumber, err = c.getSerialNumber(ctx); err != nil {
		return nil, &ConnectionError{Err: err}
	}
	if err = c.PullStatus(ctx); err != nil {
		return nil, &ConnectionError{Err: err}
	}
	if cfg.Units == TrackDeviceUnits {
		c.units = c.snapshot.DeviceUnits
		if err = c.PullStatus(ctx); err != nil {
			return nil, &ConnectionError{Err: err}
		}
	}
	c.logger.Debug("connected",
		slog.String("serial", c.serialNumber),
		slog.Int("system", c.systemIndex),
		slog.Int("zone", c.zoneIndex),
		slog.String("units", c.units.String()),
	)
	return &c, nil
}

func (c *Client) getSerialNumber(ctx context.Context) (string, error) {
	var systems systemsInfo
	if err := c.call(ctx, "get systems", http.MethodGet, "GetSystemsInfo", url.Values{"UserId": {c.username}}, nil, &systems); err != nil {
		return "", err
	}
	if c.systemIndex < 0 || c.systemIndex >= len(systems.Systems) {
		return "", fmt.Errorf("system index %d out of range: account has %d system(s)", c.systemIndex, len(systems.Systems))
	}
	return systems.Systems[c.systemIndex].GatewaySN, nil
}

// PullStatus retrieves the status of the zone. On failure, it returns a *RemoteError and the previous status is kept.
func (c *Client) PullStatus(ctx context.Context) error {
	const op = "pull status"
	query := url.Values{
		"gatewaysn": {c.serialNumber},
		"TempUnit":  {strconv.Itoa(int(c.units))},
	}
	var status statusInfo
	if err := c.call(ctx, op, http.MethodGet, "GetTStatInfoList", query, nil, &status); err != nil {
		return err
	}
	if c.zoneIndex < 0 || c.zoneIndex >= len(status.TStatInfo) {
		return &RemoteError{Op: op, Err: fmt.Errorf("zone index %d out of range: system has %d zone(s)", c.zoneIndex, len(status.TStatInfo))}
	}
	c.snapshot = status.TStatInfo[c.zoneIndex].snapshot()
	return nil
}

// SerialNumber returns the gateway serial number of the system.
func (c *Client) SerialNumber() string {
	return c.serialNumber
}

func (c *Client) SystemIndex() int {
	return c.systemIndex
}

func (c *Client) ZoneIndex() int {
	return c.zoneIndex
}

// Units returns the units of all temperatures reported and accepted by the Client.
func (c *Client) Units() TemperatureUnits {
	return c.units
}

// Snapshot returns a copy of the zone status.
func (c *Client) Snapshot() Snapshot {
	return c.snapshot
}

func (c *Client) OperatingMode() OperatingMode {
	return c.snapshot.OperatingMode
}

func (c *Client) FanMode() FanMode {
	return c.snapshot.FanMode
}

func (c *Client) ActivityState() ActivityState {
	return c.snapshot.ActivityState
}

// AwayMode reports whether away mode was active at the last PullStatus.
func (c *Client) AwayMode() bool {
	return c.snapshot.AwayMode
}

// SetPoints returns the heating and cooling set points.
func (c *Client) SetPoints() (heat float64, cool float64) {
	return c.snapshot.HeatSetPoint, c.snapshot.CoolSetPoint
}

func (c *Client) CurrentTemperature() float64 {
	return c.snapshot.CurrentTemperature
}

func (c *Client) CurrentHumidity() float64 {
	return c.snapshot.CurrentHumidity
}

// SetOperatingMode sets the operating mode and pushes the zone's settings.
//
// The local status is updated before the push and is not restored if the push fails.
func (c *Client) SetOperatingMode(ctx context.Context, mode OperatingMode) error {
	c.snapshot.OperatingMode = mode
	return c.pushSettings(ctx)
}

// SetFanMode sets the fan mode and pushes the zone's settings.
//
// The local status is updated before the push and is not restored if the push fails.
func (c *Client) SetFanMode(ctx context.Context, mode FanMode) error {
	c.snapshot.FanMode = mode
	return c.pushSettings(ctx)
}

// SetSetPoint sets the set point of the current operating mode: the heating set point in Heat and AuxHeat mode,
// the cooling set point in Cool mode. In any other mode, it returns ErrNoSetPointForMode and pushes nothing.
func (c *Client) SetSetPoint(ctx context.Context, value float64) error {
	switch c.snapshot.OperatingMode {
	case Heat, AuxHeat:
		c.snapshot.HeatSetPoint = value
	case Cool:
		c.snapshot.CoolSetPoint = value
	default:
		return fmt.Errorf("%s: %w", c.snapshot.OperatingMode, ErrNoSetPointForMode)
	}
	return c.pushSettings(ctx)
}

// SetSetPointRange sets the heating set point to the lower of both values and the cooling set point to the higher one.
func (c *Client) SetSetPointRange(ctx context.Context, low float64, high float64) error {
	c.snapshot.HeatSetPoint = min(low, high)
	c.snapshot.CoolSetPoint = max(low, high)
	return c.pushSettings(ctx)
}

// SetAwayMode switches away mode on or off. The local status isn't updated: the change is visible after the next PullStatus.
func (c *Client) SetAwayMode(ctx context.Context, away bool) error {
	value := "0"
	if away {
		value = "1"
	}
	query := url.Values{
		"gatewaysn": {c.serialNumber},
		"awaymode":  {value},
	}
	return c.call(ctx, "set away mode", http.MethodPut, "SetAwayModeNew", query, nil, nil)
}

// pushSettings sends all settings of the zone. The service has no partial updates.
func (c *Client) pushSettings(ctx context.Context) error {
	s := settings{
		CoolSetPoint:  c.snapshot.CoolSetPoint,
		HeatSetPoint:  c.snapshot.HeatSetPoint,
		FanMode:       c.snapshot.FanMode,
		OperationMode: c.snapshot.OperatingMode,
		PrefTempUnits: strconv.Itoa(int(c.units)),
		ZoneNumber:    c.zoneIndex,
		GatewaySN:     c.serialNumber,
	}
	return c.call(ctx, "push settings", http.MethodPut, "SetTStatInfo", nil, s, nil)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
