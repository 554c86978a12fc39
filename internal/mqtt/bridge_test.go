package mqtt

import (
	"context"
	"encoding/json"
	"github.com/clambin/icomfort-monitor/internal/climate"
	"github.com/clambin/icomfort-monitor/internal/poller"
	"github.com/clambin/icomfort-monitor/pkg/icomfort"
	"github.com/clambin/icomfort-monitor/pkg/icomfort/icomforttest"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var heating = icomforttest.Zone{
	SystemStatus:   1,
	OperationMode:  1,
	IndoorTemp:     66,
	IndoorHumidity: 45,
	HeatSetPoint:   68,
	CoolSetPoint:   75,
}

func newBridge(t *testing.T) (*Bridge, *poller.EntityPoller, *icomforttest.Server) {
	t.Helper()
	s := icomforttest.NewServer("user", "pass", icomforttest.System{SerialNumber: "SN1", Zones: []icomforttest.Zone{heating}})
	t.Cleanup(s.Close)
	c, err := icomfort.New(context.Background(), icomfort.Config{Username: "user", Password: "pass", URL: s.URL})
	require.NoError(t, err)
	p := poller.New(climate.New(c, climate.Config{Name: "home"}, discard), time.Hour, nil, discard)
	return New(p, "home", Config{Broker: "tcp://localhost:1883"}, discard), p, s
}

func TestBridge_Run(t *testing.T) {
	b, p, s := newBridge(t)
	client := newFakeClient()
	b.newClient = client.init

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = p.Run(ctx) }()
	errCh := make(chan error)
	go func() { errCh <- b.Run(ctx) }()

	require.Eventually(t, func() bool { return client.lastPublished("icomfort/home/state") != nil }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "online", string(client.lastPublished("icomfort/home/availability")))
	assert.NotNil(t, client.lastPublished("homeassistant/climate/icomfort_home/config"))
	assert.NotNil(t, client.lastPublished("homeassistant/switch/icomfort_home/aux_heat/config"))
	assert.Equal(t, []string{"icomfort/home/+/set"}, client.subscriptions())

	var state climate.State
	require.NoError(t, json.Unmarshal(client.lastPublished("icomfort/home/state"), &state))
	assert.Equal(t, climate.HVACModeHeat, state.HVACMode)
	assert.Equal(t, climate.HVACActionHeating, state.HVACAction)

	client.receive("icomfort/home/mode/set", "cool")
	assert.Eventually(t, func() bool { return s.Zone(0, 0).OperationMode == 2 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		var state climate.State
		return json.Unmarshal(client.lastPublished("icomfort/home/state"), &state) == nil && state.HVACMode == climate.HVACModeCool
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-errCh)
	assert.Equal(t, "offline", string(client.lastPublished("icomfort/home/availability")))
	assert.True(t, client.isDisconnected())
}

func TestBridge_Run_BrokerUnavailable(t *testing.T) {
	b, _, _ := newBridge(t)
	client := newFakeClient()
	client.unreachable = true
	b.newClient = client.init

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- b.Run(ctx) }()

	// Run keeps waiting for the broker
	assert.Never(t, func() bool { return len(errCh) > 0 || client.isDisconnected() }, 200*time.Millisecond, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-errCh)
	assert.True(t, client.isDisconnected())
	assert.Empty(t, client.subscriptions())
}

func TestBridge_handleCommand_AwayMode(t *testing.T) {
	away := heating
	away.AwayMode = 1
	s := icomforttest.NewServer("user", "pass", icomforttest.System{SerialNumber: "SN1", Zones: []icomforttest.Zone{away}})
	t.Cleanup(s.Close)
	c, err := icomfort.New(context.Background(), icomfort.Config{Username: "user", Password: "pass", URL: s.URL})
	require.NoError(t, err)
	p := poller.New(climate.New(c, climate.Config{Name: "home"}, discard), time.Hour, nil, discard)
	b := New(p, "home", Config{}, discard)

	assert.NoError(t, b.handleCommand(context.Background(), "icomfort/home/mode/set", []byte("cool")))
	assert.Empty(t, s.Settings())
}

func TestBridge_handleCommand(t *testing.T) {
	tests := []struct {
		name    string
		zone    icomforttest.Zone
		topic   string
		payload string
		wantErr error
		want    func(t *testing.T, s *icomforttest.Server)
	}{
		{
			name:    "mode",
			topic:   "icomfort/home/mode/set",
			payload: "heat_cool",
			want: func(t *testing.T, s *icomforttest.Server) {
				assert.Equal(t, 3, s.Zone(0, 0).OperationMode)
			},
		},
		{
			name:    "invalid mode",
			topic:   "icomfort/home/mode/set",
			payload: "dry",
			wantErr: climate.ErrInvalidMode,
		},
		{
			name:    "fan mode",
			topic:   "icomfort/home/fan_mode/set",
			payload: "circulate",
			want: func(t *testing.T, s *icomforttest.Server) {
				assert.Equal(t, 2, s.Zone(0, 0).FanMode)
			},
		},
		{
			name:    "temperature",
			topic:   "icomfort/home/temperature/set",
			payload: "70",
			want: func(t *testing.T, s *icomforttest.Server) {
				assert.Equal(t, 70.0, s.Zone(0, 0).HeatSetPoint)
			},
		},
		{
			name:    "invalid temperature",
			topic:   "icomfort/home/temperature/set",
			payload: "warm",
			wantErr: climate.ErrInvalidTemperature,
		},
		{
			name:    "low temperature needs a range",
			topic:   "icomfort/home/temperature_low/set",
			payload: "66",
			wantErr: climate.ErrInvalidTemperature,
		},
		{
			name:    "low temperature",
			zone:    icomforttest.Zone{OperationMode: 3, HeatSetPoint: 68, CoolSetPoint: 75},
			topic:   "icomfort/home/temperature_low/set",
			payload: "66",
			want: func(t *testing.T, s *icomforttest.Server) {
				assert.Equal(t, 66.0, s.Zone(0, 0).HeatSetPoint)
				assert.Equal(t, 75.0, s.Zone(0, 0).CoolSetPoint)
			},
		},
		{
			name:    "high temperature",
			zone:    icomforttest.Zone{OperationMode: 3, HeatSetPoint: 68, CoolSetPoint: 75},
			topic:   "icomfort/home/temperature_high/set",
			payload: "78",
			want: func(t *testing.T, s *icomforttest.Server) {
				assert.Equal(t, 68.0, s.Zone(0, 0).HeatSetPoint)
				assert.Equal(t, 78.0, s.Zone(0, 0).CoolSetPoint)
			},
		},
		{
			name:    "away",
			topic:   "icomfort/home/preset_mode/set",
			payload: "away",
			want: func(t *testing.T, s *icomforttest.Server) {
				assert.Equal(t, []int{1}, s.AwayModes())
			},
		},
		{
			name:    "aux heat on",
			topic:   "icomfort/home/aux_heat/set",
			payload: "ON",
			want: func(t *testing.T, s *icomforttest.Server) {
				assert.Equal(t, 4, s.Zone(0, 0).OperationMode)
			},
		},
		{
			name:    "aux heat off",
			zone:    icomforttest.Zone{OperationMode: 4, HeatSetPoint: 68, CoolSetPoint: 75},
			topic:   "icomfort/home/aux_heat/set",
			payload: "off",
			want: func(t *testing.T, s *icomforttest.Server) {
				assert.Equal(t, 1, s.Zone(0, 0).OperationMode)
			},
		},
		{
			name:    "invalid aux heat",
			topic:   "icomfort/home/aux_heat/set",
			payload: "maybe",
			wantErr: climate.ErrInvalidMode,
		},
		{
			name:    "unknown command",
			topic:   "icomfort/home/swing_mode/set",
			payload: "on",
			wantErr: ErrUnknownCommand,
		},
		{
			name:    "other entity",
			topic:   "icomfort/upstairs/mode/set",
			payload: "cool",
			wantErr: ErrUnknownCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			zone := heating
			if tt.zone != (icomforttest.Zone{}) {
				zone = tt.zone
			}
			s := icomforttest.NewServer("user", "pass", icomforttest.System{SerialNumber: "SN1", Zones: []icomforttest.Zone{zone}})
			t.Cleanup(s.Close)
			c, err := icomfort.New(context.Background(), icomfort.Config{Username: "user", Password: "pass", URL: s.URL})
			require.NoError(t, err)
			p := poller.New(climate.New(c, climate.Config{Name: "home"}, discard), time.Hour, nil, discard)
			b := New(p, "home", Config{}, discard)

			err = b.handleCommand(context.Background(), tt.topic, []byte(tt.payload))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.want(t, s)
		})
	}
}

var _ pahomqtt.Client = &fakeClient{}

// fakeClient records what the bridge publishes and lets tests deliver messages on subscribed topics.
// Methods the bridge doesn't use are left to the embedded (nil) interface.
type fakeClient struct {
	pahomqtt.Client
	opts         *pahomqtt.ClientOptions
	lock         sync.Mutex
	published    map[string][]byte
	subscribed   []string
	handler      pahomqtt.MessageHandler
	disconnected bool
	unreachable  bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{published: make(map[string][]byte)}
}

func (f *fakeClient) init(opts *pahomqtt.ClientOptions) pahomqtt.Client {
	f.opts = opts
	return f
}

func (f *fakeClient) Connect() pahomqtt.Token {
	if f.unreachable {
		return pendingToken{}
	}
	if f.opts.OnConnect != nil {
		f.opts.OnConnect(f)
	}
	return doneToken{}
}

func (f *fakeClient) Disconnect(uint) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.disconnected = true
}

func (f *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) pahomqtt.Token {
	f.lock.Lock()
	defer f.lock.Unlock()
	switch p := payload.(type) {
	case []byte:
		f.published[topic] = p
	case string:
		f.published[topic] = []byte(p)
	}
	return doneToken{}
}

func (f *fakeClient) Subscribe(topic string, _ byte, callback pahomqtt.MessageHandler) pahomqtt.Token {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.subscribed = append(f.subscribed, topic)
	f.handler = callback
	return doneToken{}
}

func (f *fakeClient) receive(topic string, payload string) {
	f.lock.Lock()
	handler := f.handler
	f.lock.Unlock()
	handler(f, fakeMessage{topic: topic, payload: []byte(payload)})
}

func (f *fakeClient) lastPublished(topic string) []byte {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.published[topic]
}

func (f *fakeClient) subscriptions() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.subscribed
}

func (f *fakeClient) isDisconnected() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.disconnected
}

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (doneToken) Error() error { return nil }

// pendingToken never completes, like the token of a client that keeps retrying to connect.
type pendingToken struct{}

func (pendingToken) Wait() bool                     { return false }
func (pendingToken) WaitTimeout(time.Duration) bool { return false }
func (pendingToken) Done() <-chan struct{}          { return make(chan struct{}) }
func (pendingToken) Error() error                   { return nil }

type fakeMessage struct {
	pahomqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }
