package poller_test

import (
	"context"
	"errors"
	"github.com/clambin/icomfort-monitor/internal/climate"
	"github.com/clambin/icomfort-monitor/internal/poller"
	"github.com/clambin/icomfort-monitor/pkg/icomfort"
	"github.com/clambin/icomfort-monitor/pkg/icomfort/icomforttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"log/slog"
	"net/http"
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

func newPoller(t *testing.T, n *fakeNotifier) (*poller.EntityPoller, *icomforttest.Server) {
	t.Helper()
	s := icomforttest.NewServer("user", "pass", icomforttest.System{SerialNumber: "SN1", Zones: []icomforttest.Zone{heating}})
	t.Cleanup(s.Close)
	c, err := icomfort.New(context.Background(), icomfort.Config{Username: "user", Password: "pass", URL: s.URL})
	require.NoError(t, err)
	e := climate.New(c, climate.Config{Name: "home"}, discard)
	if n == nil {
		return poller.New(e, time.Hour, nil, discard), s
	}
	return poller.New(e, time.Hour, n, discard), s
}

func TestEntityPoller_Run(t *testing.T) {
	p, s := newPoller(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	ch := p.Subscribe()
	errCh := make(chan error)
	go func() {
		errCh <- p.Run(ctx)
	}()

	update := <-ch
	assert.Equal(t, "home", update.State.Name)
	assert.Equal(t, climate.HVACModeHeat, update.State.HVACMode)
	assert.Equal(t, climate.HVACActionHeating, update.State.HVACAction)
	assert.Equal(t, 68.0, *update.State.TargetTemperature)
	assert.False(t, update.Timestamp.IsZero())

	zone := heating
	zone.SystemStatus = 0
	zone.IndoorTemp = 68
	s.SetZone(0, 0, zone)
	p.Refresh()

	update = <-ch
	assert.Equal(t, climate.HVACActionIdle, update.State.HVACAction)
	assert.Equal(t, 68.0, update.State.CurrentTemperature)

	p.Unsubscribe(ch)
	cancel()
	assert.NoError(t, <-errCh)
}

func TestEntityPoller_Run_Failure(t *testing.T) {
	p, s := newPoller(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := p.Subscribe()
	go func() { _ = p.Run(ctx) }()
	initial := <-ch

	s.Fail(icomforttest.GetTStatInfoList, http.StatusServiceUnavailable)
	p.Refresh()
	assert.Eventually(t, func() bool { return s.Calls(icomforttest.GetTStatInfoList) == 2 }, time.Second, 10*time.Millisecond)

	s.Fail(icomforttest.GetTStatInfoList, 0)
	p.Refresh()
	update := <-ch
	assert.Equal(t, initial.State, update.State)
	assert.True(t, update.Timestamp.After(initial.Timestamp) || update.Timestamp.Equal(initial.Timestamp))
	assert.Equal(t, 3, s.Calls(icomforttest.GetTStatInfoList))
}

func TestEntityPoller_Do(t *testing.T) {
	var n fakeNotifier
	p, s := newPoller(t, &n)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := p.Subscribe()
	go func() { _ = p.Run(ctx) }()
	<-ch

	err := p.Do(ctx, "set hvac mode to cool", func(ctx context.Context, e *climate.Entity) error {
		return e.SetHVACMode(ctx, climate.HVACModeCool)
	})
	require.NoError(t, err)

	update := <-ch
	assert.Equal(t, climate.HVACModeCool, update.State.HVACMode)
	assert.Equal(t, 2, s.Zone(0, 0).OperationMode)
	assert.Equal(t, []string{"home: set hvac mode to cool"}, n.titles())
	assert.Equal(t, []string{"mode: cool, fan: auto, target: 75.0°F"}, n.texts())

	// the command triggers a refresh
	assert.Eventually(t, func() bool { return s.Calls(icomforttest.GetTStatInfoList) >= 2 }, time.Second, 10*time.Millisecond)
}

func TestEntityPoller_Do_Failure(t *testing.T) {
	var n fakeNotifier
	p, _ := newPoller(t, &n)

	ch := p.Subscribe()
	err := p.Do(context.Background(), "set fan mode to high", func(ctx context.Context, e *climate.Entity) error {
		return e.SetFanMode(ctx, "high")
	})
	assert.ErrorIs(t, err, climate.ErrInvalidMode)
	assert.ErrorContains(t, err, "set fan mode to high: ")

	errCommand := errors.New("failed")
	err = p.Do(context.Background(), "fail", func(context.Context, *climate.Entity) error { return errCommand })
	assert.ErrorIs(t, err, errCommand)

	assert.Empty(t, n.titles())
	assert.Empty(t, ch)
}

func TestEntityPoller_Do_AwayMode(t *testing.T) {
	away := heating
	away.AwayMode = 1
	srv := icomforttest.NewServer("user", "pass", icomforttest.System{SerialNumber: "SN1", Zones: []icomforttest.Zone{away}})
	t.Cleanup(srv.Close)
	c, err := icomfort.New(context.Background(), icomfort.Config{Username: "user", Password: "pass", URL: srv.URL})
	require.NoError(t, err)
	var n fakeNotifier
	p := poller.New(climate.New(c, climate.Config{Name: "home"}, discard), time.Hour, &n, discard)
	ch := p.Subscribe()

	err = p.Do(context.Background(), "set hvac mode to cool", func(ctx context.Context, e *climate.Entity) error {
		return e.SetHVACMode(ctx, climate.HVACModeCool)
	})
	assert.ErrorIs(t, err, poller.ErrCommandIgnored)
	assert.Zero(t, srv.Calls(icomforttest.SetTStatInfo))
	assert.Empty(t, n.titles())
	assert.Empty(t, ch)

	// leaving away mode is never ignored
	err = p.Do(context.Background(), "set preset mode to none", func(ctx context.Context, e *climate.Entity) error {
		return e.SetPresetMode(ctx, climate.PresetNone)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, srv.AwayModes())
	assert.Equal(t, []string{"home: set preset mode to none"}, n.titles())
	assert.Len(t, ch, 1)
}

type fakeNotifier struct {
	lock  sync.Mutex
	title []string
	text  []string
}

func (f *fakeNotifier) Notify(title string, text string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.title = append(f.title, title)
	f.text = append(f.text, text)
}

func (f *fakeNotifier) titles() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.title
}

func (f *fakeNotifier) texts() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.text
}
