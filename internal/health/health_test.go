package health

import (
	"context"
	"encoding/json"
	"github.com/clambin/icomfort-monitor/internal/climate"
	"github.com/clambin/icomfort-monitor/internal/poller"
	"github.com/clambin/icomfort-monitor/internal/poller/mocks"
	"github.com/clambin/icomfort-monitor/internal/poller/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestHealth_Handle(t *testing.T) {
	var subscribed atomic.Bool

	ch := make(chan poller.Update)
	p := mocks.NewPoller(t)
	p.EXPECT().Subscribe().RunAndReturn(func() <-chan poller.Update {
		subscribed.Store(true)
		return ch
	}).Once()
	p.EXPECT().Unsubscribe((<-chan poller.Update)(ch)).Run(func(_ <-chan poller.Update) {
		subscribed.Store(false)
	}).Maybe()
	p.EXPECT().Refresh().Once()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := New(p, 0, discard)
	go func() {
		_ = h.Run(ctx)
	}()

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, &http.Request{})
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)

	ch <- testutils.Update(testutils.WithMode(climate.HVACModeCool, climate.HVACActionCooling), testutils.WithTarget(75))

	assert.Eventually(t, func() bool {
		resp = httptest.NewRecorder()
		h.ServeHTTP(resp, &http.Request{})
		return resp.Code == http.StatusOK
	}, time.Second, 10*time.Millisecond)

	var update poller.Update
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&update))
	assert.Equal(t, climate.HVACModeCool, update.State.HVACMode)
	assert.Equal(t, 75.0, *update.State.TargetTemperature)
	assert.Nil(t, update.State.TargetTemperatureLow)
}

func TestHealth_MaxAge(t *testing.T) {
	h := New(nil, time.Minute, discard)
	h.update = poller.Update{Timestamp: time.Now().Add(-time.Hour)}
	h.updated = true

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, &http.Request{})
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))

	h.update.Timestamp = time.Now()
	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, &http.Request{})
	assert.Equal(t, http.StatusOK, resp.Code)
}
