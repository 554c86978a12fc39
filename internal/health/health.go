package health

import (
	"context"
	"encoding/json"
	"github.com/clambin/icomfort-monitor/internal/poller"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Health reports the last state published by the Poller. Until the first update, it reports 503.
// If the last update is older than MaxAge, it also reports 503, but still includes the update.
type Health struct {
	poller.Poller
	MaxAge  time.Duration
	logger  *slog.Logger
	update  poller.Update
	updated bool
	lock    sync.RWMutex
}

func New(p poller.Poller, maxAge time.Duration, logger *slog.Logger) *Health {
	return &Health{
		Poller: p,
		MaxAge: maxAge,
		logger: logger,
	}
}

func (h *Health) Run(ctx context.Context) error {
	h.logger.Debug("started")
	defer h.logger.Debug("stopped")

	ch := h.Poller.Subscribe()
	defer h.Poller.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-ch:
			h.lock.Lock()
			h.update = update
			h.updated = true
			h.lock.Unlock()
		}
	}
}

func (h *Health) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	if !h.updated {
		http.Error(w, "no update yet", http.StatusServiceUnavailable)
		h.Poller.Refresh()
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if h.MaxAge > 0 && time.Since(h.update.Timestamp) > h.MaxAge {
		h.logger.Warn("last update too old", slog.Time("timestamp", h.update.Timestamp))
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(h.update); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
