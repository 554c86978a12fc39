package poller

import (
	"context"
	"errors"
	"fmt"
	"github.com/clambin/icomfort-monitor/internal/climate"
	"github.com/clambin/icomfort-monitor/internal/notifier"
	"github.com/clambin/icomfort-monitor/pkg/pubsub"
	"log/slog"
	"sync"
	"time"
)

//go:generate mockery --name Poller --with-expecter
type Poller interface {
	Subscribe() <-chan Update
	Unsubscribe(ch <-chan Update)
	Refresh()
}

// Commander publishes entity updates and executes commands on the entity.
//
//go:generate mockery --name Commander --with-expecter
type Commander interface {
	Poller
	Do(ctx context.Context, description string, command Command) error
}

// Command changes the entity. It is executed by EntityPoller.Do.
type Command func(ctx context.Context, entity *climate.Entity) error

// ErrCommandIgnored is returned by EntityPoller.Do when the entity ignored the command because it is in away mode.
var ErrCommandIgnored = errors.New("command ignored: away mode active")

var (
	_ Poller    = &EntityPoller{}
	_ Commander = &EntityPoller{}
)

// EntityPoller refreshes a climate entity and publishes its state to all subscribers.
//
// The entity is not safe for concurrent use: EntityPoller serializes all refreshes and commands.
type EntityPoller struct {
	*pubsub.Publisher[Update]
	entity   *climate.Entity
	interval time.Duration
	notifier notifier.Notifier
	logger   *slog.Logger
	refresh  chan struct{}
	lock     sync.Mutex
}

// New returns an EntityPoller. n may be nil.
func New(entity *climate.Entity, interval time.Duration, n notifier.Notifier, logger *slog.Logger) *EntityPoller {
	return &EntityPoller{
		Publisher: pubsub.New[Update](logger.With(slog.String("component", "publisher"))),
		entity:    entity,
		interval:  interval,
		notifier:  n,
		logger:    logger,
		refresh:   make(chan struct{}, 1),
	}
}

// Run publishes the current state of the entity and refreshes it until ctx is canceled.
func (p *EntityPoller) Run(ctx context.Context) error {
	p.logger.Debug("started", slog.Duration("interval", p.interval))
	defer p.logger.Debug("stopped")

	p.lock.Lock()
	state := p.entity.State()
	p.lock.Unlock()
	p.Publish(Update{State: state, Timestamp: time.Now()})

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-p.refresh:
		}
		if err := p.poll(ctx); err != nil {
			p.logger.Error("failed to refresh thermostat status", slog.Any("err", err))
		}
	}
}

// Refresh schedules a refresh. It doesn't block: if a refresh is already pending, the request is dropped.
func (p *EntityPoller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// poll refreshes the entity. On failure, nothing is published, so subscribers keep the previous state.
func (p *EntityPoller) poll(ctx context.Context) error {
	start := time.Now()
	p.lock.Lock()
	err := p.entity.Refresh(ctx)
	state := p.entity.State()
	p.lock.Unlock()
	if err != nil {
		return err
	}
	p.Publish(Update{State: state, Timestamp: time.Now()})
	p.logger.Debug("poll completed", slog.Duration("duration", time.Since(start)), slog.Any("state", state))
	return nil
}

// Do executes a command on the entity. On success, the resulting state is published, the notifier is informed
// and a refresh is scheduled to confirm the change. If the entity ignored the command, Do returns ErrCommandIgnored
// and nothing is published or notified.
func (p *EntityPoller) Do(ctx context.Context, description string, command Command) error {
	p.lock.Lock()
	ignored := p.entity.Ignored()
	err := command(ctx, p.entity)
	ignored = p.entity.Ignored() - ignored
	state := p.entity.State()
	p.lock.Unlock()

	if err != nil {
		return fmt.Errorf("%s: %w", description, err)
	}
	if ignored > 0 {
		p.logger.Info("command ignored", slog.String("command", description))
		return fmt.Errorf("%s: %w", description, ErrCommandIgnored)
	}

	p.logger.Debug("command executed", slog.String("command", description))
	p.Publish(Update{State: state, Timestamp: time.Now()})
	if p.notifier != nil {
		p.notifier.Notify(state.Name+": "+description, summarize(state))
	}
	p.Refresh()
	return nil
}
