// Package pubsub provides a Publish/Subscribe implementation where subscribers only receive the most recent value.
//
// Publish never blocks: if a subscriber hasn't read the previous value yet, that value is replaced.
// New subscribers immediately receive the last published value.
package pubsub

import (
	"log/slog"
	"sync"
)

// Publisher allows clients to subscribe and sends them the latest information provided by Publish.
type Publisher[T any] struct {
	clients   map[<-chan T]chan T
	logger    *slog.Logger
	last      T
	published bool
	lock      sync.Mutex
}

// New returns a new Publisher
func New[T any](logger *slog.Logger) *Publisher[T] {
	return &Publisher[T]{
		clients: make(map[<-chan T]chan T),
		logger:  logger,
	}
}

// Subscribe registers the caller and returns a new channel on which it will publish updates.
func (p *Publisher[T]) Subscribe() <-chan T {
	p.lock.Lock()
	defer p.lock.Unlock()
	ch := make(chan T, 1)
	if p.published {
		ch <- p.last
	}
	p.clients[ch] = ch
	p.logger.Debug("subscriber added", slog.Int("subscribers", len(p.clients)))
	return ch
}

// Unsubscribe removes the registered client/channel.
func (p *Publisher[T]) Unsubscribe(ch <-chan T) {
	p.lock.Lock()
	defer p.lock.Unlock()
	delete(p.clients, ch)
	p.logger.Debug("subscriber removed", slog.Int("subscribers", len(p.clients)))
}

// Publish sends info to all registered clients, replacing any value they haven't received yet.
func (p *Publisher[T]) Publish(info T) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.last = info
	p.published = true
	for _, ch := range p.clients {
		select {
		case ch <- info:
		default:
			// drop the unread value. only Publish sends, so the second send can't block.
			select {
			case <-ch:
			default:
			}
			ch <- info
		}
	}
}

// Last returns the last published value. The boolean is false if nothing has been published yet.
func (p *Publisher[T]) Last() (T, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.last, p.published
}

// Subscribers returns the current number of subscribers
func (p *Publisher[T]) Subscribers() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.clients)
}
