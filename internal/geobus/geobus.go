// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geobus funnels events from independent sensor and location providers into a single
// ordered queue that is drained by exactly one consumer.
package geobus

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/wneessen/trailnav/internal/logger"
	"github.com/wneessen/trailnav/internal/orientation"
	"github.com/wneessen/trailnav/internal/tracker"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second

	// DefaultQueueSize is the default capacity of the event queue.
	DefaultQueueSize = 64
)

// Kind identifies the type of payload an Event carries.
type Kind int

const (
	KindFix Kind = iota
	KindOrientation
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFix:
		return "fix"
	case KindOrientation:
		return "orientation"
	default:
		return "unknown"
	}
}

// Provider defines an interface for event sources. LookupStream delivers events until the
// context is cancelled or the source gives up, in which case the channel is closed.
type Provider interface {
	Name() string
	LookupStream(ctx context.Context) <-chan Event
}

// Event is a single sample delivered by a provider.
type Event struct {
	Kind   Kind
	Source string
	At     time.Time

	Fix    tracker.Fix
	Sample orientation.Sample
}

// FixEvent returns an Event carrying a location fix.
func FixEvent(source string, fix tracker.Fix) Event {
	if fix.At.IsZero() {
		fix.At = time.Now()
	}
	fix.Source = source
	return Event{Kind: KindFix, Source: source, At: fix.At, Fix: fix}
}

// OrientationEvent returns an Event carrying an orientation sample.
func OrientationEvent(source string, sample orientation.Sample) Event {
	if sample.At.IsZero() {
		sample.At = time.Now()
	}
	return Event{Kind: KindOrientation, Source: source, At: sample.At, Sample: sample}
}

// GeoBus is a bounded FIFO queue shared by all providers. Events of one provider keep their
// order; events of different providers interleave in arrival order.
type GeoBus struct {
	logger  *logger.Logger
	queue   chan Event
	dropped atomic.Uint64
}

// New initializes and returns a new GeoBus with the given queue size.
func New(logger *logger.Logger, size int) *GeoBus {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &GeoBus{
		logger: logger,
		queue:  make(chan Event, size),
	}
}

// NewOrchestrator returns an Orchestrator that publishes the events of the given providers on
// this bus.
func (b *GeoBus) NewOrchestrator(provider []Provider) *Orchestrator {
	return &Orchestrator{
		Bus:       b,
		Providers: provider,
	}
}

// Events returns the receiving end of the queue. There must be only one consumer.
func (b *GeoBus) Events() <-chan Event {
	return b.queue
}

// Publish enqueues an event. Location fixes wait for free queue space until the context is
// cancelled. Orientation samples are dropped if the queue is full, since the next sample
// supersedes them anyway. It reports whether the event was queued.
func (b *GeoBus) Publish(ctx context.Context, e Event) bool {
	if e.Kind == KindOrientation {
		select {
		case b.queue <- e:
			return true
		default:
			b.dropped.Add(1)
			return false
		}
	}

	select {
	case b.queue <- e:
		return true
	default:
	}
	b.logger.Debug("event queue is full, waiting to publish fix", slog.String("source", e.Source))
	select {
	case b.queue <- e:
		return true
	case <-ctx.Done():
		b.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of events that could not be queued.
func (b *GeoBus) Dropped() uint64 {
	return b.dropped.Load()
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d *= 2; d > maxBackoff {
		return maxBackoff
	}
	return d
}
