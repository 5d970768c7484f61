// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package gpsd provides a location source that streams fixes from a gpsd daemon.
package gpsd

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/trailnav/internal/geobus"
	"github.com/wneessen/trailnav/internal/logger"
	"github.com/wneessen/trailnav/internal/tracker"
)

const (
	name = "gpsd"

	// DefaultAddr is the address gpsd listens on by default.
	DefaultAddr = "localhost:2947"

	fallbackAccuracy3DFix = 10 // ~10 m typical consumer GPS in open sky
	fallbackAccuracy2DFix = 25 // worse than 3D, but still accurate enough
)

// watchFunc connects to gpsd at addr and calls emit for every TPV report until the connection
// ends or the context is cancelled.
type watchFunc func(ctx context.Context, addr string, emit func(*gpsd.TPVReport)) error

// Provider streams location fixes from gpsd. Reports without at least a 2D fix are ignored.
//
// All streams of a Provider share a single gpsd watch. The watch is started with the first
// stream and runs until Close, reports are only delivered while a stream is subscribed.
type Provider struct {
	name     string
	addr     string
	interval time.Duration
	period   time.Duration
	logger   *logger.Logger
	watchFn  watchFunc

	mu     sync.Mutex
	subs   map[chan *gpsd.TPVReport]struct{}
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// New returns a gpsd Provider for the given address. Fixes are emitted at most once per
// interval.
func New(addr string, interval time.Duration, log *logger.Logger) *Provider {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Provider{
		name:     name,
		addr:     addr,
		interval: interval,
		period:   time.Second * 10,
		logger:   log,
		watchFn:  watch,
		subs:     make(map[chan *gpsd.TPVReport]struct{}),
	}
}

// Name returns the name of the provider.
func (p *Provider) Name() string {
	return p.name
}

// LookupStream emits a fix event for every usable TPV report until ctx is cancelled. The
// first call starts the shared gpsd watch, later calls attach to it.
func (p *Provider) LookupStream(ctx context.Context) <-chan geobus.Event {
	out := make(chan geobus.Event)
	reports := make(chan *gpsd.TPVReport, 1)
	if !p.subscribe(reports) {
		close(out)
		return out
	}

	go func() {
		defer close(out)
		defer p.unsubscribe(reports)
		state := geobus.NewFixState(p.interval)

		for {
			select {
			case <-ctx.Done():
				return
			case tpv := <-reports:
				fix, ok := fixFromTPV(tpv)
				if !ok {
					continue
				}
				now := time.Now()
				if !state.ShouldEmit(now) {
					continue
				}
				state.Update(fix.Coordinate(), now)
				fix.At = now

				select {
				case <-ctx.Done():
					return
				case out <- geobus.FixEvent(p.name, fix):
				}
			}
		}
	}()

	return out
}

// Close stops the shared gpsd watch and waits for it to end. Streams opened after Close are
// closed immediately.
func (p *Provider) Close() error {
	p.mu.Lock()
	p.closed = true
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

func (p *Provider) subscribe(reports chan *gpsd.TPVReport) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.subs[reports] = struct{}{}
	if p.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		p.done = make(chan struct{})
		go p.run(ctx)
	}
	return true
}

func (p *Provider) unsubscribe(reports chan *gpsd.TPVReport) {
	p.mu.Lock()
	delete(p.subs, reports)
	p.mu.Unlock()
}

// dispatch hands a report to every subscribed stream. A stream that has not consumed the
// previous report misses this one.
func (p *Provider) dispatch(tpv *gpsd.TPVReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for reports := range p.subs {
		select {
		case reports <- tpv:
		default:
		}
	}
}

// run keeps the gpsd watch alive until ctx is cancelled. If the connection to gpsd fails or
// ends, it reconnects after the retry period.
func (p *Provider) run(ctx context.Context) {
	defer close(p.done)
	for {
		if err := p.watchFn(ctx, p.addr, p.dispatch); err != nil {
			p.logger.Warn("gpsd connection failed", slog.String("addr", p.addr), logger.Err(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.period):
		}
	}
}

// watch is the go-gpsd backed watchFunc.
func watch(ctx context.Context, addr string, emit func(*gpsd.TPVReport)) error {
	session, err := gpsd.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to gpsd at %q: %w", addr, err)
	}

	session.AddFilter("TPV", func(r interface{}) {
		tpv, ok := r.(*gpsd.TPVReport)
		if !ok {
			return
		}
		emit(tpv)
	})

	// Watch returns a channel that is closed when the watch ends. go-gpsd has no Close, so
	// the session lives as long as the Provider's shared watch.
	done := session.Watch()
	select {
	case <-ctx.Done():
		return nil
	case <-done:
		return nil
	}
}

// fixFromTPV converts a TPV report into a tracker fix. It reports false for reports without
// a 2D fix or with coordinates out of range.
func fixFromTPV(tpv *gpsd.TPVReport) (tracker.Fix, bool) {
	if tpv == nil || tpv.Mode < gpsd.Mode2D {
		return tracker.Fix{}, false
	}
	fix := tracker.Fix{
		Lat:      tpv.Lat,
		Lon:      tpv.Lon,
		Accuracy: horizontalAccuracy(tpv),
	}
	if !fix.Coordinate().Valid() {
		return tracker.Fix{}, false
	}
	return fix, true
}

// horizontalAccuracy estimates the horizontal error in meters from the longitude and latitude
// error estimates, falling back to typical values for the fix mode.
func horizontalAccuracy(tpv *gpsd.TPVReport) float64 {
	if tpv.Epx > 0 && tpv.Epy > 0 {
		return math.Hypot(tpv.Epx, tpv.Epy)
	}
	if tpv.Mode >= gpsd.Mode3D {
		return fallbackAccuracy3DFix
	}
	return fallbackAccuracy2DFix
}
