// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/wneessen/trailnav/internal/logger"
)

// Orchestrator coordinates the publication of events from multiple providers through a GeoBus.
type Orchestrator struct {
	Bus       *GeoBus
	Providers []Provider
}

// Track runs all providers concurrently and blocks until the context is cancelled and every
// provider goroutine has returned.
func (o *Orchestrator) Track(ctx context.Context) {
	var wg sync.WaitGroup
	for _, p := range o.Providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			o.trackProvider(ctx, p)
		}(p)
	}
	<-ctx.Done()
	wg.Wait()
}

// Start runs Track in the background and returns a stop function. Once stop returns, no
// provider of this Orchestrator publishes to the bus anymore. Calling stop more than once is safe.
func (o *Orchestrator) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Track(ctx)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

// Close releases providers that hold resources across streams, like a shared daemon
// connection. It must not be called while the Orchestrator is running.
func (o *Orchestrator) Close() error {
	var errs []error
	for _, p := range o.Providers {
		closer, ok := p.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close provider %s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// trackProvider continuously tracks a Provider, publishing its events to the GeoBus and
// implementing backoff.
func (o *Orchestrator) trackProvider(ctx context.Context, p Provider) {
	backoff := initialBackoff
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		lookupChan := o.safeLookup(ctx, p)
		if lookupChan == nil {
			o.Bus.logger.Debug("provider did not return a stream, backing off", slog.String("provider", p.Name()),
				slog.Duration("backoff", backoff))
			if !sleepOrDone(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

	stream:
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-lookupChan:
				if !ok {
					if !sleepOrDone(ctx, backoff) {
						return
					}
					backoff = nextBackoff(backoff)
					break stream
				}
				if e.Source == "" {
					e.Source = p.Name()
				}
				o.Bus.Publish(ctx, e)
				backoff = initialBackoff
			}
		}
	}
}

// safeLookup safely invokes the LookupStream method on a Provider and recovers from potential panics.
// Returns a read-only channel of Event or nil if the operation fails.
func (o *Orchestrator) safeLookup(ctx context.Context, provider Provider) (ch <-chan Event) {
	defer func() {
		if r := recover(); r != nil {
			o.Bus.logger.Error("provider panicked", slog.String("provider", provider.Name()),
				logger.Err(panicError{r}))
			ch = nil
		}
	}()
	return provider.LookupStream(ctx)
}
