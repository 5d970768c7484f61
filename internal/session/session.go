// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package session implements the navigation session. It owns the waypoint store, the tracker,
// the orientation filter and the proximity alerter, and serializes every event and user action
// through a single handler loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wneessen/trailnav/internal/geobus"
	"github.com/wneessen/trailnav/internal/logger"
	"github.com/wneessen/trailnav/internal/notify"
	"github.com/wneessen/trailnav/internal/orientation"
	"github.com/wneessen/trailnav/internal/permission"
	"github.com/wneessen/trailnav/internal/proximity"
	"github.com/wneessen/trailnav/internal/storage"
	"github.com/wneessen/trailnav/internal/tracker"
	"github.com/wneessen/trailnav/internal/waypoint"
)

const (
	flushTimeout  = time.Second * 10
	notifyTimeout = time.Second * 10
)

var (
	// ErrUnknownWaypoint is returned when selecting a waypoint ID that is not in the store.
	ErrUnknownWaypoint = errors.New("unknown waypoint")

	// ErrClosed is returned by actions on a closed session.
	ErrClosed = errors.New("session is closed")

	// ErrAlreadyRunning is returned if Run is called more than once.
	ErrAlreadyRunning = errors.New("session is already running")
)

// Options configures a Session. All fields are optional.
type Options struct {
	Logger *logger.Logger

	// Storage persists the waypoint collection. A nil Storage keeps waypoints in memory only.
	Storage storage.Blob
	// Permission is queried before tracking starts. A nil Permission denies tracking.
	Permission permission.Oracle
	// Notifier receives arrival events. It is called outside the handler loop.
	Notifier notify.Notifier
	// Subscribe connects the location sources when tracking starts. The returned unsubscribe
	// function is called when tracking stops and must stop delivery before returning.
	Subscribe tracker.Subscriber
	// Events is drained by the handler loop, typically the queue of a geobus.GeoBus.
	Events <-chan geobus.Event
	// OnError is called for errors that happen outside of an action, like failed writes.
	OnError func(error)

	AlertRadius          float64
	MinTrailDisplacement float64
	// NearbyRadius limits State.Nearby to waypoints within this many meters. Zero disables it.
	NearbyRadius float64
}

// Session is the navigation session. All mutating methods are processed by Run, one at a
// time and in submission order.
type Session struct {
	logger     *logger.Logger
	blob       storage.Blob
	permission permission.Oracle
	notifier   notify.Notifier
	onError    func(error)
	events     <-chan geobus.Event

	// Owned by the handler loop.
	filter    orientation.Filter
	tracker   *tracker.Tracker
	store     *waypoint.Store
	alerter   *proximity.Alerter
	target    *waypoint.Waypoint
	dirty     bool
	loadError error
	snap      snapshotCache
	nearby    float64

	state    atomic.Pointer[State]
	commands chan command
	pending  chan string

	running   atomic.Bool
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
	notifies  sync.WaitGroup
}

type command struct {
	fn     func() error
	result chan error
}

// New creates a Session and loads the persisted waypoints. A missing blob yields an empty
// store. A failing read is reported through OnError and also yields an empty store; in that
// case the store is only written back once it was modified.
func New(ctx context.Context, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	onError := opts.OnError
	if onError == nil {
		onError = func(error) {}
	}
	perm := opts.Permission
	if perm == nil {
		perm = permission.Static(false)
	}

	s := &Session{
		logger:     log,
		blob:       opts.Storage,
		permission: perm,
		notifier:   opts.Notifier,
		onError:    onError,
		events:     opts.Events,
		tracker:    tracker.New(opts.MinTrailDisplacement, opts.Subscribe),
		store:      waypoint.NewStore(),
		alerter:    proximity.New(opts.AlertRadius),
		nearby:     opts.NearbyRadius,
		commands:   make(chan command),
		pending:    make(chan string, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	s.load(ctx)
	s.publish()
	return s
}

func (s *Session) load(ctx context.Context) {
	if s.blob == nil {
		return
	}
	data, err := s.blob.Read(ctx)
	if err != nil {
		s.loadError = err
		s.logger.Error("failed to load waypoints", logger.Err(err))
		s.onError(err)
		return
	}
	s.store = waypoint.Deserialize(data)
	s.logger.Debug("waypoints loaded", slog.Int("count", s.store.Len()))
}

// Run processes events and actions until the context is cancelled or Close is called. When
// Run returns, tracking has been stopped and all pending writes are done.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.done)

	persisted := make(chan struct{})
	go func() {
		defer close(persisted)
		s.persister()
	}()
	defer func() {
		s.tracker.Stop()
		close(s.pending)
		<-persisted
		s.notifies.Wait()
	}()

	events := s.events
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.quit:
			return nil
		case cmd := <-s.commands:
			cmd.result <- cmd.fn()
			s.publish()
		case e, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleEvent(e)
			s.publish()
		}
	}
}

// Close stops the handler loop and waits for it to exit. It then writes the final waypoint
// state to storage. No handler runs after Close returns. Close is idempotent and returns the
// result of the first call.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		if s.running.Load() {
			<-s.done
		}
		s.closeErr = s.flush()
	})
	return s.closeErr
}

func (s *Session) flush() error {
	if s.blob == nil {
		return nil
	}
	if s.loadError != nil && !s.dirty {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := s.blob.Write(ctx, s.store.Serialize()); err != nil {
		return fmt.Errorf("failed to flush waypoints: %w", err)
	}
	return nil
}

// submit hands fn to the handler loop and waits for its result.
func (s *Session) submit(ctx context.Context, fn func() error) error {
	cmd := command{fn: fn, result: make(chan error, 1)}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.quit:
		return ErrClosed
	case <-s.done:
		return ErrClosed
	case s.commands <- cmd:
	}
	return <-cmd.result
}

func (s *Session) handleEvent(e geobus.Event) {
	switch e.Kind {
	case geobus.KindOrientation:
		s.handleSample(e.Sample)
	case geobus.KindFix:
		if err := s.handleFix(e.Fix); err != nil {
			s.logger.Debug("ignoring location fix", slog.String("source", e.Source), logger.Err(err))
		}
	}
}

func (s *Session) handleSample(sample orientation.Sample) {
	s.filter.Update(sample)
}

func (s *Session) handleFix(fix tracker.Fix) error {
	grew, err := s.tracker.OnFix(fix)
	if err != nil {
		return err
	}
	if grew {
		s.snap.trail = nil
	}

	if arrival, ok := s.alerter.Check(fix.Coordinate(), s.target); ok {
		s.logger.Info("arrived at target", slog.String("waypoint", arrival.Target.ID),
			slog.Float64("distance", arrival.Distance))
		s.dispatchArrival(arrival)
	}
	return nil
}

func (s *Session) dispatchArrival(arrival proximity.Arrival) {
	if s.notifier == nil {
		return
	}
	s.notifies.Add(1)
	go func() {
		defer s.notifies.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, arrival); err != nil {
			s.logger.Error("failed to deliver arrival notification", logger.Err(err))
			s.onError(err)
		}
	}()
}
