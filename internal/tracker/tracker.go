// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package tracker implements the location tracking state machine. It keeps the most recent fix
// and, while tracking, records a trail of visited positions.
package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/trailnav/internal/geomath"
	"github.com/wneessen/trailnav/internal/vartype"
)

// DefaultMinDisplacement is the minimum distance in meters between two stored trail points.
const DefaultMinDisplacement = 2.0

var (
	// ErrPermissionDenied is returned when tracking is started without location permission.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrInvalidFix is returned for fixes with coordinates outside the valid ranges.
	ErrInvalidFix = errors.New("invalid location fix")
)

// State is the state of the Tracker.
type State int

const (
	Idle State = iota
	Tracking
)

// String returns the name of the state.
func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "idle"
}

// Fix is a single location sample. Only the most recent fix is retained.
type Fix struct {
	Lat      float64
	Lon      float64
	Accuracy float64
	At       time.Time
	Source   string
}

// Coordinate returns the position of the fix.
func (f Fix) Coordinate() geomath.Coordinate {
	return geomath.Coordinate{Lat: f.Lat, Lon: f.Lon}
}

// TrailPoint is a position recorded while tracking.
type TrailPoint struct {
	Lat float64
	Lon float64
	At  time.Time
}

// Coordinate returns the position of the trail point.
func (p TrailPoint) Coordinate() geomath.Coordinate {
	return geomath.Coordinate{Lat: p.Lat, Lon: p.Lon}
}

// Subscriber connects the tracker to a location update source. It returns the function that
// disconnects it again. The returned function must not return before delivery has stopped.
type Subscriber func() (unsubscribe func(), err error)

// Tracker is the Idle/Tracking state machine over incoming location fixes. It is not safe for
// concurrent use; callers serialize access.
type Tracker struct {
	state           State
	minDisplacement float64
	subscribe       Subscriber
	unsubscribe     func()

	current vartype.Optional[Fix]
	trail   []TrailPoint
	length  float64
}

// New returns an idle Tracker. A minDisplacement <= 0 selects DefaultMinDisplacement. The
// subscriber may be nil.
func New(minDisplacement float64, subscribe Subscriber) *Tracker {
	if minDisplacement <= 0 {
		minDisplacement = DefaultMinDisplacement
	}
	return &Tracker{
		minDisplacement: minDisplacement,
		subscribe:       subscribe,
	}
}

// Start switches to Tracking. It fails with ErrPermissionDenied if granted is false and is a
// no-op if the tracker is already tracking.
func (t *Tracker) Start(granted bool) error {
	if t.state == Tracking {
		return nil
	}
	if !granted {
		return ErrPermissionDenied
	}
	if t.subscribe != nil {
		unsub, err := t.subscribe()
		if err != nil {
			return fmt.Errorf("failed to subscribe to location updates: %w", err)
		}
		t.unsubscribe = unsub
	}
	t.state = Tracking
	return nil
}

// Stop switches to Idle and disconnects the update source. It is a no-op if already idle.
func (t *Tracker) Stop() {
	if t.state == Idle {
		return
	}
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
	t.state = Idle
}

// State returns the current state.
func (t *Tracker) State() State {
	return t.state
}

// Tracking reports whether the tracker is in the Tracking state.
func (t *Tracker) Tracking() bool {
	return t.state == Tracking
}

// OnFix records a new fix. The current fix is always replaced; while tracking a trail point is
// appended if the fix is more than the minimum displacement away from the last trail point.
// It reports whether the trail grew.
func (t *Tracker) OnFix(fix Fix) (bool, error) {
	if !fix.Coordinate().Valid() {
		return false, fmt.Errorf("%w: %s", ErrInvalidFix, fix.Coordinate())
	}
	if fix.At.IsZero() {
		fix.At = time.Now()
	}
	t.current.Set(fix)

	if t.state != Tracking {
		return false, nil
	}

	if n := len(t.trail); n > 0 {
		d := geomath.Distance(t.trail[n-1].Coordinate(), fix.Coordinate())
		if d <= t.minDisplacement {
			return false, nil
		}
		t.length += d
	}
	t.trail = append(t.trail, TrailPoint{Lat: fix.Lat, Lon: fix.Lon, At: fix.At})
	return true, nil
}

// CurrentFix returns the most recent fix, if any.
func (t *Tracker) CurrentFix() (Fix, bool) {
	return t.current.Get()
}

// Accuracy returns the accuracy radius in meters of the most recent fix, if any.
func (t *Tracker) Accuracy() (float64, bool) {
	fix, ok := t.current.Get()
	return fix.Accuracy, ok
}

// Trail returns a copy of the recorded trail.
func (t *Tracker) Trail() []TrailPoint {
	out := make([]TrailPoint, len(t.trail))
	copy(out, t.trail)
	return out
}

// TrailLength returns the summed distance in meters between consecutive trail points.
func (t *Tracker) TrailLength() float64 {
	return t.length
}

// ClearTrail removes all trail points.
func (t *Tracker) ClearTrail() {
	t.trail = nil
	t.length = 0
}

// Reset stops tracking and forgets the current fix and the trail.
func (t *Tracker) Reset() {
	t.Stop()
	t.current.Reset()
	t.ClearTrail()
}
