// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package session

import (
	"time"

	"github.com/wneessen/trailnav/internal/geomath"
	"github.com/wneessen/trailnav/internal/tracker"
	"github.com/wneessen/trailnav/internal/waypoint"
)

// State is a read-only snapshot of the session. Slices are shared between snapshots and must
// not be modified.
type State struct {
	Heading      float64
	HeadingKnown bool

	Fix      tracker.Fix
	HasFix   bool
	Tracking bool

	Trail       []tracker.TrailPoint
	TrailLength float64
	Waypoints   []waypoint.Waypoint

	// Target is the selected waypoint. Distance, Bearing and RelativeBearing are only set if
	// there is a target and a fix. RelativeBearing also requires a known heading.
	Target          *waypoint.Waypoint
	HasNavigation   bool
	Distance        float64
	Bearing         float64
	RelativeBearing float64
	Alerted         bool

	// Nearest is the closest waypoint to the current fix, if there is a fix and any waypoint.
	Nearest *waypoint.Ranged
	// Nearby holds the waypoints within the nearby radius of the current fix, closest first.
	Nearby []waypoint.Ranged

	UpdatedAt time.Time
}

// snapshotCache keeps the slices of the last snapshot until they change.
type snapshotCache struct {
	trail     []tracker.TrailPoint
	waypoints []waypoint.Waypoint
}

// Snapshot returns the state as of the last processed event or action. It is safe to call
// from any goroutine.
func (s *Session) Snapshot() State {
	return *s.state.Load()
}

// publish builds a new snapshot. It must only be called from the handler loop or before the
// loop runs.
func (s *Session) publish() {
	if s.snap.trail == nil {
		s.snap.trail = s.tracker.Trail()
	}
	if s.snap.waypoints == nil {
		s.snap.waypoints = s.store.All()
	}

	st := &State{
		Tracking:    s.tracker.Tracking(),
		Trail:       s.snap.trail,
		TrailLength: s.tracker.TrailLength(),
		Waypoints:   s.snap.waypoints,
		Alerted:     s.alerter.Alerted(),
		UpdatedAt:   time.Now(),
	}
	st.Heading, st.HeadingKnown = s.filter.Heading()
	st.Fix, st.HasFix = s.tracker.CurrentFix()

	if s.target != nil {
		target := *s.target
		st.Target = &target
	}
	if st.HasFix {
		pos := st.Fix.Coordinate()
		if st.Target != nil {
			st.HasNavigation = true
			st.Distance = geomath.Distance(pos, st.Target.Coordinate())
			st.Bearing = geomath.Bearing(pos, st.Target.Coordinate())
			if st.HeadingKnown {
				st.RelativeBearing = geomath.RelativeBearing(st.Bearing, st.Heading)
			}
		}
		if wp, d, ok := s.store.Nearest(pos); ok {
			st.Nearest = &waypoint.Ranged{Waypoint: wp, Distance: d}
		}
		if s.nearby > 0 {
			st.Nearby = s.store.InRange(pos, s.nearby)
		}
	}
	s.state.Store(st)
}
