// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package proximity detects the arrival at a selected target waypoint.
package proximity

import (
	"time"

	"github.com/wneessen/trailnav/internal/geomath"
	"github.com/wneessen/trailnav/internal/waypoint"
)

// DefaultRadius is the distance in meters below which the target counts as reached.
const DefaultRadius = 10.0

// Arrival is emitted once the current position comes within the alert radius of the target.
type Arrival struct {
	Target   waypoint.Waypoint
	Distance float64
	At       time.Time
}

// Alerter fires at most one Arrival per target selection. Leaving and re-entering the radius of
// the same target does not fire again; only Reset re-arms it.
type Alerter struct {
	radius  float64
	alerted bool
}

// New returns an Alerter with the given radius. A radius <= 0 selects DefaultRadius.
func New(radius float64) *Alerter {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Alerter{radius: radius}
}

// Radius returns the alert radius in meters.
func (a *Alerter) Radius() float64 {
	return a.radius
}

// Check evaluates the position against the target. It returns an Arrival and true exactly once
// while no Reset happens in between.
func (a *Alerter) Check(pos geomath.Coordinate, target *waypoint.Waypoint) (Arrival, bool) {
	if target == nil || a.alerted {
		return Arrival{}, false
	}
	d := geomath.Distance(pos, target.Coordinate())
	if d >= a.radius {
		return Arrival{}, false
	}
	a.alerted = true
	return Arrival{Target: *target, Distance: d, At: time.Now()}, true
}

// Alerted reports whether the arrival for the current selection already fired.
func (a *Alerter) Alerted() bool {
	return a.alerted
}

// Reset re-arms the alerter. It must be called whenever the target selection changes.
func (a *Alerter) Reset() {
	a.alerted = false
}
