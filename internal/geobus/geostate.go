// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

import (
	"time"

	"github.com/wneessen/trailnav/internal/geomath"
)

// FixState tracks the last location fix a provider emitted. Providers use it to honor the
// configured location update interval, so that a chatty source does not flood the queue.
type FixState struct {
	interval time.Duration
	last     geomath.Coordinate
	lastAt   time.Time
	haveLast bool
}

// NewFixState returns a FixState that lets at most one fix pass per interval. A zero interval
// lets every fix pass.
func NewFixState(interval time.Duration) *FixState {
	return &FixState{interval: interval}
}

// ShouldEmit reports whether a fix observed at the given time is due. A fix is due if it is the
// first one, or if the update interval has elapsed since the last emitted fix.
func (s *FixState) ShouldEmit(at time.Time) bool {
	if !s.haveLast {
		return true
	}
	return at.Sub(s.lastAt) >= s.interval
}

// Update records the given fix as emitted.
func (s *FixState) Update(coord geomath.Coordinate, at time.Time) {
	s.last = coord
	s.lastAt = at
	s.haveLast = true
}

// Last returns the last emitted coordinate and whether there is one.
func (s *FixState) Last() (geomath.Coordinate, bool) {
	return s.last, s.haveLast
}
