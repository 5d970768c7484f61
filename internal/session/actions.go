// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/trailnav/internal/orientation"
	"github.com/wneessen/trailnav/internal/tracker"
	"github.com/wneessen/trailnav/internal/waypoint"
)

// ToggleTracking starts tracking if the session is idle and stops it otherwise. It returns the
// resulting tracker state. Starting fails with tracker.ErrPermissionDenied if the permission
// oracle does not grant location access.
func (s *Session) ToggleTracking(ctx context.Context) (tracker.State, error) {
	// The oracle may block on IPC, so it is queried before entering the handler loop.
	granted, permErr := s.permission.Granted(ctx)

	var state tracker.State
	err := s.submit(ctx, func() error {
		defer func() { state = s.tracker.State() }()
		if s.tracker.Tracking() {
			s.tracker.Stop()
			s.logger.Info("tracking stopped")
			return nil
		}
		if permErr != nil {
			return fmt.Errorf("%w: %w", tracker.ErrPermissionDenied, permErr)
		}
		if err := s.tracker.Start(granted); err != nil {
			return err
		}
		s.logger.Info("tracking started")
		return nil
	})
	return state, err
}

// SelectTarget selects the waypoint with the given ID as navigation target. An empty ID clears
// the target. Every successful call re-arms the arrival alert. An unknown ID fails with
// ErrUnknownWaypoint and leaves the selection unchanged.
func (s *Session) SelectTarget(ctx context.Context, id string) error {
	return s.submit(ctx, func() error {
		if id == "" {
			s.target = nil
			s.alerter.Reset()
			return nil
		}
		wp, ok := s.store.Find(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownWaypoint, id)
		}
		s.target = &wp
		s.alerter.Reset()
		s.logger.Debug("target selected", slog.String("waypoint", wp.ID), slog.String("name", wp.Name))
		return nil
	})
}

// AddWaypointAtCurrentFix stores a new waypoint at the position of the current fix. It fails
// with waypoint.ErrNoFixAvailable if no fix was received yet.
func (s *Session) AddWaypointAtCurrentFix(ctx context.Context, name string, category waypoint.Category,
	notes string,
) (waypoint.Waypoint, error) {
	var wp waypoint.Waypoint
	err := s.submit(ctx, func() error {
		fix, ok := s.tracker.CurrentFix()
		if !ok {
			return waypoint.ErrNoFixAvailable
		}
		coord := fix.Coordinate()
		added, err := s.store.Add(name, category, notes, &coord)
		if err != nil {
			return err
		}
		wp = added
		s.snap.waypoints = nil
		s.schedulePersist()
		s.logger.Info("waypoint added", slog.String("waypoint", wp.ID), slog.String("name", wp.Name),
			slog.String("category", wp.Category.String()))
		return nil
	})
	return wp, err
}

// ClearAllWaypoints removes every waypoint. The trail and the target selection are cleared as
// well.
func (s *Session) ClearAllWaypoints(ctx context.Context) error {
	return s.submit(ctx, func() error {
		s.store.RemoveAll()
		s.tracker.ClearTrail()
		s.target = nil
		s.alerter.Reset()
		s.snap.waypoints = nil
		s.snap.trail = nil
		s.schedulePersist()
		s.logger.Info("all waypoints cleared")
		return nil
	})
}

// ClearTrail removes the recorded trail.
func (s *Session) ClearTrail(ctx context.Context) error {
	return s.submit(ctx, func() error {
		s.tracker.ClearTrail()
		s.snap.trail = nil
		return nil
	})
}

// OnOrientationSample processes an orientation sample through the handler loop.
func (s *Session) OnOrientationSample(ctx context.Context, sample orientation.Sample) error {
	return s.submit(ctx, func() error {
		s.handleSample(sample)
		return nil
	})
}

// OnLocationFix processes a location fix through the handler loop. Invalid fixes fail with
// tracker.ErrInvalidFix and leave the state unchanged.
func (s *Session) OnLocationFix(ctx context.Context, fix tracker.Fix) error {
	return s.submit(ctx, func() error {
		return s.handleFix(fix)
	})
}
