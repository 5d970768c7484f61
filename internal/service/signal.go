// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wneessen/trailnav/internal/logger"
	"github.com/wneessen/trailnav/internal/session"
	"github.com/wneessen/trailnav/internal/waypoint"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// stdLibSignalSource is the production implementation.
type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleSignals maps user signals to session actions. SIGUSR1 toggles tracking, SIGUSR2 saves
// a waypoint at the current fix and SIGHUP cycles the navigation target through the waypoints.
func (s *Service) HandleSignals(ctx context.Context, sigChan chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGUSR1:
				s.toggleTracking(ctx)
			case syscall.SIGUSR2:
				s.markWaypoint(ctx)
			case syscall.SIGHUP:
				s.cycleTarget(ctx)
			}
			s.printStatus(ctx)
		}
	}
}

func (s *Service) toggleTracking(ctx context.Context) {
	state, err := s.session.ToggleTracking(ctx)
	if err != nil {
		s.logger.Error("failed to toggle tracking", logger.Err(err))
		return
	}
	s.logger.Debug("tracking toggled", slog.String("state", state.String()))
}

func (s *Service) markWaypoint(ctx context.Context) {
	wp, err := s.session.AddWaypointAtCurrentFix(ctx, "", waypoint.Custom, "")
	if errors.Is(err, waypoint.ErrNoFixAvailable) {
		s.logger.Warn("no location fix available yet, waypoint not saved")
		return
	}
	if err != nil {
		s.logger.Error("failed to save waypoint", logger.Err(err))
		return
	}
	s.logger.Info("waypoint saved", slog.String("name", wp.Name), slog.Float64("lat", wp.Latitude),
		slog.Float64("lon", wp.Longitude))
}

// cycleTarget selects the waypoint after the current target. After the last waypoint the
// target is cleared.
func (s *Service) cycleTarget(ctx context.Context) {
	id := nextTarget(s.session.Snapshot())
	if err := s.session.SelectTarget(ctx, id); err != nil {
		s.logger.Error("failed to select target", logger.Err(err))
		return
	}
	s.logger.Debug("target selected", slog.String("waypoint", id))
}

func nextTarget(state session.State) string {
	if len(state.Waypoints) == 0 {
		return ""
	}
	if state.Target == nil {
		return state.Waypoints[0].ID
	}
	for i, wp := range state.Waypoints {
		if wp.ID == state.Target.ID && i+1 < len(state.Waypoints) {
			return state.Waypoints[i+1].ID
		}
	}
	return ""
}
