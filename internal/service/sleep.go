// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/trailnav/internal/logger"
)

const (
	login1Interface = "org.freedesktop.login1.Manager"
	sleepMember     = "PrepareForSleep"

	resumeDebounce   = 2 * time.Second
	signalBufferSize = 8

	busReconnectDelay   = 5 * time.Second
	reconnectDelay      = 2 * time.Second
	subscribeRetryDelay = 10 * time.Second
)

// monitorSleepResume restarts the location providers whenever logind reports a resume from
// sleep. Lost bus connections are re-established until the context is cancelled.
func (s *Service) monitorSleepResume(ctx context.Context) {
	var lastResume time.Time

	for {
		conn := s.connectToSystemBus(ctx)
		if conn == nil {
			return
		}
		if !s.subscribeSleepSignal(ctx, conn) {
			continue
		}

		sigCh := make(chan *dbus.Signal, signalBufferSize)
		conn.Signal(sigCh)
		s.logger.Debug("subscribed to dbus signal", slog.String("interface", login1Interface),
			slog.String("member", sleepMember))

		s.handleSleepSignals(ctx, sigCh, &lastResume)

		conn.RemoveSignal(sigCh)
		if err := conn.Close(); err != nil {
			s.logger.Debug("failed to close system bus connection", logger.Err(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// connectToSystemBus retries to connect to the system bus until it succeeds or the context is
// cancelled. The connection is closed when the context is cancelled.
func (s *Service) connectToSystemBus(ctx context.Context) *dbus.Conn {
	for {
		conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
		if err != nil {
			s.logger.Debug("failed to connect to system bus", logger.Err(err))
			select {
			case <-time.After(busReconnectDelay):
				continue
			case <-ctx.Done():
				return nil
			}
		}
		return conn
	}
}

func (s *Service) subscribeSleepSignal(ctx context.Context, conn *dbus.Conn) bool {
	err := conn.AddMatchSignalContext(ctx, dbus.WithMatchInterface(login1Interface),
		dbus.WithMatchMember(sleepMember))
	if err == nil {
		return true
	}

	s.logger.Error("failed to subscribe to dbus signal", slog.String("interface", login1Interface),
		slog.String("member", sleepMember), logger.Err(err))
	if err = conn.Close(); err != nil {
		s.logger.Debug("failed to close system bus connection", logger.Err(err))
	}
	select {
	case <-time.After(subscribeRetryDelay):
	case <-ctx.Done():
	}
	return false
}

// handleSleepSignals returns when the context is cancelled or the signal channel is closed.
func (s *Service) handleSleepSignals(ctx context.Context, sigCh chan *dbus.Signal, lastResume *time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}
			if isResumeSignal(sig) {
				s.handleResume(lastResume)
			}
		}
	}
}

// isResumeSignal reports whether sig is a PrepareForSleep(false) signal.
func isResumeSignal(sig *dbus.Signal) bool {
	if sig == nil || len(sig.Body) != 1 {
		return false
	}
	sleeping, ok := sig.Body[0].(bool)
	return ok && !sleeping
}

func (s *Service) handleResume(lastResume *time.Time) {
	now := time.Now()
	if now.Sub(*lastResume) < resumeDebounce {
		return
	}
	*lastResume = now

	s.logger.Debug("resuming from sleep, restarting location providers")
	s.restartLocation()
}
