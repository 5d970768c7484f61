// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"log/slog"

	"github.com/wneessen/trailnav/internal/logger"
)

// schedulePersist queues the current waypoint state for writing. Only the latest state is
// kept; a state that has not been picked up by the persister yet is replaced.
func (s *Session) schedulePersist() {
	s.dirty = true
	if s.blob == nil {
		return
	}
	data := s.store.Serialize()
	for {
		select {
		case s.pending <- data:
			return
		default:
		}
		select {
		case <-s.pending:
		default:
		}
	}
}

// persister writes queued states until the pending channel is closed.
func (s *Session) persister() {
	for data := range s.pending {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		err := s.blob.Write(ctx, data)
		cancel()
		if err != nil {
			s.logger.Error("failed to persist waypoints", logger.Err(err))
			s.onError(err)
			continue
		}
		s.logger.Debug("waypoints persisted", slog.Int("bytes", len(data)))
	}
}
