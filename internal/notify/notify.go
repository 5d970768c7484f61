// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package notify delivers arrival events to the user.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wneessen/trailnav/internal/geomath"
	"github.com/wneessen/trailnav/internal/logger"
	"github.com/wneessen/trailnav/internal/proximity"
)

// Notifier delivers an arrival event.
type Notifier interface {
	Notify(ctx context.Context, arrival proximity.Arrival) error
}

// Formatter renders the summary and body of an arrival message.
type Formatter func(arrival proximity.Arrival) (summary, body string)

// DefaultFormatter renders an English arrival message.
func DefaultFormatter(arrival proximity.Arrival) (string, string) {
	summary := fmt.Sprintf("Arrived at %s", arrival.Target.Name)
	body := fmt.Sprintf("%s %s, %s away", arrival.Target.Category.Icon(), arrival.Target.Category.Label(),
		geomath.FormatDistance(arrival.Distance))
	return summary, body
}

// Log writes arrival events to the logger.
type Log struct {
	logger *logger.Logger
	format Formatter
}

// NewLog returns a Log notifier. A nil formatter selects DefaultFormatter.
func NewLog(log *logger.Logger, format Formatter) *Log {
	if format == nil {
		format = DefaultFormatter
	}
	return &Log{logger: log, format: format}
}

// Notify logs the arrival.
func (l *Log) Notify(_ context.Context, arrival proximity.Arrival) error {
	summary, body := l.format(arrival)
	l.logger.Info(summary, slog.String("details", body), slog.String("waypoint", arrival.Target.ID),
		slog.Float64("distance", arrival.Distance))
	return nil
}

// Multi fans an arrival out to several notifiers. All notifiers are called, their errors are
// joined.
type Multi []Notifier

// Notify calls every notifier in order.
func (m Multi) Notify(ctx context.Context, arrival proximity.Arrival) error {
	var errs error
	for _, n := range m {
		if err := n.Notify(ctx, arrival); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}
