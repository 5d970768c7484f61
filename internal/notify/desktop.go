// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/trailnav/internal/proximity"
)

const (
	NotificationsBusName = "org.freedesktop.Notifications"
	NotificationsPath    = "/org/freedesktop/Notifications"
	NotifyMethod         = NotificationsBusName + ".Notify"

	AppName = "trailnav"
)

// caller is the subset of dbus.BusObject used to send a notification.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

type connectFunc func(ctx context.Context) (obj caller, closeFn func() error, err error)

// Desktop shows arrival events as freedesktop notifications on the session bus.
type Desktop struct {
	format    Formatter
	timeout   int32
	connectFn connectFunc
}

// NewDesktop returns a Desktop notifier. A nil formatter selects DefaultFormatter.
func NewDesktop(format Formatter) *Desktop {
	if format == nil {
		format = DefaultFormatter
	}
	return &Desktop{
		format:    format,
		timeout:   -1,
		connectFn: connectSessionBus,
	}
}

// Notify sends the arrival as a desktop notification.
func (d *Desktop) Notify(ctx context.Context, arrival proximity.Arrival) (err error) {
	obj, closeFn, err := d.connectFn(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeFn(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close session bus: %w", closeErr))
		}
	}()

	summary, body := d.format(arrival)
	var id uint32
	call := obj.CallWithContext(ctx, NotifyMethod, 0, AppName, uint32(0), "", summary, body,
		[]string{}, map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(2))}, d.timeout)
	if err = call.Store(&id); err != nil {
		return fmt.Errorf("failed to send desktop notification: %w", err)
	}
	return nil
}

func connectSessionBus(ctx context.Context) (caller, func() error, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return conn.Object(NotificationsBusName, NotificationsPath), conn.Close, nil
}
