// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package sensorproxy provides an orientation source that reads the compass heading from
// iio-sensor-proxy over the D-Bus system bus.
package sensorproxy

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/trailnav/internal/geobus"
	"github.com/wneessen/trailnav/internal/logger"
	"github.com/wneessen/trailnav/internal/orientation"
)

const (
	name = "sensorproxy"

	BusName          = "net.hadess.SensorProxy"
	CompassPath      = "/net/hadess/SensorProxy/Compass"
	CompassInterface = "net.hadess.SensorProxy.Compass"

	propertiesInterface = "org.freedesktop.DBus.Properties"
	propertiesChanged   = propertiesInterface + ".PropertiesChanged"
	headingProperty     = "CompassHeading"
	hasCompassProperty  = "HasCompass"
)

var ErrNoCompass = errors.New("sensor proxy reports no compass")

// Compass delivers raw compass readings. A negative heading means that the sensor has no
// reading at the moment.
type Compass interface {
	Headings() <-chan float64
	Close() error
}

// connectFunc claims the compass and returns it.
type connectFunc func(ctx context.Context) (Compass, error)

// Provider emits orientation samples for every heading change reported by the compass.
type Provider struct {
	name      string
	logger    *logger.Logger
	connectFn connectFunc
}

// New returns a Provider for the iio-sensor-proxy compass.
func New(log *logger.Logger) *Provider {
	return &Provider{
		name:      name,
		logger:    log,
		connectFn: connect,
	}
}

// Name returns the name of the provider.
func (p *Provider) Name() string {
	return p.name
}

// LookupStream claims the compass and emits a heading sample for every reading. Readings
// without a heading are emitted as inactive samples. The stream is closed if the compass cannot
// be claimed or the reading channel ends.
func (p *Provider) LookupStream(ctx context.Context) <-chan geobus.Event {
	out := make(chan geobus.Event)

	go func() {
		defer close(out)

		compass, err := p.connectFn(ctx)
		if err != nil {
			p.logger.Debug("failed to claim compass", logger.Err(err))
			return
		}
		defer func() {
			if err := compass.Close(); err != nil {
				p.logger.Warn("failed to release compass", logger.Err(err))
			}
		}()

		headings := compass.Headings()
		for {
			select {
			case <-ctx.Done():
				return
			case heading, ok := <-headings:
				if !ok {
					return
				}
				select {
				case <-ctx.Done():
					return
				case out <- geobus.OrientationEvent(p.name, sampleFromHeading(heading)):
				}
			}
		}
	}()

	return out
}

func sampleFromHeading(heading float64) orientation.Sample {
	if heading < 0 {
		return orientation.Inactive()
	}
	return orientation.FromHeading(heading)
}

// dbusCompass is the D-Bus backed Compass.
type dbusCompass struct {
	conn     *dbus.Conn
	obj      dbus.BusObject
	signals  chan *dbus.Signal
	headings chan float64
	done     chan struct{}
}

func connect(ctx context.Context) (compass Compass, err error) {
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer func() {
		if err != nil {
			if closeErr := conn.Close(); closeErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to close system bus: %w", closeErr))
			}
		}
	}()

	obj := conn.Object(BusName, CompassPath)
	hasCompass, err := obj.GetProperty(CompassInterface + "." + hasCompassProperty)
	if err != nil {
		return nil, fmt.Errorf("failed to query compass availability: %w", err)
	}
	if available, ok := hasCompass.Value().(bool); !ok || !available {
		return nil, ErrNoCompass
	}

	if err = conn.AddMatchSignalContext(ctx,
		dbus.WithMatchObjectPath(CompassPath),
		dbus.WithMatchInterface(propertiesInterface),
		dbus.WithMatchMember("PropertiesChanged"),
	); err != nil {
		return nil, fmt.Errorf("failed to subscribe to compass updates: %w", err)
	}
	if err = obj.CallWithContext(ctx, CompassInterface+".ClaimCompass", 0).Err; err != nil {
		return nil, fmt.Errorf("failed to claim compass: %w", err)
	}

	c := &dbusCompass{
		conn:     conn,
		obj:      obj,
		signals:  make(chan *dbus.Signal, 16),
		headings: make(chan float64),
		done:     make(chan struct{}),
	}
	conn.Signal(c.signals)
	go c.forward()
	return c, nil
}

func (c *dbusCompass) forward() {
	defer close(c.headings)
	for {
		select {
		case <-c.done:
			return
		case sig, ok := <-c.signals:
			if !ok {
				return
			}
			heading, found := headingFromSignal(sig)
			if !found {
				continue
			}
			select {
			case <-c.done:
				return
			case c.headings <- heading:
			}
		}
	}
}

func (c *dbusCompass) Headings() <-chan float64 {
	return c.headings
}

// Close releases the compass and closes the bus connection.
func (c *dbusCompass) Close() error {
	close(c.done)
	c.conn.RemoveSignal(c.signals)
	var err error
	if callErr := c.obj.Call(CompassInterface+".ReleaseCompass", 0).Err; callErr != nil {
		err = fmt.Errorf("failed to release compass: %w", callErr)
	}
	if closeErr := c.conn.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to close system bus: %w", closeErr))
	}
	return err
}

// headingFromSignal extracts the compass heading from a PropertiesChanged signal of the compass
// interface.
func headingFromSignal(sig *dbus.Signal) (float64, bool) {
	if sig == nil || sig.Name != propertiesChanged || sig.Path != CompassPath || len(sig.Body) < 2 {
		return 0, false
	}
	iface, ok := sig.Body[0].(string)
	if !ok || iface != CompassInterface {
		return 0, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return 0, false
	}
	value, ok := changed[headingProperty]
	if !ok {
		return 0, false
	}
	heading, ok := value.Value().(float64)
	return heading, ok
}
