// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package permission answers whether the user granted access to location data.
package permission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	DBusListNamesAddress = "org.freedesktop.DBus.ListNames"
	GeoclueAgentDBusName = "org.freedesktop.GeoClue2.DemoAgent"
)

// Oracle reports whether location permission is granted.
type Oracle interface {
	Granted(ctx context.Context) (bool, error)
}

// Static is an Oracle with a fixed answer, typically taken from the configuration.
type Static bool

// Granted returns the fixed answer.
func (s Static) Granted(context.Context) (bool, error) {
	return bool(s), nil
}

// GeoClueAgent grants location permission if a GeoClue agent is running on the session bus.
// The agent is the component that asks the user for location access on the desktop.
type GeoClueAgent struct {
	agentName string
	listFn    func(ctx context.Context) ([]string, error)
}

// NewGeoClueAgent returns a GeoClueAgent oracle for the default demo agent.
func NewGeoClueAgent() *GeoClueAgent {
	return &GeoClueAgent{
		agentName: GeoclueAgentDBusName,
		listFn:    listSessionBusNames,
	}
}

// Granted reports whether the agent is present on the session bus.
func (g *GeoClueAgent) Granted(ctx context.Context) (bool, error) {
	list, err := g.listFn(ctx)
	if err != nil {
		return false, err
	}
	for _, v := range list {
		if strings.EqualFold(v, g.agentName) {
			return true, nil
		}
	}
	return false, nil
}

func listSessionBusNames(ctx context.Context) (list []string, err error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close session bus: %w", closeErr))
		}
	}()

	if err = conn.BusObject().CallWithContext(ctx, DBusListNamesAddress, 0).Store(&list); err != nil {
		return nil, fmt.Errorf("failed to call DBus ListNames: %w", err)
	}
	return list, nil
}
