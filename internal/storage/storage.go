// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package storage persists the serialized waypoint collection as a single text blob.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"

	// DefaultKey is the blob key used when none is configured.
	DefaultKey = "waypoints"
)

// ErrPersistence is returned when a blob cannot be read from or written to the backend.
var ErrPersistence = errors.New("persistence failure")

// Blob reads and writes a single text blob. A blob that was never written reads as the empty
// string without error.
type Blob interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, data string) error
	Close() error
}

// Open returns the Blob backend for the given driver. For the file driver path is the file
// path, for the sqlite driver it is the database path and key selects the row.
func Open(driver, path, key string) (Blob, error) {
	switch strings.ToLower(driver) {
	case "", DriverFile:
		return NewFile(path), nil
	case DriverSQLite:
		return OpenSQLite(path, key)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
