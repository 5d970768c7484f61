// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geomath provides the geometric helpers every navigation view depends on: great-circle
// distance, initial bearing and a local planar projection for placing points on screen.
package geomath

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const (
	// MetersPerDegree is the length of one degree of latitude used by the equirectangular projection.
	MetersPerDegree = 111139.0

	// KilometerThreshold is the distance from which FormatDistance switches to kilometers.
	KilometerThreshold = 1000.0
)

// Coordinate represents a geographic coordinate in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid checks if the coordinate is valid according to the EPSG logic
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// String returns the coordinate as "lat,lon".
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// point converts the coordinate into an orb.Point. orb uses [lon, lat] order.
func (c Coordinate) point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// Distance returns the great-circle distance between a and b in meters. We use the Haversine
// formula on a spherical Earth, which is accurate to about 0.5% compared to an ellipsoidal
// geodesic.
func Distance(a, b Coordinate) float64 {
	return geo.DistanceHaversine(a.point(), b.point())
}

// Bearing returns the initial compass bearing in degrees [0, 360) for the great-circle path
// from "from" to "to". Identical points yield 0.
func Bearing(from, to Coordinate) float64 {
	return Normalize(geo.Bearing(from.point(), to.point()))
}

// Normalize wraps an angle in degrees into [0, 360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -1e-15 + 360 rounds to 360
	if deg >= 360 {
		return 0
	}
	return deg
}

// RelativeBearing returns the angle between a bearing and the current heading in the range
// (-180, 180]. Positive values mean the target is to the right.
func RelativeBearing(bearing, heading float64) float64 {
	rel := math.Mod(bearing-heading, 360)
	if rel <= -180 {
		rel += 360
	}
	if rel > 180 {
		rel -= 360
	}
	return rel
}

// Project places point relative to origin on a local flat plane using the equirectangular
// approximation. dx grows eastwards and dy northwards; both are in meters multiplied by
// metersPerUnit. Only valid for short ranges (tens of km).
func Project(origin, point Coordinate, metersPerUnit float64) (dx, dy float64) {
	dy = (point.Lat - origin.Lat) * MetersPerDegree
	dx = (point.Lon - origin.Lon) * MetersPerDegree * math.Cos(origin.Lat*math.Pi/180)
	return dx * metersPerUnit, dy * metersPerUnit
}

// FormatDistance returns a short human readable distance, e.g. "37 m" or "1.4 km".
func FormatDistance(meters float64) string {
	if meters >= KilometerThreshold {
		return fmt.Sprintf("%.1f km", meters/1000)
	}
	return fmt.Sprintf("%d m", int(meters))
}
