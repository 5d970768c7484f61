// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geomathtest provides coordinate helpers for tests.
package geomathtest

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/wneessen/trailnav/internal/geomath"
)

// Destination calculates the point reached from start after travelling distMeters along the
// given initial bearing in degrees.
func Destination(start geomath.Coordinate, distMeters, bearing float64) geomath.Coordinate {
	const R = orb.EarthRadius
	lat1 := start.Lat * (math.Pi / 180.0)
	lon1 := start.Lon * (math.Pi / 180.0)
	brng := bearing * (math.Pi / 180.0)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(distMeters/R) +
		math.Cos(lat1)*math.Sin(distMeters/R)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(math.Sin(brng)*math.Sin(distMeters/R)*math.Cos(lat1),
		math.Cos(distMeters/R)-math.Sin(lat1)*math.Sin(lat2))

	return geomath.Coordinate{
		Lat: lat2 * (180.0 / math.Pi),
		Lon: lon2 * (180.0 / math.Pi),
	}
}
