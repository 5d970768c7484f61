// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package orientation decodes raw device orientation samples into a compass heading.
package orientation

import (
	"math"
	"time"

	"github.com/wneessen/trailnav/internal/geomath"
	"github.com/wneessen/trailnav/internal/vartype"
)

// Sample is a single raw orientation reading as delivered by the host sensor layer. Exactly one
// of Matrix, Vector or Heading is expected to be set. A sample with Active set to false reports
// that the sensor is currently not delivering data.
type Sample struct {
	// Matrix is a row-major 3x3 rotation matrix mapping device to world coordinates.
	Matrix *[9]float64
	// Vector is a rotation vector (x, y, z[, w]) as delivered by rotation vector sensors.
	Vector []float64
	// Heading is an already computed compass heading in degrees.
	Heading *float64

	Active bool
	At     time.Time
}

// FromMatrix returns an active Sample for the given rotation matrix.
func FromMatrix(m [9]float64) Sample {
	return Sample{Matrix: &m, Active: true, At: time.Now()}
}

// FromVector returns an active Sample for the given rotation vector.
func FromVector(v ...float64) Sample {
	return Sample{Vector: v, Active: true, At: time.Now()}
}

// FromHeading returns an active Sample carrying a ready compass heading.
func FromHeading(deg float64) Sample {
	return Sample{Heading: &deg, Active: true, At: time.Now()}
}

// Inactive returns a Sample signalling that the sensor stopped delivering data.
func Inactive() Sample {
	return Sample{At: time.Now()}
}

// Filter converts samples into a normalized heading. It does no smoothing: every usable sample
// fully replaces the previous heading.
type Filter struct {
	heading vartype.Optional[float64]
}

// Update applies the sample and returns the resulting heading and whether the sample was used.
// Inactive or undecodable samples leave the last known heading untouched.
func (f *Filter) Update(s Sample) (float64, bool) {
	if !s.Active {
		return f.heading.Or(0), false
	}

	deg, ok := decode(s)
	if !ok {
		return f.heading.Or(0), false
	}
	f.heading.Set(deg)
	return deg, true
}

// Heading returns the last known heading and whether any sample has been applied yet.
func (f *Filter) Heading() (float64, bool) {
	return f.heading.Get()
}

func decode(s Sample) (float64, bool) {
	var deg float64
	switch {
	case s.Matrix != nil:
		deg = Azimuth(*s.Matrix)
	case len(s.Vector) >= 3:
		deg = Azimuth(RotationMatrixFromVector(s.Vector))
	case s.Heading != nil:
		deg = geomath.Normalize(*s.Heading)
	default:
		return 0, false
	}
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0, false
	}
	return deg, true
}

// Azimuth returns the rotation around the vertical axis of the rotation matrix in compass
// degrees [0, 360). Negative angles are wrapped by adding 360.
func Azimuth(r [9]float64) float64 {
	deg := math.Atan2(r[1], r[4]) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// RotationMatrixFromVector converts a rotation vector (the vector part of a unit quaternion,
// optionally followed by its scalar part) into a row-major 3x3 rotation matrix.
func RotationMatrixFromVector(v []float64) [9]float64 {
	var r [9]float64
	if len(v) < 3 {
		r[0], r[4], r[8] = 1, 1, 1
		return r
	}

	q1, q2, q3 := v[0], v[1], v[2]
	var q0 float64
	if len(v) >= 4 {
		q0 = v[3]
	} else {
		q0 = 1 - q1*q1 - q2*q2 - q3*q3
		if q0 > 0 {
			q0 = math.Sqrt(q0)
		} else {
			q0 = 0
		}
	}

	sqQ1 := 2 * q1 * q1
	sqQ2 := 2 * q2 * q2
	sqQ3 := 2 * q3 * q3
	q1q2 := 2 * q1 * q2
	q3q0 := 2 * q3 * q0
	q1q3 := 2 * q1 * q3
	q2q0 := 2 * q2 * q0
	q2q3 := 2 * q2 * q3
	q1q0 := 2 * q1 * q0

	r[0] = 1 - sqQ2 - sqQ3
	r[1] = q1q2 - q3q0
	r[2] = q1q3 + q2q0

	r[3] = q1q2 + q3q0
	r[4] = 1 - sqQ1 - sqQ3
	r[5] = q2q3 - q1q0

	r[6] = q1q3 - q2q0
	r[7] = q2q3 + q1q0
	r[8] = 1 - sqQ1 - sqQ2
	return r
}
