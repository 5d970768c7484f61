// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package orientation

import (
	"math"
	"testing"
)

// zRotation returns the rotation vector for a counter-clockwise rotation of deg around the z axis.
func zRotation(deg float64) []float64 {
	half := deg * math.Pi / 360
	return []float64{0, 0, math.Sin(half), math.Cos(half)}
}

// zMatrix returns the rotation matrix for a rotation of the device so that its y axis points
// at the given compass heading.
func zMatrix(heading float64) [9]float64 {
	rad := heading * math.Pi / 180
	return [9]float64{
		math.Cos(rad), math.Sin(rad), 0,
		-math.Sin(rad), math.Cos(rad), 0,
		0, 0, 1,
	}
}

func TestAzimuth(t *testing.T) {
	tests := []struct {
		name    string
		heading float64
	}{
		{"north", 0},
		{"east", 90},
		{"south", 180},
		{"west", 270},
		{"north-west", 315},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Azimuth(zMatrix(tc.heading))
			if math.Abs(got-tc.heading) > 1e-9 {
				t.Errorf("expected azimuth %f, got %f", tc.heading, got)
			}
			if got < 0 || got >= 360 {
				t.Errorf("expected azimuth in [0,360), got %f", got)
			}
		})
	}
}

func TestRotationMatrixFromVector(t *testing.T) {
	t.Run("identity quaternion yields identity matrix", func(t *testing.T) {
		r := RotationMatrixFromVector([]float64{0, 0, 0, 1})
		want := [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
		if r != want {
			t.Errorf("expected identity matrix, got %v", r)
		}
	})
	t.Run("missing scalar part is derived", func(t *testing.T) {
		v := zRotation(40)
		full := RotationMatrixFromVector(v)
		derived := RotationMatrixFromVector(v[:3])
		for i := range full {
			if math.Abs(full[i]-derived[i]) > 1e-9 {
				t.Fatalf("expected derived matrix %v to equal %v", derived, full)
			}
		}
	})
	t.Run("short vector yields identity", func(t *testing.T) {
		r := RotationMatrixFromVector([]float64{0.1})
		if r[0] != 1 || r[4] != 1 || r[8] != 1 {
			t.Errorf("expected identity matrix, got %v", r)
		}
	})
	t.Run("counter-clockwise turn points west", func(t *testing.T) {
		got := Azimuth(RotationMatrixFromVector(zRotation(90)))
		if math.Abs(got-270) > 1e-9 {
			t.Errorf("expected azimuth 270, got %f", got)
		}
	})
}

func TestFilter_Update(t *testing.T) {
	t.Run("fresh filter has no heading", func(t *testing.T) {
		f := &Filter{}
		if _, ok := f.Heading(); ok {
			t.Error("expected no heading before the first sample")
		}
	})
	t.Run("each sample replaces the heading", func(t *testing.T) {
		f := &Filter{}
		for _, deg := range []float64{10, 200, 45} {
			got, ok := f.Update(FromMatrix(zMatrix(deg)))
			if !ok {
				t.Fatal("expected sample to be applied")
			}
			if math.Abs(got-deg) > 1e-9 {
				t.Errorf("expected heading %f, got %f", deg, got)
			}
		}
	})
	t.Run("inactive sensor keeps the last heading", func(t *testing.T) {
		f := &Filter{}
		f.Update(FromHeading(123))
		got, ok := f.Update(Inactive())
		if ok {
			t.Error("expected inactive sample to be ignored")
		}
		if got != 123 {
			t.Errorf("expected heading to stay at 123, got %f", got)
		}
		if h, known := f.Heading(); !known || h != 123 {
			t.Errorf("expected known heading 123, got %f (known: %t)", h, known)
		}
	})
	t.Run("negative heading samples are wrapped", func(t *testing.T) {
		f := &Filter{}
		got, _ := f.Update(FromHeading(-90))
		if got != 270 {
			t.Errorf("expected heading 270, got %f", got)
		}
	})
	t.Run("rotation vector samples", func(t *testing.T) {
		f := &Filter{}
		got, ok := f.Update(FromVector(zRotation(45)...))
		if !ok {
			t.Fatal("expected sample to be applied")
		}
		if math.Abs(got-315) > 1e-9 {
			t.Errorf("expected heading 315, got %f", got)
		}
	})
	t.Run("undecodable samples are ignored", func(t *testing.T) {
		f := &Filter{}
		f.Update(FromHeading(10))
		nan := math.NaN()
		tests := []struct {
			name   string
			sample Sample
		}{
			{"empty sample", Sample{Active: true}},
			{"short vector", Sample{Vector: []float64{1}, Active: true}},
			{"NaN heading", Sample{Heading: &nan, Active: true}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				if got, ok := f.Update(tc.sample); ok || got != 10 {
					t.Errorf("expected sample to be ignored and heading to stay 10, got %f (applied: %t)", got, ok)
				}
			})
		}
	})
}
