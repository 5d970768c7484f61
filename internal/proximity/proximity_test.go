// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package proximity

import (
	"testing"

	"github.com/wneessen/trailnav/internal/geomath"
	"github.com/wneessen/trailnav/internal/geomath/geomathtest"
	"github.com/wneessen/trailnav/internal/waypoint"
)

var target = waypoint.Waypoint{ID: "t1", Name: "Spring", Latitude: 46.5, Longitude: 7.9, Category: waypoint.Water}

func at(dist float64) geomath.Coordinate {
	return geomathtest.Destination(target.Coordinate(), dist, 135)
}

func TestNew(t *testing.T) {
	if r := New(0).Radius(); r != DefaultRadius {
		t.Errorf("expected default radius %f, got %f", DefaultRadius, r)
	}
	if r := New(25).Radius(); r != 25 {
		t.Errorf("expected radius 25, got %f", r)
	}
}

func TestAlerter_Check(t *testing.T) {
	t.Run("no target never fires", func(t *testing.T) {
		a := New(0)
		if _, ok := a.Check(at(0), nil); ok {
			t.Error("expected no arrival without a target")
		}
	})
	t.Run("fires once per selection", func(t *testing.T) {
		a := New(0)
		steps := []struct {
			dist float64
			fire bool
		}{
			{10.5, false},
			{9, true},
			{15, false},
			{8, false},
			{1, false},
		}
		fired := 0
		for i, step := range steps {
			arrival, ok := a.Check(at(step.dist), &target)
			if ok != step.fire {
				t.Errorf("step %d: expected fire to be %t, got %t", i, step.fire, ok)
			}
			if ok {
				fired++
				if arrival.Target.ID != target.ID {
					t.Errorf("expected arrival for %s, got %s", target.ID, arrival.Target.ID)
				}
				if arrival.Distance < 8.9 || arrival.Distance > 9.1 {
					t.Errorf("expected arrival distance of about 9m, got %f", arrival.Distance)
				}
			}
		}
		if fired != 1 {
			t.Errorf("expected exactly 1 arrival, got %d", fired)
		}
		if !a.Alerted() {
			t.Error("expected alerter to be marked as alerted")
		}

		a.Reset()
		if _, ok := a.Check(at(8), &target); !ok {
			t.Error("expected arrival after reset")
		}
	})
	t.Run("radius boundary is exclusive", func(t *testing.T) {
		a := New(0)
		if _, ok := a.Check(at(10.01), &target); ok {
			t.Error("expected no arrival outside the radius")
		}
		if _, ok := a.Check(at(9.99), &target); !ok {
			t.Error("expected arrival inside the radius")
		}
	})
}
