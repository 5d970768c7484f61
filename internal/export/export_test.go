// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/wneessen/trailnav/internal/tracker"
	"github.com/wneessen/trailnav/internal/waypoint"
)

var testTrack = Track{
	Name: "Morning walk",
	Waypoints: []waypoint.Waypoint{
		{ID: "id1", Name: "Water Hole", Latitude: 10, Longitude: 20, Category: waypoint.Water, Notes: "clean"},
		{ID: "id2", Name: "Camp", Latitude: 10.001, Longitude: 20.001, Category: waypoint.Camp},
	},
	Trail: []tracker.TrailPoint{
		{Lat: 10, Lon: 20, At: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)},
		{Lat: 10.0005, Lon: 20.0005, At: time.Date(2025, 6, 1, 8, 5, 0, 0, time.UTC)},
	},
}

func TestFeatureCollection(t *testing.T) {
	t.Run("waypoints and trail are exported", func(t *testing.T) {
		fc := FeatureCollection(testTrack)
		if len(fc.Features) != 3 {
			t.Fatalf("expected 3 features, got %d", len(fc.Features))
		}
		point, ok := fc.Features[0].Geometry.(orb.Point)
		if !ok {
			t.Fatalf("expected point geometry, got %T", fc.Features[0].Geometry)
		}
		if point.Lon() != 20 || point.Lat() != 10 {
			t.Errorf("expected point at 10,20, got %v", point)
		}
		if fc.Features[0].Properties.MustString("category") != "WATER" {
			t.Errorf("expected category WATER, got %v", fc.Features[0].Properties["category"])
		}
		if _, ok = fc.Features[2].Geometry.(orb.LineString); !ok {
			t.Errorf("expected line string geometry, got %T", fc.Features[2].Geometry)
		}
	})
	t.Run("single point trail is not exported", func(t *testing.T) {
		fc := FeatureCollection(Track{Trail: testTrack.Trail[:1]})
		if len(fc.Features) != 0 {
			t.Errorf("expected no features, got %d", len(fc.Features))
		}
	})
}

func TestGeoJSON(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	if err := GeoJSON(buf, testTrack); err != nil {
		t.Fatalf("failed to export GeoJSON: %s", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	if err != nil {
		t.Fatalf("failed to parse exported GeoJSON: %s", err)
	}
	if len(fc.Features) != 3 {
		t.Errorf("expected 3 features, got %d", len(fc.Features))
	}
	if fc.Features[0].Properties.MustString("name") != "Water Hole" {
		t.Errorf("expected first feature to be Water Hole, got %v", fc.Features[0].Properties["name"])
	}
}

func TestKML(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	if err := KML(buf, testTrack); err != nil {
		t.Fatalf("failed to export KML: %s", err)
	}
	out := buf.String()
	for _, want := range []string{"<name>Morning walk</name>", "<name>Water Hole</name>", "20,10", "<LineString>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected KML to contain %q", want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		file    string
		marker  string
		wantErr bool
	}{
		{"track.kml", "<kml", false},
		{"track.geojson", "{", false},
		{"track.JSON", "{", false},
		{"track.gpx", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.file, func(t *testing.T) {
			path := filepath.Join(dir, tc.file)
			err := WriteFile(path, testTrack)
			if tc.wantErr {
				if err == nil {
					t.Error("expected error, but didn't get one")
				}
				return
			}
			if err != nil {
				t.Fatalf("failed to write export: %s", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read export: %s", err)
			}
			if !strings.Contains(string(data), tc.marker) {
				t.Errorf("expected export to contain %q", tc.marker)
			}
		})
	}
}
