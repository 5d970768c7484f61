// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package export writes waypoints and the recorded trail to GeoJSON and KML documents.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-kml/v3"

	"github.com/wneessen/trailnav/internal/tracker"
	"github.com/wneessen/trailnav/internal/waypoint"
)

// Track is the content of an export.
type Track struct {
	Name      string
	Waypoints []waypoint.Waypoint
	Trail     []tracker.TrailPoint
}

// FeatureCollection returns the track as GeoJSON features: one point per waypoint and, if the
// trail has at least two points, one line string for the trail.
func FeatureCollection(track Track) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, wp := range track.Waypoints {
		f := geojson.NewFeature(orb.Point{wp.Longitude, wp.Latitude})
		f.ID = wp.ID
		f.Properties["name"] = wp.Name
		f.Properties["category"] = wp.Category.String()
		f.Properties["icon"] = wp.Category.Icon()
		if wp.Notes != "" {
			f.Properties["notes"] = wp.Notes
		}
		fc.Append(f)
	}

	if len(track.Trail) > 1 {
		line := make(orb.LineString, len(track.Trail))
		times := make([]string, len(track.Trail))
		for i, p := range track.Trail {
			line[i] = orb.Point{p.Lon, p.Lat}
			times[i] = p.At.UTC().Format(time.RFC3339)
		}
		f := geojson.NewFeature(line)
		f.Properties["name"] = track.Name
		f.Properties["times"] = times
		fc.Append(f)
	}
	return fc
}

// GeoJSON writes the track as an indented GeoJSON feature collection.
func GeoJSON(w io.Writer, track Track) error {
	data, err := json.MarshalIndent(FeatureCollection(track), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal GeoJSON: %w", err)
	}
	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("failed to write GeoJSON: %w", err)
	}
	return nil
}

// KML writes the track as a KML document with a folder for the waypoints and a placemark for
// the trail.
func KML(w io.Writer, track Track) error {
	docElements := []kml.Element{kml.Name(track.Name)}

	if len(track.Waypoints) > 0 {
		folder := []kml.Element{kml.Name("Waypoints")}
		for _, wp := range track.Waypoints {
			folder = append(folder, kml.Placemark(
				kml.Name(wp.Name),
				kml.Description(description(wp)),
				kml.Point(
					kml.Coordinates(kml.Coordinate{Lon: wp.Longitude, Lat: wp.Latitude}),
				),
			))
		}
		docElements = append(docElements, kml.Folder(folder...))
	}

	if len(track.Trail) > 1 {
		coords := make([]kml.Coordinate, len(track.Trail))
		for i, p := range track.Trail {
			coords[i] = kml.Coordinate{Lon: p.Lon, Lat: p.Lat}
		}
		docElements = append(docElements, kml.Placemark(
			kml.Name("Trail"),
			kml.LineString(
				kml.Coordinates(coords...),
			),
		))
	}

	doc := kml.KML(kml.Document(docElements...))
	if err := doc.WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("failed to write KML: %w", err)
	}
	return nil
}

// WriteFile exports the track to path. The format is selected by the file extension: ".kml"
// writes KML, ".geojson" and ".json" write GeoJSON.
func WriteFile(path string, track Track) (err error) {
	var write func(io.Writer, Track) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kml":
		write = KML
	case ".geojson", ".json":
		write = GeoJSON
	default:
		return fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", closeErr)
		}
	}()
	return write(file, track)
}

func description(wp waypoint.Waypoint) string {
	desc := wp.Category.Icon() + " " + wp.Category.Label()
	if wp.Notes != "" {
		desc += ": " + wp.Notes
	}
	return desc
}
