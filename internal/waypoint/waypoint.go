// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package waypoint owns the collection of user saved waypoints and its line based persistence
// format.
package waypoint

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/wneessen/trailnav/internal/geomath"
)

const (
	fieldSeparator  = ","
	recordSeparator = "\n"
	minFields       = 4
)

var (
	// ErrNoFixAvailable is returned when a waypoint should be created but no position is known yet.
	ErrNoFixAvailable = errors.New("no location fix available")

	// ErrInvalidCoordinate is returned when a waypoint should be created outside the valid
	// latitude/longitude ranges.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// Waypoint is a named, categorized and user saved coordinate. Waypoints are immutable once created.
type Waypoint struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	Category  Category
	Notes     string
}

// Coordinate returns the position of the waypoint.
func (w Waypoint) Coordinate() geomath.Coordinate {
	return geomath.Coordinate{Lat: w.Latitude, Lon: w.Longitude}
}

// Ranged is a waypoint together with its distance to a reference position.
type Ranged struct {
	Waypoint
	Distance float64
}

// Store holds the waypoints in insertion order. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	waypoints []Waypoint
	newID     func() string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{newID: uuid.NewString}
}

// Add creates a new waypoint at the given position and appends it to the store. A nil position
// fails with ErrNoFixAvailable. A blank name is replaced by "Point {n+1}".
func (s *Store) Add(name string, category Category, notes string, at *geomath.Coordinate) (Waypoint, error) {
	if at == nil {
		return Waypoint{}, ErrNoFixAvailable
	}
	if !at.Valid() {
		return Waypoint{}, fmt.Errorf("%w: %s", ErrInvalidCoordinate, at)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Point %d", len(s.waypoints)+1)
	}
	if _, ok := categories[category]; !ok {
		category = Custom
	}
	wp := Waypoint{
		ID:        s.newID(),
		Name:      name,
		Latitude:  at.Lat,
		Longitude: at.Lon,
		Category:  category,
		Notes:     notes,
	}
	s.waypoints = append(s.waypoints, wp)
	return wp, nil
}

// RemoveAll deletes all waypoints.
func (s *Store) RemoveAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waypoints = nil
}

// Find looks up a waypoint by its ID.
func (s *Store) Find(id string) (Waypoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, wp := range s.waypoints {
		if wp.ID == id {
			return wp, true
		}
	}
	return Waypoint{}, false
}

// All returns a copy of all waypoints in insertion order.
func (s *Store) All() []Waypoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Waypoint, len(s.waypoints))
	copy(out, s.waypoints)
	return out
}

// Len returns the number of stored waypoints.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.waypoints)
}

// Nearest returns the waypoint closest to from and its distance in meters.
func (s *Store) Nearest(from geomath.Coordinate) (Waypoint, float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var nearest Waypoint
	best, found := 0.0, false
	for _, wp := range s.waypoints {
		d := geomath.Distance(from, wp.Coordinate())
		if !found || d < best {
			nearest, best, found = wp, d, true
		}
	}
	return nearest, best, found
}

// InRange returns all waypoints within radius meters of from, closest first.
func (s *Store) InRange(from geomath.Coordinate, radius float64) []Ranged {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Ranged
	for _, wp := range s.waypoints {
		if d := geomath.Distance(from, wp.Coordinate()); d <= radius {
			out = append(out, Ranged{Waypoint: wp, Distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}

// Serialize renders the store in the persisted format: one "id,name,latitude,longitude,category,notes"
// record per line in insertion order. Delimiters inside names or notes are not escaped.
func (s *Store) Serialize() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]string, 0, len(s.waypoints))
	for _, wp := range s.waypoints {
		records = append(records, strings.Join([]string{
			wp.ID,
			wp.Name,
			strconv.FormatFloat(wp.Latitude, 'f', -1, 64),
			strconv.FormatFloat(wp.Longitude, 'f', -1, 64),
			wp.Category.String(),
			wp.Notes,
		}, fieldSeparator))
	}
	return strings.Join(records, recordSeparator)
}

// Deserialize parses the persisted format into a new Store. Lines with fewer than four fields,
// unparsable coordinates or coordinates outside the valid ranges are skipped. A missing or unknown category becomes Custom and missing
// notes become empty.
func Deserialize(text string) *Store {
	store := NewStore()
	for _, line := range strings.Split(text, recordSeparator) {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		wp, ok := parseRecord(line)
		if !ok {
			continue
		}
		store.waypoints = append(store.waypoints, wp)
	}
	return store
}

func parseRecord(line string) (Waypoint, bool) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) < minFields {
		return Waypoint{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return Waypoint{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return Waypoint{}, false
	}
	coord := geomath.Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return Waypoint{}, false
	}

	wp := Waypoint{
		ID:        fields[0],
		Name:      fields[1],
		Latitude:  lat,
		Longitude: lon,
		Category:  Custom,
	}
	if len(fields) >= 5 {
		wp.Category = ParseCategory(fields[4])
	}
	if len(fields) >= 6 {
		wp.Notes = fields[5]
	}
	return wp, true
}
