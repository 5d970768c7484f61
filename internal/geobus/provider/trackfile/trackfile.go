// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package trackfile provides a location source that replays a recorded track from a file.
package trackfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/trailnav/internal/geobus"
	"github.com/wneessen/trailnav/internal/tracker"
)

const (
	name = "trackfile"

	// DefaultAccuracy is the accuracy in meters assumed for lines without an accuracy column.
	DefaultAccuracy = 5
)

var ErrNoCoordinates = errors.New("no valid coordinates found in track file")

// Provider replays a track file line by line, emitting one fix per period. Each line holds
// "lat,lon" or "lat,lon,accuracy". Blank lines, lines starting with "#" and malformed lines are
// skipped. Once the end of the track is reached the last position is held.
type Provider struct {
	name   string
	path   string
	period time.Duration
	loadFn func() ([]tracker.Fix, error)
}

// New initializes a Provider for the given file that emits one fix per period.
func New(path string, period time.Duration) *Provider {
	if period <= 0 {
		period = time.Second * 2
	}
	provider := &Provider{
		name:   name,
		path:   path,
		period: period,
	}
	provider.loadFn = provider.readFile
	return provider
}

// Name returns the name of the Provider instance.
func (p *Provider) Name() string {
	return p.name
}

// LookupStream loads the track and emits its fixes in file order. If the track cannot be loaded
// the stream is closed, so that the caller can retry later.
func (p *Provider) LookupStream(ctx context.Context) <-chan geobus.Event {
	out := make(chan geobus.Event)
	go func() {
		defer close(out)

		fixes, err := p.loadFn()
		if err != nil {
			return
		}

		for i, fix := range fixes {
			if i > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.period):
				}
			}
			fix.At = time.Now()

			select {
			case <-ctx.Done():
				return
			case out <- geobus.FixEvent(p.name, fix):
			}
		}
		<-ctx.Done()
	}()
	return out
}

// readFile reads all fixes from the file at the configured path.
func (p *Provider) readFile() ([]tracker.Fix, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read track file %q: %w", p.path, err)
	}
	fixes := Parse(string(data))
	if len(fixes) == 0 {
		return nil, fmt.Errorf("track file %q: %w", p.path, ErrNoCoordinates)
	}
	return fixes, nil
}

// Parse returns the fixes of a track in file order.
func Parse(data string) []tracker.Fix {
	var fixes []tracker.Fix
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fix, ok := parseLine(line)
		if !ok {
			continue
		}
		fixes = append(fixes, fix)
	}
	return fixes
}

func parseLine(line string) (tracker.Fix, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 || len(fields) > 3 {
		return tracker.Fix{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return tracker.Fix{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return tracker.Fix{}, false
	}
	fix := tracker.Fix{Lat: lat, Lon: lon, Accuracy: DefaultAccuracy}
	if len(fields) == 3 {
		acc, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil || acc < 0 {
			return tracker.Fix{}, false
		}
		fix.Accuracy = acc
	}
	if !fix.Coordinate().Valid() {
		return tracker.Fix{}, false
	}
	return fix, true
}
