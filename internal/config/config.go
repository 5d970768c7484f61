// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "TRAILNAV"
	appDir    = "trailnav"

	DefaultTextTpl = "{{if .HasNavigation}}{{arrow .ArrowBearing}} {{distance .Distance}}" +
		"{{else if .Tracking}}{{.TrackingIcon}} {{distance .TrailLength}}{{else}}{{.IdleIcon}}{{end}}"
	DefaultTooltipTpl = "{{loc \"Target\"}}: {{if .Target}}{{.Target.Category.Icon}} {{.Target.Name}}{{else}}-{{end}}\n" +
		"{{loc \"Position\"}}: {{if .HasFix}}{{coord .Fix}} (±{{printf \"%.0f\" .Fix.Accuracy}} m){{else}}-{{end}}\n" +
		"{{loc \"Heading\"}}: {{if .HeadingKnown}}{{printf \"%.0f\" .Heading}}°{{else}}-{{end}}\n" +
		"{{loc \"Trail\"}}: {{len .Trail}} / {{distance .TrailLength}}\n" +
		"{{loc \"Waypoints\"}}: {{len .Waypoints}}\n" +
		"{{loc \"Nearby\"}}: {{range $i, $n := .Nearby}}{{if $i}}, {{end}}{{$n.Name}} ({{distance $n.Distance}})" +
		"{{else}}-{{end}}\n" +
		"{{loc \"Last fix\"}}: {{if .HasFix}}{{.LastFix}}{{else}}-{{end}}\n" +
		"{{loc \"Sunset\"}}: {{if .HasSun}}{{timeFormat .SunsetTime \"15:04\"}}{{else}}-{{end}}\n" +
		"{{loc \"Moonphase\"}}: {{.MoonphaseIcon}} {{.Moonphase}}"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Navigation struct {
		AlertRadius            float64       `fig:"alert_radius" default:"10"`
		MinTrailDisplacement   float64       `fig:"min_trail_displacement" default:"2"`
		LocationUpdateInterval time.Duration `fig:"location_update_interval" default:"2s"`
		NearbyRadius           float64       `fig:"nearby_radius" default:"500"`
		// BearingLock keeps the direction arrow north up, ignoring the device heading.
		BearingLock bool `fig:"bearing_lock"`
	} `fig:"navigation"`

	Storage struct {
		// Allowed values: file, sqlite
		Driver string `fig:"driver" default:"file"`
		Path   string `fig:"path"`
		Key    string `fig:"key" default:"waypoints"`
	} `fig:"storage"`

	Location struct {
		// Only used if UseGeoCluePermission is false.
		PermissionDenied     bool          `fig:"permission_denied"`
		UseGeoCluePermission bool          `fig:"use_geoclue_permission"`
		DisableGPSD          bool          `fig:"disable_gpsd"`
		GPSDAddr             string        `fig:"gpsd_addr" default:"localhost:2947"`
		TrackFile            string        `fig:"track_file"`
		TrackFilePeriod      time.Duration `fig:"track_file_period" default:"2s"`
	} `fig:"location"`

	Orientation struct {
		DisableSensorProxy bool `fig:"disable_sensorproxy"`
	} `fig:"orientation"`

	Notify struct {
		Desktop bool `fig:"desktop"`
	} `fig:"notify"`

	Intervals struct {
		Output time.Duration `fig:"output" default:"5s"`
	} `fig:"intervals"`

	Templates struct {
		Text    string `fig:"text"`
		Tooltip string `fig:"tooltip"`
	} `fig:"templates"`

	Export struct {
		// Written on shutdown if set. The format follows the extension (.kml, .geojson, .json).
		Path string `fig:"path"`
	} `fig:"export"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	if c.Navigation.AlertRadius <= 0 {
		return fmt.Errorf("invalid alert radius: %f", c.Navigation.AlertRadius)
	}
	if c.Navigation.MinTrailDisplacement <= 0 {
		return fmt.Errorf("invalid minimum trail displacement: %f", c.Navigation.MinTrailDisplacement)
	}
	if c.Navigation.NearbyRadius < 0 {
		return fmt.Errorf("invalid nearby radius: %f", c.Navigation.NearbyRadius)
	}
	if c.Navigation.LocationUpdateInterval <= 0 {
		return fmt.Errorf("invalid location update interval: %s", c.Navigation.LocationUpdateInterval)
	}
	if c.Intervals.Output <= 0 {
		return fmt.Errorf("invalid output interval: %s", c.Intervals.Output)
	}
	if c.Location.TrackFilePeriod <= 0 {
		return fmt.Errorf("invalid track file period: %s", c.Location.TrackFilePeriod)
	}

	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	switch c.Storage.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("invalid storage driver: %s", c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		home, _ := os.UserHomeDir()
		name := "waypoints.csv"
		if c.Storage.Driver == "sqlite" {
			name = "trailnav.db"
		}
		c.Storage.Path = filepath.Join(home, ".local", "share", appDir, name)
	}

	if c.Templates.Text == "" {
		c.Templates.Text = DefaultTextTpl
	}
	if c.Templates.Tooltip == "" {
		c.Templates.Tooltip = DefaultTooltipTpl
	}

	return nil
}

// Dir returns the directory config files are looked up in by default.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appDir)
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
