// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/trailnav/internal/config"
	"github.com/wneessen/trailnav/internal/geomath"
	"github.com/wneessen/trailnav/internal/i18n"
	"github.com/wneessen/trailnav/internal/session"
	"github.com/wneessen/trailnav/internal/tracker"
	"github.com/wneessen/trailnav/internal/waypoint"
)

func TestNew(t *testing.T) {
	t.Run("default templates are parsed", func(t *testing.T) {
		testPresenter(t, "en")
	})
	t.Run("invalid text template fails", func(t *testing.T) {
		conf := testConf(t)
		conf.Templates.Text = "{{.Foo"
		if _, err := New(conf, nil, language.English); err == nil {
			t.Error("expected presenter to fail, but didn't")
		}
	})
	t.Run("invalid tooltip template fails", func(t *testing.T) {
		conf := testConf(t)
		conf.Templates.Tooltip = "{{end}}"
		if _, err := New(conf, nil, language.English); err == nil {
			t.Error("expected presenter to fail, but didn't")
		}
	})
}

func TestPresenter_Render(t *testing.T) {
	now := time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)
	fix := tracker.Fix{Lat: 52.52, Lon: 13.405, Accuracy: 4, At: now.Add(-time.Minute * 3)}
	target := &waypoint.Waypoint{ID: "a", Name: "Hut", Latitude: 52.53, Longitude: 13.405, Category: waypoint.Camp}

	t.Run("idle state shows the idle icon", func(t *testing.T) {
		pres := testPresenter(t, "en")
		out, err := pres.Render(pres.BuildContext(session.State{}, now))
		if err != nil {
			t.Fatalf("failed to render: %s", err)
		}
		if out.Text != IdleIcon {
			t.Errorf("expected text to be %q, got %q", IdleIcon, out.Text)
		}
		if out.Class != ClassIdle {
			t.Errorf("expected class to be %s, got %s", ClassIdle, out.Class)
		}
		if !strings.Contains(out.Tooltip, "Target: -") {
			t.Errorf("expected tooltip to show no target, got %q", out.Tooltip)
		}
	})
	t.Run("tracking state shows the trail length", func(t *testing.T) {
		pres := testPresenter(t, "en")
		state := session.State{Tracking: true, Fix: fix, HasFix: true, TrailLength: 1400}
		out, err := pres.Render(pres.BuildContext(state, now))
		if err != nil {
			t.Fatalf("failed to render: %s", err)
		}
		want := TrackingIcon + " 1.4 km"
		if out.Text != want {
			t.Errorf("expected text to be %q, got %q", want, out.Text)
		}
		if out.Class != ClassTracking {
			t.Errorf("expected class to be %s, got %s", ClassTracking, out.Class)
		}
		if !strings.Contains(out.Tooltip, "52.52000, 13.40500 (±4 m)") {
			t.Errorf("expected tooltip to contain the position, got %q", out.Tooltip)
		}
	})
	t.Run("navigation shows arrow and distance", func(t *testing.T) {
		pres := testPresenter(t, "en")
		state := session.State{
			Tracking: true, Fix: fix, HasFix: true, Target: target, HasNavigation: true,
			Distance: 37, Bearing: 10, Heading: 278, HeadingKnown: true, RelativeBearing: 92,
		}
		out, err := pres.Render(pres.BuildContext(state, now))
		if err != nil {
			t.Fatalf("failed to render: %s", err)
		}
		want := "➡️ 37 m"
		if out.Text != want {
			t.Errorf("expected text to be %q, got %q", want, out.Text)
		}
		if out.Class != ClassNavigating {
			t.Errorf("expected class to be %s, got %s", ClassNavigating, out.Class)
		}
		if !strings.Contains(out.Tooltip, "Hut") {
			t.Errorf("expected tooltip to contain the target name, got %q", out.Tooltip)
		}
	})
	t.Run("without a heading the arrow points to the absolute bearing", func(t *testing.T) {
		pres := testPresenter(t, "en")
		south := &waypoint.Waypoint{ID: "s", Name: "Spring", Latitude: 52.517, Longitude: 13.405, Category: waypoint.Water}
		pos := fix.Coordinate()
		state := session.State{
			Tracking: true, Fix: fix, HasFix: true, Target: south, HasNavigation: true,
			Distance: geomath.Distance(pos, south.Coordinate()),
			Bearing:  geomath.Bearing(pos, south.Coordinate()),
		}
		out, err := pres.Render(pres.BuildContext(state, now))
		if err != nil {
			t.Fatalf("failed to render: %s", err)
		}
		want := "⬇️ " + geomath.FormatDistance(state.Distance)
		if out.Text != want {
			t.Errorf("expected text to be %q, got %q", want, out.Text)
		}
	})
	t.Run("bearing lock ignores the heading", func(t *testing.T) {
		conf := testConf(t)
		conf.Navigation.BearingLock = true
		pres, err := New(conf, nil, language.English)
		if err != nil {
			t.Fatalf("failed to create presenter: %s", err)
		}
		state := session.State{
			Tracking: true, Fix: fix, HasFix: true, Target: target, HasNavigation: true,
			Distance: 1112, Bearing: 0, Heading: 90, HeadingKnown: true, RelativeBearing: 270,
		}
		ctx := pres.BuildContext(state, now)
		if ctx.ArrowBearing != 0 {
			t.Errorf("expected arrow bearing to be 0, got %f", ctx.ArrowBearing)
		}
		if ctx.Arrow != "⬆️" {
			t.Errorf("expected arrow to point north, got %s", ctx.Arrow)
		}
	})
	t.Run("nearby waypoints are listed in the tooltip", func(t *testing.T) {
		pres := testPresenter(t, "en")
		state := session.State{Tracking: true, Fix: fix, HasFix: true}
		for i, name := range []string{"Spring", "Hut", "Bench", "Tower"} {
			state.Nearby = append(state.Nearby, waypoint.Ranged{
				Waypoint: waypoint.Waypoint{ID: name, Name: name}, Distance: float64(10 * (i + 1)),
			})
		}
		out, err := pres.Render(pres.BuildContext(state, now))
		if err != nil {
			t.Fatalf("failed to render: %s", err)
		}
		want := "Nearby: Spring (10 m), Hut (20 m), Bench (30 m)\n"
		if !strings.Contains(out.Tooltip, want) {
			t.Errorf("expected tooltip to contain %q, got %q", want, out.Tooltip)
		}
		if strings.Contains(out.Tooltip, "Tower") {
			t.Errorf("expected nearby list to be capped, got %q", out.Tooltip)
		}
	})
	t.Run("german tooltip is localized", func(t *testing.T) {
		pres := testPresenter(t, "de-DE")
		out, err := pres.Render(pres.BuildContext(session.State{}, now))
		if err != nil {
			t.Fatalf("failed to render: %s", err)
		}
		if !strings.Contains(out.Tooltip, "Spur:") {
			t.Errorf("expected german tooltip, got %q", out.Tooltip)
		}
	})
	t.Run("template errors are returned", func(t *testing.T) {
		conf := testConf(t)
		conf.Templates.Text = "{{.Fix.Nope}}"
		pres, err := New(conf, nil, language.English)
		if err != nil {
			t.Fatalf("failed to create presenter: %s", err)
		}
		if _, err = pres.Render(pres.BuildContext(session.State{}, now)); err == nil {
			t.Error("expected render to fail, but didn't")
		}
	})
}

func TestPresenter_BuildContext(t *testing.T) {
	now := time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)
	pres := testPresenter(t, "en")

	t.Run("without a fix there is no sun data", func(t *testing.T) {
		ctx := pres.BuildContext(session.State{}, now)
		if ctx.HasSun {
			t.Error("expected no sun data without a fix")
		}
		if ctx.LastFix != "" {
			t.Errorf("expected no last fix, got %s", ctx.LastFix)
		}
		if ctx.Moonphase == "" || ctx.MoonphaseIcon == "" {
			t.Error("expected moon phase to be set")
		}
	})
	t.Run("with a fix sun times and last fix are set", func(t *testing.T) {
		state := session.State{HasFix: true, Fix: tracker.Fix{Lat: 52.52, Lon: 13.405, At: now.Add(-time.Minute)}}
		ctx := pres.BuildContext(state, now)
		if !ctx.HasSun {
			t.Fatal("expected sun data with a fix")
		}
		if !ctx.SunriseTime.Before(ctx.SunsetTime) {
			t.Errorf("expected sunrise %s before sunset %s", ctx.SunriseTime, ctx.SunsetTime)
		}
		if ctx.LastFix == "" {
			t.Error("expected last fix to be humanized")
		}
	})
	t.Run("polar day has no sunset", func(t *testing.T) {
		state := session.State{HasFix: true, Fix: tracker.Fix{Lat: 89, Lon: 0, At: now}}
		if ctx := pres.BuildContext(state, now); ctx.HasSun {
			t.Error("expected no sun data during polar day")
		}
	})
}

func TestClass(t *testing.T) {
	target := &waypoint.Waypoint{ID: "a"}
	tests := []struct {
		name  string
		state session.State
		want  string
	}{
		{"idle", session.State{}, ClassIdle},
		{"tracking", session.State{Tracking: true}, ClassTracking},
		{"navigating", session.State{Tracking: true, Target: target, HasNavigation: true}, ClassNavigating},
		{"arrived", session.State{Tracking: true, Target: target, HasNavigation: true, Alerted: true}, ClassArrived},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := class(tt.state); got != tt.want {
				t.Errorf("expected class %s, got %s", tt.want, got)
			}
		})
	}
}

func TestArrow(t *testing.T) {
	tests := []struct {
		name     string
		relative float64
		want     string
	}{
		{"straight ahead", 0, "⬆️"},
		{"slightly right", 22, "⬆️"},
		{"front right", 44, "↗️"},
		{"right", 90, "➡️"},
		{"behind", 180, "⬇️"},
		{"left as negative", -90, "⬅️"},
		{"almost straight ahead", 350, "⬆️"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := arrow(tt.relative); got != tt.want {
				t.Errorf("expected arrow %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPresenter_loc(t *testing.T) {
	t.Run("localized value is found", func(t *testing.T) {
		pres := testPresenter(t, "en")
		if got := pres.loc("Trail"); got != "Trail" {
			t.Errorf("failed to get localized value: got %s, want %s", got, "Trail")
		}
	})
	t.Run("localized german value is found", func(t *testing.T) {
		pres := testPresenter(t, "de-DE")
		if got := pres.loc("Waypoints"); got != "Wegpunkte" {
			t.Errorf("failed to get localized value: got %s, want %s", got, "Wegpunkte")
		}
	})
	t.Run("localized value is not found", func(t *testing.T) {
		pres := testPresenter(t, "de-DE")
		if got := pres.loc("foobar"); got != "foobar" {
			t.Errorf("failed to get localized value: got %s, want %s", got, "foobar")
		}
	})
}

func TestEmojiWithSpace(t *testing.T) {
	got := EmojiWithSpace("🧭")
	if !strings.HasPrefix(got, "🧭") || !strings.HasSuffix(got, " ") {
		t.Errorf("expected emoji followed by padding, got %q", got)
	}
}

func testConf(t *testing.T) *config.Config {
	t.Helper()
	conf, err := config.New()
	if err != nil {
		t.Fatalf("failed to create config: %s", err)
	}
	return conf
}

func testPresenter(t *testing.T, loc string) *Presenter {
	t.Helper()
	lang, err := i18n.New(loc)
	if err != nil {
		t.Fatalf("failed to create i18n provider: %s", err)
	}
	tag, err := i18n.Tag(loc)
	if err != nil {
		t.Fatalf("failed to parse locale: %s", err)
	}
	pres, err := New(testConf(t), lang, tag)
	if err != nil {
		t.Fatalf("failed to create presenter: %s", err)
	}
	return pres
}
