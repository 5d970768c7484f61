// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package presenter renders session snapshots into the status line output.
package presenter

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/de"
	"github.com/vorlif/spreak"
	"github.com/wneessen/go-moonphase"
	"golang.org/x/text/language"

	"github.com/wneessen/trailnav/internal/config"
	"github.com/wneessen/trailnav/internal/session"
)

const (
	ClassIdle       = "idle"
	ClassTracking   = "tracking"
	ClassNavigating = "navigating"
	ClassArrived    = "arrived"
)

// maxNearby limits the nearby waypoints passed to the templates.
const maxNearby = 3

// Output is the JSON object a waybar custom module expects.
type Output struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

// TemplateContext wraps a session snapshot with presentation-related fields.
type TemplateContext struct {
	session.State

	// ArrowBearing is the direction the arrow points to. It is the bearing relative to the
	// heading, or the absolute bearing if the heading is unknown or the bearing lock is on.
	ArrowBearing float64

	LastFix       string
	Arrow         string
	IdleIcon      string
	TrackingIcon  string
	HasSun        bool
	SunriseTime   time.Time
	SunsetTime    time.Time
	Moonphase     string
	MoonphaseIcon string
}

// Presenter renders TemplateContexts with the configured text and tooltip templates.
type Presenter struct {
	bearingLock bool
	maxNearby   int
	localizer   *spreak.Localizer
	humanizer   *humanize.Humanizer
	text        *template.Template
	tooltip     *template.Template
}

// New parses the configured templates. Relative times are humanized in the language of tag.
func New(conf *config.Config, loc *spreak.Localizer, tag language.Tag) (*Presenter, error) {
	collection := humanize.MustNew(humanize.WithLocale(de.New()))
	p := &Presenter{
		bearingLock: conf.Navigation.BearingLock,
		maxNearby:   maxNearby,
		localizer:   loc,
		humanizer:   collection.CreateHumanizer(tag),
	}

	tpl, err := template.New("text").Funcs(p.templateFuncMap()).Parse(conf.Templates.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template: %w", err)
	}
	p.text = tpl

	tpl, err = template.New("tooltip").Funcs(p.templateFuncMap()).Parse(conf.Templates.Tooltip)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tooltip template: %w", err)
	}
	p.tooltip = tpl

	return p, nil
}

// BuildContext derives the presentation fields for the given snapshot at time now.
func (p *Presenter) BuildContext(state session.State, now time.Time) TemplateContext {
	ctx := TemplateContext{
		State:        state,
		IdleIcon:     IdleIcon,
		TrackingIcon: TrackingIcon,
	}
	if state.HasFix {
		ctx.LastFix = p.humanizer.NaturalTime(state.Fix.At)
		ctx.SunriseTime, ctx.SunsetTime = sunrise.SunriseSunset(state.Fix.Lat, state.Fix.Lon, now.Year(),
			now.Month(), now.Day())
		ctx.HasSun = !ctx.SunriseTime.IsZero() && !ctx.SunsetTime.IsZero()
	}
	if state.HasNavigation {
		ctx.ArrowBearing = state.RelativeBearing
		if p.bearingLock || !state.HeadingKnown {
			ctx.ArrowBearing = state.Bearing
		}
		ctx.Arrow = arrow(ctx.ArrowBearing)
	}
	if len(state.Nearby) > p.maxNearby {
		ctx.Nearby = state.Nearby[:p.maxNearby]
	}

	m := moonphase.New(now)
	ctx.Moonphase = p.loc(m.PhaseName())
	ctx.MoonphaseIcon = MoonPhaseIcon[m.PhaseName()]
	return ctx
}

// Render executes the templates for the given context.
func (p *Presenter) Render(ctx TemplateContext) (Output, error) {
	text := bytes.NewBuffer(nil)
	if err := p.text.Execute(text, ctx); err != nil {
		return Output{}, fmt.Errorf("failed to render text template: %w", err)
	}
	tooltip := bytes.NewBuffer(nil)
	if err := p.tooltip.Execute(tooltip, ctx); err != nil {
		return Output{}, fmt.Errorf("failed to render tooltip template: %w", err)
	}
	return Output{
		Text:    text.String(),
		Tooltip: tooltip.String(),
		Class:   class(ctx.State),
	}, nil
}

func class(state session.State) string {
	switch {
	case state.Target != nil && state.Alerted:
		return ClassArrived
	case state.HasNavigation:
		return ClassNavigating
	case state.Tracking:
		return ClassTracking
	default:
		return ClassIdle
	}
}
