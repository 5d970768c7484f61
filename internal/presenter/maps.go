// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import "github.com/vorlif/spreak/localize"

// MoonPhaseIcon is a map where moon phase names are keys and their corresponding emoji representations are values.
var MoonPhaseIcon = map[string]string{
	"New Moon":        "🌑",
	"Waxing Crescent": "🌒",
	"First Quarter":   "🌓",
	"Waxing Gibbous":  "🌔",
	"Full Moon":       "🌕",
	"Waning Gibbous":  "🌖",
	"Third Quarter":   "🌗",
	"Waning Crescent": "🌘",
}

// Arrows maps the eight compass sectors, clockwise from straight ahead, to arrow glyphs.
var Arrows = [8]string{"⬆️", "↗️", "➡️", "↘️", "⬇️", "↙️", "⬅️", "↖️"}

const (
	IdleIcon     = "🧭"
	TrackingIcon = "👣"
)

// i18nVars maps template and moon phase keys to translatable messages.
var i18nVars = map[string]localize.MsgID{
	"Target":          "Target",
	"Position":        "Position",
	"Heading":         "Heading",
	"Trail":           "Trail",
	"Waypoints":       "Waypoints",
	"Nearby":          "Nearby",
	"Last fix":        "Last fix",
	"Sunset":          "Sunset",
	"Moonphase":       "Moonphase",
	"Tracking":        "Tracking",
	"Idle":            "Idle",
	"New Moon":        "New moon",
	"Waxing Crescent": "Waxing crescent",
	"First Quarter":   "First quarter",
	"Waxing Gibbous":  "Waxing gibbous",
	"Full Moon":       "Full moon",
	"Waning Gibbous":  "Waning gibbous",
	"Third Quarter":   "Last quarter",
	"Waning Crescent": "Waning crescent",
}
