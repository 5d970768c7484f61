// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/wneessen/trailnav/internal/geomath"
	"github.com/wneessen/trailnav/internal/tracker"
)

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"timeFormat":  timeFormat,
		"floatFormat": floatFormat,
		"distance":    geomath.FormatDistance,
		"coord":       coord,
		"arrow":       arrow,
		"emoji":       EmojiWithSpace,
		"loc":         p.loc,
		"lc":          strings.ToLower,
		"uc":          strings.ToUpper,
	}
}

func (p *Presenter) loc(val string) string {
	if raw, ok := i18nVars[val]; ok && p.localizer != nil {
		return p.localizer.Get(raw)
	}
	return val
}

func timeFormat(val time.Time, fmt string) string {
	return val.Format(fmt)
}

func floatFormat(val float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, val)
}

func coord(fix tracker.Fix) string {
	return fmt.Sprintf("%.5f, %.5f", fix.Lat, fix.Lon)
}

// arrow returns the arrow glyph pointing towards a relative bearing in degrees.
func arrow(relative float64) string {
	sector := int(math.Round(geomath.Normalize(relative)/45)) % len(Arrows)
	return Arrows[sector]
}

// EmojiWithSpace pads an emoji so that text following it lines up regardless of its
// display width.
func EmojiWithSpace(emoji string) string {
	width := runewidth.StringWidth(emoji)
	return fmt.Sprintf("%s%s", emoji, strings.Repeat(" ", width+1))
}
