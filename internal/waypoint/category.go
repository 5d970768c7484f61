// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package waypoint

import "strings"

// Category classifies a waypoint. The set is closed; unknown values are treated as Custom.
type Category int

const (
	Camp Category = iota
	Water
	Danger
	View
	Exit
	Custom
)

type categoryInfo struct {
	name  string
	label string
	icon  string
}

// categories maps each category to its persisted name, display label and icon glyph.
var categories = map[Category]categoryInfo{
	Camp:   {"CAMP", "Camp", "🏕️"},
	Water:  {"WATER", "Water", "💧"},
	Danger: {"DANGER", "Danger", "⚠️"},
	View:   {"VIEW", "View", "👁️"},
	Exit:   {"EXIT", "Exit", "🚪"},
	Custom: {"CUSTOM", "Point", "📍"},
}

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{Camp, Water, Danger, View, Exit, Custom}
}

func (c Category) info() categoryInfo {
	if info, ok := categories[c]; ok {
		return info
	}
	return categories[Custom]
}

// String returns the symbolic name used in the persisted waypoint format.
func (c Category) String() string {
	return c.info().name
}

// Label returns the human readable label of the category.
func (c Category) Label() string {
	return c.info().label
}

// Icon returns the glyph shown next to waypoints of this category.
func (c Category) Icon() string {
	return c.info().icon
}

// ParseCategory resolves a category from its symbolic name ("WATER") or its label ("water").
// Anything else yields Custom.
func ParseCategory(val string) Category {
	val = strings.TrimSpace(val)
	for _, cat := range Categories() {
		info := categories[cat]
		if val == info.name || strings.EqualFold(val, info.label) {
			return cat
		}
	}
	return Custom
}
