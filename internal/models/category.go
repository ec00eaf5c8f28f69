package models

import (
	"sort"
	"strings"
)

// Category is the canonical category of a scheme.
type Category int

const (
	// Agriculture covers agriculture, rural development and environment.
	Agriculture Category = iota + 1
	// Banking covers banking, financial services and insurance.
	Banking
	// Business covers business and entrepreneurship.
	Business
	// Education covers education and learning.
	Education
	// Health covers health and wellness.
	Health
)

type categoryInfo struct {
	key   string
	label string
	icon  string
	color string
}

var categoryTable = map[Category]categoryInfo{
	Agriculture: {"Agriculture", "Agriculture, Rural & Environment", "Agriculture.png", "#A3E635"},
	Banking:     {"Banking", "Banking, Financial Services and Insurance", "Banking.png", "#FACC15"},
	Business:    {"Business", "Business & Entrepreneurship", "Business.png", "#38BDF8"},
	Education:   {"Education", "Education & Learning", "Education.png", "#F87171"},
	Health:      {"Health", "Health & Wellness", "Health.png", "#34D399"},
}

// legacyLabels are spellings found in older data that are not a key or label.
var legacyLabels = map[string]Category{
	"Agriculture,Rural & Environment": Agriculture,
}

// Categories returns every category in dashboard order.
func Categories() []Category {
	return []Category{Agriculture, Banking, Business, Education, Health}
}

// Key returns the short key, e.g. "Banking".
func (c Category) Key() string { return categoryTable[c].key }

// Label returns the canonical display label stored in the schemes table.
func (c Category) Label() string { return categoryTable[c].label }

// Icon returns the icon asset name.
func (c Category) Icon() string { return categoryTable[c].icon }

// Color returns the tile color.
func (c Category) Color() string { return categoryTable[c].color }

func (c Category) String() string { return c.Label() }

// ParseCategory maps a key, label or legacy spelling to its Category.
func ParseCategory(s string) (Category, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return 0, false
	}
	for _, c := range Categories() {
		if norm == strings.ToLower(c.Key()) || norm == strings.ToLower(c.Label()) {
			return c, true
		}
	}
	for v, c := range legacyLabels {
		if strings.EqualFold(norm, v) {
			return c, true
		}
	}
	return 0, false
}

// DisplayLabel returns the display label for a stored category value.
// Values that are not recognised are returned unchanged.
func DisplayLabel(stored string) string {
	if c, ok := ParseCategory(stored); ok {
		return c.Label()
	}
	return stored
}

// LegacyValues returns the stored spellings of c that differ from its label.
func LegacyValues(c Category) []string {
	out := []string{c.Key()}
	for v, lc := range legacyLabels {
		if lc == c {
			out = append(out, v)
		}
	}
	sort.Strings(out[1:])
	return out
}

// CategoryTile is a dashboard tile: static configuration joined with a count.
type CategoryTile struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Count int    `json:"count"`
}
