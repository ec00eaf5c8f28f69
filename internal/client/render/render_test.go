package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/schemeseva/internal/models"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(80, "notty")
	require.NoError(t, err)
	return r
}

func TestTiles(t *testing.T) {
	r := newTestRenderer(t)
	out := r.Tiles([]models.CategoryTile{
		{Label: models.Banking.Label(), Color: models.Banking.Color(), Count: 4},
		{Label: models.Health.Label(), Color: models.Health.Color(), Count: 1},
		{Label: models.Education.Label(), Color: models.Education.Color(), Count: 0},
	})

	assert.Contains(t, out, "4 schemes")
	assert.Contains(t, out, "1 scheme")
	assert.Contains(t, out, "0 schemes")
	assert.Contains(t, out, "3.")
	assert.Contains(t, r.Tiles(nil), "No categories")
}

func TestSchemeList(t *testing.T) {
	r := newTestRenderer(t)
	out := r.SchemeList([]models.Scheme{
		{Title: "Stand-Up India", Description: strings.Repeat("loan ", 40)},
		{Title: "Mudra"},
	})
	assert.Contains(t, out, "Stand-Up India")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, " 2. ")
	assert.Contains(t, r.SchemeList(nil), "No schemes found.")
}

func TestDetail(t *testing.T) {
	r := newTestRenderer(t)
	out := r.Detail(&models.Scheme{
		Title:       "Flow Irrigation Scheme",
		Description: "Irrigation on sloped land",
		Benefits:    "50% subsidy",
		Category:    "Agriculture",
		VideoURL:    "https://example.com/fis.mp4",
	})
	assert.Contains(t, out, "Flow Irrigation Scheme")
	assert.Contains(t, out, models.Agriculture.Label())
	assert.Contains(t, out, "Benefits")
	assert.NotContains(t, out, "Eligibility Criteria", "empty sections are skipped")
	assert.Contains(t, out, "https://example.com/fis.mp4")

	assert.Contains(t, r.Detail(nil), "Scheme not found")
}

func TestMarkdown(t *testing.T) {
	r := newTestRenderer(t)
	out := r.Markdown("**PM-KISAN** pays ₹6000 a year.")
	assert.Contains(t, out, "PM-KISAN")
	assert.Contains(t, out, "6000")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab...", truncate("abcdefg", 5))
	assert.Equal(t, "a b", truncate(" a\n b ", 10))
}
