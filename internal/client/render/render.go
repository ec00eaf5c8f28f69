// Package render draws the terminal client's screens with lipgloss and
// renders chat replies as markdown with glamour.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/atinyakov/schemeseva/internal/models"
)

const tilesPerRow = 2

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1E3A8A"))
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626"))
)

// Renderer turns models into terminal text.
type Renderer struct {
	width int
	md    *glamour.TermRenderer
}

// New returns a Renderer wrapping text at width. style is a glamour style
// name such as "dark", "light" or "notty"; empty means auto-detect.
func New(width int, style string) (*Renderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	md, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &Renderer{width: width, md: md}, nil
}

// Title renders a screen title.
func (r *Renderer) Title(s string) string {
	return titleStyle.Render(s)
}

// Error renders an inline error message.
func (r *Renderer) Error(s string) string {
	return errorStyle.Render(s)
}

// Tiles renders the dashboard category tiles, each in its own color.
func (r *Renderer) Tiles(tiles []models.CategoryTile) string {
	if len(tiles) == 0 {
		return mutedStyle.Render("No categories available.")
	}
	tileWidth := r.width/tilesPerRow - 2
	var rows []string
	var row []string
	for i, t := range tiles {
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Color)).
			Padding(0, 1).
			Width(tileWidth).
			Render(fmt.Sprintf("%d. %s\n%s", i+1,
				lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Color)).Render(t.Label),
				mutedStyle.Render(countLabel(t.Count))))
		row = append(row, box)
		if len(row) == tilesPerRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func countLabel(n int) string {
	if n == 1 {
		return "1 scheme"
	}
	return fmt.Sprintf("%d schemes", n)
}

// SchemeList renders a numbered list of scheme titles with a short summary.
func (r *Renderer) SchemeList(schemes []models.Scheme) string {
	if len(schemes) == 0 {
		return mutedStyle.Render("No schemes found.")
	}
	var b strings.Builder
	for i, sc := range schemes {
		fmt.Fprintf(&b, "%2d. %s\n", i+1, lipgloss.NewStyle().Bold(true).Render(sc.Title))
		if summary := truncate(sc.Description, r.width-4); summary != "" {
			fmt.Fprintf(&b, "    %s\n", mutedStyle.Render(summary))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Detail renders every section of a scheme. A nil scheme renders the
// not-found state.
func (r *Renderer) Detail(sc *models.Scheme) string {
	if sc == nil {
		return mutedStyle.Render("Scheme not found")
	}
	body := lipgloss.NewStyle().Width(r.width)
	sections := []string{titleStyle.Render(sc.Title), mutedStyle.Render(models.DisplayLabel(sc.Category))}
	for _, s := range []struct{ heading, text string }{
		{"Description", sc.Description},
		{"Eligibility Criteria", sc.EligibilityCriteria},
		{"Benefits", sc.Benefits},
		{"Application Process", sc.ApplicationProcess},
	} {
		if strings.TrimSpace(s.text) == "" {
			continue
		}
		sections = append(sections, "", headingStyle.Render(s.heading), body.Render(s.text))
	}
	if sc.VideoURL != "" {
		sections = append(sections, "", headingStyle.Render("Video"), sc.VideoURL)
	}
	return strings.Join(sections, "\n")
}

// Markdown renders a chat reply. Replies that fail to render are returned as is.
func (r *Renderer) Markdown(text string) string {
	out, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 3 || len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
