// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/styles"
	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// linesPerResult is the rendered height of one entry.
const linesPerResult = 2

// ResultList displays ranked fragments in a navigable list.
type ResultList struct {
	results  []domain.RankedFragment
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates an empty result list.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{styles: s, width: 60, height: 20}
}

// Update handles navigation keys.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		case "home", "g":
			r.selected = 0
		case "end", "G":
			r.selected = max(len(r.results)-1, 0)
		}
	}
	return r, nil
}

// View renders the visible window of results around the selection.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := []string{r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))), ""}

	visible := max((r.height-2)/linesPerResult, 1)
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.results))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}
	return strings.Join(lines, "\n")
}

func (r *ResultList) renderResult(index int, res *domain.RankedFragment) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	badge := r.styles.Badge(res.Source)
	score := fmt.Sprintf("%.3f", res.Score)

	title := res.Title
	if title == "" {
		title = res.URL
	}
	titleWidth := max(r.width-runewidth.StringWidth(indicator+score)-10, 10)
	title = runewidth.FillRight(runewidth.Truncate(title, titleWidth, "…"), titleWidth)

	var head string
	if index == r.selected {
		head = r.styles.Selected.Render(indicator+title) + " " + r.styles.Score.Render(score)
	} else {
		head = r.styles.Normal.Render(indicator+title) + " " + r.styles.Muted.Render(score)
	}
	if badge != "" {
		head = badge + " " + head
	}

	preview := Preview(res)
	preview = runewidth.Truncate(preview, max(r.width-6, 20), "…")
	return head + "\n" + r.styles.Muted.Render("    "+preview)
}

// Preview returns a single-line excerpt of a result.
func Preview(res *domain.RankedFragment) string {
	text := res.Content
	if len(res.Snippets) > 0 {
		text = res.Snippets[0]
	}
	return strings.Join(strings.Fields(text), " ")
}

// SetResults replaces the results and resets the selection.
func (r *ResultList) SetResults(results []domain.RankedFragment) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() []domain.RankedFragment {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedResult returns the selected result, or nil if the list is empty.
func (r *ResultList) SelectedResult() *domain.RankedFragment {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves the selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves the selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetSize sets the render area.
func (r *ResultList) SetSize(width, height int) {
	r.width = width
	r.height = height
}
