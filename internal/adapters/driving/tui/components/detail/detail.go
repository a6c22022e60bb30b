// Package detail renders the full text of the selected result.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/styles"
	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// Pane is a scrollable view of one result.
type Pane struct {
	viewport viewport.Model
	styles   *styles.Styles
	current  *domain.RankedFragment
}

// NewPane creates an empty pane.
func NewPane(s *styles.Styles) *Pane {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Pane{viewport: viewport.New(40, 20), styles: s}
}

// Show replaces the displayed result and scrolls to the top.
// A nil result clears the pane.
func (p *Pane) Show(res *domain.RankedFragment) {
	if res == nil {
		p.current = nil
		p.viewport.SetContent("")
		return
	}
	if p.current != nil && p.current.URL == res.URL {
		return
	}
	p.current = res
	p.viewport.SetContent(p.render(res))
	p.viewport.GotoTop()
}

// Current returns the displayed result.
func (p *Pane) Current() *domain.RankedFragment {
	return p.current
}

func (p *Pane) render(res *domain.RankedFragment) string {
	width := max(p.viewport.Width-2, 10)
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	if badge := p.styles.Badge(res.Source); badge != "" {
		b.WriteString(badge + " ")
	}
	b.WriteString(p.styles.Title.Render(res.Title) + "\n")
	b.WriteString(p.styles.Muted.Render(fmt.Sprintf("%s  score %.4f", res.URL, res.Score)) + "\n")
	if res.Description != "" && res.Description != res.Title {
		b.WriteString(wrap.Inherit(p.styles.Subtitle).Render(res.Description) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(wrap.Inherit(p.styles.Normal).Render(res.Content))
	return b.String()
}

// Update scrolls the pane.
func (p *Pane) Update(msg tea.Msg) (*Pane, tea.Cmd) {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

// ScrollDown moves half a page down.
func (p *Pane) ScrollDown() {
	p.viewport.SetYOffset(p.viewport.YOffset + max(p.viewport.Height/2, 1))
}

// ScrollUp moves half a page up.
func (p *Pane) ScrollUp() {
	p.viewport.SetYOffset(p.viewport.YOffset - max(p.viewport.Height/2, 1))
}

// AtTop reports whether the pane is scrolled to the top.
func (p *Pane) AtTop() bool {
	return p.viewport.AtTop()
}

// View renders the framed pane.
func (p *Pane) View() string {
	if p.current == nil {
		return p.styles.Detail.Render(p.styles.Muted.Render("Select a result to read it"))
	}
	return p.styles.Detail.Render(p.viewport.View())
}

// SetSize resizes the pane and re-wraps the current result.
func (p *Pane) SetSize(width, height int) {
	p.viewport.Width = max(width-2, 10)
	p.viewport.Height = max(height, 3)
	if p.current != nil {
		p.viewport.SetContent(p.render(p.current))
	}
}
