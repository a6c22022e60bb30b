// Package companies provides the company roster view of the TUI.
package companies

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/components/input"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/messages"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/styles"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driving"
)

// View lists known companies, filters them as the user types and
// resolves the typed mention on enter.
type View struct {
	styles   *styles.Styles
	input    *input.QueryInput
	service  driving.CompanyService
	ctx      context.Context
	names    []string
	filtered []string
	selected int
	resolved *messages.CompanyResolved
	err      error
	height   int
	ready    bool
}

// NewView creates the company view.
func NewView(s *styles.Styles, service driving.CompanyService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		input:   input.NewQueryInput(s, "Company:", "이름, 약칭 또는 오타"),
		service: service,
		ctx:     context.Background(),
		height:  24,
	}
}

// WithContext sets the context used to load the roster.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the roster.
func (v *View) Init() tea.Cmd {
	svc, ctx := v.service, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.CompaniesLoaded{}
		}
		names, err := svc.List(ctx)
		return messages.CompaniesLoaded{Names: names, Err: err}
	}
}

// Update handles messages for the company view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.CompaniesLoaded:
		v.err = msg.Err
		v.names = msg.Names
		v.applyFilter()
		return v, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
		case tea.KeyUp:
			if v.selected > 0 {
				v.selected--
			}
			return v, nil
		case tea.KeyDown:
			if v.selected < len(v.filtered)-1 {
				v.selected++
			}
			return v, nil
		case tea.KeyEnter:
			v.resolve()
			return v, nil
		}

		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		v.resolved = nil
		v.applyFilter()
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) resolve() {
	mention := strings.TrimSpace(v.input.Value())
	if mention == "" || v.service == nil {
		return
	}
	name, ok := v.service.Resolve(mention, 0)
	v.resolved = &messages.CompanyResolved{Mention: mention, Name: name, Matched: ok}
	if !ok {
		return
	}
	for i, n := range v.filtered {
		if n == name {
			v.selected = i
		}
	}
}

// applyFilter keeps roster names containing the typed text.
func (v *View) applyFilter() {
	needle := strings.ToLower(strings.TrimSpace(v.input.Value()))
	v.filtered = v.filtered[:0]
	for _, n := range v.names {
		if needle == "" || strings.Contains(strings.ToLower(n), needle) {
			v.filtered = append(v.filtered, n)
		}
	}
	if v.selected >= len(v.filtered) {
		v.selected = max(len(v.filtered)-1, 0)
	}
}

// View renders the company view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("Companies"),
		v.input.View(),
		v.renderResolved(),
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	} else {
		sections = append(sections, v.styles.Subtitle.Render(fmt.Sprintf("%d of %d", len(v.filtered), len(v.names))))
		sections = append(sections, v.renderList())
	}

	sections = append(sections, "", v.styles.Help.Render("[type] Filter  [Enter] Resolve  [↑/↓] Navigate  [Esc] Back"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderResolved() string {
	switch {
	case v.resolved == nil:
		return ""
	case v.resolved.Matched:
		return v.styles.Success.Render(fmt.Sprintf("%s → %s", v.resolved.Mention, v.resolved.Name))
	default:
		return v.styles.Warning.Render(fmt.Sprintf("No confident match for %q", v.resolved.Mention))
	}
}

func (v *View) renderList() string {
	if len(v.filtered) == 0 {
		return v.styles.Muted.Render("No companies")
	}

	visible := max(v.height-10, 3)
	start := 0
	if v.selected >= visible {
		start = v.selected - visible + 1
	}
	end := min(start+visible, len(v.filtered))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render("> "+v.filtered[i]))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+v.filtered[i]))
		}
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	v.height = height
	v.input.SetWidth(width)
	v.ready = true
}

// Filtered returns the roster names matching the current filter.
func (v *View) Filtered() []string {
	return v.filtered
}

// Selected returns the highlighted name, empty if none.
func (v *View) Selected() string {
	if v.selected < len(v.filtered) {
		return v.filtered[v.selected]
	}
	return ""
}

// Resolved returns the last resolution, nil if none.
func (v *View) Resolved() *messages.CompanyResolved {
	return v.resolved
}
