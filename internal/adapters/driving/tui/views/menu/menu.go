// Package menu is the landing screen of the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/keymap"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/messages"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/styles"
)

// Item is one entry. Quit entries end the program instead of switching view.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	items  []Item
	cursor int
	width  int
	ready  bool
}

// NewView builds the entries for the available ports; the company
// browser is listed only when withCompanies is set.
func NewView(s *styles.Styles, km *keymap.KeyMap, withCompanies bool) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	items := []Item{{Label: "Search", Hint: "ask about one or more companies", View: messages.ViewSearch}}
	if withCompanies {
		items = append(items, Item{Label: "Companies", Hint: "browse and resolve company names", View: messages.ViewCompanies})
	}
	items = append(items, Item{Label: "Quit", Quit: true})

	return &View{styles: s, keymap: km, items: items, width: 80}
}

func (v *View) Init() tea.Cmd { return nil }

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(k string) tea.Cmd {
	switch {
	case keymap.Matches(k, v.keymap.Quit):
		return tea.Quit
	case keymap.Matches(k, v.keymap.Up):
		v.cursor = max(v.cursor-1, 0)
	case keymap.Matches(k, v.keymap.Down):
		v.cursor = min(v.cursor+1, len(v.items)-1)
	case keymap.Matches(k, v.keymap.Submit):
		return v.activate(v.cursor)
	case len(k) == 1 && k[0] >= '1' && k[0] <= '9':
		if i := int(k[0] - '1'); i < len(v.items) {
			v.cursor = i
			return v.activate(i)
		}
	}
	return nil
}

func (v *View) activate(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("STORM"),
		v.styles.Muted.Render("Corporate disclosure search"),
	)

	lines := make([]string, len(v.items))
	for i, item := range v.items {
		label := fmt.Sprintf("%d %s", i+1, item.Label)
		if i == v.cursor {
			label = v.styles.Selected.Render("> " + label)
		} else {
			label = v.styles.Normal.Render("  " + label)
		}
		if item.Hint != "" {
			label += "  " + v.styles.Muted.Render(item.Hint)
		}
		lines[i] = label
	}

	help := v.styles.Help.Render("[j/k] Navigate  [1-9/Enter] Select  [q] Quit")
	return header + "\n\n" + strings.Join(lines, "\n") + "\n\n" + help
}

func (v *View) SetDimensions(width, _ int) {
	v.width = width
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int { return v.cursor }

func (v *View) Items() []Item { return v.items }
