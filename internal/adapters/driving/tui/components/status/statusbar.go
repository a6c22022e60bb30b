// Package status provides the status bar for the TUI.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/keymap"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/styles"
	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// State is the activity shown on the left of the bar.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateResults   State = "results"
	StateError     State = "error"
)

// Bar displays search state, active pipeline switches and key hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	count   int
	elapsed time.Duration
	opts    domain.SearchOptions
	width   int
}

// NewBar creates a status bar.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// View renders the bar across the full width.
func (b *Bar) View() string {
	left := b.renderLeft() + "  " + b.renderSwitches()
	right := b.renderHints()

	padding := max(b.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return b.styles.StatusBar.Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateSearching:
		return b.styles.Muted.Render("Searching...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render("Error: " + b.message)
		}
		return b.styles.Error.Render("Error")
	case StateResults:
		return b.styles.Normal.Render(fmt.Sprintf("%d results in %s", b.count, b.elapsed.Round(time.Millisecond)))
	default:
		return b.styles.Muted.Render("Ready")
	}
}

func (b *Bar) renderSwitches() string {
	flag := func(name string, on bool) string {
		if on {
			return b.styles.Success.Render(name)
		}
		return b.styles.Muted.Render(name + ":off")
	}
	return strings.Join([]string{
		flag("rerank", !b.opts.DisableRerank),
		flag("tags", !b.opts.DisableSourceTagging),
		flag("xenc", b.opts.CrossEncoder),
	}, " ")
}

func (b *Bar) renderHints() string {
	var bindings []key.Binding
	if b.state == StateResults && b.count > 0 {
		bindings = b.keymap.ResultsHelp()
	} else {
		bindings = b.keymap.InputHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return b.styles.Help.Render(strings.Join(hints, " · "))
}

// SetSearching marks a search in flight.
func (b *Bar) SetSearching() {
	b.state = StateSearching
	b.message = ""
}

// SetResults records a completed search.
func (b *Bar) SetResults(count int, elapsed time.Duration) {
	b.state = StateResults
	b.count = count
	b.elapsed = elapsed
	b.message = ""
}

// SetError shows err on the bar.
func (b *Bar) SetError(err error) {
	b.state = StateError
	b.message = err.Error()
}

// SetOptions updates the displayed pipeline switches.
func (b *Bar) SetOptions(opts domain.SearchOptions) {
	b.opts = opts
}

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// Message returns the error message, if any.
func (b *Bar) Message() string {
	return b.message
}

// Clear resets the bar to ready.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.count = 0
	b.elapsed = 0
}
