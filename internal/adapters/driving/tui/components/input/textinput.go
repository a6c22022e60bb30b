// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/styles"
)

const minInputWidth = 20

// QueryInput wraps a bubbles textinput with a label.
type QueryInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewQueryInput creates a focused input labelled label.
func NewQueryInput(s *styles.Styles, label, placeholder string) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	return &QueryInput{textinput: ti, styles: s, label: label, width: 70}
}

// Init starts the cursor blink.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards msg to the underlying textinput.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the label and the bordered input.
func (q *QueryInput) View() string {
	label := q.styles.Title.Render(q.label + " ")
	return lipgloss.JoinHorizontal(lipgloss.Center, label, q.styles.InputField.Render(q.textinput.View()))
}

func (q *QueryInput) Value() string { return q.textinput.Value() }
func (q *QueryInput) SetValue(v string) { q.textinput.SetValue(v) }
func (q *QueryInput) Focus() tea.Cmd { return q.textinput.Focus() }
func (q *QueryInput) Blur() { q.textinput.Blur() }
func (q *QueryInput) Focused() bool { return q.textinput.Focused() }
func (q *QueryInput) Reset() { q.textinput.Reset() }
func (q *QueryInput) Width() int { return q.width }

// SetWidth sizes the input to fit width cells including the label.
func (q *QueryInput) SetWidth(width int) {
	q.width = width
	q.textinput.Width = max(width-lipgloss.Width(q.label)-6, minInputWidth)
}
