package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/messages"
)

func TestNewView_Items(t *testing.T) {
	assert.Len(t, NewView(nil, nil, false).Items(), 2)

	items := NewView(nil, nil, true).Items()
	require.Len(t, items, 3)
	assert.Equal(t, messages.ViewCompanies, items[1].View)
	assert.True(t, items[2].Quit)
}

func TestView_NotReady(t *testing.T) {
	assert.Equal(t, "Initialising...", NewView(nil, nil, true).View())
}

func TestView_Navigation(t *testing.T) {
	v := NewView(nil, nil, true)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, v.Selected())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, v.Selected())
}

func TestView_SelectSwitchesView(t *testing.T) {
	v := NewView(nil, nil, true)
	v.SetDimensions(80, 24)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewSearch}, cmd())
}

func TestView_Quit(t *testing.T) {
	v := NewView(nil, nil, false)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_Render(t *testing.T) {
	v := NewView(nil, nil, true)
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	out := v.View()

	assert.Contains(t, out, "STORM")
	assert.Contains(t, out, "> 1 Search")
	assert.Contains(t, out, "Companies")
}

func TestView_NumberShortcut(t *testing.T) {
	v := NewView(nil, nil, true)

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewCompanies}, cmd())
	assert.Equal(t, 1, v.Selected())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'9'}})
	assert.Nil(t, cmd)
}
