package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

func TestDefaultTheme_ColoursAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	palette := []lipgloss.Color{
		theme.Primary, theme.Secondary, theme.Success, theme.Warning,
		theme.Error, theme.Internal, theme.External,
	}

	seen := make(map[string]bool)
	for _, c := range palette {
		require.NotEmpty(t, string(c))
		assert.False(t, seen[string(c)], "duplicate colour %s", c)
		seen[string(c)] = true
	}
}

func TestNewStyles_NilTheme(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s.Theme())
	assert.Equal(t, DefaultTheme().Primary, s.Theme().Primary)
}

func TestStyles_Badge(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Badge(domain.ProvenanceInternal), "DART")
	assert.Contains(t, s.Badge(domain.ProvenanceExternal), "WEB")
	assert.Empty(t, s.Badge(""))
}
