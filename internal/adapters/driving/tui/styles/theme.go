// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// Theme defines the colour palette for the TUI.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color

	// Internal marks results from the disclosure store.
	Internal lipgloss.Color

	// External marks results from web search.
	External lipgloss.Color
}

// DefaultTheme returns a dark theme tuned for long Korean text.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#2F80ED"),
		Secondary:  lipgloss.Color("#56CCF2"),
		Foreground: lipgloss.Color("#E6E9EF"),
		Muted:      lipgloss.Color("#7A8194"),
		Success:    lipgloss.Color("#6FCF97"),
		Warning:    lipgloss.Color("#F2C94C"),
		Error:      lipgloss.Color("#EB5757"),
		Border:     lipgloss.Color("#3C4252"),
		Internal:   lipgloss.Color("#27AE60"),
		External:   lipgloss.Color("#BB6BD9"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// InputField wraps the query box.
	InputField lipgloss.Style

	// StatusBar is the bottom line.
	StatusBar lipgloss.Style

	Help lipgloss.Style

	// Detail frames the selected fragment.
	Detail lipgloss.Style

	// Score renders similarity scores.
	Score lipgloss.Style

	internalBadge lipgloss.Style
	externalBadge lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme selects DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#0B0E14"))

	return &Styles{
		theme:    theme,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Normal:   lipgloss.NewStyle().Foreground(theme.Foreground),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),
		Error:   lipgloss.NewStyle().Foreground(theme.Error),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(theme.Muted),
		Detail: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderTop(false).
			BorderRight(false).
			BorderBottom(false).
			BorderForeground(theme.Border).
			PaddingLeft(1),
		Score:         lipgloss.NewStyle().Foreground(theme.Secondary),
		internalBadge: badge.Background(theme.Internal),
		externalBadge: badge.Background(theme.External),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Badge renders a short provenance label. Unknown provenances render empty.
func (s *Styles) Badge(p domain.Provenance) string {
	switch p {
	case domain.ProvenanceInternal:
		return s.internalBadge.Render("DART")
	case domain.ProvenanceExternal:
		return s.externalBadge.Render("WEB")
	default:
		return ""
	}
}
