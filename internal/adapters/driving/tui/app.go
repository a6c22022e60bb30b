package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/messages"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/styles"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/views/companies"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/views/menu"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/views/search"
	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// App is the TUI root model. It owns the views and routes messages
// to the active one.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView      *menu.View
	searchView    *search.View
	companiesView *companies.View

	currentView messages.ViewType
	ready       bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the TUI over ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		menuView:      menu.NewView(s, nil, ports.Companies != nil),
		searchView:    search.NewView(s, nil, ports.Search),
		companiesView: companies.NewView(s, ports.Companies),
		currentView:   messages.ViewMenu,
	}, nil
}

// WithContext sets the context used by the views' service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.companiesView.WithContext(ctx)
	return a
}

// WithSearchOptions sets the options the search view starts with.
func (a *App) WithSearchOptions(opts domain.SearchOptions) *App {
	a.searchView.WithOptions(opts)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("storm")
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.CompaniesLoaded:
		a.companiesView, cmd = a.companiesView.Update(msg)
		return a, cmd
	}

	switch a.currentView {
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewCompanies:
		a.companiesView, cmd = a.companiesView.Update(msg)
	default:
		a.menuView, cmd = a.menuView.Update(msg)
	}
	return a, cmd
}

func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	if view == messages.ViewCompanies && a.ports.Companies == nil {
		view = messages.ViewMenu
	}
	a.currentView = view

	switch view {
	case messages.ViewSearch:
		return a.searchView.Init()
	case messages.ViewCompanies:
		return a.companiesView.Init()
	default:
		return nil
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewCompanies:
		return a.companiesView.View()
	default:
		return a.menuView.View()
	}
}

// Run starts the program on the alternate screen and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Results returns the search view's current results.
func (a *App) Results() []domain.RankedFragment {
	return a.searchView.Results()
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.companiesView.SetDimensions(width, height)
}
