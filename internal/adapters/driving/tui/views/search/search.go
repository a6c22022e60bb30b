// Package search provides the search view of the TUI.
package search

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/components/detail"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/components/input"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/components/list"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/components/status"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/keymap"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/messages"
	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui/styles"
	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driving"
)

// chromeHeight is the number of rows used by the title, input and status bar.
const chromeHeight = 8

// View is the search screen: a query box, the ranked results on the
// left and the selected result on the right.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	pane      *detail.Pane
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context

	opts      domain.SearchOptions
	lastQuery string

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
}

// NewView creates a search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQueryInput(s, "Search:", "예: 삼성전자와 SK하이닉스 매출 비교"),
		list:          list.NewResultList(s),
		pane:          detail.NewPane(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		ctx:           context.Background(),
		opts:          domain.SearchOptions{TopK: domain.DefaultTopK},
		width:         80,
		height:        24,
		focusInput:    true,
	}
	v.statusbar.SetOptions(v.opts)
	return v
}

// WithContext sets the context used for searches.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithOptions sets the initial search options.
func (v *View) WithOptions(opts domain.SearchOptions) *View {
	if opts.TopK <= 0 {
		opts.TopK = domain.DefaultTopK
	}
	v.opts = opts
	v.statusbar.SetOptions(opts)
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.focusInput = false
			v.input.Blur()
			return v, v.search(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Quit):
		return v, tea.Quit
	case keymap.Matches(key, v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(key, v.keymap.ScrollDown):
		v.pane.ScrollDown()
	case keymap.Matches(key, v.keymap.ScrollUp):
		v.pane.ScrollUp()
	case keymap.Matches(key, v.keymap.ToggleRerank):
		v.opts.DisableRerank = !v.opts.DisableRerank
		return v, v.rerun()
	case keymap.Matches(key, v.keymap.ToggleTags):
		v.opts.DisableSourceTagging = !v.opts.DisableSourceTagging
		return v, v.rerun()
	case keymap.Matches(key, v.keymap.ToggleCrossEncoder):
		v.opts.CrossEncoder = !v.opts.CrossEncoder
		return v, v.rerun()
	default:
		v.list, _ = v.list.Update(msg)
		v.pane.Show(v.list.SelectedResult())
	}
	return v, nil
}

// rerun repeats the last query with the current options.
func (v *View) rerun() tea.Cmd {
	v.statusbar.SetOptions(v.opts)
	if v.lastQuery == "" {
		return nil
	}
	return v.search(v.lastQuery)
}

// search returns a command running query with the current options.
func (v *View) search(query string) tea.Cmd {
	v.lastQuery = query
	v.statusbar.SetSearching()
	v.statusbar.SetOptions(v.opts)

	svc, ctx, opts := v.searchService, v.ctx, v.opts
	return func() tea.Msg {
		if svc == nil {
			return messages.SearchCompleted{Query: query, Err: ErrNoSearchService}
		}
		start := time.Now()
		results, err := svc.Search(ctx, query, opts)
		return messages.SearchCompleted{Query: query, Results: results, Elapsed: time.Since(start), Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Query != v.lastQuery {
		return
	}
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.pane.Show(v.list.SelectedResult())
	v.statusbar.SetResults(len(msg.Results), msg.Elapsed)
	v.focusInput = false
	v.input.Blur()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("STORM"), v.input.View(), ""}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, v.list.View(), " ", v.pane.View())
	sections = append(sections, body, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions splits the area between the result list and the detail pane.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	bodyHeight := max(height-chromeHeight, 4)
	listWidth := max(width*2/5, 30)

	v.input.SetWidth(width)
	v.list.SetSize(listWidth, bodyHeight)
	v.pane.SetSize(max(width-listWidth-1, 20), bodyHeight)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view has been sized.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the query box content.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the query box content.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Options returns the options used for the next search.
func (v *View) Options() domain.SearchOptions {
	return v.opts
}

// Results returns the current results.
func (v *View) Results() []domain.RankedFragment {
	return v.list.Results()
}

// SelectedResult returns the highlighted result.
func (v *View) SelectedResult() *domain.RankedFragment {
	return v.list.SelectedResult()
}

// InputFocused reports whether keys go to the query box.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Err returns the last search error.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to an empty query box.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.Reset()
	v.list.SetResults(nil)
	v.pane.Show(nil)
	v.lastQuery = ""
	v.err = nil
	v.statusbar.Clear()
}
