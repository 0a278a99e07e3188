// Package tui is an interactive terminal browser over the admin resources.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/shubhamsharma16/SparekartAdmin/admin"
	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	// chromeHeight is the number of lines around the table.
	chromeHeight   = 8
	minTableHeight = 3
	minColumnWidth = 8

	filterInputCharLimit = 64
	filterInputWidth     = 40

	// toggleField is flipped by the toggle key on resources that allow it.
	toggleField = "isCompleted"
)

const (
	keyQuit     = "q"
	keyCtrlC    = "ctrl+c"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyNext     = "n"
	keyRight    = "right"
	keyPrev     = "p"
	keyLeft     = "left"
	keyFirst    = "g"
	keyRefresh  = "r"
	keySlash    = "/"
	keyEnter    = "enter"
	keyEsc      = "esc"
	keyToggle   = "t"
	keyDelete   = "d"
)

type openedMsg struct {
	index   int
	browser admin.Browser
	listing *admin.Listing
	err     error
}

type listingMsg struct {
	browser admin.Browser
	listing *admin.Listing
	err     error
}

type mutationMsg struct {
	browser admin.Browser
	action  string
	id      string
	err     error
}

type Option func(*Model)

func WithLogger(l zerolog.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// WithResource selects the resource shown first.
func WithResource(name string) Option {
	return func(m *Model) {
		if i := lo.IndexOf(lo.Map(m.resources, func(r admin.Resource, _ int) string { return r.Name() }), name); i >= 0 {
			m.active = i
		}
	}
}

// Model browses one resource at a time. Fetches run as commands; a result
// for a browser that is no longer active, or one the session reports as
// stale, is dropped.
type Model struct {
	ctx       context.Context
	store     pager.Store
	logger    zerolog.Logger
	resources []admin.Resource
	active    int

	browser admin.Browser
	listing *admin.Listing

	table     table.Model
	input     textinput.Model
	filtering bool
	loading   bool

	status string
	notice string
	err    error

	width    int
	height   int
	quitting bool
}

func New(ctx context.Context, reg *admin.Registry, store pager.Store, opts ...Option) *Model {
	m := &Model{
		ctx:       ctx,
		store:     store,
		logger:    zerolog.Nop(),
		resources: reg.All(),
		input:     newFilterInput(),
		width:     defaultWidth,
		height:    defaultHeight,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.table = m.buildTable()

	return m
}

func newFilterInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.CharLimit = filterInputCharLimit
	ti.Width = filterInputWidth
	return ti
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, reg *admin.Registry, store pager.Store, opts ...Option) error {
	m := New(ctx, reg, store, opts...)
	defer m.close()

	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("cannot run browser: %w", err)
	}

	return nil
}

func (m *Model) Init() tea.Cmd {
	return m.open(m.active)
}

func (m *Model) close() {
	if m.browser != nil {
		m.browser.Close()
	}
}

func (m *Model) resource() admin.Resource {
	return m.resources[m.active]
}

func (m *Model) open(index int) tea.Cmd {
	m.loading = true
	res := m.resources[index]
	ctx, store, logger := m.ctx, m.store, m.logger

	return func() tea.Msg {
		b, err := res.Browse(ctx, store, pager.WithWriter(store), pager.WithLogger(logger))
		if err != nil {
			return openedMsg{index: index, err: err}
		}

		l, err := b.Load(ctx, 1)
		return openedMsg{index: index, browser: b, listing: l, err: err}
	}
}

func (m *Model) fetch(fn func(context.Context, admin.Browser) (*admin.Listing, error)) tea.Cmd {
	if m.browser == nil {
		return nil
	}

	m.loading = true
	b, ctx := m.browser, m.ctx

	return func() tea.Msg {
		l, err := fn(ctx, b)
		return listingMsg{browser: b, listing: l, err: err}
	}
}

func (m *Model) mutate(action, id string, fn func(context.Context, admin.Browser) error) tea.Cmd {
	b, ctx := m.browser, m.ctx

	return func() tea.Msg {
		return mutationMsg{browser: b, action: action, id: id, err: fn(ctx, b)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table = m.buildTable()
		return m, nil
	case openedMsg:
		return m.handleOpened(msg)
	case listingMsg:
		return m.handleListing(msg)
	case mutationMsg:
		return m.handleMutation(msg)
	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleOpened(msg openedMsg) (tea.Model, tea.Cmd) {
	if msg.index != m.active {
		if msg.browser != nil {
			msg.browser.Close()
		}
		return m, nil
	}

	m.close()
	m.browser = msg.browser
	m.input.SetValue("")
	m.setListing(msg.listing, msg.err)

	return m, nil
}

func (m *Model) handleListing(msg listingMsg) (tea.Model, tea.Cmd) {
	if msg.browser != m.browser || errors.Is(msg.err, pager.ErrStaleFetch) {
		m.logger.Debug().Err(msg.err).Msg("dropping stale listing")
		return m, nil
	}

	m.setListing(msg.listing, msg.err)

	return m, nil
}

func (m *Model) setListing(l *admin.Listing, err error) {
	m.loading = false
	m.err = err
	m.notice = ""

	if err != nil {
		if errors.Is(err, pager.ErrFetchFailed) {
			m.status = "fetch failed, press r to retry"
		}
		return
	}

	m.status = ""
	m.listing = l
	m.notice = l.Notice
	m.table = m.buildTable()
}

func (m *Model) handleMutation(msg mutationMsg) (tea.Model, tea.Cmd) {
	if msg.browser != m.browser {
		return m, nil
	}

	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}

	m.err = nil
	m.status = fmt.Sprintf("%s %s", msg.action, msg.id)
	if l := m.browser.Current(); l != nil {
		m.listing = l
		m.table = m.buildTable()
	}

	return m, nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		m.filtering = false
		m.input.Blur()
		text := strings.TrimSpace(m.input.Value())
		return m, m.fetch(func(ctx context.Context, b admin.Browser) (*admin.Listing, error) {
			return b.SetFilter(ctx, text)
		})
	case keyEsc:
		m.filtering = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.quitting = true
		m.close()
		return m, tea.Quit
	case keyTab:
		return m.switchTo((m.active + 1) % len(m.resources))
	case keyShiftTab:
		return m.switchTo((m.active + len(m.resources) - 1) % len(m.resources))
	case keyNext, keyRight:
		if m.listing == nil || !m.listing.HasNext {
			return m, nil
		}
		return m, m.fetch(func(ctx context.Context, b admin.Browser) (*admin.Listing, error) { return b.Next(ctx) })
	case keyPrev, keyLeft:
		if m.listing == nil || m.listing.Page <= 1 {
			return m, nil
		}
		return m, m.fetch(func(ctx context.Context, b admin.Browser) (*admin.Listing, error) { return b.Prev(ctx) })
	case keyFirst:
		return m, m.fetch(func(ctx context.Context, b admin.Browser) (*admin.Listing, error) {
			return b.Load(ctx, 1)
		})
	case keyRefresh:
		if m.browser == nil {
			return m, m.open(m.active)
		}
		return m, m.fetch(func(ctx context.Context, b admin.Browser) (*admin.Listing, error) { return b.Refresh(ctx) })
	case keySlash:
		m.filtering = true
		return m, m.input.Focus()
	case keyEsc:
		if m.input.Value() == "" {
			return m, nil
		}
		m.input.SetValue("")
		return m, m.fetch(func(ctx context.Context, b admin.Browser) (*admin.Listing, error) {
			return b.SetFilter(ctx, "")
		})
	case keyToggle:
		return m, m.toggleSelected()
	case keyDelete:
		return m, m.deleteSelected()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) switchTo(index int) (tea.Model, tea.Cmd) {
	if index == m.active {
		return m, nil
	}

	m.close()
	m.browser = nil
	m.active = index
	m.listing = nil
	m.err = nil
	m.status = ""
	m.table = m.buildTable()

	return m, m.open(index)
}

func (m *Model) selected() (admin.Item, bool) {
	if m.listing == nil || len(m.listing.Items) == 0 {
		return admin.Item{}, false
	}

	i := m.table.Cursor()
	if i < 0 || i >= len(m.listing.Items) {
		return admin.Item{}, false
	}

	return m.listing.Items[i], true
}

func (m *Model) toggleSelected() tea.Cmd {
	item, ok := m.selected()
	if !ok || !lo.Contains(m.resource().Editable(), toggleField) {
		return nil
	}

	c, ok := item.Record.(admin.Complaint)
	if !ok {
		return nil
	}

	fields := map[string]any{toggleField: !c.IsCompleted}
	return m.mutate("updated", item.ID, func(ctx context.Context, b admin.Browser) error {
		return b.Update(ctx, item.ID, fields)
	})
}

func (m *Model) deleteSelected() tea.Cmd {
	item, ok := m.selected()
	if !ok || !m.resource().Deletable() {
		return nil
	}

	return m.mutate("deleted", item.ID, func(ctx context.Context, b admin.Browser) error {
		return b.Delete(ctx, item.ID)
	})
}

func (m *Model) buildTable() table.Model {
	headers := m.resource().Headers()
	width := max((m.width-2*len(headers))/max(len(headers), 1), minColumnWidth)

	columns := lo.Map(headers, func(h string, _ int) table.Column {
		return table.Column{Title: h, Width: width}
	})

	var rows []table.Row
	if m.listing != nil {
		rows = lo.Map(m.listing.Items, func(item admin.Item, _ int) table.Row {
			return table.Row(item.Cells)
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-chromeHeight, minTableHeight)),
	)

	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)

	return t
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	tabs := lo.Map(m.resources, func(r admin.Resource, i int) string {
		if i == m.active {
			return ActiveTabStyle.Render(r.Title())
		}
		return TabStyle.Render(r.Title())
	})
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	b.WriteString(StatusStyle.Render(m.summary()))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.listing != nil && len(m.listing.Buttons) > 0 {
		b.WriteString(renderButtons(m.listing.Buttons))
		b.WriteString("\n")
	}

	if m.filtering {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(ErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
		if m.status != "" {
			b.WriteString(StatusStyle.Render(m.status))
			b.WriteString("\n")
		}
	case m.notice != "":
		b.WriteString(NoticeStyle.Render(m.notice))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(StatusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(m.help()))

	return b.String()
}

func (m *Model) summary() string {
	if m.loading && m.listing == nil {
		return "Loading..."
	}

	if m.listing == nil {
		return ""
	}

	l := m.listing
	s := fmt.Sprintf("Page %d of %d  |  %d total", l.Page, max(l.TotalPages, 1), l.Total)
	if l.Filter != "" {
		s += fmt.Sprintf("  |  filter %q (%s)", l.Filter, l.FilterMode)
	}
	if m.loading {
		s += "  |  loading..."
	}

	return s
}

func (m *Model) help() string {
	keys := []string{"tab switch", "n/p page", "g first", "/ filter", "r refresh"}
	if lo.Contains(m.resource().Editable(), toggleField) {
		keys = append(keys, "t toggle")
	}
	if m.resource().Deletable() {
		keys = append(keys, "d delete")
	}

	return strings.Join(append(keys, "q quit"), "  ")
}
