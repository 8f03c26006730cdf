package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/porter/internal/app"
	"github.com/desertthunder/porter/internal/shared"
	"github.com/sahilm/fuzzy"
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	controller *app.Controller
	loginURL   string
	open       func(string) error
	keys       keyMap
	help       help.Model
	input      textinput.Model
	filtering  bool
	query      string
	cursor     int
	loading    bool
	width      int
	height     int
	err        error
}

// ModelOpts contains configuration options for creating a [Model].
type ModelOpts struct {
	Controller *app.Controller
	LoginURL   string
	// Open launches a URL outside the terminal. Defaults to [shared.OpenBrowser].
	Open func(string) error
}

// NewModel creates a new TUI model over a page controller.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}

	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "filter playlists"
	input.CharLimit = 64

	return &Model{
		ctx:        ctx,
		controller: opts.Controller,
		loginURL:   opts.LoginURL,
		open:       opts.Open,
		keys:       newKeyMap(),
		help:       help.New(),
		input:      input,
		loading:    true,
	}
}

// Init starts the session check.
func (m *Model) Init() tea.Cmd {
	return m.checkSession()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKeys(msg)
		}
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSessionChecked, MsgPlaylistsLoaded:
		m.loading = false
		m.err = msg.Err()
		m.clampCursor()
	case MsgTransferSubmitted:
		err := msg.Err()
		if errors.Is(err, shared.ErrEmptySelection) || errors.Is(err, shared.ErrNotImplemented) {
			err = nil
		}
		m.err = err
	case MsgBrowserOpened:
		m.err = msg.Err()
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.controller.Page()

	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	// the warning blocks everything else until acknowledged
	if page.Warning != "" {
		if key.Matches(msg, m.keys.embed, m.keys.back) {
			m.controller.DismissWarning()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(m.visible(page))-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.toggle):
		if row, ok := m.current(page); ok {
			m.err = m.controller.Toggle(row.Playlist.ID, !row.Checked)
		}
	case key.Matches(msg, m.keys.selectAll):
		m.controller.SetSelectAll(!page.SelectAll)
	case key.Matches(msg, m.keys.embed):
		if row, ok := m.current(page); ok {
			if _, err := m.controller.ShowEmbed(row.Playlist.ID); err != nil {
				m.err = err
			}
		}
	case key.Matches(msg, m.keys.open):
		if page.Embed != nil {
			return m, m.openURL(page.Embed.Src)
		}
	case key.Matches(msg, m.keys.transfer):
		return m, m.submit()
	case key.Matches(msg, m.keys.reload):
		m.loading = true
		if page.Session.LoggedIn() {
			return m, m.reload()
		}
		return m, m.recheck()
	case key.Matches(msg, m.keys.login):
		if !page.Control().Disabled {
			return m, m.openURL(m.loginURL)
		}
	case key.Matches(msg, m.keys.filter):
		m.filtering = true
		m.input.SetValue(m.query)
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.back):
		m.query = ""
		m.cursor = 0
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m *Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.query = ""
		m.cursor = 0
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.filtering = false
		m.input.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.query = m.input.Value()
	m.cursor = 0
	return m, cmd
}

// rowSource adapts page rows to [fuzzy.Source].
type rowSource []app.Row

func (s rowSource) String(i int) string { return s[i].Playlist.Name }
func (s rowSource) Len() int            { return len(s) }

// visible returns the indices of rows matching the filter, in row order.
func (m *Model) visible(page app.Page) []int {
	idx := make([]int, 0, len(page.Rows))
	if strings.TrimSpace(m.query) == "" {
		for i := range page.Rows {
			idx = append(idx, i)
		}
		return idx
	}

	for _, match := range fuzzy.FindFrom(m.query, rowSource(page.Rows)) {
		idx = append(idx, match.Index)
	}
	sort.Ints(idx)
	return idx
}

func (m *Model) current(page app.Page) (app.Row, bool) {
	vis := m.visible(page)
	if m.cursor < 0 || m.cursor >= len(vis) {
		return app.Row{}, false
	}
	return page.Rows[vis[m.cursor]], true
}

func (m *Model) clampCursor() {
	n := len(m.visible(m.controller.Page()))
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) checkSession() tea.Cmd {
	return func() tea.Msg {
		return sessionCheckedMsg(m.controller.CheckSession(m.ctx))
	}
}

func (m *Model) recheck() tea.Cmd {
	return func() tea.Msg {
		return sessionCheckedMsg(m.controller.Recheck(m.ctx))
	}
}

func (m *Model) reload() tea.Cmd {
	return func() tea.Msg {
		return playlistsLoadedMsg(m.controller.LoadPlaylists(m.ctx))
	}
}

func (m *Model) submit() tea.Cmd {
	return func() tea.Msg {
		sel, err := m.controller.Submit(m.ctx)
		return transferSubmittedMsg(sel, err)
	}
}

func (m *Model) openURL(url string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		return browserOpenedMsg(url, open(url))
	}
}

// View renders the current page snapshot.
func (m *Model) View() string {
	page := m.controller.Page()
	var b strings.Builder

	b.WriteString(styles.title.Render("Spotify Playlists"))
	b.WriteString("\n")
	b.WriteString(m.renderControl(page))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	if page.Warning != "" {
		b.WriteString(styles.alert.Render(page.Warning + "\n\n" + styles.help.Render("enter/esc to dismiss")))
		b.WriteString("\n\n")
	}
	if page.Notice != "" {
		b.WriteString(styles.ok.Render(page.Notice))
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString(styles.help.Render("Loading..."))
		b.WriteString("\n\n")
	} else if page.SectionVisible {
		b.WriteString(m.renderPlaylists(page))
	}

	if page.Embed != nil {
		b.WriteString(fmt.Sprintf("Preview: %s\n\n", page.Embed.Src))
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderControl(page app.Page) string {
	ctl := page.Control()
	if ctl.Disabled {
		return styles.muted.Render(ctl.Label)
	}
	return styles.button.Render(ctl.Label) + " " + styles.help.Render("(l)")
}

func (m *Model) renderPlaylists(page app.Page) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s Select all\n", checkbox(page.SelectAll)))

	if m.filtering {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	} else if m.query != "" {
		b.WriteString(styles.help.Render(fmt.Sprintf("filter: %s (esc to clear)", m.query)))
		b.WriteString("\n")
	}

	if page.NoPlaylists {
		b.WriteString(app.MsgNoPlaylists)
		b.WriteString("\n")
	}

	for pos, i := range m.visible(page) {
		row := page.Rows[i]
		cursor := "  "
		if pos == m.cursor {
			cursor = styles.ok.Render("> ")
		}
		name := row.Playlist.Name
		if page.Embed != nil && page.Embed.PlaylistID == row.Playlist.ID {
			name += styles.help.Render(" (previewing)")
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, checkbox(row.Checked), name))
	}

	if page.TransferVisible {
		b.WriteString("\n")
		b.WriteString(styles.button.Render("Transfer Selected") + " " + styles.help.Render("(t)"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}
