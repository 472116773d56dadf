// Package tui provides the interactive ticket console using Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/junegunn/fzf/src/util"

	"github.com/baiirun/mspdesk/internal/model"
	"github.com/baiirun/mspdesk/internal/store"
	"github.com/baiirun/mspdesk/internal/ticket"
)

const (
	// ticketHistory is the entity type visits are recorded under.
	ticketHistory = "ticket"
	// ticketsPage keys the persisted list/board preference.
	ticketsPage = "tickets"
)

// Backend is what the console needs from the REST client.
type Backend interface {
	ticket.Backend
	ListTickets(ctx context.Context, filter model.TicketFilter) ([]model.Ticket, error)
}

// Model is the root Bubble Tea model: the ticket list (or board) with the
// detail page pushed on top when a ticket is open.
type Model struct {
	ctx     context.Context
	backend Backend
	store   *store.DB
	svc     *ticket.Service
	theme   Theme
	keys    KeyMap

	tickets  []model.Ticket // recent first, then backend order
	recent   map[int64]bool
	cursor   int
	viewMode store.ViewMode

	searching bool
	search    string
	slab      *util.Slab

	detail *detailModel

	width   int
	height  int
	err     error
	message string
}

// New creates the console. The view mode is read from the store; a
// failed read falls back to the list view and is shown on the status line.
func New(ctx context.Context, backend Backend, st *store.DB) Model {
	m := Model{
		ctx:      ctx,
		backend:  backend,
		store:    st,
		svc:      ticket.NewService(backend),
		theme:    DefaultTheme,
		keys:     DefaultKeyMap,
		viewMode: store.ViewList,
		recent:   map[int64]bool{},
		slab:     util.MakeSlab(100*1024, 2048),
	}
	mode, err := st.ViewMode(ticketsPage)
	if err != nil {
		m.err = err
	} else {
		m.viewMode = mode
	}
	return m
}

// Messages
type ticketsMsg struct {
	tickets []model.Ticket
	recent  []int64
	err     error
}

func ticketID(t model.Ticket) int64 { return t.ID }

func (m Model) loadTickets() tea.Cmd {
	return func() tea.Msg {
		items, err := m.backend.ListTickets(m.ctx, model.TicketFilter{})
		if err != nil {
			return ticketsMsg{err: fmt.Errorf("failed to list tickets: %w", err)}
		}
		recent, err := m.store.RecentIDs(ticketHistory)
		if err != nil {
			return ticketsMsg{err: err}
		}
		return ticketsMsg{tickets: store.SortByRecency(items, recent, ticketID), recent: recent}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadTickets()
}

// visible returns the tickets in display order: search-filtered, and in
// board mode grouped by status.
func (m Model) visible() []model.Ticket {
	list := m.tickets
	if m.search != "" {
		pattern := []rune(m.search)
		var out []model.Ticket
		for _, t := range list {
			hay := fmt.Sprintf("#%d %s %s", t.ID, t.Subject, t.AccountName)
			if fuzzyMatch(hay, pattern, m.slab).Matched {
				out = append(out, t)
			}
		}
		list = out
	}
	if m.viewMode != store.ViewBoard {
		return list
	}
	var grouped []model.Ticket
	for _, s := range model.TicketStatuses {
		for _, t := range list {
			if t.Status == s {
				grouped = append(grouped, t)
			}
		}
	}
	for _, t := range list {
		if !t.Status.IsValid() {
			grouped = append(grouped, t)
		}
	}
	return grouped
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.detail != nil {
			m.detail.setSize(msg.Width, msg.Height)
		}
		return m, nil

	case ticketsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.tickets = msg.tickets
		m.recent = map[int64]bool{}
		for _, id := range msg.recent {
			m.recent[id] = true
		}
		m.clampCursor()
		return m, nil

	case detailLoadedMsg, ticketUpdatedMsg, detailActionMsg:
		if m.detail == nil {
			return m, nil
		}
		d, cmd := m.detail.Update(msg)
		m.detail = &d
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		m.message = ""
		m.err = nil
		if m.detail != nil {
			return m.handleDetailKey(msg)
		}
		if m.searching {
			return m.handleSearchKey(msg), nil
		}
		return m.handleListKey(msg)
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.detail.modalOpen() {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.detail = nil
			return m, m.loadTickets()
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
	}
	d, cmd := m.detail.Update(msg)
	m.detail = &d
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) Model {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search = ""
	case tea.KeyEnter:
		m.searching = false
	case tea.KeyBackspace:
		if r := []rune(m.search); len(r) > 0 {
			m.search = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		if msg.Type == tea.KeySpace {
			m.search += " "
		} else {
			m.search += string(msg.Runes)
		}
	}
	m.cursor = 0
	m.clampCursor()
	return m
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.visible())
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(msg, m.keys.Down):
		m.cursor = max(0, min(n-1, m.cursor+1))
	case key.Matches(msg, m.keys.Home):
		m.cursor = 0
	case key.Matches(msg, m.keys.End):
		m.cursor = max(0, n-1)
	case key.Matches(msg, m.keys.Search):
		m.searching = true
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadTickets()
	case key.Matches(msg, m.keys.ViewMode):
		return m.toggleViewMode(), nil
	case key.Matches(msg, m.keys.Open):
		return m.open()
	}
	return m, nil
}

func (m Model) toggleViewMode() Model {
	next := store.ViewBoard
	if m.viewMode == store.ViewBoard {
		next = store.ViewList
	}
	if err := m.store.SetViewMode(ticketsPage, next); err != nil {
		m.err = err
		return m
	}
	m.viewMode = next
	m.cursor = 0
	return m
}

func (m Model) open() (tea.Model, tea.Cmd) {
	vis := m.visible()
	if len(vis) == 0 {
		return m, nil
	}
	t := vis[m.cursor]
	if err := m.store.RecordVisit(ticketHistory, store.Visit{ID: t.ID, Label: t.Subject}); err != nil {
		m.err = err
	}
	d := newDetailModel(m.ctx, m.svc, m.theme, m.keys, t.ID)
	d.setSize(m.width, m.height)
	m.detail = &d
	return m, d.load()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.detail != nil {
		return m.detail.View()
	}
	theme := m.theme
	width := max(60, m.width)
	vis := m.visible()

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Render("mspdesk"))
	b.WriteString(fmt.Sprintf("  %d/%d tickets  ", len(vis), len(m.tickets)))
	b.WriteString(theme.faint().Render(string(m.viewMode)))
	if m.searching || m.search != "" {
		b.WriteString("  " + theme.label().Render("/") + m.search)
		if m.searching {
			b.WriteString(lipgloss.NewStyle().Reverse(true).Render(" "))
		}
	}
	b.WriteString("\n\n")

	rows := max(3, m.height-6)
	if len(vis) == 0 {
		b.WriteString(theme.faint().Render("No tickets."))
		b.WriteString("\n")
	} else if m.viewMode == store.ViewBoard {
		b.WriteString(m.boardView(vis, width, rows))
	} else {
		b.WriteString(m.listView(vis, width, rows))
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(theme.errorStyle().Render(m.err.Error()))
	case m.message != "":
		b.WriteString(theme.success().Render(m.message))
	}
	b.WriteString("\n")
	k := m.keys
	b.WriteString(theme.help().Render(helpLine(k.Up, k.Down, k.Open, k.Search, k.ViewMode, k.Refresh, k.Quit)))
	return b.String()
}

func (m Model) ticketLine(t model.Ticket, width int) string {
	mark := "  "
	if m.recent[t.ID] {
		mark = m.theme.faint().Render("• ")
	}
	badge := m.theme.StatusBadge(string(t.Status))
	badge += strings.Repeat(" ", max(0, 12-ansi.StringWidth(badge)))
	prio := lipgloss.NewStyle().Foreground(m.theme.PriorityColor(t.Priority)).Render(fmt.Sprintf("%-8s", t.Priority))
	line := fmt.Sprintf("%s#%-5d %s %s %s", mark, t.ID, badge, prio, t.Subject)
	if t.AccountName != "" {
		line += m.theme.faint().Render("  " + t.AccountName)
	}
	return ansi.Truncate(line, width, "…")
}

func (m Model) listView(vis []model.Ticket, width, rows int) string {
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(vis))
	var b strings.Builder
	for i := start; i < end; i++ {
		line := m.ticketLine(vis[i], width)
		if i == m.cursor {
			line = m.theme.selected().Render(ansi.Strip(line))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// boardView lays tickets out in one column per status, plus an "other"
// column when some tickets carry a status this console does not know.
// The cursor still walks the grouped order, column by column, and each
// column scrolls to keep the selected ticket drawn.
func (m Model) boardView(vis []model.Ticket, width, rows int) string {
	type column struct {
		head  string
		match func(model.TicketStatus) bool
	}
	var columns []column
	for _, s := range model.TicketStatuses {
		columns = append(columns, column{
			head:  m.theme.StatusBadge(string(s)),
			match: func(status model.TicketStatus) bool { return status == s },
		})
	}
	if slices.ContainsFunc(vis, func(t model.Ticket) bool { return !t.Status.IsValid() }) {
		columns = append(columns, column{
			head:  m.theme.StatusBadge("other"),
			match: func(status model.TicketStatus) bool { return !status.IsValid() },
		})
	}

	colWidth := max(14, width/len(columns)-1)
	selected := vis[m.cursor].ID
	perColumn := max(1, rows-1)

	var cols []string
	for _, c := range columns {
		var entries []model.Ticket
		for _, t := range vis {
			if c.match(t.Status) {
				entries = append(entries, t)
			}
		}
		start := 0
		if i := slices.IndexFunc(entries, func(t model.Ticket) bool { return t.ID == selected }); i >= perColumn {
			start = i - perColumn + 1
		}
		var lines []string
		for _, t := range entries[start:min(len(entries), start+perColumn)] {
			line := ansi.Truncate(fmt.Sprintf("#%d %s", t.ID, t.Subject), colWidth-1, "…")
			if t.ID == selected {
				line = m.theme.selected().Render(line)
			}
			lines = append(lines, line)
		}
		head := c.head + m.theme.faint().Render(fmt.Sprintf(" %d", len(entries)))
		cols = append(cols, lipgloss.NewStyle().Width(colWidth).Render(head+"\n"+strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...) + "\n"
}

// Run starts the console and blocks until the user quits.
func Run(ctx context.Context, backend Backend, st *store.DB) error {
	p := tea.NewProgram(New(ctx, backend, st), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
