package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/baiirun/mspdesk/internal/model"
	"github.com/baiirun/mspdesk/internal/textedit"
	"github.com/baiirun/mspdesk/internal/ticket"
)

type detailTab int

const (
	tabOverview detailTab = iota
	tabComments
	tabBilling
)

var tabNames = []string{"Overview", "Comments", "Billing"}

// Picker fields.
const (
	pickStatus    = "status"
	pickPriority  = "priority"
	pickAssign    = "assign"
	pickContact   = "contact"
	pickAsset     = "asset"
	pickArticle   = "article"
	pickMilestone = "milestone"
	pickMention   = "mention"
)

// Messages
type detailLoadedMsg struct {
	id     int64
	detail *ticket.Detail
	err    error
}

type ticketUpdatedMsg struct {
	id      int64
	ticket  *model.Ticket
	message string
	err     error
	// resolve is set for the resolve action so a failure can be shown in
	// the still-open modal.
	resolve bool
}

type detailActionMsg struct {
	id      int64
	message string
	err     error
}

// detailModel is the ticket detail page: tabs for overview, comments and
// billing, plus the resolve modal, comment composer and pickers layered on
// top. Every mutation re-fetches the whole detail when it succeeds.
type detailModel struct {
	ctx   context.Context
	svc   *ticket.Service
	theme Theme
	keys  KeyMap

	id      int64
	detail  *ticket.Detail
	loading bool

	tab           detailTab
	commentCursor int
	// viewport scrolls the body of the current tab below the fixed
	// header and tab bar.
	viewport viewport.Model

	resolve  *ResolveModal
	busy     bool // resolve request in flight
	composer *CommentComposer
	picker   *SearchableSelect

	toast    string
	toastErr bool

	width  int
	height int
}

func newDetailModel(ctx context.Context, svc *ticket.Service, theme Theme, keys KeyMap, id int64) detailModel {
	return detailModel{
		ctx:     ctx,
		svc:     svc,
		theme:   theme,
		keys:    keys,
		id:      id,
		loading: true,
	}
}

// setSize updates the page dimensions and re-renders the body at the
// new width.
func (m *detailModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(40, width) - 2
	m.viewport.Height = max(5, height-7)
	m.refreshBody()
}

// refreshBody renders the current tab into the viewport. The scroll
// offset is kept as far as the new content allows; on the comments tab
// the selected comment is scrolled into view.
func (m *detailModel) refreshBody() {
	if m.detail == nil {
		m.viewport.SetContent("")
		return
	}
	offset := m.viewport.YOffset
	width := m.viewport.Width
	var body string
	switch m.tab {
	case tabOverview:
		body = overviewPane(m.theme, m.detail, width)
	case tabComments:
		var sel int
		body, sel = commentsPane(m.theme, m.detail, m.commentCursor, width)
		if sel < offset {
			offset = sel
		} else if sel >= offset+m.viewport.Height {
			offset = sel - m.viewport.Height + 1
		}
	case tabBilling:
		body = billingPane(m.theme, m.detail, width)
	}
	m.viewport.SetContent(body)
	m.viewport.SetYOffset(offset)
}

func (m detailModel) load() tea.Cmd {
	id := m.id
	return func() tea.Msg {
		d, err := m.svc.LoadDetail(m.ctx, id)
		return detailLoadedMsg{id: id, detail: d, err: err}
	}
}

// Keys returns the bindings for the loaded ticket.
func (m detailModel) Keys() KeyMap {
	if m.detail == nil {
		return m.keys
	}
	return m.keys.ForTicket(m.detail.Ticket)
}

func (m *detailModel) setToast(msg string, err error) {
	if err != nil {
		m.toast = err.Error()
		m.toastErr = true
		return
	}
	m.toast = msg
	m.toastErr = false
}

// modalOpen reports whether keys are captured by a modal or picker.
func (m detailModel) modalOpen() bool {
	return m.resolve != nil || m.composer != nil || m.picker != nil
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.setToast("", msg.err)
			return m, nil
		}
		m.detail = msg.detail
		if m.commentCursor >= len(m.detail.Comments) {
			m.commentCursor = max(0, len(m.detail.Comments)-1)
		}
		m.refreshBody()
		return m, nil

	case ticketUpdatedMsg:
		if msg.id != m.id {
			return m, nil
		}
		if msg.resolve {
			m.busy = false
		}
		if msg.err != nil {
			if msg.resolve && m.resolve != nil {
				m.resolve.err = msg.err.Error()
				return m, nil
			}
			m.setToast("", msg.err)
			return m, nil
		}
		if msg.resolve {
			m.resolve = nil
		}
		if m.detail != nil && msg.ticket != nil {
			m.detail.Ticket = *msg.ticket
			m.refreshBody()
		}
		m.setToast(msg.message, nil)
		return m, m.load()

	case detailActionMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.setToast(msg.message, msg.err)
		if msg.err != nil {
			return m, nil
		}
		return m, m.load()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m detailModel) handleKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	switch {
	case m.picker != nil:
		return m.handlePickerKey(msg)
	case m.resolve != nil:
		return m.handleResolveKey(msg)
	case m.composer != nil:
		return m.handleComposerKey(msg)
	}
	if m.detail == nil {
		return m, nil
	}
	m.toast = ""
	keys := m.Keys()
	t := m.detail.Ticket

	switch {
	case key.Matches(msg, keys.NextTab):
		m.tab = (m.tab + 1) % detailTab(len(tabNames))
		m.viewport.GotoTop()
		m.refreshBody()
	case key.Matches(msg, keys.PrevTab):
		m.tab = (m.tab + detailTab(len(tabNames)) - 1) % detailTab(len(tabNames))
		m.viewport.GotoTop()
		m.refreshBody()
	case key.Matches(msg, keys.Up):
		if m.tab == tabComments {
			m.moveCommentCursor(m.commentCursor - 1)
		} else {
			m.viewport.LineUp(1)
		}
	case key.Matches(msg, keys.Down):
		if m.tab == tabComments {
			m.moveCommentCursor(m.commentCursor + 1)
		} else {
			m.viewport.LineDown(1)
		}
	case key.Matches(msg, keys.PageUp):
		m.viewport.HalfViewUp()
	case key.Matches(msg, keys.PageDown):
		m.viewport.HalfViewDown()
	case key.Matches(msg, keys.Home):
		if m.tab == tabComments {
			m.moveCommentCursor(0)
		} else {
			m.viewport.GotoTop()
		}
	case key.Matches(msg, keys.End):
		if m.tab == tabComments {
			m.moveCommentCursor(len(m.detail.Comments) - 1)
		} else {
			m.viewport.GotoBottom()
		}
	case key.Matches(msg, keys.Refresh):
		m.loading = true
		return m, m.load()

	case key.Matches(msg, keys.Resolve):
		// Disabled bindings never match, so resolved tickets end up here
		// only through a stale key map.
		if ticket.CanResolve(t) {
			r := NewResolveModal(t, ticket.ResolveRequest{})
			m.resolve = &r
		}
	case key.Matches(msg, keys.Pin):
		if c, ok := m.selectedComment(); ok && ticket.CanResolve(t) {
			r := NewResolveModal(t, ticket.PinResolution(c))
			m.resolve = &r
		}
	case key.Matches(msg, keys.Comment):
		c := NewCommentComposer(t.ID)
		m.composer = &c
	case key.Matches(msg, keys.Visibility):
		if c, ok := m.selectedComment(); ok {
			return m, m.toggleVisibility(c)
		}
	case key.Matches(msg, keys.Invoice):
		return m, m.generateInvoice()

	case key.Matches(msg, keys.Status):
		m.openPicker("Set status", pickStatus, statusOptions(t))
	case key.Matches(msg, keys.Priority):
		m.openPicker("Set priority", pickPriority, priorityOptions())
	case key.Matches(msg, keys.Assign):
		m.openPicker("Assign tech", pickAssign, techOptions(m.detail.Techs))
	case key.Matches(msg, keys.Contact):
		m.openPicker("Add contact", pickContact, contactOptions(m.detail.Contacts, ticket.ContactIDs(t)))
	case key.Matches(msg, keys.Asset):
		m.openPicker("Add asset", pickAsset, assetOptions(m.detail.Assets, ticket.AssetIDs(t)))
	case key.Matches(msg, keys.Article):
		m.openPicker("Link article", pickArticle, articleOptions(m.detail.Articles, ticket.ArticleIDs(t)))
	case key.Matches(msg, keys.Milestone):
		m.openPicker("Set milestone", pickMilestone, milestoneOptions(m.detail.Milestones))
	}
	return m, nil
}

func (m *detailModel) moveCommentCursor(i int) {
	m.commentCursor = max(0, min(len(m.detail.Comments)-1, i))
	m.refreshBody()
}

func (m detailModel) selectedComment() (model.Comment, bool) {
	if m.tab != tabComments || m.detail == nil || len(m.detail.Comments) == 0 {
		return model.Comment{}, false
	}
	return m.detail.Comments[m.commentCursor], true
}

func (m *detailModel) openPicker(title, field string, opts []SelectOption) {
	p := NewSearchableSelect(title, field, opts)
	m.picker = &p
}

func (m detailModel) handleResolveKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch m.resolve.Update(msg) {
	case modalCancel:
		m.resolve = nil
	case modalSubmit:
		m.busy = true
		t := m.detail.Ticket
		req := m.resolve.Request()
		return m, func() tea.Msg {
			updated, err := m.svc.Resolve(m.ctx, t, req)
			return ticketUpdatedMsg{id: t.ID, ticket: updated, message: fmt.Sprintf("Resolved #%d", t.ID), err: err, resolve: true}
		}
	}
	return m, nil
}

func (m detailModel) handleComposerKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	if m.composer.WantsMention(msg) && len(m.detail.Articles) > 0 {
		m.openPicker("Mention article", pickMention, articleOptions(m.detail.Articles, nil))
		return m, nil
	}
	switch m.composer.Update(msg) {
	case modalCancel:
		m.composer = nil
	case modalSubmit:
		t := m.detail.Ticket
		body := m.composer.Value()
		vis := m.composer.Visibility
		m.composer = nil
		return m, func() tea.Msg {
			if _, err := m.svc.Comment(m.ctx, t.ID, body, vis); err != nil {
				return detailActionMsg{id: t.ID, err: err}
			}
			if _, err := m.svc.LinkMentionedArticles(m.ctx, t, body); err != nil {
				return detailActionMsg{id: t.ID, message: "Comment posted", err: err}
			}
			return detailActionMsg{id: t.ID, message: fmt.Sprintf("Posted %s comment", vis)}
		}
	}
	return m, nil
}

func (m detailModel) handlePickerKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	field := m.picker.Field
	switch m.picker.Update(msg) {
	case selectCanceled:
		m.picker = nil
		if field == pickMention && m.composer != nil {
			m.composer.InsertMention("@")
		}
	case selectChosen:
		opt, _ := m.picker.Selected()
		m.picker = nil
		return m.applyPick(field, opt)
	}
	return m, nil
}

func (m detailModel) applyPick(field string, opt SelectOption) (detailModel, tea.Cmd) {
	t := m.detail.Ticket
	var update model.TicketUpdate
	var label string

	switch field {
	case pickMention:
		if m.composer != nil {
			m.composer.InsertMention(textedit.ArticleMention(opt.Label, opt.ID))
		}
		return m, nil
	case pickStatus:
		s := model.TicketStatus(opt.Value)
		update.Status = &s
		label = "status " + opt.Value
	case pickPriority:
		p := model.Priority(opt.Value)
		update.Priority = &p
		label = "priority " + opt.Value
	case pickAssign:
		update = ticket.Assign(opt.ID)
		label = "assigned " + opt.Label
	case pickContact:
		update = ticket.LinkContact(t, opt.ID)
		label = "added " + opt.Label
	case pickAsset:
		update = ticket.LinkAsset(t, opt.ID)
		label = "added " + opt.Label
	case pickArticle:
		update = ticket.LinkArticle(t, opt.ID)
		label = "linked " + opt.Label
	case pickMilestone:
		update = ticket.SetMilestone(opt.ID)
		label = "milestone " + opt.Label
	default:
		return m, nil
	}
	return m, func() tea.Msg {
		updated, err := m.svc.Update(m.ctx, t.ID, update)
		return ticketUpdatedMsg{id: t.ID, ticket: updated, message: fmt.Sprintf("#%d %s", t.ID, label), err: err}
	}
}

func (m detailModel) toggleVisibility(c model.Comment) tea.Cmd {
	id := m.id
	return func() tea.Msg {
		updated, err := m.svc.ToggleVisibility(m.ctx, c)
		if err != nil {
			return detailActionMsg{id: id, err: err}
		}
		return detailActionMsg{id: id, message: fmt.Sprintf("Comment is now %s", updated.Visibility)}
	}
}

func (m detailModel) generateInvoice() tea.Cmd {
	d := m.detail
	return func() tea.Msg {
		inv, err := m.svc.GenerateInvoice(m.ctx, d)
		if err != nil {
			return detailActionMsg{id: d.Ticket.ID, err: err}
		}
		return detailActionMsg{id: d.Ticket.ID, message: fmt.Sprintf("Invoice %s created (%s)", inv.Number, money(inv.Total))}
	}
}

// Picker options.

func statusOptions(t model.Ticket) []SelectOption {
	var opts []SelectOption
	for _, s := range model.TicketStatuses {
		// Resolving goes through the resolve modal only.
		if s == model.TicketStatusResolved || s == t.Status {
			continue
		}
		opts = append(opts, SelectOption{Label: string(s), Value: string(s)})
	}
	return opts
}

func priorityOptions() []SelectOption {
	opts := make([]SelectOption, len(model.Priorities))
	for i, p := range model.Priorities {
		opts[i] = SelectOption{Label: string(p), Value: string(p)}
	}
	return opts
}

func techOptions(techs []model.Tech) []SelectOption {
	opts := make([]SelectOption, len(techs))
	for i, t := range techs {
		opts[i] = SelectOption{Label: t.Name, Detail: t.Email, ID: t.ID}
	}
	return opts
}

func contactOptions(contacts []model.Contact, linked []int64) []SelectOption {
	var opts []SelectOption
	for _, c := range contacts {
		if containsID(linked, c.ID) {
			continue
		}
		opts = append(opts, SelectOption{Label: c.Name, Detail: c.Email, ID: c.ID})
	}
	return opts
}

func assetOptions(assets []model.Asset, linked []int64) []SelectOption {
	var opts []SelectOption
	for _, a := range assets {
		if containsID(linked, a.ID) {
			continue
		}
		opts = append(opts, SelectOption{Label: a.Name, Detail: a.AssetType, ID: a.ID})
	}
	return opts
}

func articleOptions(articles []model.Article, linked []int64) []SelectOption {
	var opts []SelectOption
	for _, a := range articles {
		if containsID(linked, a.ID) {
			continue
		}
		opts = append(opts, SelectOption{Label: a.Title, Detail: fmt.Sprintf("KB-%d", a.ID), ID: a.ID})
	}
	return opts
}

func milestoneOptions(ms []model.Milestone) []SelectOption {
	opts := make([]SelectOption, len(ms))
	for i, x := range ms {
		opts[i] = SelectOption{Label: x.Name, Detail: string(x.Status), ID: x.ID}
	}
	return opts
}

func containsID(ids []int64, id int64) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func (m detailModel) View() string {
	theme := m.theme
	width := max(40, m.width)
	if m.detail == nil {
		if m.loading {
			return theme.faint().Render(fmt.Sprintf("Loading ticket #%d…", m.id))
		}
		return theme.errorStyle().Render(m.toast)
	}

	switch {
	case m.picker != nil:
		return m.overlay(m.picker.View(theme, min(width, 70), max(5, m.height-10)))
	case m.resolve != nil:
		v := m.resolve.View(theme, width)
		if m.busy {
			v += "\n" + theme.faint().Render("resolving…")
		}
		return m.overlay(v)
	case m.composer != nil:
		return m.overlay(m.composer.View(theme, width))
	}

	t := m.detail.Ticket
	var b strings.Builder
	b.WriteString(theme.header().Render(fmt.Sprintf("#%d %s", t.ID, t.Subject)))
	b.WriteString("  ")
	b.WriteString(theme.StatusBadge(string(t.Status)))
	b.WriteString("\n")

	var tabs []string
	for i, name := range tabNames {
		if detailTab(i) == m.tab {
			tabs = append(tabs, theme.selected().Render(" "+name+" "))
		} else {
			tabs = append(tabs, theme.faint().Render(" "+name+" "))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	b.WriteString("\n")
	if m.toast != "" {
		if m.toastErr {
			b.WriteString(theme.errorStyle().Render(m.toast))
		} else {
			b.WriteString(theme.success().Render(m.toast))
		}
	}
	b.WriteString("\n")
	k := m.Keys()
	var contextual []key.Binding
	switch m.tab {
	case tabComments:
		contextual = []key.Binding{k.Comment, k.Visibility, k.Pin}
	case tabBilling:
		contextual = []key.Binding{k.Invoice}
	default:
		contextual = []key.Binding{k.Status, k.Priority, k.Assign, k.Contact, k.Asset, k.Article, k.Milestone}
	}
	bindings := append([]key.Binding{k.NextTab, k.Resolve}, contextual...)
	bindings = append(bindings, k.Refresh, k.Back)
	b.WriteString(theme.help().Render(helpLine(bindings...)))
	return b.String()
}

func (m detailModel) overlay(box string) string {
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
