package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/baiirun/mspdesk/internal/model"
	"github.com/baiirun/mspdesk/internal/ticket"
)

type modalAction int

const (
	modalNone modalAction = iota
	modalSubmit
	modalCancel
)

// ResolveModal collects the resolution text. Ctrl+D submits, Esc cancels.
// Submitting blank text keeps the modal open with an error.
type ResolveModal struct {
	TicketID  int64
	CommentID *int64 // set when the text was pinned from a comment

	editor Editor
	err    string
}

func NewResolveModal(t model.Ticket, req ticket.ResolveRequest) ResolveModal {
	return ResolveModal{
		TicketID:  t.ID,
		CommentID: req.CommentID,
		editor:    NewEditor(req.Resolution),
	}
}

func (m ResolveModal) Value() string {
	return m.editor.Value()
}

// Err is the validation message shown under the editor, if any.
func (m ResolveModal) Err() string {
	return m.err
}

// Request is what gets sent to ticket.Service.Resolve.
func (m ResolveModal) Request() ticket.ResolveRequest {
	return ticket.ResolveRequest{Resolution: m.editor.Value(), CommentID: m.CommentID}
}

func (m *ResolveModal) Update(msg tea.KeyMsg) modalAction {
	switch msg.Type {
	case tea.KeyEsc:
		return modalCancel
	case tea.KeyCtrlD:
		if strings.TrimSpace(m.editor.Value()) == "" {
			m.err = "Resolution text is required"
			return modalNone
		}
		return modalSubmit
	}
	m.err = ""
	m.editor.Update(msg)
	return modalNone
}

func (m ResolveModal) View(theme Theme, width int) string {
	title := fmt.Sprintf("Resolve ticket #%d", m.TicketID)
	if m.CommentID != nil {
		title += theme.faint().Render(fmt.Sprintf("  (from comment #%d)", *m.CommentID))
	}
	footer := "ctrl+d resolve  esc cancel  shift+←/→ select"
	return renderModal(theme, width, title, m.editor.View(theme, modalInner(width)), m.err, footer)
}

// CommentComposer writes a new comment. Tab flips visibility; typing @
// with nothing selected asks the owner to open the article picker.
type CommentComposer struct {
	TicketID   int64
	Visibility model.Visibility

	editor Editor
	err    string
}

func NewCommentComposer(ticketID int64) CommentComposer {
	return CommentComposer{
		TicketID:   ticketID,
		Visibility: model.VisibilityInternal,
		editor:     NewEditor(""),
	}
}

func (c CommentComposer) Value() string {
	return c.editor.Value()
}

// InsertMention places an article link at the cursor.
func (c *CommentComposer) InsertMention(s string) {
	c.editor.InsertText(s)
}

// WantsMention reports whether msg should open the article picker rather
// than be typed.
func (c CommentComposer) WantsMention(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] == '@' &&
		c.editor.Selection().Empty()
}

func (c *CommentComposer) Update(msg tea.KeyMsg) modalAction {
	switch msg.Type {
	case tea.KeyEsc:
		return modalCancel
	case tea.KeyTab:
		c.Visibility = c.Visibility.Toggle()
		return modalNone
	case tea.KeyCtrlD:
		if strings.TrimSpace(c.editor.Value()) == "" {
			c.err = "Comment is empty"
			return modalNone
		}
		return modalSubmit
	}
	c.err = ""
	c.editor.Update(msg)
	return modalNone
}

func (c CommentComposer) View(theme Theme, width int) string {
	badge := lipgloss.NewStyle().Bold(true).Foreground(theme.SuccessText).Render("PUBLIC")
	if c.Visibility == model.VisibilityInternal {
		badge = lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Render("INTERNAL")
	}
	title := fmt.Sprintf("Comment on #%d  %s", c.TicketID, badge)
	footer := "ctrl+d post  tab visibility  @ mention article  esc cancel"
	return renderModal(theme, width, title, c.editor.View(theme, modalInner(width)), c.err, footer)
}

func modalInner(width int) int {
	return max(30, min(width-8, 90))
}

func renderModal(theme Theme, width int, title, body, errText, footer string) string {
	var b strings.Builder
	b.WriteString(theme.header().Render(title))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	if errText != "" {
		b.WriteString("\n")
		b.WriteString(theme.errorStyle().Render(errText))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.help().Render(footer))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		BorderBackground(theme.ModalBackground).
		Background(theme.ModalBackground).
		Padding(1, 2).
		Width(modalInner(width) + 4).
		Render(b.String())
}
