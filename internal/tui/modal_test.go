package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/baiirun/mspdesk/internal/model"
	"github.com/baiirun/mspdesk/internal/ticket"
)

func TestResolveModal(t *testing.T) {
	tk := openTicket()

	m := NewResolveModal(tk, ticket.ResolveRequest{})
	if got := m.Update(keyOf(tea.KeyCtrlD)); got != modalNone {
		t.Errorf("blank submit = %v, want modalNone", got)
	}
	if m.Err() == "" {
		t.Error("blank submit should set an error")
	}

	m.Update(runes("x"))
	if m.Err() != "" {
		t.Error("typing should clear the error")
	}
	if got := m.Update(keyOf(tea.KeyCtrlD)); got != modalSubmit {
		t.Errorf("submit = %v, want modalSubmit", got)
	}
	if got := m.Update(keyOf(tea.KeyEsc)); got != modalCancel {
		t.Errorf("esc = %v, want modalCancel", got)
	}
}

func TestResolveModal_PinnedRequest(t *testing.T) {
	c := model.Comment{ID: 12, Body: "Rebooted the switch"}
	m := NewResolveModal(openTicket(), ticket.PinResolution(c))

	req := m.Request()
	if req.Resolution != "Rebooted the switch" {
		t.Errorf("resolution = %q", req.Resolution)
	}
	if req.CommentID == nil || *req.CommentID != 12 {
		t.Errorf("comment id = %v, want 12", req.CommentID)
	}
}

func TestCommentComposer(t *testing.T) {
	c := NewCommentComposer(42)
	if c.Visibility != model.VisibilityInternal {
		t.Errorf("default visibility = %s, want internal", c.Visibility)
	}
	c.Update(keyOf(tea.KeyTab))
	if c.Visibility != model.VisibilityPublic {
		t.Errorf("visibility after tab = %s, want public", c.Visibility)
	}

	if !c.WantsMention(runes("@")) {
		t.Error("@ with no selection should ask for a mention")
	}
	c.Update(runes("hi"))
	c.Update(keyOf(tea.KeyCtrlA))
	if c.WantsMention(runes("@")) {
		t.Error("@ over a selection should not open the picker")
	}

	empty := NewCommentComposer(42)
	if got := empty.Update(keyOf(tea.KeyCtrlD)); got != modalNone {
		t.Errorf("empty submit = %v, want modalNone", got)
	}
}
