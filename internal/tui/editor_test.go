package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/baiirun/mspdesk/internal/textedit"
)

func press(e *Editor, keys ...tea.KeyMsg) {
	for _, k := range keys {
		e.Update(k)
	}
}

func repeat(k tea.KeyType, n int) []tea.KeyMsg {
	out := make([]tea.KeyMsg, n)
	for i := range out {
		out[i] = keyOf(k)
	}
	return out
}

func TestEditor_SmartWrapSelection(t *testing.T) {
	e := NewEditor("fix the printer")
	press(&e, repeat(tea.KeyShiftLeft, 7)...)

	if got := e.Selection(); got != (textedit.Selection{Start: 8, End: 15}) {
		t.Fatalf("selection = %+v", got)
	}

	press(&e, runes("*"))
	if e.Value() != "fix the *printer*" {
		t.Errorf("value = %q", e.Value())
	}
	if got := e.Selection(); got != (textedit.Selection{Start: 9, End: 16}) {
		t.Errorf("selection after wrap = %+v, want {9 16}", got)
	}

	// Wrapping again nests the pair around the same text.
	press(&e, runes("*"))
	if e.Value() != "fix the **printer**" {
		t.Errorf("value = %q", e.Value())
	}
}

func TestEditor_TypingReplacesSelection(t *testing.T) {
	e := NewEditor("old text")
	press(&e, keyOf(tea.KeyCtrlA), runes("n"), runes("e"), runes("w"))
	if e.Value() != "new" {
		t.Errorf("value = %q, want new", e.Value())
	}
}

func TestEditor_NonWrapKeyWithoutSelectionInserts(t *testing.T) {
	e := NewEditor("call")
	press(&e, runes("("))
	if e.Value() != "call(" {
		t.Errorf("value = %q", e.Value())
	}
}

func TestEditor_BackspaceDeletesSelection(t *testing.T) {
	e := NewEditor("abcdef")
	press(&e, keyOf(tea.KeyLeft), keyOf(tea.KeyShiftLeft), keyOf(tea.KeyShiftLeft), keyOf(tea.KeyBackspace))
	if e.Value() != "abcf" {
		t.Errorf("value = %q, want abcf", e.Value())
	}
	if !e.Selection().Empty() {
		t.Error("selection not cleared")
	}
}

func TestEditor_LeftCollapsesSelection(t *testing.T) {
	e := NewEditor("abcdef")
	press(&e, keyOf(tea.KeyShiftLeft), keyOf(tea.KeyShiftLeft), keyOf(tea.KeyLeft))
	if got := e.Selection(); got != (textedit.Selection{Start: 4, End: 4}) {
		t.Errorf("selection = %+v, want collapsed at 4", got)
	}
}

func TestEditor_Multiline(t *testing.T) {
	e := NewEditor("")
	press(&e, runes("abc"), keyOf(tea.KeyEnter), runes("d"))
	if e.Value() != "abc\nd" {
		t.Fatalf("value = %q", e.Value())
	}
	press(&e, keyOf(tea.KeyUp))
	if e.cursor != 1 {
		t.Errorf("cursor after up = %d, want 1", e.cursor)
	}
	press(&e, keyOf(tea.KeyEnd), keyOf(tea.KeyDown))
	if e.cursor != len([]rune("abc\nd")) {
		t.Errorf("cursor after down = %d, want end", e.cursor)
	}
}

func TestEditor_InsertTextAtCursor(t *testing.T) {
	e := NewEditor("see ")
	e.InsertText("[VPN](kb:7)")
	if e.Value() != "see [VPN](kb:7)" {
		t.Errorf("value = %q", e.Value())
	}
}
