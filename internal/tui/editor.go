package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/baiirun/mspdesk/internal/textedit"
)

// Editor is a multi-line rune buffer with a cursor and an optional
// selection. The selection runs between anchor and cursor; anchor is -1
// when nothing is selected. Typing a wrap character over a selection
// smart-wraps it instead of replacing it.
type Editor struct {
	text   []rune
	cursor int
	anchor int
}

func NewEditor(initial string) Editor {
	r := []rune(initial)
	return Editor{text: r, cursor: len(r), anchor: -1}
}

func (e Editor) Value() string {
	return string(e.text)
}

// Selection returns the selected range, or an empty selection at the
// cursor.
func (e Editor) Selection() textedit.Selection {
	if e.anchor < 0 {
		return textedit.Selection{Start: e.cursor, End: e.cursor}
	}
	return textedit.Selection{Start: e.anchor, End: e.cursor}.Normalize(len(e.text))
}

// SetSelection selects [sel.Start, sel.End) with the cursor at the end.
func (e *Editor) SetSelection(sel textedit.Selection) {
	sel = sel.Normalize(len(e.text))
	e.anchor = sel.Start
	e.cursor = sel.End
	if sel.Empty() {
		e.anchor = -1
	}
}

// InsertText replaces the selection (if any) with s.
func (e *Editor) InsertText(s string) {
	text, pos := textedit.Insert(string(e.text), e.Selection(), s)
	e.text = []rune(text)
	e.cursor = pos
	e.anchor = -1
}

func (e *Editor) typeRunes(runes []rune) {
	if len(runes) == 1 && textedit.IsWrapKey(runes[0]) && !e.Selection().Empty() {
		if edit, ok := textedit.SmartWrap(string(e.text), e.Selection(), runes[0]); ok {
			e.text = []rune(edit.Text)
			e.SetSelection(edit.Selection)
			return
		}
	}
	e.InsertText(string(runes))
}

func (e *Editor) moveTo(pos int, extend bool) {
	if extend {
		if e.anchor < 0 {
			e.anchor = e.cursor
		}
	} else {
		e.anchor = -1
	}
	e.cursor = max(0, min(pos, len(e.text)))
}

func (e *Editor) lineStart(pos int) int {
	for pos > 0 && e.text[pos-1] != '\n' {
		pos--
	}
	return pos
}

func (e *Editor) lineEnd(pos int) int {
	for pos < len(e.text) && e.text[pos] != '\n' {
		pos++
	}
	return pos
}

func (e *Editor) lineUp(extend bool) {
	start := e.lineStart(e.cursor)
	if start == 0 {
		e.moveTo(0, extend)
		return
	}
	col := e.cursor - start
	prevStart := e.lineStart(start - 1)
	e.moveTo(min(prevStart+col, start-1), extend)
}

func (e *Editor) lineDown(extend bool) {
	end := e.lineEnd(e.cursor)
	if end == len(e.text) {
		e.moveTo(end, extend)
		return
	}
	col := e.cursor - e.lineStart(e.cursor)
	next := end + 1
	e.moveTo(min(next+col, e.lineEnd(next)), extend)
}

func (e *Editor) deleteBack() {
	if sel := e.Selection(); !sel.Empty() {
		e.InsertText("")
		return
	}
	if e.cursor == 0 {
		return
	}
	e.text = append(e.text[:e.cursor-1], e.text[e.cursor:]...)
	e.cursor--
}

func (e *Editor) deleteForward() {
	if sel := e.Selection(); !sel.Empty() {
		e.InsertText("")
		return
	}
	if e.cursor >= len(e.text) {
		return
	}
	e.text = append(e.text[:e.cursor], e.text[e.cursor+1:]...)
}

// Update applies one key press. Keys the editor does not handle are
// ignored so the owning modal can act on them first.
func (e *Editor) Update(msg tea.KeyMsg) {
	sel := e.Selection()
	switch msg.Type {
	case tea.KeyRunes:
		e.typeRunes(msg.Runes)
	case tea.KeySpace:
		e.typeRunes([]rune{' '})
	case tea.KeyEnter:
		e.InsertText("\n")
	case tea.KeyBackspace:
		e.deleteBack()
	case tea.KeyDelete:
		e.deleteForward()

	case tea.KeyLeft:
		if !sel.Empty() {
			e.moveTo(sel.Start, false)
		} else {
			e.moveTo(e.cursor-1, false)
		}
	case tea.KeyRight:
		if !sel.Empty() {
			e.moveTo(sel.End, false)
		} else {
			e.moveTo(e.cursor+1, false)
		}
	case tea.KeyShiftLeft:
		e.moveTo(e.cursor-1, true)
	case tea.KeyShiftRight:
		e.moveTo(e.cursor+1, true)
	case tea.KeyUp:
		e.lineUp(false)
	case tea.KeyDown:
		e.lineDown(false)
	case tea.KeyShiftUp:
		e.lineUp(true)
	case tea.KeyShiftDown:
		e.lineDown(true)
	case tea.KeyHome:
		e.moveTo(e.lineStart(e.cursor), false)
	case tea.KeyEnd, tea.KeyCtrlE:
		e.moveTo(e.lineEnd(e.cursor), false)
	case tea.KeyShiftHome:
		e.moveTo(e.lineStart(e.cursor), true)
	case tea.KeyShiftEnd:
		e.moveTo(e.lineEnd(e.cursor), true)
	case tea.KeyCtrlA:
		e.anchor = 0
		e.cursor = len(e.text)
		if len(e.text) == 0 {
			e.anchor = -1
		}
	}
}

// View renders the buffer hard-wrapped to width with the selection and
// cursor drawn in reverse video.
func (e Editor) View(theme Theme, width int) string {
	sel := e.Selection()
	selStyle := lipgloss.NewStyle().Background(theme.SelectedBackground).Foreground(theme.SelectedForeground)
	cursorStyle := lipgloss.NewStyle().Reverse(true)

	var lines []string
	var line strings.Builder
	for i := 0; i <= len(e.text); i++ {
		atCursor := i == e.cursor
		if i == len(e.text) || e.text[i] == '\n' {
			if atCursor {
				line.WriteString(cursorStyle.Render(" "))
			}
			lines = append(lines, line.String())
			line.Reset()
			continue
		}
		ch := string(e.text[i])
		switch {
		case atCursor:
			line.WriteString(cursorStyle.Render(ch))
		case i >= sel.Start && i < sel.End:
			line.WriteString(selStyle.Render(ch))
		default:
			line.WriteString(ch)
		}
	}
	out := strings.Join(lines, "\n")
	if width > 0 {
		out = ansi.Hardwrap(out, width, true)
	}
	return out
}
