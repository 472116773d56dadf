package tui

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/junegunn/fzf/src/util"
)

// SelectOption is one choice in a SearchableSelect.
type SelectOption struct {
	Label  string
	Detail string // shown faint after the label, not searched
	ID     int64
	Value  string
}

type selectMatch struct {
	index     int
	score     int
	positions []int
}

type selectAction int

const (
	selectNone selectAction = iota
	selectChosen
	selectCanceled
)

// SearchableSelect is a typeahead picker: typing narrows the options with
// a fuzzy match on the label, arrows move, enter picks, esc cancels.
type SearchableSelect struct {
	Title string
	Field string // what the selection mutates, e.g. "assign"

	options []SelectOption
	query   []rune
	matches []selectMatch
	cursor  int
	slab    *util.Slab
}

func NewSearchableSelect(title, field string, options []SelectOption) SearchableSelect {
	s := SearchableSelect{
		Title:   title,
		Field:   field,
		options: options,
		slab:    util.MakeSlab(100*1024, 2048),
	}
	s.filter()
	return s
}

func (s *SearchableSelect) filter() {
	s.matches = nil
	for i, opt := range s.options {
		r := fuzzyMatch(opt.Label, s.query, s.slab)
		if !r.Matched {
			continue
		}
		s.matches = append(s.matches, selectMatch{index: i, score: r.Score, positions: r.Positions})
	}
	if len(s.query) > 0 {
		sort.SliceStable(s.matches, func(a, b int) bool {
			return s.matches[a].score > s.matches[b].score
		})
	}
	if s.cursor >= len(s.matches) {
		s.cursor = max(0, len(s.matches)-1)
	}
}

// MoveUp and MoveDown wrap around.
func (s *SearchableSelect) MoveUp() {
	if len(s.matches) == 0 {
		return
	}
	s.cursor--
	if s.cursor < 0 {
		s.cursor = len(s.matches) - 1
	}
}

func (s *SearchableSelect) MoveDown() {
	if len(s.matches) == 0 {
		return
	}
	s.cursor++
	if s.cursor >= len(s.matches) {
		s.cursor = 0
	}
}

// Selected returns the option under the cursor.
func (s SearchableSelect) Selected() (SelectOption, bool) {
	if len(s.matches) == 0 {
		return SelectOption{}, false
	}
	return s.options[s.matches[s.cursor].index], true
}

func (s SearchableSelect) Query() string {
	return string(s.query)
}

// Visible returns the labels currently matching the query, best first.
func (s SearchableSelect) Visible() []string {
	out := make([]string, len(s.matches))
	for i, m := range s.matches {
		out[i] = s.options[m.index].Label
	}
	return out
}

func (s *SearchableSelect) Update(msg tea.KeyMsg) selectAction {
	switch msg.Type {
	case tea.KeyEsc:
		return selectCanceled
	case tea.KeyEnter:
		if len(s.matches) > 0 {
			return selectChosen
		}
	case tea.KeyUp, tea.KeyCtrlP:
		s.MoveUp()
	case tea.KeyDown, tea.KeyCtrlN:
		s.MoveDown()
	case tea.KeyBackspace:
		if len(s.query) > 0 {
			s.query = s.query[:len(s.query)-1]
			s.cursor = 0
			s.filter()
		}
	case tea.KeyRunes, tea.KeySpace:
		s.query = append(s.query, msg.Runes...)
		if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
			s.query = append(s.query, ' ')
		}
		s.cursor = 0
		s.filter()
	}
	return selectNone
}

// View renders the picker as a bordered box at most rows options tall.
func (s SearchableSelect) View(theme Theme, width, rows int) string {
	inner := max(20, width-4)
	var b strings.Builder
	b.WriteString(theme.header().Render(s.Title))
	b.WriteString("\n")
	b.WriteString(theme.faint().Render("› ") + string(s.query) + lipgloss.NewStyle().Reverse(true).Render(" "))
	b.WriteString("\n\n")

	if len(s.matches) == 0 {
		b.WriteString(theme.faint().Render("no matches"))
	}

	start := 0
	if s.cursor >= rows {
		start = s.cursor - rows + 1
	}
	end := min(start+rows, len(s.matches))
	hl := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	for i := start; i < end; i++ {
		m := s.matches[i]
		opt := s.options[m.index]
		line := highlightRunes(opt.Label, m.positions, hl)
		if opt.Detail != "" {
			line += " " + theme.faint().Render(opt.Detail)
		}
		line = ansi.Truncate(line, inner-2, "…")
		if i == s.cursor {
			line = theme.selected().Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Width(inner).
		Render(b.String())
}

func highlightRunes(text string, positions []int, style lipgloss.Style) string {
	if len(positions) == 0 {
		return text
	}
	hit := make(map[int]bool, len(positions))
	for _, p := range positions {
		hit[p] = true
	}
	var b strings.Builder
	for i, r := range []rune(text) {
		if hit[i] {
			b.WriteString(style.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
