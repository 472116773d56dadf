package tui

import (
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func techPicker() SearchableSelect {
	return NewSearchableSelect("Assign tech", pickAssign, []SelectOption{
		{Label: "Alice Smith", ID: 1},
		{Label: "Bob Jones", ID: 2},
		{Label: "Carol White", ID: 3},
	})
}

func TestSearchableSelect_Filter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query keeps order", "", []string{"Alice Smith", "Bob Jones", "Carol White"}},
		{"initials", "bj", []string{"Bob Jones"}},
		{"case insensitive", "CAROL", []string{"Carol White"}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := techPicker()
			if tt.query != "" {
				s.Update(runes(tt.query))
			}
			if got := s.Visible(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Visible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchableSelect_Navigation(t *testing.T) {
	s := techPicker()

	s.MoveUp()
	if opt, _ := s.Selected(); opt.ID != 3 {
		t.Errorf("MoveUp from top should wrap to last, got %d", opt.ID)
	}
	s.MoveDown()
	if opt, _ := s.Selected(); opt.ID != 1 {
		t.Errorf("MoveDown from last should wrap to first, got %d", opt.ID)
	}
}

func TestSearchableSelect_Actions(t *testing.T) {
	s := techPicker()
	s.Update(runes("zzz"))
	if got := s.Update(keyOf(tea.KeyEnter)); got != selectNone {
		t.Errorf("enter with no matches = %v, want selectNone", got)
	}
	for range 3 {
		s.Update(keyOf(tea.KeyBackspace))
	}
	if s.Query() != "" || len(s.Visible()) != 3 {
		t.Errorf("backspace did not restore options: %q %v", s.Query(), s.Visible())
	}
	if got := s.Update(keyOf(tea.KeyEnter)); got != selectChosen {
		t.Errorf("enter = %v, want selectChosen", got)
	}
	if got := s.Update(keyOf(tea.KeyEsc)); got != selectCanceled {
		t.Errorf("esc = %v, want selectCanceled", got)
	}
}
