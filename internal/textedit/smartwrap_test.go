package textedit

import "testing"

func TestSmartWrap(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		sel      Selection
		key      rune
		wantOK   bool
		wantText string
		wantSel  Selection
	}{
		{"parens", "call foo now", Selection{5, 8}, '(', true, "call (foo) now", Selection{6, 9}},
		{"bold", "make this bold", Selection{10, 14}, '*', true, "make this *bold*", Selection{11, 15}},
		{"backtick", "run go test", Selection{4, 11}, '`', true, "run `go test`", Selection{5, 12}},
		{"quote", "say hi", Selection{4, 6}, '"', true, `say "hi"`, Selection{5, 7}},
		{"brackets", "a b", Selection{0, 3}, '[', true, "[a b]", Selection{1, 4}},
		{"reversed selection", "abc", Selection{3, 1}, '{', true, "a{bc}", Selection{2, 4}},
		{"unicode", "héllo wörld", Selection{6, 11}, '_', true, "héllo _wörld_", Selection{7, 12}},
		{"empty selection", "abc", Selection{1, 1}, '(', false, "", Selection{}},
		{"not a wrap key", "abc", Selection{0, 3}, 'x', false, "", Selection{}},
		{"closing char is not a key", "abc", Selection{0, 3}, ')', false, "", Selection{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SmartWrap(tt.text, tt.sel, tt.key)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Text != tt.wantText {
				t.Errorf("text = %q, want %q", got.Text, tt.wantText)
			}
			if got.Selection != tt.wantSel {
				t.Errorf("selection = %+v, want %+v", got.Selection, tt.wantSel)
			}
		})
	}
}

func TestSelection_Normalize(t *testing.T) {
	got := Selection{Start: 10, End: -2}.Normalize(5)
	if got != (Selection{Start: 0, End: 5}) {
		t.Errorf("Normalize = %+v, want {0 5}", got)
	}
}
