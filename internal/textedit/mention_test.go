package textedit

import (
	"reflect"
	"testing"
)

func TestArticleMention(t *testing.T) {
	got := ArticleMention("Reset [VPN] token", 42)
	if got != "[Reset (VPN) token](kb:42)" {
		t.Errorf("ArticleMention = %q", got)
	}
}

func TestMentionedArticles(t *testing.T) {
	text := "See [A](kb:3) and [B](kb:11), also [A again](kb:3) and [web](https://x.test)."
	if got := MentionedArticles(text); !reflect.DeepEqual(got, []int64{3, 11}) {
		t.Errorf("MentionedArticles = %v, want [3 11]", got)
	}
	if got := MentionedArticles("nothing here"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		sel        Selection
		ins        string
		wantText   string
		wantCursor int
	}{
		{"at cursor", "ab", Selection{1, 1}, "X", "aXb", 2},
		{"replace selection", "hello world", Selection{6, 11}, "there", "hello there", 11},
		{"at end", "ab", Selection{2, 2}, "cd", "abcd", 4},
		{"unicode", "día", Selection{1, 2}, "ü", "düa", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, cursor := Insert(tt.text, tt.sel, tt.ins)
			if text != tt.wantText || cursor != tt.wantCursor {
				t.Errorf("Insert = (%q, %d), want (%q, %d)", text, cursor, tt.wantText, tt.wantCursor)
			}
		})
	}
}
