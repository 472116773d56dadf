package richtext

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestMarkdown_Empty(t *testing.T) {
	if got := Markdown("  \n", 80); got != "" {
		t.Errorf("Markdown(blank) = %q, want empty", got)
	}
}

func TestPlain(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"soft breaks reflow", "one\ntwo", "one two"},
		{"bullet list", "- a\n- b", "• a\n• b"},
		{"ordered list", "1. x\n2. y", "1. x\n2. y"},
		{"blockquote", "> quoted", "│ quoted"},
		{"kb link", "see [VPN setup](kb:12)", "see VPN setup (KB-12)"},
		{"web link", "[docs](https://example.com)", "docs <https://example.com>"},
		{"task list", "- [x] done", "• [x] done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Plain(tt.src, 80); got != tt.want {
				t.Errorf("Plain(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestMarkdown_Heading(t *testing.T) {
	got := Plain("# Printer offline\n\nCheck the spooler.", 80)
	if !strings.HasPrefix(got, "# Printer offline\n\n") {
		t.Errorf("heading not separated from body: %q", got)
	}
	if !strings.HasSuffix(got, "Check the spooler.") {
		t.Errorf("body missing: %q", got)
	}
}

func TestMarkdown_Wraps(t *testing.T) {
	got := Plain("alpha beta gamma delta epsilon", 12)
	lines := strings.Split(got, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %q", got)
	}
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > 12 {
			t.Errorf("line %q is %d wide", line, w)
		}
	}
}

func TestMarkdown_CodeBlock(t *testing.T) {
	got := Plain("```go\nfmt.Println(1)\n```", 80)
	if !strings.Contains(got, "    fmt.Println(1)") {
		t.Errorf("code block not indented: %q", got)
	}
}

func TestMarkdown_Table(t *testing.T) {
	got := Plain("| a | b |\n|---|---|\n| 1 | 2 |", 80)
	for _, want := range []string{"a │ b", "1 │ 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q: %q", want, got)
		}
	}
}

func TestMarkdown_Styled(t *testing.T) {
	got := Markdown("**bold**", 80)
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("expected ANSI styling, got %q", got)
	}
	if ansi.Strip(got) != "bold" {
		t.Errorf("stripped = %q, want bold", ansi.Strip(got))
	}
}
