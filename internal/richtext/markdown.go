// Package richtext renders ticket descriptions, comments and knowledge
// base articles for the terminal.
package richtext

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	parserOnce sync.Once
	parser     goldmark.Markdown
)

func markdownParser() goldmark.Markdown {
	parserOnce.Do(func() {
		parser = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return parser
}

var (
	textColor    = lipgloss.Color("252")
	faintColor   = lipgloss.Color("241")
	headingColor = lipgloss.Color("39")
	codeColor    = lipgloss.Color("215")
	linkColor    = lipgloss.Color("75")
)

// Markdown renders src as styled terminal text. Paragraphs are wrapped
// to width; a width of zero or less disables wrapping.
func Markdown(src string, width int) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	source := []byte(src)
	doc := markdownParser().Parser().Parse(text.NewReader(source))

	// Output always lands in a bubbletea view or a terminal table, so
	// the profile is pinned rather than detected.
	lip := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.ANSI256))
	lip.SetColorProfile(termenv.ANSI256)

	w := &mdWriter{source: source, width: width, lip: lip}
	_ = ast.Walk(doc, w.walk)
	return strings.TrimRight(w.out.String(), "\n")
}

// Plain renders src and strips all styling.
func Plain(src string, width int) string {
	return ansi.Strip(Markdown(src, width))
}

// Render picks the renderer for an article or comment body by format.
// HTML that fails to parse is shown as-is.
func Render(format, body string, width int) string {
	if format == "html" {
		md, err := HTMLToMarkdown(body)
		if err != nil {
			return body
		}
		return Markdown(md, width)
	}
	return Markdown(body, width)
}

type listLevel struct {
	ordered bool
	next    int
	tight   bool
}

type mdWriter struct {
	source []byte
	width  int
	lip    *lipgloss.Renderer

	out      strings.Builder
	newlines int

	inline  strings.Builder
	prefix  []string
	pending string
	lists   []listLevel
	cells   []string

	bold, italic, strike int
}

func (w *mdWriter) style() lipgloss.Style {
	return w.lip.NewStyle()
}

func (w *mdWriter) linePrefix() string {
	return strings.Join(w.prefix, "")
}

func (w *mdWriter) write(s string) {
	if s == "" {
		return
	}
	w.out.WriteString(s)
	trimmed := strings.TrimRight(s, "\n")
	n := len(s) - len(trimmed)
	if trimmed == "" {
		w.newlines += n
	} else {
		w.newlines = n
	}
}

func (w *mdWriter) newline() {
	if w.out.Len() > 0 && w.newlines < 1 {
		w.write("\n")
	}
}

func (w *mdWriter) blankLine() {
	if w.out.Len() == 0 {
		return
	}
	for w.newlines < 2 {
		w.write("\n")
	}
}

func (w *mdWriter) tight() bool {
	return len(w.lists) > 0 && w.lists[len(w.lists)-1].tight
}

// lines writes content with the current prefix on every line. The first
// line takes a pending list marker instead, if one is set.
func (w *mdWriter) lines(content string) {
	prefix := w.linePrefix()
	for i, line := range strings.Split(content, "\n") {
		if i == 0 && w.pending != "" {
			w.write(w.pending)
			w.pending = ""
		} else {
			w.write(prefix)
		}
		w.write(line)
		w.write("\n")
	}
}

func (w *mdWriter) flush() {
	content := w.inline.String()
	w.inline.Reset()
	if content == "" {
		return
	}
	if w.width > 0 {
		avail := w.width - ansi.StringWidth(w.linePrefix())
		if avail < 10 {
			avail = 10
		}
		content = ansi.Wrap(content, avail, " ,.;-")
	}
	w.lines(content)
}

func (w *mdWriter) styled(s string) string {
	st := w.style().Foreground(textColor)
	if w.bold > 0 {
		st = st.Bold(true)
	}
	if w.italic > 0 {
		st = st.Italic(true)
	}
	if w.strike > 0 {
		st = st.Strikethrough(true)
	}
	return st.Render(s)
}

func (w *mdWriter) faint(s string) string {
	return w.style().Foreground(faintColor).Render(s)
}

func (w *mdWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Document:

	case *ast.Paragraph, *ast.TextBlock:
		if entering {
			w.inline.Reset()
			break
		}
		w.flush()
		if !w.tight() {
			w.blankLine()
		}

	case *ast.Heading:
		if entering {
			w.blankLine()
			title := strings.Repeat("#", node.Level) + " " + w.plain(node)
			w.lines(w.style().Bold(true).Foreground(headingColor).Render(title))
			w.blankLine()
		}
		return ast.WalkSkipChildren, nil

	case *ast.FencedCodeBlock:
		if entering {
			w.code(w.blockText(node), string(node.Language(w.source)))
		}
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		if entering {
			w.code(w.blockText(node), "")
		}
		return ast.WalkSkipChildren, nil

	case *ast.HTMLBlock:
		if entering {
			md, err := HTMLToMarkdown(w.blockText(node))
			if err == nil && strings.TrimSpace(md) != "" {
				w.lines(ansi.Strip(Markdown(md, 0)))
				w.blankLine()
			}
		}
		return ast.WalkSkipChildren, nil

	case *ast.Blockquote:
		if entering {
			w.prefix = append(w.prefix, w.faint("│ "))
		} else {
			w.prefix = w.prefix[:len(w.prefix)-1]
			w.blankLine()
		}

	case *ast.List:
		if entering {
			w.newline()
			w.lists = append(w.lists, listLevel{ordered: node.IsOrdered(), next: node.Start, tight: node.IsTight})
		} else {
			w.lists = w.lists[:len(w.lists)-1]
			if len(w.lists) == 0 {
				w.blankLine()
			}
		}

	case *ast.ListItem:
		w.listItem(entering)

	case *ast.ThematicBreak:
		if entering {
			width := 40
			if w.width > 0 && w.width < width {
				width = w.width
			}
			w.blankLine()
			w.lines(w.faint(strings.Repeat("─", width)))
			w.blankLine()
		}

	case *extast.Table:
		if !entering {
			w.blankLine()
		}

	case *extast.TableHeader, *extast.TableRow:
		if entering {
			w.cells = w.cells[:0]
			break
		}
		row := strings.Join(w.cells, w.faint(" │ "))
		if _, header := node.(*extast.TableHeader); header {
			row = w.style().Bold(true).Render(ansi.Strip(row))
		}
		w.lines(row)

	case *extast.TableCell:
		if entering {
			w.cells = append(w.cells, w.styled(w.plain(node)))
		}
		return ast.WalkSkipChildren, nil

	case *extast.TaskCheckBox:
		if entering {
			box := "[ ]"
			if node.IsChecked {
				box = "[x]"
			}
			w.inline.WriteString(w.faint(box))
		}

	case *ast.Text:
		if entering {
			w.inline.WriteString(w.styled(string(node.Segment.Value(w.source))))
			switch {
			case node.HardLineBreak():
				w.inline.WriteString("\n")
			case node.SoftLineBreak():
				w.inline.WriteString(" ")
			}
		}

	case *ast.String:
		if entering {
			w.inline.WriteString(w.styled(string(node.Value)))
		}

	case *ast.Emphasis:
		delta := 1
		if !entering {
			delta = -1
		}
		if node.Level >= 2 {
			w.bold += delta
		} else {
			w.italic += delta
		}

	case *extast.Strikethrough:
		if entering {
			w.strike++
		} else {
			w.strike--
		}

	case *ast.CodeSpan:
		if entering {
			w.inline.WriteString(w.style().Foreground(codeColor).Render(w.plain(node)))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Link:
		if entering {
			w.link(w.plain(node), string(node.Destination))
		}
		return ast.WalkSkipChildren, nil

	case *ast.AutoLink:
		if entering {
			url := string(node.URL(w.source))
			w.inline.WriteString(w.style().Foreground(linkColor).Underline(true).Render(url))
		}

	case *ast.Image:
		if entering {
			w.inline.WriteString(w.faint("[image: " + w.plain(node) + "]"))
		}
		return ast.WalkSkipChildren, nil

	case *ast.RawHTML:
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (w *mdWriter) listItem(entering bool) {
	if len(w.lists) == 0 {
		return
	}
	level := &w.lists[len(w.lists)-1]
	if !entering {
		w.prefix = w.prefix[:len(w.prefix)-1]
		level.next++
		return
	}
	marker := "• "
	if level.ordered {
		marker = fmt.Sprintf("%d. ", level.next)
	}
	w.pending = w.linePrefix() + w.faint(marker)
	w.prefix = append(w.prefix, strings.Repeat(" ", ansi.StringWidth(marker)))
}

// link renders knowledge base references by title and id so embedded
// articles stay readable without the target URL.
func (w *mdWriter) link(label, dest string) {
	st := w.style().Foreground(linkColor)
	if id, ok := strings.CutPrefix(dest, "kb:"); ok {
		w.inline.WriteString(st.Bold(true).Render(label) + w.faint(" (KB-"+id+")"))
		return
	}
	w.inline.WriteString(st.Underline(true).Render(label))
	if dest != "" && dest != label {
		w.inline.WriteString(w.faint(" <" + dest + ">"))
	}
}

func (w *mdWriter) code(src, lang string) {
	src = strings.TrimRight(src, "\n")
	var highlighted string
	if lang != "" {
		var buf strings.Builder
		if err := quick.Highlight(&buf, src, lang, "terminal256", "monokai"); err == nil {
			highlighted = strings.TrimRight(buf.String(), "\n")
		}
	}
	if highlighted == "" {
		highlighted = w.faint(src)
	}
	w.newline()
	w.prefix = append(w.prefix, "    ")
	w.lines(highlighted)
	w.prefix = w.prefix[:len(w.prefix)-1]
	w.blankLine()
}

type linedNode interface {
	Lines() *text.Segments
}

func (w *mdWriter) blockText(n linedNode) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.source))
	}
	return b.String()
}

// plain collects the unstyled text beneath n.
func (w *mdWriter) plain(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(w.source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
