package richtext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var spaceRun = regexp.MustCompile(`\s+`)

// HTMLToMarkdown converts an HTML article body to markdown so it can go
// through the same terminal renderer as markdown articles.
func HTMLToMarkdown(src string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	var c htmlConverter
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	c.children(root)
	return strings.TrimSpace(c.b.String()), nil
}

// HTMLToText renders an HTML body as wrapped, unstyled text.
func HTMLToText(src string, width int) (string, error) {
	md, err := HTMLToMarkdown(src)
	if err != nil {
		return "", err
	}
	return Plain(md, width), nil
}

type htmlConverter struct {
	b strings.Builder
}

func (c *htmlConverter) children(s *goquery.Selection) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		c.node(child)
	})
}

// block ends the current paragraph.
func (c *htmlConverter) block() {
	out := c.b.String()
	if out == "" || strings.HasSuffix(out, "\n\n") {
		return
	}
	if strings.HasSuffix(out, "\n") {
		c.b.WriteString("\n")
		return
	}
	c.b.WriteString("\n\n")
}

func (c *htmlConverter) atLineStart() bool {
	out := c.b.String()
	return out == "" || strings.HasSuffix(out, "\n")
}

func (c *htmlConverter) inline(s *goquery.Selection) string {
	var sub htmlConverter
	sub.children(s)
	return strings.TrimSpace(sub.b.String())
}

func (c *htmlConverter) node(s *goquery.Selection) {
	name := goquery.NodeName(s)
	switch name {
	case "#text":
		t := spaceRun.ReplaceAllString(s.Text(), " ")
		if c.atLineStart() {
			t = strings.TrimLeft(t, " ")
		}
		c.b.WriteString(t)
	case "#comment", "script", "style", "head", "title":
	case "h1", "h2", "h3", "h4", "h5", "h6":
		c.block()
		c.b.WriteString(strings.Repeat("#", int(name[1]-'0')) + " " + c.inline(s))
		c.block()
	case "p", "div", "section", "article", "header", "footer", "main":
		c.block()
		c.children(s)
		c.block()
	case "br":
		c.b.WriteString("  \n")
	case "strong", "b":
		c.wrap(s, "**")
	case "em", "i":
		c.wrap(s, "*")
	case "del", "s", "strike":
		c.wrap(s, "~~")
	case "code":
		c.b.WriteString("`" + s.Text() + "`")
	case "pre":
		lang := ""
		if class, ok := s.Find("code").Attr("class"); ok {
			for _, cls := range strings.Fields(class) {
				if l, found := strings.CutPrefix(cls, "language-"); found {
					lang = l
				}
			}
		}
		c.block()
		c.b.WriteString("```" + lang + "\n" + strings.TrimRight(s.Text(), "\n") + "\n```")
		c.block()
	case "a":
		label := c.inline(s)
		href, ok := s.Attr("href")
		if !ok || href == "" {
			c.b.WriteString(label)
			return
		}
		if label == "" {
			label = href
		}
		c.b.WriteString("[" + label + "](" + href + ")")
	case "img":
		alt, _ := s.Attr("alt")
		src, _ := s.Attr("src")
		c.b.WriteString("![" + alt + "](" + src + ")")
	case "ul", "ol":
		c.block()
		c.list(s, name == "ol")
		c.block()
	case "blockquote":
		c.block()
		for _, line := range strings.Split(c.inline(s), "\n") {
			c.b.WriteString("> " + line + "\n")
		}
		c.block()
	case "hr":
		c.block()
		c.b.WriteString("---")
		c.block()
	default:
		c.children(s)
	}
}

func (c *htmlConverter) wrap(s *goquery.Selection, marker string) {
	inner := c.inline(s)
	if inner == "" {
		return
	}
	c.b.WriteString(marker + inner + marker)
}

func (c *htmlConverter) list(s *goquery.Selection, ordered bool) {
	s.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", i+1)
		}
		indent := strings.Repeat(" ", len(marker))
		body := strings.TrimSpace(c.inline(li))
		for j, line := range strings.Split(body, "\n") {
			if j == 0 {
				c.b.WriteString(marker + line + "\n")
				continue
			}
			if line == "" {
				continue
			}
			c.b.WriteString(indent + line + "\n")
		}
	})
}
