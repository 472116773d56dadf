package textedit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Article mentions are markdown links with a kb: target, e.g.
// [Reset VPN token](kb:42). They render as ordinary links and let the
// backend (and the console) find which articles a comment refers to.
var mentionPattern = regexp.MustCompile(`\]\(kb:(\d+)\)`)

// ArticleMention formats the link inserted for an article.
func ArticleMention(title string, id int64) string {
	title = strings.NewReplacer("[", "(", "]", ")").Replace(title)
	return fmt.Sprintf("[%s](kb:%d)", title, id)
}

// MentionedArticles returns the article ids mentioned in text, in order of
// first appearance.
func MentionedArticles(text string) []int64 {
	var ids []int64
	seen := map[int64]bool{}
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// Insert replaces the selection with s and returns the new text and the
// collapsed cursor position after the insertion.
func Insert(text string, sel Selection, s string) (string, int) {
	runes := []rune(text)
	sel = sel.Normalize(len(runes))
	ins := []rune(s)
	out := make([]rune, 0, len(runes)-(sel.End-sel.Start)+len(ins))
	out = append(out, runes[:sel.Start]...)
	out = append(out, ins...)
	out = append(out, runes[sel.End:]...)
	return string(out), sel.Start + len(ins)
}
