// Package textedit holds pure helpers for the console's text editors.
package textedit

// Selection is a half-open rune range [Start, End) within a text.
type Selection struct {
	Start int
	End   int
}

// Empty reports whether the selection covers no runes.
func (s Selection) Empty() bool {
	return s.End <= s.Start
}

// Normalize orders the bounds and clamps them to [0, length].
func (s Selection) Normalize(length int) Selection {
	if s.Start > s.End {
		s.Start, s.End = s.End, s.Start
	}
	s.Start = clamp(s.Start, 0, length)
	s.End = clamp(s.End, 0, length)
	return s
}

// Edit is the result of a smart-wrap: the new text and the selection to
// restore once it is displayed.
type Edit struct {
	Text      string
	Selection Selection
}

// wrapPairs maps an opening key to its closing character.
var wrapPairs = map[rune]rune{
	'(':  ')',
	'[':  ']',
	'{':  '}',
	'"':  '"',
	'\'': '\'',
	'`':  '`',
	'*':  '*',
	'_':  '_',
	'~':  '~',
}

// IsWrapKey reports whether key opens a wrap pair.
func IsWrapKey(key rune) bool {
	_, ok := wrapPairs[key]
	return ok
}

// SmartWrap wraps the selected text in the pair opened by key. It returns
// false, leaving the caller to insert the key normally, when the selection
// is empty or key is not a wrap character.
//
// The returned selection covers the original text inside the new pair, so
// both bounds move right by one rune.
func SmartWrap(text string, sel Selection, key rune) (Edit, bool) {
	closing, ok := wrapPairs[key]
	if !ok {
		return Edit{}, false
	}
	runes := []rune(text)
	sel = sel.Normalize(len(runes))
	if sel.Empty() {
		return Edit{}, false
	}

	out := make([]rune, 0, len(runes)+2)
	out = append(out, runes[:sel.Start]...)
	out = append(out, key)
	out = append(out, runes[sel.Start:sel.End]...)
	out = append(out, closing)
	out = append(out, runes[sel.End:]...)

	return Edit{
		Text:      string(out),
		Selection: Selection{Start: sel.Start + 1, End: sel.End + 1},
	}, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
