package tui

import (
	"sort"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

var fuzzyInit sync.Once

type fuzzyResult struct {
	Matched   bool
	Score     int
	Positions []int // rune offsets of matched characters, ascending
}

// fuzzyMatch runs fzf's v2 matcher case-insensitively. An empty pattern
// matches everything with a zero score.
func fuzzyMatch(text string, pattern []rune, slab *util.Slab) fuzzyResult {
	if len(pattern) == 0 {
		return fuzzyResult{Matched: true}
	}
	fuzzyInit.Do(func() { algo.Init("default") })

	lowered := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, false, true, &chars, lowered, true, slab)
	if result.Start < 0 {
		return fuzzyResult{}
	}
	out := fuzzyResult{Matched: true, Score: result.Score}
	if positions != nil {
		out.Positions = append([]int(nil), (*positions)...)
		sort.Ints(out.Positions)
	}
	return out
}
