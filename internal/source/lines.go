package source

import (
	"sort"
	"unicode/utf8"

	"github.com/theirongolddev/greenlint/internal/model"
)

// LineIndex maps byte offsets to 1-indexed line/column positions. Build it
// once per file; lookups are a binary search.
type LineIndex struct {
	content string
	starts  []int
}

// NewLineIndex records the start offset of every line in content.
func NewLineIndex(content string) *LineIndex {
	starts := make([]int, 1, 64)
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{content: content, starts: starts}
}

// Lines returns the number of lines.
func (x *LineIndex) Lines() int { return len(x.starts) }

// Position converts a byte offset. Columns count runes, starting at 1.
func (x *LineIndex) Position(offset int) model.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(x.content) {
		offset = len(x.content)
	}
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset }) - 1
	col := utf8.RuneCountInString(x.content[x.starts[line]:offset]) + 1
	return model.Position{Line: line + 1, Column: col}
}

// Range converts a [start, end) byte span.
func (x *LineIndex) Range(start, end int) model.Range {
	return model.Range{Start: x.Position(start), End: x.Position(end)}
}
