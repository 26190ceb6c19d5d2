// Package detect finds model, region, API-call and legacy-model usages in
// raw file text. Matchers are lexical heuristics: they never fail, and
// content they cannot make sense of simply yields no findings.
package detect

import (
	"sort"

	"github.com/theirongolddev/greenlint/internal/model"
	"github.com/theirongolddev/greenlint/internal/source"
)

// Source is one file's content with its precomputed line index.
type Source struct {
	Path    string
	Content string
	Lines   *source.LineIndex
}

// NewSource indexes content once for all matchers.
func NewSource(path, content string) *Source {
	return &Source{Path: path, Content: content, Lines: source.NewLineIndex(content)}
}

// Matcher owns the patterns for one category.
type Matcher interface {
	Category() model.Category
	Detect(src *Source) []model.Finding
}

// Matchers is the default matcher set, in reporting order.
var Matchers = []Matcher{
	ModelMatcher{},
	RegionMatcher{},
	APIMatcher{},
	LegacyMatcher{},
}

// All runs every matcher over src and returns deduplicated findings ordered
// by offset, then category.
func All(src *Source) []model.Finding {
	var out []model.Finding
	for _, m := range Matchers {
		out = append(out, m.Detect(src)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Offset < out[j].Offset
	})
	return Dedup(out)
}

// Detect is All for callers holding plain content.
func Detect(content, path string) []model.Finding {
	return All(NewSource(path, content))
}

// Dedup drops findings whose (category, identifier, line) was already seen.
// The first occurrence wins.
func Dedup(findings []model.Finding) []model.Finding {
	if len(findings) == 0 {
		return findings
	}
	seen := make(map[model.DedupKey]struct{}, len(findings))
	out := findings[:0:0]
	for _, f := range findings {
		k := f.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}

// span is a raw match before it becomes a Finding.
type span struct {
	start, end int
}

// submatchSpan prefers capture group 1 when the pattern has one.
func submatchSpan(loc []int) (span, bool) {
	if len(loc) >= 4 && loc[2] >= 0 {
		return span{loc[2], loc[3]}, true
	}
	if len(loc) >= 2 && loc[0] >= 0 {
		return span{loc[0], loc[1]}, true
	}
	return span{}, false
}

func (s *Source) finding(cat model.Category, sp span, id string) model.Finding {
	return model.Finding{
		Category: cat,
		File:     s.Path,
		Offset:   sp.start,
		End:      sp.end,
		Range:    s.Lines.Range(sp.start, sp.end),
		Raw:      s.Content[sp.start:sp.end],
		ID:       id,
	}
}
