package detect

import (
	"regexp"
	"sort"
	"strings"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
)

const quote = "[\"'`]"

// modelPatterns recognize vendor-shaped model names. Several may hit the
// same token; ModelMatcher keeps one match per start offset.
var modelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bgpt-[0-9](?:\.[0-9])?o?(?:-[a-z0-9]+)*`),
	regexp.MustCompile(`(?i)\b(?:text|code)-(?:davinci|curie|babbage|ada)-[0-9]{3}\b`),
	// o-series names are too short to trust outside a string literal.
	regexp.MustCompile(`(?i)` + quote + `(o[134](?:-(?:mini|preview|pro))?(?:-[0-9]{4}-[0-9]{2}-[0-9]{2})?)` + quote),
	regexp.MustCompile(`(?i)\bclaude-[a-z0-9]+(?:[.-][a-z0-9]+)*`),
	regexp.MustCompile(`(?i)\bgemini-[a-z0-9]+(?:[.-][a-z0-9]+)*`),
	regexp.MustCompile(`(?i)\b(?:text|chat)-bison(?:-[a-z0-9]+)*(?:@[0-9]+)?`),
	regexp.MustCompile(`(?i)\b(?:meta-)?llama-?[0-9]+(?:[.-][a-z0-9]+)*`),
	regexp.MustCompile(`(?i)\b(?:mistral|mixtral|codestral)-[a-z0-9]+(?:[.-][a-z0-9]+)*`),
}

// ModelMatcher finds LLM model identifiers.
type ModelMatcher struct{}

func (ModelMatcher) Category() model.Category { return model.CategoryModel }

func (ModelMatcher) Detect(src *Source) []model.Finding {
	longest := make(map[int]int)
	for _, re := range modelPatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(src.Content, -1) {
			sp, ok := submatchSpan(loc)
			if !ok || sp.end <= sp.start {
				continue
			}
			if end, seen := longest[sp.start]; !seen || sp.end > end {
				longest[sp.start] = sp.end
			}
		}
	}

	starts := make([]int, 0, len(longest))
	for s := range longest {
		starts = append(starts, s)
	}
	sort.Ints(starts)

	out := make([]model.Finding, 0, len(starts))
	for _, s := range starts {
		sp := span{s, longest[s]}
		id := strings.ToLower(strings.TrimRight(src.Content[sp.start:sp.end], ".-"))
		sp.end = sp.start + len(id)
		out = append(out, src.finding(model.CategoryModel, sp, id))
	}
	return Dedup(out)
}

// Models runs the model matcher over content.
func Models(content, path string) []model.Finding {
	return ModelMatcher{}.Detect(NewSource(path, content))
}

// legacyPattern matches the deprecated identifiers verbatim, longest first.
var legacyPattern = func() *regexp.Regexp {
	ids := make([]string, 0, len(config.LegacyModels))
	for _, l := range config.LegacyModels {
		ids = append(ids, regexp.QuoteMeta(l.ID))
	}
	sort.Slice(ids, func(i, j int) bool { return len(ids[i]) > len(ids[j]) })
	return regexp.MustCompile(`(?i)\b(` + strings.Join(ids, "|") + `)\b`)
}()

var legacyReplacement = func() map[string]string {
	m := make(map[string]string, len(config.LegacyModels))
	for _, l := range config.LegacyModels {
		m[l.ID] = l.Replacement
	}
	return m
}()

// LegacyMatcher finds deprecated model identifiers.
type LegacyMatcher struct{}

func (LegacyMatcher) Category() model.Category { return model.CategoryLegacy }

func (LegacyMatcher) Detect(src *Source) []model.Finding {
	var out []model.Finding
	for _, loc := range legacyPattern.FindAllStringSubmatchIndex(src.Content, -1) {
		sp, ok := submatchSpan(loc)
		if !ok {
			continue
		}
		id := strings.ToLower(src.Content[sp.start:sp.end])
		f := src.finding(model.CategoryLegacy, sp, id)
		f.Replacement = legacyReplacement[id]
		out = append(out, f)
	}
	return Dedup(out)
}

// Legacy runs the legacy-model matcher over content.
func Legacy(content, path string) []model.Finding {
	return LegacyMatcher{}.Detect(NewSource(path, content))
}
