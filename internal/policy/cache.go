package policy

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/greenlint/internal/model"
)

// ScaffoldMarker tags inserted cache scaffolding so it is offered once.
const ScaffoldMarker = "greenlint:cache-scaffold"

// cacheIndicators are lower-case substrings that show a file already caches.
var cacheIndicators = []string{"cache", "memoize", "memoise", "redis", "memcache"}

// HasCacheIndicator reports whether content mentions any caching construct.
func HasCacheIndicator(content string) bool {
	lower := strings.ToLower(content)
	for _, ind := range cacheIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// scaffolds are the per-language insertions offered at the top of a file.
var scaffolds = map[string]string{
	"python":     "from functools import lru_cache  # " + ScaffoldMarker + "\n",
	"javascript": "const llmCache = new Map(); // " + ScaffoldMarker + "\n",
	"typescript": "const llmCache = new Map<string, unknown>(); // " + ScaffoldMarker + "\n",
	"go":         "// " + ScaffoldMarker + ": memoize identical LLM requests\n",
	"java":       "// " + ScaffoldMarker + ": memoize identical LLM requests\n",
	"kotlin":     "// " + ScaffoldMarker + ": memoize identical LLM requests\n",
	"rust":       "// " + ScaffoldMarker + ": memoize identical LLM requests\n",
	"csharp":     "// " + ScaffoldMarker + ": memoize identical LLM requests\n",
	"php":        "// " + ScaffoldMarker + ": memoize identical LLM requests\n",
	"ruby":       hashScaffold,
	"shell":      hashScaffold,
	"yaml":       hashScaffold,
	"toml":       hashScaffold,
	"terraform":  hashScaffold,
	"dotenv":     hashScaffold,
}

// hashScaffold is the comment-only scaffold used for languages without an
// entry, including untitled buffers. JSON takes no comments and gets none.
const hashScaffold = "# " + ScaffoldMarker + ": memoize identical LLM requests\n"

func scaffoldFor(language string) (string, bool) {
	if language == "json" {
		return "", false
	}
	if text, ok := scaffolds[language]; ok {
		return text, true
	}
	return hashScaffold, true
}

// cacheSuggestions reports call expressions repeated in a file, plus one
// scaffold insertion for the whole file. Callers skip files that already
// cache.
func cacheSuggestions(in Input) []model.Violation {
	counts := make(map[string]int)
	first := make(map[string]model.Finding)
	var order []string
	for _, c := range in.Calls {
		if counts[c.ID] == 0 {
			first[c.ID] = c
			order = append(order, c.ID)
		}
		counts[c.ID]++
	}

	var out []model.Violation
	for _, expr := range order {
		n := counts[expr]
		if n < 2 {
			continue
		}
		f := first[expr]
		out = append(out, model.Violation{
			File:       in.Path,
			Line:       f.Line(),
			Range:      f.Range,
			Rule:       model.RuleCacheDuplicate,
			Severity:   model.SeverityInfo,
			Message:    fmt.Sprintf("Identical API call %s appears %d times without caching", f.Raw, n),
			Count:      n,
			Suggestion: true,
		})
	}

	if len(out) == 0 || strings.Contains(in.Content, ScaffoldMarker) {
		return out
	}
	text, ok := scaffoldFor(in.Language)
	if !ok {
		return out
	}
	at := model.Range{Start: model.Position{Line: 1, Column: 1}, End: model.Position{Line: 1, Column: 1}}
	out = append(out, model.Violation{
		File:       in.Path,
		Line:       1,
		Range:      at,
		Rule:       model.RuleCacheScaffold,
		Severity:   model.SeverityInfo,
		Message:    "Add a response cache for repeated LLM calls",
		Suggestion: true,
		Fix:        &model.Fix{Title: "Insert cache scaffold", Range: at, Text: text},
	})
	return out
}
