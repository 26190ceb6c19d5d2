package estimate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
)

var complexKeywords = []string{
	"analyze", "analyse", "reason", "step by step", "step-by-step", "prove",
	"derive", "algorithm", "refactor", "generate code", "write code",
	"implement", "debug", "optimize", "architecture", "mathematical",
	"equation", "multi-step", "chain of thought", "planning",
}

var simpleKeywords = []string{
	"classify", "categorize", "yes or no", "true or false", "translate",
	"extract", "sentiment", "label", "short answer", "one word", "summarize",
}

var (
	rolePattern      = regexp.MustCompile(`(?i)["']?role["']?\s*[:=]\s*["'](?:system|user|assistant|model)["']`)
	codePattern      = regexp.MustCompile("```|\\b(?:def|function|func)\\s+\\w+\\s*\\(")
	maxTokensPattern = regexp.MustCompile(`(?i)\b(?:max_tokens|maxTokens|max_output_tokens|maxOutputTokens|max_completion_tokens)["']?\s*[:=]\s*([0-9]+)`)
)

// HighOutputTokens is the output-length directive above which a task counts
// as demanding.
const HighOutputTokens = 1000

// Complexity scores the prompt context in [0,10].
func Complexity(window string) int {
	lower := strings.ToLower(window)
	score := 0

	// The top band needs a context_radius of roughly 1000 or more.
	switch n := len(window); {
	case n > 2000:
		score += 3
	case n > 500:
		score += 2
	case n > 100:
		score++
	}

	score += min(3, countHits(lower, complexKeywords))
	score -= min(2, countHits(lower, simpleKeywords))

	switch roles := len(rolePattern.FindAllStringIndex(window, -1)); {
	case roles > 4:
		score += 2
	case roles > 2:
		score++
	}

	if codePattern.MatchString(window) {
		score++
	}

	for _, m := range maxTokensPattern.FindAllStringSubmatch(window, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > HighOutputTokens {
			score++
			break
		}
	}

	return max(0, min(10, score))
}

func countHits(lower string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			n++
		}
	}
	return n
}

// Overkill is a right-sizing verdict for one model usage.
type Overkill struct {
	Severity    model.Severity
	Critical    bool
	Alternative config.GreenAlternative
}

// AssessOverkill applies the right-sizing policy: heavy ≤3 is critical,
// heavy ≤6 is a warning, medium ≤2 is informational. ok is false when the
// model fits the task.
func AssessOverkill(tier model.Tier, score int, modelID string) (Overkill, bool) {
	alt := config.AlternativeFor(modelID)
	switch {
	case tier == model.TierHeavy && score <= 3:
		return Overkill{Severity: model.SeverityError, Critical: true, Alternative: alt}, true
	case tier == model.TierHeavy && score <= 6:
		return Overkill{Severity: model.SeverityWarning, Alternative: alt}, true
	case tier == model.TierMedium && score <= 2:
		return Overkill{Severity: model.SeverityInfo, Alternative: alt}, true
	}
	return Overkill{}, false
}
