// Package estimate turns model findings into approximate token, cost and
// carbon magnitudes. Every figure here is a heuristic proxy, not a
// measurement.
package estimate

import (
	"math"
	"regexp"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
)

// Estimator holds the tunable heuristic constants.
type Estimator struct {
	cfg config.EstimatorConfig
}

// New returns an estimator; zero fields in cfg take documented defaults.
func New(cfg config.EstimatorConfig) *Estimator {
	c := config.Config{Estimator: cfg}
	c.Sanitize()
	return &Estimator{cfg: c.Estimator}
}

// Default uses the documented constants.
func Default() *Estimator { return New(config.DefaultEstimator()) }

// Config returns the effective constants.
func (e *Estimator) Config() config.EstimatorConfig { return e.cfg }

// quotedPattern matches one single-line string literal in any common quote
// style, honoring backslash escapes.
var quotedPattern = regexp.MustCompile(`"(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*'|` + "`[^`]*`")

// Window returns the text within the configured radius of [start, end) and
// the match position relative to the window.
func (e *Estimator) Window(content string, start, end int) (window string, relStart, relEnd int) {
	lo := max(0, start-e.cfg.ContextRadius)
	hi := min(len(content), end+e.cfg.ContextRadius)
	return content[lo:hi], start - lo, end - lo
}

// Prompt returns the first quoted string in the window whose body length is
// within bounds, skipping the literal that contains the match itself. ok is
// false when none qualifies.
func (e *Estimator) Prompt(window string, relStart, relEnd int) (string, bool) {
	for _, loc := range quotedPattern.FindAllStringIndex(window, -1) {
		if loc[0] <= relStart && relEnd <= loc[1] {
			continue
		}
		body := window[loc[0]+1 : loc[1]-1]
		if n := len(body); n >= e.cfg.MinPromptChars && n <= e.cfg.MaxPromptChars {
			return body, true
		}
	}
	return "", false
}

// Tokens converts a character count, rounding up, with a floor of 1.
func (e *Estimator) Tokens(chars int) int {
	t := int(math.Ceil(float64(chars) / e.cfg.CharsPerToken))
	if t < 1 {
		return 1
	}
	return t
}

// Estimate computes usage for a model finding in content. It also returns
// the prompt text it used, empty when the default placeholder applied.
func (e *Estimator) Estimate(content string, f model.Finding) (model.EstimatedUsage, string) {
	window, rs, re := e.Window(content, f.Offset, f.End)
	prompt, ok := e.Prompt(window, rs, re)
	chars := e.cfg.DefaultPromptChars
	if ok {
		chars = len(prompt)
	}

	tokens := e.Tokens(chars)
	cost, carbon, known := config.CalculateUsage(f.ID, tokens)
	entry, _ := config.ClassifyModel(f.ID)

	return model.EstimatedUsage{
		Model:       f.ID,
		Tier:        entry.Tier,
		Known:       known,
		PromptChars: chars,
		Tokens:      tokens,
		Cost:        cost,
		Carbon:      carbon,
		Complexity:  Complexity(window),
	}, prompt
}
