package config

import (
	"sort"
	"strings"

	"github.com/theirongolddev/greenlint/internal/model"
)

// ModelTierEntry holds per-1000-token prices and carbon for one model family.
type ModelTierEntry struct {
	ID           string // lower-case identifier substring
	Provider     string
	Tier         model.Tier
	CarbonWeight float64

	InputPer1K  float64 // USD
	OutputPer1K float64

	CarbonInPer1K  float64 // gCO2e
	CarbonOutPer1K float64
}

// Fallback rates for models that resolve to no table entry.
const (
	UnknownCostPer1K   = 0.01
	UnknownCarbonPer1K = 0.5
)

// tierEntry fills the derived output rates from a tier's carbon weight.
func tierEntry(id, provider string, tier model.Tier, in, out float64) ModelTierEntry {
	weight := map[model.Tier]float64{model.TierHeavy: 1.0, model.TierMedium: 0.4, model.TierLight: 0.1}[tier]
	return ModelTierEntry{
		ID: id, Provider: provider, Tier: tier, CarbonWeight: weight,
		InputPer1K: in, OutputPer1K: out,
		CarbonInPer1K: 4.32 * weight, CarbonOutPer1K: 8.64 * weight,
	}
}

// modelTable is the static pricing/carbon table. Identifiers are disjoint in
// intent; overlapping substrings (gpt-4 vs gpt-4o-mini) resolve by length.
var modelTable = []ModelTierEntry{
	// OpenAI
	tierEntry("gpt-4", "openai", model.TierHeavy, 0.03, 0.06),
	tierEntry("gpt-4-32k", "openai", model.TierHeavy, 0.06, 0.12),
	tierEntry("gpt-4-turbo", "openai", model.TierHeavy, 0.01, 0.03),
	tierEntry("gpt-4.5", "openai", model.TierHeavy, 0.075, 0.15),
	tierEntry("o1", "openai", model.TierHeavy, 0.015, 0.06),
	tierEntry("o1-pro", "openai", model.TierHeavy, 0.15, 0.6),
	tierEntry("o3", "openai", model.TierHeavy, 0.01, 0.04),
	tierEntry("gpt-4o", "openai", model.TierMedium, 0.0025, 0.01),
	tierEntry("gpt-4.1", "openai", model.TierMedium, 0.002, 0.008),
	tierEntry("gpt-5", "openai", model.TierMedium, 0.00125, 0.01),
	tierEntry("o1-mini", "openai", model.TierMedium, 0.0011, 0.0044),
	tierEntry("o3-mini", "openai", model.TierMedium, 0.0011, 0.0044),
	tierEntry("o4-mini", "openai", model.TierMedium, 0.0011, 0.0044),
	tierEntry("gpt-3.5-turbo", "openai", model.TierLight, 0.0005, 0.0015),
	tierEntry("gpt-4o-mini", "openai", model.TierLight, 0.00015, 0.0006),
	tierEntry("gpt-4.1-mini", "openai", model.TierLight, 0.0004, 0.0016),
	tierEntry("gpt-4.1-nano", "openai", model.TierLight, 0.0001, 0.0004),
	tierEntry("gpt-5-mini", "openai", model.TierLight, 0.00025, 0.002),

	// Anthropic
	tierEntry("claude-3-opus", "anthropic", model.TierHeavy, 0.015, 0.075),
	tierEntry("claude-opus", "anthropic", model.TierHeavy, 0.015, 0.075),
	tierEntry("claude-3-sonnet", "anthropic", model.TierMedium, 0.003, 0.015),
	tierEntry("claude-3-5-sonnet", "anthropic", model.TierMedium, 0.003, 0.015),
	tierEntry("claude-3-7-sonnet", "anthropic", model.TierMedium, 0.003, 0.015),
	tierEntry("claude-sonnet", "anthropic", model.TierMedium, 0.003, 0.015),
	tierEntry("claude-3-haiku", "anthropic", model.TierLight, 0.00025, 0.00125),
	tierEntry("claude-3-5-haiku", "anthropic", model.TierLight, 0.0008, 0.004),
	tierEntry("claude-haiku", "anthropic", model.TierLight, 0.001, 0.005),

	// Google
	tierEntry("gemini-ultra", "google", model.TierHeavy, 0.0125, 0.0375),
	tierEntry("gemini-1.5-pro", "google", model.TierHeavy, 0.00125, 0.005),
	tierEntry("gemini-2.5-pro", "google", model.TierHeavy, 0.00125, 0.01),
	tierEntry("gemini-pro", "google", model.TierMedium, 0.0005, 0.0015),
	tierEntry("gemini-1.0-pro", "google", model.TierMedium, 0.0005, 0.0015),
	tierEntry("gemini-1.5-flash", "google", model.TierLight, 0.000075, 0.0003),
	tierEntry("gemini-2.0-flash", "google", model.TierLight, 0.0001, 0.0004),
	tierEntry("gemini-2.5-flash", "google", model.TierLight, 0.0003, 0.0025),

	// Meta / Mistral
	tierEntry("llama-3-70b", "meta", model.TierHeavy, 0.0009, 0.0009),
	tierEntry("llama-3.1-405b", "meta", model.TierHeavy, 0.003, 0.003),
	tierEntry("llama-3-8b", "meta", model.TierLight, 0.0002, 0.0002),
	tierEntry("mistral-large", "mistral", model.TierMedium, 0.002, 0.006),
	tierEntry("mistral-medium", "mistral", model.TierMedium, 0.0004, 0.002),
	tierEntry("mixtral-8x22b", "mistral", model.TierMedium, 0.002, 0.006),
	tierEntry("mistral-small", "mistral", model.TierLight, 0.0002, 0.0006),
	tierEntry("mixtral-8x7b", "mistral", model.TierLight, 0.0007, 0.0007),
}

// GreenAlternative is the documented lighter substitute for a provider.
type GreenAlternative struct {
	Model           string
	SavingsPct      int
	CarbonReduction int
}

var greenAlternatives = map[string]GreenAlternative{
	"openai":    {Model: "gpt-4o-mini", SavingsPct: 95, CarbonReduction: 90},
	"anthropic": {Model: "claude-3-5-haiku", SavingsPct: 90, CarbonReduction: 85},
	"google":    {Model: "gemini-2.5-flash", SavingsPct: 90, CarbonReduction: 85},
	"meta":      {Model: "llama-3-8b", SavingsPct: 80, CarbonReduction: 75},
	"mistral":   {Model: "mistral-small", SavingsPct: 85, CarbonReduction: 80},
}

// LegacyModel is a deprecated identifier and its modern replacement.
type LegacyModel struct {
	ID          string
	Replacement string
}

// LegacyModels lists deprecated identifiers matched verbatim.
var LegacyModels = []LegacyModel{
	{ID: "text-davinci-003", Replacement: "gpt-4o-mini"},
	{ID: "text-davinci-002", Replacement: "gpt-4o-mini"},
	{ID: "code-davinci-002", Replacement: "gpt-4o-mini"},
	{ID: "text-curie-001", Replacement: "gpt-4o-mini"},
	{ID: "text-babbage-001", Replacement: "gpt-4o-mini"},
	{ID: "text-ada-001", Replacement: "gpt-4o-mini"},
	{ID: "gpt-3.5-turbo-0301", Replacement: "gpt-4o-mini"},
	{ID: "gpt-4-0314", Replacement: "gpt-4o"},
	{ID: "claude-instant-1", Replacement: "claude-3-5-haiku"},
	{ID: "claude-2", Replacement: "claude-3-5-sonnet"},
	{ID: "text-bison", Replacement: "gemini-2.5-flash"},
	{ID: "chat-bison", Replacement: "gemini-2.5-flash"},
}

// modelsByLength is modelTable sorted longest identifier first, so the first
// containment hit is the longest match.
var modelsByLength = func() []ModelTierEntry {
	out := append([]ModelTierEntry(nil), modelTable...)
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].ID) != len(out[j].ID) {
			return len(out[i].ID) > len(out[j].ID)
		}
		return out[i].ID < out[j].ID
	})
	return out
}()

// Models returns a copy of the reference table in declaration order.
func Models() []ModelTierEntry {
	return append([]ModelTierEntry(nil), modelTable...)
}

// ClassifyModel resolves an identifier to the table entry whose identifier is
// the longest substring of it. ok is false when nothing matches.
func ClassifyModel(id string) (ModelTierEntry, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return ModelTierEntry{Tier: model.TierUnknown}, false
	}
	for _, e := range modelsByLength {
		if strings.Contains(id, e.ID) {
			return e, true
		}
	}
	return ModelTierEntry{ID: id, Tier: model.TierUnknown}, false
}

// ProviderFor guesses the vendor from an identifier, even when it is not in
// the table.
func ProviderFor(id string) string {
	if e, ok := ClassifyModel(id); ok {
		return e.Provider
	}
	id = strings.ToLower(id)
	switch {
	case strings.HasPrefix(id, "claude"):
		return "anthropic"
	case strings.HasPrefix(id, "gemini"), strings.Contains(id, "bison"):
		return "google"
	case strings.HasPrefix(id, "llama"):
		return "meta"
	case strings.HasPrefix(id, "mistral"), strings.HasPrefix(id, "mixtral"):
		return "mistral"
	}
	return "openai"
}

// AlternativeFor returns the green alternative for a model's provider.
func AlternativeFor(id string) GreenAlternative {
	if alt, ok := greenAlternatives[ProviderFor(id)]; ok {
		return alt
	}
	return greenAlternatives["openai"]
}

// CalculateUsage returns cost and carbon for a number of input tokens,
// falling back to the conservative defaults for unknown models.
func CalculateUsage(id string, tokens int) (cost, carbon float64, known bool) {
	k := float64(tokens) / 1000
	e, ok := ClassifyModel(id)
	if !ok {
		return k * UnknownCostPer1K, k * UnknownCarbonPer1K, false
	}
	return k * e.InputPer1K, k * e.CarbonInPer1K, true
}
