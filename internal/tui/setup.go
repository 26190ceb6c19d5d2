package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/greenlint/internal/cli"
	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
	"github.com/theirongolddev/greenlint/internal/tui/theme"
)

// SetupValues holds the wizard answers. Numeric fields stay strings so the
// form can validate them in place.
type SetupValues struct {
	Theme          string
	WritePolicy    bool
	MaxTier        string
	CarbonCeiling  string
	CostCeiling    string
	DailyUsers     string
	AllowedRegions []string
	BannedModels   string
	RequireCaching bool
	Strict         bool
}

// DefaultSetupValues seeds the wizard from the current tool config and
// an existing policy, if any.
func DefaultSetupValues(cfg config.Config, p *config.PolicyConfig) SetupValues {
	v := SetupValues{
		Theme:         cfg.Appearance.Theme,
		WritePolicy:   true,
		CarbonCeiling: model.FormatAmount(config.DefaultCarbonCeiling),
		CostCeiling:   model.FormatAmount(config.DefaultCostCeiling),
	}
	if p == nil {
		return v
	}
	v.MaxTier = string(p.GreenPolicy.MaxModelTier)
	v.CarbonCeiling = model.FormatAmount(p.CarbonCeiling())
	v.CostCeiling = model.FormatAmount(p.CostCeiling())
	if n := p.DailyUsers(); n > 0 {
		v.DailyUsers = strconv.Itoa(n)
	}
	v.AllowedRegions = append([]string(nil), p.GreenPolicy.AllowedRegions...)
	v.BannedModels = strings.Join(p.GreenPolicy.BannedModels, ", ")
	v.RequireCaching = p.GreenPolicy.RequireCaching
	v.Strict = p.Strict()
	return v
}

// NewSetupForm builds the first-run wizard: theme, then the project policy.
// filesFound and root only feed the welcome note.
func NewSetupForm(root string, filesFound int, v *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	welcome := "Let's set up a carbon policy for this project."
	if filesFound > 0 {
		welcome = fmt.Sprintf("Found %s candidate files in %s.\n\n%s",
			cli.FormatNumber(int64(filesFound)), root, welcome)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to greenlint").
				Description(welcome),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
			huh.NewConfirm().
				Title("Write " + config.PolicyFileName + " for this project?").
				Affirmative("Yes").
				Negative("Not now").
				Value(&v.WritePolicy),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Highest model tier allowed").
				Description("Calls to heavier models fail the scan.").
				Options(
					huh.NewOption("No limit", ""),
					huh.NewOption("Light (e.g. gpt-4o-mini, haiku)", string(model.TierLight)),
					huh.NewOption("Medium (e.g. gpt-3.5, sonnet)", string(model.TierMedium)),
					huh.NewOption("Heavy (any model)", string(model.TierHeavy)),
				).
				Value(&v.MaxTier),
			huh.NewInput().
				Title("Carbon budget per change (gCO2e)").
				Value(&v.CarbonCeiling).
				Validate(positiveFloat),
			huh.NewInput().
				Title("Cost budget per change (USD)").
				Value(&v.CostCeiling).
				Validate(positiveFloat),
			huh.NewInput().
				Title("Daily active users").
				Description("Used to project monthly carbon. Leave empty to skip.").
				Value(&v.DailyUsers).
				Validate(optionalPositiveInt),
		).WithHideFunc(func() bool { return !v.WritePolicy }),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Allowed cloud regions").
				Description("Leave empty to only warn on high-carbon regions.").
				Options(regionOptions()...).
				Height(12).
				Value(&v.AllowedRegions),
			huh.NewInput().
				Title("Banned models").
				Description("Comma-separated substrings, e.g. gpt-4-32k, davinci").
				Value(&v.BannedModels),
			huh.NewConfirm().
				Title("Require caching around API calls?").
				Value(&v.RequireCaching),
			huh.NewConfirm().
				Title("Fail on warnings (strict mode)?").
				Value(&v.Strict),
		).WithHideFunc(func() bool { return !v.WritePolicy }),
	).WithTheme(huh.ThemeBase16())
}

// regionOptions lists green and moderate regions first, greenest on top.
func regionOptions() []huh.Option[string] {
	regions := config.Regions()
	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Intensity != regions[j].Intensity {
			return regions[i].Intensity < regions[j].Intensity
		}
		return regions[i].Code < regions[j].Code
	})
	opts := make([]huh.Option[string], 0, len(regions))
	for _, r := range regions {
		label := fmt.Sprintf("%-22s %-6s %4.0f g/kWh  %s", r.Code, r.Provider, r.Intensity, r.Tier)
		opts = append(opts, huh.NewOption(label, r.Code))
	}
	return opts
}

func positiveFloat(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func optionalPositiveInt(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a whole number above zero, or leave empty")
	}
	return nil
}

// Policy converts the answers into a policy document.
func (v SetupValues) Policy() (config.PolicyConfig, error) {
	p := config.DefaultPolicy()

	carbon, err := strconv.ParseFloat(strings.TrimSpace(v.CarbonCeiling), 64)
	if err != nil {
		return p, fmt.Errorf("carbon budget: %w", err)
	}
	cost, err := strconv.ParseFloat(strings.TrimSpace(v.CostCeiling), 64)
	if err != nil {
		return p, fmt.Errorf("cost budget: %w", err)
	}
	p.CI.MaxCarbonPerPR = &carbon
	p.CI.MaxCostPerPR = &cost

	if s := strings.TrimSpace(v.DailyUsers); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("daily users: %w", err)
		}
		p.Team.DailyUsers = &n
	}

	p.GreenPolicy.MaxModelTier = model.Tier(v.MaxTier)
	if len(v.AllowedRegions) > 0 {
		p.GreenPolicy.AllowedRegions = append([]string(nil), v.AllowedRegions...)
	}
	for _, m := range strings.Split(v.BannedModels, ",") {
		if m = strings.TrimSpace(m); m != "" {
			p.GreenPolicy.BannedModels = append(p.GreenPolicy.BannedModels, m)
		}
	}
	p.GreenPolicy.RequireCaching = v.RequireCaching
	p.CI.FailOnWarning = v.Strict
	return p, nil
}

// Apply copies the tool-level answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
}

// WritePolicy encodes p as indented JSON at path, atomically.
func WritePolicy(path string, p config.PolicyConfig) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding policy: %w", err)
	}
	data = append(data, '\n')
	if err := cli.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("writing policy: %w", err)
	}
	return nil
}
