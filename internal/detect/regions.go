package detect

import (
	"regexp"
	"sort"
	"strings"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
)

var regionPatterns = []*regexp.Regexp{
	// aws: xx-direction-digit
	regexp.MustCompile(`(?i)\b(?:us|eu|ap|sa|ca|me|af|il|mx)-(?:gov-)?(?:east|west|north|south|central|northeast|northwest|southeast|southwest)-[0-9]\b`),
	// gcp: area-direction+digit
	regexp.MustCompile(`(?i)\b(?:us|europe|asia|australia|northamerica|southamerica|me|africa)-(?:east|west|north|south|central|northeast|northwest|southeast|southwest)[0-9]{1,2}\b`),
	// any value assigned to a region-like key
	regexp.MustCompile(`(?i)\b(?:aws_region|aws_default_region|azure_region|gcp_region|google_cloud_region|region|location|zone|availability_zone)` +
		quote + `?\s*[:=]\s*` + quote + `?([a-z][a-z0-9-]{1,40})`),
	azurePattern,
}

// azurePattern is built from the bare Azure names in the region table, so
// arbitrary words never become candidates.
var azurePattern = func() *regexp.Regexp {
	var names []string
	for _, r := range config.Regions() {
		if r.Provider == "azure" {
			names = append(names, regexp.QuoteMeta(r.Code))
		}
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	return regexp.MustCompile(`(?i)\b(` + strings.Join(names, "|") + `)\b`)
}()

// RegionMatcher finds cloud region codes. Candidates that do not resolve
// against the region table are dropped.
type RegionMatcher struct{}

func (RegionMatcher) Category() model.Category { return model.CategoryRegion }

func (RegionMatcher) Detect(src *Source) []model.Finding {
	var out []model.Finding
	for _, re := range regionPatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(src.Content, -1) {
			sp, ok := submatchSpan(loc)
			if !ok {
				continue
			}
			info, ok := config.ClassifyRegion(src.Content[sp.start:sp.end])
			if !ok {
				continue
			}
			out = append(out, src.finding(model.CategoryRegion, sp, info.Code))
		}
	}
	sortByOffset(out)
	return Dedup(out)
}

// Regions runs the region matcher over content.
func Regions(content, path string) []model.Finding {
	return RegionMatcher{}.Detect(NewSource(path, content))
}
