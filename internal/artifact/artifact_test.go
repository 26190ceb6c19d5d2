package artifact

import (
	"strings"
	"testing"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
)

func result() *model.ScanResult {
	return &model.ScanResult{
		Root:         "/home/a/repo",
		TotalCarbon:  5.2,
		FilesScanned: 2,
		Violations: []model.Violation{{
			File: "a.py", Line: 3, Rule: model.RuleTierViolation,
			Severity: model.SeverityError, Message: "x", Model: "gpt-4",
		}},
		Report: "# anything",
	}
}

func TestHashReport_Deterministic(t *testing.T) {
	a, err := HashReport(result())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashReport(result())
	if a != b || len(a) != 64 {
		t.Fatalf("hashes %q %q", a, b)
	}
}

func TestHashReport_IgnoresRootAndRenderedReport(t *testing.T) {
	base, _ := HashReport(result())

	r := result()
	r.Root = "/ci/workspace"
	r.Report = "# different"
	if h, _ := HashReport(r); h != base {
		t.Error("hash depends on root or rendered report")
	}

	r.TotalCarbon = 5.3
	if h, _ := HashReport(r); h == base {
		t.Error("hash ignores totals")
	}
}

func TestCanonical_SortedKeys(t *testing.T) {
	data, err := Canonical(result())
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if strings.Index(s, `"apiCalls"`) > strings.Index(s, `"violations"`) {
		t.Errorf("keys not sorted: %s", s)
	}
	if strings.Contains(s, "/home/a/repo") {
		t.Error("root leaked into canonical form")
	}
}

func TestNewPublisher_Validates(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ArtifactConfig
	}{
		{"no endpoint", config.ArtifactConfig{Bucket: "b", AccessKey: "a", SecretKey: "s"}},
		{"no keys", config.ArtifactConfig{Endpoint: "localhost:9000", Bucket: "b"}},
		{"no bucket", config.ArtifactConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}},
	}
	for _, tt := range tests {
		if _, err := NewPublisher(tt.cfg); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	p, err := NewPublisher(config.ArtifactConfig{Endpoint: "localhost:9000", Bucket: "b", AccessKey: "a", SecretKey: "s"})
	if err != nil {
		t.Fatalf("valid config: %v", err)
	}
	if p.region != "us-east-1" {
		t.Errorf("region = %q", p.region)
	}
}

func TestObjectKey(t *testing.T) {
	if got := ObjectKey("abcdef", "report.md"); got != "reports/ab/abcdef/report.md" {
		t.Errorf("got %q", got)
	}
}
