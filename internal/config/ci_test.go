package config

import "testing"

func clearCIEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GITHUB_ACTIONS", "GITHUB_STEP_SUMMARY", "GITHUB_SHA", "GITHUB_REF",
		"GITHUB_REPOSITORY", "GITHUB_SERVER_URL", "CI"} {
		t.Setenv(k, "")
	}
}

func TestDetectCI_GitHubActions(t *testing.T) {
	clearCIEnv(t)
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_STEP_SUMMARY", "/tmp/summary.md")
	t.Setenv("GITHUB_SHA", "abc123")
	t.Setenv("GITHUB_REF", "refs/heads/main")
	t.Setenv("GITHUB_REPOSITORY", "acme/bot")
	t.Setenv("GITHUB_SERVER_URL", "https://git.example.com/")

	ci := DetectCI()
	if !ci.Active() || ci.Provider != "github-actions" {
		t.Fatalf("DetectCI = %+v", ci)
	}
	if ci.Repository != "https://git.example.com/acme/bot" {
		t.Errorf("Repository = %q", ci.Repository)
	}
	if ci.SHA != "abc123" || ci.Ref != "refs/heads/main" || ci.SummaryPath != "/tmp/summary.md" {
		t.Errorf("DetectCI = %+v", ci)
	}
}

func TestDetectCI_GenericAndNone(t *testing.T) {
	clearCIEnv(t)
	if ci := DetectCI(); ci.Active() {
		t.Fatalf("DetectCI outside CI = %+v", ci)
	}

	t.Setenv("CI", "true")
	ci := DetectCI()
	if !ci.Active() || ci.Provider != "generic" || ci.Repository != "" {
		t.Fatalf("DetectCI = %+v", ci)
	}
}
