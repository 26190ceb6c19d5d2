package config

import (
	"os"
	"strings"
)

// CIInfo describes the CI environment the process runs in, if any.
type CIInfo struct {
	Provider    string // "github-actions", or "" outside CI
	SummaryPath string // step-summary sink; empty when unsupported
	Repository  string // repository URL, when the provider exposes one
	SHA         string
	Ref         string
}

// DetectCI inspects well-known environment variables.
func DetectCI() CIInfo {
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return CIInfo{
			Provider:    "github-actions",
			SummaryPath: os.Getenv("GITHUB_STEP_SUMMARY"),
			Repository:  githubRepository(),
			SHA:         os.Getenv("GITHUB_SHA"),
			Ref:         os.Getenv("GITHUB_REF"),
		}
	}
	if os.Getenv("CI") == "true" {
		return CIInfo{Provider: "generic"}
	}
	return CIInfo{}
}

// Active reports whether a CI environment was detected.
func (c CIInfo) Active() bool { return c.Provider != "" }

func githubRepository() string {
	repo := os.Getenv("GITHUB_REPOSITORY")
	if repo == "" {
		return ""
	}
	server := os.Getenv("GITHUB_SERVER_URL")
	if server == "" {
		server = "https://github.com"
	}
	return strings.TrimSuffix(server, "/") + "/" + repo
}
