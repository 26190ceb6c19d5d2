package source

import (
	"path/filepath"
	"strings"
)

// DiscoveredFile is a candidate source file found under the scan root.
type DiscoveredFile struct {
	Path     string // absolute or root-joined path
	Rel      string // slash-separated path relative to the scan root
	Language string
}

// languages maps the extension allowlist to language identifiers.
var languages = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".go":    "go",
	".java":  "java",
	".kt":    "kotlin",
	".rb":    "ruby",
	".rs":    "rust",
	".cs":    "csharp",
	".php":   "php",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".tf":    "terraform",
	".env":   "dotenv",
	".sh":    "shell",
	".ipynb": "json",
}

// editorLanguages maps editor language IDs onto the identifiers above.
var editorLanguages = map[string]string{
	"typescriptreact": "typescript",
	"javascriptreact": "javascript",
	"shellscript":     "shell",
	"bash":            "shell",
	"sh":              "shell",
	"py":              "python",
	"golang":          "go",
	"c#":              "csharp",
	"jsonc":           "json",
	"yml":             "yaml",
	"hcl":             "terraform",
	"js":              "javascript",
	"ts":              "typescript",
}

// ignoredDirs are never descended into.
var ignoredDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"target":       true,
	".next":        true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".tox":         true,
	".terraform":   true,
	"coverage":     true,
}

// NormalizeLanguage folds an editor language ID into a language identifier.
// Unknown IDs are returned lower-cased.
func NormalizeLanguage(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if canonical, ok := editorLanguages[id]; ok {
		return canonical
	}
	return id
}

// LanguageFor returns the language identifier for a path, or "" when the
// extension is not on the allowlist.
func LanguageFor(path string) string {
	base := filepath.Base(path)
	if base == ".env" || strings.HasPrefix(base, ".env.") {
		return "dotenv"
	}
	return languages[strings.ToLower(filepath.Ext(path))]
}

// IgnoredDir reports whether a directory name is never scanned.
func IgnoredDir(name string) bool { return ignoredDirs[name] }
