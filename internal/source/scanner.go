// Package source discovers candidate files and maps byte offsets to lines.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// MaxFileSize bounds a single read. Larger files are skipped.
const MaxFileSize = 2 << 20

// ErrTooLarge is returned by ReadFile for files over MaxFileSize.
var ErrTooLarge = errors.New("file too large")

// ScanDir walks root and returns allowlisted files sorted by relative path.
// Unreadable entries and ignored directories are skipped. exclude, if non-nil,
// is consulted with each slash-separated relative path.
func ScanDir(ctx context.Context, root string, exclude func(rel string) bool) ([]DiscoveredFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		lang := LanguageFor(root)
		if lang == "" {
			return nil, nil
		}
		return []DiscoveredFile{{Path: root, Rel: filepath.Base(root), Language: lang}}, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != root && ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			if path != root && exclude != nil && exclude(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		lang := LanguageFor(path)
		if lang == "" {
			return nil
		}
		if exclude != nil && exclude(rel) {
			return nil
		}

		files = append(files, DiscoveredFile{Path: path, Rel: rel, Language: lang})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

// ReadFile reads one candidate file, refusing anything over MaxFileSize.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from ScanDir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxFileSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
