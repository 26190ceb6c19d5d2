package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/theirongolddev/greenlint/internal/source"
)

// watch rescans after file activity settles for the debounce interval. A
// change to the policy file reloads the policy first.
func (s *Service) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	if err := addWatchRecursive(watcher, s.cfg.Root); err != nil {
		return fmt.Errorf("watch %s: %w", s.cfg.Root, err)
	}
	policyPath, _ := filepath.Abs(s.policies.Path())
	if dir := filepath.Dir(policyPath); !within(s.cfg.Root, dir) {
		if err := watcher.Add(dir); err != nil {
			log.Printf("greenlint daemon: cannot watch policy dir %s: %v", dir, err)
		}
	}

	// Seed the first scan so status is useful immediately.
	s.Rescan(ctx)

	var (
		timer         *time.Timer
		policyChanged bool
	)
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if skipEvent(ev.Name) {
				continue
			}
			if abs, _ := filepath.Abs(ev.Name); abs == policyPath {
				policyChanged = true
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addWatchRecursive(watcher, ev.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(s.cfg.Debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			if policyChanged {
				policyChanged = false
				s.ReloadPolicy()
			}
			s.Rescan(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("greenlint daemon watch error: %v", err)
		}
	}
}

func addWatchRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable dirs are simply not watched
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && source.IgnoredDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// skipEvent drops activity inside ignored directories and editor temp files.
func skipEvent(name string) bool {
	base := filepath.Base(name)
	if len(base) > 0 && (base[len(base)-1] == '~' || filepath.Ext(base) == ".swp") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(name)), "/") {
		if source.IgnoredDir(part) {
			return true
		}
	}
	return false
}

func within(root, dir string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, dir)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
