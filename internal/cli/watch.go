package cli

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/AndreyAkinshin/testimport/internal/config"
	"github.com/AndreyAkinshin/testimport/internal/errors"
	"github.com/AndreyAkinshin/testimport/internal/project"
)

// watchDebounce is how long report changes must settle before re-importing.
const watchDebounce = 500 * time.Millisecond

// watchImport runs the import, then re-runs it whenever a watched report
// directory changes, until interrupted. It returns the exit code of the last run.
func watchImport(proj *project.Project, logger *slog.Logger, run func() int) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		out.ErrorPrefix("failed to create watcher: %v", err)
		return errors.ExitRuntimeError
	}
	defer func() { _ = watcher.Close() }()

	dirs := watchDirs(proj.BaseDir(), proj.Config.Reports.ByFormat())
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logger.Warn("Cannot watch directory", "dir", dir, "error", err)
		}
	}
	logger.Info("Watching for report changes", "dirs", len(dirs))
	out.Hint("press Ctrl+C to stop")

	runs := 0
	return watchRuns(ctx, watcher, watchDebounce, logger, func() int {
		if runs > 0 {
			out.Section(fmt.Sprintf("Import #%d", runs+1))
		}
		runs++
		return run()
	})
}

// watchRuns calls run once, then again after every settled change, and
// returns the exit code of the last call.
func watchRuns(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, logger *slog.Logger, run func() int) int {
	code := run()
	watchLoop(ctx, watcher, debounce, logger, func() { code = run() })
	return code
}

// watchDirs lists the directories to watch for the given patterns: the
// static prefix of each pattern, plus every directory below it when the
// pattern spans directories.
func watchDirs(baseDir string, formats []config.FormatPatterns) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, f := range formats {
		for _, pattern := range f.Patterns {
			p := strings.ReplaceAll(strings.TrimSpace(pattern), `\`, "/")
			base, rest := doublestar.SplitPattern(p)
			root := filepath.FromSlash(base)
			if !filepath.IsAbs(root) {
				root = filepath.Join(baseDir, root)
			}
			if info, err := os.Stat(root); err != nil || !info.IsDir() {
				continue
			}
			if !strings.Contains(rest, "/") {
				add(root)
				continue
			}
			_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return nil
				}
				if d.IsDir() {
					if path != root && strings.HasPrefix(d.Name(), ".") {
						return filepath.SkipDir
					}
					add(path)
				}
				return nil
			})
		}
	}
	return dirs
}

// watchLoop calls fn once events on watcher have been quiet for debounce.
// Newly created directories are added to the watch. It returns when ctx is
// done or the watcher is closed.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, logger *slog.Logger, fn func()) {
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Stopping report watcher")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						logger.Warn("Cannot watch directory", "dir", event.Name, "error", err)
					}
				}
			}
			logger.Debug("Report change", "file", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case <-timer.C:
			logger.Info("Reports changed, importing again")
			fn()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error("Watcher error", "error", err)
		}
	}
}
