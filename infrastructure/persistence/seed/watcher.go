package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"loopsite/domain/pages"
	"loopsite/domain/slots"
)

// Replacer is a store whose whole content can be swapped at once
type Replacer interface {
	Replace(list []*pages.Page, overrides map[string]slots.Overrides)
}

// Watcher reloads a seed directory into a store whenever a file below it
// changes. A reload that fails to load or check keeps the current content.
type Watcher struct {
	dir      string
	store    Replacer
	check    func(*Bundle) error
	debounce time.Duration
	logger   *zap.Logger
	reloaded chan struct{}
}

// NewWatcher creates a watcher. check may be nil.
func NewWatcher(dir string, store Replacer, check func(*Bundle) error, logger *zap.Logger) *Watcher {
	return &Watcher{
		dir:      dir,
		store:    store,
		check:    check,
		debounce: 200 * time.Millisecond,
		logger:   logger,
		reloaded: make(chan struct{}, 1),
	}
}

// Reload loads the directory once and replaces the store content
func (w *Watcher) Reload() error {
	bundle, err := Load(w.dir)
	if err != nil {
		return err
	}
	if w.check != nil {
		if err := w.check(bundle); err != nil {
			return err
		}
	}
	w.store.Replace(bundle.Pages, bundle.Slots)
	w.logger.Info("Seed content loaded",
		zap.String("dir", w.dir),
		zap.Int("pages", len(bundle.Pages)),
		zap.Int("slotPages", len(bundle.Slots)),
	)
	select {
	case w.reloaded <- struct{}{}:
	default:
	}
	return nil
}

// Reloaded signals after each successful reload. Only the latest signal is
// kept.
func (w *Watcher) Reloaded() <-chan struct{} { return w.reloaded }

// Run watches until ctx is cancelled. It returns once every goroutine it
// started has stopped.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	if err := addTree(fsw, w.dir); err != nil {
		return err
	}
	w.logger.Info("Seed watcher started", zap.String("dir", w.dir))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Seed watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(fsw, event.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			if err := w.Reload(); err != nil {
				w.logger.Error("Failed to reload seed content, keeping current", zap.Error(err))
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
