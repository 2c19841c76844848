package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
	"git.home.luguber.info/inful/pxtdocs/internal/notebooks"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// WatchOptions configure Watch.
type WatchOptions struct {
	Build    Options
	Debounce time.Duration
	// OnBuild is called after every build, including the initial one.
	OnBuild func(*Report, error)
}

// Watch builds once, then rebuilds whenever the Mintlify source, the
// notebooks or the API outline change. It returns when ctx is done.
func (b *Builder) Watch(ctx context.Context, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.OnBuild == nil {
		opts.OnBuild = func(*Report, error) {}
	}
	logger := b.deps.Logger

	set := b.watchSet(opts.Build)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	defer func() { _ = watcher.Close() }()
	for _, dir := range set.roots {
		addDirsRecursive(watcher, dir, logger)
	}
	if err := watcher.Add(filepath.Dir(b.layout.OPML)); err != nil {
		logger.Warn("Watch add failed", logfields.Path(b.layout.OPML), logfields.Error(err))
	}

	opts.OnBuild(b.Build(ctx, opts.Build))

	rebuildReq, trigger := setupRebuildDebouncer(opts.Debounce)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-rebuildReq:
				logger.Info("Change detected; rebuilding site")
				opts.OnBuild(b.Build(ctx, opts.Build))
			}
		}
	}()
	defer wg.Wait()

	logger.Info("Watching for changes", slog.Any("paths", set.roots))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !set.relevant(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					addDirsRecursive(watcher, ev.Name, logger)
				}
			}
			logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// watchSet decides which paths feed a rebuild.
type watchSet struct {
	roots  []string
	opml   string
	target string
}

func (b *Builder) watchSet(opts Options) watchSet {
	set := watchSet{roots: []string{b.layout.Source}, opml: b.layout.OPML, target: b.layout.Target}
	if !opts.Skip.Notebooks {
		if fi, err := os.Stat(b.layout.Notebooks); err == nil && fi.IsDir() {
			set.roots = append(set.roots, b.layout.Notebooks)
		}
	}
	return set
}

func (s watchSet) relevant(path string) bool {
	if shouldIgnoreEvent(path) || within(s.target, path) {
		return false
	}
	if path == s.opml {
		return true
	}
	for _, root := range s.roots {
		if within(root, path) {
			return true
		}
	}
	return false
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func setupRebuildDebouncer(delay time.Duration) (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

func addDirsRecursive(w *fsnotify.Watcher, root string, logger *slog.Logger) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnoreEvent reports events from hidden, editor and lock files, and
// from the Quarto project file the notebook stage writes.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db" || base == notebooks.QuartoConfigFile
}
