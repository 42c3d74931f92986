// Package watcher keeps the record store in step with content directories:
// files that appear or change are re-imported, files that go away have
// their records removed.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pathshala/pathshala/pkg/utils"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Handler imports and removes content files. *importer.Importer implements it.
type Handler interface {
	Supported(path string) bool
	ImportFile(ctx context.Context, path string) (int, error)
	RemoveFile(ctx context.Context, path string) (int64, error)
}

type action int

const (
	actionImport action = iota
	actionRemove
)

// Watcher watches content roots and forwards debounced file changes to a Handler.
type Watcher struct {
	roots     []string
	recursive bool
	handler   Handler
	debounce  time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	pending map[string]*time.Timer
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long a path must be quiet before it is handled.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher over roots. Nothing is watched until Start.
func New(roots []string, recursive bool, handler Handler, opts ...Option) *Watcher {
	w := &Watcher{
		recursive: recursive,
		handler:   handler,
		debounce:  defaultDebounce,
		pending:   make(map[string]*time.Timer),
	}
	for _, r := range roots {
		if abs, err := filepath.Abs(r); err == nil {
			w.roots = append(w.roots, filepath.Clean(abs))
		}
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = utils.OrNop(w.logger)
	return w
}

// Roots returns the watched root directories.
func (w *Watcher) Roots() []string {
	return append([]string(nil), w.roots...)
}

// Start begins watching. Missing roots are created. It returns once the
// watches are in place; events are handled until ctx ends or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, root := range w.roots {
		if err := os.MkdirAll(root, 0755); err != nil {
			_ = fsw.Close()
			return err
		}
		if err := w.addTree(fsw, root); err != nil {
			_ = fsw.Close()
			return err
		}
	}
	w.fsw = fsw
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.logger.Info("Watching content directories",
		zap.Strings("roots", w.roots),
		zap.Bool("recursive", w.recursive),
		zap.Duration("debounce", w.debounce))

	w.wg.Add(1)
	go w.run(w.ctx, fsw)
	return nil
}

// addTree watches dir, and its subdirectories when recursive. Hidden
// directories below a root are skipped.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	if !w.recursive {
		return fsw.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if !w.underRoot(path) {
		return
	}
	w.logger.Debug("Watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))

	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if ev.Has(fsnotify.Create) && w.recursive {
				w.handleNewDirectory(fsw, path)
			}
			return
		}
		if w.handler.Supported(path) {
			w.schedule(path, actionImport)
		}
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		// a renamed file shows up again as a Create under its new name
		if w.handler.Supported(path) {
			w.schedule(path, actionRemove)
		}
	}
}

// handleNewDirectory watches a directory created or moved under a root
// and imports what it already holds.
func (w *Watcher) handleNewDirectory(fsw *fsnotify.Watcher, dir string) {
	if err := w.addTree(fsw, dir); err != nil {
		w.logger.Warn("Failed to watch new directory", zap.String("path", dir), zap.Error(err))
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && w.handler.Supported(path) {
			w.schedule(path, actionImport)
		}
		return nil
	})
}

func (w *Watcher) underRoot(path string) bool {
	for _, root := range w.roots {
		if root == path || inDir(root, path) {
			return true
		}
	}
	return false
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// schedule runs act for path after the debounce interval. A later event
// for the same path replaces the pending one.
func (w *Watcher) schedule(path string, act action) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	ctx := w.ctx
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		w.release(path, timer)
		if ctx.Err() != nil {
			return
		}
		w.apply(ctx, path, act)
	})
	w.pending[path] = timer
}

// release drops the pending entry for path if it still belongs to t. A
// timer that fired while being replaced must not drop its successor.
func (w *Watcher) release(path string, t *time.Timer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending[path] == t {
		delete(w.pending, path)
	}
}

func (w *Watcher) apply(ctx context.Context, path string, act action) {
	if act == actionRemove {
		n, err := w.handler.RemoveFile(ctx, path)
		if err != nil {
			w.logger.Warn("Failed to remove records", zap.String("path", path), zap.Error(err))
			return
		}
		w.logger.Info("Removed records", zap.String("path", path), zap.Int64("records", n))
		return
	}
	n, err := w.handler.ImportFile(ctx, path)
	if err != nil {
		w.logger.Warn("Failed to import file", zap.String("path", path), zap.Error(err))
		return
	}
	w.logger.Info("Imported file", zap.String("path", path), zap.Int("records", n))
}

// SyncExisting imports every supported file already present under the
// roots, so content added while the watcher was down is picked up.
func (w *Watcher) SyncExisting(ctx context.Context) (files, records int, err error) {
	var errs []error
	for _, root := range w.roots {
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() {
				if path != root && (!w.recursive || strings.HasPrefix(d.Name(), ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if !w.handler.Supported(path) {
				return nil
			}
			n, err := w.handler.ImportFile(ctx, path)
			if err != nil {
				errs = append(errs, err)
				w.logger.Warn("Failed to import file", zap.String("path", path), zap.Error(err))
				return nil
			}
			files++
			records += n
			return nil
		})
		if walkErr != nil && !errors.Is(walkErr, fs.ErrNotExist) {
			errs = append(errs, walkErr)
		}
	}
	return files, records, errors.Join(errs...)
}

// Stop stops watching, drops pending changes and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.fsw == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.cancel()
	fsw := w.fsw
	w.fsw = nil
	w.mu.Unlock()

	_ = fsw.Close()
	w.wg.Wait()
}
