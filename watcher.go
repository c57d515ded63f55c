package easel

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is the quiet period after the last change event
// before a file is reported.
const DefaultWatchDebounce = 200 * time.Millisecond

// TextureWatcher reports changes of texture source files. It watches the
// directories of the files so that editors saving through a rename are
// noticed. Watch and Unwatch may be called while Run is active.
type TextureWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	changes  chan string

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]int

	closeOnce sync.Once
}

// NewTextureWatcher creates a watcher. A debounce <= 0 selects
// DefaultWatchDebounce.
func NewTextureWatcher(debounce time.Duration) (*TextureWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	return &TextureWatcher{
		watcher:  w,
		debounce: debounce,
		changes:  make(chan string, 16),
		files:    make(map[string]struct{}),
		dirs:     make(map[string]int),
	}, nil
}

// Watch starts reporting changes of path.
func (w *TextureWatcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = struct{}{}
	return nil
}

// Unwatch stops reporting changes of path.
func (w *TextureWatcher) Unwatch(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; !ok {
		return
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		_ = w.watcher.Remove(dir)
	}
}

// Watched reports whether path is being watched.
func (w *TextureWatcher) Watched(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[abs]
	return ok
}

// Changes delivers the absolute paths of changed files.
func (w *TextureWatcher) Changes() <-chan string { return w.changes }

// Run processes file system events until ctx is done or the watcher is
// closed. Changes of one file within the debounce period are reported
// once.
func (w *TextureWatcher) Run(ctx context.Context) error {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.Watched(abs) {
				continue
			}
			pending[abs] = struct{}{}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			timer, fire = nil, nil
			for path := range pending {
				delete(pending, path)
				select {
				case w.changes <- path:
				case <-ctx.Done():
					return nil
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			Logger().Warn("easel: texture watcher", "err", err)
		}
	}
}

// Close stops watching. Run returns once the event channels close.
func (w *TextureWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.watcher.Close() })
	return err
}
