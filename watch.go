// Catalog directory watching.
//
// A Watcher keeps a Store in step with its source directory. Filesystem
// events are coalesced: every event restarts a quiet-period timer and a
// single Store.Sync runs once the directory has been quiet for the
// debounce interval, so copying a large file in many writes costs one
// sync, not thousands.
package lazyline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a watcher syncs.
const DefaultDebounce = 500 * time.Millisecond

// Watcher syncs a Store whenever its catalog root changes.
type Watcher struct {
	store    *Store
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onSync   func(SyncResult, error)

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before a sync.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithSyncHook registers fn to run after every sync.
func WithSyncHook(fn func(SyncResult, error)) WatchOption {
	return func(w *Watcher) { w.onSync = fn }
}

// Watch starts watching the catalog root recursively. Watching needs the
// OS filesystem and a non-empty SourceDir. The watcher stops when ctx is
// done or Close is called.
func (s *Store) Watch(ctx context.Context, opts ...WatchOption) (*Watcher, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	root := s.catalog.Root()
	if root == "" {
		return nil, errors.New("watch: store has no source directory")
	}
	if !s.osfs {
		return nil, errors.New("watch: store is not on the OS filesystem")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{store: s, fsw: fsw, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run(ctx)
	return w, nil
}

// addTree watches dir and every directory below it. fsnotify is not
// recursive.
func (w *Watcher) addTree(dir string) error {
	return filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			w.store.log.Debugf("watch %s: %v", p, err)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.addTree(ev.Name)
				}
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.store.log.Warnf("watch: %v", err)

		case <-timer.C:
			res, err := w.store.Sync()
			if err != nil && !errors.Is(err, ErrClosed) {
				w.store.log.Warnf("watch: %v", err)
			}
			if w.onSync != nil {
				w.onSync(res, err)
			}
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	w.once.Do(func() {
		w.cancel()
		w.wg.Wait()
	})
	return nil
}
