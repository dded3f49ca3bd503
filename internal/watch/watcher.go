package watch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/workspace"
)

// Watcher is an open watch handle on one directory tree
type Watcher interface {
	Close() error
}

// Factory opens a Watcher on dir, a directory under root, and calls
// onEvent with the absolute path of every change it sees.
type Factory func(root, dir string, onEvent func(path string)) (Watcher, error)

// FSNotifyWatcher watches a directory tree with fsnotify. Subdirectories
// are added as they appear; ignored subtrees are never watched.
type FSNotifyWatcher struct {
	root    string
	watcher *fsnotify.Watcher
	onEvent func(path string)

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// NewFSNotifyWatcher is the default Factory
func NewFSNotifyWatcher(root, dir string, onEvent func(path string)) (Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("not a directory: " + dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FSNotifyWatcher{
		root:    root,
		watcher: fsw,
		onEvent: onEvent,
		done:    make(chan struct{}),
	}

	if err := w.addTree(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	go w.processLoop()
	return w, nil
}

func (w *FSNotifyWatcher) ignored(path string) bool {
	rel, ok := workspace.RelativePath(w.root, path)
	if !ok {
		return true
	}
	return rel != "." && ShouldIgnore(rel)
}

// addTree watches dir and every non-ignored directory below it
func (w *FSNotifyWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(p) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			if p == dir {
				return err
			}
			logging.Debug("watch add failed", "path", p, "error", err)
		}
		return nil
	})
}

func (w *FSNotifyWatcher) processLoop() {
	defer close(w.done)

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Debug("watch error", "error", err)
		}
	}
}

func (w *FSNotifyWatcher) handle(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	if w.ignored(ev.Name) {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				logging.Debug("watch new directory failed", "path", ev.Name, "error", err)
			}
		}
	}

	w.onEvent(ev.Name)
}

// Close releases the fsnotify handle and waits for the event loop to exit.
// It is safe to call more than once.
func (w *FSNotifyWatcher) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.watcher.Close()
		<-w.done
	})
	return w.closeErr
}
