package filewatch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

func newWatcher(paths ...string) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			w.Close()
			return nil, err
		}
	}
	return w, nil
}

// UntilModifyContext returns a context that is canceled
// when one of target files is modified (= written, created, removed, or renamed).
//
// # Args
//
// - ctx: context.Context
//
// - targetFilePath ...string: file pathes to be watched.
//
// # Returns
//
// - context.Context: context canceled when one of target files is modified.
// context.Cause tells which file is modified.
//
// - func(): cancel function.
//
// - error: error caused when it fails to start watching files.
func UntilModifyContext(ctx context.Context, targetFilePath ...string) (context.Context, func(), error) {
	w, err := newWatcher(targetFilePath...)
	if err != nil {
		return nil, nil, err
	}

	cctx, cancel := context.WithCancelCause(ctx)
	go func() {
		defer w.Close()
		for {
			select {
			case <-cctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				cancel(fmt.Errorf("%s is updated (%s)", event.Name, event.Op.String()))
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}

const DefaultSettle = 500 * time.Millisecond

// Created reports regular files newly created (or moved into) in dir.
//
// A file is reported when it has not been written for settle duration after creation,
// so that readers get whole content. If settle <= 0, DefaultSettle is used.
//
// The returned channel is closed when ctx is done.
func Created(ctx context.Context, dir string, settle time.Duration) (<-chan string, error) {
	if settle <= 0 {
		settle = DefaultSettle
	}
	w, err := newWatcher(dir)
	if err != nil {
		return nil, err
	}

	interval := settle / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer w.Close()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// path -> last event time
		pending := map[string]time.Time{}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				switch {
				case ev.Has(fsnotify.Create):
					pending[ev.Name] = time.Now()
				case ev.Has(fsnotify.Write), ev.Has(fsnotify.Chmod):
					if _, ok := pending[ev.Name]; ok {
						pending[ev.Name] = time.Now()
					}
				case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
					delete(pending, ev.Name)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			case now := <-ticker.C:
				for path, last := range pending {
					if now.Sub(last) < settle {
						continue
					}
					delete(pending, path)
					if s, err := os.Stat(path); err != nil || !s.Mode().IsRegular() {
						continue
					}
					select {
					case out <- path:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return out, nil
}
