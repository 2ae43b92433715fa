package rag

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the event bursts editors produce on save.
const debounceDelay = 500 * time.Millisecond

// Watcher re-indexes documents as they change on disk.
type Watcher struct {
	pipeline *Pipeline
	watcher  *fsnotify.Watcher
}

// NewWatcher starts watching the pipeline's docs folder and its
// subdirectories.
func NewWatcher(pipeline *Pipeline) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(pipeline.cfg.DocsFolder, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsWatcher.Add(path)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return &Watcher{pipeline: pipeline, watcher: fsWatcher}, nil
}

// Run processes filesystem events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) {
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, event, pending)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", "error", err)

		case now := <-ticker.C:
			for path, stamp := range pending {
				if now.Sub(stamp) < debounceDelay {
					continue
				}
				delete(pending, path)
				if err := w.pipeline.IngestFile(ctx, path); err != nil {
					slog.Error("re-indexing failed", "path", path, "error", err)
				}
			}
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event, pending map[string]time.Time) {
	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.watcher.Add(event.Name)
			return
		}
		if Supported(event.Name) {
			pending[event.Name] = time.Now()
		}

	case event.Op.Has(fsnotify.Write):
		if Supported(event.Name) {
			pending[event.Name] = time.Now()
		}

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		if !Supported(event.Name) {
			return
		}
		delete(pending, event.Name)
		if err := w.pipeline.RemoveFile(ctx, event.Name); err != nil {
			slog.Warn("removing deleted document failed", "path", event.Name, "error", err)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
