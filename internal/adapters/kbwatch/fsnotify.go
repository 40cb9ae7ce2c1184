// Package kbwatch reloads the knowledge base when its file changes on disk.
// Adapter built on fsnotify; editors often replace files on save, so the
// watch is on the containing directory with events filtered to the file.
package kbwatch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/helpwise/faqdesk-go/internal/domain/ports"
)

// debounce collapses the bursts of events editors emit for a single save.
const debounce = 500 * time.Millisecond

// Watcher triggers corpus reloads on knowledge-base file changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	reloader ports.CorpusReloader
	logger   *zap.Logger
}

// New creates a watcher for the knowledge base file at path.
func New(path string, reloader ports.CorpusReloader, logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  w,
		path:     filepath.Clean(path),
		reloader: reloader,
		logger:   logger,
	}, nil
}

// Run watches until ctx is done, reloading the corpus after each change to
// the knowledge base file. Reload failures are logged and leave the previous
// corpus active.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	defer w.watcher.Close()

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			if err := w.reloader.Reload(); err != nil {
				w.logger.Warn("knowledge base reload after file change failed", zap.Error(err))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}
