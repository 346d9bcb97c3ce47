package camera

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"lapsecam/internal/config"
	"lapsecam/internal/logger"
)

// settleDelay gives the writer time to finish the file before we read it.
const settleDelay = 200 * time.Millisecond

// IngestFunc receives frames picked up from the spool directory.
type IngestFunc func(ctx context.Context, frame Frame) error

// SpoolWatcher watches a directory for externally dropped JPEG files and
// hands them to the ingest callback. Consumed files are removed from the
// spool. This is the headless equivalent of the manual shutter button.
type SpoolWatcher struct {
	dir    string
	ingest IngestFunc

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

func NewSpoolWatcher(dir string, ingest IngestFunc) *SpoolWatcher {
	return &SpoolWatcher{dir: dir, ingest: ingest}
}

// Start creates the spool dir if needed, drains any files already present,
// and begins watching for new ones.
func (w *SpoolWatcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return err
	}
	w.watcher = watcher

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.drain(runCtx)

	w.wg.Add(1)
	go w.run(runCtx)

	logger.Info("spool watcher started", "module", "camera", "action", "watch", "resource", "spool", "result", "ok", "dir", w.dir)
	return nil
}

func (w *SpoolWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
	w.wg.Wait()
	logger.Info("spool watcher stopped", "module", "camera", "action", "watch", "resource", "spool", "result", "ok")
}

func (w *SpoolWatcher) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isJPEG(event.Name) {
				continue
			}
			// The writer may still be mid-copy when the event fires.
			time.Sleep(settleDelay)
			w.consume(ctx, event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("spool watch error", "module", "camera", "action", "watch", "resource", "spool", "result", "failed", "error", err)
		}
	}
}

// drain ingests files that were dropped while the agent was not running.
func (w *SpoolWatcher) drain(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("spool drain failed", "module", "camera", "action", "drain", "resource", "spool", "result", "failed", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isJPEG(entry.Name()) {
			continue
		}
		w.consume(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

func (w *SpoolWatcher) consume(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("spool read failed", "module", "camera", "action", "ingest", "resource", "spool", "result", "failed", "file", path, "error", err)
		return
	}
	if len(data) == 0 {
		return
	}

	frame := Frame{Bytes: data, Origin: config.SourceSpool, TakenAt: time.Now().UTC()}
	if err := w.ingest(ctx, frame); err != nil {
		logger.Error("spool ingest failed", "module", "camera", "action", "ingest", "resource", "spool", "result", "failed", "file", path, "error", err)
		return
	}

	if err := os.Remove(path); err != nil {
		logger.Warn("spool cleanup failed", "module", "camera", "action", "ingest", "resource", "spool", "result", "failed", "file", path, "error", err)
	}
}

func isJPEG(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".jpg" || ext == ".jpeg"
}
