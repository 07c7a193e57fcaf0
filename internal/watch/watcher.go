package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrPathUnavailable means the watched directory did not exist when the
// watcher was constructed. The watch mechanism does not start and is not
// retried; the process must be restarted after the directory appears.
var ErrPathUnavailable = errors.New("watched path unavailable")

// Watcher delivers change notifications for a single file to an Adapter.
// It combines fsnotify events on the file's directory with a periodic
// poll fallback for filesystems that swallow events (network mounts,
// some Proton prefixes).
type Watcher struct {
	dir          string
	file         string
	adapter      *Adapter
	fsw          *fsnotify.Watcher
	pollInterval time.Duration

	lastMod  time.Time
	lastSize int64
}

// NewWatcher prepares a watcher for path. The parent directory must exist.
func NewWatcher(path string, adapter *Adapter, pollInterval time.Duration) (*Watcher, error) {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPathUnavailable, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrPathUnavailable, dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("%w: %v", ErrPathUnavailable, err)
	}

	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	return &Watcher{
		dir:          dir,
		file:         filepath.Base(path),
		adapter:      adapter,
		fsw:          fsw,
		pollInterval: pollInterval,
	}, nil
}

// Run watches until ctx is done. A file already present at startup is
// read immediately so the cache does not wait for the first change.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()

	fmt.Printf("[Watcher] Watching %s (poll fallback every %s)\n", filepath.Join(w.dir, w.file), w.pollInterval)

	if _, err := os.Stat(filepath.Join(w.dir, w.file)); err == nil {
		w.adapter.HandleChange()
		w.refreshStamp()
	} else {
		fmt.Printf("[Watcher] %s not present yet, waiting for the game to write it\n", w.file)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != w.file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.adapter.HandleChange()
			w.refreshStamp()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fmt.Printf("[Watcher] Notification error: %v\n", err)
		case <-ticker.C:
			w.pollIfChanged()
		}
	}
}

// pollIfChanged re-reads the file when its stat fingerprint moved since
// the last handled change. A missing file is not a failure here: no
// notification claimed new content.
func (w *Watcher) pollIfChanged() {
	info, err := os.Stat(filepath.Join(w.dir, w.file))
	if err != nil {
		return
	}
	if info.ModTime().Equal(w.lastMod) && info.Size() == w.lastSize {
		return
	}
	w.adapter.HandleChange()
	w.lastMod = info.ModTime()
	w.lastSize = info.Size()
}

func (w *Watcher) refreshStamp() {
	if info, err := os.Stat(filepath.Join(w.dir, w.file)); err == nil {
		w.lastMod = info.ModTime()
		w.lastSize = info.Size()
	}
}
