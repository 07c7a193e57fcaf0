// Package watch turns file-change notifications for the game's status file
// into cache updates. All filesystem I/O for the status path lives here,
// off the request path.
package watch

import (
	"bytes"
	"errors"
	"os"
	"time"
)

// Cache is the slice of the status cache the adapter drives.
type Cache interface {
	Update(raw []byte)
	RecordFailure(err error)
}

// Adapter reads the watched file when a change notification fires and
// pushes the raw bytes into the cache. The game process writes the file
// in place, so a read can catch it empty or truncated mid-write; those
// reads are retried briefly and then recorded as transient failures,
// leaving the prior snapshot authoritative.
type Adapter struct {
	path       string
	cache      Cache
	retries    int
	retryDelay time.Duration
}

// NewAdapter creates an adapter for one watched file. retries is the
// number of re-read attempts after the first failed read.
func NewAdapter(path string, cache Cache, retries int, retryDelay time.Duration) *Adapter {
	if retries < 0 {
		retries = 0
	}
	return &Adapter{path: path, cache: cache, retries: retries, retryDelay: retryDelay}
}

// HandleChange performs one read-and-push cycle. It never returns an
// error; failures are absorbed into the cache's last-error field.
func (a *Adapter) HandleChange() {
	data, err := a.readWithRetry()
	if err != nil {
		a.cache.RecordFailure(err)
		return
	}
	a.cache.Update(data)
}

func (a *Adapter) readWithRetry() ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= a.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(a.retryDelay)
		}
		data, err := os.ReadFile(a.path)
		if err != nil {
			lastErr = err
			continue
		}
		if len(bytes.TrimSpace(data)) == 0 {
			// In-place rewrite window: the file exists but has no
			// content yet.
			lastErr = errors.New("file empty (mid-write)")
			continue
		}
		return data, nil
	}
	return nil, lastErr
}
