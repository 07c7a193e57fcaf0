package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type fakeCache struct {
	mu       sync.Mutex
	updates  [][]byte
	failures []error
}

func (f *fakeCache) Update(raw []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, append([]byte(nil), raw...))
}

func (f *fakeCache) RecordFailure(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, err)
}

func (f *fakeCache) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates), len(f.failures)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestAdapterPushesFileContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Status.json")
	os.WriteFile(path, []byte(`{"Flags": 1}`), 0644)

	cache := &fakeCache{}
	a := NewAdapter(path, cache, 2, time.Millisecond)
	a.HandleChange()

	updates, failures := cache.counts()
	if updates != 1 || failures != 0 {
		t.Fatalf("Expected 1 update and 0 failures, got %d/%d", updates, failures)
	}
	if string(cache.updates[0]) != `{"Flags": 1}` {
		t.Errorf("Unexpected bytes pushed: %s", cache.updates[0])
	}
}

func TestAdapterMissingFileIsTransient(t *testing.T) {
	dir := t.TempDir()
	cache := &fakeCache{}
	a := NewAdapter(filepath.Join(dir, "Status.json"), cache, 1, time.Millisecond)
	a.HandleChange()

	updates, failures := cache.counts()
	if updates != 0 || failures != 1 {
		t.Fatalf("Expected 0 updates and 1 failure, got %d/%d", updates, failures)
	}
}

func TestAdapterEmptyFileIsTransient(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Status.json")
	os.WriteFile(path, nil, 0644)

	cache := &fakeCache{}
	a := NewAdapter(path, cache, 1, time.Millisecond)
	a.HandleChange()

	updates, failures := cache.counts()
	if updates != 0 || failures != 1 {
		t.Fatalf("Expected 0 updates and 1 failure, got %d/%d", updates, failures)
	}
}

func TestAdapterRecoversWhenWriteCompletes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Status.json")
	os.WriteFile(path, nil, 0644)

	cache := &fakeCache{}
	a := NewAdapter(path, cache, 10, 10*time.Millisecond)

	go func() {
		time.Sleep(25 * time.Millisecond)
		os.WriteFile(path, []byte(`{"Flags": 2}`), 0644)
	}()
	a.HandleChange()

	updates, failures := cache.counts()
	if updates != 1 || failures != 0 {
		t.Fatalf("Expected recovery on retry, got %d updates / %d failures", updates, failures)
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	cache := &fakeCache{}
	a := NewAdapter("/no/such/dir/Status.json", cache, 0, 0)
	_, err := NewWatcher("/no/such/dir/Status.json", a, time.Second)
	if !errors.Is(err, ErrPathUnavailable) {
		t.Fatalf("Expected ErrPathUnavailable, got %v", err)
	}
}

func TestWatcherInitialRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Status.json")
	os.WriteFile(path, []byte(`{"Flags": 5}`), 0644)

	cache := &fakeCache{}
	a := NewAdapter(path, cache, 0, 0)
	w, err := NewWatcher(path, a, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	ok := waitFor(t, 2*time.Second, func() bool {
		updates, _ := cache.counts()
		return updates >= 1
	})
	if !ok {
		t.Fatal("Expected the pre-existing file to be read at startup")
	}
}

func TestWatcherDeliversChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Status.json")

	cache := &fakeCache{}
	a := NewAdapter(path, cache, 2, 5*time.Millisecond)
	w, err := NewWatcher(path, a, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	os.WriteFile(path, []byte(`{"Flags": 1}`), 0644)

	ok := waitFor(t, 3*time.Second, func() bool {
		updates, _ := cache.counts()
		return updates >= 1
	})
	if !ok {
		t.Fatal("Expected at least one update after the file appeared")
	}
}
