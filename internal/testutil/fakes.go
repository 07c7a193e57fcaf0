// fakes.go - In-memory fakes of the API source interfaces for testing
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/elite-status-check/backend/internal/cargo"
	"github.com/elite-status-check/backend/internal/flags"
	"github.com/elite-status-check/backend/internal/models"
	"github.com/elite-status-check/backend/internal/status"
)

// FakeStatusSource implements api.StatusSource for testing
type FakeStatusSource struct {
	mu       sync.RWMutex
	snapshot *models.StatusSnapshot
	lastErr  error
	updates  int64
}

// NewFakeStatusSource creates an empty fake; Read returns not-yet-available
// until SetSnapshot is called
func NewFakeStatusSource() *FakeStatusSource {
	return &FakeStatusSource{}
}

// SetSnapshot installs the snapshot served by Read and ReadParsed
func (f *FakeStatusSource) SetSnapshot(snap models.StatusSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = &snap
	f.updates++
}

// SetError sets the value returned by LastError
func (f *FakeStatusSource) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastErr = err
}

func (f *FakeStatusSource) Read() (models.StatusSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.snapshot == nil {
		return models.StatusSnapshot{}, status.ErrNotYetAvailable
	}
	return *f.snapshot, nil
}

func (f *FakeStatusSource) ReadParsed() (flags.ParsedFlags, time.Time, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.snapshot == nil {
		return nil, time.Time{}, status.ErrNotYetAvailable
	}
	return flags.Decode(f.snapshot.Flags, f.snapshot.Flags2), f.snapshot.ObservedAt, nil
}

func (f *FakeStatusSource) LastError() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastErr
}

func (f *FakeStatusSource) Populated() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshot != nil
}

func (f *FakeStatusSource) UpdateCount() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.updates
}

// FakeCargoSource implements api.CargoSource for testing
type FakeCargoSource struct {
	mu       sync.RWMutex
	manifest *models.CargoManifest
	err      error
}

// NewFakeCargoSource creates an empty fake; Read returns not-available
// until SetManifest is called
func NewFakeCargoSource() *FakeCargoSource {
	return &FakeCargoSource{}
}

// SetManifest installs the manifest served by Read
func (f *FakeCargoSource) SetManifest(m models.CargoManifest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manifest = &m
	f.err = nil
}

// SetError makes Read fail with err
func (f *FakeCargoSource) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FakeCargoSource) Read() (*models.CargoManifest, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.manifest == nil {
		return nil, cargo.ErrNotAvailable
	}
	m := *f.manifest
	return &m, nil
}

// FakeJournalSource implements api.JournalSource for testing
type FakeJournalSource struct {
	mu     sync.RWMutex
	events []models.JournalEvent
	system string
	err    error
}

// NewFakeJournalSource creates an empty fake journal store
func NewFakeJournalSource() *FakeJournalSource {
	return &FakeJournalSource{}
}

// AddEvent appends one event; events are served newest first
func (f *FakeJournalSource) AddEvent(ev models.JournalEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev.Seq = int64(len(f.events) + 1)
	f.events = append(f.events, ev)
}

// SetSystem sets the value returned by LatestSystem
func (f *FakeJournalSource) SetSystem(system string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.system = system
}

// SetError makes every query fail with err
func (f *FakeJournalSource) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FakeJournalSource) Events(_ context.Context, page, pageSize int, event string) (*models.JournalEventsPage, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.err != nil {
		return nil, f.err
	}

	var filtered []models.JournalEvent
	for i := len(f.events) - 1; i >= 0; i-- {
		if event == "" || f.events[i].Event == event {
			filtered = append(filtered, f.events[i])
		}
	}

	start := (page - 1) * pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return &models.JournalEventsPage{
		Events:   filtered[start:end],
		Total:    int64(len(filtered)),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (f *FakeJournalSource) EventTypeCounts(_ context.Context) ([]models.EventTypeCount, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.err != nil {
		return nil, f.err
	}

	byName := make(map[string]int64)
	for _, ev := range f.events {
		byName[ev.Event]++
	}
	counts := make([]models.EventTypeCount, 0, len(byName))
	for name, count := range byName {
		counts = append(counts, models.EventTypeCount{Event: name, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Event < counts[j].Event
	})
	return counts, nil
}

func (f *FakeJournalSource) LatestSystem(_ context.Context) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.err != nil {
		return "", f.err
	}
	return f.system, nil
}

func (f *FakeJournalSource) Count(_ context.Context) (int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.events)), nil
}

// FakeSystemTracker implements api.SystemTracker for testing
type FakeSystemTracker struct {
	mu     sync.RWMutex
	system string
	known  bool
}

// NewFakeSystemTracker creates a tracker that has not seen a jump yet
func NewFakeSystemTracker() *FakeSystemTracker {
	return &FakeSystemTracker{}
}

// SetSystem sets the tracked system
func (f *FakeSystemTracker) SetSystem(system string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.system = system
	f.known = true
}

func (f *FakeSystemTracker) CurrentSystem() (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.system, f.known
}
