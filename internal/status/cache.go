// Package status holds the single current status snapshot, refreshed by
// file-change updates and read by request handlers without touching the
// filesystem.
package status

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/elite-status-check/backend/internal/flags"
	"github.com/elite-status-check/backend/internal/models"
)

// Cache owns the current StatusSnapshot. One writer (the watch callback)
// mutates it; readers run concurrently and never block on I/O. The
// snapshot is replaced whole, never mutated field by field, so a reader
// can never observe a half-written state.
type Cache struct {
	mu       sync.RWMutex
	snapshot *models.StatusSnapshot
	lastErr  error
	updates  int64

	onUpdate func(models.StatusSnapshot)
	now      func() time.Time
}

// NewCache creates an empty cache in the uninitialized state.
func NewCache() *Cache {
	return &Cache{now: time.Now}
}

// SetOnUpdate registers a hook invoked after every accepted update with a
// copy of the new snapshot. The hook runs outside the cache lock. Set it
// during wiring, before updates start flowing.
func (c *Cache) SetOnUpdate(fn func(models.StatusSnapshot)) {
	c.onUpdate = fn
}

// Update parses raw file bytes and, on success, replaces the snapshot
// wholesale and clears the last error. Malformed content leaves the prior
// snapshot intact and records the failure. Update never fails to the
// caller: a transient partial write by the game process must not take the
// monitor down.
func (c *Cache) Update(raw []byte) {
	snap, err := parseSnapshot(raw, c.now())
	if err != nil {
		c.recordError(err)
		return
	}

	c.mu.Lock()
	first := c.snapshot == nil
	c.snapshot = snap
	c.lastErr = nil
	c.updates++
	copied := copySnapshot(snap)
	c.mu.Unlock()

	if first {
		fmt.Printf("[StatusCache] First snapshot captured (flags=%d flags2=%d)\n", snap.Flags, snap.Flags2)
	}
	if c.onUpdate != nil {
		c.onUpdate(copied)
	}
}

// RecordFailure notes a read failure from the watch side without touching
// the snapshot. Same absorb semantics as a malformed update.
func (c *Cache) RecordFailure(err error) {
	if err == nil {
		return
	}
	c.recordError(fmt.Errorf("%w: %v", ErrTransientRead, err))
}

func (c *Cache) recordError(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	fmt.Printf("[StatusCache] Update failed: %v\n", err)
}

// Read returns a copy of the current snapshot, or ErrNotYetAvailable if
// no update has ever succeeded.
func (c *Cache) Read() (models.StatusSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return models.StatusSnapshot{}, ErrNotYetAvailable
	}
	return copySnapshot(c.snapshot), nil
}

// ReadParsed decodes the current snapshot's bitmasks on every call. The
// decoded set is never cached; recomputing 52 bit tests is cheaper than
// invalidation bookkeeping.
func (c *Cache) ReadParsed() (flags.ParsedFlags, time.Time, error) {
	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()
	if snap == nil {
		return nil, time.Time{}, ErrNotYetAvailable
	}
	return flags.Decode(snap.Flags, snap.Flags2), snap.ObservedAt, nil
}

// LastError returns the most recent update failure, or nil after a
// successful update.
func (c *Cache) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Populated reports whether at least one update has succeeded.
func (c *Cache) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot != nil
}

// UpdateCount returns the number of accepted updates.
func (c *Cache) UpdateCount() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updates
}

func parseSnapshot(raw []byte, observedAt time.Time) (*models.StatusSnapshot, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}

	primary, ok, err := maskField(doc, "Flags")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing Flags field", ErrMalformedContent)
	}

	// Flags2 is absent in pre-on-foot game versions; treat as zero.
	secondary, _, err := maskField(doc, "Flags2")
	if err != nil {
		return nil, err
	}

	return &models.StatusSnapshot{
		Flags:      primary,
		Flags2:     secondary,
		Raw:        doc,
		ObservedAt: observedAt,
	}, nil
}

func maskField(doc map[string]any, key string) (uint32, bool, error) {
	v, ok := doc[key]
	if !ok {
		return 0, false, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false, fmt.Errorf("%w: %s is not a number", ErrMalformedContent, key)
	}
	if f != math.Trunc(f) || f < 0 || f > math.MaxUint32 {
		return 0, false, fmt.Errorf("%w: %s out of range", ErrMalformedContent, key)
	}
	return uint32(f), true, nil
}

func copySnapshot(s *models.StatusSnapshot) models.StatusSnapshot {
	out := *s
	out.Raw = make(map[string]any, len(s.Raw))
	for k, v := range s.Raw {
		out.Raw[k] = v
	}
	return out
}
