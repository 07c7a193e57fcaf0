package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/elite-status-check/backend/internal/models"
)

// EventSink is the slice of the store the tailer writes to.
type EventSink interface {
	Append(models.JournalEvent) error
	Flush() error
}

// jumpEvents are the events that move the commander between star systems.
var jumpEvents = map[string]bool{
	"FSDJump":     true,
	"Location":    true,
	"CarrierJump": true,
}

// Tailer polls the journal directory, follows the newest journal file and
// feeds appended lines into the sink. Only complete lines are consumed;
// a partially written trailing line waits for the next scan.
type Tailer struct {
	dir      string
	pattern  string
	interval time.Duration
	sink     EventSink

	file   string
	offset int64

	mu            sync.RWMutex
	currentSystem string
	ingested      int64
	skipped       int64
}

// NewTailer creates a tailer over dir matching pattern (e.g. "Journal.*.log").
func NewTailer(dir, pattern string, interval time.Duration, sink EventSink) *Tailer {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Tailer{dir: dir, pattern: pattern, interval: interval, sink: sink}
}

// Run scans immediately and then once per tick until ctx is done.
func (t *Tailer) Run(ctx context.Context) {
	fmt.Printf("[Journal] Tailing %s every %s\n", filepath.Join(t.dir, t.pattern), t.interval)

	if err := t.scan(); err != nil {
		fmt.Printf("[Journal] Scan failed: %v\n", err)
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.scan(); err != nil {
				fmt.Printf("[Journal] Scan failed: %v\n", err)
			}
		}
	}
}

// scan performs one poll cycle: pick the newest journal file, ingest any
// newly appended complete lines, flush the sink.
func (t *Tailer) scan() error {
	latest, err := t.latestJournal()
	if err != nil {
		return err
	}
	if latest == "" {
		return nil
	}

	if latest != t.file {
		t.file = latest
		t.offset = 0
		fmt.Printf("[Journal] Following %s\n", filepath.Base(latest))
	}

	f, err := os.Open(t.file)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat journal: %w", err)
	}
	if info.Size() < t.offset {
		// The file shrank under us; start over.
		t.offset = 0
	}
	if info.Size() == t.offset {
		return nil
	}

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek journal: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	consumed := bytes.LastIndexByte(data, '\n') + 1
	if consumed == 0 {
		return nil
	}

	for _, line := range bytes.Split(data[:consumed], []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		t.ingestLine(line)
	}
	t.offset += int64(consumed)

	return t.sink.Flush()
}

func (t *Tailer) ingestLine(line []byte) {
	var entry struct {
		Timestamp  time.Time `json:"timestamp"`
		Event      string    `json:"event"`
		StarSystem string    `json:"StarSystem"`
	}
	if err := json.Unmarshal(line, &entry); err != nil || entry.Event == "" {
		t.mu.Lock()
		t.skipped++
		t.mu.Unlock()
		return
	}

	ev := models.JournalEvent{
		Timestamp:  entry.Timestamp,
		Event:      entry.Event,
		StarSystem: entry.StarSystem,
		Raw:        string(line),
	}
	if err := t.sink.Append(ev); err != nil {
		fmt.Printf("[Journal] Append failed: %v\n", err)
		return
	}

	t.mu.Lock()
	t.ingested++
	if jumpEvents[entry.Event] && entry.StarSystem != "" {
		t.currentSystem = entry.StarSystem
	}
	t.mu.Unlock()
}

// latestJournal returns the journal file with the newest modify time, or
// "" when none exists yet.
func (t *Tailer) latestJournal() (string, error) {
	matches, err := filepath.Glob(filepath.Join(t.dir, t.pattern))
	if err != nil {
		return "", fmt.Errorf("glob journals: %w", err)
	}

	var newest string
	var newestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = m
			newestMod = info.ModTime()
		}
	}
	return newest, nil
}

// CurrentSystem returns the last star system seen in a jump/location
// event. The bool is false until one has been observed.
func (t *Tailer) CurrentSystem() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.currentSystem, t.currentSystem != ""
}

// Ingested returns the number of events fed to the sink.
func (t *Tailer) Ingested() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ingested
}

// Skipped returns the number of unparseable lines dropped.
func (t *Tailer) Skipped() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.skipped
}
