// Package journal follows the game's journal log files and keeps an
// embedded, queryable history of their events.
package journal

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/marcboeker/go-duckdb"

	"github.com/elite-status-check/backend/internal/models"
)

// Store is a DuckDB-backed journal event store. Events are buffered and
// written through a DuckDB appender in batches; queries flush pending
// rows first so readers always see everything ingested so far.
type Store struct {
	db     *sql.DB
	dbPath string

	mu        sync.Mutex
	batch     []*models.JournalEvent
	batchSize int
	seq       int64

	querySem chan struct{}
}

// NewStore opens (or creates) the journal database at dbPath. An empty
// path opens an in-memory database, useful for tests and for running
// without persistence.
func NewStore(dbPath string) (*Store, error) {
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='512MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS journal_events (
			seq         BIGINT NOT NULL,
			ts          TIMESTAMP NOT NULL,
			event       VARCHAR NOT NULL,
			star_system VARCHAR,
			raw         VARCHAR
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal_events table: %w", err)
	}

	// Resume the sequence when reopening a persisted database.
	var maxSeq int64
	if err := db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM journal_events`).Scan(&maxSeq); err != nil {
		db.Close()
		return nil, fmt.Errorf("read max seq: %w", err)
	}

	where := dbPath
	if where == "" {
		where = "in-memory"
	}
	fmt.Printf("[JournalStore] Database ready (%s, %d events)\n", where, maxSeq)

	return &Store{
		db:        db,
		dbPath:    dbPath,
		batch:     make([]*models.JournalEvent, 0, 256),
		batchSize: 256,
		seq:       maxSeq,
		querySem:  make(chan struct{}, 3),
	}, nil
}

// Append queues one event for ingestion and assigns its sequence number.
func (s *Store) Append(ev models.JournalEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	ev.Seq = s.seq
	s.batch = append(s.batch, &ev)

	if len(s.batch) >= s.batchSize {
		return s.flushLocked()
	}
	return nil
}

// Flush writes all queued events to the database.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if len(s.batch) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection for append: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection type %T", driverConn)
		}
		appender, err := duckdb.NewAppenderFromConn(dConn, "", "journal_events")
		if err != nil {
			return fmt.Errorf("create appender: %w", err)
		}
		defer appender.Close()

		for _, ev := range s.batch {
			if err := appender.AppendRow(ev.Seq, ev.Timestamp, ev.Event, ev.StarSystem, ev.Raw); err != nil {
				return fmt.Errorf("append event %d: %w", ev.Seq, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return err
	}

	s.batch = s.batch[:0]
	return nil
}

func (s *Store) acquireQuerySlot(ctx context.Context) (func(), error) {
	select {
	case s.querySem <- struct{}{}:
		return func() { <-s.querySem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Events returns one page of stored events, newest first, optionally
// filtered to a single event type. Page numbers start at 1.
func (s *Store) Events(ctx context.Context, page, pageSize int, event string) (*models.JournalEventsPage, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}
	release, err := s.acquireQuerySlot(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 1000 {
		pageSize = 100
	}

	countQuery := `SELECT COUNT(*) FROM journal_events`
	listQuery := `
		SELECT seq, ts, event, star_system, raw
		FROM journal_events
		ORDER BY ts DESC, seq DESC
		LIMIT ? OFFSET ?
	`
	args := []any{pageSize, (page - 1) * pageSize}
	countArgs := []any{}
	if event != "" {
		countQuery = `SELECT COUNT(*) FROM journal_events WHERE event = ?`
		listQuery = `
			SELECT seq, ts, event, star_system, raw
			FROM journal_events
			WHERE event = ?
			ORDER BY ts DESC, seq DESC
			LIMIT ? OFFSET ?
		`
		args = []any{event, pageSize, (page - 1) * pageSize}
		countArgs = []any{event}
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := make([]models.JournalEvent, 0, pageSize)
	for rows.Next() {
		var ev models.JournalEvent
		var system, raw sql.NullString
		if err := rows.Scan(&ev.Seq, &ev.Timestamp, &ev.Event, &system, &raw); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.StarSystem = system.String
		ev.Raw = raw.String
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.JournalEventsPage{
		Events:   events,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// EventTypeCounts returns how many events are stored per event type,
// most frequent first.
func (s *Store) EventTypeCounts(ctx context.Context) ([]models.EventTypeCount, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}
	release, err := s.acquireQuerySlot(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := s.db.QueryContext(ctx, `
		SELECT event, COUNT(*) AS n
		FROM journal_events
		GROUP BY event
		ORDER BY n DESC, event ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query event counts: %w", err)
	}
	defer rows.Close()

	var counts []models.EventTypeCount
	for rows.Next() {
		var c models.EventTypeCount
		if err := rows.Scan(&c.Event, &c.Count); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// LatestSystem returns the star system named by the most recent
// jump/location event, or "" when none is stored.
func (s *Store) LatestSystem(ctx context.Context) (string, error) {
	if err := s.Flush(); err != nil {
		return "", err
	}
	release, err := s.acquireQuerySlot(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	var system string
	err = s.db.QueryRowContext(ctx, `
		SELECT star_system
		FROM journal_events
		WHERE event IN ('FSDJump', 'Location', 'CarrierJump')
		  AND star_system IS NOT NULL AND star_system <> ''
		ORDER BY ts DESC, seq DESC
		LIMIT 1
	`).Scan(&system)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query latest system: %w", err)
	}
	return system, nil
}

// Count returns the number of stored events.
func (s *Store) Count(ctx context.Context) (int64, error) {
	if err := s.Flush(); err != nil {
		return 0, err
	}
	release, err := s.acquireQuerySlot(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_events`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close flushes pending events and closes the database.
func (s *Store) Close() error {
	if err := s.Flush(); err != nil {
		fmt.Printf("[JournalStore] Flush on close failed: %v\n", err)
	}
	return s.db.Close()
}
