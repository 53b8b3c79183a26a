package qbench

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Ticket statuses. A ticket moves submitted -> resolved or
// submitted -> failed exactly once.
const (
	TicketSubmitted = "submitted"
	TicketResolved  = "resolved"
	TicketFailed    = "failed"
)

// Ticket is one durable record of a remote submission: the backend handle
// plus everything a later process needs to regenerate the trial's input
// vector and decode the eventual counts.
type Ticket struct {
	ID           string
	Scheme       SchemeID
	Size         int
	Shots        int
	Distribution string
	Seed         int64
	Handle       string
	SubmittedAt  time.Time
	Status       string
	Error        string
}

/*
JobLedger persists remote submissions in SQLite so that a resolving
invocation, possibly a different process days later, can find every
outstanding job. Writes are synchronous: RecordSubmission does not return
until the ticket is on disk, so a crash immediately after a successful
submit never loses the handle.
*/
type JobLedger struct {
	db *sql.DB
}

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS tickets (
	id           TEXT PRIMARY KEY,
	scheme       TEXT NOT NULL,
	size         INTEGER NOT NULL,
	shots        INTEGER NOT NULL,
	dist         TEXT NOT NULL,
	seed         INTEGER NOT NULL,
	handle       TEXT NOT NULL,
	submitted_at TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'submitted',
	error        TEXT NOT NULL DEFAULT '',
	resolved_at  TEXT
);
CREATE INDEX IF NOT EXISTS tickets_status ON tickets(status);
`

// OpenJobLedger opens (creating if needed) the ledger database at path.
func OpenJobLedger(path string) (*JobLedger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	// Full synchronous mode: a submission handle must survive power loss.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrLedgerCorrupt, err)
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", ErrLedgerCorrupt, err)
	}

	return &JobLedger{db: db}, nil
}

// RecordSubmission persists a new ticket in the submitted state. It
// returns only after the row is durable.
func (l *JobLedger) RecordSubmission(t Ticket) error {
	_, err := l.db.Exec(
		`INSERT INTO tickets (id, scheme, size, shots, dist, seed, handle, submitted_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Scheme), t.Size, t.Shots, t.Distribution, t.Seed,
		t.Handle, t.SubmittedAt.UTC().Format(time.RFC3339Nano), TicketSubmitted,
	)
	if err != nil {
		return fmt.Errorf("record submission %s: %w", t.ID, err)
	}
	return nil
}

// Pending returns every ticket still in the submitted state, oldest first.
func (l *JobLedger) Pending() ([]Ticket, error) {
	rows, err := l.db.Query(
		`SELECT id, scheme, size, shots, dist, seed, handle, submitted_at, status, error
		 FROM tickets WHERE status = ? ORDER BY submitted_at`,
		TicketSubmitted,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query pending: %v", ErrLedgerCorrupt, err)
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		var t Ticket
		var scheme, submitted string
		if err := rows.Scan(&t.ID, &scheme, &t.Size, &t.Shots, &t.Distribution,
			&t.Seed, &t.Handle, &submitted, &t.Status, &t.Error); err != nil {
			return nil, fmt.Errorf("%w: scan ticket: %v", ErrLedgerCorrupt, err)
		}
		t.Scheme = SchemeID(scheme)
		ts, err := time.Parse(time.RFC3339Nano, submitted)
		if err != nil {
			return nil, fmt.Errorf("%w: ticket %s timestamp: %v", ErrLedgerCorrupt, t.ID, err)
		}
		t.SubmittedAt = ts
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkResolved transitions a ticket out of the pending set. Repeating the
// call is harmless: the status guard makes the update a no-op.
func (l *JobLedger) MarkResolved(id string) error {
	_, err := l.db.Exec(
		`UPDATE tickets SET status = ?, resolved_at = ? WHERE id = ? AND status = ?`,
		TicketResolved, time.Now().UTC().Format(time.RFC3339Nano), id, TicketSubmitted,
	)
	if err != nil {
		return fmt.Errorf("mark resolved %s: %w", id, err)
	}
	return nil
}

// MarkFailed records a permanent failure for a ticket.
func (l *JobLedger) MarkFailed(id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := l.db.Exec(
		`UPDATE tickets SET status = ?, error = ?, resolved_at = ? WHERE id = ? AND status = ?`,
		TicketFailed, msg, time.Now().UTC().Format(time.RFC3339Nano), id, TicketSubmitted,
	)
	if err != nil {
		return fmt.Errorf("mark failed %s: %w", id, err)
	}
	return nil
}

func (l *JobLedger) Close() error {
	return l.db.Close()
}
