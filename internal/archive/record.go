package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Session identifies one recording run.
type Session struct {
	ID        string
	BaseURL   string
	Note      string
	CreatedAt time.Time
}

// Exchange is one captured request/response pair.
type Exchange struct {
	Session string
	Seq     int64
	Method  string
	URL     string

	// RequestHash is the content-addressed request identity, as
	// computed by RequestHash.
	RequestHash string

	Status int
	Header http.Header
	Body   []byte
}

// BeginSession registers a recording session.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - re-opening an
// existing session keeps its original metadata.
func (a *Archive) BeginSession(ctx context.Context, s Session) error {
	created := s.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO sessions (id, base_url, note, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, s.ID, s.BaseURL, s.Note, created.Unix())
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}

	return nil
}

// PurgeSession removes a session and, via the foreign key cascade,
// every exchange recorded under it. Re-recording a session starts
// from a purge so stale traffic cannot shadow fresh captures.
func (a *Archive) PurgeSession(ctx context.Context, id string) error {
	if _, err := a.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("purge session: %w", err)
	}
	return nil
}

// Record appends an exchange to its session and returns the assigned
// sequence number. The seq is allocated inside a transaction, so
// concurrent captures from browser event handlers serialize cleanly.
func (a *Archive) Record(ctx context.Context, ex Exchange) (int64, error) {
	headers, err := json.Marshal(ex.Header)
	if err != nil {
		return 0, fmt.Errorf("record exchange: marshal headers: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("record exchange: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM exchanges WHERE session_id = ?
	`, ex.Session).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("record exchange: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO exchanges
		(session_id, seq, method, url, request_hash, status, resp_headers, resp_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ex.Session,
		seq,
		ex.Method,
		ex.URL,
		ex.RequestHash,
		ex.Status,
		string(headers),
		ex.Body,
	)
	if err != nil {
		return 0, fmt.Errorf("record exchange: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("record exchange: commit: %w", err)
	}

	return seq, nil
}
