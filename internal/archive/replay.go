package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Lookup finds the recorded exchange for a request. It tries the
// content-addressed hash first; when no exact capture exists it falls
// back to the earliest exchange for the same (method, url), which is
// how replayed forms with regenerated field values still resolve.
//
// Returns found=false when neither lookup matches.
func (a *Archive) Lookup(ctx context.Context, session, method, url, requestHash string) (*Exchange, bool, error) {
	ex, err := a.lookupOne(ctx, `
		SELECT session_id, seq, method, url, request_hash, status, resp_headers, resp_body
		FROM exchanges
		WHERE session_id = ? AND request_hash = ?
		ORDER BY seq ASC, id ASC
		LIMIT 1
	`, session, requestHash)
	if err != nil {
		return nil, false, err
	}
	if ex != nil {
		return ex, true, nil
	}

	ex, err = a.lookupOne(ctx, `
		SELECT session_id, seq, method, url, request_hash, status, resp_headers, resp_body
		FROM exchanges
		WHERE session_id = ? AND method = ? AND url = ?
		ORDER BY seq ASC, id ASC
		LIMIT 1
	`, session, method, url)
	if err != nil {
		return nil, false, err
	}
	if ex != nil {
		return ex, true, nil
	}

	return nil, false, nil
}

// Exchanges returns every exchange of a session in recording order.
// Returns an empty slice (not nil) when the session has no traffic.
func (a *Archive) Exchanges(ctx context.Context, session string) ([]Exchange, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT session_id, seq, method, url, request_hash, status, resp_headers, resp_body
		FROM exchanges
		WHERE session_id = ?
		ORDER BY seq ASC, id ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	exchanges := []Exchange{}
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, err
		}
		exchanges = append(exchanges, *ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchanges: %w", err)
	}

	return exchanges, nil
}

// Sessions returns every recorded session, oldest first.
func (a *Archive) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, base_url, note, created_at
		FROM sessions
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var s Session
		var created int64
		if err := rows.Scan(&s.ID, &s.BaseURL, &s.Note, &created); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.CreatedAt = time.Unix(created, 0).UTC()
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// CountExchanges returns how many exchanges a session holds.
func (a *Archive) CountExchanges(ctx context.Context, session string) (int64, error) {
	var n int64
	err := a.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM exchanges WHERE session_id = ?
	`, session).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count exchanges: %w", err)
	}
	return n, nil
}

func (a *Archive) lookupOne(ctx context.Context, query string, args ...any) (*Exchange, error) {
	row := a.db.QueryRowContext(ctx, query, args...)
	ex, err := scanExchange(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ex, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExchange(row scanner) (*Exchange, error) {
	var ex Exchange
	var headers string
	err := row.Scan(
		&ex.Session,
		&ex.Seq,
		&ex.Method,
		&ex.URL,
		&ex.RequestHash,
		&ex.Status,
		&headers,
		&ex.Body,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan exchange: %w", err)
	}

	ex.Header = http.Header{}
	if headers != "" {
		if err := json.Unmarshal([]byte(headers), &ex.Header); err != nil {
			return nil, fmt.Errorf("scan exchange: headers: %w", err)
		}
	}

	return &ex, nil
}
