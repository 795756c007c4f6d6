package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/srcid/internal/ir"
)

// SessionInfo summarizes a stored session.
type SessionInfo struct {
	ID      string `json:"id"`
	Seq     int64  `json:"seq"`
	Sources int    `json:"sources"`
	MaxSeq  int64  `json:"max_seq"`
}

// ListSessions returns every session ordered by seq ASC, id ASC COLLATE BINARY.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.seq, COUNT(src.id), COALESCE(MAX(src.seq), 0)
		FROM sessions s
		LEFT JOIN sources src ON src.session_id = s.id
		GROUP BY s.id, s.seq
		ORDER BY s.seq ASC, s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionInfo{}
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.Seq, &info.Sources, &info.MaxSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadSources returns a session's sources in batch order: seq ASC, then
// id ASC COLLATE BINARY. Returns ErrSessionNotFound for unknown sessions
// and an empty slice (not nil) for sessions without sources.
func (s *Store) ReadSources(ctx context.Context, sessionID string) ([]ir.Source, error) {
	ok, err := s.sessionExists(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("read sources %q: %w", sessionID, ErrSessionNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, url, content_hash, links, seq
		FROM sources
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	sources := []ir.Source{}
	for rows.Next() {
		src, _, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return sources, nil
}

// ReadResolution returns cached output for a batch hash.
// found is false when nothing was cached for that exact batch.
func (s *Store) ReadResolution(ctx context.Context, sessionID, batchHash string) (resolved []ir.ResolvedSource, found bool, err error) {
	var payload string
	err = s.db.QueryRowContext(ctx, `
		SELECT payload
		FROM resolutions
		WHERE session_id = ? AND batch_hash = ?
	`, sessionID, batchHash).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read resolution: %w", err)
	}

	resolved, err = unmarshalResolved(payload)
	if err != nil {
		return nil, false, fmt.Errorf("read resolution: %w", err)
	}
	return resolved, true, nil
}

// MaxSeq returns the highest source seq in a session, or 0 when empty.
// Used to resume a logical clock after restore.
func (s *Store) MaxSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0)
		FROM sources
		WHERE session_id = ?
	`, sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSource scans a row of (id, kind, url, content_hash, links, seq).
func scanSource(row rowScanner) (ir.Source, int64, error) {
	var (
		src   ir.Source
		kind  string
		links string
		seq   int64
	)
	if err := row.Scan(&src.ID, &kind, &src.URL, &src.ContentHash, &links, &seq); err != nil {
		return ir.Source{}, 0, fmt.Errorf("scan source: %w", err)
	}

	var err error
	src.Kind, err = ir.ParseKind(kind)
	if err != nil {
		return ir.Source{}, 0, fmt.Errorf("scan source %q: %w", src.ID, err)
	}
	src.Links, err = unmarshalLinks(src.Kind, links)
	if err != nil {
		return ir.Source{}, 0, fmt.Errorf("scan source %q: %w", src.ID, err)
	}
	return src, seq, nil
}
