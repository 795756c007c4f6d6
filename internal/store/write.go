package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/srcid/internal/ir"
)

// WriteSession registers a session. seq is the logical time it was opened.
// Uses ON CONFLICT(id) DO NOTHING; re-registering keeps the original seq.
func (s *Store) WriteSession(ctx context.Context, id string, seq int64) error {
	if id == "" {
		return fmt.Errorf("write session: empty id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, seq)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, seq)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteSource appends a source to a session.
// Returns whether a new row was inserted.
//
// Re-writing identical content is a no-op. Different content under an id
// the session already holds returns ErrConflictingSource.
//
// Note: The session must exist (foreign key constraint).
func (s *Store) WriteSource(ctx context.Context, sessionID string, seq int64, src ir.Source) (inserted bool, err error) {
	links, err := marshalLinks(src)
	if err != nil {
		return false, fmt.Errorf("write source: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write source: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO sources
		(session_id, id, kind, url, content_hash, links, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, id) DO NOTHING
	`,
		sessionID,
		src.ID,
		string(src.Kind),
		src.URL,
		src.ContentHash,
		links,
		seq,
	)
	if err != nil {
		return false, fmt.Errorf("write source: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write source: rows affected: %w", err)
	}

	if affected == 0 {
		row := tx.QueryRowContext(ctx, `
			SELECT id, kind, url, content_hash, links, seq
			FROM sources
			WHERE session_id = ? AND id = ?
		`, sessionID, src.ID)
		existing, _, err := scanSource(row)
		if err != nil {
			return false, fmt.Errorf("write source: read existing: %w", err)
		}
		if !existing.Equal(src) {
			return false, fmt.Errorf("write source %q: %w", src.ID, ErrConflictingSource)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write source: commit: %w", err)
	}
	return affected > 0, nil
}

// WriteResolution caches resolved output for the batch identified by batchHash.
// Uses ON CONFLICT DO NOTHING: a batch hash always maps to the same output.
func (s *Store) WriteResolution(ctx context.Context, sessionID, batchHash string, resolved []ir.ResolvedSource) error {
	payload, err := marshalResolved(resolved)
	if err != nil {
		return fmt.Errorf("write resolution: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resolutions
		(session_id, batch_hash, payload, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id, batch_hash) DO NOTHING
	`,
		sessionID,
		batchHash,
		payload,
		ir.EngineVersion,
		ir.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write resolution: %w", err)
	}
	return nil
}

// sessionExists reports whether a session row exists.
func (s *Store) sessionExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
