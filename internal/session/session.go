// Package session accumulates source announcements for one recording and
// keeps its resolution current.
//
// The engine is batch-only: a record arriving late can relink the canonical
// identity of records already resolved. A Session therefore never patches a
// previous result. Every accepted announcement marks the cached resolution
// stale and the next Resolution call re-runs the engine on the full batch.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/srcid/internal/engine"
	"github.com/roach88/srcid/internal/ir"
	"github.com/roach88/srcid/internal/store"
)

// Sequencer hands out logical time. Implemented by Clock and by
// testutil.DeterministicClock.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Session is the announcement buffer of one debugging session.
//
// Thread-safety: all methods are safe for concurrent use. Sessions share
// nothing with each other; run one per recording.
type Session struct {
	id     string
	clock  Sequencer
	engine *engine.Engine
	logger *slog.Logger

	mu       sync.Mutex
	records  *store.Memory
	seqs     map[string]int64 // Logical time each source was accepted
	resolved *engine.Resolution
	hash     string // Batch hash resolved was computed from
}

// Option configures a Session.
type Option func(*Session)

// WithEngine sets the engine used to resolve the batch.
func WithEngine(e *engine.Engine) Option {
	return func(s *Session) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithClock sets the logical clock that stamps accepted announcements.
func WithClock(c Sequencer) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty session.
func New(id string, opts ...Option) *Session {
	s := &Session{
		id:      id,
		clock:   NewClock(),
		engine:  engine.New(),
		logger:  slog.Default(),
		records: store.NewMemory(),
		seqs:    make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", id)
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Announce converts and buffers one announcement.
//
// Malformed announcements are rejected before they reach the buffer, so a
// bad record never poisons later resolutions. Re-announcing an identical
// record is a no-op.
func (s *Session) Announce(a ir.Announcement) error {
	src, err := ir.FromAnnouncement(a)
	if err != nil {
		return fmt.Errorf("announce: %w", err)
	}
	return s.Add(src)
}

// Add buffers an already converted source.
func (s *Session) Add(src ir.Source) error {
	if err := src.Validate(); err != nil {
		return fmt.Errorf("add source: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(src, 0)
}

// addLocked appends src, stamping it with seq or the next clock value when
// seq is 0. Caller holds s.mu.
func (s *Session) addLocked(src ir.Source, seq int64) error {
	inserted, err := s.records.Append(src)
	if err != nil {
		return fmt.Errorf("add source: %w", err)
	}
	if !inserted {
		return nil
	}
	if seq == 0 {
		seq = s.clock.Next()
	}
	s.seqs[src.ID] = seq
	s.resolved = nil
	s.hash = ""
	s.logger.Debug("source accepted", "source", src.ID, "kind", src.Kind, "seq", seq)
	return nil
}

// Stale reports whether the next Resolution call has to re-run the engine.
func (s *Session) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved == nil
}

// Len returns the number of buffered sources.
func (s *Session) Len() int {
	return s.records.Len()
}

// Sources returns the buffered batch in acceptance order.
func (s *Session) Sources() []ir.Source {
	return s.records.Snapshot()
}

// Resolution returns the resolution of the full buffered batch, re-running
// the engine when anything was accepted since the last run.
func (s *Session) Resolution() (*engine.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked()
}

func (s *Session) resolveLocked() (*engine.Resolution, error) {
	if s.resolved != nil {
		return s.resolved, nil
	}

	batch := s.records.Snapshot()
	res, err := s.engine.Resolve(batch)
	if err != nil {
		return nil, fmt.Errorf("resolve session %s: %w", s.id, err)
	}
	hash, err := ir.BatchHash(batch)
	if err != nil {
		return nil, fmt.Errorf("resolve session %s: %w", s.id, err)
	}

	s.resolved = res
	s.hash = hash
	s.logger.Debug("session resolved", "sources", res.Len(), "batch_hash", hash)
	return res, nil
}

// Persist writes the session, every buffered source and the current
// resolution to st. Sources already stored are skipped.
//
// Sources are written even when the batch fails to resolve, so a bad batch
// can be inspected and corrected later. The resolution error is returned
// after the sources are stored.
func (s *Session) Persist(ctx context.Context, st *store.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := st.WriteSession(ctx, s.id, s.firstSeqLocked()); err != nil {
		return fmt.Errorf("persist session %s: %w", s.id, err)
	}
	for _, src := range s.records.Snapshot() {
		if _, err := st.WriteSource(ctx, s.id, s.seqs[src.ID], src); err != nil {
			return fmt.Errorf("persist session %s: %w", s.id, err)
		}
	}

	res, err := s.resolveLocked()
	if err != nil {
		s.logger.Warn("persisted unresolvable batch", "error", err)
		return err
	}
	if err := st.WriteResolution(ctx, s.id, s.hash, res.All()); err != nil {
		return fmt.Errorf("persist session %s: %w", s.id, err)
	}
	return nil
}

func (s *Session) firstSeqLocked() int64 {
	var first int64
	for _, seq := range s.seqs {
		if first == 0 || seq < first {
			first = seq
		}
	}
	if first == 0 {
		first = s.clock.Current() + 1
	}
	return first
}

// Restore rebuilds a session from st.
//
// The clock resumes after the highest stored seq. A cached resolution for
// the exact stored batch is reused without running the engine.
func Restore(ctx context.Context, st *store.Store, id string, opts ...Option) (*Session, error) {
	sources, err := st.ReadSources(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}
	maxSeq, err := st.MaxSeq(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}

	opts = append([]Option{WithClock(NewClockAt(maxSeq))}, opts...)
	s := New(id, opts...)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, src := range sources {
		if err := s.addLocked(src, int64(i+1)); err != nil {
			return nil, fmt.Errorf("restore session %s: %w", id, err)
		}
	}

	hash, err := ir.BatchHash(sources)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}
	cached, found, err := st.ReadResolution(ctx, id, hash)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}
	if found {
		s.resolved = engine.NewResolution(cached)
		s.hash = hash
		s.logger.Debug("restored cached resolution", "batch_hash", hash)
	}
	return s, nil
}

// IsConflict reports whether err came from re-announcing an id with
// different content.
func IsConflict(err error) bool {
	return errors.Is(err, store.ErrConflictingSource)
}
