package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/srcid/internal/ir"
)

func TestWriteSession_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	createTestSession(t, s, "sess-1", 1)
	createTestSession(t, s, "sess-1", 99)

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if sessions[0].Seq != 1 {
		t.Errorf("seq = %d, want original 1", sessions[0].Seq)
	}
}

func TestWriteSession_EmptyID(t *testing.T) {
	s := createTestStore(t)
	if err := s.WriteSession(context.Background(), "", 1); err == nil {
		t.Error("expected error for empty session id")
	}
}

func TestWriteSource_IdenticalIsNoOp(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, "sess", 1)

	src := ir.NewSource("1", ir.KindScriptSource, "/a.js", "h")

	inserted, err := s.WriteSource(ctx, "sess", 1, src)
	if err != nil {
		t.Fatalf("first WriteSource() failed: %v", err)
	}
	if !inserted {
		t.Error("first write should insert")
	}

	inserted, err = s.WriteSource(ctx, "sess", 2, src)
	if err != nil {
		t.Fatalf("second WriteSource() failed: %v", err)
	}
	if inserted {
		t.Error("identical rewrite should not insert")
	}

	seq, err := s.MaxSeq(ctx, "sess")
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if seq != 1 {
		t.Errorf("MaxSeq() = %d, want 1 (rewrite must not move seq)", seq)
	}
}

func TestWriteSource_Conflict(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, "sess", 1)

	if _, err := s.WriteSource(ctx, "sess", 1, ir.NewSource("1", ir.KindScriptSource, "/a.js", "h")); err != nil {
		t.Fatalf("WriteSource() failed: %v", err)
	}

	_, err := s.WriteSource(ctx, "sess", 2, ir.NewSource("1", ir.KindScriptSource, "/a.js", "different"))
	if !errors.Is(err, ErrConflictingSource) {
		t.Errorf("expected ErrConflictingSource, got %v", err)
	}
}

func TestWriteSource_SameIDInOtherSession(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, "a", 1)
	createTestSession(t, s, "b", 2)

	if _, err := s.WriteSource(ctx, "a", 1, ir.NewSource("1", ir.KindScriptSource, "/a.js", "h")); err != nil {
		t.Fatalf("WriteSource(a) failed: %v", err)
	}
	if _, err := s.WriteSource(ctx, "b", 1, ir.NewSource("1", ir.KindOther, "/b.js", "")); err != nil {
		t.Errorf("sessions must not share ids: %v", err)
	}
}

func TestWriteSource_UnknownSession(t *testing.T) {
	s := createTestStore(t)
	_, err := s.WriteSource(context.Background(), "missing", 1, ir.NewSource("1", ir.KindOther, "", ""))
	if err == nil {
		t.Error("expected foreign key error for unknown session")
	}
}

func TestWriteResolution_FirstWriteWins(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, "sess", 1)

	first := []ir.ResolvedSource{{ID: "1", Kind: ir.KindScriptSource, CanonicalID: "1"}}
	second := []ir.ResolvedSource{{ID: "1", Kind: ir.KindScriptSource, CanonicalID: "other"}}

	if err := s.WriteResolution(ctx, "sess", "hash", first); err != nil {
		t.Fatalf("WriteResolution() failed: %v", err)
	}
	if err := s.WriteResolution(ctx, "sess", "hash", second); err != nil {
		t.Fatalf("second WriteResolution() failed: %v", err)
	}

	got, found, err := s.ReadResolution(ctx, "sess", "hash")
	if err != nil || !found {
		t.Fatalf("ReadResolution() = found %v, err %v", found, err)
	}
	if got[0].CanonicalID != "1" {
		t.Errorf("CanonicalID = %q, want first write", got[0].CanonicalID)
	}
}
