package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/roach88/srcid/internal/ir"
)

func TestReadSources_BatchOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, "sess", 1)

	// Same seq falls back to binary id order.
	writes := []struct {
		seq int64
		src ir.Source
	}{
		{3, ir.NewPrettyPrinted("pp", "/bundle.js", "b")},
		{1, ir.NewSource("b", ir.KindScriptSource, "/bundle.js", "h")},
		{2, ir.NewSource("o2", ir.KindSourceMapped, "/b.ts", "", "b")},
		{2, ir.NewSource("O1", ir.KindSourceMapped, "/a.ts", "", "b")},
	}
	for _, w := range writes {
		if _, err := s.WriteSource(ctx, "sess", w.seq, w.src); err != nil {
			t.Fatalf("WriteSource(%q) failed: %v", w.src.ID, err)
		}
	}

	got, err := s.ReadSources(ctx, "sess")
	if err != nil {
		t.Fatalf("ReadSources() failed: %v", err)
	}

	var ids []string
	for _, src := range got {
		ids = append(ids, src.ID)
	}
	want := []string{"b", "O1", "o2", "pp"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}

	for i, w := range []ir.Source{writes[1].src, writes[3].src, writes[2].src, writes[0].src} {
		if !got[i].Equal(w) {
			t.Errorf("source %d = %+v, want %+v", i, got[i], w)
		}
	}
	if base, ok := got[3].BaseID(); !ok || base != "b" {
		t.Errorf("pretty-printed base = %q, %v", base, ok)
	}
}

func TestReadSources_EmptySession(t *testing.T) {
	s := createTestStore(t)
	createTestSession(t, s, "sess", 1)

	got, err := s.ReadSources(context.Background(), "sess")
	if err != nil {
		t.Fatalf("ReadSources() failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestReadSources_UnknownSession(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadSources(context.Background(), "missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestReadResolution_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, "sess", 1)

	resolved := []ir.ResolvedSource{
		{
			ID:                     "1",
			Kind:                   ir.KindScriptSource,
			URL:                    "/bundle.js",
			ContentHash:            "h",
			CanonicalID:            "o1",
			Generated:              []string{},
			GeneratedFrom:          []string{"o1"},
			PrettyPrinted:          "pp1",
			CorrespondingSourceIDs: []string{},
		},
		{
			ID:                     "pp1",
			Kind:                   ir.KindPrettyPrinted,
			CanonicalID:            "o1",
			Generated:              []string{},
			GeneratedFrom:          []string{},
			PrettyPrintedFrom:      "1",
			CorrespondingSourceIDs: []string{},
		},
	}
	if err := s.WriteResolution(ctx, "sess", "abc", resolved); err != nil {
		t.Fatalf("WriteResolution() failed: %v", err)
	}

	got, found, err := s.ReadResolution(ctx, "sess", "abc")
	if err != nil {
		t.Fatalf("ReadResolution() failed: %v", err)
	}
	if !found {
		t.Fatal("resolution not found")
	}
	if !reflect.DeepEqual(got, resolved) {
		t.Errorf("got %+v\nwant %+v", got, resolved)
	}
}

func TestReadResolution_Missing(t *testing.T) {
	s := createTestStore(t)
	createTestSession(t, s, "sess", 1)

	got, found, err := s.ReadResolution(context.Background(), "sess", "nope")
	if err != nil {
		t.Fatalf("ReadResolution() failed: %v", err)
	}
	if found || got != nil {
		t.Errorf("expected miss, got found=%v %v", found, got)
	}
}

func TestListSessions_Summaries(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, "b", 2)
	createTestSession(t, s, "a", 2)
	createTestSession(t, s, "first", 1)

	if _, err := s.WriteSource(ctx, "a", 7, ir.NewSource("1", ir.KindOther, "", "")); err != nil {
		t.Fatalf("WriteSource() failed: %v", err)
	}

	got, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() failed: %v", err)
	}
	want := []SessionInfo{
		{ID: "first", Seq: 1},
		{ID: "a", Seq: 2, Sources: 1, MaxSeq: 7},
		{ID: "b", Seq: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestListSessions_Empty(t *testing.T) {
	s := createTestStore(t)
	got, err := s.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions() failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
