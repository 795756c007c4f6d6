package ir

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAnnouncement_ScriptSource(t *testing.T) {
	src, err := FromAnnouncement(Announcement{
		SourceID:    "1",
		Kind:        KindScriptSource,
		URL:         "/index.js",
		ContentHash: "h",
	})
	require.NoError(t, err)

	assert.Equal(t, "1", src.ID)
	assert.Equal(t, KindScriptSource, src.Kind)
	assert.Equal(t, "/index.js", src.URL)
	assert.Equal(t, "h", src.ContentHash)
	assert.Empty(t, src.ProducedIDs())

	_, ok := src.BaseID()
	assert.False(t, ok)
}

func TestFromAnnouncement_SourceMappedKeepsProducedOrder(t *testing.T) {
	src, err := FromAnnouncement(Announcement{
		SourceID:           "o1",
		Kind:               KindSourceMapped,
		GeneratedSourceIDs: []string{"b", "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, src.ProducedIDs())
}

func TestFromAnnouncement_PrettyPrintedInvertsDirection(t *testing.T) {
	src, err := FromAnnouncement(Announcement{
		SourceID:           "pp1",
		Kind:               KindPrettyPrinted,
		URL:                "/src/index.js",
		GeneratedSourceIDs: []string{"1"},
		ContentHash:        "ignored",
	})
	require.NoError(t, err)

	base, ok := src.BaseID()
	require.True(t, ok)
	assert.Equal(t, "1", base)
	assert.Empty(t, src.ProducedIDs(), "pretty-printed sources never produce anything")
	assert.Empty(t, src.ContentHash, "pretty-printed sources carry no content hash")
}

func TestFromAnnouncement_Malformed(t *testing.T) {
	tests := []struct {
		name string
		ann  Announcement
	}{
		{"empty id", Announcement{Kind: KindScriptSource}},
		{"unknown kind", Announcement{SourceID: "1", Kind: Kind("wasm")}},
		{"pretty-printed without base", Announcement{SourceID: "pp", Kind: KindPrettyPrinted}},
		{"pretty-printed with two bases", Announcement{SourceID: "pp", Kind: KindPrettyPrinted, GeneratedSourceIDs: []string{"1", "2"}}},
		{"pretty-printed of itself", Announcement{SourceID: "pp", Kind: KindPrettyPrinted, GeneratedSourceIDs: []string{"pp"}}},
		{"empty generated id", Announcement{SourceID: "1", Kind: KindHTML, GeneratedSourceIDs: []string{""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromAnnouncement(tt.ann)
			require.Error(t, err)

			var me *MalformedError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.ann.SourceID, me.SourceID)
			assert.Contains(t, err.Error(), ErrCodeMalformedRecord)
		})
	}
}

// A record listing itself is a self edge, not a shape violation.
func TestFromAnnouncement_SelfReferenceAllowed(t *testing.T) {
	src, err := FromAnnouncement(Announcement{SourceID: "1", Kind: KindOther, GeneratedSourceIDs: []string{"1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, src.ProducedIDs())
}

func TestSourceValidate_VariantMustMatchKind(t *testing.T) {
	wrong := Source{ID: "x", Kind: KindScriptSource, Links: PrettyPrintBase{ID: "y"}}
	assert.Error(t, wrong.Validate())

	alsoWrong := Source{ID: "x", Kind: KindPrettyPrinted, Links: Produced{IDs: []string{"y"}}}
	assert.Error(t, alsoWrong.Validate())

	nilLinks := Source{ID: "x", Kind: KindOther}
	assert.NoError(t, nilLinks.Validate())
}

func TestSourceAnnouncementRoundTrip(t *testing.T) {
	sources := []Source{
		NewSource("h1", KindHTML, "/index.html", "h", "2"),
		NewPrettyPrinted("pp1", "/index.js", "1"),
		NewSource("1", KindScriptSource, "", ""),
	}

	for _, src := range sources {
		back, err := FromAnnouncement(src.Announcement())
		require.NoError(t, err)
		assert.True(t, src.Equal(back), "round trip changed %s", src.ID)
	}
}

func TestSourceEqual(t *testing.T) {
	a := NewSource("1", KindScriptSource, "/a.js", "h", "2")
	assert.True(t, a.Equal(NewSource("1", KindScriptSource, "/a.js", "h", "2")))
	assert.False(t, a.Equal(NewSource("1", KindScriptSource, "/a.js", "h2", "2")))
	assert.False(t, a.Equal(NewSource("1", KindScriptSource, "/a.js", "h", "3")))
	assert.False(t, NewPrettyPrinted("p", "", "1").Equal(NewPrettyPrinted("p", "", "2")))
}

func TestNewSourceCopiesProduced(t *testing.T) {
	ids := []string{"a"}
	src := NewSource("1", KindOther, "", "", ids...)
	ids[0] = "mutated"
	assert.Equal(t, []string{"a"}, src.ProducedIDs())
}

func TestAnnouncementJSONUsesProtocolNames(t *testing.T) {
	var a Announcement
	err := json.Unmarshal([]byte(`{"sourceId":"1","kind":"scriptSource","url":"/a.js","generatedSourceIds":["2"],"contentHash":"h"}`), &a)
	require.NoError(t, err)
	assert.Equal(t, Announcement{
		SourceID:           "1",
		Kind:               KindScriptSource,
		URL:                "/a.js",
		GeneratedSourceIDs: []string{"2"},
		ContentHash:        "h",
	}, a)
}

func TestResolvedSourceJSONFieldNaming(t *testing.T) {
	data, err := json.Marshal(ResolvedSource{ID: "1", CanonicalID: "1"})
	require.NoError(t, err)

	assert.Contains(t, string(data), `"canonical_id"`)
	assert.Contains(t, string(data), `"generated_from"`)
	assert.Contains(t, string(data), `"corresponding_source_ids"`)
	assert.NotContains(t, string(data), `"pretty_printed"`, "absent links are omitted")
	assert.NotContains(t, string(data), `"canonicalId"`)
}

func TestCorrespondenceKey(t *testing.T) {
	key, ok := CorrespondenceKey("/index.js", "abc")
	require.True(t, ok)
	assert.Equal(t, "/index.js:abc", key)

	_, ok = CorrespondenceKey("", "abc")
	assert.False(t, ok)
	_, ok = CorrespondenceKey("/index.js", "")
	assert.False(t, ok)
}
