package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchHashDeterminism(t *testing.T) {
	batch := []Source{
		NewSource("1", KindScriptSource, "/index.js", "h"),
		NewSource("o1", KindSourceMapped, "/index.ts", "h", "1"),
	}

	h1, err := BatchHash(batch)
	require.NoError(t, err)
	h2, err := BatchHash(batch)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "BatchHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestBatchHashChangesWithInput(t *testing.T) {
	base := []Source{
		NewSource("1", KindScriptSource, "/index.js", "h"),
		NewSource("2", KindScriptSource, "/other.js", "h"),
	}
	reordered := []Source{base[1], base[0]}
	rehashed := []Source{NewSource("1", KindScriptSource, "/index.js", "h2"), base[1]}

	assert.NotEqual(t, MustBatchHash(base), MustBatchHash(reordered), "order is part of batch identity")
	assert.NotEqual(t, MustBatchHash(base), MustBatchHash(rehashed))
}

func TestBatchHashDistinguishesDirection(t *testing.T) {
	produced := []Source{NewSource("a", KindOther, "", "", "b")}
	pretty := []Source{NewPrettyPrinted("a", "", "b")}
	assert.NotEqual(t, MustBatchHash(produced), MustBatchHash(pretty))
}

func TestResolutionHashDomainSeparation(t *testing.T) {
	empty, err := ResolutionHash(nil)
	require.NoError(t, err)
	assert.NotEqual(t, MustBatchHash(nil), empty, "domains must not collide on identical payloads")
}
