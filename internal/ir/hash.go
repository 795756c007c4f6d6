package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainBatch      = "srcid/batch/v1"
	DomainResolution = "srcid/resolution/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BatchHash computes the content-addressed identity of a source batch.
// Order is significant: it decides which edge wins when several originals
// map onto the same bundle.
func BatchHash(sources []Source) (string, error) {
	list := make([]any, len(sources))
	for i, s := range sources {
		list[i] = s.CanonicalMap()
	}

	canonical, err := MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("BatchHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBatch, canonical), nil
}

// ResolutionHash computes the content-addressed identity of resolved output.
// Two runs over the same batch must produce the same hash.
func ResolutionHash(resolved []ResolvedSource) (string, error) {
	list := make([]any, len(resolved))
	for i, r := range resolved {
		list[i] = r.CanonicalMap()
	}

	canonical, err := MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("ResolutionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainResolution, canonical), nil
}

// MustBatchHash is like BatchHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustBatchHash(sources []Source) string {
	h, err := BatchHash(sources)
	if err != nil {
		panic(err)
	}
	return h
}
