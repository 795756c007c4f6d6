package ir

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical encodes v as RFC 8785 canonical JSON. It is the only
// encoding used for hashes and golden snapshots.
//
// Accepted values are string, Kind, int, int64, bool, []string, []any and
// map[string]any. Strings are NFC normalized and only escaped where JSON
// requires it. Object keys sort by UTF-16 code units. null and floats are
// rejected so that no value has two encodings.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		writeCanonicalString(buf, val)
	case Kind:
		writeCanonicalString(buf, string(val))
	case int:
		buf.WriteString(strconv.Itoa(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case []string:
		buf.WriteByte('[')
		for i, s := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, s)
		}
		buf.WriteByte(']')
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		buf.WriteByte('{')
		for i, k := range utf16Keys(val) {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

const hexDigits = "0123456789abcdef"

// writeCanonicalString writes s as a JSON string. Invalid UTF-8 becomes
// U+FFFD. Only the quote, the backslash and C0 controls are escaped, so
// <, >, & and U+2028/U+2029 stay literal.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(strings.ToValidUTF8(s, string(utf8.RuneError)))

	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case c == '\b':
			buf.WriteString(`\b`)
		case c == '\f':
			buf.WriteString(`\f`)
		case c == '\n':
			buf.WriteString(`\n`)
		case c == '\r':
			buf.WriteString(`\r`)
		case c == '\t':
			buf.WriteString(`\t`)
		case c < 0x20:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexDigits[c>>4])
			buf.WriteByte(hexDigits[c&0xf])
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('"')
}

// utf16Keys returns the keys of obj ordered by UTF-16 code units, which
// differs from Go's byte order for characters outside the BMP.
func utf16Keys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
	})
	return keys
}

// CanonicalMap converts a source into the value tree used for hashing.
// Batch order and link direction are both part of a source's identity.
func (s Source) CanonicalMap() map[string]any {
	m := map[string]any{
		"id":   s.ID,
		"kind": string(s.Kind),
	}
	if s.URL != "" {
		m["url"] = s.URL
	}
	if s.ContentHash != "" {
		m["content_hash"] = s.ContentHash
	}
	if base, ok := s.BaseID(); ok {
		m["base_id"] = base
	} else {
		m["produced_ids"] = nonNil(s.ProducedIDs())
	}
	return m
}

// CanonicalMap converts a resolved description into the value tree used
// for hashing and golden snapshots.
func (r ResolvedSource) CanonicalMap() map[string]any {
	m := map[string]any{
		"id":                       r.ID,
		"kind":                     string(r.Kind),
		"canonical_id":             r.CanonicalID,
		"generated":                nonNil(r.Generated),
		"generated_from":           nonNil(r.GeneratedFrom),
		"corresponding_source_ids": nonNil(r.CorrespondingSourceIDs),
	}
	if r.URL != "" {
		m["url"] = r.URL
	}
	if r.ContentHash != "" {
		m["content_hash"] = r.ContentHash
	}
	if r.PrettyPrinted != "" {
		m["pretty_printed"] = r.PrettyPrinted
	}
	if r.PrettyPrintedFrom != "" {
		m["pretty_printed_from"] = r.PrettyPrintedFrom
	}
	return m
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
