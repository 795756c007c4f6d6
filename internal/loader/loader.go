// Package loader reads source announcement batches from files.
//
// Supported formats, chosen by extension:
//   - .json: a JSON array of announcements, or one announcement per line
//   - .ndjson, .jsonl: one announcement per line
//   - .yaml, .yml: a mapping with a top-level sources list
//   - .cue: a CUE file with a top-level sources list
//
// Every format uses the protocol field names (sourceId, kind, url,
// generatedSourceIds, contentHash). Unknown fields and unknown kinds are
// rejected here, at the type boundary, never by the engine.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/srcid/internal/ir"
)

// Error codes reported by LoadError.
const (
	ErrCodeNotFound    = "E005" // File not found or unreadable
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeUnsupported = "E008" // Unknown file extension
	ErrCodeDecode      = "E009" // Syntax or schema error
)

// LoadError represents an error that occurred while loading a batch.
type LoadError struct {
	Code    string
	Message string
	File    string
	Line    int       // 1-based line for JSON lines and YAML, 0 if unknown
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	switch {
	case e.Pos.IsValid():
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Format identifies a batch file encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatCUE   Format = "cue"
)

// DetectFormat picks the format from a file extension.
func DetectFormat(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".ndjson", ".jsonl":
		return FormatJSONL, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".cue":
		return FormatCUE, true
	}
	return "", false
}

// Load reads all announcements from path, in file order.
func Load(path string) ([]ir.Announcement, error) {
	format, ok := DetectFormat(path)
	if !ok {
		return nil, &LoadError{
			Code:    ErrCodeUnsupported,
			Message: fmt.Sprintf("unsupported file extension %q (want .json, .ndjson, .jsonl, .yaml, .yml or .cue)", filepath.Ext(path)),
			File:    path,
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error(), File: path}
	}
	return Decode(path, format, data)
}

// Decode parses data in the given format. name only appears in errors.
func Decode(name string, format Format, data []byte) ([]ir.Announcement, error) {
	var (
		anns []ir.Announcement
		err  error
	)
	switch format {
	case FormatJSON:
		anns, err = decodeJSON(name, data)
	case FormatJSONL:
		anns, err = decodeJSONLines(name, data)
	case FormatYAML:
		anns, err = decodeYAML(name, data)
	case FormatCUE:
		anns, err = decodeCUE(name, data)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unknown format %q", format), File: name}
	}
	if err != nil {
		return nil, err
	}
	if anns == nil {
		anns = []ir.Announcement{}
	}
	return anns, nil
}
