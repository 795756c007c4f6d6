package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/roach88/srcid/internal/ir"
)

// maxLineSize bounds a single JSON line. Announcements are small; a huge
// line means the file is not line-delimited.
const maxLineSize = 1 << 20

// decodeJSON accepts either a JSON array or line-delimited objects.
func decodeJSON(name string, data []byte) ([]ir.Announcement, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return decodeJSONLines(name, data)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var anns []ir.Announcement
	if err := dec.Decode(&anns); err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Message: err.Error(), File: name}
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &LoadError{Code: ErrCodeDecode, Message: "unexpected data after the announcement array", File: name}
	}
	return anns, nil
}

// decodeJSONLines decodes one announcement per non-blank line.
func decodeJSONLines(name string, data []byte) ([]ir.Announcement, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var anns []ir.Announcement
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(text))
		dec.DisallowUnknownFields()

		var a ir.Announcement
		if err := dec.Decode(&a); err != nil {
			return nil, &LoadError{Code: ErrCodeDecode, Message: err.Error(), File: name, Line: line}
		}
		anns = append(anns, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Message: fmt.Sprintf("line %d: %v", line+1, err), File: name}
	}
	return anns, nil
}
