package loader

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/srcid/internal/ir"
)

// cueFields lists the fields an announcement may carry in CUE.
var cueFields = map[string]bool{
	"sourceId":           true,
	"kind":               true,
	"url":                true,
	"generatedSourceIds": true,
	"contentHash":        true,
}

// decodeCUE compiles a single CUE file and extracts its sources list.
// Uses CUE SDK's Go API directly (not CLI subprocess).
func decodeCUE(name string, data []byte) ([]ir.Announcement, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, convertCUEError(err, ErrCodeBuildFailed)
	}

	sourcesVal := value.LookupPath(cue.ParsePath("sources"))
	if !sourcesVal.Exists() {
		return nil, nil
	}
	if sourcesVal.Kind() != cue.ListKind {
		return nil, &LoadError{Code: ErrCodeDecode, Message: "sources must be a list", Pos: sourcesVal.Pos()}
	}

	iter, err := sourcesVal.List()
	if err != nil {
		return nil, convertCUEError(err, ErrCodeDecode)
	}

	var anns []ir.Announcement
	for iter.Next() {
		a, err := parseCUEAnnouncement(iter.Value())
		if err != nil {
			return nil, err
		}
		anns = append(anns, a)
	}
	return anns, nil
}

func parseCUEAnnouncement(v cue.Value) (ir.Announcement, error) {
	var a ir.Announcement

	fields, err := v.Fields()
	if err != nil {
		return a, convertCUEError(err, ErrCodeDecode)
	}
	for fields.Next() {
		label := fields.Selector().String()
		if !cueFields[label] {
			return a, &LoadError{
				Code:    ErrCodeDecode,
				Message: fmt.Sprintf("unknown field %q", label),
				Pos:     fields.Value().Pos(),
			}
		}
	}

	if a.SourceID, err = cueString(v, "sourceId", true); err != nil {
		return a, err
	}
	kind, err := cueString(v, "kind", true)
	if err != nil {
		return a, err
	}
	if a.Kind, err = ir.ParseKind(kind); err != nil {
		return a, &LoadError{Code: ErrCodeDecode, Message: err.Error(), Pos: v.LookupPath(cue.ParsePath("kind")).Pos()}
	}
	if a.URL, err = cueString(v, "url", false); err != nil {
		return a, err
	}
	if a.ContentHash, err = cueString(v, "contentHash", false); err != nil {
		return a, err
	}

	idsVal := v.LookupPath(cue.ParsePath("generatedSourceIds"))
	if idsVal.Exists() {
		ids, err := idsVal.List()
		if err != nil {
			return a, convertCUEError(err, ErrCodeDecode)
		}
		a.GeneratedSourceIDs = []string{}
		for ids.Next() {
			id, err := ids.Value().String()
			if err != nil {
				return a, convertCUEError(err, ErrCodeDecode)
			}
			a.GeneratedSourceIDs = append(a.GeneratedSourceIDs, id)
		}
	}
	return a, nil
}

// cueString reads a string field. Missing optional fields yield "".
func cueString(v cue.Value, field string, required bool) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		if required {
			return "", &LoadError{Code: ErrCodeDecode, Message: field + " is required", Pos: v.Pos()}
		}
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", convertCUEError(err, ErrCodeDecode)
	}
	return s, nil
}

// convertCUEError extracts position info from CUE errors.
func convertCUEError(err error, code string) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	first := errs[0]
	loadErr := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}
