package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/srcid/internal/engine"
	"github.com/roach88/srcid/internal/ir"
	"github.com/roach88/srcid/internal/loader"
	"github.com/roach88/srcid/internal/session"
)

// ResolveResult is the JSON payload of resolve and show.
type ResolveResult struct {
	Session    string              `json:"session,omitempty"`
	Sources    []ir.ResolvedSource `json:"sources"`
	Canonicals []string            `json:"canonicals"`
	Hash       string              `json:"hash"`
}

// loadBatch reads a batch file, reporting load failures as command errors.
func loadBatch(formatter *OutputFormatter, path string) ([]ir.Announcement, error) {
	anns, err := loader.Load(path)
	if err != nil {
		var loadErr *loader.LoadError
		if errors.As(err, &loadErr) {
			details := map[string]any{"file": path}
			if loadErr.Line > 0 {
				details["line"] = loadErr.Line
			}
			if loadErr.Pos.IsValid() {
				details["line"] = loadErr.Pos.Line()
				details["column"] = loadErr.Pos.Column()
			}
			return nil, formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, details)
		}
		return nil, formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	formatter.VerboseLog("Loaded %d announcement(s) from %s", len(anns), path)
	return anns, nil
}

// rejectBatch reports a batch the engine refused. Rejections are exit 1:
// the command ran fine, the input is bad.
func rejectBatch(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	switch {
	case engine.IsCyclicRelationship(err):
		code = ErrCodeCyclic
	case engine.IsMalformedRecord(err), session.IsConflict(err):
		code = ErrCodeMalformed
	}

	var details map[string]string
	var re *engine.ResolutionError
	if errors.As(err, &re) {
		details = map[string]string{"resolution_code": string(re.Code)}
		if re.SourceID != "" {
			details["source"] = re.SourceID
		}
		for k, v := range re.Details {
			details[k] = v
		}
	}
	return formatter.Fail(ExitFailure, code, err.Error(), details)
}

// newResolveResult assembles the JSON payload for res.
func newResolveResult(sessionID string, res *engine.Resolution, only string) (ResolveResult, error) {
	hash, err := res.Hash()
	if err != nil {
		return ResolveResult{}, err
	}
	sources := res.All()
	if only != "" {
		d, _ := res.Get(only)
		sources = []ir.ResolvedSource{d}
	}
	return ResolveResult{
		Session:    sessionID,
		Sources:    sources,
		Canonicals: res.Canonicals(),
		Hash:       hash,
	}, nil
}

// outputResolution prints res, or the single source only when set.
func outputResolution(formatter *OutputFormatter, sessionID string, res *engine.Resolution, only string) error {
	if only != "" {
		if _, ok := res.Get(only); !ok {
			return formatter.Fail(ExitCommandError, ErrCodeUnknownID, fmt.Sprintf("source %q not found", only), nil)
		}
	}

	result, err := newResolveResult(sessionID, res, only)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if sessionID != "" {
		fmt.Fprintf(w, "Session %s\n", sessionID)
	}
	for _, d := range result.Sources {
		printResolved(w, d)
	}
	if only == "" {
		fmt.Fprintf(w, "%d source(s), %d canonical\n", res.Len(), len(result.Canonicals))
	}
	return nil
}

// printResolved writes one resolved source in text form. Empty relations
// are omitted.
func printResolved(w io.Writer, d ir.ResolvedSource) {
	marker := " "
	if d.IsCanonical() {
		marker = "*"
	}
	fmt.Fprintf(w, "%s %s (%s)", marker, d.ID, d.Kind)
	if d.URL != "" {
		fmt.Fprintf(w, " %s", d.URL)
	}
	fmt.Fprintln(w)

	if !d.IsCanonical() {
		fmt.Fprintf(w, "    canonical: %s\n", d.CanonicalID)
	}
	printIDs(w, "generated", d.Generated)
	printIDs(w, "generated from", d.GeneratedFrom)
	if d.PrettyPrinted != "" {
		fmt.Fprintf(w, "    pretty-printed: %s\n", d.PrettyPrinted)
	}
	if d.PrettyPrintedFrom != "" {
		fmt.Fprintf(w, "    pretty-printed from: %s\n", d.PrettyPrintedFrom)
	}
	printIDs(w, "corresponds to", d.CorrespondingSourceIDs)
}

func printIDs(w io.Writer, label string, ids []string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(w, "    %s: %s\n", label, strings.Join(ids, ", "))
}

// isResolutionError reports whether err is a batch rejection rather than
// an infrastructure failure.
func isResolutionError(err error) bool {
	return engine.ErrorCode(err) != ""
}
