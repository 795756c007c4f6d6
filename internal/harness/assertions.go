package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/srcid/internal/engine"
)

// AssertionError provides detailed context for assertion failures.
type AssertionError struct {
	Type     string // Assertion type that failed
	Subject  string // Id the assertion was about, empty for canonicals
	Expected any    // What was expected
	Actual   any    // What was found
	Message  string // Extra context, optional
}

// Error formats the assertion failure with the expected and actual values.
func (e *AssertionError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s assertion failed", e.Type))
	if e.Subject != "" {
		sb.WriteString(fmt.Sprintf(" for %q", e.Subject))
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	sb.WriteString(fmt.Sprintf("\n  Expected: %v\n  Actual:   %v", e.Expected, e.Actual))
	return sb.String()
}

// EvaluateAssertions checks every assertion against res and returns the
// failures in assertion order.
func EvaluateAssertions(assertions []Assertion, res *engine.Resolution) []*AssertionError {
	var failures []*AssertionError
	for _, a := range assertions {
		if err := evaluateAssertion(a, res); err != nil {
			failures = append(failures, err)
		}
	}
	return failures
}

func evaluateAssertion(a Assertion, res *engine.Resolution) *AssertionError {
	var actual []string
	var subject string

	switch a.Type {
	case AssertCanonicalGroup:
		subject = a.Canonical
		actual = res.Group(a.Canonical)
	case AssertAlternates:
		subject = a.ID
		if _, ok := res.Get(a.ID); !ok {
			return &AssertionError{Type: a.Type, Subject: a.ID, Expected: a.IDs, Actual: "<missing>", Message: "unknown source"}
		}
		actual = res.Alternates(a.ID)
	case AssertCanonicals:
		actual = res.Canonicals()
	default:
		return &AssertionError{Type: a.Type, Message: "unknown assertion type"}
	}

	if !slices.Equal(actual, a.IDs) {
		return &AssertionError{Type: a.Type, Subject: subject, Expected: a.IDs, Actual: actual}
	}
	return nil
}

// checkExpect compares each expected source with its resolved description.
// Only fields present in the expectation are compared.
func checkExpect(expect map[string]ExpectSource, res *engine.Resolution) []string {
	ids := make([]string, 0, len(expect))
	for id := range expect {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []string
	for _, id := range ids {
		want := expect[id]
		got, ok := res.Get(id)
		if !ok {
			errs = append(errs, fmt.Sprintf("expect %q: source missing from resolution", id))
			continue
		}

		field := func(name string, w *string, g string) {
			if w != nil && *w != g {
				errs = append(errs, fmt.Sprintf("expect %q: %s = %q, want %q", id, name, g, *w))
			}
		}
		list := func(name string, w *[]string, g []string) {
			if w != nil && !slices.Equal(*w, g) {
				errs = append(errs, fmt.Sprintf("expect %q: %s = %v, want %v", id, name, g, *w))
			}
		}

		field("kind", want.Kind, string(got.Kind))
		field("url", want.URL, got.URL)
		field("content_hash", want.ContentHash, got.ContentHash)
		field("canonical_id", want.CanonicalID, got.CanonicalID)
		list("generated", want.Generated, got.Generated)
		list("generated_from", want.GeneratedFrom, got.GeneratedFrom)
		field("pretty_printed", want.PrettyPrinted, got.PrettyPrinted)
		field("pretty_printed_from", want.PrettyPrintedFrom, got.PrettyPrintedFrom)
		list("corresponding_source_ids", want.CorrespondingSourceIDs, got.CorrespondingSourceIDs)
	}
	return errs
}

// checkInvariants verifies the structural properties every resolution holds
// regardless of input.
func checkInvariants(res *engine.Resolution) []string {
	var errs []string
	for _, r := range res.All() {
		for _, g := range r.Generated {
			other, ok := res.Get(g)
			if !ok || !slices.Contains(other.GeneratedFrom, r.ID) {
				errs = append(errs, fmt.Sprintf("invariant: %s generated %s but %s is not generated from %s", r.ID, g, g, r.ID))
			}
		}
		for _, f := range r.GeneratedFrom {
			other, ok := res.Get(f)
			if !ok || !slices.Contains(other.Generated, r.ID) {
				errs = append(errs, fmt.Sprintf("invariant: %s is generated from %s but %s does not list it", r.ID, f, f))
			}
		}

		canonical, ok := res.Get(r.CanonicalID)
		if !ok {
			errs = append(errs, fmt.Sprintf("invariant: %s has unknown canonical id %s", r.ID, r.CanonicalID))
		} else if !canonical.IsCanonical() {
			errs = append(errs, fmt.Sprintf("invariant: canonical id of %s is %s, which is not its own canonical", r.ID, r.CanonicalID))
		}

		if r.PrettyPrinted != "" {
			pp, ok := res.Get(r.PrettyPrinted)
			if !ok || pp.PrettyPrintedFrom != r.ID {
				errs = append(errs, fmt.Sprintf("invariant: %s names %s as pretty-printed copy but the link is not mutual", r.ID, r.PrettyPrinted))
			}
		}
		if r.PrettyPrintedFrom != "" {
			base, ok := res.Get(r.PrettyPrintedFrom)
			if !ok || base.PrettyPrinted == "" {
				errs = append(errs, fmt.Sprintf("invariant: %s is pretty-printed from %s which has no pretty-printed copy", r.ID, r.PrettyPrintedFrom))
			}
		}
	}
	return errs
}
