package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/srcid/internal/engine"
	"github.com/roach88/srcid/internal/ir"
	"github.com/roach88/srcid/internal/session"
	"github.com/roach88/srcid/internal/store"
	"github.com/roach88/srcid/internal/testutil"
)

// Run executes a conformance test scenario and returns the result.
//
// The execution flow is:
//  1. Open an in-memory SQLite store
//  2. Create a session with a deterministic clock and fixed id
//  3. Announce every source in scenario order
//  4. Resolve the session and compare the outcome with expect_error
//  5. Check idempotence, structural invariants and the persistence round trip
//  6. Check expect and assertions
//
// Returns an error only for infrastructure failures (store, I/O).
// Resolution failures and expectation mismatches are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context for store operations.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(engine.WithLogger(logger))
	clock := testutil.NewDeterministicClock()
	gen := testutil.NewFixedSessionGenerator(scenario.SessionID)

	sess := session.New(gen.Generate(),
		session.WithEngine(eng),
		session.WithClock(clock),
		session.WithLogger(logger),
	)

	result := NewResult()

	res, runErr := replay(sess, scenario.Sources, clock, result)
	if runErr != nil {
		result.ErrorCode = errorCode(runErr)
	}
	if n := len(clock.Issued()); n != len(result.Trace) {
		result.AddError(fmt.Sprintf("clock issued %d seq(s) for %d accepted source(s)", n, len(result.Trace)))
	}

	if err := checkOutcome(scenario, runErr); err != "" {
		result.AddError(err)
	}
	if res == nil {
		return result, nil
	}
	result.Resolved = res.All()

	if errs := checkIdempotent(eng, sess.Sources(), res); len(errs) > 0 {
		for _, e := range errs {
			result.AddError(e)
		}
	}
	for _, e := range checkInvariants(res) {
		result.AddError(e)
	}

	restoredErr, err := checkRoundTrip(ctx, st, sess, res)
	if err != nil {
		return nil, err
	}
	if restoredErr != "" {
		result.AddError(restoredErr)
	}

	for _, e := range checkExpect(scenario.Expect, res) {
		result.AddError(e)
	}
	for _, e := range EvaluateAssertions(scenario.Assertions, res) {
		result.AddError(e.Error())
	}
	return result, nil
}

// replay announces every source, recording accepted ones in the trace, and
// resolves the session. Resolution is deferred until the whole batch is in:
// a record may reference one announced after it.
func replay(sess *session.Session, anns []ir.Announcement, clock session.Sequencer, result *Result) (*engine.Resolution, error) {
	for i, a := range anns {
		before := sess.Len()
		if err := sess.Announce(a); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if sess.Len() > before {
			src, err := ir.FromAnnouncement(a)
			if err != nil {
				return nil, err
			}
			result.AddTrace(clock.Current(), src)
		}
	}
	if len(anns) > 0 && !sess.Stale() {
		return nil, fmt.Errorf("session reports a fresh resolution before resolving")
	}
	return sess.Resolution()
}

// errorCode maps a replay failure onto the resolution error taxonomy.
// Re-announcing an id with different content is a duplicate id, which the
// engine treats as a malformed record.
func errorCode(err error) string {
	if session.IsConflict(err) {
		return string(engine.ErrCodeMalformedRecord)
	}
	if code := engine.ErrorCode(err); code != "" {
		return string(code)
	}
	return "UNKNOWN"
}

func checkOutcome(scenario *Scenario, err error) string {
	switch {
	case scenario.ExpectError == "" && err != nil:
		return fmt.Sprintf("resolution failed: %v", err)
	case scenario.ExpectError != "" && err == nil:
		return fmt.Sprintf("expected error %s, resolution succeeded", scenario.ExpectError)
	case scenario.ExpectError != "" && errorCode(err) != scenario.ExpectError:
		return fmt.Sprintf("expected error %s, got: %v", scenario.ExpectError, err)
	}
	return ""
}

// checkIdempotent resolves the session's batch again outside the session
// and compares resolution hashes.
func checkIdempotent(eng *engine.Engine, sources []ir.Source, res *engine.Resolution) []string {
	again, err := eng.Resolve(sources)
	if err != nil {
		return []string{fmt.Sprintf("idempotence: second resolution failed: %v", err)}
	}
	first, err := res.Hash()
	if err != nil {
		return []string{fmt.Sprintf("idempotence: %v", err)}
	}
	second, err := again.Hash()
	if err != nil {
		return []string{fmt.Sprintf("idempotence: %v", err)}
	}
	if first != second {
		return []string{fmt.Sprintf("idempotence: resolution hash changed from %s to %s", first, second)}
	}
	return nil
}

// checkRoundTrip persists the session, restores it and compares the
// restored resolution with res. Store failures are returned as errors.
func checkRoundTrip(ctx context.Context, st *store.Store, sess *session.Session, res *engine.Resolution) (string, error) {
	if err := sess.Persist(ctx, st); err != nil {
		return "", fmt.Errorf("persist scenario session: %w", err)
	}
	restored, err := session.Restore(ctx, st, sess.ID())
	if err != nil {
		return "", fmt.Errorf("restore scenario session: %w", err)
	}
	if restored.Stale() {
		return "round trip: restored session did not reuse the stored resolution", nil
	}
	again, err := restored.Resolution()
	if err != nil {
		return fmt.Sprintf("round trip: %v", err), nil
	}

	want, err := res.Hash()
	if err != nil {
		return "", err
	}
	got, err := again.Hash()
	if err != nil {
		return "", err
	}
	if want != got {
		return fmt.Sprintf("round trip: restored resolution hash %s, want %s", got, want), nil
	}
	return "", nil
}
