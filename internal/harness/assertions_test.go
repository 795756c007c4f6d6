package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/srcid/internal/engine"
	"github.com/roach88/srcid/internal/ir"
	"github.com/roach88/srcid/internal/testutil"
)

func resolveChain(t *testing.T) *engine.Resolution {
	t.Helper()
	res, err := engine.Resolve(testutil.BundleChain())
	require.NoError(t, err)
	return res
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	res, err := engine.Resolve([]ir.Source{
		testutil.Script("1", "/bundle.js", "h"),
		testutil.Original("o1", "/src/app.ts", "1"),
		testutil.Pretty("p1", "/bundle.js:formatted", "1"),
	})
	require.NoError(t, err)

	failures := EvaluateAssertions([]Assertion{
		{Type: AssertCanonicalGroup, Canonical: "o1", IDs: []string{"1", "o1", "p1"}},
		{Type: AssertCanonicals, IDs: []string{"o1"}},
		{Type: AssertAlternates, ID: "p1", IDs: []string{"1", "o1"}},
	}, res)
	assert.Empty(t, failures)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	res := resolveChain(t)

	failures := EvaluateAssertions([]Assertion{
		{Type: AssertCanonicals, IDs: []string{"nope"}},
		{Type: AssertAlternates, ID: "missing", IDs: []string{}},
		{Type: "bogus", IDs: []string{}},
	}, res)
	require.Len(t, failures, 3)

	assert.Equal(t, AssertCanonicals, failures[0].Type)
	assert.Equal(t, []string{"nope"}, failures[0].Expected)

	assert.Equal(t, "missing", failures[1].Subject)
	assert.Equal(t, "unknown source", failures[1].Message)

	assert.Equal(t, "unknown assertion type", failures[2].Message)
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertAlternates,
		Subject:  "a",
		Expected: []string{"b"},
		Actual:   []string{},
	}
	assert.Equal(t, "alternates assertion failed for \"a\"\n  Expected: [b]\n  Actual:   []", err.Error())

	err = &AssertionError{Type: AssertCanonicals, Message: "extra", Expected: 1, Actual: 2}
	assert.Equal(t, "canonicals assertion failed: extra\n  Expected: 1\n  Actual:   2", err.Error())
}

func TestCheckInvariants_HoldForEngineOutput(t *testing.T) {
	assert.Empty(t, checkInvariants(resolveChain(t)))
}

func TestCheckInvariants_DetectsBrokenLinks(t *testing.T) {
	res := engine.NewResolution([]ir.ResolvedSource{
		{ID: "a", Kind: ir.KindScriptSource, CanonicalID: "b", Generated: []string{"b"}, PrettyPrinted: "p"},
		{ID: "b", Kind: ir.KindSourceMapped, CanonicalID: "a"},
		{ID: "p", Kind: ir.KindPrettyPrinted, CanonicalID: "zz", PrettyPrintedFrom: "q"},
	})

	errs := checkInvariants(res)
	assert.Contains(t, errs, "invariant: a generated b but b is not generated from a")
	assert.Contains(t, errs, "invariant: canonical id of a is b, which is not its own canonical")
	assert.Contains(t, errs, "invariant: a names p as pretty-printed copy but the link is not mutual")
	assert.Contains(t, errs, "invariant: p has unknown canonical id zz")
	assert.Contains(t, errs, "invariant: p is pretty-printed from q which has no pretty-printed copy")
}

func TestCheckExpect_MissingSource(t *testing.T) {
	errs := checkExpect(map[string]ExpectSource{"ghost": {}}, resolveChain(t))
	assert.Equal(t, []string{`expect "ghost": source missing from resolution`}, errs)
}
