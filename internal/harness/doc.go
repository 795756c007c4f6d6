// Package harness provides conformance testing for source resolution.
//
// A scenario describes a batch of announcements and what resolving it must
// produce. The harness replays the batch through a session exactly as a
// live recording would, then checks the result against the scenario and
// against the structural invariants every resolution must hold.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	session_id: "test-session-1"   # optional
//	sources:
//	  - sourceId: "1"
//	    kind: scriptSource
//	    url: /bundle.js
//	    contentHash: h
//	  - sourceId: o1
//	    kind: sourceMapped
//	    url: /src/app.ts
//	    generatedSourceIds: ["1"]
//	expect:
//	  "1":
//	    canonical_id: o1
//	    generated_from: [o1]
//	assertions:
//	  - type: canonical_group
//	    canonical: o1
//	    ids: ["1", o1]
//
// A scenario that must fail names the error code instead of expect:
//
//	expect_error: MALFORMED_RECORD
//
// # Assertion Types
//
//   - canonical_group: ids sharing a canonical id, in batch order
//   - alternates: alternate representations offered for an id
//   - canonicals: ids that are their own canonical id
//
// # Checks Applied To Every Scenario
//
//   - Resolving the same batch twice yields the same resolution hash
//   - generated_from is exactly the inverse of generated
//   - canonical_id points at a source whose canonical_id is itself
//   - pretty_printed and pretty_printed_from link back to each other
//   - Persisting and restoring the session yields the same resolution
//
// # Deterministic Testing
//
// Scenarios run with a deterministic logical clock, a fixed session id and
// an in-memory SQLite database, so golden snapshots are byte-identical
// across runs.
package harness
