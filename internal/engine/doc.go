// Package engine implements the srcid resolution driver.
//
// The engine consumes a complete batch of source records and produces, for
// every record, a resolved description carrying its canonical identity and
// its forward/backward transformation links.
//
// ARCHITECTURE:
//
// Two passes over the whole batch:
//  1. Edge construction. Sources are grouped by kind and processed in
//     ir.ResolutionOrder, filling three independent relationship graphs:
//     generated, prettyPrinted and canonical. Later kinds read edges built
//     by earlier kinds (an inline script finds its document through the
//     generated graph).
//  2. Resolution. Every source follows the canonical graph to its fixed
//     point and its description is assembled from the three graphs.
//
// The engine is batch-only. A sourceMapped record arriving after its bundle
// relinks the bundle's canonical identity, so results computed from a
// partial batch go stale; callers buffer announcements and re-run (see
// package session).
//
// Each call to Resolve owns fresh graphs. Nothing is shared between runs,
// and an Engine may be used from several goroutines.
//
// ERRORS:
//
// MALFORMED_RECORD and CYCLIC_RELATIONSHIP abort the whole batch. A
// partially resolved batch could show a wrong canonical identity with no
// visible error, so there is no partial output.
package engine
