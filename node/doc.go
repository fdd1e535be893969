// Package node materializes the transient graph the settle driver works
// on: an arena of per-cell entries built lazily over the voxel grid as a
// settle touches cells, plus the wire-level state and power math attached
// to each entry.
//
// What
//
//   - Arena: chunked, index-addressed storage for Entry records. Indices,
//     not pointers, are the handle type everywhere — growing the arena or
//     replacing a stale entry never invalidates another entry's reference.
//   - Entry: one cell's snapshot (position, block state, wire type, power
//     levels, connection set, phase flags), revalidated in place across
//     reentrant settles when the cell's structure is unchanged.
//   - Discover: probes the eighteen connection geometries around a wire
//     and records each peer's directional capability (in, out, both).
//   - Power math: ExternalPower, FindPower, OfferPower, TransmitPower and
//     the flow-direction resolution chain that orders update emission.
//   - SearchQueue: the intrusive FIFO the search phase drains.
//   - ForEachNeighbor: the 24-cell ring (6 direct, 12 diagonal, 6 far) a
//     committed wire's update fan-out visits.
//
// Why
//
//	The settle driver needs cheap node identity (an at-most-one-entry-per-
//	position invariant), stable references while the graph grows, and
//	wholesale reuse between settles. An arena with a position index gives
//	all three; entries are recycled by rewinding a counter, not freed.
//
// Invariants
//
//   - At most one live Entry per position; Neighbor links are symmetric.
//   - A wire's VirtualPower stays within [Min-1, Max]; Min-1 is the "not
//     yet offered power" sentinel.
//   - CurrentPower mirrors the world exactly as of the entry's snapshot.
//
// The package has no settle logic of its own; package engine sequences
// these pieces.
package node
