// Package signalmesh is the root of a voxel-world signal-propagation
// engine: the component a world invokes when a wire block is placed,
// removed, or told by its neighborhood that something nearby changed.
//
// The engine settles an entire connected network of wires to a consistent
// power assignment in three phases — search, depower, power — and emits a
// minimal, deterministic sequence of block and shape updates to the
// surrounding non-wire blocks. World storage, rendering, and block
// behaviors beyond the small predicate surface the engine queries are
// external collaborators, reached only through package worldface.
//
// Package layout:
//
//	cell/       — opaque cell positions and the six-direction encoding
//	sigtype/    — signal/wire types, connection geometry, ordering tables
//	config/     — YAML-loaded signal and wire type registry
//	worldface/  — the world and block-state interfaces the engine consumes
//	node/       — the transient node arena, connection discovery, power math, search FIFO
//	queue/      — the phase-3 priority queue
//	engine/     — the settle driver (search/depower/power, reentrancy)
//	telemetry/  — structured logging of settle lifecycle
//
// See DESIGN.md for the rationale behind the settle driver's phase
// structure and the open design decisions each package records.
package signalmesh
