// Package engine provides the settle driver for a voxel world's signal
// networks: given a single wire position that changed, it recomputes a
// consistent power assignment for the whole connected network and emits a
// minimal, deterministic sequence of block and shape updates to the
// surrounding non-wire blocks.
//
// What
//
//   - Engine implements worldface.WireHandler: OnWireUpdate, OnWireAdded,
//     OnWireRemoved.
//   - Each call runs one settle in three phases:
//   - search: BFS outward from the discovered roots, computing each
//     touched wire's candidate power from external sources and peers.
//   - depower: re-evaluate every touched wire while ignoring peers the
//     search already visited, emptying the network down to what each
//     wire sustains on its own; wires still holding power (or removed,
//     breaking, or root wires) reseed the final phase.
//   - power: drain a roots-first priority queue, transmitting power along
//     outgoing connections, committing block-state writes, and fanning
//     block/shape updates out to non-wire neighbors.
//   - World callbacks issued during the power phase may reenter the engine
//     synchronously; a nested settle shares the outer settle's node arena
//     and only the outermost call clears it.
//
// Why
//
//	Naive per-cell recursive propagation revisits cells quadratically when
//	networks branch. The three-phase settle touches each wire a bounded
//	number of times and each non-wire neighbor at most once per settle.
//
// Determinism
//
//	For a fixed initial world and call sequence, the sequence of writes and
//	notifications is reproducible: traversal follows fixed direction tables
//	rotated by each wire's resolved flow direction, and the update queue
//	orders strictly by (root, insertion sequence) — never by coordinates or
//	map iteration.
//
// Usage
//
//	w := ...                          // the caller's worldface.World
//	eng := engine.New(w, nil, nil)    // or pass a config.Registry and *slog.Logger
//	eng.OnWireAdded(cell.Pos{X: 1, Y: 64, Z: 9})
//	eng.OnWireUpdate(cell.Pos{X: 2, Y: 64, Z: 9})
//
// One Engine serves exactly one World and must not be shared across
// goroutines; the caller owns serialization.
package engine
