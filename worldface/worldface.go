// Package worldface declares the collaborator interfaces the signal engine
// consumes: the world storage facade and the per-block-state capability
// surface. Nothing in this package has an implementation here — world
// storage, chunk management, and block behavior are out of scope for this
// module and are supplied by the caller.
package worldface

import (
	"github.com/voxelmesh/signalmesh/cell"
	"github.com/voxelmesh/signalmesh/sigtype"
)

// World is the facade the engine reads and mutates block state through.
// Implementations own chunk storage, persistence, and everything else
// outside the signal engine's scope.
type World interface {
	// GetBlockState returns the state at pos. Implementations must return a
	// valid BlockState for every position the engine queries, including
	// positions outside loaded chunks (typically an "air" state).
	GetBlockState(pos cell.Pos) BlockState

	// SetBlockState writes newState at pos and reports whether the stored
	// state actually changed. This is the only way world state (and the
	// mirrored WireNode.CurrentPower) may change during a settle.
	SetBlockState(pos cell.Pos, newState BlockState) bool

	// UpdateNeighbors notifies every non-wire neighbor of pos that it should
	// re-evaluate itself. May reenter the engine synchronously.
	UpdateNeighbors(pos cell.Pos)

	// UpdateNeighborShapes notifies the six direct non-wire neighbors of pos
	// that a shape change occurred, passing the direction from each neighbor
	// back to pos and the state now at pos. May reenter the engine
	// synchronously.
	UpdateNeighborShapes(pos cell.Pos, state BlockState)
}

// BlockState is an immutable snapshot of one block's type and, for wires,
// its power level. Implementations model whichever blocks the surrounding
// game defines; the engine only ever calls the predicates and probes below.
type BlockState interface {
	// IsAir reports whether this state represents empty space.
	IsAir() bool

	// IsWire reports whether this state is any wire.
	IsWire() bool

	// IsWireOfSignal reports whether this state is a wire carrying signal.
	IsWireOfSignal(signal sigtype.SignalType) bool

	// IsWireOfType reports whether this state is a wire of exactly wt.
	IsWireOfType(wt sigtype.WireType) bool

	// IsOf reports whether this state is of the given block kind, wire or not.
	IsOf(kind sigtype.BlockKind) bool

	// IsSignalSource reports whether this (non-wire) block emits signal of
	// the given type independent of any wire network, e.g. a lever or torch.
	IsSignalSource(signal sigtype.SignalType) bool

	// IsSignalConductor reports whether this (non-wire) block propagates
	// signal of the given type through itself along dir, e.g. a solid block
	// carrying power from a torch into the block above it.
	IsSignalConductor(dir cell.Direction, signal sigtype.SignalType) bool

	// Signal returns the power level this block offers in direction dir for
	// the given signal type, for a signal source. Only meaningful when
	// IsSignalSource(signal) is true.
	Signal(world World, pos cell.Pos, dir cell.Direction, signal sigtype.SignalType) int

	// DirectSignal returns the power level this block offers in direction
	// dir for the given signal type, ignoring any wire-specific suppression
	// rules a plain Signal probe would apply. Used when probing through a
	// signal conductor cube.
	DirectSignal(world World, pos cell.Pos, dir cell.Direction, signal sigtype.SignalType) int

	// CanExist reports whether this block state is still valid to exist at
	// pos given the current world (e.g. a wire whose supporting floor was
	// removed cannot exist). False marks the wire as breaking.
	CanExist(world World, pos cell.Pos) bool

	// Update runs this (non-wire) block's own update behavior.
	Update(world World, pos cell.Pos)

	// UpdateShape runs this (non-wire) block's shape-update behavior given
	// that the neighbor at nbrPos, in direction dir from pos, changed to
	// nbrState.
	UpdateShape(world World, pos cell.Pos, dir cell.Direction, nbrPos cell.Pos, nbrState BlockState)

	// WireType returns the wire type of this state. Only meaningful when
	// IsWire() is true.
	WireType() sigtype.WireType

	// Power returns the power level encoded in this state. Only meaningful
	// when IsWire() is true.
	Power() int

	// WithPower returns a copy of this state with its power level replaced
	// by newPower. Only meaningful when IsWire() is true.
	WithPower(newPower int) BlockState
}

// WireHandler is the engine's public surface, invoked by the world whenever
// a wire-relevant change occurs.
type WireHandler interface {
	// OnWireUpdate re-settles the network containing the wire at pos
	// because something about its neighborhood may have changed.
	OnWireUpdate(pos cell.Pos)

	// OnWireAdded settles the network after a wire was just placed at pos.
	OnWireAdded(pos cell.Pos)

	// OnWireRemoved settles the network after a wire was just removed from
	// pos; oldState is the wire state that used to occupy pos.
	OnWireRemoved(pos cell.Pos, oldState BlockState)
}
