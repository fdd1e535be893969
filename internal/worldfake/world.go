// Package worldfake is a minimal in-memory worldface.World used by the
// node and engine test suites. It models just enough block
// behavior — air, solid conductors, signal sources, and wires — to drive
// the settle driver's scenarios without any real game world attached.
package worldfake

import (
	"github.com/voxelmesh/signalmesh/cell"
	"github.com/voxelmesh/signalmesh/sigtype"
	"github.com/voxelmesh/signalmesh/worldface"
)

// Kind distinguishes the handful of block shapes this fake understands.
type Kind int

const (
	KindAir Kind = iota
	KindWire
	KindSolid
	KindSource
)

// Block is a comparable, immutable BlockState used throughout the fake
// world. Comparability lets World.SetBlockState detect no-op writes with a
// plain ==, mirroring how a real block-state value type would.
type Block struct {
	Kind Kind
	Name sigtype.BlockKind

	Wire  sigtype.WireType
	Level int

	SourceSignal sigtype.SignalType
	SourcePower  int
	On           bool

	Broken bool // forces CanExist to report false
}

// Air is the zero-cost default state for any position never written to.
var Air = Block{Kind: KindAir, Name: "air"}

// Solid returns a conductor block with the given block kind identity.
func Solid(name sigtype.BlockKind) Block {
	return Block{Kind: KindSolid, Name: name}
}

// Source returns an on/off signal source (a lever, a torch) emitting power
// at full strength when on, nothing when off.
func Source(name sigtype.BlockKind, signal sigtype.SignalType, on bool) Block {
	return Block{Kind: KindSource, Name: name, SourceSignal: signal, SourcePower: signal.Max, On: on}
}

// Wire returns a wire block of wt carrying power.
func Wire(wt sigtype.WireType, power int) Block {
	return Block{Kind: KindWire, Name: wt.Block, Wire: wt, Level: power}
}

func (b Block) IsAir() bool { return b.Kind == KindAir }
func (b Block) IsWire() bool { return b.Kind == KindWire }

func (b Block) IsWireOfSignal(signal sigtype.SignalType) bool {
	return b.Kind == KindWire && b.Wire.Signal == signal
}

func (b Block) IsWireOfType(wt sigtype.WireType) bool {
	return b.Kind == KindWire && b.Wire == wt
}

func (b Block) IsOf(kind sigtype.BlockKind) bool { return b.Name == kind }

func (b Block) IsSignalSource(signal sigtype.SignalType) bool {
	return b.Kind == KindSource && b.SourceSignal == signal && b.On
}

func (b Block) IsSignalConductor(_ cell.Direction, _ sigtype.SignalType) bool {
	return b.Kind == KindSolid
}

func (b Block) Signal(_ worldface.World, _ cell.Pos, _ cell.Direction, _ sigtype.SignalType) int {
	if !b.On {
		return 0
	}
	return b.SourcePower
}

func (b Block) DirectSignal(w worldface.World, pos cell.Pos, dir cell.Direction, signal sigtype.SignalType) int {
	return b.Signal(w, pos, dir, signal)
}

func (b Block) CanExist(_ worldface.World, _ cell.Pos) bool { return !b.Broken }

func (b Block) Update(w worldface.World, pos cell.Pos) {
	if fw, ok := w.(*World); ok && fw.OnBlockUpdate != nil {
		fw.OnBlockUpdate(pos)
	}
}

func (b Block) UpdateShape(_ worldface.World, _ cell.Pos, _ cell.Direction, _ cell.Pos, _ worldface.BlockState) {
}

func (b Block) WireType() sigtype.WireType { return b.Wire }
func (b Block) Power() int                 { return b.Level }

func (b Block) WithPower(newPower int) worldface.BlockState {
	b.Level = newPower
	return b
}

// World is a flat map-backed worldface.World. Missing positions read as Air.
type World struct {
	blocks map[cell.Pos]worldface.BlockState

	// UpdateNeighborsCalls and UpdateNeighborShapesCalls record every
	// position the engine asked the world to fan updates out from, so
	// tests can assert update-emission behavior without a real game loop.
	UpdateNeighborsCalls      []cell.Pos
	UpdateNeighborShapesCalls []cell.Pos

	// OnUpdateNeighbors, if set, runs after the default UpdateNeighbors
	// fan-out for pos, letting a test simulate a non-wire block's update
	// reentering the engine synchronously.
	OnUpdateNeighbors func(pos cell.Pos)

	// OnBlockUpdate, if set, runs whenever a non-wire block at pos is
	// delivered an Update call, letting a test simulate that block's own
	// handler reentering the engine synchronously.
	OnBlockUpdate func(pos cell.Pos)
}

// New returns an empty world.
func New() *World {
	return &World{blocks: make(map[cell.Pos]worldface.BlockState)}
}

// Set places b at pos directly, bypassing SetBlockState's change bookkeeping.
// Used to build test fixtures.
func (w *World) Set(pos cell.Pos, b Block) {
	w.blocks[pos] = b
}

func (w *World) GetBlockState(pos cell.Pos) worldface.BlockState {
	if b, ok := w.blocks[pos]; ok {
		return b
	}
	return Air
}

func (w *World) SetBlockState(pos cell.Pos, newState worldface.BlockState) bool {
	old, ok := w.blocks[pos]
	if ok && old == newState {
		return false
	}
	w.blocks[pos] = newState
	return true
}

func (w *World) UpdateNeighbors(pos cell.Pos) {
	w.UpdateNeighborsCalls = append(w.UpdateNeighborsCalls, pos)
	for d := cell.Direction(0); d < cell.NumDirections; d++ {
		np := pos.Offset(d)
		st := w.GetBlockState(np)
		if !st.IsWire() {
			st.Update(w, np)
		}
	}
	if w.OnUpdateNeighbors != nil {
		w.OnUpdateNeighbors(pos)
	}
}

func (w *World) UpdateNeighborShapes(pos cell.Pos, state worldface.BlockState) {
	w.UpdateNeighborShapesCalls = append(w.UpdateNeighborShapesCalls, pos)
	for d := cell.Direction(0); d < cell.NumDirections; d++ {
		np := pos.Offset(d)
		st := w.GetBlockState(np)
		if !st.IsWire() {
			st.UpdateShape(w, np, d.Opposite(), pos, state)
		}
	}
}
