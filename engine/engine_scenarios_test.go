package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelmesh/signalmesh/cell"
	"github.com/voxelmesh/signalmesh/engine"
	"github.com/voxelmesh/signalmesh/internal/worldfake"
	"github.com/voxelmesh/signalmesh/sigtype"
)

// redstone is the signal type the end-to-end tests run on: min=0, max=15,
// step=1, with a wire block and an on/off lever source.
var redstone = sigtype.SignalType{Min: 0, Max: 15, Step: 1}
var redWire = sigtype.WireType{Name: "red_dust", Signal: redstone, Block: "minecraft:redstone_wire"}

// quasi is a step=0 self-referential signal type: power crosses its wires
// without decay, so such wires must never power themselves.
var quasi = sigtype.SignalType{Min: 0, Max: 15, Step: 0}
var quasiWire = sigtype.WireType{Name: "comparator_dust", Signal: quasi, Block: "minecraft:comparator_wire"}

func power(t *testing.T, w *worldfake.World, pos cell.Pos) int {
	t.Helper()
	st := w.GetBlockState(pos)
	require.True(t, st.IsWire(), "expected a wire at %s", pos)
	return st.Power()
}

// TestStraightRunDecaysPerHop: a six-wire run from (0,0,0) to (5,0,0), a
// lever east of (5,0,0), settled by updating the wire next to the lever.
// Power decays by one level per hop away from the source.
func TestStraightRunDecaysPerHop(t *testing.T) {
	w := worldfake.New()
	e := engine.New(w, nil, nil)

	for x := int32(0); x <= 5; x++ {
		pos := cell.Pos{X: x}
		w.Set(pos.Offset(cell.Down), worldfake.Solid("minecraft:stone"))
		w.Set(pos, worldfake.Wire(redWire, 0))
		e.OnWireAdded(pos)
	}
	leverPos := cell.Pos{X: 6}
	w.Set(leverPos, worldfake.Source("minecraft:lever", redstone, true))

	e.OnWireUpdate(cell.Pos{X: 5})

	want := []int{10, 11, 12, 13, 14, 15}
	for x := int32(0); x <= 5; x++ {
		assert.Equal(t, want[x], power(t, w, cell.Pos{X: x}), "wire at x=%d", x)
	}
}

// TestDepowerAfterSourceRemoved continues from the straight run: removing
// the lever and re-settling must bring every wire in the run down to zero,
// writing each position at most once.
func TestDepowerAfterSourceRemoved(t *testing.T) {
	w := worldfake.New()
	e := engine.New(w, nil, nil)

	for x := int32(0); x <= 5; x++ {
		pos := cell.Pos{X: x}
		w.Set(pos.Offset(cell.Down), worldfake.Solid("minecraft:stone"))
		w.Set(pos, worldfake.Wire(redWire, 0))
		e.OnWireAdded(pos)
	}
	leverPos := cell.Pos{X: 6}
	w.Set(leverPos, worldfake.Source("minecraft:lever", redstone, true))
	e.OnWireUpdate(cell.Pos{X: 5})

	w.Set(leverPos, worldfake.Air)
	w.UpdateNeighborShapesCalls = nil
	e.OnWireUpdate(cell.Pos{X: 5})

	for x := int32(0); x <= 5; x++ {
		assert.Equal(t, 0, power(t, w, cell.Pos{X: x}), "wire at x=%d", x)
	}
	assert.Len(t, w.UpdateNeighborShapesCalls, 6, "each of the six wires must be written exactly once")
	seen := make(map[cell.Pos]bool, len(w.UpdateNeighborShapesCalls))
	for _, pos := range w.UpdateNeighborShapesCalls {
		assert.False(t, seen[pos], "wire at %s written more than once", pos)
		seen[pos] = true
	}
}

// TestCentralSourcePlus: a plus-shaped network of four wires around a
// single central lever, each arm directly adjacent to it and also
// diagonally connected to its two neighbors in the ring. Every arm is a
// direct neighbor of the source, so each reaches the source's maximum
// independent of the others (the external-power probe treats direct
// adjacency to a signal source as undecayed, the same rule the straight-run
// test exercises for a single wire) — see DESIGN.md's Open Questions for
// the reasoning. The property under test: all four arms settle to an
// identical, deterministic value.
func TestCentralSourcePlus(t *testing.T) {
	w := worldfake.New()
	e := engine.New(w, nil, nil)

	arms := []cell.Pos{
		{X: 1}, {X: -1}, {Z: 1}, {Z: -1},
	}
	for _, pos := range arms {
		w.Set(pos.Offset(cell.Down), worldfake.Solid("minecraft:stone"))
		w.Set(pos, worldfake.Wire(redWire, 0))
		e.OnWireAdded(pos)
	}
	w.Set(cell.Pos{}, worldfake.Source("minecraft:lever", redstone, true))

	e.OnWireUpdate(cell.Pos{X: 1})

	for _, pos := range arms {
		assert.Equal(t, 15, power(t, w, pos), "wire at %s", pos)
	}
}

// TestTwoSourceParity: a three-wire segment
// fed from both ends by levers. The middle wire settles one below the ends;
// its flow ambiguity (offers arrive from opposing directions, and its
// connection set is the same opposing pair) must resolve deterministically
// through the backup direction recorded when it first entered the search
// queue. The update lands on the west end wire, the one whose neighborhood
// the west lever's placement changed; the search phase reaches the far
// lever's wire through the network.
func TestTwoSourceParity(t *testing.T) {
	w := worldfake.New()
	e := engine.New(w, nil, nil)

	positions := []cell.Pos{{X: 0}, {X: 1}, {X: 2}}
	for _, pos := range positions {
		w.Set(pos.Offset(cell.Down), worldfake.Solid("minecraft:stone"))
		w.Set(pos, worldfake.Wire(redWire, 0))
		e.OnWireAdded(pos)
	}
	w.Set(cell.Pos{X: -1}, worldfake.Source("minecraft:lever", redstone, true))
	w.Set(cell.Pos{X: 3}, worldfake.Source("minecraft:lever", redstone, true))

	e.OnWireUpdate(cell.Pos{X: 0})

	assert.Equal(t, 15, power(t, w, cell.Pos{X: 0}))
	assert.Equal(t, 14, power(t, w, cell.Pos{X: 1}))
	assert.Equal(t, 15, power(t, w, cell.Pos{X: 2}))
}

// TestSelfReferentialWireDoesNotOscillate:
// two step=0 wires, one adjacent to a lever, must settle at the source's
// maximum instead of oscillating through repeated mutual self-powering.
func TestSelfReferentialWireDoesNotOscillate(t *testing.T) {
	w := worldfake.New()
	e := engine.New(w, nil, nil)

	a, b := cell.Pos{X: 0}, cell.Pos{X: 1}
	w.Set(a.Offset(cell.Down), worldfake.Solid("minecraft:stone"))
	w.Set(b.Offset(cell.Down), worldfake.Solid("minecraft:stone"))
	w.Set(a, worldfake.Wire(quasiWire, 0))
	e.OnWireAdded(a)
	w.Set(b, worldfake.Wire(quasiWire, 0))
	e.OnWireAdded(b)
	w.Set(cell.Pos{X: -1}, worldfake.Source("minecraft:lever", quasi, true))

	e.OnWireUpdate(a)

	assert.Equal(t, 15, power(t, w, a))
	assert.Equal(t, 15, power(t, w, b))
}

// TestReentrantSettle: a world callback
// fired synchronously from a committed wire's own block update (simulating
// a non-wire neighbor's update handler triggering a second, independent
// settle) must complete without panicking and without corrupting the outer
// settle's in-flight node map, and both settles must leave their respective
// networks correctly powered afterward.
//
// The two wires here sit in separate, disconnected networks so the nested
// settle's root discovery does not need to re-derive power already fixed
// by the outer settle on a shared network — see DESIGN.md's Open
// Questions for why a nested settle re-discovers its own roots rather than
// literally sharing the outer phase-3 queue.
func TestReentrantSettle(t *testing.T) {
	w := worldfake.New()
	e := engine.New(w, nil, nil)

	outer := cell.Pos{X: 0}
	inner := cell.Pos{X: 100}
	w.Set(outer.Offset(cell.Down), worldfake.Solid("minecraft:stone"))
	w.Set(inner.Offset(cell.Down), worldfake.Solid("minecraft:stone"))
	w.Set(outer, worldfake.Wire(redWire, 0))
	e.OnWireAdded(outer)
	w.Set(inner, worldfake.Wire(redWire, 0))
	e.OnWireAdded(inner)

	w.Set(outer.Offset(cell.West), worldfake.Source("minecraft:lever", redstone, true))
	w.Set(inner.Offset(cell.West), worldfake.Source("minecraft:lever", redstone, true))

	triggered := false
	w.OnBlockUpdate = func(pos cell.Pos) {
		if pos != outer.Offset(cell.Down) || triggered {
			return
		}
		triggered = true
		e.OnWireUpdate(inner)
	}

	require.NotPanics(t, func() {
		e.OnWireUpdate(outer)
	})

	assert.True(t, triggered, "nested settle should have fired from the outer settle's block update")
	assert.Equal(t, 15, power(t, w, outer))
	assert.Equal(t, 15, power(t, w, inner))
}

// TestIdempotence: calling OnWireUpdate
// twice in a row with no world changes between the calls must produce no
// further writes or notifications on the second call.
func TestIdempotence(t *testing.T) {
	w := worldfake.New()
	e := engine.New(w, nil, nil)

	pos := cell.Pos{X: 0}
	w.Set(pos.Offset(cell.Down), worldfake.Solid("minecraft:stone"))
	w.Set(pos, worldfake.Wire(redWire, 0))
	e.OnWireAdded(pos)
	w.Set(pos.Offset(cell.East), worldfake.Source("minecraft:lever", redstone, true))

	e.OnWireUpdate(pos)
	w.UpdateNeighborsCalls = nil
	w.UpdateNeighborShapesCalls = nil

	e.OnWireUpdate(pos)

	assert.Empty(t, w.UpdateNeighborsCalls)
	assert.Empty(t, w.UpdateNeighborShapesCalls)
}

// TestAddThenRemoveIsANoOp: OnWireAdded(p)
// immediately followed by OnWireRemoved(p, state) must
// leave the world exactly as it was before the pair.
func TestAddThenRemoveIsANoOp(t *testing.T) {
	w := worldfake.New()
	e := engine.New(w, nil, nil)

	pos := cell.Pos{X: 0}
	w.Set(pos.Offset(cell.Down), worldfake.Solid("minecraft:stone"))
	before := w.GetBlockState(pos).(worldfake.Block)

	wireState := worldfake.Wire(redWire, 0)
	w.Set(pos, wireState)
	e.OnWireAdded(pos)
	w.Set(pos, before)
	e.OnWireRemoved(pos, wireState)

	assert.Equal(t, before, w.GetBlockState(pos))
}
