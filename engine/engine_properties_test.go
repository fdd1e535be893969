package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelmesh/signalmesh/cell"
	"github.com/voxelmesh/signalmesh/engine"
	"github.com/voxelmesh/signalmesh/internal/worldfake"
)

// buildPlus places the four-arm plus fixture around center and settles it,
// returning the world so callers can inspect powers and notification order.
func buildPlus(t *testing.T, center cell.Pos) *worldfake.World {
	t.Helper()
	w := worldfake.New()
	e := engine.New(w, nil, nil)

	arms := []cell.Pos{
		{X: center.X + 1, Y: center.Y, Z: center.Z},
		{X: center.X - 1, Y: center.Y, Z: center.Z},
		{X: center.X, Y: center.Y, Z: center.Z + 1},
		{X: center.X, Y: center.Y, Z: center.Z - 1},
	}
	for _, pos := range arms {
		w.Set(pos.Offset(cell.Down), worldfake.Solid("minecraft:stone"))
		w.Set(pos, worldfake.Wire(redWire, 0))
		e.OnWireAdded(pos)
	}
	w.Set(center, worldfake.Source("minecraft:lever", redstone, true))

	w.UpdateNeighborShapesCalls = nil
	e.OnWireUpdate(arms[0])
	return w
}

// TestDeterministicNotificationOrder runs the same settle twice in two
// fresh worlds and requires the full sequence of shape-update positions to
// match: scheduling depends only on discovery order and the root flag,
// never on map iteration or anything else run-varying.
func TestDeterministicNotificationOrder(t *testing.T) {
	first := buildPlus(t, cell.Pos{})
	second := buildPlus(t, cell.Pos{})

	require.NotEmpty(t, first.UpdateNeighborShapesCalls)
	assert.Equal(t, first.UpdateNeighborShapesCalls, second.UpdateNeighborShapesCalls)
}

// TestTranslationInvariance settles the same fixture at the origin and at a
// large offset, and requires every write and notification to be the origin
// run's, translated: nothing in the engine may depend on absolute cell
// coordinates beyond the fixed ordering tables.
func TestTranslationInvariance(t *testing.T) {
	offset := cell.Pos{X: 1000, Y: 7, Z: -2000}
	origin := buildPlus(t, cell.Pos{})
	moved := buildPlus(t, offset)

	arms := []cell.Pos{{X: 1}, {X: -1}, {Z: 1}, {Z: -1}}
	for _, pos := range arms {
		translated := cell.Pos{X: pos.X + offset.X, Y: pos.Y + offset.Y, Z: pos.Z + offset.Z}
		assert.Equal(t, power(t, origin, pos), power(t, moved, translated), "wire at %s", pos)
	}

	require.Len(t, moved.UpdateNeighborShapesCalls, len(origin.UpdateNeighborShapesCalls))
	for i, pos := range origin.UpdateNeighborShapesCalls {
		translated := cell.Pos{X: pos.X + offset.X, Y: pos.Y + offset.Y, Z: pos.Z + offset.Z}
		assert.Equal(t, translated, moved.UpdateNeighborShapesCalls[i], "notification %d", i)
	}
}

// TestRemovedWireStopsFeedingNeighbors: a two-wire run fed by a lever, then
// the wire next to the lever is removed. The lever still sits beside the
// now-empty cell, but with no wire there to carry its signal, the surviving
// wire must settle to zero rather than keep the removed wire's last power.
func TestRemovedWireStopsFeedingNeighbors(t *testing.T) {
	w := worldfake.New()
	e := engine.New(w, nil, nil)

	a, b := cell.Pos{X: 0}, cell.Pos{X: 1}
	w.Set(a, worldfake.Wire(redWire, 0))
	e.OnWireAdded(a)
	w.Set(b, worldfake.Wire(redWire, 0))
	e.OnWireAdded(b)
	w.Set(cell.Pos{X: -1}, worldfake.Source("minecraft:lever", redstone, true))
	e.OnWireUpdate(a)

	require.Equal(t, 15, power(t, w, a))
	require.Equal(t, 14, power(t, w, b))

	removed := w.GetBlockState(a)
	w.Set(a, worldfake.Air)
	e.OnWireRemoved(a, removed)

	assert.Equal(t, 0, power(t, w, b))
}
