package sigtype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelmesh/signalmesh/cell"
	"github.com/voxelmesh/signalmesh/sigtype"
)

func TestFlowOut_SingleBit(t *testing.T) {
	for _, d := range []cell.Direction{cell.West, cell.North, cell.East, cell.South} {
		got, ok := sigtype.FlowOut(cell.Bit(d))
		require.True(t, ok)
		assert.Equal(t, d, got)
	}
}

func TestFlowOut_AdjacentPair(t *testing.T) {
	// WEST, NORTH set: NORTH is one clockwise turn from WEST.
	got, ok := sigtype.FlowOut(cell.Bit(cell.West) | cell.Bit(cell.North))
	require.True(t, ok)
	assert.Equal(t, cell.North, got)
}

func TestFlowOut_OpposingPairAmbiguous(t *testing.T) {
	_, ok := sigtype.FlowOut(cell.Bit(cell.West) | cell.Bit(cell.East))
	assert.False(t, ok)
}

func TestFlowOut_ThreeBits(t *testing.T) {
	// All but SOUTH set: the direction whose opposite (SOUTH) is missing is NORTH.
	mask := cell.Bit(cell.West) | cell.Bit(cell.North) | cell.Bit(cell.East)
	got, ok := sigtype.FlowOut(mask)
	require.True(t, ok)
	assert.Equal(t, cell.North, got)
}

func TestFlowOut_ZeroAndAllFourAmbiguous(t *testing.T) {
	_, ok := sigtype.FlowOut(0)
	assert.False(t, ok)

	all := cell.Bit(cell.West) | cell.Bit(cell.North) | cell.Bit(cell.East) | cell.Bit(cell.South)
	_, ok = sigtype.FlowOut(all)
	assert.False(t, ok)
}

func TestIExcept_FiveOthers(t *testing.T) {
	for except := cell.Direction(0); except < cell.NumDirections; except++ {
		rest := sigtype.IExcept(except)
		require.Len(t, rest, 5)
		for _, d := range rest {
			assert.NotEqual(t, except, d)
		}
	}
}

func TestConnectionUpdateOrder_IsAPermutationOfAllSides(t *testing.T) {
	for f := cell.Direction(0); f < cell.NumCardinal; f++ {
		order := sigtype.ConnectionUpdateOrder(f)
		seen := make(map[sigtype.ConnectionSide]bool, sigtype.NumConnectionSides)
		for _, s := range order {
			assert.False(t, seen[s], "side %s repeated for forward %s", s, f)
			seen[s] = true
		}
		assert.Len(t, seen, sigtype.NumConnectionSides)
	}
}

func TestSignalType_ClampAndBelowMin(t *testing.T) {
	st := sigtype.SignalType{Min: 0, Max: 15, Step: 1}
	assert.Equal(t, 0, st.Clamp(-5))
	assert.Equal(t, 15, st.Clamp(99))
	assert.Equal(t, 7, st.Clamp(7))
	assert.Equal(t, -1, st.BelowMin())
}

func TestWireType_SelfPowering(t *testing.T) {
	normal := sigtype.WireType{Name: "redwire", Signal: sigtype.SignalType{Min: 0, Max: 15, Step: 1}}
	special := sigtype.WireType{Name: "repeater-dust", Signal: sigtype.SignalType{Min: 0, Max: 15, Step: 0}}
	assert.True(t, normal.SelfPowering())
	assert.False(t, special.SelfPowering())
}
