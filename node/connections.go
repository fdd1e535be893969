package node

import (
	"github.com/voxelmesh/signalmesh/cell"
	"github.com/voxelmesh/signalmesh/sigtype"
	"github.com/voxelmesh/signalmesh/worldface"
)

// ConnectionEntry is one resolved WireConnection: the peer's arena index and
// the directional capability between the two wire types.
type ConnectionEntry struct {
	Peer    int32
	Type    sigtype.ConnectionType
	Present bool
}

// ConnectionSet holds every connection discovered for one wire entry,
// indexed directly by ConnectionSide for O(1) lookup, plus the structural
// flow direction derived purely from which sides are connected — the
// middle fallback in the flow-direction chain.
type ConnectionSet struct {
	entries    [sigtype.NumConnectionSides]ConnectionEntry
	Total      int
	FlowDir    cell.Direction
	FlowDirSet bool
}

func (cs *ConnectionSet) set(side sigtype.ConnectionSide, peer int32, typ sigtype.ConnectionType) {
	cs.entries[side] = ConnectionEntry{Peer: peer, Type: typ, Present: true}
}

// Get returns the connection at side, if any.
func (cs *ConnectionSet) Get(side sigtype.ConnectionSide) (ConnectionEntry, bool) {
	e := cs.entries[side]
	return e, e.Present
}

// ForEach visits every present connection in the fixed traversal order for
// forward (see sigtype.ConnectionUpdateOrder).
func (cs *ConnectionSet) ForEach(forward cell.Direction, fn func(side sigtype.ConnectionSide, c ConnectionEntry)) {
	for _, side := range sigtype.ConnectionUpdateOrder(forward) {
		if e := cs.entries[side]; e.Present {
			fn(side, e)
		}
	}
}

// sideHops lists the direction hops from a wire's own cell to the cell a
// given ConnectionSide reaches, built once in init so Discover never
// allocates per call.
var sideHops [sigtype.NumConnectionSides][]cell.Direction

func init() {
	sideHops[sigtype.SideNorth] = []cell.Direction{cell.North}
	sideHops[sigtype.SideSouth] = []cell.Direction{cell.South}
	sideHops[sigtype.SideEast] = []cell.Direction{cell.East}
	sideHops[sigtype.SideWest] = []cell.Direction{cell.West}
	sideHops[sigtype.SideUp] = []cell.Direction{cell.Up}
	sideHops[sigtype.SideDown] = []cell.Direction{cell.Down}

	sideHops[sigtype.SideNorthEast] = []cell.Direction{cell.North, cell.East}
	sideHops[sigtype.SideNorthWest] = []cell.Direction{cell.North, cell.West}
	sideHops[sigtype.SideSouthEast] = []cell.Direction{cell.South, cell.East}
	sideHops[sigtype.SideSouthWest] = []cell.Direction{cell.South, cell.West}
	sideHops[sigtype.SideWestUp] = []cell.Direction{cell.West, cell.Up}
	sideHops[sigtype.SideWestDown] = []cell.Direction{cell.West, cell.Down}
	sideHops[sigtype.SideEastUp] = []cell.Direction{cell.East, cell.Up}
	sideHops[sigtype.SideEastDown] = []cell.Direction{cell.East, cell.Down}

	sideHops[sigtype.SideStaircaseNorth] = []cell.Direction{cell.North, cell.Up, cell.North}
	sideHops[sigtype.SideStaircaseSouth] = []cell.Direction{cell.South, cell.Up, cell.South}
	sideHops[sigtype.SideStaircaseEast] = []cell.Direction{cell.East, cell.Up, cell.East}
	sideHops[sigtype.SideStaircaseWest] = []cell.Direction{cell.West, cell.Up, cell.West}
}

func sideOffset(pos cell.Pos, side sigtype.ConnectionSide) cell.Pos {
	for _, d := range sideHops[side] {
		pos = pos.Offset(d)
	}
	return pos
}

// Discover populates idx's ConnectionSet by probing all eighteen sides for
// a wire neighbor. Non-wire peers at a side are still materialized in the
// arena (so later neighbor lookups are cheap) but never produce a
// connection. Idempotent: a second call on an already-discovered entry is a
// no-op.
func Discover(a *Arena, w worldface.World, idx int32) {
	e := a.Get(idx)
	if e.Discovered {
		return
	}
	e.Discovered = true
	pos := e.Pos
	myType := e.WireType

	var cs ConnectionSet
	var mask cell.CardinalMask
	for side := sigtype.ConnectionSide(0); int(side) < sigtype.NumConnectionSides; side++ {
		peerPos := sideOffset(pos, side)
		peerIdx := a.GetOrAdd(w, peerPos)
		peer := a.Get(peerIdx)
		if !peer.IsWire {
			continue
		}
		typ := connectionType(myType, peer.WireType)
		cs.set(side, peerIdx, typ)
		mask |= side.FlowIn()
	}
	cs.Total = connectionCount(&cs)
	if dir, ok := sigtype.FlowOut(mask); ok {
		cs.FlowDir = dir
		cs.FlowDirSet = true
	}

	e = a.Get(idx)
	if !e.Added && !e.Removed {
		e.ShouldBreak = !e.State.CanExist(w, pos)
	}
	e.Connections = cs
}

func connectionCount(cs *ConnectionSet) int {
	n := 0
	for _, e := range cs.entries {
		if e.Present {
			n++
		}
	}
	return n
}

// connectionType derives the directional capability between two wire types
// that share a cell edge. Wires of the same block, or carrying the same
// signal type, connect both ways; across distinct signal domains, power
// flows from the lower-step (more source-like) type into the higher-step
// one. See DESIGN.md's Open Questions for the cross-domain rule this picks.
func connectionType(a, b sigtype.WireType) sigtype.ConnectionType {
	if a.Block == b.Block || a.Signal == b.Signal {
		return sigtype.ConnBoth
	}
	if a.Signal.Step < b.Signal.Step {
		return sigtype.ConnOut
	}
	return sigtype.ConnIn
}
