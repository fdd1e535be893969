package node

import (
	"github.com/voxelmesh/signalmesh/cell"
	"github.com/voxelmesh/signalmesh/sigtype"
	"github.com/voxelmesh/signalmesh/worldface"
)

// SetBackupFlowDir records the flow direction a wire should fall back to
// when both its runtime flow_in mask and its connection set's structural
// direction are ambiguous — the last resort in the fallback chain. The
// engine calls this once, when a wire first enters the search queue.
func SetBackupFlowDir(a *Arena, idx int32, dir cell.Direction) {
	e := a.Get(idx)
	if !e.backupFlowDirSet {
		e.backupFlowDir = dir
		e.backupFlowDirSet = true
	}
}

// ResolveFlowDir computes the direction a wire treats as "downstream" for
// ordering its update emission and connection traversal, following the
// ambiguity fallback chain: the runtime flow_in mask, then the connection
// set's structural flow direction, then the backup recorded when the wire
// first entered the search queue, then WEST (direction encoding 0) as a
// last, arbitrary but stable default — ambiguous always maps to 0 here.
func ResolveFlowDir(e *Entry) cell.Direction {
	if dir, ok := sigtype.FlowOut(e.FlowInMask); ok {
		return dir
	}
	if e.Connections.FlowDirSet {
		return e.Connections.FlowDir
	}
	if e.backupFlowDirSet {
		return e.backupFlowDir
	}
	return cell.West
}

// NeedsUpdate reports whether a wire's settled power differs from the power
// mirrored in the world, or it was just added, removed, or broken — the
// condition the search and power phases use to decide whether a wire still
// requires a block-state write and further propagation.
func NeedsUpdate(e *Entry) bool {
	return e.VirtualPower != e.CurrentPower || e.Added || e.Removed || e.ShouldBreak
}

// OfferPower raises idx's VirtualPower to power if power is higher, ORs
// side's cardinal flow_in bit into idx's FlowInMask, and records from as the
// connection that produced the new value. Reports whether the offer raised
// VirtualPower. side is always the direction from the power's source toward
// its receiver, independent of which entry is "self" in the caller: a wire
// folding in an incoming contribution passes the mirror of the side it
// received on, while a wire transmitting outward passes the connection side
// as is, since that already points from source to receiver.
func OfferPower(a *Arena, idx int32, power int, side sigtype.ConnectionSide, from int32) bool {
	e := a.Get(idx)
	if power > e.VirtualPower {
		e.VirtualPower = power
		e.FlowInMask |= side.FlowIn()
		e.PoweredBy = from
		return true
	}
	return false
}

// ExternalPower computes idx's incoming power from non-wire neighbors: for
// each of the six direct neighbors, if it is a
// signal conductor toward idx, probe its other five faces for a signal
// source feeding it; if the neighbor is itself a signal source, take its
// signal directly. Short-circuits at the signal type's maximum.
func ExternalPower(a *Arena, w worldface.World, idx int32) int {
	e := a.Get(idx)
	sig := e.WireType.Signal
	best := sig.Min

	for d := cell.Direction(0); d < cell.NumDirections; d++ {
		nbrIdx := a.Neighbor(w, idx, d)
		nbr := a.Get(nbrIdx)
		nbrState := nbr.State
		nbrPos := nbr.Pos

		if nbrState.IsSignalConductor(d.Opposite(), sig) {
			for _, probe := range sigtype.IExcept(d.Opposite()) {
				srcIdx := a.Neighbor(w, nbrIdx, probe)
				src := a.Get(srcIdx)
				if !src.State.IsSignalSource(sig) {
					continue
				}
				v := src.State.DirectSignal(w, src.Pos, probe.Opposite(), sig)
				if v > best {
					best = v
					if best >= sig.Max {
						return sig.Max
					}
				}
			}
		}

		if nbrState.IsSignalSource(sig) {
			v := nbrState.Signal(w, nbrPos, d.Opposite(), sig)
			if v > best {
				best = v
				if best >= sig.Max {
					return sig.Max
				}
			}
		}
	}

	return sig.Clamp(best)
}

// FindWirePower folds every incoming wire connection's contribution into
// idx's VirtualPower. For each IN connection whose
// peer is not (when ignoreSearched is set) already Searched this phase, the
// contribution is max(min, peer.VirtualPower - max(step_self, step_peer)),
// offered through the opposite side of the connection. A wire of a
// self-referential (step == 0) type skips any peer of the exact same
// WireType whose current best contribution came from idx itself, so two
// such wires cannot inflate each other's power through a two-node loop
// (see WireType.SelfPowering).
func FindWirePower(a *Arena, idx int32, ignoreSearched bool) {
	e := a.Get(idx)
	mySig := e.WireType.Signal
	myType := e.WireType
	conns := e.Connections

	conns.ForEach(ResolveFlowDir(e), func(side sigtype.ConnectionSide, c ConnectionEntry) {
		if !c.Type.In() {
			return
		}
		peer := a.Get(c.Peer)
		if ignoreSearched && peer.Searched {
			return
		}
		if !myType.SelfPowering() && peer.WireType.Block == myType.Block && peer.PoweredBy == idx {
			return
		}

		step := mySig.Step
		if peer.WireType.Signal.Step > step {
			step = peer.WireType.Signal.Step
		}
		power := peer.VirtualPower - step
		if power < mySig.Min {
			power = mySig.Min
		}
		OfferPower(a, idx, power, oppositeSide(side), c.Peer)
	})
}

// FindExternalPower recomputes idx's ExternalPower from its non-wire
// neighbors and resets VirtualPower/FlowInMask to that baseline, discarding
// any wire-derived contribution previously folded in. This is the reset
// half of FindPower, split out so root discovery can call it without also
// folding in wire connections.
func FindExternalPower(a *Arena, w worldface.World, idx int32) {
	ext := ExternalPower(a, w, idx)
	e := a.Get(idx)
	e.ExternalPower = ext
	e.VirtualPower = ext
	e.FlowInMask = 0
}

// RefreshExternalPower recomputes idx's ExternalPower and raises
// VirtualPower if the refreshed value is higher, without touching
// FlowInMask or any wire-derived contribution already folded in. The search
// phase uses this on a peer whose computed power fell below what the world
// holds, to rule out a missed external source before trusting the
// disagreement.
func RefreshExternalPower(a *Arena, w worldface.World, idx int32) {
	ext := ExternalPower(a, w, idx)
	e := a.Get(idx)
	e.ExternalPower = ext
	if ext > e.VirtualPower {
		e.VirtualPower = ext
	}
}

// FindPower resets idx's VirtualPower to its ExternalPower and FlowInMask to
// zero, then folds in wire contributions unless external power already
// saturates the signal type's maximum. A removed or
// breaking wire is pinned to its signal type's minimum instead: its cell no
// longer carries anything, even when an external source still sits beside
// it, so the only power it may transmit during phase 3 is the minimum that
// flushes its former neighbors back down.
func FindPower(a *Arena, w worldface.World, idx int32, ignoreSearched bool) {
	e := a.Get(idx)
	if e.Removed || e.ShouldBreak {
		e.VirtualPower = e.WireType.Signal.Min
		e.FlowInMask = 0
		return
	}
	FindExternalPower(a, w, idx)
	e = a.Get(idx)
	if e.ExternalPower >= e.WireType.Signal.Max {
		return
	}
	FindWirePower(a, idx, ignoreSearched)
}

// TransmitPower pushes idx's settled VirtualPower out along every OUT
// connection and returns the peers whose VirtualPower was raised as a
// result, so the caller can re-enqueue them.
func TransmitPower(a *Arena, idx int32) []int32 {
	e := a.Get(idx)
	forward := ResolveFlowDir(e)
	myStep := e.WireType.Signal.Step
	myPower := e.VirtualPower
	conns := e.Connections

	var raised []int32
	conns.ForEach(forward, func(side sigtype.ConnectionSide, c ConnectionEntry) {
		if !c.Type.Out() {
			return
		}
		peer := a.Get(c.Peer)
		step := myStep
		if peer.WireType.Signal.Step > step {
			step = peer.WireType.Signal.Step
		}
		power := myPower - step
		if power < peer.WireType.Signal.Min {
			power = peer.WireType.Signal.Min
		}
		if OfferPower(a, c.Peer, power, side, idx) {
			raised = append(raised, c.Peer)
		}
	})
	return raised
}

// oppositeSide returns the geometrically mirrored ConnectionSide, used so
// FindWirePower can record the continuation direction (away from the
// incoming peer) in FlowInMask. Staircase sides have no exact mirror under
// this package's invented geometry (see DESIGN.md); they map to their
// same-axis counterpart as a reasonable approximation that only affects
// flow-direction bookkeeping, never a settled power value.
var oppositeSideTable = map[sigtype.ConnectionSide]sigtype.ConnectionSide{
	sigtype.SideNorth: sigtype.SideSouth,
	sigtype.SideSouth: sigtype.SideNorth,
	sigtype.SideEast:  sigtype.SideWest,
	sigtype.SideWest:  sigtype.SideEast,
	sigtype.SideUp:    sigtype.SideDown,
	sigtype.SideDown:  sigtype.SideUp,

	sigtype.SideNorthEast: sigtype.SideSouthWest,
	sigtype.SideSouthWest: sigtype.SideNorthEast,
	sigtype.SideNorthWest: sigtype.SideSouthEast,
	sigtype.SideSouthEast: sigtype.SideNorthWest,

	sigtype.SideWestUp:   sigtype.SideEastDown,
	sigtype.SideEastDown: sigtype.SideWestUp,
	sigtype.SideWestDown: sigtype.SideEastUp,
	sigtype.SideEastUp:   sigtype.SideWestDown,

	sigtype.SideStaircaseNorth: sigtype.SideStaircaseSouth,
	sigtype.SideStaircaseSouth: sigtype.SideStaircaseNorth,
	sigtype.SideStaircaseEast:  sigtype.SideStaircaseWest,
	sigtype.SideStaircaseWest:  sigtype.SideStaircaseEast,
}

func oppositeSide(s sigtype.ConnectionSide) sigtype.ConnectionSide {
	if o, ok := oppositeSideTable[s]; ok {
		return o
	}
	return s
}
