package engine

import (
	"github.com/voxelmesh/signalmesh/cell"
	"github.com/voxelmesh/signalmesh/node"
	"github.com/voxelmesh/signalmesh/sigtype"
)

// discoverRoot runs single-position root discovery for idx, the wire named
// by an OnWireUpdate/OnWireAdded/OnWireRemoved
// call: discover it, compute its external power, fold in wire contributions
// when that alone does not already settle the question, and push it as a
// root if its freshly computed power disagrees with what the world holds
// (or it was just added, removed, or broken).
//
// When idx belongs to a larger network, a single entry point is not enough
// to catch every wire a shared power source might also be feeding — the
// one-source-feeding-multiple-network-cells case this cascade exists to
// cover without full network enumeration. So this walks idx's six direct
// neighbors in flow order; any neighbor that conducts or sources idx's
// signal type is itself probed on its own cardinal neighbors (excluding the
// direction back toward idx), and any wire found there is root-checked in
// turn.
func (e *Engine) discoverRoot(idx int32) []int32 {
	entry := e.arena.Get(idx)
	if !entry.IsWire {
		return nil
	}

	var roots []int32
	if rootIdx, ok := e.rootCheck(idx); ok {
		roots = append(roots, rootIdx)
	}

	entry = e.arena.Get(idx)
	if entry.Connections.Total == 0 {
		return roots
	}

	forward := node.ResolveFlowDir(entry)
	sig := entry.WireType.Signal
	for _, d := range sigtype.FullUpdateOrder(forward) {
		nbrIdx := e.arena.Neighbor(e.world, idx, d)
		nbr := e.arena.Get(nbrIdx)
		if nbr.IsWire {
			continue
		}
		back := d.Opposite()
		if !nbr.State.IsSignalConductor(back, sig) && !nbr.State.IsSignalSource(sig) {
			continue
		}

		for c := cell.Direction(0); c < cell.NumCardinal; c++ {
			if c == back {
				continue
			}
			candIdx := e.arena.Neighbor(e.world, nbrIdx, c)
			if !e.arena.Get(candIdx).IsWire {
				continue
			}
			if rootIdx, ok := e.rootCheck(candIdx); ok {
				roots = append(roots, rootIdx)
			}
		}
	}

	return roots
}

// rootCheck discovers idx, computes its external power and (when its type
// is not step=0 or it already needs an update) its full power, and reports
// whether the result disagrees with the world — i.e. whether idx belongs in
// the root list.
func (e *Engine) rootCheck(idx int32) (int32, bool) {
	entry := e.arena.Get(idx)
	if !entry.IsWire {
		return 0, false
	}

	node.Discover(e.arena, e.world, idx)
	node.FindExternalPower(e.arena, e.world, idx)
	entry = e.arena.Get(idx)
	if entry.WireType.Signal.Step != 0 || node.NeedsUpdate(entry) {
		node.FindPower(e.arena, e.world, idx, false)
		entry = e.arena.Get(idx)
	}

	if node.NeedsUpdate(entry) {
		return idx, true
	}
	return 0, false
}
