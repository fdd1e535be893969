// Package engine drives one world's signal network: the three-phase
// search/depower/power settle cycle built on package node's arena and
// package queue's priority queue, reentrancy-safe against world callbacks
// that settle synchronously from inside another settle.
package engine

import (
	"log/slog"

	"github.com/voxelmesh/signalmesh/cell"
	"github.com/voxelmesh/signalmesh/config"
	"github.com/voxelmesh/signalmesh/node"
	"github.com/voxelmesh/signalmesh/queue"
	"github.com/voxelmesh/signalmesh/sigtype"
	"github.com/voxelmesh/signalmesh/telemetry"
	"github.com/voxelmesh/signalmesh/worldface"
)

// Engine is bound to exactly one World for its lifetime and is not safe
// for concurrent use: callers own serializing access to it.
type Engine struct {
	world  worldface.World
	arena  *node.Arena
	logger *slog.Logger

	nesting int
	settle  *telemetry.Settle
}

// New returns an Engine driving w, logging through logger (or slog.Default
// if nil). reg resolves the canonical WireType for a block kind; pass nil
// to trust each BlockState's own self-reported WireType instead.
func New(w worldface.World, reg *config.Registry, logger *slog.Logger) *Engine {
	return &Engine{world: w, arena: node.NewArena(reg), logger: logger}
}

var _ worldface.WireHandler = (*Engine)(nil)

// OnWireUpdate re-settles the network containing the wire at pos.
func (e *Engine) OnWireUpdate(pos cell.Pos) {
	e.run("update", pos, func() []int32 {
		idx := e.arena.GetOrAdd(e.world, pos)
		return e.discoverRoot(idx)
	})
}

// OnWireAdded settles the network after a wire was just placed at pos.
func (e *Engine) OnWireAdded(pos cell.Pos) {
	e.run("added", pos, func() []int32 {
		idx := e.arena.GetOrAdd(e.world, pos)
		e.arena.Get(idx).Added = true
		return e.discoverRoot(idx)
	})
}

// OnWireRemoved settles the network after a wire was just removed from pos.
// A removal reported mid-settle for a wire the current settle already marked
// as breaking is a no-op beyond flagging the entry: its removal is already
// modeled by the settle that decided it must break.
func (e *Engine) OnWireRemoved(pos cell.Pos, oldState worldface.BlockState) {
	if e.nesting > 0 {
		if idx, ok := e.arena.Lookup(pos); ok {
			entry := e.arena.Get(idx)
			if entry.IsWire && entry.ShouldBreak {
				entry.Removed = true
				entry.Invalid = true
				return
			}
		}
	}
	e.run("removed", pos, func() []int32 {
		idx := e.arena.AddRemoved(pos, oldState)
		e.arena.Get(idx).Removed = true
		return e.discoverRoot(idx)
	})
}

// run is the reentrancy-safe entry point every WireHandler method funnels
// through. A nested call (one triggered synchronously by a world callback
// from within an already-running settle) shares the outer settle's arena
// generation and correlation id; only the outermost call invalidates the
// arena on entry and resets it on exit, and the reset happens in a deferred
// scope so a panicking world callback cannot lock future settles out.
func (e *Engine) run(kind string, pos cell.Pos, seed func() []int32) {
	nested := e.nesting > 0
	if !nested {
		e.settle = telemetry.NewSettle(e.logger)
		e.arena.InvalidateAll()
	}
	e.nesting++

	defer func() {
		r := recover()
		e.nesting--
		if e.nesting == 0 {
			e.arena.Reset()
			if r != nil {
				e.settle.Panic(r)
				panic(r)
			}
		} else if r != nil {
			panic(r)
		}
	}()

	e.settle.Begin(kind, pos, nested)
	roots := seed()
	touched := e.settleFrom(roots)
	e.settle.End(len(roots), len(touched))
}

func (e *Engine) settleFrom(roots []int32) []int32 {
	touched := e.search(roots)
	e.settle.Phase("search", len(touched))

	powerRoots := e.depower(touched)
	e.settle.Phase("depower", len(touched))

	e.power(powerRoots)
	e.settle.Phase("power", len(touched))

	return touched
}

// depower re-evaluates every touched wire's virtual power while ignoring
// contributions from peers already searched this settle, which effectively
// empties the network back to what each wire could sustain on its own.
// It classifies each wire: a root, a removed or breaking wire, or any
// wire still above its signal type's minimum after that reset
// must reseed phase 3's update queue so its settled power propagates back
// out to its neighbors; everything else drops to the "not yet offered
// power" sentinel so a later offer from a neighbor is guaranteed to raise
// it and requeue it.
func (e *Engine) depower(touched []int32) []int32 {
	var roots []int32
	for _, idx := range touched {
		node.FindPower(e.arena, e.world, idx, true)
		entry := e.arena.Get(idx)
		if entry.Root || entry.Removed || entry.ShouldBreak || entry.VirtualPower > entry.WireType.Signal.Min {
			roots = append(roots, idx)
			continue
		}
		entry.VirtualPower = entry.WireType.Signal.BelowMin()
	}
	return roots
}

// search walks outward from roots over the wire network via a FIFO queue,
// discovering connections and marking every visited wire Searched exactly
// once. Traversal is pruned at the
// network's boundary rather than flooding every connected wire: a peer is
// only discovered and (when warranted) repowered through an OUT connection,
// and only enqueued when the resulting power still needs an update — once a
// branch settles back to the power the world already holds, it stops
// spreading further, which is what keeps a settle from degrading into
// naive quadratic per-cell recursive propagation.
func (e *Engine) search(roots []int32) []int32 {
	q := node.NewSearchQueue(e.arena)
	for _, r := range roots {
		if q.Offer(r) {
			e.arena.Get(r).Root = true
		}
	}

	var touched []int32
	for {
		idx, ok := q.Poll()
		if !ok {
			break
		}
		entry := e.arena.Get(idx)
		if !entry.IsWire {
			continue
		}

		node.Discover(e.arena, e.world, idx)
		entry = e.arena.Get(idx)
		entry.Searched = true
		touched = append(touched, idx)

		forward := node.ResolveFlowDir(entry)
		entry.Connections.ForEach(forward, func(side sigtype.ConnectionSide, c node.ConnectionEntry) {
			if !c.Type.Out() {
				return
			}
			peer := e.arena.Get(c.Peer)
			if peer.Searched {
				return
			}

			node.Discover(e.arena, e.world, c.Peer)
			peer = e.arena.Get(c.Peer)
			if peer.WireType.Signal.Step != 0 || node.NeedsUpdate(peer) {
				node.FindPower(e.arena, e.world, c.Peer, false)
				peer = e.arena.Get(c.Peer)
			}
			if peer.VirtualPower < peer.CurrentPower {
				node.RefreshExternalPower(e.arena, e.world, c.Peer)
				peer = e.arena.Get(c.Peer)
			}

			if node.NeedsUpdate(peer) {
				node.SetBackupFlowDir(e.arena, c.Peer, backupFlowDirFor(side))
				q.Offer(c.Peer)
			}
		})
	}
	return touched
}

// power drives the final phase's update queue: each wire transmits its
// settled virtual power along every OUT connection, raised peers are
// scheduled in turn, and every committed write's 24-cell neighborhood (see
// node.ForEachNeighbor) is queued alongside the wires themselves so a
// non-wire cell shared by two separately-changed wires still only receives
// one block update for the whole settle. Wires found in that neighborhood
// ring are skipped at push time: only non-wire cells receive block updates,
// and wires are reached only through their real connections.
func (e *Engine) power(roots []int32) {
	pq := queue.New()
	queued := make(map[int32]bool, len(roots))
	for _, r := range roots {
		if !e.arena.Get(r).IsWire {
			continue
		}
		pq.Push(r, true)
		queued[r] = true
	}

	notified := make(map[int32]bool)

	for {
		idx, ok := pq.Pop()
		if !ok {
			break
		}
		delete(queued, idx)
		entry := e.arena.Get(idx)

		if !entry.IsWire {
			e.updateNonWire(idx)
			continue
		}
		if !node.NeedsUpdate(entry) {
			continue
		}

		forward := node.ResolveFlowDir(entry)
		raised := node.TransmitPower(e.arena, idx)
		for _, p := range raised {
			if !queued[p] {
				pq.Push(p, false)
				queued[p] = true
			}
		}

		if !e.commitWire(idx) {
			continue
		}

		entry = e.arena.Get(idx)
		for _, nbrIdx := range node.ForEachNeighbor(e.arena, e.world, idx, forward) {
			nbr := e.arena.Get(nbrIdx)
			if notified[nbrIdx] || nbr.IsWire {
				continue
			}
			notified[nbrIdx] = true
			nbr.NeighborWire = idx
			if !queued[nbrIdx] {
				pq.Push(nbrIdx, false)
				queued[nbrIdx] = true
			}
		}

		if !entry.Removed && !entry.ShouldBreak {
			e.world.UpdateNeighborShapes(entry.Pos, entry.State)
		}
	}
}

// commitWire writes idx's settled power back to the world,
// reporting whether anything observable changed — a real
// power write, or the added/removed/breaking flip already reflected in
// the world by the caller before OnWireAdded/OnWireRemoved ran.
func (e *Engine) commitWire(idx int32) bool {
	entry := e.arena.Get(idx)
	if entry.Removed || entry.ShouldBreak {
		return true
	}

	newPower := entry.WireType.Signal.Clamp(entry.VirtualPower)
	newState := entry.State.WithPower(newPower)
	if e.world.SetBlockState(entry.Pos, newState) {
		entry.CurrentPower = newPower
		entry.State = newState
		return true
	}
	return entry.Added
}

// updateNonWire re-reads the world at idx and, if the cell is still neither
// air nor a wire, delivers a block update to it directly. The re-read
// matters: the cell may have changed since it was queued, and a state that
// became air or wire in the meantime must not receive the update.
func (e *Engine) updateNonWire(idx int32) {
	entry := e.arena.Get(idx)
	fresh := e.world.GetBlockState(entry.Pos)
	entry.State = fresh
	if fresh.IsAir() || fresh.IsWire() {
		return
	}
	fresh.Update(e.world, entry.Pos)
}

// backupFlowDirFor derives the flow direction a newly discovered peer
// should fall back to if its own flow_in mask and connection set are both
// ambiguous when it is later processed: the direction the connection side
// resolves to, or WEST (encoding index 0) when even that is ambiguous.
func backupFlowDirFor(side sigtype.ConnectionSide) cell.Direction {
	if dir, ok := sigtype.FlowOut(side.FlowIn()); ok {
		return dir
	}
	return cell.West
}
