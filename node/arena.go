// Package node materializes the transient graph of cells touched during one
// settle: the Node arena, wire-specific settle state, connection discovery,
// and the power-computation helpers the engine's settle driver calls into.
//
// Entries are addressed by arena index, never by pointer, so that growing
// the arena or replacing a stale entry never invalidates a reference another
// entry is holding (see the node entry in DESIGN.md).
package node

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"

	"github.com/voxelmesh/signalmesh/cell"
	"github.com/voxelmesh/signalmesh/config"
	"github.com/voxelmesh/signalmesh/sigtype"
	"github.com/voxelmesh/signalmesh/worldface"
)

// NoIndex is the sentinel "no such entry" arena index.
const NoIndex int32 = -1

const initialArenaCap int32 = 64

// Entry is the arena-resident record for one cell touched during a settle.
// Non-wire cells only ever need Pos, State, and IsWire; when IsWire is
// true an Entry additionally carries every field a wire's settle math needs.
type Entry struct {
	Pos   cell.Pos
	State worldface.BlockState

	neighbor    [cell.NumDirections]int32
	hasNeighbor [cell.NumDirections]bool

	Invalid      bool
	NeighborWire int32 // arena index of the wire that queued this entry's block update

	IsWire bool

	WireType      sigtype.WireType
	CurrentPower  int
	VirtualPower  int
	ExternalPower int
	FlowInMask    cell.CardinalMask
	PoweredBy     int32 // arena index of whichever connection last raised VirtualPower
	Connections   ConnectionSet

	backupFlowDir    cell.Direction
	backupFlowDirSet bool

	Discovered, Searched, Root  bool
	Added, Removed, ShouldBreak bool

	queued     bool
	nextQueued int32 // intrusive singly-linked FIFO pointer, see SearchQueue
}

// resetPhaseFlags clears everything that must not survive a revalidation,
// while leaving neighbor links and Pos untouched, so the graph's links stay
// stable across reentrancy when the cell's structure has not changed.
func (e *Entry) resetPhaseFlags() {
	e.Discovered, e.Searched, e.Root = false, false, false
	e.Added, e.Removed, e.ShouldBreak = false, false, false
	e.queued = false
	e.nextQueued = NoIndex
	e.FlowInMask = 0
	e.PoweredBy = NoIndex
	e.backupFlowDir = 0
	e.backupFlowDirSet = false
	e.Connections = ConnectionSet{}
	e.NeighborWire = NoIndex
	if e.IsWire {
		e.VirtualPower = e.WireType.Signal.BelowMin()
		e.ExternalPower = e.WireType.Signal.BelowMin()
	}
}

// Arena allocates and indexes Entry records for one engine. Entries live in
// chunks: growth appends a new chunk as large as the current capacity
// (doubling it) rather than reallocating a single backing slice, so an arena index's Entry address never moves for
// the lifetime of the Arena. Slots are initialized eagerly when a chunk is
// added, keeping alloc a constant-time index bump.
type Arena struct {
	chunks     [][]Entry
	chunkStart []int32
	count      int32

	byPos    map[uint64][]int32
	registry *config.Registry
}

// NewArena constructs an Arena with one small pre-filled pool. reg
// resolves the canonical WireType for a block kind (see classify); a nil
// reg makes the arena trust each BlockState's own self-reported WireType,
// which is what every node package test does.
func NewArena(reg *config.Registry) *Arena {
	a := &Arena{byPos: make(map[uint64][]int32), registry: reg}
	a.growChunk(initialArenaCap)
	return a
}

func (a *Arena) growChunk(n int32) {
	start := int32(0)
	if len(a.chunks) > 0 {
		last := len(a.chunks) - 1
		start = a.chunkStart[last] + int32(len(a.chunks[last]))
	}
	chunk := make([]Entry, n)
	for i := range chunk {
		chunk[i].NeighborWire = NoIndex
		chunk[i].PoweredBy = NoIndex
		chunk[i].nextQueued = NoIndex
		for d := range chunk[i].neighbor {
			chunk[i].neighbor[d] = NoIndex
		}
	}
	a.chunks = append(a.chunks, chunk)
	a.chunkStart = append(a.chunkStart, start)
}

func (a *Arena) capacity() int32 {
	last := len(a.chunks) - 1
	return a.chunkStart[last] + int32(len(a.chunks[last]))
}

func (a *Arena) alloc() int32 {
	if a.count >= a.capacity() {
		a.growChunk(a.capacity())
	}
	idx := a.count
	a.count++
	return idx
}

// Get returns the Entry at idx. The returned pointer remains valid for the
// lifetime of the Arena (see chunked-storage note above).
func (a *Arena) Get(idx int32) *Entry {
	for i := len(a.chunks) - 1; i >= 0; i-- {
		if idx >= a.chunkStart[i] {
			return &a.chunks[i][idx-a.chunkStart[i]]
		}
	}
	panic("node: arena index out of range")
}

// Count reports how many entries are currently live (pre-clear).
func (a *Arena) Count() int32 {
	return a.count
}

// Reset clears the position index and rewinds the allocation counter to
// zero; entry records are retained and reused by the next settle. Call only
// when no settle is nested.
func (a *Arena) Reset() {
	a.count = 0
	for k := range a.byPos {
		delete(a.byPos, k)
	}
}

// InvalidateAll marks every currently allocated entry invalid, so a
// reentrant settle's lookups revalidate from the world instead of trusting
// stale snapshots.
func (a *Arena) InvalidateAll() {
	var i int32
	for i = 0; i < a.count; i++ {
		a.Get(i).Invalid = true
	}
}

func posKey(p cell.Pos) uint64 {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(p.X))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.Y))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Z))
	return xxh3.Hash(buf[:])
}

func (a *Arena) findByPos(key uint64, pos cell.Pos) (int32, bool) {
	for _, idx := range a.byPos[key] {
		if a.Get(idx).Pos == pos {
			return idx, true
		}
	}
	return NoIndex, false
}

func (a *Arena) link(key uint64, idx int32) {
	a.byPos[key] = append(a.byPos[key], idx)
}

// relink retargets pos's position-index entry to newIdx, invalidating
// whatever entry it used to point to so any other entry's cached neighbor
// link to the old index re-resolves through GetOrAdd instead of silently
// returning stale data.
func (a *Arena) relink(key uint64, pos cell.Pos, newIdx int32) {
	bucket := a.byPos[key]
	for i, idx := range bucket {
		if a.Get(idx).Pos == pos {
			a.Get(idx).Invalid = true
			bucket[i] = newIdx
			return
		}
	}
	a.byPos[key] = append(bucket, newIdx)
}

// Lookup returns the arena index tracked for pos, if any, without reading
// the world or revalidating the entry.
func (a *Arena) Lookup(pos cell.Pos) (int32, bool) {
	return a.findByPos(posKey(pos), pos)
}

// Remove detaches pos from the position index and returns its arena index.
// The Entry itself is left allocated (it will be recycled on the next
// Reset); any node still holding this index as a cached neighbor resolves
// it through GetOrAdd the next time it is dereferenced (see Neighbor).
func (a *Arena) Remove(pos cell.Pos) (int32, bool) {
	key := posKey(pos)
	idx, ok := a.findByPos(key, pos)
	if !ok {
		return NoIndex, false
	}
	a.Get(idx).Invalid = true
	bucket := a.byPos[key]
	for i, j := range bucket {
		if j == idx {
			a.byPos[key] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	return idx, true
}

// AddRemoved seeds the arena with a synthetic entry at pos carrying the
// wire state that used to occupy it, for a wire just removed from the
// world (the OnWireRemoved entry point). The world already reflects the
// removal, so classification uses oldState directly instead of reading pos
// back out of w.
func (a *Arena) AddRemoved(pos cell.Pos, oldState worldface.BlockState) int32 {
	key := posKey(pos)
	idx := a.alloc()
	e := a.Get(idx)
	*e = Entry{Pos: pos, NeighborWire: NoIndex, PoweredBy: NoIndex, nextQueued: NoIndex}
	for d := range e.neighbor {
		e.neighbor[d] = NoIndex
	}
	classify(e, oldState, a.registry)
	a.relink(key, pos, idx)
	return idx
}

// classify snapshots st into e, resolving the wire's canonical WireType
// through reg when one is bound for the block: the registry, not the
// BlockState, is the source of truth for a wire's min/max/step once a
// config entry exists for its block, so adding a new wire kind never
// requires touching the engine. A block reg has no entry for, or a nil
// reg, falls back to the state's own self-reported WireType.
func classify(e *Entry, st worldface.BlockState, reg *config.Registry) {
	e.State = st
	e.IsWire = st.IsWire()
	e.Invalid = false
	if e.IsWire {
		wt := st.WireType()
		if reg != nil {
			if resolved, ok := reg.WireTypeForBlock(wt.Block); ok {
				wt = resolved
			}
		}
		e.WireType = wt
		e.CurrentPower = st.Power()
		e.VirtualPower = e.WireType.Signal.BelowMin()
		e.ExternalPower = e.WireType.Signal.BelowMin()
	}
}

// GetOrAdd returns the arena index for pos, creating a fresh entry from the
// world if none is tracked yet, or revalidating (and, if the wire-ness or
// wire kind changed, replacing) a stale one in place.
func (a *Arena) GetOrAdd(w worldface.World, pos cell.Pos) int32 {
	key := posKey(pos)
	if idx, ok := a.findByPos(key, pos); ok {
		e := a.Get(idx)
		if !e.Invalid {
			return idx
		}
		return a.revalidate(w, key, idx)
	}

	idx := a.alloc()
	e := a.Get(idx)
	*e = Entry{Pos: pos, NeighborWire: NoIndex, PoweredBy: NoIndex, nextQueued: NoIndex}
	for d := range e.neighbor {
		e.neighbor[d] = NoIndex
	}
	classify(e, w.GetBlockState(pos), a.registry)
	a.link(key, idx)
	return idx
}

func (a *Arena) revalidate(w worldface.World, key uint64, idx int32) int32 {
	e := a.Get(idx)
	wasWire, wasBlock := e.IsWire, e.WireType.Block
	st := w.GetBlockState(e.Pos)
	isWire := st.IsWire()
	sameShape := wasWire == isWire && (!isWire || wasBlock == st.WireType().Block)
	if sameShape {
		classify(e, st, a.registry)
		e.resetPhaseFlags()
		return idx
	}

	newIdx := a.alloc()
	ne := a.Get(newIdx)
	*ne = Entry{Pos: e.Pos, NeighborWire: NoIndex, PoweredBy: NoIndex, nextQueued: NoIndex}
	for d := range ne.neighbor {
		ne.neighbor[d] = NoIndex
	}
	classify(ne, st, a.registry)
	a.relink(key, e.Pos, newIdx)
	return newIdx
}

// Neighbor returns the arena index adjacent to idx in direction d, lazily
// resolving and symmetrizing the link: once A links to B in d, B links back
// to A in the opposite direction. A cached link whose target has since been
// invalidated is re-resolved through GetOrAdd rather than trusted.
func (a *Arena) Neighbor(w worldface.World, idx int32, d cell.Direction) int32 {
	e := a.Get(idx)
	if e.hasNeighbor[d] {
		cached := e.neighbor[d]
		if !a.Get(cached).Invalid {
			return cached
		}
	}

	peerPos := e.Pos.Offset(d)
	peerIdx := a.GetOrAdd(w, peerPos)

	e = a.Get(idx)
	e.neighbor[d] = peerIdx
	e.hasNeighbor[d] = true

	opp := d.Opposite()
	peer := a.Get(peerIdx)
	peer.neighbor[opp] = idx
	peer.hasNeighbor[opp] = true

	return peerIdx
}
