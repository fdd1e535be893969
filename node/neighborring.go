package node

import (
	"github.com/voxelmesh/signalmesh/cell"
	"github.com/voxelmesh/signalmesh/sigtype"
	"github.com/voxelmesh/signalmesh/worldface"
)

// ForEachNeighbor returns the 24 cells a committed wire's update fan-out
// visits around idx, in three fixed distance groups — six direct, twelve
// diagonal, six far — ordered front-relative to forward. The six direct
// cells go through Neighbor (so their symmetric links stay cached); the
// other eighteen are materialized through GetOrAdd since the arena only
// caches direct links.
func ForEachNeighbor(a *Arena, w worldface.World, idx int32, forward cell.Direction) [24]int32 {
	e := a.Get(idx)
	pos := e.Pos
	full := sigtype.FullUpdateOrder(forward)
	front, back, right, left, down, up := full[0], full[1], full[2], full[3], full[4], full[5]

	var out [24]int32
	n := 0

	for _, d := range [6]cell.Direction{front, back, right, left, down, up} {
		out[n] = a.Neighbor(w, idx, d)
		n++
	}

	diagonals := [12][2]cell.Direction{
		{front, right}, {back, left}, {front, left}, {back, right},
		{front, down}, {back, up}, {front, up}, {back, down},
		{right, down}, {left, up}, {right, up}, {left, down},
	}
	for _, pair := range diagonals {
		out[n] = a.GetOrAdd(w, pos.Offset(pair[0]).Offset(pair[1]))
		n++
	}

	for _, d := range [6]cell.Direction{front, back, right, left, down, up} {
		out[n] = a.GetOrAdd(w, pos.Offset(d).Offset(d))
		n++
	}

	return out
}
