package sigtype

import "github.com/voxelmesh/signalmesh/cell"

// CardinalOrder is the four cardinal directions in a fixed traversal order
// relative to some "forward" direction: front, back, right, left.
type CardinalOrder [4]cell.Direction

// FullOrder is CardinalOrder plus the two vertical directions: front, back,
// right, left, down, up. This is the order the update fan-out's direct ring
// and non-wire neighbor scans use.
type FullOrder [6]cell.Direction

// cardinalUpdateOrders holds the four {front,back,right,left} rotations,
// indexed by the cardinal forward direction (0..3).
var cardinalUpdateOrders [cell.NumCardinal]CardinalOrder

// fullUpdateOrders holds the four {front,back,right,left,down,up} rotations.
var fullUpdateOrders [cell.NumCardinal]FullOrder

func init() {
	for f := cell.Direction(0); f < cell.NumCardinal; f++ {
		front := f
		back := front.Opposite()
		right := front.Clockwise()
		left := front.CounterClockwise()
		cardinalUpdateOrders[f] = CardinalOrder{front, back, right, left}
		fullUpdateOrders[f] = FullOrder{front, back, right, left, cell.Down, cell.Up}
	}
}

// CardinalUpdateOrder returns the {front,back,right,left} rotation for the
// given cardinal forward direction. Panics via index if forward is not
// cardinal; callers only ever pass a resolved flow direction (0..3).
func CardinalUpdateOrder(forward cell.Direction) CardinalOrder {
	return cardinalUpdateOrders[forward]
}

// FullUpdateOrder returns the {front,back,right,left,down,up} rotation for
// the given cardinal forward direction.
func FullUpdateOrder(forward cell.Direction) FullOrder {
	return fullUpdateOrders[forward]
}

// DefaultFullUpdateOrder is a fixed, flow-independent six-direction order.
// The engine does not consult it: shape updates are delivered through
// World.UpdateNeighborShapes in the world's own order, and a wire that never
// resolved a flow direction falls back to FullUpdateOrder(West).
var DefaultFullUpdateOrder = FullOrder{cell.North, cell.South, cell.East, cell.West, cell.Down, cell.Up}

// ConnectionUpdateOrder concatenates three sub-orders: the direct group
// (built from directSideByDirection), connectionGroupDiagonal and
// connectionGroupStaircase. Only the direct group rotates with the forward direction; the diagonal and
// staircase groups keep one fixed declaration order regardless of forward —
// see DESIGN.md's Open Questions for why only the direct group rotates.
var connectionGroupDiagonal = [8]ConnectionSide{
	SideNorthEast, SideNorthWest, SideSouthEast, SideSouthWest,
	SideWestUp, SideWestDown, SideEastUp, SideEastDown,
}

var connectionGroupStaircase = [4]ConnectionSide{
	SideStaircaseNorth, SideStaircaseSouth, SideStaircaseEast, SideStaircaseWest,
}

var directSideByDirection = [cell.NumDirections]ConnectionSide{
	cell.North: SideNorth,
	cell.South: SideSouth,
	cell.East:  SideEast,
	cell.West:  SideWest,
	cell.Down:  SideDown,
	cell.Up:    SideUp,
}

// ConnectionUpdateOrder returns the 18 ConnectionSides in the fixed order
// the search and power phases iterate a wire's connections in, rotated so
// that the direct group leads with the wire's resolved forward direction.
func ConnectionUpdateOrder(forward cell.Direction) [NumConnectionSides]ConnectionSide {
	var out [NumConnectionSides]ConnectionSide
	full := FullUpdateOrder(forward)
	i := 0
	for _, d := range full {
		out[i] = directSideByDirection[d]
		i++
	}
	for _, s := range connectionGroupDiagonal {
		out[i] = s
		i++
	}
	for _, s := range connectionGroupStaircase {
		out[i] = s
		i++
	}
	return out
}

// iExceptTable[except] lists the five directions other than except, in
// ascending encoding order. Used to probe a signal-conductor cube's other
// five faces while computing external power.
var iExceptTable [cell.NumDirections][]cell.Direction

func init() {
	for except := cell.Direction(0); except < cell.NumDirections; except++ {
		rest := make([]cell.Direction, 0, cell.NumDirections-1)
		for d := cell.Direction(0); d < cell.NumDirections; d++ {
			if d != except {
				rest = append(rest, d)
			}
		}
		iExceptTable[except] = rest
	}
}

// IExcept returns the five directions other than except, in ascending
// encoding order.
func IExcept(except cell.Direction) []cell.Direction {
	return iExceptTable[except]
}

// FlowOut resolves the 4-bit flow_in mask accumulated on a wire into the
// single outgoing cardinal direction the engine attributes to it:
//
//   - exactly one bit set: that direction.
//   - two adjacent bits (one is the other's clockwise turn): the clockwise one.
//   - three bits set: the direction whose opposite is the missing one.
//   - zero bits, an opposing pair, or all four bits: ambiguous.
//
// ok is false for the ambiguous cases; callers fall back to the connection
// set's structural direction and then to the stored backup value.
func FlowOut(mask cell.CardinalMask) (dir cell.Direction, ok bool) {
	switch mask.PopCount() {
	case 1:
		for d := cell.Direction(0); d < cell.NumCardinal; d++ {
			if mask.Has(d) {
				return d, true
			}
		}
	case 2:
		for d := cell.Direction(0); d < cell.NumCardinal; d++ {
			cw := d.Clockwise()
			if mask.Has(d) && mask.Has(cw) {
				return cw, true
			}
		}
	case 3:
		for d := cell.Direction(0); d < cell.NumCardinal; d++ {
			if !mask.Has(d) {
				return d.Opposite(), true
			}
		}
	}
	return 0, false
}
