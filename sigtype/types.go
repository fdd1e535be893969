// Package sigtype defines the power-domain types (SignalType, WireType),
// the eighteen wire-to-wire connection geometries (ConnectionSide), and the
// fixed ordering tables the settle driver walks them in (see tables.go).
//
// Everything here is data: no package in sigtype touches a world or a node.
// The engine (package engine) and the node graph (package node) consult
// these types and tables but never mutate them.
package sigtype

import "github.com/voxelmesh/signalmesh/cell"

// SignalType parameterizes one power domain: the minimum and maximum power
// level a wire of this type can carry, and how much power is lost per hop
// between two wires of this type.
type SignalType struct {
	// Min is the lowest representable power level (a depowered wire settles here).
	Min int
	// Max is the highest representable power level.
	Max int
	// Step is the power lost per hop between directly connected wires.
	// Step == 0 marks a self-referential signal type: such a wire must never
	// offer itself power through its own network (see WireType.SelfPowering).
	Step int
}

// Clamp restricts v to [Min, Max].
func (s SignalType) Clamp(v int) int {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// BelowMin is the sentinel "not yet offered power" value: one less than the
// lowest representable level, used for WireNode.ExternalPower and
// WireNode.VirtualPower before they have been computed.
func (s SignalType) BelowMin() int {
	return s.Min - 1
}

// BlockKind identifies a specific block implementation. The engine never
// interprets the value; it only compares it for equality when revalidating
// a stale node (see node.Arena) and when deciding whether two wires share a
// WireType.
type BlockKind string

// WireType binds a SignalType to the specific block that carries it.
type WireType struct {
	// Name identifies this wire type for logging and the config registry.
	Name   string
	Signal SignalType
	Block  BlockKind
}

// SelfPowering reports whether a wire of this type is allowed to be powered
// by another wire of the same type through a zero-step connection. A
// WireType whose Signal.Step is 0 must never self-power: two such wires can
// offer each other power forever with no decay, which is exactly the
// oscillation the step=0 special case exists to prevent.
func (w WireType) SelfPowering() bool {
	return w.Signal.Step != 0
}

// ConnectionSide names one of the eighteen geometries by which one wire can
// reach another: six direct, eight diagonal, and four staircase shapes.
// The zero value is SideNorth.
type ConnectionSide int8

const (
	// Direct sides: the peer sits immediately adjacent along one axis.
	SideNorth ConnectionSide = iota
	SideSouth
	SideEast
	SideWest
	SideUp
	SideDown

	// Diagonal sides: the peer sits one step along each of two axes.
	SideNorthEast
	SideNorthWest
	SideSouthEast
	SideSouthWest
	SideWestUp
	SideWestDown
	SideEastUp
	SideEastDown

	// Staircase sides: the peer sits two cells across and one cell up,
	// reached by stepping across, up, and across again in a single cardinal
	// direction — the shape a wire makes climbing a single-block staircase.
	SideStaircaseNorth
	SideStaircaseSouth
	SideStaircaseEast
	SideStaircaseWest

	numConnectionSides
)

// NumConnectionSides is the number of distinct connection geometries (18).
const NumConnectionSides = int(numConnectionSides)

var sideNames = [numConnectionSides]string{
	"NORTH", "SOUTH", "EAST", "WEST", "UP", "DOWN",
	"NORTH_EAST", "NORTH_WEST", "SOUTH_EAST", "SOUTH_WEST",
	"WEST_UP", "WEST_DOWN", "EAST_UP", "EAST_DOWN",
	"STAIRCASE_NORTH", "STAIRCASE_SOUTH", "STAIRCASE_EAST", "STAIRCASE_WEST",
}

// String returns the canonical upper-case name of the side.
func (s ConnectionSide) String() string {
	if s < 0 || int(s) >= NumConnectionSides {
		return "INVALID"
	}
	return sideNames[s]
}

// flowInTable gives the fixed cardinal flow_in bitmask for each side:
// direct vertical sides carry no cardinal component, direct horizontal and
// staircase sides carry exactly one bit, and diagonal sides carry one bit
// per horizontal axis involved.
var flowInTable = [numConnectionSides]cell.CardinalMask{
	SideNorth: cell.Bit(cell.North),
	SideSouth: cell.Bit(cell.South),
	SideEast:  cell.Bit(cell.East),
	SideWest:  cell.Bit(cell.West),
	SideUp:    0,
	SideDown:  0,

	SideNorthEast: cell.Bit(cell.North) | cell.Bit(cell.East),
	SideNorthWest: cell.Bit(cell.North) | cell.Bit(cell.West),
	SideSouthEast: cell.Bit(cell.South) | cell.Bit(cell.East),
	SideSouthWest: cell.Bit(cell.South) | cell.Bit(cell.West),
	SideWestUp:    cell.Bit(cell.West),
	SideWestDown:  cell.Bit(cell.West),
	SideEastUp:    cell.Bit(cell.East),
	SideEastDown:  cell.Bit(cell.East),

	SideStaircaseNorth: cell.Bit(cell.North),
	SideStaircaseSouth: cell.Bit(cell.South),
	SideStaircaseEast:  cell.Bit(cell.East),
	SideStaircaseWest:  cell.Bit(cell.West),
}

// FlowIn returns the fixed cardinal bitmask associated with s.
func (s ConnectionSide) FlowIn() cell.CardinalMask {
	return flowInTable[s]
}

// ConnectionType classifies the directional capability of one connection
// between two wires, derived from whether each wire's type can send and/or
// receive power through the other.
type ConnectionType int8

const (
	// ConnIn means power only flows from the peer into this wire.
	ConnIn ConnectionType = iota
	// ConnOut means power only flows from this wire into the peer.
	ConnOut
	// ConnBoth means power flows both ways.
	ConnBoth
)

// In reports whether this connection type admits incoming power.
func (t ConnectionType) In() bool {
	return t == ConnIn || t == ConnBoth
}

// Out reports whether this connection type admits outgoing power.
func (t ConnectionType) Out() bool {
	return t == ConnOut || t == ConnBoth
}
