// Package config loads signal types and wire-type bindings from YAML into
// the sigtype tables the engine and node graph consult at construction
// time. Signal types are data, not code: adding a new wire kind should
// never require touching the engine.
package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/voxelmesh/signalmesh/sigtype"
)

// Sentinel errors for registry construction.
var (
	// ErrDuplicateSignal indicates two SignalTypeSpec entries share a name.
	ErrDuplicateSignal = errors.New("config: duplicate signal type name")
	// ErrUnknownSignal indicates a WireTypeSpec references an undefined signal.
	ErrUnknownSignal = errors.New("config: wire type references unknown signal type")
	// ErrDuplicateWireType indicates two WireTypeSpec entries share a block kind.
	ErrDuplicateWireType = errors.New("config: duplicate wire type block kind")
	// ErrInvalidRange indicates a signal type's min/max/step are out of range.
	ErrInvalidRange = errors.New("config: invalid signal type range")
)

// SignalTypeSpec is the YAML shape of one signal type entry.
type SignalTypeSpec struct {
	Name string `yaml:"name"`
	Min  int    `yaml:"min"`
	Max  int    `yaml:"max"`
	Step int    `yaml:"step"`
}

// WireTypeSpec is the YAML shape of one wire-type binding.
type WireTypeSpec struct {
	Name   string `yaml:"name"`
	Signal string `yaml:"signal"`
	Block  string `yaml:"block"`
}

// File is the top-level YAML document: a list of signal types and a list of
// wire types that bind them to specific blocks.
type File struct {
	Signals []SignalTypeSpec `yaml:"signals"`
	Wires   []WireTypeSpec   `yaml:"wires"`
}

// Registry resolves wire types and signal types by name for the engine.
type Registry struct {
	signals map[string]sigtype.SignalType
	wires   map[string]sigtype.WireType
	byBlock map[sigtype.BlockKind]sigtype.WireType
}

// Parse decodes raw YAML bytes into a Registry, validating every signal
// range and every wire-type's reference to a declared signal.
func Parse(raw []byte) (*Registry, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return build(f)
}

func build(f File) (*Registry, error) {
	reg := &Registry{
		signals: make(map[string]sigtype.SignalType, len(f.Signals)),
		wires:   make(map[string]sigtype.WireType, len(f.Wires)),
		byBlock: make(map[sigtype.BlockKind]sigtype.WireType, len(f.Wires)),
	}

	for _, s := range f.Signals {
		if s.Min < 0 || s.Min > s.Max || s.Step < 0 {
			return nil, fmt.Errorf("%w: %q (min=%d max=%d step=%d)", ErrInvalidRange, s.Name, s.Min, s.Max, s.Step)
		}
		if _, dup := reg.signals[s.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSignal, s.Name)
		}
		reg.signals[s.Name] = sigtype.SignalType{Min: s.Min, Max: s.Max, Step: s.Step}
	}

	for _, w := range f.Wires {
		sig, ok := reg.signals[w.Signal]
		if !ok {
			return nil, fmt.Errorf("%w: wire %q wants signal %q", ErrUnknownSignal, w.Name, w.Signal)
		}
		block := sigtype.BlockKind(w.Block)
		if _, dup := reg.byBlock[block]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateWireType, block)
		}
		wt := sigtype.WireType{Name: w.Name, Signal: sig, Block: block}
		reg.wires[w.Name] = wt
		reg.byBlock[block] = wt
	}

	return reg, nil
}

// SignalType looks up a signal type by name.
func (r *Registry) SignalType(name string) (sigtype.SignalType, bool) {
	st, ok := r.signals[name]
	return st, ok
}

// WireType looks up a wire type by name.
func (r *Registry) WireType(name string) (sigtype.WireType, bool) {
	wt, ok := r.wires[name]
	return wt, ok
}

// WireTypeForBlock looks up the wire type bound to a block kind.
func (r *Registry) WireTypeForBlock(block sigtype.BlockKind) (sigtype.WireType, bool) {
	wt, ok := r.byBlock[block]
	return wt, ok
}
