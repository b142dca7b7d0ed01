package design

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceEDA/pkg/trait"
)

// The standard trait hierarchy. HasDefinedFootprint refines HasFootprint, so
// querying for "some footprint" also finds statically defined ones.
var (
	HasFootprint        = trait.New("has-footprint")
	HasDefinedFootprint = HasFootprint.Refine("has-defined-footprint")
	HasPinMap           = trait.New("has-footprint-pinmap")
	HasTypeDescription  = trait.New("has-type-description")
	HasOverriddenName   = trait.New("has-overridden-name")
	CanBridge           = trait.New("can-bridge")

	// Footprint-side trait naming the target CAD library footprint.
	HasKicadFootprint = trait.New("has-kicad-footprint")
)

// FootprintProvider yields the footprint a component references.
type FootprintProvider interface {
	Footprint() *Footprint
}

// PinMapProvider maps physical pin numbers to interface instances.
type PinMapProvider interface {
	PinMap() (map[int]*Interface, error)
}

// TypeDescriber yields the human-readable value of a component ("100Ω").
type TypeDescriber interface {
	TypeDescription() string
}

// NameOverrider replaces the synthesized display name of a component.
type NameOverrider interface {
	OverriddenName() string
}

// Bridger declares the input/output terminals of a series-insertable part.
type Bridger interface {
	BridgeIn() *Interface
	BridgeOut() *Interface
}

// KicadFootprintNamer yields the CAD library identifier of a footprint.
type KicadFootprintNamer interface {
	KicadFootprint() string
}

// DefinedFootprint statically binds a footprint to a component.
type DefinedFootprint struct {
	trait.ImplBase
	fp *Footprint
}

func NewDefinedFootprint(fp *Footprint) *DefinedFootprint {
	return &DefinedFootprint{fp: fp}
}

func (d *DefinedFootprint) TraitKind() *trait.Trait { return HasDefinedFootprint }
func (d *DefinedFootprint) Footprint() *Footprint   { return d.fp }

// SymmetricPinMap numbers the owner's electrical terminals 1..n in insertion
// order. Suitable for parts whose pins are interchangeable.
type SymmetricPinMap struct {
	trait.ImplBase
}

func NewSymmetricPinMap() *SymmetricPinMap { return &SymmetricPinMap{} }

func (p *SymmetricPinMap) TraitKind() *trait.Trait { return HasPinMap }

func (p *SymmetricPinMap) PinMap() (map[int]*Interface, error) {
	comp, ok := p.Owner().(*Component)
	if !ok {
		return nil, fmt.Errorf("design: symmetric pin map not attached to a component")
	}
	pins := make(map[int]*Interface)
	for n, leaf := range electricalLeaves(comp) {
		pins[n+1] = leaf
	}
	return pins, nil
}

// electricalLeaves flattens the component's interfaces to electrical leaf
// terminals, preserving insertion order.
func electricalLeaves(c *Component) []*Interface {
	var out []*Interface
	var walk func(i *Interface)
	walk = func(i *Interface) {
		subs := i.Subs()
		if len(subs) == 0 {
			if i.Kind() == "electrical" {
				out = append(out, i)
			}
			return
		}
		for _, sub := range subs {
			walk(sub)
		}
	}
	for _, i := range c.Interfaces() {
		walk(i)
	}
	return out
}

// DefinedPinMap binds an explicit pin-number-to-terminal mapping.
type DefinedPinMap struct {
	trait.ImplBase
	pins map[int]*Interface
}

func NewDefinedPinMap(pins map[int]*Interface) *DefinedPinMap {
	return &DefinedPinMap{pins: pins}
}

func (p *DefinedPinMap) TraitKind() *trait.Trait { return HasPinMap }

func (p *DefinedPinMap) PinMap() (map[int]*Interface, error) {
	return p.pins, nil
}

// DefinedTypeDescription binds a fixed value string.
type DefinedTypeDescription struct {
	trait.ImplBase
	desc string
}

func NewDefinedTypeDescription(desc string) *DefinedTypeDescription {
	return &DefinedTypeDescription{desc: desc}
}

func (d *DefinedTypeDescription) TraitKind() *trait.Trait { return HasTypeDescription }
func (d *DefinedTypeDescription) TypeDescription() string { return d.desc }

// OverriddenName binds an explicit display name.
type OverriddenName struct {
	trait.ImplBase
	name string
}

func NewOverriddenName(name string) *OverriddenName {
	return &OverriddenName{name: name}
}

func (o *OverriddenName) TraitKind() *trait.Trait { return HasOverriddenName }
func (o *OverriddenName) OverriddenName() string  { return o.name }

// DefinedBridge declares fixed input/output terminals for ConnectVia.
type DefinedBridge struct {
	trait.ImplBase
	in, out *Interface
}

func NewDefinedBridge(in, out *Interface) *DefinedBridge {
	return &DefinedBridge{in: in, out: out}
}

func (b *DefinedBridge) TraitKind() *trait.Trait { return CanBridge }
func (b *DefinedBridge) BridgeIn() *Interface    { return b.in }
func (b *DefinedBridge) BridgeOut() *Interface   { return b.out }

// KicadFootprintID names the library footprint, e.g.
// "Resistor_SMD:R_0805_2012Metric".
type KicadFootprintID struct {
	trait.ImplBase
	id string
}

func NewKicadFootprintID(id string) *KicadFootprintID {
	return &KicadFootprintID{id: id}
}

func (k *KicadFootprintID) TraitKind() *trait.Trait { return HasKicadFootprint }
func (k *KicadFootprintID) KicadFootprint() string  { return k.id }
