// Package parts provides a small library of ready-made components built on
// the design object model: two-terminal passives, bridgeable parts, and the
// virtual rail/battery nodes that give nets their names.
package parts

import (
	"github.com/OpenTraceLab/OpenTraceEDA/pkg/design"
	"github.com/OpenTraceLab/OpenTraceEDA/pkg/trait"
)

// Resistor creates a two-terminal resistor with symmetric pin numbering.
// The value string (e.g. "100Ω") becomes the component value in the netlist.
func Resistor(value string) *design.Component {
	return twoTerminal("Resistor", value)
}

// Capacitor creates a two-terminal capacitor with symmetric pin numbering.
func Capacitor(value string) *design.Component {
	return twoTerminal("Capacitor", value)
}

// LED creates a polarized two-terminal diode bridging anode to cathode.
func LED() *design.Component {
	c := design.NewComponent("LED")
	anode := design.Electrical()
	cathode := design.Electrical()
	mustAddIface(c, "anode", anode)
	mustAddIface(c, "cathode", cathode)
	mustAttach(c, design.NewDefinedTypeDescription("LED"))
	mustAttach(c, design.NewDefinedBridge(anode, cathode))
	mustAttach(c, design.NewSymmetricPinMap())
	return c
}

// Switch creates a two-terminal switch.
func Switch() *design.Component {
	return twoTerminal("Switch", "SW")
}

// Rail creates a named virtual single-terminal node (e.g. "GND", "+3V3").
// It carries a pin map so connectivity resolves through it, but no
// footprint, so it never appears as a netlist component; its name seeds the
// net name instead.
func Rail(name string) *design.Component {
	c := design.NewComponent("Rail")
	t := design.Electrical()
	mustAddIface(c, "1", t)
	mustAttach(c, design.NewOverriddenName(name))
	mustAttach(c, design.NewDefinedPinMap(map[int]*design.Interface{1: t}))
	return c
}

// Terminal returns the rail's single electrical terminal.
func Terminal(rail *design.Component) *design.Interface {
	t, ok := rail.InterfaceNamed("1")
	if !ok {
		panic("parts: rail without terminal")
	}
	return t
}

// Battery creates a named virtual two-terminal source. Its terminals name
// the nets they join: pin 1 as the bare battery name, pin 2 with a ":2"
// suffix.
func Battery(name string) *design.Component {
	c := design.NewComponent("Battery")
	plus := design.Electrical()
	minus := design.Electrical()
	mustAddIface(c, "plus", plus)
	mustAddIface(c, "minus", minus)
	mustAttach(c, design.NewOverriddenName(name))
	mustAttach(c, design.NewDefinedPinMap(map[int]*design.Interface{1: plus, 2: minus}))
	return c
}

// WithFootprint gives a component a physical package: a footprint carrying
// the CAD library identifier, bound through the defined-footprint trait.
// Combined with the pin map the parts already carry, this makes the
// component real in the emitted netlist.
func WithFootprint(c *design.Component, kicadID string) *design.Component {
	fp := design.NewFootprint()
	mustAttachFP(fp, design.NewKicadFootprintID(kicadID))
	mustAttach(c, design.NewDefinedFootprint(fp))
	return c
}

func twoTerminal(kind, value string) *design.Component {
	c := design.NewComponent(kind)
	a := design.Electrical()
	b := design.Electrical()
	mustAddIface(c, "1", a)
	mustAddIface(c, "2", b)
	mustAttach(c, design.NewDefinedTypeDescription(value))
	mustAttach(c, design.NewDefinedBridge(a, b))
	mustAttach(c, design.NewSymmetricPinMap())
	return c
}

// Construction of fresh parts cannot collide with existing names or owners;
// a failure here is a library bug.

func mustAddIface(c *design.Component, name string, i *design.Interface) {
	if err := c.AddInterface(name, i); err != nil {
		panic(err)
	}
}

func mustAttach(c *design.Component, impl trait.Impl) {
	if err := c.AttachTrait(impl); err != nil {
		panic(err)
	}
}

func mustAttachFP(f *design.Footprint, impl trait.Impl) {
	if err := f.AttachTrait(impl); err != nil {
		panic(err)
	}
}
