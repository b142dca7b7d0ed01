// Package design provides the circuit object model: components, interfaces,
// and footprints, composed into a tree and wired into a connectivity graph.
// Behavior is attached through the trait registry rather than subclassing,
// so a generic component becomes "placeable" by gaining footprint and
// pin-map capabilities.
package design

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceEDA/pkg/trait"
)

// Component owns named sub-interfaces and sub-components and carries zero or
// more trait implementations.
type Component struct {
	trait.Holder

	kind   string
	parent *Component
	name   string // name within parent, empty for roots

	ifaces []namedIface
	subs   []*Component
}

type namedIface struct {
	name  string
	iface *Interface
}

// NewComponent creates a component of the given concrete kind (e.g.
// "Resistor"). The kind participates in synthesized display names.
func NewComponent(kind string) *Component {
	return &Component{kind: kind}
}

// Kind returns the concrete component kind.
func (c *Component) Kind() string { return c.kind }

// Name returns the component's name within its parent, empty for roots.
func (c *Component) Name() string { return c.name }

// Parent returns the owning component, nil for roots.
func (c *Component) Parent() *Component { return c.parent }

// AttachTrait binds an implementation to this component.
func (c *Component) AttachTrait(impl trait.Impl) error {
	return c.Holder.Attach(c, impl)
}

// AddInterface inserts a named interface into the component and propagates
// the owning-component reference into it and all nested sub-interfaces.
// Interface ownership is single and exclusive.
func (c *Component) AddInterface(name string, i *Interface) error {
	if i.owner != nil || i.parent != nil {
		return fmt.Errorf("design: interface %q already owned", name)
	}
	if _, ok := c.InterfaceNamed(name); ok {
		return fmt.Errorf("design: component already has interface %q", name)
	}
	i.name = name
	i.setOwner(c)
	c.ifaces = append(c.ifaces, namedIface{name: name, iface: i})
	return nil
}

// AddSub inserts a named sub-component into the composition tree.
func (c *Component) AddSub(name string, sub *Component) error {
	if sub.parent != nil {
		return fmt.Errorf("design: component %q already owned", name)
	}
	for _, s := range c.subs {
		if s.name == name {
			return fmt.Errorf("design: component already has sub-component %q", name)
		}
	}
	sub.parent = c
	sub.name = name
	c.subs = append(c.subs, sub)
	return nil
}

// Interfaces returns the component's direct interfaces in insertion order.
func (c *Component) Interfaces() []*Interface {
	out := make([]*Interface, len(c.ifaces))
	for i, ni := range c.ifaces {
		out[i] = ni.iface
	}
	return out
}

// InterfaceNamed looks up a direct interface by name.
func (c *Component) InterfaceNamed(name string) (*Interface, bool) {
	for _, ni := range c.ifaces {
		if ni.name == name {
			return ni.iface, true
		}
	}
	return nil, false
}

// Subs returns the direct sub-components in insertion order.
func (c *Component) Subs() []*Component {
	out := make([]*Component, len(c.subs))
	copy(out, c.subs)
	return out
}

// PathNames returns the composition-path names from the outermost named
// ancestor down to this component. Roots yield an empty path.
func (c *Component) PathNames() []string {
	if c.parent == nil {
		return nil
	}
	return append(c.parent.PathNames(), c.name)
}

// Interface may own nested sub-interfaces (composite interfaces such as a
// power rail with hv/lv terminals) and holds a symmetric peer list.
type Interface struct {
	trait.Holder

	kind   string
	name   string
	owner  *Component // set once at insertion, propagated recursively
	parent *Interface

	subs  []namedIface
	peers []*Interface
}

// NewInterface creates an interface of the given kind.
func NewInterface(kind string) *Interface {
	return &Interface{kind: kind}
}

// Kind returns the interface kind.
func (i *Interface) Kind() string { return i.kind }

// Name returns the interface's name within its parent, empty when detached.
func (i *Interface) Name() string { return i.name }

// Owner returns the component this interface ultimately belongs to, nil if
// the interface (or its enclosing composite) was never attached.
func (i *Interface) Owner() *Component { return i.owner }

// AttachTrait binds an implementation to this interface.
func (i *Interface) AttachTrait(impl trait.Impl) error {
	return i.Holder.Attach(i, impl)
}

// AddSub nests a sub-interface. The owning component, if already known, is
// propagated into the new subtree.
func (i *Interface) AddSub(name string, sub *Interface) error {
	if sub.owner != nil || sub.parent != nil {
		return fmt.Errorf("design: interface %q already owned", name)
	}
	if _, ok := i.SubNamed(name); ok {
		return fmt.Errorf("design: interface already has sub-interface %q", name)
	}
	sub.name = name
	sub.parent = i
	sub.setOwner(i.owner)
	i.subs = append(i.subs, namedIface{name: name, iface: sub})
	return nil
}

// Subs returns nested sub-interfaces in insertion order.
func (i *Interface) Subs() []*Interface {
	out := make([]*Interface, len(i.subs))
	for n, ni := range i.subs {
		out[n] = ni.iface
	}
	return out
}

// SubNamed looks up a nested sub-interface by name.
func (i *Interface) SubNamed(name string) (*Interface, bool) {
	for _, ni := range i.subs {
		if ni.name == name {
			return ni.iface, true
		}
	}
	return nil, false
}

// Peers returns the connected peer interfaces.
func (i *Interface) Peers() []*Interface {
	out := make([]*Interface, len(i.peers))
	copy(out, i.peers)
	return out
}

func (i *Interface) setOwner(c *Component) {
	i.owner = c
	for _, ni := range i.subs {
		ni.iface.setOwner(c)
	}
}

// Connect records a bidirectional peer edge between i and other. The peer
// must be of the exact same interface type: same kind and, recursively, the
// same sub-interface structure. Repeated connects are tolerated; net
// resolution groups by connectivity, it does not count edges.
func (i *Interface) Connect(other *Interface) error {
	if !sameShape(i, other) {
		return fmt.Errorf("design: cannot connect %s to %s: interface types differ", i.kind, other.kind)
	}
	i.peers = append(i.peers, other)
	other.peers = append(other.peers, i)

	// Composite interfaces connect member-wise by position.
	for n := range i.subs {
		if err := i.subs[n].iface.Connect(other.subs[n].iface); err != nil {
			return err
		}
	}
	return nil
}

// ConnectVia inserts a bridging component between i and target, using the
// bridge's declared input and output terminals.
func (i *Interface) ConnectVia(bridge *Component, target *Interface) error {
	b, err := trait.GetAs[Bridger](&bridge.Holder, CanBridge)
	if err != nil {
		return fmt.Errorf("design: %s is no bridge: %w", bridge.kind, err)
	}
	if err := i.Connect(b.BridgeIn()); err != nil {
		return err
	}
	return b.BridgeOut().Connect(target)
}

// ConnectViaChain bridges i to target through a series of bridge components.
func (i *Interface) ConnectViaChain(bridges []*Component, target *Interface) error {
	end := i
	for _, bridge := range bridges {
		b, err := trait.GetAs[Bridger](&bridge.Holder, CanBridge)
		if err != nil {
			return fmt.Errorf("design: %s is no bridge: %w", bridge.kind, err)
		}
		if err := end.Connect(b.BridgeIn()); err != nil {
			return err
		}
		end = b.BridgeOut()
	}
	return end.Connect(target)
}

func sameShape(a, b *Interface) bool {
	if a.kind != b.kind || len(a.subs) != len(b.subs) {
		return false
	}
	for n := range a.subs {
		if a.subs[n].name != b.subs[n].name {
			return false
		}
		if !sameShape(a.subs[n].iface, b.subs[n].iface) {
			return false
		}
	}
	return true
}

// Footprint is a capability-bearing leaf representing a physical package.
// Components reference footprints via traits, they do not compose them.
type Footprint struct {
	trait.Holder
}

// NewFootprint creates an empty footprint.
func NewFootprint() *Footprint {
	return &Footprint{}
}

// AttachTrait binds an implementation to this footprint.
func (f *Footprint) AttachTrait(impl trait.Impl) error {
	return f.Holder.Attach(f, impl)
}
