package netlist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceEDA/pkg/design"
	"github.com/OpenTraceLab/OpenTraceEDA/pkg/trait"
)

// Build collects every component reachable from the roots through the
// composition tree and wraps each into a Node. Traversal is depth-first
// pre-order: roots in argument order, sub-components in insertion order.
// That order is the tie-break for name disambiguation, so it is part of the
// output contract.
//
// Neighbor resolution is deferred: each node resolves its pin adjacency on
// first use, against the full component set gathered here.
func Build(roots ...*design.Component) ([]*Node, error) {
	var comps []*design.Component
	var collect func(c *design.Component)
	collect = func(c *design.Component) {
		comps = append(comps, c)
		for _, sub := range c.Subs() {
			collect(sub)
		}
	}
	for _, root := range roots {
		collect(root)
	}

	nodes := make([]*Node, 0, len(comps))
	byComp := make(map[*design.Component]*Node, len(comps))
	for _, comp := range comps {
		node, err := wrap(comp)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
		byComp[comp] = node
	}

	disambiguate(nodes)

	for i, comp := range comps {
		comp := comp
		node := nodes[i]
		node.resolve = func() (map[int][]Vertex, error) {
			return resolveNeighbors(comp, node, byComp)
		}
	}

	return nodes, nil
}

// wrap builds the flagged wrapper for one component. A component is real iff
// it currently holds both a footprint and a footprint pin map.
func wrap(comp *design.Component) (*Node, error) {
	node := &Node{}

	isReal := comp.Has(design.HasFootprint) && comp.Has(design.HasPinMap)
	node.Real = isReal

	if comp.Has(design.HasTypeDescription) {
		desc, err := trait.GetAs[design.TypeDescriber](&comp.Holder, design.HasTypeDescription)
		if err != nil {
			return nil, err
		}
		node.Value = desc.TypeDescription()
	} else if isReal {
		return nil, fmt.Errorf("netlist: real component %s has no type description: %w",
			displayPath(comp), trait.ErrMissing)
	}

	if isReal {
		fp, err := trait.GetAs[design.FootprintProvider](&comp.Holder, design.HasFootprint)
		if err != nil {
			return nil, err
		}
		id, err := trait.GetAs[design.KicadFootprintNamer](&fp.Footprint().Holder, design.HasKicadFootprint)
		if err != nil {
			return nil, fmt.Errorf("netlist: footprint of %s has no library identifier: %w",
				displayPath(comp), err)
		}
		node.Properties = map[string]string{"footprint": id.KicadFootprint()}
	}

	if comp.Has(design.HasOverriddenName) {
		o, err := trait.GetAs[design.NameOverrider](&comp.Holder, design.HasOverriddenName)
		if err != nil {
			return nil, err
		}
		node.Name = o.OverriddenName()
	} else {
		node.Name = synthesizeName(comp, node.Value)
	}

	if comp.Has(design.HasPinMap) {
		pm, err := trait.GetAs[design.PinMapProvider](&comp.Holder, design.HasPinMap)
		if err != nil {
			return nil, err
		}
		pins, err := pm.PinMap()
		if err != nil {
			return nil, err
		}
		node.pins = make([]int, 0, len(pins))
		for pin := range pins {
			node.pins = append(node.pins, pin)
		}
		sort.Ints(node.pins)
	}

	return node, nil
}

// synthesizeName derives a display name from the dot-joined composition
// path, the concrete kind, and the value ("virt" when the node has none).
func synthesizeName(comp *design.Component, value string) string {
	if value == "" {
		value = "virt"
	}
	parts := append(comp.PathNames(), comp.Kind(), value)
	return strings.Join(parts, ".")
}

func displayPath(comp *design.Component) string {
	parts := append(comp.PathNames(), comp.Kind())
	return strings.Join(parts, ".")
}

// disambiguate appends "@0", "@1", ... to nodes sharing a computed name, in
// traversal order.
func disambiguate(nodes []*Node) {
	counts := make(map[string]int, len(nodes))
	for _, node := range nodes {
		counts[node.Name]++
	}
	seen := make(map[string]int)
	for _, node := range nodes {
		if counts[node.Name] < 2 {
			continue
		}
		name := node.Name
		node.Name = fmt.Sprintf("%s@%d", name, seen[name])
		seen[name]++
	}
}

// resolveNeighbors follows every connected peer of every pinned terminal and
// reverse-resolves the peer to (owner node, pin). A peer without an owning
// component, an owner outside the build set, or a peer absent from its
// owner's pin map is a structural fault, never a silent drop.
func resolveNeighbors(comp *design.Component, node *Node, byComp map[*design.Component]*Node) (map[int][]Vertex, error) {
	adj := make(map[int][]Vertex)
	if !comp.Has(design.HasPinMap) {
		return adj, nil
	}
	pm, err := trait.GetAs[design.PinMapProvider](&comp.Holder, design.HasPinMap)
	if err != nil {
		return nil, err
	}
	pins, err := pm.PinMap()
	if err != nil {
		return nil, err
	}

	for _, pin := range node.pins {
		term := pins[pin]
		adj[pin] = []Vertex{}
		for _, peer := range term.Peers() {
			owner := peer.Owner()
			if owner == nil {
				return nil, fmt.Errorf("%w: %s pin %d connects to an ownerless interface",
					ErrStructural, node.Name, pin)
			}
			peerNode, ok := byComp[owner]
			if !ok {
				return nil, fmt.Errorf("%w: %s pin %d connects to component %s outside the build",
					ErrStructural, node.Name, pin, displayPath(owner))
			}
			peerPin, err := reversePin(owner, peer)
			if err != nil {
				return nil, fmt.Errorf("%w: %s pin %d: %v", ErrStructural, node.Name, pin, err)
			}
			adj[pin] = append(adj[pin], Vertex{Node: peerNode, Pin: peerPin})
		}
	}
	return adj, nil
}

// reversePin finds the pin number owner assigns to the given terminal.
func reversePin(owner *design.Component, term *design.Interface) (int, error) {
	pm, err := trait.GetAs[design.PinMapProvider](&owner.Holder, design.HasPinMap)
	if err != nil {
		return 0, fmt.Errorf("peer owner %s has no pin map", displayPath(owner))
	}
	pins, err := pm.PinMap()
	if err != nil {
		return 0, err
	}
	for pin, iface := range pins {
		if iface == term {
			return pin, nil
		}
	}
	return 0, fmt.Errorf("peer interface not in pin map of %s", displayPath(owner))
}
