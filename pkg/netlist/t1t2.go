package netlist

import (
	"fmt"
	"sort"
)

// Component is the T2-level identity of a real part: the data a netlist
// record needs, detached from the design object it came from.
type Component struct {
	Name       string
	Value      string
	Properties map[string]string
}

// NetVertex is one real pin inside a net.
type NetVertex struct {
	Component *Component
	Pin       int
}

// Net is a named maximal set of electrically connected real pins.
type Net struct {
	Name     string
	Vertices []NetVertex
}

// T2FromT1 resolves connectivity over the node graph and emits the
// net-indexed representation: per net, the ordered real (component, pin)
// vertices. Nets are ordered by name, vertices by component name then pin.
// Nets whose derived names collide (parallel topologies falling back to the
// same real-name join) get "@0", "@1", ... suffixes in resolution order, so
// every emitted net name is unique.
func T2FromT1(nodes []*Node) ([]*Net, error) {
	groups, err := resolveNets(nodes)
	if err != nil {
		return nil, err
	}

	comps := make(map[*Node]*Component)
	nets := make([]*Net, 0, len(groups))
	for _, vertices := range groups {
		name, err := netName(vertices)
		if err != nil {
			return nil, err
		}
		net := &Net{Name: name}
		for _, v := range vertices {
			if !v.Node.Real {
				continue
			}
			comp, ok := comps[v.Node]
			if !ok {
				comp = &Component{
					Name:       v.Node.Name,
					Value:      v.Node.Value,
					Properties: v.Node.Properties,
				}
				comps[v.Node] = comp
			}
			net.Vertices = append(net.Vertices, NetVertex{Component: comp, Pin: v.Pin})
		}
		sort.Slice(net.Vertices, func(i, j int) bool {
			a, b := net.Vertices[i], net.Vertices[j]
			if a.Component.Name != b.Component.Name {
				return a.Component.Name < b.Component.Name
			}
			return a.Pin < b.Pin
		})
		nets = append(nets, net)
	}

	disambiguateNets(nets)
	sort.Slice(nets, func(i, j int) bool { return nets[i].Name < nets[j].Name })
	return nets, nil
}

// disambiguateNets appends "@0", "@1", ... to nets sharing a derived name,
// in the deterministic resolution order.
func disambiguateNets(nets []*Net) {
	counts := make(map[string]int, len(nets))
	for _, net := range nets {
		counts[net.Name]++
	}
	seen := make(map[string]int)
	for _, net := range nets {
		if counts[net.Name] < 2 {
			continue
		}
		name := net.Name
		net.Name = fmt.Sprintf("%s@%d", name, seen[name])
		seen[name]++
	}
}

// T1FromT2 is the inverse conversion, used for import and round-trip
// validation. A two-vertex net becomes one pairwise edge. A larger net
// cannot be expressed pairwise without loss, so a virtual hub node named
// after the net (empty value) is synthesized and every vertex fans out to
// the hub; re-resolving the graph reconstructs the original membership.
func T1FromT2(nets []*Net) ([]*Node, error) {
	compNodes := make(map[*Component]*Node)
	var nodes []*Node

	nodeFor := func(c *Component) *Node {
		if node, ok := compNodes[c]; ok {
			return node
		}
		node := NewNode(c.Name, true, c.Value)
		node.Properties = c.Properties
		compNodes[c] = node
		nodes = append(nodes, node)
		return node
	}

	for _, net := range nets {
		if net.Name == "" {
			return nil, fmt.Errorf("%w: unnamed net", ErrNoName)
		}
		switch len(net.Vertices) {
		case 0:
			// Nothing to connect.
		case 1:
			nodeFor(net.Vertices[0].Component)
		case 2:
			a, b := net.Vertices[0], net.Vertices[1]
			nodeFor(a.Component).AddEdge(a.Pin, nodeFor(b.Component), b.Pin)
		default:
			hub := NewNode(net.Name, false, "")
			nodes = append(nodes, hub)
			for _, v := range net.Vertices {
				nodeFor(v.Component).AddEdge(v.Pin, hub, 1)
			}
		}
	}
	return nodes, nil
}
