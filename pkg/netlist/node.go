// Package netlist turns a design graph into electrical nets. It defines two
// intermediate representations: a pairwise adjacency graph of (node, pin)
// vertices (T1) and a net-indexed list of real component pins (T2), plus the
// conversions between them.
package netlist

import (
	"errors"
	"sort"
)

// Sentinel errors for build and conversion failures.
var (
	// ErrStructural marks unresolved references: a peer interface without
	// an owning component, a pin missing from its owner's pin map, or an
	// imported net naming an unknown component. The whole build aborts.
	ErrStructural = errors.New("netlist: structural fault")

	// ErrNoName is returned when the naming precedence yields an empty
	// name. Nets are never emitted unnamed.
	ErrNoName = errors.New("netlist: naming policy exhausted")
)

// Vertex is a single connectivity endpoint: one pin of one node.
type Vertex struct {
	Node *Node
	Pin  int
}

// Node is an ephemeral wrapper around a component for one compile run. Real
// nodes carry a footprint and appear in the emitted netlist; virtual nodes
// exist for naming and bridging only.
type Node struct {
	Name       string
	Real       bool
	Value      string
	Properties map[string]string

	pins      []int
	resolved  bool
	neighbors map[int][]Vertex
	resolve   func() (map[int][]Vertex, error)
}

// NewNode creates a standalone node with no declared pins. Used for nodes
// synthesized during import; builder nodes come from Build.
func NewNode(name string, real bool, value string) *Node {
	return &Node{
		Name:      name,
		Real:      real,
		Value:     value,
		resolved:  true,
		neighbors: make(map[int][]Vertex),
	}
}

// Pins returns the declared pin numbers in ascending order.
func (n *Node) Pins() []int {
	if n.pins == nil && n.resolved {
		pins := make([]int, 0, len(n.neighbors))
		for pin := range n.neighbors {
			pins = append(pins, pin)
		}
		sort.Ints(pins)
		return pins
	}
	out := make([]int, len(n.pins))
	copy(out, n.pins)
	return out
}

// Neighbors resolves and returns the pin-to-peers adjacency of the node.
// Resolution runs at most once per node; later calls return the memoized
// result.
func (n *Node) Neighbors() (map[int][]Vertex, error) {
	if !n.resolved {
		adj, err := n.resolve()
		if err != nil {
			return nil, err
		}
		n.neighbors = adj
		n.resolved = true
	}
	return n.neighbors, nil
}

// AddEdge records a symmetric adjacency between (n, pin) and (peer, peerPin).
func (n *Node) AddEdge(pin int, peer *Node, peerPin int) {
	n.addHalfEdge(pin, Vertex{Node: peer, Pin: peerPin})
	peer.addHalfEdge(peerPin, Vertex{Node: n, Pin: pin})
}

func (n *Node) addHalfEdge(pin int, to Vertex) {
	if n.neighbors == nil {
		n.neighbors = make(map[int][]Vertex)
	}
	n.neighbors[pin] = append(n.neighbors[pin], to)
	if !containsInt(n.pins, pin) && !n.resolved {
		n.pins = append(n.pins, pin)
		sort.Ints(n.pins)
	}
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
