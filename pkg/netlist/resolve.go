package netlist

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// unionFind tracks net membership of vertices with path compression and
// union by rank, so resolution stays near-linear in the vertex count.
type unionFind struct {
	parent map[Vertex]Vertex
	rank   map[Vertex]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[Vertex]Vertex),
		rank:   make(map[Vertex]int),
	}
}

func (u *unionFind) add(v Vertex) {
	if _, ok := u.parent[v]; !ok {
		u.parent[v] = v
		u.rank[v] = 0
	}
}

func (u *unionFind) find(v Vertex) Vertex {
	root := v
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for cur := v; cur != root; {
		next := u.parent[cur]
		u.parent[cur] = root
		cur = next
	}
	return root
}

func (u *unionFind) union(a, b Vertex) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}

// resolveNets computes the connected components of the (node, pin) vertex
// graph and keeps those with at least two real vertices. Each surviving
// component becomes a named net.
func resolveNets(nodes []*Node) ([][]Vertex, error) {
	uf := newUnionFind()

	// Register every declared vertex first so isolated pins exist as
	// singleton sets, then walk each declared edge once.
	for _, node := range nodes {
		for _, pin := range node.Pins() {
			uf.add(Vertex{Node: node, Pin: pin})
		}
	}
	for _, node := range nodes {
		adj, err := node.Neighbors()
		if err != nil {
			return nil, err
		}
		for pin, peers := range adj {
			v := Vertex{Node: node, Pin: pin}
			uf.add(v)
			for _, peer := range peers {
				uf.add(peer)
				uf.union(v, peer)
			}
		}
	}

	groups := make(map[Vertex][]Vertex)
	// Group in deterministic node/pin order so net membership order is a
	// pure function of the input.
	for _, node := range nodes {
		for _, pin := range node.Pins() {
			v := Vertex{Node: node, Pin: pin}
			root := uf.find(v)
			groups[root] = append(groups[root], v)
		}
	}

	var nets [][]Vertex
	for _, node := range nodes {
		for _, pin := range node.Pins() {
			v := Vertex{Node: node, Pin: pin}
			root := uf.find(v)
			members, ok := groups[root]
			if !ok {
				continue // already emitted
			}
			if v != members[0] {
				continue
			}
			delete(groups, root)
			if countReal(members) < 2 {
				continue
			}
			nets = append(nets, members)
		}
	}
	return nets, nil
}

func countReal(vertices []Vertex) int {
	n := 0
	for _, v := range vertices {
		if v.Node.Real {
			n++
		}
	}
	return n
}

// netName derives the net name by precedence: the sorted dash-join of
// virtual vertex names (with a ":pin" suffix for pins other than 1), else
// the sorted dash-join of real component names. An empty result is a
// naming-policy failure; nets are never emitted unnamed.
func netName(vertices []Vertex) (string, error) {
	var virt []string
	for _, v := range vertices {
		if v.Node.Real {
			continue
		}
		name := v.Node.Name
		if v.Pin != 1 {
			name += ":" + strconv.Itoa(v.Pin)
		}
		virt = append(virt, name)
	}
	if len(virt) > 0 {
		sort.Strings(virt)
		return strings.Join(virt, "-"), nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, v := range vertices {
		if !v.Node.Real || seen[v.Node.Name] {
			continue
		}
		seen[v.Node.Name] = true
		names = append(names, v.Node.Name)
	}
	if len(names) > 0 {
		sort.Strings(names)
		return strings.Join(names, "-"), nil
	}
	return "", fmt.Errorf("%w: net with %d vertices has no nameable member", ErrNoName, len(vertices))
}
