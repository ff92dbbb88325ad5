// Package plan models task dependency graphs produced by the request
// splitter and lays them out in topological levels for rendering.
package plan

// Node is one task in a plan. DependsOn lists the IDs of nodes that
// must come earlier; edges point from dependency to dependent.
type Node struct {
	ID        string
	Title     string
	DependsOn []string
}

// Graph is an ordered set of nodes. Order matters: layout ties are
// broken by input order.
type Graph struct {
	Nodes []Node
}

// Lookup returns the node with the given ID.
func (g Graph) Lookup(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
