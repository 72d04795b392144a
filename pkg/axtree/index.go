package axtree

// Index is an id lookup over a [Tree]. It is immutable after [NewIndex]
// returns and safe for concurrent readers.
type Index struct {
	nodes map[string]*Node
	order []*Node
	root  string
}

// NewIndex builds an index over t. When two nodes share an id the later one
// wins. The root is the id of the first node, or "" for an empty tree.
func NewIndex(t *Tree) *Index {
	ix := &Index{
		nodes: make(map[string]*Node, len(t.Nodes)),
		order: make([]*Node, len(t.Nodes)),
	}
	for i := range t.Nodes {
		n := &t.Nodes[i]
		ix.nodes[n.ID] = n
		ix.order[i] = n
	}
	if len(t.Nodes) > 0 {
		ix.root = t.Nodes[0].ID
	}
	return ix
}

// Lookup returns the node with the given id.
func (ix *Index) Lookup(id string) (*Node, bool) {
	n, ok := ix.nodes[id]
	return n, ok
}

// Root returns the id of the root node.
func (ix *Index) Root() string { return ix.root }

// Len returns the number of nodes the index was built from, including
// nodes shadowed by a duplicate id.
func (ix *Index) Len() int { return len(ix.order) }

// Dangling returns every child id that does not resolve, in document order.
func (ix *Index) Dangling() []string {
	var out []string
	for _, n := range ix.order {
		for _, id := range n.ChildIDs {
			if _, ok := ix.nodes[id]; !ok {
				out = append(out, id)
			}
		}
	}
	return out
}
