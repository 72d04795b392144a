package narrate_test

import (
	"github.com/matzehuels/axnarrate/pkg/axtree"
)

type nodeOpt func(*axtree.Node)

// mk builds a node; an empty role leaves the node without one.
func mk(id, role, name string, opts ...nodeOpt) axtree.Node {
	n := axtree.Node{ID: id}
	if role != "" {
		r := axtree.NewString(axtree.TypeRole, role)
		n.Role = &r
	}
	if name != "" {
		v := axtree.NewString(axtree.TypeComputedString, name)
		n.Name = &v
	}
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

func kids(ids ...string) nodeOpt {
	return func(n *axtree.Node) { n.ChildIDs = ids }
}

func prop(name axtree.PropertyName, v axtree.Value) nodeOpt {
	return func(n *axtree.Node) {
		n.Properties = append(n.Properties, axtree.Property{Name: name, Value: v})
	}
}

func ignored() nodeOpt {
	return func(n *axtree.Node) { n.Ignored = true }
}

func hidden() nodeOpt { return prop(axtree.PropHidden, axtree.NewBool(true)) }

func tree(nodes ...axtree.Node) *axtree.Tree {
	return &axtree.Tree{Nodes: nodes}
}
