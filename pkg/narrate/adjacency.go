package narrate

import "github.com/matzehuels/axnarrate/pkg/axtree"

// needsSeparator reports whether a space must be synthesized between the
// child at position i and its immediately preceding sibling. Only two
// adjacent text leaves get one; every other strategy spaces itself.
func needsSeparator(ix *axtree.Index, childIDs []string, i int) bool {
	if i == 0 {
		return false
	}
	return isTextLeaf(ix, childIDs[i-1]) && isTextLeaf(ix, childIDs[i])
}

// isTextLeaf reports whether id resolves to a node with role text. Only the
// role token counts: an ignored or hidden text node still takes part in
// adjacency even though it renders nothing.
func isTextLeaf(ix *axtree.Index, id string) bool {
	n, ok := ix.Lookup(id)
	if !ok {
		return false
	}
	role, ok := n.RoleToken()
	return ok && role == roleText
}
