// Package narrate renders an accessibility tree into the linear narration a
// screen reader would produce.
//
// Rendering is a single depth-first pass over an [axtree.Index]. Each node is
// dispatched on its role token to a fixed strategy: landmarks become titled
// blocks ("navigation" ... "end of navigation"), interactive controls become
// spans annotated with their role and state ("Subscribe, checked checkbox"),
// text leaves emit their name, and a handful of structural roles pass their
// children through unchanged.
//
// Problems with the input never abort a render. A child id that does not
// resolve, a node without a role, an unknown role, a cycle or excessive
// nesting each become a [KindError] fragment in place of the offending node,
// and rendering continues with its siblings.
//
// The result is a [Fragment] tree. Package sink turns fragments into plain
// text, ANSI-styled terminal output, HTML or JSON.
//
//	tree, _ := axtree.Parse(data)
//	frag := narrate.Render(tree)
//	fmt.Print(sink.Text(frag))
package narrate
