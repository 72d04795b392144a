// Package nodelink draws an accessibility tree as a node-link diagram.
//
// # Overview
//
// Where package narrate shows what a screen reader would say, nodelink shows
// the raw structure it said it from: every node as a box labelled with its
// role and name, and an arrow for every childIds entry. Problems that the
// narrator reports inline are visible here too. Nodes without a usable role
// are filled red, ignored nodes are dashed and hidden nodes dotted, and
// child ids that do not resolve appear as red "missing" placeholders.
//
// # Usage
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [ToDOT] output can also be saved and processed with external Graphviz
// tools. [RenderSVG] and [RenderPNG] use [github.com/goccy/go-graphviz] to
// lay the graph out in-process.
package nodelink
