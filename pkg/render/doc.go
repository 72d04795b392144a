// Package render groups the output stages that turn an accessibility tree,
// or its narration, into something a person reads.
//
//   - [sink]: narration fragments as plain text, ANSI, HTML or JSON
//   - [nodelink]: the raw tree as a Graphviz node-link diagram (DOT, SVG, PNG)
//   - [diff]: a line diff of two narrations
//
// The stages are independent; package pipeline chooses between them by
// output format and caches what they produce.
//
//	frag := narrate.Render(tree)
//	fmt.Print(sink.Text(frag))
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [sink]: github.com/matzehuels/axnarrate/pkg/render/sink
// [nodelink]: github.com/matzehuels/axnarrate/pkg/render/nodelink
// [diff]: github.com/matzehuels/axnarrate/pkg/render/diff
package render
