package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/axnarrate/pkg/axtree"
	"github.com/matzehuels/axnarrate/pkg/narrate"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node id and every property to node labels.
	// When false, labels show only the role and name.
	Detailed bool

	// SkipSuppressed omits ignored and hidden nodes along with their
	// subtrees.
	SkipSuppressed bool
}

// ToDOT converts an accessibility tree to Graphviz DOT format. Edges follow
// childIds in order. Ignored nodes are dashed and grey, hidden nodes dotted,
// and nodes the narrator cannot render (no role, unknown role) are filled
// red. Child ids that do not resolve appear as red placeholder nodes.
func ToDOT(t *axtree.Tree, opts Options) string {
	ix := axtree.NewIndex(t)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	skip := make(map[string]bool)
	if opts.SkipSuppressed {
		markSuppressed(t, ix, skip)
	}

	seen := make(map[string]bool)
	for _, n := range t.Nodes {
		if skip[n.ID] || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		n, _ := ix.Lookup(n.ID) // the later duplicate wins, as in rendering
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	missing := make(map[string]bool)
	for _, id := range ix.Dangling() {
		if missing[id] || skip[id] {
			continue
		}
		missing[id] = true
		fmt.Fprintf(&buf, "  %q [label=%q, style=\"filled,dashed\", fillcolor=\"#d70000\", fontcolor=white];\n",
			id, "missing "+id)
	}

	buf.WriteString("\n")
	for _, n := range t.Nodes {
		if skip[n.ID] {
			continue
		}
		for _, c := range n.ChildIDs {
			if skip[c] {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", n.ID, c)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// markSuppressed records every node that is ignored or hidden, or that is
// only reachable through one.
func markSuppressed(t *axtree.Tree, ix *axtree.Index, skip map[string]bool) {
	var mark func(id string)
	mark = func(id string) {
		if skip[id] {
			return
		}
		skip[id] = true
		if n, ok := ix.Lookup(id); ok {
			for _, c := range n.ChildIDs {
				mark(c)
			}
		}
	}
	for i := range t.Nodes {
		if n := &t.Nodes[i]; n.Suppressed() {
			mark(n.ID)
		}
	}
}

func fmtLabel(n *axtree.Node, detailed bool) string {
	role, ok := n.RoleToken()
	if !ok {
		role = "(no role)"
	}
	label := role
	if name := n.NameText(); name != "" {
		label += "\n" + strconv.Quote(name)
	}
	if !detailed {
		return label
	}

	parts := []string{"id: " + n.ID}
	for _, p := range n.Properties {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Name, p.Value.String()))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *axtree.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	role, ok := n.RoleToken()
	switch {
	case !ok || !narrate.Supported(role):
		attrs = append(attrs, "fillcolor=\"#d70000\"", "fontcolor=white")
	case n.Ignored:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	case n.Hidden():
		attrs = append(attrs, "style=\"rounded,filled,dotted\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderFormat(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg tag with one whose
// viewBox starts at the origin so the image scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
