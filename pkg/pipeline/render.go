package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/axnarrate/pkg/axtree"
	"github.com/matzehuels/axnarrate/pkg/narrate"
	"github.com/matzehuels/axnarrate/pkg/render/nodelink"
	"github.com/matzehuels/axnarrate/pkg/render/sink"
)

// Render generates output artifacts for every format in opts.Formats.
// Options must have been validated with [Options.ValidateAndSetDefaults].
// The narration is built once and shared by all narration formats; the DOT
// source is built once and shared by all node-link formats.
func Render(ctx context.Context, t *axtree.Tree, opts Options) (map[string][]byte, narrate.Stats, error) {
	ix := axtree.NewIndex(t)
	root := opts.Root
	if root == "" {
		root = ix.Root()
	}

	var (
		frag  narrate.Fragment
		stats narrate.Stats
	)
	if opts.needsNarration() {
		frag, stats = narrate.New(ix, narrate.WithMaxDepth(opts.MaxDepth)).RenderStats(root)
	}

	var dot string
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if IsNodelink(format) && dot == "" {
			dot = nodelink.ToDOT(t, nodelink.Options{
				Detailed:       opts.Detailed,
				SkipSuppressed: opts.SkipSuppressed,
			})
		}

		data, err := renderFormat(ctx, format, frag, dot, root, ix, opts)
		if err != nil {
			return nil, stats, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, stats, nil
}

func renderFormat(ctx context.Context, format string, frag narrate.Fragment, dot, root string, ix *axtree.Index, opts Options) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(sink.Text(frag)), nil
	case FormatANSI:
		return []byte(sink.ANSI(frag, sink.WithForcedColor())), nil
	case FormatHTML:
		if !opts.Page {
			return []byte(sink.HTML(frag)), nil
		}
		var title string
		if n, ok := ix.Lookup(root); ok {
			title = n.NameText()
		}
		return sink.HTMLPage(frag, sink.PageOptions{Title: title})
	case FormatJSON:
		return sink.JSON(frag, sink.WithJSONRoot(root), sink.WithJSONText(), sink.WithJSONIndent())
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot)
	default:
		return nil, ValidateFormat(format)
	}
}
