package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/axnarrate/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path (multiple)
	formats  []string // output formats
	root     string   // render the subtree of this node
	maxDepth int      // nesting limit; 0 uses the configured default
	page     bool     // standalone HTML document
	color    string   // auto, always or never
	noCache  bool
	refresh  bool
	noSave   bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Narrate an accessibility tree",
		Long: `Narrate an accessibility tree snapshot.

The tree is read from a file, from standard input ("-"), or, with no
argument, from the most recently loaded tree.

Formats:
  text   plain narration (styled as ansi on a terminal, see --color)
  ansi   narration with terminal styling
  html   narration markup (--page for a complete document)
  json   fragment tree, error summary and plain text
  dot    node-link graph of the raw tree (Graphviz)
  svg    node-link graph rendered as SVG
  png    node-link graph rendered as PNG`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = c.parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if opts.color == "" {
				opts.color = c.Config.Render.Color
			}
			if opts.maxDepth == 0 {
				opts.maxDepth = c.Config.Render.MaxDepth
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s), comma-separated: "+strings.Join(pipeline.Formats(), ", "))
	cmd.Flags().StringVar(&opts.root, "root", "", "narrate the subtree of this node id")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum nesting depth (default from config)")
	cmd.Flags().BoolVar(&opts.page, "page", false, "wrap HTML output in a complete document")
	cmd.Flags().StringVar(&opts.color, "color", "", "terminal styling: auto, always, never (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "do not remember this tree as the latest")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, the configured default format is used.
func (c *CLI) parseFormats(s string) []string {
	if s == "" {
		return []string{c.Config.Render.Format}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// runRender loads the input and writes each requested format.
func (c *CLI) runRender(ctx context.Context, stdout io.Writer, args []string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	in, err := c.loadInput(ctx, runner, args, !opts.noSave)
	if err != nil {
		return err
	}

	toStdout := opts.output == "" && len(opts.formats) == 1
	formats := opts.formats
	if toStdout && formats[0] == pipeline.FormatText && useColor(opts.color, stdout) {
		formats = []string{pipeline.FormatANSI}
	}

	res, err := runner.Render(ctx, in.tree, in.raw, pipeline.Options{
		Formats:  formats,
		Root:     opts.root,
		MaxDepth: opts.maxDepth,
		Page:     opts.page,
		Refresh:  opts.refresh,
	})
	if err != nil {
		return err
	}

	if toStdout {
		if _, err := stdout.Write(res.Artifacts[formats[0]]); err != nil {
			return err
		}
		prog.done("Narrated " + in.source)
		return nil
	}

	base := basePath(opts.output, in.source)
	for _, format := range formats {
		path := fmt.Sprintf("%s.%s", base, format)
		if len(formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := writeFile(path, res.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(res.Stats.NodeCount, res.Stats.ErrorFragments, res.CacheInfo.RenderHit)
	prog.done("Narrated " + in.source)
	return nil
}

// basePath derives the base output path from the output and input names.
// If output is empty, it strips the extension from input; inputs that are
// not files (stdin, a saved session) use "narration". If output has a
// format extension (.txt excluded), that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "stdin" || strings.HasPrefix(input, "session:") {
			return "narration"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
