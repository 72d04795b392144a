package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/axnarrate/pkg/errors"
	"github.com/matzehuels/axnarrate/pkg/pipeline"
)

// graphCommand creates the command that draws the raw tree as a node-link
// diagram. Broken nodes and dangling child ids are highlighted, which makes
// it the companion of render when a narration shows error markers.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format         string
		output         string
		detailed       bool
		skipSuppressed bool
		noCache        bool
	)

	cmd := &cobra.Command{
		Use:   "graph [file|-]",
		Short: "Draw an accessibility tree as a node-link diagram",
		Long: `Draw an accessibility tree as a node-link diagram.

Nodes the narrator cannot render are filled red, ignored nodes are dashed
and hidden nodes dotted. Child ids that resolve to no node appear as red
"missing" placeholders.

DOT is written to stdout unless -o is given; SVG and PNG are written next
to the input (or to narration.<format> for stdin and saved trees).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !pipeline.IsNodelink(format) {
				return apperrors.New(apperrors.ErrCodeInvalidFormat, "graph format must be dot, svg or png, got %q", format)
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			in, err := c.loadInput(ctx, runner, args, true)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, "Drawing "+in.source+"...")
			spinner.Start()
			res, err := runner.Render(ctx, in.tree, in.raw, pipeline.Options{
				Formats:        []string{format},
				Detailed:       detailed,
				SkipSuppressed: skipSuppressed,
			})
			spinner.Stop()
			if err != nil {
				return err
			}

			data := res.Artifacts[format]
			if output == "" && format == pipeline.FormatDOT {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if output == "" {
				output = fmt.Sprintf("%s.%s", basePath("", in.source), format)
			}
			if err := writeFile(output, data); err != nil {
				return err
			}
			printSuccess("Drew %d nodes", res.Stats.NodeCount)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatSVG, "diagram format: dot, svg, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with their id and properties")
	cmd.Flags().BoolVar(&skipSuppressed, "skip-suppressed", false, "omit ignored and hidden subtrees")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}
