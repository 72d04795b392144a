package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/axnarrate/pkg/pipeline"
	"github.com/matzehuels/axnarrate/pkg/render/diff"
)

// errNarrationsDiffer is returned by diff --exit-code when the narrations
// differ.
var errNarrationsDiffer = errors.New("narrations differ")

// diffCommand creates the command that compares the narrations of two trees.
func (c *CLI) diffCommand() *cobra.Command {
	var (
		contextLines int
		color        string
		root         string
		maxDepth     int
		exitCode     bool
	)

	cmd := &cobra.Command{
		Use:   "diff <from> <to>",
		Short: "Compare the narrations of two accessibility trees",
		Long: `Compare the narrations of two accessibility trees line by line.

Lines prefixed "+" are announced only for <to>, lines prefixed "-" only
for <from>. Either argument may be "-" for standard input.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			if color == "" {
				color = c.Config.Render.Color
			}
			if maxDepth == 0 {
				maxDepth = c.Config.Render.MaxDepth
			}
			opts := pipeline.Options{Formats: []string{pipeline.FormatText}, Root: root, MaxDepth: maxDepth}

			from, err := narrateFile(ctx, runner, args[0], opts)
			if err != nil {
				return err
			}
			to, err := narrateFile(ctx, runner, args[1], opts)
			if err != nil {
				return err
			}

			res := diff.Lines(from, to)
			if !res.Changed() {
				printSuccess("Narrations are identical")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), res.Format(contextLines, useColor(color, cmd.OutOrStdout())))
			printInfo("%d lines added, %d removed", res.Added, res.Removed)
			if exitCode {
				return errNarrationsDiffer
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&contextLines, "context", "U", 3, "unchanged lines shown around each change (-1 for all)")
	cmd.Flags().StringVar(&color, "color", "", "terminal styling: auto, always, never (default from config)")
	cmd.Flags().StringVar(&root, "root", "", "narrate the subtree of this node id in both trees")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (default from config)")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "exit with an error when the narrations differ")

	return cmd
}

func narrateFile(ctx context.Context, runner *pipeline.Runner, path string, opts pipeline.Options) (string, error) {
	t, raw, err := runner.Load(ctx, path)
	if err != nil {
		return "", err
	}
	res, err := runner.Render(ctx, t, raw, opts)
	if err != nil {
		return "", err
	}
	return string(res.Artifacts[pipeline.FormatText]), nil
}
