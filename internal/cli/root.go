package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/axnarrate/pkg/buildinfo"
	"github.com/matzehuels/axnarrate/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The configuration is loaded in PersistentPreRunE, so every subcommand sees
// c.Config with file and environment values applied. The logger is attached
// to the command context and reachable through loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "axnarrate reads accessibility trees aloud, as text",
		Long: `axnarrate turns an accessibility tree snapshot (the JSON that browser
DevTools produce) into the linear narration a screen reader user hears:
landmarks announced as blocks, controls with their role and state, and inline
markers where the tree is broken.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			if c.Logger.GetLevel() <= LogDebug {
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetRenderHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/axnarrate/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sessionCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.rolesCommand())
	root.AddCommand(c.completionCommand())

	return root
}
