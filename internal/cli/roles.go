package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/axnarrate/pkg/narrate"
)

// rolesCommand lists the roles the narrator knows how to announce.
func (c *CLI) rolesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List supported roles",
		Long: `List the roles the narrator knows how to announce. Nodes with any other
role are narrated as "Unknown role <role>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, r := range narrate.Roles() {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
}
