package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/axnarrate/internal/server"
)

// serveCommand creates the command that runs the HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve narrations over HTTP",
		Long: `Serve narrations over HTTP.

GET / shows a form to paste a tree into; POST /api/render narrates a tree
sent as the request body. See the [server] section of the config for
CORS origins, body limits and timeouts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if addr == "" {
				addr = cfg.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			sessions, err := c.newSessionStore(ctx)
			if err != nil {
				return err
			}
			if sessions != nil {
				defer sessions.Close()
			} else {
				printWarning("Sessions are disabled; trees will not be saved")
			}

			srv := server.New(server.Options{
				Runner:       runner,
				Sessions:     sessions,
				SessionTTL:   c.Config.Session.TTL.Duration,
				Logger:       c.Logger,
				CORSOrigins:  cfg.CORSOrigins,
				MaxBodyBytes: cfg.MaxBodyBytes,
			})

			printInfo("Serving on %s", displayURL(addr))
			printNextStep("Narrate a file", fmt.Sprintf("curl --data-binary @tree.json %s/api/render", displayURL(addr)))
			return srv.ListenAndServe(ctx, addr, cfg.ReadTimeout.Duration)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// displayURL turns a listen address into a URL a browser can open.
func displayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
