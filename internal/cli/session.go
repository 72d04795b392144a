package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/axnarrate/pkg/errors"
	"github.com/matzehuels/axnarrate/pkg/session"
)

// sessionCommand creates the command for managing saved trees.
func (c *CLI) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Manage saved trees",
		Long: `Manage saved trees.

Every tree rendered from a file or standard input is saved, so a later
"axnarrate render" or "axnarrate view" without arguments narrates it again.`,
	}

	cmd.AddCommand(c.sessionShowCommand())
	cmd.AddCommand(c.sessionListCommand())
	cmd.AddCommand(c.sessionRemoveCommand())
	cmd.AddCommand(c.sessionClearCommand())
	cmd.AddCommand(c.sessionPathCommand())

	return cmd
}

// withSessions opens the session store for the duration of fn.
func (c *CLI) withSessions(ctx context.Context, fn func(session.Store) error) error {
	store, err := c.newSessionStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errNoSessions
	}
	defer store.Close()
	return fn(store)
}

// sessionShowCommand creates the "session show" subcommand.
func (c *CLI) sessionShowCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a saved tree (the latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSessions(ctx, func(store session.Store) error {
				e, err := getEntry(ctx, store, args)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if raw {
					_, err := fmt.Fprintln(out, string(e.Data))
					return err
				}
				printKeyValue(out, "ID", e.ID)
				printKeyValue(out, "Source", e.Source)
				printKeyValue(out, "Size", formatSize(e.Size))
				printKeyValue(out, "Hash", e.Hash[:12])
				printKeyValue(out, "Saved", e.CreatedAt.Local().Format(time.DateTime))
				printKeyValue(out, "Expires", e.ExpiresAt.Local().Format(time.DateTime))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the tree JSON")
	return cmd
}

func getEntry(ctx context.Context, store session.Store, args []string) (*session.Entry, error) {
	var e *session.Entry
	var err error
	if len(args) == 0 || args[0] == "latest" {
		e, err = store.Latest(ctx)
	} else {
		if err := apperrors.ValidateSessionID(args[0]); err != nil {
			return nil, err
		}
		e, err = store.Get(ctx, args[0])
	}
	if errors.Is(err, session.ErrNotFound) {
		return nil, apperrors.New(apperrors.ErrCodeSessionNotFound, "no saved tree")
	}
	return e, err
}

// sessionListCommand creates the "session list" subcommand.
func (c *CLI) sessionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved trees, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSessions(ctx, func(store session.Store) error {
				entries, err := store.List(ctx)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					printInfo("No saved trees")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), sessionTable(entries, time.Now()))
				return nil
			})
		},
	}
}

// sessionTable renders entries as a table. The newest entry is
// highlighted since it is the one narrated by default.
func sessionTable(entries []*session.Entry, now time.Time) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.ID, e.Source, formatSize(e.Size), formatRelativeTime(e.CreatedAt, now)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Source", "Size", "Saved").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == 0:
				return lipgloss.NewStyle().Foreground(colorGreen)
			case col == 3:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// sessionRemoveCommand creates the "session rm" subcommand.
func (c *CLI) sessionRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Remove saved trees",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSessions(ctx, func(store session.Store) error {
				for _, id := range args {
					if err := apperrors.ValidateSessionID(id); err != nil {
						return err
					}
					if err := store.Delete(ctx, id); err != nil {
						return err
					}
					printSuccess("Removed %s", id)
				}
				return nil
			})
		},
	}
}

// sessionClearCommand creates the "session clear" subcommand.
func (c *CLI) sessionClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every saved tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSessions(ctx, func(store session.Store) error {
				n, err := store.Clear(ctx)
				if err != nil {
					return err
				}
				printSuccess("Removed %d saved trees", n)
				return nil
			})
		},
	}
}

// sessionPathCommand creates the "session path" subcommand.
func (c *CLI) sessionPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where saved trees are stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSessions(ctx, func(store session.Store) error {
				switch s := store.(type) {
				case *session.FileStore:
					fmt.Fprintln(cmd.OutOrStdout(), s.Path())
				default:
					fmt.Fprintln(cmd.OutOrStdout(), c.Config.Session.RedisAddr)
				}
				return nil
			})
		},
	}
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return strconv.Itoa(n) + " B"
	}
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}
