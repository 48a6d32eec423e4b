package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/udisondev/unitbalance/internal/admin"
	balancecmd "github.com/udisondev/unitbalance/internal/admin/commands"
	"github.com/udisondev/unitbalance/internal/audit"
)

const consoleOperator = "console"

// editor runs a b subcommand against the configured documents as the console operator.
func (c *CLI) editor(cmd *cobra.Command, args ...string) error {
	var rec audit.Recorder
	if c.cfg.AuditLog != "" {
		rec = audit.NewFileLog(c.cfg.AuditLog)
	}
	docs := c.documents()
	if _, err := docs.EnsureDefault(); err != nil {
		return err
	}
	op := admin.NewOperator(consoleOperator, 0, admin.LevelAdmin, func(s string) { c.printf("%s\n", s) })
	b := balancecmd.NewBalance(docs, nil, rec, time.Now)
	return b.Handle(cmd.Context(), op, append([]string{"b"}, args...))
}

func (c *CLI) newConfigsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "Manage saved balance documents",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.editor(cmd, "list")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "save [name]",
		Short: "Save a timestamped copy of the active document",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editor(cmd, append([]string{"save"}, args...)...)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "load <file>",
		Short: "Make a saved document the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editor(cmd, "load", args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Replace the active document with the vanilla one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.editor(cmd, "reset")
		},
	})
	return cmd
}

func (c *CLI) newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <unit> <key> <value>",
		Short: "Write one unit parameter into the active document",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editor(cmd, append([]string{"set"}, args...)...)
		},
	}
}

func (c *CLI) newTechCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tech <tier> <seconds>",
		Short: "Write one tech tier research time into the active document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editor(cmd, "tech", args[0], args[1])
		},
	}
}
