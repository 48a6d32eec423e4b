// Package commands implements the unitbalance CLI.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/udisondev/unitbalance/internal/config"
	"github.com/udisondev/unitbalance/internal/docstore"
)

// CLI is the unitbalance command line.
type CLI struct {
	out     io.Writer
	cfgPath string
	cfg     config.Server
	rootCmd *cobra.Command
}

// New creates the CLI. Command output goes to out.
func New(out io.Writer) *CLI {
	c := &CLI{out: out}

	rootCmd := &cobra.Command{
		Use:           "unitbalance",
		Short:         "Live unit balance overrides for a multi-client simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.loadConfig()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVarP(&c.cfgPath, "config", "c", config.Path(), "Server config file")

	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newValidateCmd())
	rootCmd.AddCommand(c.newConfigsCmd())
	rootCmd.AddCommand(c.newSetCmd())
	rootCmd.AddCommand(c.newTechCmd())

	c.rootCmd = rootCmd
	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func (c *CLI) loadConfig() error {
	cfg, err := config.LoadServer(c.cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c.cfg = cfg

	slog.SetDefault(slog.New(slog.NewTextHandler(c.out, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	return nil
}

func (c *CLI) documents() *docstore.Store {
	return docstore.New(c.cfg.Document, c.cfg.SaveDir, nil, nil)
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
