package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/udisondev/unitbalance/internal/balance"
)

func (c *CLI) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [document]",
		Short: "Parse a balance document and report what it overrides",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.cfg.Document
			if len(args) == 1 {
				path = args[0]
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			st, err := balance.Parse(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			c.printf("%s: ok\n", path)
			c.printf("  fingerprint: %s\n", st.Fingerprint)
			c.printf("  enabled: %t\n", st.Enabled)
			c.printf("  units: %d\n", len(st.Units()))
			for tier := 1; tier <= balance.MaxTechTier; tier++ {
				if s, ok := st.TechTime(tier); ok {
					c.printf("  tier_%d: %gs\n", tier, s)
				}
			}
			return nil
		},
	}
}
