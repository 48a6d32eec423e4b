package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/udisondev/unitbalance/internal/admin"
)

// Rebalance handles rebalance [default]: reloads the active document,
// or with "default" restores vanilla values without reapplying.
type Rebalance struct {
	bal Balancer
}

func NewRebalance(bal Balancer) *Rebalance { return &Rebalance{bal: bal} }

func (c *Rebalance) Names() []string           { return []string{"rebalance"} }
func (c *Rebalance) RequiredAccessLevel() int32 { return admin.LevelModerator }

func (c *Rebalance) Handle(ctx context.Context, op *admin.Operator, args []string) error {
	if len(args) > 1 {
		if !strings.EqualFold(args[1], "default") {
			return errors.New("usage: rebalance [default]")
		}
		rep := c.bal.ReloadDefault(ctx)
		op.Reply("Vanilla defaults restored (%d live objects, %d observers). Use rebalance to reload config.",
			rep.Propagated, rep.Scheduled)
		return nil
	}

	rep := c.bal.Reload(ctx)
	if rep.LoadErr != nil {
		op.Reply("Config failed to load, overrides disabled: %s", rep.LoadErr)
		return nil
	}
	if !rep.Enabled {
		op.Reply("Config generation %d loaded but disabled.", rep.Generation)
		return nil
	}
	op.Reply("Config generation %d applied: %d values, %d live objects, syncing %d observers.",
		rep.Generation, rep.Summary.Total(), rep.Propagated, rep.Scheduled)
	return nil
}
