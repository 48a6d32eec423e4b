package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/udisondev/unitbalance/internal/admin"
	"github.com/udisondev/unitbalance/internal/engine"
	"github.com/udisondev/unitbalance/internal/host"
)

func registerHostCommands(h *admin.Handler, sim *host.Sim, eng *engine.Engine) {
	h.Register(&joinCmd{sim: sim})
	h.Register(&tierCmd{sim: sim})
	h.Register(&gameCmd{eng: eng})
	h.Register(&spawnCmd{sim: sim})
	h.Register(&statusCmd{sim: sim, eng: eng})
}

// joinCmd handles join <name>: connects a simulated client.
type joinCmd struct{ sim *host.Sim }

func (c *joinCmd) Names() []string           { return []string{"join"} }
func (c *joinCmd) RequiredAccessLevel() int32 { return admin.LevelAdmin }

func (c *joinCmd) Handle(_ context.Context, op *admin.Operator, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: join <name>")
	}
	p := c.sim.Join(strings.Join(args[1:], " "))
	op.Reply("%s joined as observer %d", p.Name(), p.ObserverID())
	return nil
}

// tierCmd handles tier <team> <tier>.
type tierCmd struct{ sim *host.Sim }

func (c *tierCmd) Names() []string           { return []string{"tier"} }
func (c *tierCmd) RequiredAccessLevel() int32 { return admin.LevelAdmin }

func (c *tierCmd) Handle(_ context.Context, op *admin.Operator, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: tier <team> <tier>")
	}
	tier, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid tier %q: %w", args[2], err)
	}
	if err := c.sim.SetTeamTier(args[1], tier); err != nil {
		return err
	}
	op.Reply("%s is now tier %d", args[1], tier)
	return nil
}

// gameCmd handles game start|end.
type gameCmd struct{ eng *engine.Engine }

func (c *gameCmd) Names() []string           { return []string{"game"} }
func (c *gameCmd) RequiredAccessLevel() int32 { return admin.LevelAdmin }

func (c *gameCmd) Handle(ctx context.Context, op *admin.Operator, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: game start|end")
	}
	switch strings.ToLower(args[1]) {
	case "start":
		c.eng.OnGameStarted(ctx)
		op.Reply("Game started (generation %d)", c.eng.Generation())
	case "end":
		c.eng.OnGameEnded()
		op.Reply("Game ended")
	default:
		return fmt.Errorf("usage: game start|end")
	}
	return nil
}

// spawnCmd handles spawn <team> <unit>, going through the dispenser gate.
type spawnCmd struct{ sim *host.Sim }

func (c *spawnCmd) Names() []string           { return []string{"spawn"} }
func (c *spawnCmd) RequiredAccessLevel() int32 { return admin.LevelAdmin }

func (c *spawnCmd) Handle(_ context.Context, op *admin.Operator, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: spawn <team> <unit>")
	}
	inst, err := c.sim.Dispense(args[1], strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	op.Reply("Spawned %s #%d for %s", inst.Template().DisplayName(), inst.ID(), args[1])
	return nil
}

// statusCmd handles status: teams, observers and the loaded generation.
type statusCmd struct {
	sim *host.Sim
	eng *engine.Engine
}

func (c *statusCmd) Names() []string           { return []string{"status"} }
func (c *statusCmd) RequiredAccessLevel() int32 { return admin.LevelModerator }

func (c *statusCmd) Handle(_ context.Context, op *admin.Operator, _ []string) error {
	st := c.eng.State()
	op.Reply("generation %d, enabled %t, %d overridden units", c.eng.Generation(), st.Active(), len(st.Units()))
	for _, t := range c.sim.Teams() {
		op.Reply("team %s tier %d", t.Name, t.Tier)
	}
	op.Reply("%d observers, %d live instances", len(c.sim.Observers()), len(c.sim.Instances()))
	return nil
}
