package commands

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/udisondev/unitbalance/internal/admin"
	"github.com/udisondev/unitbalance/internal/audit"
	"github.com/udisondev/unitbalance/internal/balance"
	"github.com/udisondev/unitbalance/internal/docstore"
)

const balanceUsage = "usage: b set|tech|toggle|save|load|list|reset|base ..."

var toggles = map[string]bool{
	balance.KeyEnabled:          true,
	balance.KeyDumpFields:       true,
	balance.KeyShrimpDisableAim: true,
	balance.KeyAdditionalSpawn:  true,
}

// Balance handles b <subcommand>, the balance document editor.
// Edits land in the active document and take effect on the next rebalance.
type Balance struct {
	docs  Documents
	bal   Balancer
	audit audit.Recorder
	now   func() time.Time
}

// NewBalance creates the editor. rec may be nil.
func NewBalance(docs Documents, bal Balancer, rec audit.Recorder, now func() time.Time) *Balance {
	if now == nil {
		now = time.Now
	}
	return &Balance{docs: docs, bal: bal, audit: rec, now: now}
}

func (c *Balance) Names() []string           { return []string{"b", "balance"} }
func (c *Balance) RequiredAccessLevel() int32 { return admin.LevelModerator }

func (c *Balance) Handle(ctx context.Context, op *admin.Operator, args []string) error {
	if len(args) < 2 {
		return errors.New(balanceUsage)
	}
	rest := args[2:]
	switch strings.ToLower(args[1]) {
	case "set":
		return c.set(ctx, op, rest)
	case "tech":
		return c.tech(ctx, op, rest)
	case "toggle":
		return c.toggle(ctx, op, rest)
	case "save":
		return c.save(op, rest)
	case "load":
		return c.load(op, rest)
	case "list":
		return c.list(op)
	case "reset":
		if err := c.docs.ResetBlank(); err != nil {
			return err
		}
		op.Reply("Config reset to vanilla. Use rebalance to apply.")
		return nil
	case "base":
		return c.base(op, rest)
	default:
		return errors.New(balanceUsage)
	}
}

// set takes <unit...> <key> <value>; unit names may contain spaces.
func (c *Balance) set(ctx context.Context, op *admin.Operator, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: b set <unit> <key> <value>")
	}
	unit := strings.Join(args[:len(args)-2], " ")
	key := strings.ToLower(args[len(args)-2])
	value, err := strconv.ParseFloat(args[len(args)-1], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[len(args)-1], err)
	}

	old, err := c.docs.WriteParam(unit, key, value)
	if err != nil {
		return err
	}
	nv := docstore.FormatParam(key, value)
	c.record(ctx, op, unit, key, old, nv)
	op.Reply("%s %s: %s -> %s. Use rebalance to apply.", unit, key, old, nv)
	return nil
}

func (c *Balance) tech(ctx context.Context, op *admin.Operator, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: b tech <tier> <seconds>")
	}
	tier, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid tier %q: %w", args[0], err)
	}
	seconds, err := strconv.ParseFloat(args[1], 64)
	if err != nil || seconds < 0 {
		return fmt.Errorf("invalid seconds %q", args[1])
	}

	old, err := c.docs.WriteTechTier(tier, seconds)
	if err != nil {
		return err
	}
	nv := strconv.FormatInt(int64(math.Round(seconds)), 10)
	c.record(ctx, op, balance.KeyTechTime, "tier_"+strconv.Itoa(tier), old, nv)
	op.Reply("Tier %d research time: %s -> %ss. Use rebalance to apply.", tier, old, nv)
	return nil
}

func (c *Balance) toggle(ctx context.Context, op *admin.Operator, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: b toggle <key> <true|false>")
	}
	key := strings.ToLower(args[0])
	if !toggles[key] {
		return fmt.Errorf("unknown toggle %q", args[0])
	}
	v, err := strconv.ParseBool(args[1])
	if err != nil {
		return fmt.Errorf("invalid flag %q: %w", args[1], err)
	}

	old, err := c.docs.WriteBool(key, v)
	if err != nil {
		return err
	}
	c.record(ctx, op, "-", key, old, strconv.FormatBool(v))
	op.Reply("%s: %s -> %t. Use rebalance to apply.", key, old, v)
	return nil
}

func (c *Balance) save(op *admin.Operator, args []string) error {
	file, err := c.docs.Save(strings.Join(args, "_"))
	if err != nil {
		return err
	}
	op.Reply("Saved as %s", file)
	return nil
}

func (c *Balance) load(op *admin.Operator, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: b load <file>")
	}
	if err := c.docs.Load(args[0]); err != nil {
		return err
	}
	op.Reply("Loaded %s. Use rebalance to apply.", args[0])
	return nil
}

func (c *Balance) list(op *admin.Operator) error {
	files, err := c.docs.List()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		op.Reply("No saved configs.")
		return nil
	}
	for i, f := range files {
		op.Reply("%d. %s", i+1, f)
	}
	return nil
}

// base takes <unit...> <kind> <attr>.
func (c *Balance) base(op *admin.Operator, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: b base <unit> <kind> <attr>")
	}
	unit := strings.Join(args[:len(args)-2], " ")
	kind, attr := args[len(args)-2], args[len(args)-1]
	v, err := c.bal.BaselineValue(unit, kind, attr)
	if err != nil {
		return err
	}
	op.Reply("%s %s.%s vanilla = %s", unit, kind, attr, v)
	return nil
}

func (c *Balance) record(ctx context.Context, op *admin.Operator, unit, key, old, nv string) {
	if c.audit == nil {
		return
	}
	e := audit.Entry{
		At:       c.now(),
		Player:   op.Name,
		PlayerID: op.ID,
		Unit:     unit,
		Key:      key,
		Old:      old,
		New:      nv,
	}
	if err := c.audit.Record(ctx, e); err != nil {
		op.Reply("Warning: audit entry not stored: %s", err)
	}
}
