// Package propagate copies overridden template values into live instances.
package propagate

import (
	"log/slog"

	"github.com/udisondev/unitbalance/internal/applier"
	"github.com/udisondev/unitbalance/internal/balance"
	"github.com/udisondev/unitbalance/internal/model"
)

// Propagator pushes template values into already spawned instances.
// Values are copied from the template, never recomputed, so repeated runs are idempotent.
type Propagator struct {
	log *slog.Logger
}

// New creates a propagator.
func New(logger *slog.Logger) *Propagator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Propagator{log: logger}
}

// categories are the non-neutral override families for one unit.
type categories struct {
	priRange  bool
	slots     map[string]slotFlags
	target    bool
	fow       bool
	jump      bool
	turn      bool
	movement  bool
	strafe    bool
	teleport  bool
	dispenser bool
	shrimp    bool
}

type slotFlags struct {
	rng      bool
	accuracy bool
	reload   bool
	fireRate bool
	magazine bool
	damage   bool
}

func (c categories) any() bool {
	if c.priRange || c.target || c.fow || c.jump || c.turn || c.movement ||
		c.strafe || c.teleport || c.dispenser || c.shrimp {
		return true
	}
	for _, s := range c.slots {
		if s != (slotFlags{}) {
			return true
		}
	}
	return false
}

func nonNeutral(t balance.Table, name string, slot balance.Slot) bool {
	return !balance.IsNeutral(t.Resolve(name, slot))
}

func classify(st *balance.SessionState, name string) categories {
	c := categories{slots: make(map[string]slotFlags, 2)}
	for prefix, slot := range map[string]balance.Slot{"Primary": balance.SlotPrimary, "Secondary": balance.SlotSecondary} {
		c.slots[prefix] = slotFlags{
			rng:      nonNeutral(st.Range, name, slot),
			accuracy: nonNeutral(st.Accuracy, name, slot),
			reload:   nonNeutral(st.Reload, name, slot),
			fireRate: nonNeutral(st.FireRate, name, slot),
			magazine: nonNeutral(st.Magazine, name, slot),
			damage:   nonNeutral(st.Damage, name, slot),
		}
	}
	c.priRange = c.slots["Primary"].rng
	_, c.target = st.TargetDistance.Lookup(name)
	_, c.fow = st.FowDistance.Lookup(name)
	c.jump = st.JumpSpeed.HasAny(name)
	c.turn = st.TurnRadius.HasAny(name)
	c.movement = applier.HasMovement(st, name)
	c.strafe = st.StrafeSpeed.HasAny(name)
	c.teleport = st.TeleportCooldown >= 0 || st.TeleportDuration >= 0
	c.dispenser = st.DispenseTimeout >= 0
	c.shrimp = st.ShrimpDisableAim && name == applier.ShrimpUnit
	return c
}

func (c categories) merge(o categories) categories {
	out := categories{
		priRange:  c.priRange || o.priRange,
		slots:     make(map[string]slotFlags, 2),
		target:    c.target || o.target,
		fow:       c.fow || o.fow,
		jump:      c.jump || o.jump,
		turn:      c.turn || o.turn,
		movement:  c.movement || o.movement,
		strafe:    c.strafe || o.strafe,
		teleport:  c.teleport || o.teleport,
		dispenser: c.dispenser || o.dispenser,
		shrimp:    c.shrimp || o.shrimp,
	}
	for _, prefix := range []string{"Primary", "Secondary"} {
		a, b := c.slots[prefix], o.slots[prefix]
		out.slots[prefix] = slotFlags{
			rng:      a.rng || b.rng,
			accuracy: a.accuracy || b.accuracy,
			reload:   a.reload || b.reload,
			fireRate: a.fireRate || b.fireRate,
			magazine: a.magazine || b.magazine,
			damage:   a.damage || b.damage,
		}
	}
	return out
}

// Propagate updates every live instance and returns the number of updated instances.
// Categories touched by any of the given states are copied, so passing the previous
// generation next to the current one also carries reverted values into instances.
func (p *Propagator) Propagate(instances []*model.Instance, states ...*balance.SessionState) int {
	var active []*balance.SessionState
	for _, st := range states {
		if st != nil && st.Loaded {
			active = append(active, st)
		}
	}
	if len(active) == 0 {
		return 0
	}
	seen := make(map[uint64]struct{}, len(instances))
	updated := 0
	for _, inst := range instances {
		if _, dup := seen[inst.ID()]; dup {
			continue
		}
		seen[inst.ID()] = struct{}{}

		tpl := inst.Template()
		if tpl == nil {
			continue
		}
		cats := classify(active[0], tpl.DisplayName())
		for _, st := range active[1:] {
			cats = cats.merge(classify(st, tpl.DisplayName()))
		}
		if !cats.any() {
			continue
		}
		n := 0
		for _, live := range inst.Components() {
			src, ok := tpl.FirstComponent(live.Kind())
			if !ok {
				continue
			}
			n += copyComponent(live, src, cats)
		}
		if n > 0 {
			updated++
			p.log.Debug("instance updated", "unit", tpl.DisplayName(), "id", inst.ID(), "fields", n)
		}
	}
	return updated
}

func copyComponent(dst, src *model.Component, c categories) int {
	var fields []string
	switch dst.Kind() {
	case model.KindVehicleTurret:
		if c.priRange {
			fields = append(fields, "AimDistance")
		}
		for _, prefix := range []string{"Primary", "Secondary"} {
			s := c.slots[prefix]
			if s.reload {
				fields = append(fields, prefix+"ReloadTime")
			}
			if s.fireRate {
				fields = append(fields, prefix+"FireInterval")
			}
			if s.magazine {
				fields = append(fields, prefix+"MagazineSize")
			}
			if s.accuracy {
				fields = append(fields, prefix+"MuzzleSpread")
			}
		}
	case model.KindUnitAimAt:
		if c.priRange {
			fields = append(fields, "AimDistanceMax")
		}
	case model.KindSensor:
		if c.target || c.shrimp {
			fields = append(fields, "TargetingDistance")
		}
		if c.fow {
			fields = append(fields, "FogOfWarViewDistance")
		}
	case model.KindSoldier, model.KindPlayerMovement, model.KindFPSMovement:
		if c.jump {
			fields = append(fields, "JumpSpeed")
		}
	case model.KindVehicleWheeled:
		if c.turn {
			fields = append(fields, "TurningCircleRadius")
		}
	case model.KindVehicleAir:
		if c.strafe {
			fields = append(fields, "StrafeSpeed")
		}
	case model.KindCreatureDecapod:
		if c.strafe {
			fields = append(fields, "FlyMoveScaleSide")
		}
		if c.shrimp {
			fields = append(fields, "AIMeleeDistance")
		}
	case model.KindAIAiming:
		if c.shrimp {
			fields = append(fields, "AimPaused")
		}
	case model.KindTeleportUI:
		if c.teleport {
			fields = append(fields, "TeleportCooldownTime", "TeleportTime")
		}
	case model.KindVehicleDispenser:
		if c.dispenser {
			fields = append(fields, "DispenseTimeout")
		}
	}
	if c.movement {
		for _, f := range applier.MoveSpeedFields() {
			if model.IsDeclared(src, f) {
				fields = append(fields, f)
			}
		}
	}

	n := 0
	for _, f := range fields {
		if copyAttr(dst, src, f) {
			n++
		}
	}
	n += copySubs(dst, src, c)
	return n
}

// copySubs walks nested attack objects. Slot flags follow the sub-object field name.
func copySubs(dst, src *model.Component, c categories) int {
	n := 0
	for _, field := range dst.SubFields() {
		liveSub, _ := dst.Sub(field)
		tplSub, ok := src.Sub(field)
		if !ok {
			continue
		}
		prefix := "Primary"
		if balance.SlotForAttack(field) == balance.SlotSecondary {
			prefix = "Secondary"
		}
		s := c.slots[prefix]
		if s.rng && copyAttr(liveSub, tplSub, "AttackProjectileAimDistMax") {
			n++
		}
		if s.accuracy && copyAttr(liveSub, tplSub, "AttackProjectileSpread") {
			n++
		}
		if _, hasProjectile := tplSub.Ref("AttackProjectileData"); s.damage && !hasProjectile && copyAttr(liveSub, tplSub, "Damage") {
			n++
		}
		n += copySubs(liveSub, tplSub, c)
	}
	return n
}

func copyAttr(dst, src model.Accessor, attr string) bool {
	v, err := src.Get(attr)
	if err != nil {
		return false
	}
	cur, err := dst.Get(attr)
	if err != nil || cur.Equal(v) {
		return false
	}
	return dst.Set(attr, v) == nil
}
