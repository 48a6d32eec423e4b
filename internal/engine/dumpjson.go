package engine

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/udisondev/unitbalance/internal/docstore"
	"github.com/udisondev/unitbalance/internal/model"
)

// DefaultDumpFile is the unit dump written next to the active document.
const DefaultDumpFile = "Si_UnitBalance_Dump.json"

// skipped internal name fragments: tutorial and tower-defense variants
var dumpSkip = []string{"_TD", "_Intro", "_Tutorial"}

// slot prefixes used by the dump for turret and creature attack data
var (
	turretSlots = []struct{ key, prefix string }{{"vt", "Primary"}, {"vt2", "Secondary"}}
	attackSlots = []struct{ key, field string }{{"atk", "AttackPrimary"}, {"atk2", "AttackSecondary"}}
)

// DumpUnitsJSON writes every unit with its current stats and the production tree to path.
// It returns the number of units written.
func (e *Engine) DumpUnitsJSON(path string) (int, error) {
	out := []byte(`{"units":[],"production_tree":{}}`)
	builtAt := make(map[string]string)
	tree := make(map[string][]string)

	templates := e.dumpable()
	for _, t := range templates {
		for _, c := range t.Components() {
			if c.Kind() != model.KindVehicleDispenser {
				continue
			}
			linked, ok := c.Link("VehicleToDispense")
			if !ok {
				continue
			}
			name := linked.DisplayName()
			if !slices.Contains(tree[t.DisplayName()], name) {
				tree[t.DisplayName()] = append(tree[t.DisplayName()], name)
			}
			if _, ok := builtAt[name]; !ok {
				builtAt[name] = t.DisplayName()
			}
		}
	}

	var err error
	for _, t := range templates {
		if out, err = sjson.SetRawBytes(out, "units.-1", dumpUnit(t, builtAt[t.DisplayName()])); err != nil {
			return 0, fmt.Errorf("encoding %s: %w", t.DisplayName(), err)
		}
	}
	for _, producer := range slices.Sorted(maps.Keys(tree)) {
		if out, err = sjson.SetBytes(out, "production_tree."+docstore.EscapePath(producer), tree[producer]); err != nil {
			return 0, fmt.Errorf("encoding production tree: %w", err)
		}
	}

	if err := docstore.WriteAtomic(path, out); err != nil {
		return 0, fmt.Errorf("writing unit dump: %w", err)
	}
	e.log.Info("unit dump written", "path", path, "units", len(templates), "producers", len(tree))
	return len(templates), nil
}

// dumpable returns templates without tutorial variants, first of each internal name.
func (e *Engine) dumpable() []*model.Template {
	seen := make(map[string]struct{})
	var out []*model.Template
	for _, t := range e.reg.Templates() {
		internal := t.InternalName()
		if slices.ContainsFunc(dumpSkip, func(s string) bool { return strings.Contains(internal, s) }) {
			continue
		}
		if _, dup := seen[internal]; dup {
			continue
		}
		seen[internal] = struct{}{}
		out = append(out, t)
	}
	return out
}

type unitDump struct {
	obj []byte
}

func (u *unitDump) set(key string, v any) {
	// keys are fixed identifiers, sjson only fails on malformed paths
	u.obj, _ = sjson.SetBytes(u.obj, key, v)
}

// setFloat, setInt and setBool write zero when a is nil or lacks attr.
func (u *unitDump) setFloat(key string, a model.Accessor, attr string) {
	var v float64
	if a != nil {
		v, _ = model.GetFloat(a, attr)
	}
	u.set(key, v)
}

func (u *unitDump) setInt(key string, a model.Accessor, attr string) {
	var v int64
	if a != nil {
		v, _ = model.GetInt(a, attr)
	}
	u.set(key, v)
}

func (u *unitDump) setBool(key string, a model.Accessor, attr string) {
	var v bool
	if a != nil {
		v, _ = model.GetBool(a, attr)
	}
	u.set(key, v)
}

func dumpUnit(t *model.Template, builtAt string) []byte {
	u := &unitDump{obj: []byte(`{}`)}
	u.set("name", t.DisplayName())
	u.set("internal", t.InternalName())
	u.set("faction", t.Faction())
	u.set("built_at", builtAt)

	var cd model.Accessor
	if a := t.Construction(); a != nil {
		cd = a
	}
	u.setInt("cost", cd, "ResourceCost")
	u.setFloat("build_time", cd, "BuildUpTime")
	u.setInt("min_tier", cd, "MinimumTeamTier")
	u.setInt("tech_tier", cd, "TechnologyTier")
	u.setFloat("max_dist", cd, "MaximumBaseStructureDistance")
	u.set("hp", maxHealth(t.DamageManager()))
	u.set("move_speed", firstFloat(t, "MoveSpeed"))
	u.set("jump_speed", firstFloat(t, "JumpSpeed"))

	sensor := component(t, model.KindSensor)
	u.setFloat("fow_view", sensor, "FogOfWarViewDistance")
	u.setFloat("target_dist", sensor, "TargetingDistance")

	turret, hasTurret := t.FirstComponent(model.KindVehicleTurret)
	for _, s := range turretSlots {
		var pd *model.Asset
		var a model.Accessor
		if hasTurret {
			a = turret
			pd, _ = turret.Ref(s.prefix + "ProjectileData")
		}
		u.setFloat(s.key+"_fire_interval", a, s.prefix+"FireInterval")
		u.setFloat(s.key+"_spread", a, s.prefix+"MuzzleSpread")
		u.setInt(s.key+"_magazine", a, s.prefix+"MagazineSize")
		u.setFloat(s.key+"_reload", a, s.prefix+"ReloadTime")
		u.projectile(s.key, pd)
	}

	creature, hasCreature := t.FirstComponent(model.KindCreatureDecapod)
	for _, s := range attackSlots {
		var pd *model.Asset
		var a model.Accessor
		if hasCreature {
			if sub, ok := creature.Sub(s.field); ok {
				a = sub
				pd, _ = sub.Ref("AttackProjectileData")
			}
		}
		u.setFloat(s.key+"_damage", a, "Damage")
		u.setFloat(s.key+"_cooldown", a, "CoolDownTime")
		u.setFloat(s.key+"_range", a, "AttackProjectileAimDistMax")
		u.setFloat(s.key+"_spread", a, "AttackProjectileSpread")
		u.projectile(s.key, pd)
	}

	teleport := component(t, model.KindTeleportUI)
	u.set("has_teleport", teleport != nil)
	u.setFloat("teleport_time", teleport, "TeleportTime")
	u.setFloat("teleport_cooldown", teleport, "TeleportCooldownTime")
	return u.obj
}

// projectile writes <key>_proj and the projectile's damage, speed and lifetime.
func (u *unitDump) projectile(key string, pd *model.Asset) {
	var a model.Accessor
	name := ""
	if pd != nil {
		a, name = pd, pd.Name()
	}
	u.set(key+"_proj", name)
	u.setFloat(key+"_impact_dmg", a, "m_fImpactDamage")
	u.setFloat(key+"_ricochet_dmg", a, "m_fRicochetDamage")
	u.setFloat(key+"_splash_dmg", a, "m_fSplashDamageMax")
	u.setFloat(key+"_pen_dmg", a, "m_fPenetratingDamage")
	u.setBool(key+"_instant_hit", a, "m_InstantHit")
	u.setFloat(key+"_proj_speed", a, "m_fBaseSpeed")
	u.setFloat(key+"_proj_lifetime", a, "m_fLifeTime")
}

// component returns the first component of kind as an accessor, or nil.
func component(t *model.Template, kind model.ComponentKind) model.Accessor {
	if c, ok := t.FirstComponent(kind); ok {
		return c
	}
	return nil
}

func maxHealth(dm *model.Asset) float64 {
	if dm == nil {
		return 0
	}
	if v, err := model.GetFloat(dm, "MaxHealth"); err == nil && v > 0 {
		return v
	}
	v, _ := model.GetFloat(dm, "Health")
	return v
}

// firstFloat reads attr from the first component that declares it as a float.
func firstFloat(t *model.Template, attr string) float64 {
	for _, c := range t.Components() {
		if v, err := model.GetFloat(c, attr); err == nil {
			return v
		}
	}
	return 0
}
