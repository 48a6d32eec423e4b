package applier

import (
	"maps"
	"slices"

	"github.com/udisondev/unitbalance/internal/balance"
	"github.com/udisondev/unitbalance/internal/model"
)

var (
	damageFields           = []string{"m_fImpactDamage", "m_fRicochetDamage", "m_fSplashDamageMax", "m_fPenetratingDamage"}
	turretProjectileFields = []string{"PrimaryProjectileData", "SecondaryProjectileData"}
	attackFields           = []string{"AttackPrimary", "AttackSecondary"}
)

// Damage scales projectile damage per weapon slot and creature melee damage.
// Per-projectile absolute values take precedence over the multiplier.
type Damage struct{}

func (Damage) Name() string { return "damage" }

func (Damage) Apply(p *Pass) int {
	st := p.State
	n := 0
	for _, t := range p.units() {
		name := t.DisplayName()
		_, hasProjectiles := st.Projectiles[name]
		if !st.Damage.HasAny(name) && !hasProjectiles {
			continue
		}
		touched := false
		for _, c := range t.Components() {
			switch c.Kind() {
			case model.KindVehicleTurret:
				for _, f := range turretProjectileFields {
					if pd, ok := c.Ref(f); ok && p.damageProjectile(name, pd, balance.SlotForField(f)) {
						touched = true
					}
				}
			case model.KindCreatureDecapod:
				for _, f := range attackFields {
					sub, ok := c.Sub(f)
					if !ok {
						continue
					}
					slot := balance.SlotForAttack(f)
					if pd, ok := sub.Ref("AttackProjectileData"); ok {
						if p.damageProjectile(name, pd, slot) {
							touched = true
						}
						continue
					}
					// melee
					m := st.Damage.Resolve(name, slot)
					if balance.IsNeutral(m) {
						continue
					}
					if p.scalePositive(direct(sub), "Damage", m) {
						touched = true
					}
				}
			}
		}
		if touched {
			n++
		}
	}
	return n
}

func (p *Pass) damageProjectile(unit string, pd *model.Asset, slot balance.Slot) bool {
	if p.isSeen(pd) {
		return false
	}
	d := onAsset(pd)

	if fields, ok := p.State.ProjectileFields(unit, pd.Name()); ok {
		p.markSeen(pd)
		wrote := false
		for _, f := range slices.Sorted(maps.Keys(fields)) {
			if p.setNumber(d, f, fields[f]) {
				wrote = true
			}
		}
		return wrote
	}

	m := p.State.Damage.Resolve(unit, slot)
	if balance.IsNeutral(m) {
		return false
	}
	p.markSeen(pd)
	wrote := false
	for _, f := range damageFields {
		if p.scalePositive(d, f, m) {
			wrote = true
		}
	}
	return wrote
}
