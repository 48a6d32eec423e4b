package applier

import (
	"math"
	"strings"

	"github.com/udisondev/unitbalance/internal/balance"
	"github.com/udisondev/unitbalance/internal/model"
)

// slotMults are the weapon multipliers resolved for one slot.
type slotMults struct {
	rng      float64
	speed    float64
	lifetime float64
	accuracy float64
	magazine float64
	fireRate float64
	reload   float64
}

func resolveSlot(st *balance.SessionState, name string, slot balance.Slot) slotMults {
	return slotMults{
		rng:      st.Range.Resolve(name, slot),
		speed:    st.ProjSpeed.Resolve(name, slot),
		lifetime: st.ProjLifetime.Resolve(name, slot),
		accuracy: st.Accuracy.Resolve(name, slot),
		magazine: st.Magazine.Resolve(name, slot),
		fireRate: st.FireRate.Resolve(name, slot),
		reload:   st.Reload.Resolve(name, slot),
	}
}

func (m slotMults) projectile() bool {
	return !balance.IsNeutral(m.rng) || !balance.IsNeutral(m.speed) || !balance.IsNeutral(m.lifetime)
}

// Weapon applies range, projectile speed and lifetime, reload, fire rate, magazine and accuracy.
type Weapon struct{}

func (Weapon) Name() string { return "weapon" }

func (Weapon) Apply(p *Pass) int {
	st := p.State
	n := 0
	for _, t := range p.units() {
		name := t.DisplayName()
		hasProjectile := st.Range.HasAny(name) || st.ProjSpeed.HasAny(name) || st.ProjLifetime.HasAny(name)
		hasTurret := st.Reload.HasAny(name) || st.FireRate.HasAny(name) || st.Magazine.HasAny(name) || st.Accuracy.HasAny(name)
		if !hasProjectile && !hasTurret {
			continue
		}
		pri := resolveSlot(st, name, balance.SlotPrimary)
		sec := resolveSlot(st, name, balance.SlotSecondary)

		found, touched := false, false
		for _, c := range t.Components() {
			d := onTemplate(t, c)
			switch c.Kind() {
			case model.KindVehicleTurret:
				if !balance.IsNeutral(pri.rng) {
					touched = p.scale(d, "AimDistance", pri.rng) || touched
				}
				touched = p.turretSlot(d, "Primary", pri) || touched
				touched = p.turretSlot(d, "Secondary", sec) || touched
			case model.KindUnitAimAt:
				if !balance.IsNeutral(pri.rng) {
					touched = p.scale(d, "AimDistanceMax", pri.rng) || touched
				}
			case model.KindCreatureDecapod:
				for _, f := range attackFields {
					sub, ok := c.Sub(f)
					if !ok {
						continue
					}
					m := pri
					if balance.SlotForAttack(f) == balance.SlotSecondary {
						m = sec
					}
					if !balance.IsNeutral(m.rng) {
						touched = p.scale(direct(sub), "AttackProjectileAimDistMax", m.rng) || touched
					}
					if !balance.IsNeutral(m.accuracy) {
						touched = p.scale(direct(sub), "AttackProjectileSpread", m.accuracy) || touched
					}
					if pd, ok := sub.Ref("AttackProjectileData"); ok && m.projectile() {
						found = true
						touched = p.scaleProjectile(pd, m) || touched
					}
				}
			}

			if !hasProjectile {
				continue
			}
			for _, ref := range c.Refs() {
				if ref.Asset.Kind() != model.AssetProjectile {
					continue
				}
				m := pri
				if balance.SlotForField(ref.Field) == balance.SlotSecondary {
					m = sec
				}
				if !m.projectile() {
					continue
				}
				found = true
				touched = p.scaleProjectile(ref.Asset, m) || touched
			}
		}

		if hasProjectile && !found && pri.projectile() {
			touched = p.matchProjectiles(name, pri) || touched
		}
		if touched {
			n++
		}
	}
	return n
}

func (p *Pass) turretSlot(d dest, prefix string, m slotMults) bool {
	wrote := false
	if !balance.IsNeutral(m.reload) {
		wrote = p.scaleFloor(d, prefix+"ReloadTime", m.reload, 0.1) || wrote
	}
	if !balance.IsNeutral(m.fireRate) {
		// a faster fire rate is a shorter interval
		if o, ok := p.baseFloat(d.obj, prefix+"FireInterval"); ok && o > 0 {
			wrote = p.set(d, prefix+"FireInterval", model.Float(math.Max(0.01, o/m.fireRate))) || wrote
		}
	}
	if !balance.IsNeutral(m.magazine) {
		if o, ok := p.baseInt(d.obj, prefix+"MagazineSize"); ok {
			wrote = p.set(d, prefix+"MagazineSize", model.Int(max(1, int64(math.Round(float64(o)*m.magazine))))) || wrote
		}
	}
	if !balance.IsNeutral(m.accuracy) {
		wrote = p.scale(d, prefix+"MuzzleSpread", m.accuracy) || wrote
	}
	return wrote
}

// scaleProjectile applies the projectile rule once per pass. For instant-hit
// projectiles the base speed is the ray distance, so range scales it directly.
func (p *Pass) scaleProjectile(pd *model.Asset, m slotMults) bool {
	if p.isSeen(pd) {
		return false
	}
	p.markSeen(pd)

	d := onAsset(pd)
	instant, _ := model.GetBool(pd, "m_InstantHit")
	lifetime, hasLifetime := p.baseFloat(pd, "m_fLifeTime")
	speed, hasSpeed := p.baseFloat(pd, "m_fBaseSpeed")
	hasLifetime = hasLifetime && lifetime > 0
	hasSpeed = hasSpeed && speed > 0

	wrote := false
	if instant {
		if hasSpeed && (!balance.IsNeutral(m.rng) || !balance.IsNeutral(m.speed)) {
			wrote = p.set(d, "m_fBaseSpeed", model.Float(speed*m.rng*m.speed)) || wrote
		}
		if hasLifetime && !balance.IsNeutral(m.lifetime) {
			wrote = p.set(d, "m_fLifeTime", model.Float(lifetime*m.lifetime)) || wrote
		}
		if !balance.IsNeutral(m.rng) && p.scalePositive(d, "VisibleEventRadius", m.rng) {
			if p.verRange == nil {
				p.verRange = make(map[*model.Asset]float64)
			}
			p.verRange[pd] = m.rng
			wrote = true
		}
		return wrote
	}

	if f := m.rng * m.lifetime; hasLifetime && !balance.IsNeutral(f) {
		wrote = p.set(d, "m_fLifeTime", model.Float(lifetime*f)) || wrote
	}
	if hasSpeed && !balance.IsNeutral(m.speed) {
		wrote = p.set(d, "m_fBaseSpeed", model.Float(speed*m.speed)) || wrote
	}
	return wrote
}

// matchProjectiles scales every registered projectile whose name contains the unit name.
func (p *Pass) matchProjectiles(unit string, m slotMults) bool {
	needle := strings.ToLower(unit)
	count := 0
	for _, pd := range p.Projectiles {
		if !strings.Contains(strings.ToLower(pd.Name()), needle) {
			continue
		}
		if p.scaleProjectile(pd, m) {
			count++
		}
	}
	if count == 0 {
		p.logger().Debug("no projectile matched", "unit", unit)
		return false
	}
	p.logger().Debug("projectiles matched by name", "unit", unit, "count", count)
	return true
}
