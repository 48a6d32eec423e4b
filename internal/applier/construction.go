package applier

import (
	"math"

	"github.com/udisondev/unitbalance/internal/model"
)

// Construction applies cost, build time, tier and build radius to ConstructionData.
type Construction struct{}

func (Construction) Name() string { return "construction" }

func (Construction) Apply(p *Pass) int {
	st := p.State
	n := 0
	for _, t := range p.units() {
		cd := t.Construction()
		if cd == nil {
			continue
		}
		d := onAsset(cd)

		// with any tier time configured, tech-up items take only tech_time
		if tier, err := model.GetInt(cd, "TechnologyTier"); err == nil && tier > 0 && len(st.TechTimes) > 0 {
			if secs, ok := st.TechTime(int(tier)); ok && p.set(d, "BuildUpTime", model.Float(math.Max(1, secs))) {
				n++
			}
			continue
		}

		name := t.DisplayName()
		touched := false
		if m, ok := st.Cost.Lookup(name); ok {
			if o, ok := p.baseInt(cd, "ResourceCost"); ok {
				cost := max(1, int64(math.Round(float64(o)*m)))
				touched = p.set(d, "ResourceCost", model.Int(cost)) || touched
			}
		}
		if m, ok := st.BuildTime.Lookup(name); ok {
			touched = p.scaleFloor(d, "BuildUpTime", m, 0.5) || touched
		}
		if tier, ok := st.MinTierFor(name); ok {
			touched = p.set(d, "MinimumTeamTier", model.Int(int64(tier))) || touched
		}
		if r, ok := st.BuildRadius.Lookup(name); ok {
			touched = p.set(d, "MaximumBaseStructureDistance", model.Float(r)) || touched
		}
		if touched {
			n++
		}
	}
	return n
}
