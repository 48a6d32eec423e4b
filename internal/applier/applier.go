// Package applier writes configured overrides into entity templates and shared assets.
//
// Appliers run in a fixed order and always scale from the baseline held in the
// override cache, so running a pass twice leaves the same values as running it once.
package applier

import (
	"log/slog"
	"math"
	"strings"

	"github.com/udisondev/unitbalance/internal/balance"
	"github.com/udisondev/unitbalance/internal/model"
	"github.com/udisondev/unitbalance/internal/override"
)

// Pass carries everything one apply run needs.
type Pass struct {
	State       *balance.SessionState
	Templates   []*model.Template
	Projectiles []*model.Asset
	Store       override.Store
	Cache       *override.Cache
	Log         *slog.Logger

	seen map[*model.Asset]struct{}
	// range factor already folded into an instant-hit projectile's VisibleEventRadius
	verRange map[*model.Asset]float64
}

// Applier handles one attribute family.
type Applier interface {
	Name() string
	// Apply returns the number of touched entities or fields.
	Apply(p *Pass) int
}

// Ordered returns every applier in application order.
func Ordered() []Applier {
	return []Applier{
		Construction{},
		Health{},
		Damage{},
		Weapon{},
		TargetDistance{},
		FowDistance{},
		Jump{},
		VisibleEventRadius{},
		MoveSpeed{},
		Strafe{},
		TurnRadius{},
		Teleport{},
		Dispenser{},
		Toggles{},
	}
}

// Count is the outcome of one applier.
type Count struct {
	Applier string
	Touched int
}

// Summary lists applier outcomes in run order.
type Summary []Count

// Total returns the sum of all counts.
func (s Summary) Total() int {
	n := 0
	for _, c := range s {
		n += c.Touched
	}
	return n
}

// Of returns the count recorded for the named applier.
func (s Summary) Of(name string) int {
	for _, c := range s {
		if c.Applier == name {
			return c.Touched
		}
	}
	return 0
}

// Run executes appliers in order, or Ordered() when none are given.
func Run(p *Pass, appliers ...Applier) Summary {
	if len(appliers) == 0 {
		appliers = Ordered()
	}
	log := p.logger()
	out := make(Summary, 0, len(appliers))
	p.verRange = make(map[*model.Asset]float64)
	for _, a := range appliers {
		p.seen = make(map[*model.Asset]struct{})
		n := a.Apply(p)
		log.Debug("applier finished", "applier", a.Name(), "touched", n)
		out = append(out, Count{Applier: a.Name(), Touched: n})
	}
	return out
}

func (p *Pass) logger() *slog.Logger {
	if p.Log == nil {
		return slog.Default()
	}
	return p.Log
}

// units returns templates addressable by configuration; names starting with "_" are reserved.
func (p *Pass) units() []*model.Template {
	out := make([]*model.Template, 0, len(p.Templates))
	for _, t := range p.Templates {
		if strings.HasPrefix(t.DisplayName(), "_") {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (p *Pass) isSeen(a *model.Asset) bool {
	_, ok := p.seen[a]
	return ok
}

func (p *Pass) markSeen(a *model.Asset) {
	if p.seen == nil {
		p.seen = make(map[*model.Asset]struct{})
	}
	p.seen[a] = struct{}{}
}

// dest is where an override is written.
type dest struct {
	obj    model.Accessor
	target string
	family override.Family
	bypass bool
}

func onTemplate(t *model.Template, c *model.Component) dest {
	return dest{obj: c, target: override.AssetTarget(t.InternalName())}
}

func onAsset(a *model.Asset) dest {
	return dest{obj: a, target: override.AssetTarget(a.Name())}
}

func direct(obj model.Accessor) dest {
	return dest{obj: obj, bypass: true}
}

func (p *Pass) baseFloat(obj model.Accessor, attr string) (float64, bool) {
	v, err := p.Cache.Baseline(obj, attr)
	if err != nil || v.Kind() != model.KindFloat {
		return 0, false
	}
	return v.Float(), true
}

func (p *Pass) baseInt(obj model.Accessor, attr string) (int64, bool) {
	v, err := p.Cache.Baseline(obj, attr)
	if err != nil || v.Kind() != model.KindInt {
		return 0, false
	}
	return v.Int(), true
}

func (p *Pass) set(d dest, attr string, v model.Value) bool {
	b := override.Binding{Target: d.target, Member: attr, Local: d.obj, Family: d.family}
	var res override.Result
	if d.bypass {
		res = p.Store.Bypass(b, v)
	} else {
		res = p.Store.Apply(b, v)
	}
	if res.OK {
		p.logger().Debug("override applied", "target", d.target, "attr", attr, "value", v, "synced", res.Synced)
	}
	return res.OK
}

// setNumber writes v using the attribute's own kind; integer attributes are rounded.
func (p *Pass) setNumber(d dest, attr string, v float64) bool {
	cur, err := d.obj.Get(attr)
	if err != nil {
		return false
	}
	if cur.Kind() == model.KindInt {
		return p.set(d, attr, model.Int(int64(math.Round(v))))
	}
	return p.set(d, attr, model.Float(v))
}

// scale writes baseline × m.
func (p *Pass) scale(d dest, attr string, m float64) bool {
	o, ok := p.baseFloat(d.obj, attr)
	if !ok {
		return false
	}
	return p.set(d, attr, model.Float(o*m))
}

// scaleFloor writes max(floor, baseline × m).
func (p *Pass) scaleFloor(d dest, attr string, m, floor float64) bool {
	o, ok := p.baseFloat(d.obj, attr)
	if !ok {
		return false
	}
	return p.set(d, attr, model.Float(math.Max(floor, o*m)))
}

// scalePositive writes baseline × m only when the baseline is positive.
func (p *Pass) scalePositive(d dest, attr string, m float64) bool {
	o, ok := p.baseFloat(d.obj, attr)
	if !ok || o <= 0 {
		return false
	}
	return p.set(d, attr, model.Float(o*m))
}
