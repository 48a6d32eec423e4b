package applier

import (
	"github.com/udisondev/unitbalance/internal/model"
)

// Teleport sets global teleport cooldown and duration on every TeleportUI.
type Teleport struct{}

func (Teleport) Name() string { return "teleport" }

func (Teleport) Apply(p *Pass) int {
	cooldown, duration := p.State.TeleportCooldown, p.State.TeleportDuration
	if cooldown < 0 && duration < 0 {
		return 0
	}
	n := 0
	for _, t := range p.Templates {
		c, ok := t.FirstComponent(model.KindTeleportUI)
		if !ok {
			continue
		}
		d := onTemplate(t, c)
		if cooldown >= 0 && p.set(d, "TeleportCooldownTime", model.Float(cooldown)) {
			n++
		}
		if duration >= 0 && p.set(d, "TeleportTime", model.Float(duration)) {
			n++
		}
	}
	return n
}
