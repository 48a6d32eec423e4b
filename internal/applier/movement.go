package applier

import (
	"github.com/udisondev/unitbalance/internal/balance"
	"github.com/udisondev/unitbalance/internal/model"
)

var moveSpeedFields = []string{
	"MoveSpeed",
	"FlyMoveSpeed",
	"WalkSpeed",
	"RunSpeed",
	"SprintSpeed",
	"ForwardSpeed",
	"StrafeSpeed",
	"TurboSpeed",
}

// MoveSpeedFields returns the allow-list of movement attributes.
func MoveSpeedFields() []string {
	out := make([]string, len(moveSpeedFields))
	copy(out, moveSpeedFields)
	return out
}

// MoveMult returns the multiplier that applies to a movement field.
// TurboSpeed and FlyMoveSpeed use their own keys and fall back to move_speed_mult.
func MoveMult(st *balance.SessionState, unit, field string) float64 {
	switch field {
	case "TurboSpeed":
		if m, ok := st.TurboSpeed.Lookup(unit); ok {
			return m
		}
	case "FlyMoveSpeed":
		if m, ok := st.FlySpeed.Lookup(unit); ok {
			return m
		}
	}
	m, _ := st.MoveSpeed.Lookup(unit)
	return m
}

// HasMovement reports whether any movement key is set for unit.
func HasMovement(st *balance.SessionState, unit string) bool {
	return st.MoveSpeed.HasAny(unit) || st.TurboSpeed.HasAny(unit) || st.FlySpeed.HasAny(unit)
}

// MoveSpeed scales allow-listed speed fields declared on the unit's own component kind.
// The first component with at least one hit wins.
type MoveSpeed struct{}

func (MoveSpeed) Name() string { return "move_speed" }

func (MoveSpeed) Apply(p *Pass) int {
	n := 0
	for _, t := range p.units() {
		name := t.DisplayName()
		if !HasMovement(p.State, name) {
			continue
		}
		for _, c := range t.Components() {
			hits := 0
			for _, f := range moveSpeedFields {
				m := MoveMult(p.State, name, f)
				if balance.IsNeutral(m) || !model.IsDeclared(c, f) {
					continue
				}
				if p.scalePositive(onTemplate(t, c), f, m) {
					hits++
				}
			}
			if hits > 0 {
				n++
				break
			}
		}
	}
	return n
}
