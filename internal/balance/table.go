package balance

import (
	"math"
	"strings"
)

// NeutralEpsilon is the tolerance under which a multiplier counts as 1.0.
const NeutralEpsilon = 0.001

// IsNeutral reports whether m is within NeutralEpsilon of 1.0.
func IsNeutral(m float64) bool {
	return math.Abs(m-1) <= NeutralEpsilon
}

// Slot selects the primary or secondary weapon of an entity.
type Slot string

const (
	SlotPrimary   Slot = "pri"
	SlotSecondary Slot = "sec"
)

// SlotForField returns the slot a ProjectileData reference field belongs to.
func SlotForField(field string) Slot {
	if strings.HasPrefix(field, "Secondary") {
		return SlotSecondary
	}
	return SlotPrimary
}

// SlotForAttack returns the slot of a creature attack sub-object field.
func SlotForAttack(field string) Slot {
	if field == "AttackSecondary" {
		return SlotSecondary
	}
	return SlotPrimary
}

func slotKey(slot Slot, entity string) string {
	return string(slot) + ":" + entity
}

// Table maps entity names to non-neutral multipliers.
// Slot-qualified entries are stored under "pri:<name>" and "sec:<name>".
type Table map[string]float64

// Resolve returns the slot multiplier, the shared multiplier or 1.0, in that order.
func (t Table) Resolve(entity string, slot Slot) float64 {
	if m, ok := t[slotKey(slot, entity)]; ok {
		return m
	}
	if m, ok := t[entity]; ok {
		return m
	}
	return 1
}

// Lookup returns the shared multiplier, or 1.0 with false when absent.
func (t Table) Lookup(entity string) (float64, bool) {
	m, ok := t[entity]
	if !ok {
		return 1, false
	}
	return m, true
}

// HasAny reports whether the shared key or either slot key is present.
func (t Table) HasAny(entity string) bool {
	if _, ok := t[entity]; ok {
		return true
	}
	if _, ok := t[slotKey(SlotPrimary, entity)]; ok {
		return true
	}
	_, ok := t[slotKey(SlotSecondary, entity)]
	return ok
}

func (t Table) put(key string, m float64) {
	if IsNeutral(m) {
		return
	}
	t[key] = m
}

// Absolute maps entity names to absolute overrides.
// Only values >= 0 are stored; negative values mean "no override".
type Absolute map[string]float64

// Lookup returns the absolute override when set.
func (a Absolute) Lookup(entity string) (float64, bool) {
	v, ok := a[entity]
	return v, ok && v >= 0
}

func (a Absolute) put(key string, v float64) {
	if v < 0 {
		return
	}
	a[key] = v
}
