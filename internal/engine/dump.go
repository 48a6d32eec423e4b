package engine

import (
	"github.com/udisondev/unitbalance/internal/model"
)

// DumpFields logs every template with its assets, components, refs and sub-objects.
// It returns the number of attributes logged.
func (e *Engine) DumpFields() int {
	n := 0
	for _, t := range e.reg.Templates() {
		e.log.Info("template", "unit", t.DisplayName(), "internal", t.InternalName(), "faction", t.Faction())
		if a := t.Construction(); a != nil {
			n += e.dumpRecord(t.DisplayName(), a.Name(), a)
		}
		if a := t.DamageManager(); a != nil {
			n += e.dumpRecord(t.DisplayName(), a.Name(), a)
		}
		for _, c := range t.Components() {
			n += e.dumpComponent(t.DisplayName(), string(c.Kind()), c)
		}
	}
	e.log.Info("field dump finished", "attributes", n)
	return n
}

func (e *Engine) dumpComponent(unit, path string, c *model.Component) int {
	n := e.dumpRecord(unit, path, c)
	for _, ref := range c.Refs() {
		e.log.Info("  ref", "unit", unit, "component", path, "field", ref.Field, "asset", ref.Asset.Name())
		n += e.dumpRecord(unit, path+"."+ref.Field, ref.Asset)
	}
	for _, field := range c.SubFields() {
		sub, _ := c.Sub(field)
		n += e.dumpComponent(unit, path+"."+field, sub)
	}
	return n
}

func (e *Engine) dumpRecord(unit, path string, a model.Accessor) int {
	n := 0
	for _, name := range a.Names() {
		v, err := a.Get(name)
		if err != nil {
			continue
		}
		e.log.Info("  field", "unit", unit, "object", path, "field", name, "kind", v.Kind(), "value", v)
		n++
	}
	return n
}
