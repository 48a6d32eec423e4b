package model

// ComponentKind names a behavior component type attached to entities.
type ComponentKind string

const (
	KindVehicleTurret    ComponentKind = "VehicleTurret"
	KindUnitAimAt        ComponentKind = "UnitAimAt"
	KindCreatureDecapod  ComponentKind = "CreatureDecapod"
	KindCreatureAttack   ComponentKind = "CreatureAttack"
	KindSensor           ComponentKind = "Sensor"
	KindSoldier          ComponentKind = "Soldier"
	KindPlayerMovement   ComponentKind = "PlayerMovement"
	KindFPSMovement      ComponentKind = "FPSMovement"
	KindVehicleWheeled   ComponentKind = "VehicleWheeled"
	KindVehicleAir       ComponentKind = "VehicleAir"
	KindVehicleHovered   ComponentKind = "VehicleHovered"
	KindVehicleDispenser ComponentKind = "VehicleDispenser"
	KindTeleportUI       ComponentKind = "TeleportUI"
	KindAIAiming         ComponentKind = "AIAiming"
	KindVehicle          ComponentKind = "Vehicle"
)

// RefField is a named reference from a component to a shared asset.
type RefField struct {
	Field string
	Asset *Asset
}

// Component is a behavior component of a template or live instance.
// Asset references are shared between clones; sub-objects and attributes are not.
type Component struct {
	*Record
	kind ComponentKind

	refs     map[string]*Asset
	refOrder []string

	subs     map[string]*Component
	subOrder []string

	links map[string]*Template
}

// NewComponent creates a component. A nil record is replaced by an empty one.
func NewComponent(kind ComponentKind, rec *Record) *Component {
	if rec == nil {
		rec = NewRecord()
	}
	return &Component{
		Record: rec,
		kind:   kind,
		refs:   make(map[string]*Asset),
		subs:   make(map[string]*Component),
		links:  make(map[string]*Template),
	}
}

// Kind returns component kind
func (c *Component) Kind() ComponentKind { return c.kind }

// WithRef attaches an asset reference under field.
func (c *Component) WithRef(field string, a *Asset) *Component {
	if _, ok := c.refs[field]; !ok {
		c.refOrder = append(c.refOrder, field)
	}
	c.refs[field] = a
	return c
}

// Ref returns the asset referenced by field.
func (c *Component) Ref(field string) (*Asset, bool) {
	a, ok := c.refs[field]
	return a, ok && a != nil
}

// Refs returns all asset references in attachment order.
func (c *Component) Refs() []RefField {
	out := make([]RefField, 0, len(c.refOrder))
	for _, f := range c.refOrder {
		if a := c.refs[f]; a != nil {
			out = append(out, RefField{Field: f, Asset: a})
		}
	}
	return out
}

// WithSub attaches a nested per-slot object under field.
func (c *Component) WithSub(field string, sub *Component) *Component {
	if _, ok := c.subs[field]; !ok {
		c.subOrder = append(c.subOrder, field)
	}
	c.subs[field] = sub
	return c
}

// Sub returns the nested object stored under field.
func (c *Component) Sub(field string) (*Component, bool) {
	s, ok := c.subs[field]
	return s, ok && s != nil
}

// SubFields returns nested object field names in attachment order.
func (c *Component) SubFields() []string {
	out := make([]string, len(c.subOrder))
	copy(out, c.subOrder)
	return out
}

// WithLink attaches a template reference, e.g. the vehicle a dispenser produces.
func (c *Component) WithLink(field string, t *Template) *Component {
	c.links[field] = t
	return c
}

// Link returns the template referenced by field.
func (c *Component) Link(field string) (*Template, bool) {
	t, ok := c.links[field]
	return t, ok && t != nil
}

// Clone deep-copies attributes and nested objects. Asset and template links stay shared.
func (c *Component) Clone() *Component {
	cp := NewComponent(c.kind, c.Record.Clone())
	for _, f := range c.refOrder {
		cp.WithRef(f, c.refs[f])
	}
	for _, f := range c.subOrder {
		cp.WithSub(f, c.subs[f].Clone())
	}
	for f, t := range c.links {
		cp.links[f] = t
	}
	return cp
}
