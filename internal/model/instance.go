package model

// Instance is a live entity created from a template.
// It owns cloned components and does not observe later template edits.
type Instance struct {
	id         uint64
	template   *Template
	team       string
	components []*Component
}

// NewInstance clones every component of t into a new live entity.
func NewInstance(id uint64, t *Template, team string) *Instance {
	inst := &Instance{id: id, template: t, team: team}
	for _, c := range t.Components() {
		inst.components = append(inst.components, c.Clone())
	}
	return inst
}

// ID returns the stable instance id.
func (i *Instance) ID() uint64 { return i.id }

// Template returns the template the instance was created from.
func (i *Instance) Template() *Template { return i.template }

// Team returns the owning team name, empty for unowned entities.
func (i *Instance) Team() string { return i.team }

// Components returns the live components.
func (i *Instance) Components() []*Component { return i.components }

// FirstComponent returns the first live component of kind.
func (i *Instance) FirstComponent(kind ComponentKind) (*Component, bool) {
	return firstOf(i.components, kind)
}
