package model

// Template is the shared definition an entity is instantiated from.
type Template struct {
	internalName string
	displayName  string
	faction      string

	construction *Asset
	damage       *Asset
	components   []*Component
}

// NewTemplate creates a template with the given internal and display names.
func NewTemplate(internalName, displayName string) *Template {
	return &Template{internalName: internalName, displayName: displayName}
}

// InternalName returns the asset-level name used to address the template.
func (t *Template) InternalName() string { return t.internalName }

// DisplayName returns the human-readable name configuration keys refer to.
func (t *Template) DisplayName() string { return t.displayName }

// Faction returns the faction the template belongs to.
func (t *Template) Faction() string { return t.faction }

// WithFaction sets the faction.
func (t *Template) WithFaction(f string) *Template {
	t.faction = f
	return t
}

// WithConstruction attaches the construction data asset.
func (t *Template) WithConstruction(a *Asset) *Template {
	t.construction = a
	return t
}

// WithDamageManager attaches the damage manager data asset.
func (t *Template) WithDamageManager(a *Asset) *Template {
	t.damage = a
	return t
}

// Construction returns construction data, nil if the template has none.
func (t *Template) Construction() *Asset { return t.construction }

// DamageManager returns damage manager data, nil if the template has none.
func (t *Template) DamageManager() *Asset { return t.damage }

// AddComponent appends a component.
func (t *Template) AddComponent(c *Component) *Template {
	t.components = append(t.components, c)
	return t
}

// Components returns all components in attachment order.
func (t *Template) Components() []*Component { return t.components }

// FirstComponent returns the first component of the given kind.
func (t *Template) FirstComponent(kind ComponentKind) (*Component, bool) {
	return firstOf(t.components, kind)
}

func firstOf(cs []*Component, kind ComponentKind) (*Component, bool) {
	for _, c := range cs {
		if c.Kind() == kind {
			return c, true
		}
	}
	return nil, false
}
