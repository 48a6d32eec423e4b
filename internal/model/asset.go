package model

// AssetKind identifies a shared data asset type.
type AssetKind string

const (
	AssetProjectile    AssetKind = "ProjectileData"
	AssetConstruction  AssetKind = "ConstructionData"
	AssetDamageManager AssetKind = "DamageManagerData"
)

// Asset is a named data object shared by every entity referencing it.
// Changing an asset changes behavior for all referrers.
type Asset struct {
	*Record
	name string
	kind AssetKind
}

// NewAsset creates an asset. A nil record is replaced by an empty one.
func NewAsset(name string, kind AssetKind, rec *Record) *Asset {
	if rec == nil {
		rec = NewRecord()
	}
	return &Asset{Record: rec, name: name, kind: kind}
}

// Name returns asset name
func (a *Asset) Name() string { return a.name }

// Kind returns asset kind
func (a *Asset) Kind() AssetKind { return a.kind }
