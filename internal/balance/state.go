package balance

import (
	"strings"
	"time"
)

// Document keys.
const (
	KeyDamage             = "damage_mult"
	KeyHealth             = "health_mult"
	KeyCost               = "cost_mult"
	KeyBuildTime          = "build_time_mult"
	KeyRange              = "range_mult"
	KeyProjSpeed          = "proj_speed_mult"
	KeyProjLifetime       = "proj_lifetime_mult"
	KeyReload             = "reload_time_mult"
	KeyAccuracy           = "accuracy_mult"
	KeyMagazine           = "magazine_mult"
	KeyFireRate           = "fire_rate_mult"
	KeyMoveSpeed          = "move_speed_mult"
	KeyTurboSpeed         = "turbo_speed_mult"
	KeyStrafeSpeed        = "strafe_speed_mult"
	KeyFlySpeed           = "fly_speed_mult"
	KeyTurnRadius         = "turn_radius_mult"
	KeyJumpSpeed          = "jump_speed_mult"
	KeyVisibleEventRadius = "visible_event_radius_mult"

	KeyTargetDistance  = "target_distance"
	KeyFowDistance     = "fow_distance"
	KeyBuildRadius     = "build_radius"
	KeyMinTier         = "min_tier"
	KeyDispenseTimeout = "dispense_timeout"
	KeyProjectiles     = "projectiles"

	KeyEnabled          = "enabled"
	KeyDumpFields       = "dump_fields"
	KeyShrimpDisableAim = "shrimp_disable_aim"
	KeyAdditionalSpawn  = "additional_spawn"
	KeyTechTime         = "tech_time"
	KeyUnits            = "units"

	TeleportUnit     = "_teleport"
	TeleportCooldown = "cooldown"
	TeleportDuration = "duration"
)

// MaxTechTier is the highest tier addressable by tech_time.tier_N.
const MaxTechTier = 8

// ProjectileOverrides holds absolute field values per ProjectileData name.
// Keys are lowercased so lookups are case-insensitive.
type ProjectileOverrides map[string]map[string]float64

// Fields returns the absolute field values configured for a projectile asset.
func (p ProjectileOverrides) Fields(assetName string) (map[string]float64, bool) {
	f, ok := p[strings.ToLower(assetName)]
	return f, ok && len(f) > 0
}

// SessionState is one parsed generation of the balance document.
// It is replaced wholesale on reload and never mutated after Parse returns.
type SessionState struct {
	Generation  uint64
	Fingerprint string
	Loaded      bool

	Enabled          bool
	DumpFields       bool
	ShrimpDisableAim bool
	AdditionalSpawn  bool

	Damage             Table
	Health             Table
	Cost               Table
	BuildTime          Table
	Range              Table
	ProjSpeed          Table
	ProjLifetime       Table
	Reload             Table
	Accuracy           Table
	Magazine           Table
	FireRate           Table
	MoveSpeed          Table
	TurboSpeed         Table
	StrafeSpeed        Table
	FlySpeed           Table
	TurnRadius         Table
	JumpSpeed          Table
	VisibleEventRadius Table

	TargetDistance Absolute
	FowDistance    Absolute
	BuildRadius    Absolute
	MinTier        map[string]int

	// Projectiles is keyed by unit display name.
	Projectiles map[string]ProjectileOverrides
	TechTimes   map[int]float64

	TeleportCooldown float64
	TeleportDuration float64
	DispenseTimeout  float64
}

// NewSessionState returns an empty, enabled state with every table allocated.
func NewSessionState() *SessionState {
	return &SessionState{
		Enabled:            true,
		Damage:             Table{},
		Health:             Table{},
		Cost:               Table{},
		BuildTime:          Table{},
		Range:              Table{},
		ProjSpeed:          Table{},
		ProjLifetime:       Table{},
		Reload:             Table{},
		Accuracy:           Table{},
		Magazine:           Table{},
		FireRate:           Table{},
		MoveSpeed:          Table{},
		TurboSpeed:         Table{},
		StrafeSpeed:        Table{},
		FlySpeed:           Table{},
		TurnRadius:         Table{},
		JumpSpeed:          Table{},
		VisibleEventRadius: Table{},
		TargetDistance:     Absolute{},
		FowDistance:        Absolute{},
		BuildRadius:        Absolute{},
		MinTier:            map[string]int{},
		Projectiles:        map[string]ProjectileOverrides{},
		TechTimes:          map[int]float64{},
		TeleportCooldown:   -1,
		TeleportDuration:   -1,
		DispenseTimeout:    -1,
	}
}

// Disabled returns a state that applies nothing.
func Disabled() *SessionState {
	s := NewSessionState()
	s.Enabled = false
	return s
}

// Active reports whether overrides should be applied.
func (s *SessionState) Active() bool {
	return s != nil && s.Loaded && s.Enabled
}

// TechTime returns the configured research time for a tier.
func (s *SessionState) TechTime(tier int) (float64, bool) {
	t, ok := s.TechTimes[tier]
	return t, ok
}

// MinTierFor returns the minimum team tier required to dispense unit.
func (s *SessionState) MinTierFor(unit string) (int, bool) {
	t, ok := s.MinTier[unit]
	return t, ok && t >= 0
}

// ProjectileFields returns absolute projectile field values for unit and asset.
func (s *SessionState) ProjectileFields(unit, assetName string) (map[string]float64, bool) {
	p, ok := s.Projectiles[unit]
	if !ok {
		return nil, false
	}
	return p.Fields(assetName)
}

// Units returns the set of unit names that carry at least one override.
func (s *SessionState) Units() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(name string) {
		name = strings.TrimPrefix(strings.TrimPrefix(name, "pri:"), "sec:")
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, t := range s.tables() {
		for k := range t {
			add(k)
		}
	}
	for _, a := range []Absolute{s.TargetDistance, s.FowDistance, s.BuildRadius} {
		for k := range a {
			add(k)
		}
	}
	for k := range s.MinTier {
		add(k)
	}
	for k := range s.Projectiles {
		add(k)
	}
	return out
}

func (s *SessionState) tables() []Table {
	return []Table{
		s.Damage, s.Health, s.Cost, s.BuildTime, s.Range, s.ProjSpeed, s.ProjLifetime,
		s.Reload, s.Accuracy, s.Magazine, s.FireRate, s.MoveSpeed, s.TurboSpeed,
		s.StrafeSpeed, s.FlySpeed, s.TurnRadius, s.JumpSpeed, s.VisibleEventRadius,
	}
}

// Generation describes one applied configuration generation.
type Generation struct {
	Number      uint64
	Fingerprint string
	Applied     int
	At          time.Time
}
