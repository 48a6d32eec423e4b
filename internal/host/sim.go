// Package host is an in-memory simulation host: templates, live instances, teams,
// observers and a synchronized override subsystem.
package host

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/udisondev/unitbalance/internal/model"
	"github.com/udisondev/unitbalance/internal/override"
	"github.com/udisondev/unitbalance/internal/overridesync"
)

var (
	// ErrUnknownTemplate is returned when no template has the requested display name.
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrUnknownTeam is returned for a team that was never added.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrDispenseBlocked is returned when the dispense gate rejects a request.
	ErrDispenseBlocked = errors.New("dispense blocked")
)

// Team is a faction side with its current tech tier.
type Team struct {
	Name string
	Tier int
}

// Config describes the initial host contents.
type Config struct {
	Templates       []*model.Template
	Assets          []*model.Asset
	Teams           []Team
	MaxMessageBytes int
	Logger          *slog.Logger
}

// Sim is the simulation host.
type Sim struct {
	log *slog.Logger

	mu         sync.RWMutex
	templates  []*model.Template
	byDisplay  map[string]*model.Template
	byInternal map[string]*model.Template
	assets     []*model.Asset
	assetIndex map[string]*model.Asset
	instances  []*model.Instance
	nextID     uint64
	teams      map[string]*Team
	teamOrder  []string
	players    []*Player
	server     *Player
	nextPlayer int64

	overrides *OverrideManager
	transport *Transport

	sendHook     func(p *Player)
	joinHook     func(p *Player)
	tierHook     func(team string, oldTier, newTier int)
	dispenseGate func(team, unit string) bool
}

// NewSim creates a host. The server player is created immediately.
func NewSim(cfg Config) *Sim {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sim{
		log:        logger,
		byDisplay:  make(map[string]*model.Template),
		byInternal: make(map[string]*model.Template),
		assetIndex: make(map[string]*model.Asset),
		teams:      make(map[string]*Team),
	}
	for _, t := range cfg.Templates {
		s.templates = append(s.templates, t)
		s.byDisplay[strings.ToLower(t.DisplayName())] = t
		s.byInternal[t.InternalName()] = t
	}
	for _, a := range cfg.Assets {
		s.assets = append(s.assets, a)
		s.assetIndex[a.Name()] = a
	}
	for _, t := range cfg.Teams {
		s.AddTeam(t.Name, t.Tier)
	}

	s.overrides = NewOverrideManager(s.resolve, logger)
	s.overrides.OnNotify(s.broadcast)
	s.transport = NewTransport(s.overrides, cfg.MaxMessageBytes)
	s.server = s.newPlayer("server", true)
	return s
}

// Overrides returns the synchronized override subsystem.
func (s *Sim) Overrides() *OverrideManager { return s.overrides }

// Transport returns the send primitive.
func (s *Sim) Transport() *Transport { return s.transport }

// Capability returns the override subsystem as an engine capability.
func (s *Sim) Capability() override.Capability { return s.overrides }

// resolve maps "A:<name>.asset" to an asset or to the first template component carrying member.
func (s *Sim) resolve(target, member string) (model.Accessor, bool) {
	name, ok := strings.CutPrefix(target, "A:")
	if !ok {
		return nil, false
	}
	name, ok = strings.CutSuffix(name, ".asset")
	if !ok {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.assetIndex[name]; ok {
		return a, true
	}
	if rest, ok := strings.CutPrefix(name, string(model.AssetDamageManager)+"_"); ok {
		if a, ok := s.assetIndex[rest]; ok && a.Kind() == model.AssetDamageManager {
			return a, true
		}
	}
	t, ok := s.byInternal[name]
	if !ok {
		return nil, false
	}
	for _, c := range t.Components() {
		if _, err := c.Get(member); err == nil {
			return c, true
		}
	}
	return nil, false
}

// Templates returns every template.
func (s *Sim) Templates() []*model.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Template, len(s.templates))
	copy(out, s.templates)
	return out
}

// Template returns a template by display name (case-insensitive).
func (s *Sim) Template(display string) (*model.Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byDisplay[strings.ToLower(display)]
	return t, ok
}

// Asset returns an asset by name.
func (s *Sim) Asset(name string) (*model.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assetIndex[name]
	return a, ok
}

// Assets returns every asset of kind.
func (s *Sim) Assets(kind model.AssetKind) []*model.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Asset
	for _, a := range s.assets {
		if a.Kind() == kind {
			out = append(out, a)
		}
	}
	return out
}

// Instances returns every live instance.
func (s *Sim) Instances() []*model.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Instance, len(s.instances))
	copy(out, s.instances)
	return out
}

// Spawn creates a live instance of the template with the given display name.
func (s *Sim) Spawn(display, team string) (*model.Instance, error) {
	t, ok := s.Template(display)
	if !ok {
		return nil, fmt.Errorf("spawning %q: %w", display, ErrUnknownTemplate)
	}

	s.mu.Lock()
	s.nextID++
	inst := model.NewInstance(s.nextID, t, team)
	s.instances = append(s.instances, inst)
	s.mu.Unlock()

	s.log.Debug("instance spawned", "unit", display, "team", team, "id", inst.ID())
	return inst, nil
}

// Despawn removes a live instance.
func (s *Sim) Despawn(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, inst := range s.instances {
		if inst.ID() == id {
			s.instances = append(s.instances[:i], s.instances[i+1:]...)
			return true
		}
	}
	return false
}

// SetDispenseGate installs the check consulted by Dispense.
func (s *Sim) SetDispenseGate(fn func(team, unit string) bool) {
	s.dispenseGate = fn
}

// Dispense spawns unit for team from a dispenser, subject to the dispense gate.
func (s *Sim) Dispense(team, unit string) (*model.Instance, error) {
	if s.dispenseGate != nil && !s.dispenseGate(team, unit) {
		return nil, fmt.Errorf("dispensing %q for %s: %w", unit, team, ErrDispenseBlocked)
	}
	return s.Spawn(unit, team)
}

// Dispensers returns the live dispenser components owned by team.
func (s *Sim) Dispensers(team string) []*model.Component {
	var out []*model.Component
	for _, inst := range s.Instances() {
		if inst.Team() != team {
			continue
		}
		for _, c := range inst.Components() {
			if c.Kind() == model.KindVehicleDispenser {
				out = append(out, c)
			}
		}
	}
	return out
}

// AddTeam registers a team.
func (s *Sim) AddTeam(name string, tier int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[name]; !ok {
		s.teamOrder = append(s.teamOrder, name)
	}
	s.teams[name] = &Team{Name: name, Tier: tier}
}

// Teams returns all teams in registration order.
func (s *Sim) Teams() []Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Team, 0, len(s.teamOrder))
	for _, n := range s.teamOrder {
		out = append(out, *s.teams[n])
	}
	return out
}

// TeamNames returns team names in registration order.
func (s *Sim) TeamNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.teamOrder...)
}

// TeamTier returns the current tier of team.
func (s *Sim) TeamTier(team string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[team]
	if !ok {
		return 0, false
	}
	return t.Tier, true
}

// OnTierChanged registers the hook raised by SetTeamTier.
func (s *Sim) OnTierChanged(fn func(team string, oldTier, newTier int)) {
	s.tierHook = fn
}

// SetTeamTier changes the tier of team and raises the tier hook.
func (s *Sim) SetTeamTier(team string, tier int) error {
	s.mu.Lock()
	t, ok := s.teams[team]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("setting tier of %q: %w", team, ErrUnknownTeam)
	}
	old := t.Tier
	t.Tier = tier
	s.mu.Unlock()

	s.log.Info("team tier changed", "team", team, "old", old, "new", tier)
	if s.tierHook != nil && old != tier {
		s.tierHook(team, old, tier)
	}
	return nil
}

// Observers returns every connected player, the server included.
func (s *Sim) Observers() []overridesync.Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]overridesync.Observer, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	return out
}

// Authoritative returns the server player.
func (s *Sim) Authoritative() overridesync.Observer { return s.server }

// Players returns every player, the server included.
func (s *Sim) Players() []*Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Player, len(s.players))
	copy(out, s.players)
	return out
}

// OnJoin registers the hook raised when a player joins.
func (s *Sim) OnJoin(fn func(p *Player)) {
	s.joinHook = fn
}

// SetSendHook replaces the host's own send of the override set.
// Without a hook the host sends the whole set in one message.
func (s *Sim) SetSendHook(fn func(p *Player)) {
	s.sendHook = fn
}

// Join connects a new client player.
func (s *Sim) Join(name string) *Player {
	p := s.newPlayer(name, false)
	s.log.Info("player joined", "player", name, "id", p.ObserverID())
	if s.joinHook != nil {
		s.joinHook(p)
	}
	return p
}

// Leave disconnects a player.
func (s *Sim) Leave(p *Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.players {
		if cur == p {
			s.players = append(s.players[:i], s.players[i+1:]...)
			return
		}
	}
}

func (s *Sim) newPlayer(name string, server bool) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &Player{id: s.nextPlayer, name: name, server: server}
	s.nextPlayer++
	s.players = append(s.players, p)
	return p
}

// broadcast is the host's own reaction to a notifying override change.
func (s *Sim) broadcast() {
	for _, p := range s.Players() {
		if p.server {
			continue
		}
		if s.sendHook != nil {
			s.sendHook(p)
			continue
		}
		if err := s.transport.deliver(p); err != nil {
			s.log.Warn("override broadcast failed", "player", p.name, "err", err)
		}
	}
}
