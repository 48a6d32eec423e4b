package override

import (
	"errors"
	"log/slog"

	"github.com/udisondev/unitbalance/internal/model"
)

// Mode reports which mutation path a store uses.
type Mode int

const (
	ModeDirect Mode = iota
	ModeCapability
)

func (m Mode) String() string {
	if m == ModeCapability {
		return "capability"
	}
	return "direct"
}

// Family groups attributes by their fallback policy.
type Family int

const (
	FamilyGeneric Family = iota
	// FamilyHealth may fall back to direct mutation when the capability rejects a target.
	FamilyHealth
)

// AssetTarget returns the capability address of a named asset.
func AssetTarget(name string) string {
	return "A:" + name + ".asset"
}

// Binding names one attribute for both mutation paths.
type Binding struct {
	Target string
	Member string
	Local  model.Accessor
	Family Family
}

// Result reports how a write was carried out.
type Result struct {
	OK     bool
	Synced bool
}

// Store mutates attributes either through the capability subsystem or directly.
type Store interface {
	Apply(b Binding, v model.Value) Result
	Bypass(b Binding, v model.Value) Result
	RevertAll()
	Mode() Mode
}

// Select returns a CapabilityStore when capability is non-nil, otherwise a DirectStore.
func Select(capability Capability, cache *Cache, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}
	if capability == nil {
		return NewDirectStore(cache, logger)
	}
	return NewCapabilityStore(capability, cache, logger)
}

// DirectStore writes straight into host objects. Changes are not synchronized to observers.
type DirectStore struct {
	cache *Cache
	log   *slog.Logger
}

// NewDirectStore creates a direct store.
func NewDirectStore(cache *Cache, logger *slog.Logger) *DirectStore {
	return &DirectStore{cache: cache, log: logger}
}

func (s *DirectStore) Mode() Mode { return ModeDirect }

func (s *DirectStore) Apply(b Binding, v model.Value) Result {
	return write(s.cache, s.log, b, v)
}

func (s *DirectStore) Bypass(b Binding, v model.Value) Result {
	return write(s.cache, s.log, b, v)
}

// RevertAll restores every cached baseline.
func (s *DirectStore) RevertAll() {
	n := s.cache.Restore()
	s.log.Debug("direct revert", "restored", n)
}

// CapabilityStore routes writes through the host capability so observers receive them.
type CapabilityStore struct {
	capability Capability
	cache      *Cache
	log        *slog.Logger
}

// NewCapabilityStore creates a capability-backed store.
func NewCapabilityStore(c Capability, cache *Cache, logger *slog.Logger) *CapabilityStore {
	return &CapabilityStore{capability: c, cache: cache, log: logger}
}

func (s *CapabilityStore) Mode() Mode { return ModeCapability }

// Apply sets the member through the capability. Health bindings fall back to a direct write.
func (s *CapabilityStore) Apply(b Binding, v model.Value) Result {
	if b.Local != nil {
		// the first write must see the untouched value
		if _, err := s.cache.Baseline(b.Local, b.Member); err != nil {
			s.log.Debug("baseline unavailable", "target", b.Target, "member", b.Member, "err", err)
		}
	}
	if b.Target != "" && s.capability.Set(b.Target, b.Member, v, true, false) {
		return Result{OK: true, Synced: true}
	}
	if b.Family != FamilyHealth || b.Local == nil {
		s.log.Debug("override rejected", "target", b.Target, "member", b.Member)
		return Result{}
	}
	s.log.Warn("override rejected, falling back to direct write", "target", b.Target, "member", b.Member)
	return write(s.cache, s.log, b, v)
}

func (s *CapabilityStore) Bypass(b Binding, v model.Value) Result {
	return write(s.cache, s.log, b, v)
}

// RevertAll reverts capability overrides and restores directly written attributes.
func (s *CapabilityStore) RevertAll() {
	s.capability.RevertAll(true, false)
	n := s.cache.RestoreDirect()
	s.log.Debug("capability revert", "restored_direct", n)
}

func write(cache *Cache, log *slog.Logger, b Binding, v model.Value) Result {
	if b.Local == nil {
		return Result{}
	}
	if _, err := cache.Baseline(b.Local, b.Member); err != nil {
		logSkip(log, b, err)
		return Result{}
	}
	if err := b.Local.Set(b.Member, v); err != nil {
		logSkip(log, b, err)
		return Result{}
	}
	cache.markDirect(b.Local, b.Member)
	return Result{OK: true}
}

func logSkip(log *slog.Logger, b Binding, err error) {
	if errors.Is(err, model.ErrAttributeNotFound) || errors.Is(err, model.ErrTypeMismatch) {
		log.Debug("attribute skipped", "target", b.Target, "member", b.Member, "err", err)
		return
	}
	log.Warn("attribute write failed", "target", b.Target, "member", b.Member, "err", err)
}
