// Package engine orchestrates balance reloads: parse, apply, propagate and sync.
//
// The engine holds no locks. Every entry point is expected to run on the host loop,
// which the scheduler queue serializes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/udisondev/unitbalance/internal/applier"
	"github.com/udisondev/unitbalance/internal/balance"
	"github.com/udisondev/unitbalance/internal/metrics"
	"github.com/udisondev/unitbalance/internal/model"
	"github.com/udisondev/unitbalance/internal/override"
	"github.com/udisondev/unitbalance/internal/overridesync"
	"github.com/udisondev/unitbalance/internal/propagate"
)

// ErrUnknownUnit is returned by BaselineValue for a unit without a template.
var ErrUnknownUnit = errors.New("unknown unit")

// Registry is the host's view of templates, assets, instances and teams.
type Registry interface {
	Templates() []*model.Template
	Template(display string) (*model.Template, bool)
	Assets(kind model.AssetKind) []*model.Asset
	Instances() []*model.Instance
	Spawn(display, team string) (*model.Instance, error)
	Dispensers(team string) []*model.Component
	TeamNames() []string
	TeamTier(team string) (int, bool)
}

// Observers lists connected observers and names the authoritative one.
type Observers interface {
	Observers() []overridesync.Observer
	Authoritative() overridesync.Observer
}

// DocumentSource reads the active balance document.
type DocumentSource interface {
	Read() ([]byte, error)
}

// HistoryRecorder stores applied generations.
type HistoryRecorder interface {
	RecordGeneration(ctx context.Context, g balance.Generation) error
}

// Options holds engine timings.
type Options struct {
	SyncInitialDelay time.Duration
	ObserverSpacing  time.Duration
	GameStartGrace   time.Duration
	SpawnDelay       time.Duration
	Now              func() time.Time
	// DumpPath receives the unit JSON dump when dump_fields is set; empty skips it.
	DumpPath         string
}

// DefaultOptions returns the standard timings.
func DefaultOptions() Options {
	return Options{
		SyncInitialDelay: 500 * time.Millisecond,
		ObserverSpacing:  500 * time.Millisecond,
		GameStartGrace:   2 * time.Second,
		SpawnDelay:       5 * time.Second,
		Now:              time.Now,
	}
}

// Deps are the engine collaborators. Capability, Metrics and History may be nil.
type Deps struct {
	Registry   Registry
	Capability override.Capability
	Document   DocumentSource
	Syncer     *overridesync.Syncer
	Observers  Observers
	Scheduler  overridesync.Scheduler
	Metrics    *metrics.Metrics
	History    HistoryRecorder
	Logger     *slog.Logger
	Options    Options
}

// ReloadReport summarizes one reload.
type ReloadReport struct {
	Generation  uint64
	Fingerprint string
	Enabled     bool
	Summary     applier.Summary
	Propagated  int
	Scheduled   int
	LoadErr     error
}

// Engine is the reload and revert orchestrator.
type Engine struct {
	reg        Registry
	capability override.Capability
	doc        DocumentSource
	syncer     *overridesync.Syncer
	observers  Observers
	sched      overridesync.Scheduler
	metrics    *metrics.Metrics
	history    HistoryRecorder
	log        *slog.Logger
	opts       Options

	current    *balance.SessionState
	previous   *balance.SessionState
	generation uint64
	cache      *override.Cache
	store      override.Store
	propagator *propagate.Propagator

	capWarn      *sync.Once
	tierResets   map[string]struct{}
	fieldsDumped bool
}

// New creates an engine with a disabled state. Call LoadConfig or Reload to read the document.
func New(d Deps) *Engine {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := d.Options
	def := DefaultOptions()
	if opts.SyncInitialDelay <= 0 {
		opts.SyncInitialDelay = def.SyncInitialDelay
	}
	if opts.ObserverSpacing <= 0 {
		opts.ObserverSpacing = def.ObserverSpacing
	}
	if opts.GameStartGrace <= 0 {
		opts.GameStartGrace = def.GameStartGrace
	}
	if opts.SpawnDelay <= 0 {
		opts.SpawnDelay = def.SpawnDelay
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return &Engine{
		reg:        d.Registry,
		capability: d.Capability,
		doc:        d.Document,
		syncer:     d.Syncer,
		observers:  d.Observers,
		sched:      d.Scheduler,
		metrics:    d.Metrics,
		history:    d.History,
		log:        logger,
		opts:       opts,
		current:    balance.Disabled(),
		cache:      override.NewCache(),
		propagator: propagate.New(logger),
		capWarn:    &sync.Once{},
		tierResets: make(map[string]struct{}),
	}
}

// State returns the current session state.
func (e *Engine) State() *balance.SessionState { return e.current }

// Generation returns the number of documents loaded so far.
func (e *Engine) Generation() uint64 { return e.generation }

// LoadConfig reads and parses the active document into a new session state.
// Read and parse failures produce a disabled state; the error is returned for reporting only.
func (e *Engine) LoadConfig() (*balance.SessionState, error) {
	e.generation++
	st, err := e.load()
	if err != nil {
		e.log.Error("balance document rejected, overrides disabled", "generation", e.generation, "err", err)
		st = balance.Disabled()
	}
	st.Generation = e.generation
	e.previous, e.current = e.current, st

	e.metrics.SetGeneration(e.generation)
	e.log.Info("balance document loaded",
		"generation", st.Generation,
		"fingerprint", st.Fingerprint,
		"enabled", st.Enabled,
		"units", len(st.Units()))
	return st, err
}

func (e *Engine) load() (*balance.SessionState, error) {
	if e.doc == nil {
		return nil, errors.New("no document source")
	}
	data, err := e.doc.Read()
	if err != nil {
		return nil, fmt.Errorf("reading balance document: %w", err)
	}
	return balance.Parse(data)
}

// ApplyAll runs every applier against the current state.
// Without a capability the direct store is used and a warning is logged once per session.
func (e *Engine) ApplyAll(useCapability bool) applier.Summary {
	if !e.current.Active() {
		e.log.Info("overrides disabled, nothing applied", "generation", e.current.Generation)
		return nil
	}

	capability := e.capability
	if !useCapability {
		capability = nil
	} else if capability == nil {
		e.capWarn.Do(func() {
			e.log.Warn("override capability unavailable, using direct mode", "err", override.ErrCapabilityUnavailable)
		})
	}
	want := override.ModeDirect
	if capability != nil {
		want = override.ModeCapability
	}
	if e.store != nil && e.store.Mode() != want {
		e.store.RevertAll()
		e.cache.Clear()
		e.store = nil
	}
	if e.store == nil {
		e.store = override.Select(capability, e.cache, e.log)
	}

	pass := &applier.Pass{
		State:       e.current,
		Templates:   e.reg.Templates(),
		Projectiles: e.reg.Assets(model.AssetProjectile),
		Store:       e.store,
		Cache:       e.cache,
		Log:         e.log,
	}
	summary := applier.Run(pass)
	for _, c := range summary {
		e.metrics.Applied(c.Applier, c.Touched)
	}
	e.log.Info("overrides applied",
		"generation", e.current.Generation,
		"mode", e.store.Mode(),
		"total", summary.Total())
	return summary
}

// RevertToBaseline restores every touched attribute and forgets the session's bookkeeping.
func (e *Engine) RevertToBaseline() {
	if e.store != nil {
		e.store.RevertAll()
	} else {
		e.cache.Restore()
	}
	e.cache.Clear()
	e.store = nil
	e.tierResets = make(map[string]struct{})
	e.metrics.Reloaded("revert")
	e.log.Info("overrides reverted to baseline")
}

// PropagateToLiveInstances copies template values into spawned instances.
func (e *Engine) PropagateToLiveInstances() int {
	states := []*balance.SessionState{e.current}
	if e.previous != nil {
		states = append(states, e.previous)
	}
	n := e.propagator.Propagate(e.reg.Instances(), states...)
	e.metrics.Propagated(n)
	return n
}

// Reload reverts, reloads the document, reapplies, propagates and schedules a sync to every observer.
// Each stage runs even when an earlier one failed.
func (e *Engine) Reload(ctx context.Context) ReloadReport {
	e.RevertToBaseline()
	st, err := e.LoadConfig()
	rep := ReloadReport{
		Generation:  st.Generation,
		Fingerprint: st.Fingerprint,
		Enabled:     st.Active(),
		LoadErr:     err,
	}
	rep.Summary = e.ApplyAll(e.capability != nil)
	rep.Propagated = e.PropagateToLiveInstances()
	rep.Scheduled = e.syncAll(ctx, e.opts.SyncInitialDelay)

	e.metrics.Reloaded("reload")
	if err == nil {
		e.recordGeneration(ctx, st, rep.Summary.Total())
	}
	e.log.Info("balance reloaded",
		"generation", rep.Generation,
		"applied", rep.Summary.Total(),
		"propagated", rep.Propagated,
		"observers", rep.Scheduled)
	return rep
}

// ReloadDefault reverts to vanilla values without reapplying and syncs every observer.
func (e *Engine) ReloadDefault(ctx context.Context) ReloadReport {
	e.RevertToBaseline()
	e.previous, e.current = e.current, balance.Disabled()
	e.current.Generation = e.generation
	rep := ReloadReport{Generation: e.generation}
	rep.Propagated = e.PropagateToLiveInstances()
	rep.Scheduled = e.syncAll(ctx, e.opts.SyncInitialDelay)
	e.metrics.Reloaded("default")
	e.log.Info("balance reset to default", "propagated", rep.Propagated, "observers", rep.Scheduled)
	return rep
}

func (e *Engine) recordGeneration(ctx context.Context, st *balance.SessionState, applied int) {
	if e.history == nil {
		return
	}
	g := balance.Generation{
		Number:      st.Generation,
		Fingerprint: st.Fingerprint,
		Applied:     applied,
		At:          e.opts.Now(),
	}
	if err := e.history.RecordGeneration(ctx, g); err != nil {
		e.log.Warn("failed to record balance generation", "generation", g.Number, "err", err)
	}
}

func (e *Engine) syncAll(ctx context.Context, initial time.Duration) int {
	if e.syncer == nil || e.observers == nil {
		return 0
	}
	tag := fmt.Sprintf("gen-%d", e.generation)
	return e.syncer.SyncAll(ctx, e.observers.Observers(), e.observers.Authoritative(),
		initial, e.opts.ObserverSpacing, tag, nil)
}

// SendTo pushes the override set to one observer in chunks.
// An empty set is sent whole so the observer drops what it saw before.
func (e *Engine) SendTo(ctx context.Context, o overridesync.Observer) overridesync.SendReport {
	if e.syncer == nil {
		return overridesync.SendReport{Observer: o.ObserverID()}
	}
	rep := e.syncer.Send(ctx, o, overridesync.SendChunking)
	if rep.Groups == 0 {
		rep = e.syncer.Send(ctx, o, overridesync.SendDirect)
	}
	return rep
}

// OnObserverJoined sends the current override set to a newly connected observer.
func (e *Engine) OnObserverJoined(ctx context.Context, o overridesync.Observer) {
	if e.observers != nil {
		if auth := e.observers.Authoritative(); auth != nil && auth.ObserverID() == o.ObserverID() {
			return
		}
	}
	if e.sched == nil {
		e.SendTo(ctx, o)
		return
	}
	e.sched.After(e.opts.SyncInitialDelay, "join sync", func() { e.SendTo(ctx, o) })
}

// BaselineValue returns the vanilla value of attr on unit.
// kind is a component kind, or ConstructionData / DamageManagerData for the template's assets.
func (e *Engine) BaselineValue(unit, kind, attr string) (model.Value, error) {
	t, ok := e.reg.Template(unit)
	if !ok {
		return model.Value{}, fmt.Errorf("baseline of %q: %w", unit, ErrUnknownUnit)
	}
	var obj model.Accessor
	switch {
	case strings.EqualFold(kind, string(model.AssetConstruction)):
		if a := t.Construction(); a != nil {
			obj = a
		}
	case strings.EqualFold(kind, string(model.AssetDamageManager)):
		if a := t.DamageManager(); a != nil {
			obj = a
		}
	default:
		for _, c := range t.Components() {
			if strings.EqualFold(string(c.Kind()), kind) {
				obj = c
				break
			}
		}
	}
	if obj == nil {
		return model.Value{}, fmt.Errorf("baseline of %s.%s: %w", unit, kind, model.ErrAttributeNotFound)
	}
	if v, ok := e.cache.Original(obj, attr); ok {
		return v, nil
	}
	return obj.Get(attr)
}
