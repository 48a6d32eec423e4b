package host

import (
	"log/slog"
	"sync"

	"github.com/udisondev/unitbalance/internal/model"
	"github.com/udisondev/unitbalance/internal/overridesync"
)

// Resolver finds the object that carries member for a capability target.
type Resolver func(target, member string) (model.Accessor, bool)

type entry struct {
	member   string
	obj      model.Accessor
	original model.Value
	value    model.Value
	enabled  bool
	queued   bool
}

type targetEntries struct {
	target   string
	entries  []*entry
	byMember map[string]*entry
}

// OverrideManager is the host's synchronized override subsystem.
// It records the first-seen value of every member it overrides so RevertAll can restore it.
type OverrideManager struct {
	mu       sync.Mutex
	resolve  Resolver
	targets  []*targetEntries
	index    map[string]*targetEntries
	visible  []overridesync.Group
	narrowed bool
	onNotify func()
	log      *slog.Logger
}

// NewOverrideManager creates a manager resolving targets with resolve.
func NewOverrideManager(resolve Resolver, logger *slog.Logger) *OverrideManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &OverrideManager{
		resolve: resolve,
		index:   make(map[string]*targetEntries),
		log:     logger,
	}
}

// OnNotify registers the hook raised by Set and RevertAll when notify is true.
func (m *OverrideManager) OnNotify(fn func()) {
	m.onNotify = fn
}

// Set overrides member of target. It fails when the target cannot be resolved,
// the member is unknown or the value kind does not match.
func (m *OverrideManager) Set(target, member string, v model.Value, enqueue, notify bool) bool {
	obj, ok := m.resolve(target, member)
	if !ok {
		m.log.Debug("override target not resolved", "target", target, "member", member)
		return false
	}
	cur, err := obj.Get(member)
	if err != nil || cur.Kind() != v.Kind() {
		return false
	}

	m.mu.Lock()
	te, ok := m.index[target]
	if !ok {
		te = &targetEntries{target: target, byMember: make(map[string]*entry)}
		m.index[target] = te
		m.targets = append(m.targets, te)
	}
	e, ok := te.byMember[member]
	if !ok {
		e = &entry{member: member, obj: obj, original: cur}
		te.byMember[member] = e
		te.entries = append(te.entries, e)
	}
	if err := obj.Set(member, v); err != nil {
		m.mu.Unlock()
		return false
	}
	e.value = v
	e.enabled = true
	e.queued = enqueue
	m.mu.Unlock()

	if notify {
		m.notify()
	}
	return true
}

// RevertAll restores every overridden member and forgets all entries.
func (m *OverrideManager) RevertAll(notify, enqueue bool) {
	m.mu.Lock()
	restored := 0
	for _, te := range m.targets {
		for _, e := range te.entries {
			if err := e.obj.Set(e.member, e.original); err == nil {
				restored++
			}
		}
	}
	m.targets = nil
	m.index = make(map[string]*targetEntries)
	m.mu.Unlock()
	m.log.Debug("overrides reverted", "restored", restored, "enqueue", enqueue)
	if notify {
		m.notify()
	}
}

func (m *OverrideManager) notify() {
	if m.onNotify != nil {
		m.onNotify()
	}
}

// Groups returns the visible override set, all targets unless narrowed by Swap.
func (m *OverrideManager) Groups() []overridesync.Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.narrowed {
		return m.visible
	}
	return m.all()
}

func (m *OverrideManager) all() []overridesync.Group {
	out := make([]overridesync.Group, 0, len(m.targets))
	for _, te := range m.targets {
		g := overridesync.Group{Target: te.target, Members: make([]overridesync.Member, 0, len(te.entries))}
		for _, e := range te.entries {
			g.Members = append(g.Members, overridesync.Member{
				Name:    e.member,
				Value:   e.value,
				Enabled: e.enabled,
				Queued:  e.queued,
			})
		}
		out = append(out, g)
	}
	return out
}

// Swap narrows the visible set to groups and returns the previous visible set.
// Swapping in nil restores the full set.
func (m *OverrideManager) Swap(groups []overridesync.Group) []overridesync.Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	var prev []overridesync.Group
	if m.narrowed {
		prev = m.visible
	}
	m.visible = groups
	m.narrowed = groups != nil
	return prev
}

// Value returns the current override of target.member.
func (m *OverrideManager) Value(target, member string) (model.Value, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	te, ok := m.index[target]
	if !ok {
		return model.Value{}, false
	}
	e, ok := te.byMember[member]
	if !ok {
		return model.Value{}, false
	}
	return e.value, true
}

// Len returns the number of overridden members.
func (m *OverrideManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, te := range m.targets {
		n += len(te.entries)
	}
	return n
}
