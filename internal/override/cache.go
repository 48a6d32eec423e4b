package override

import (
	"github.com/udisondev/unitbalance/internal/model"
)

// Key identifies one attribute of one host object.
// Objects are compared by identity.
type Key struct {
	Object model.Accessor
	Attr   string
}

type cached struct {
	original model.Value
	direct   bool
}

// Cache remembers the first-observed value of every attribute the engine touches.
// Scaling always starts from the cached baseline, which keeps repeated passes idempotent.
type Cache struct {
	entries map[Key]*cached
	order   []Key
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]*cached)}
}

// Baseline returns the cached original of attr, reading and caching the current value on first use.
func (c *Cache) Baseline(obj model.Accessor, attr string) (model.Value, error) {
	k := Key{Object: obj, Attr: attr}
	if e, ok := c.entries[k]; ok {
		return e.original, nil
	}
	v, err := obj.Get(attr)
	if err != nil {
		return model.Value{}, err
	}
	c.entries[k] = &cached{original: v}
	c.order = append(c.order, k)
	return v, nil
}

// Original returns the cached baseline without reading the object.
func (c *Cache) Original(obj model.Accessor, attr string) (model.Value, bool) {
	e, ok := c.entries[Key{Object: obj, Attr: attr}]
	if !ok {
		return model.Value{}, false
	}
	return e.original, true
}

// markDirect flags an entry as written outside the capability subsystem.
func (c *Cache) markDirect(obj model.Accessor, attr string) {
	if e, ok := c.entries[Key{Object: obj, Attr: attr}]; ok {
		e.direct = true
	}
}

// RestoreDirect writes back every baseline that was mutated directly.
func (c *Cache) RestoreDirect() int {
	return c.restore(true)
}

// Restore writes back every cached baseline.
func (c *Cache) Restore() int {
	return c.restore(false)
}

func (c *Cache) restore(directOnly bool) int {
	n := 0
	for _, k := range c.order {
		e := c.entries[k]
		if directOnly && !e.direct {
			continue
		}
		if err := k.Object.Set(k.Attr, e.original); err == nil {
			n++
		}
	}
	return n
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.entries = make(map[Key]*cached)
	c.order = nil
}

// Len returns the number of cached attributes.
func (c *Cache) Len() int { return len(c.entries) }
