package model

import (
	"fmt"
	"slices"
)

type attribute struct {
	value    Value
	declared bool
}

// Record is an ordered attribute table backing assets and components.
// Attribute kinds are fixed at declaration time.
type Record struct {
	names []string
	attrs map[string]*attribute
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{attrs: make(map[string]*attribute)}
}

// Declare adds an attribute declared on the record's own kind.
func (r *Record) Declare(name string, v Value) *Record {
	r.put(name, v, true)
	return r
}

// Inherit adds an attribute that belongs to a base kind.
func (r *Record) Inherit(name string, v Value) *Record {
	r.put(name, v, false)
	return r
}

func (r *Record) put(name string, v Value, declared bool) {
	if a, ok := r.attrs[name]; ok {
		a.value = v
		a.declared = declared
		return
	}
	r.names = append(r.names, name)
	r.attrs[name] = &attribute{value: v, declared: declared}
}

// Get returns the attribute value.
func (r *Record) Get(name string) (Value, error) {
	a, ok := r.attrs[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrAttributeNotFound, name)
	}
	return a.value, nil
}

// Set replaces the attribute value. The kind must match the declared kind.
func (r *Record) Set(name string, v Value) error {
	a, ok := r.attrs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAttributeNotFound, name)
	}
	if a.value.Kind() != v.Kind() {
		return fmt.Errorf("%w: %s is %s, got %s", ErrTypeMismatch, name, a.value.Kind(), v.Kind())
	}
	a.value = v
	return nil
}

// Names returns attribute names in declaration order.
func (r *Record) Names() []string {
	return slices.Clone(r.names)
}

// Declared reports whether name is declared on the record's own kind.
func (r *Record) Declared(name string) bool {
	a, ok := r.attrs[name]
	return ok && a.declared
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	c := &Record{
		names: slices.Clone(r.names),
		attrs: make(map[string]*attribute, len(r.attrs)),
	}
	for name, a := range r.attrs {
		cp := *a
		c.attrs[name] = &cp
	}
	return c
}
