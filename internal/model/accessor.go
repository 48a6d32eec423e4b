package model

import (
	"errors"
	"fmt"
)

var (
	// ErrAttributeNotFound is returned when an object has no attribute with the given name.
	ErrAttributeNotFound = errors.New("attribute not found")
	// ErrTypeMismatch is returned when a value kind does not match the attribute kind.
	ErrTypeMismatch = errors.New("attribute type mismatch")
)

// Accessor reads and writes attributes of an opaque host object by name.
type Accessor interface {
	Get(name string) (Value, error)
	Set(name string, v Value) error
	Names() []string
}

// DeclaredAccessor is implemented by objects that can tell attributes declared
// on their own kind from attributes inherited from a base kind.
type DeclaredAccessor interface {
	Accessor
	Declared(name string) bool
}

// GetFloat reads a float attribute. Integer and bool attributes yield ErrTypeMismatch.
func GetFloat(a Accessor, name string) (float64, error) {
	v, err := a.Get(name)
	if err != nil {
		return 0, err
	}
	if v.Kind() != KindFloat {
		return 0, fmt.Errorf("%w: %s is %s, want float", ErrTypeMismatch, name, v.Kind())
	}
	return v.Float(), nil
}

// GetInt reads an integer attribute.
func GetInt(a Accessor, name string) (int64, error) {
	v, err := a.Get(name)
	if err != nil {
		return 0, err
	}
	if v.Kind() != KindInt {
		return 0, fmt.Errorf("%w: %s is %s, want int", ErrTypeMismatch, name, v.Kind())
	}
	return v.Int(), nil
}

// GetBool reads a bool attribute.
func GetBool(a Accessor, name string) (bool, error) {
	v, err := a.Get(name)
	if err != nil {
		return false, err
	}
	if v.Kind() != KindBool {
		return false, fmt.Errorf("%w: %s is %s, want bool", ErrTypeMismatch, name, v.Kind())
	}
	return v.Bool(), nil
}

// IsDeclared reports whether name is declared on a's own kind.
// Accessors without declaration info treat every present attribute as declared.
func IsDeclared(a Accessor, name string) bool {
	if d, ok := a.(DeclaredAccessor); ok {
		return d.Declared(name)
	}
	_, err := a.Get(name)
	return err == nil
}
