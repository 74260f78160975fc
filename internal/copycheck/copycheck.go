// Package copycheck decides whether a Go type behaves as a plain value.
//
// A type is copy-safe when assigning it duplicates all of its state: no
// field, element or the type itself may refer to storage shared with the
// original. Numbers, bools, strings, arrays of copy-safe elements and structs
// whose fields are all copy-safe qualify. Pointers, maps, slices, channels,
// functions, interfaces and unsafe pointers do not.
//
// Strings are accepted even though they share a backing array: they are
// immutable, so no alias can observe a write.
//
// Results are cached per reflect.Type, so repeated checks of the same type
// cost one sync.Map lookup.
package copycheck

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNotCopySafe is wrapped by every error returned from Check.
var ErrNotCopySafe = errors.New("type is not copy-safe")

// Error describes why a type failed the check.
type Error struct {
	// Type is the type that was checked.
	Type reflect.Type

	// Path locates the offending component inside Type, e.g. "Inner.Items[]".
	// Empty when Type itself is the offender.
	Path string

	// Kind is the kind of the offending component.
	Kind reflect.Kind
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s has reference kind %s", ErrNotCopySafe, e.Type, e.Kind)
	}
	return fmt.Sprintf("%s: %s.%s has reference kind %s", ErrNotCopySafe, e.Type, e.Path, e.Kind)
}

func (e *Error) Unwrap() error {
	return ErrNotCopySafe
}

// cache maps reflect.Type to error (nil stored as okMarker).
var cache sync.Map

type okMarker struct{}

// Check reports whether t is copy-safe. It returns nil for copy-safe types
// and an *Error otherwise. A nil type (the dynamic type of a nil interface)
// is rejected.
func Check(t reflect.Type) error {
	if t == nil {
		return &Error{Kind: reflect.Interface}
	}
	if v, ok := cache.Load(t); ok {
		if _, ok := v.(okMarker); ok {
			return nil
		}
		return v.(error)
	}

	err := check(t, t, "")
	if err == nil {
		cache.Store(t, okMarker{})
		return nil
	}
	cache.Store(t, err)
	return err
}

// CheckOf is Check for the static type T.
func CheckOf[T any]() error {
	return Check(reflect.TypeFor[T]())
}

func check(root, t reflect.Type, path string) error {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return nil
	case reflect.Array:
		return check(root, t.Elem(), path+"[]")
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			p := f.Name
			if path != "" {
				p = path + "." + f.Name
			}
			if err := check(root, f.Type, p); err != nil {
				return err
			}
		}
		return nil
	default:
		return &Error{Type: root, Path: path, Kind: t.Kind()}
	}
}
