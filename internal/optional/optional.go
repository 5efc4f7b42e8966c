// Package optional models annotation fields that may be unavailable for a
// read. An absent field renders as "NA" so a sparse record degrades one
// column at a time.
package optional

import "fmt"

// NA is the rendering of an absent value.
const NA = "NA"

// Value holds a T or nothing.
type Value[T any] struct {
	v  T
	ok bool
}

// Of wraps a present value.
func Of[T any](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

// None returns an absent value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// FromOK builds a Value from the (v, ok) pair returned by lookups.
func FromOK[T any](v T, ok bool) Value[T] {
	if !ok {
		return None[T]()
	}
	return Of(v)
}

// Get returns the value and whether it is present.
func (o Value[T]) Get() (T, bool) {
	return o.v, o.ok
}

// Present reports whether a value is held.
func (o Value[T]) Present() bool {
	return o.ok
}

// Or returns the value, or fallback when absent.
func (o Value[T]) Or(fallback T) T {
	if !o.ok {
		return fallback
	}
	return o.v
}

// Format renders the value with f, or NA when absent.
func (o Value[T]) Format(f func(T) string) string {
	if !o.ok {
		return NA
	}
	return f(o.v)
}

func (o Value[T]) String() string {
	if !o.ok {
		return NA
	}
	return fmt.Sprint(o.v)
}
