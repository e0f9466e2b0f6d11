// cells.go: tagged key/value cell representations for lock-free slots
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package hydra

// keyKind tags the state of a keyCell. The Absent state needs no tag: a
// nil *keyCell[K] pointer IS Absent, so every slot starts zero-valued
// with no allocation.
type keyKind uint8

const (
	keyPresent keyKind = iota
	keyTomb
)

// keyCell is the payload behind a slot's atomic.Pointer[keyCell[K]].
// Once a slot transitions Absent -> Present(k), k never changes within
// the same table generation (invariant 1, §3).
type keyCell[K comparable] struct {
	kind keyKind
	key  K
}

func newPresentKey[K comparable](k K) *keyCell[K] {
	return &keyCell[K]{kind: keyPresent, key: k}
}

func newKeyTomb[K comparable]() *keyCell[K] {
	return &keyCell[K]{kind: keyTomb}
}

func (c *keyCell[K]) isAbsent() bool {
	return c == nil
}

func (c *keyCell[K]) isTomb() bool {
	return c != nil && c.kind == keyTomb
}

func (c *keyCell[K]) isPresent() bool {
	return c != nil && c.kind == keyPresent
}

// valueKind tags the state of a valueCell. Absent is, again, nil.
type valueKind uint8

const (
	valuePresent valueKind = iota
	valueTomb
)

// valueCell is the payload behind a slot's atomic.Pointer[valueCell[V]].
// prime marks the slot as frozen for migration (§3 invariant 2): once
// prime is set, the only legal next transition is to TOMBPRIME.
type valueCell[V comparable] struct {
	kind  valueKind
	value V
	prime bool
}

func newPresentValue[V comparable](v V) *valueCell[V] {
	return &valueCell[V]{kind: valuePresent, value: v}
}

func newTombValue[V comparable]() *valueCell[V] {
	return &valueCell[V]{kind: valueTomb}
}

// newTombPrimeValue builds the terminal TOMBPRIME sentinel.
func newTombPrimeValue[V comparable]() *valueCell[V] {
	return &valueCell[V]{kind: valueTomb, prime: true}
}

func (c *valueCell[V]) isAbsent() bool {
	return c == nil
}

func (c *valueCell[V]) isTomb() bool {
	return c != nil && c.kind == valueTomb && !c.prime
}

func (c *valueCell[V]) isTombPrime() bool {
	return c != nil && c.kind == valueTomb && c.prime
}

func (c *valueCell[V]) isPresent() bool {
	return c != nil && c.kind == valuePresent && !c.prime
}

func (c *valueCell[V]) isPrimed() bool {
	return c != nil && c.prime
}

// primedForm computes the primed sentinel for the current cell per the
// freeze step of the slot-copy state machine (§4.6 step 3):
// Absent/Tomb freeze straight to TOMBPRIME, Present(v) freezes to
// Prime(Present(v)).
func (c *valueCell[V]) primedForm() *valueCell[V] {
	if c.isAbsent() || c.kind == valueTomb {
		return newTombPrimeValue[V]()
	}
	return &valueCell[V]{kind: valuePresent, value: c.value, prime: true}
}

// unprimed strips the prime tag, recovering the Present(v) cell that was
// frozen. Never called on a TOMBPRIME cell (callers check isTombPrime first).
func (c *valueCell[V]) unprimed() *valueCell[V] {
	if c == nil {
		return nil
	}
	return &valueCell[V]{kind: c.kind, value: c.value, prime: false}
}

// equalContent compares two cells by their logical value, not pointer
// identity, used for the idempotent-write short-circuit and the
// Equals(expected) match policy's direct-hit case.
func (c *valueCell[V]) equalContent(o *valueCell[V]) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.kind == o.kind && c.prime == o.prime && c.value == o.value
}
