// table.go: one generation of the map -- parallel atomic slot arrays plus
// the resize-control block for this generation (§4.1, §4.3)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package hydra

import "sync/atomic"

const (
	// minSizeLog is MIN_SIZE_LOG (§3 invariant 4): every table has
	// length >= 2^minSizeLog.
	minSizeLog = 8
	minSize    = 1 << minSizeLog

	// maxCapacityHint bounds the table length WithCapacity picks (§6).
	maxCapacityHint = 1 << 20

	// reprobeLimit is REPROBE_LIMIT (§4.3, §5): the reprobe bound before
	// a write triggers a resize. Lookups use the larger per-table bound
	// of Table.reprobeLimit.
	reprobeLimit = 10

	// copyChunkSize bounds how many slots a single help_copy_impl
	// iteration claims (§5 "work chunking").
	copyChunkSize = 1024
)

// Table is one generation of the map: fixed-length parallel arrays of
// atomic key/value cells, an atomic hash cache, and the
// resize-control metadata that drives migration to its successor.
//
// keys/values act as the AtomicSlotArray of §4.1: atomic.Pointer gives
// sequentially-consistent Load/CAS by index with no separate type needed,
// since a pointer already is the word-sized cell §4.1 requires.
type Table[K comparable, V comparable] struct {
	length int
	mask   uint64

	keys   []atomic.Pointer[keyCell[K]]
	values []atomic.Pointer[valueCell[V]]
	hashes []atomic.Uint64 // written once, under the key CAS that wins Absent->Present; see §5 hash-cache race note

	ctl resizeController[K, V]
}

func newTable[K comparable, V comparable](length int) *Table[K, V] {
	return &Table[K, V]{
		length: length,
		mask:   uint64(length - 1),
		keys:   make([]atomic.Pointer[keyCell[K]], length),
		values: make([]atomic.Pointer[valueCell[V]], length),
		hashes: make([]atomic.Uint64, length),
	}
}

// reprobeLimit is the per-probe bound used by lookups (§4.3):
// REPROBE_LIMIT + (len >> 2). Inserts use the bare reprobeLimit constant.
func (t *Table[K, V]) reprobeLimit() int {
	return reprobeLimit + (t.length >> 2)
}

// tableFull reports whether this generation has no room left for a new
// key at the current reprobe count (§4.3).
func (t *Table[K, V]) tableFull(reprobeCnt int) bool {
	return reprobeCnt >= reprobeLimit && atomic.LoadInt64(&t.ctl.slots) >= int64(t.length)
}

func (t *Table[K, V]) homeIndex(hash uint64) uint64 {
	return hash & t.mask
}

func (t *Table[K, V]) nextIndex(idx uint64) uint64 {
	return (idx + 1) & t.mask
}

// successor returns this table's next generation, or nil if none has
// been published yet. The pointer, once non-nil, is immutable (§3
// invariant 6).
func (t *Table[K, V]) successor() *Table[K, V] {
	return t.ctl.successor.Load()
}
