// map.go: the public Map type and its core operations -- put, get,
// delete, and the put_if_match mechanism they are built on (§4.5, §6)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package hydra

import (
	"hash/maphash"
	"sync/atomic"
)

// Map is a lock-free, linearly-probed, incrementally-resizable hash map
// safe for concurrent use by multiple goroutines without external
// synchronization. It never blocks a reader or writer on another
// reader or writer; the only wait in the whole implementation is a
// thread that loses a resizer election spinning for the winner to
// publish the new generation (§5).
//
// The zero value is not usable; construct with NewMap or WithCapacity.
type Map[K comparable, V comparable] struct {
	current atomic.Pointer[Table[K, V]]
	seed    maphash.Seed

	// lastResize is the last time (Now(), nanoseconds) a generation was
	// promoted, read by the resize decision's tombstone-saturation
	// heuristic (§4.5). Rust's original keeps this on the map, not the
	// per-generation table, and so do we.
	lastResize int64

	logger       Logger
	metrics      MetricsCollector
	timeProvider TimeProvider
}

// Option configures a Map at construction time.
type Option[K comparable, V comparable] func(*Map[K, V])

// WithLogger installs a custom Logger. Default is NoOpLogger.
func WithLogger[K comparable, V comparable](l Logger) Option[K, V] {
	return func(m *Map[K, V]) { m.logger = l }
}

// WithMetricsCollector installs a custom MetricsCollector. Default is
// NoOpMetricsCollector.
func WithMetricsCollector[K comparable, V comparable](c MetricsCollector) Option[K, V] {
	return func(m *Map[K, V]) { m.metrics = c }
}

// WithTimeProvider installs a custom TimeProvider. Default is
// systemTimeProvider, backed by go-timecache.
func WithTimeProvider[K comparable, V comparable](t TimeProvider) Option[K, V] {
	return func(m *Map[K, V]) { m.timeProvider = t }
}

// NewMap constructs an empty Map with the minimum table length (§3
// invariant 4).
func NewMap[K comparable, V comparable](opts ...Option[K, V]) *Map[K, V] {
	return newMapWithLength[K, V](minSize, opts...)
}

// WithCapacity constructs an empty Map sized to hold about hint live
// entries without an immediate resize: the table length is the
// smallest power of two >= 4*hint, clamped to [2^minSizeLog, 2^20]
// (§6). It returns an ErrCodeInvalidCapacity error, rather than
// panicking or silently clamping, if hint is negative.
func WithCapacity[K comparable, V comparable](hint int, opts ...Option[K, V]) (*Map[K, V], error) {
	if hint < 0 {
		return nil, newInvalidCapacityError(hint)
	}
	length := nextPowerOf2(hint * 4)
	if length > maxCapacityHint {
		length = maxCapacityHint
	}
	if length < minSize {
		length = minSize
	}
	return newMapWithLength[K, V](length, opts...), nil
}

func newMapWithLength[K comparable, V comparable](length int, opts ...Option[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		seed:         maphash.MakeSeed(),
		logger:       NoOpLogger{},
		metrics:      NoOpMetricsCollector{},
		timeProvider: systemTimeProvider{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.current.Store(newTable[K, V](length))
	atomic.StoreInt64(&m.lastResize, m.timeProvider.Now())
	return m
}

// MatchPolicy selects which current values PutIfMatch is allowed to
// overwrite (§4.5).
type MatchPolicy uint8

const (
	// MatchAny always overwrites, regardless of the current value.
	MatchAny MatchPolicy = iota
	// MatchAnyPresent overwrites only a Present(x) value.
	MatchAnyPresent
	// MatchEquals overwrites only when the current value matches
	// expected, with the Absent/Tomb equivalence of §4.5: Absent
	// matches an expected Tomb.
	MatchEquals
	// matchFromCopy is the slot-copy state machine's internal policy
	// (§4.6 step 5): overwrite only a slot that is still exactly
	// Absent, and disable recursive help_copy along the way. Unexported
	// rather than folded into MatchEquals(Absent): the copy path also
	// needs to suppress help_copy recursion (see putIfMatch's
	// `policy != matchFromCopy` checks), which Equals alone cannot
	// express, so it stays its own policy value.
	matchFromCopy MatchPolicy = iota
)

// valueMatches implements the Equals(expected) comparison of §4.5,
// including its Absent/Tomb equivalence.
func valueMatches[V comparable](v, expected *valueCell[V]) bool {
	if v.isAbsent() && expected.isTomb() {
		return true
	}
	return v.equalContent(expected)
}

func matchAllows[V comparable](policy MatchPolicy, v, expected *valueCell[V]) bool {
	switch policy {
	case MatchAny:
		return true
	case MatchAnyPresent:
		return v.isPresent()
	case MatchEquals:
		return valueMatches(v, expected)
	case matchFromCopy:
		return v.isAbsent()
	default:
		return false
	}
}

// fastKeyEqual short-circuits key comparison using each slot's cached
// hash: two keys with differing hashes can never be equal, so the full
// comparable comparison only runs on an actual hash match. Grounded on
// fast_keyeq, original_source/src/lib.rs. Callers pass cachedHash already
// loaded from the slot's atomic.Uint64 (§5: hashes[*] is sequentially
// consistent, same as every other field a reader/writer shares). A
// cached hash of exactly 0 is treated as "not yet cached" and falls
// through to a direct comparison.
func fastKeyEqual[K comparable](cachedHash, probeHash uint64, k *keyCell[K], key K) bool {
	if cachedHash != 0 && cachedHash != probeHash {
		return false
	}
	return k.key == key
}

// putIfMatch implements the combined probe/write algorithm of §4.5: it
// walks the probe chain for key starting at its home slot in table,
// inserting a new key if the search falls off the end of present keys,
// then applies policy to decide whether to overwrite the slot's value
// with newVal. It returns the value cell observed immediately before
// the (possible) write. When a write lands on an Absent slot, or a
// delete finds no key, a Tomb sentinel is returned in place of Absent;
// when policy refuses the write, the observed cell is returned as is,
// which is nil if the slot was Absent.
//
// Whenever the walk encounters a generation with a published successor,
// it migrates the slot it was looking at (or would have landed on) and
// restarts the whole search against the successor -- operations never
// write to a generation that is being retired.
func (m *Map[K, V]) putIfMatch(table *Table[K, V], key K, newVal *valueCell[V], policy MatchPolicy, expected *valueCell[V]) *valueCell[V] {
outer:
	for {
		fullHash := hashKey(m.seed, key)
		idx := table.homeIndex(fullHash)
		reprobeCnt := 0
		var slotIdx uint64

		// Probe phase: find key's slot, or the first Absent slot on its
		// probe chain to claim for it.
		for {
			k := table.keys[idx].Load()

			if k.isAbsent() {
				if newVal.isTomb() {
					// Deleting a key that was never inserted is a no-op.
					return newTombValue[V]()
				}
				if table.keys[idx].CompareAndSwap(nil, newPresentKey(key)) {
					atomic.AddInt64(&table.ctl.slots, 1)
					table.hashes[idx].Store(fullHash)
					slotIdx = idx
					break
				}
				// Lost the race for this slot; reload and re-examine it.
				continue
			}

			if k.isPresent() && fastKeyEqual(table.hashes[idx].Load(), fullHash, k, key) {
				slotIdx = idx
				break
			}

			reprobeCnt++
			if reprobeCnt >= reprobeLimit {
				next := m.resize(table)
				if policy != matchFromCopy {
					m.helpCopy()
				}
				table = next
				continue outer
			}
			idx = table.nextIndex(idx)
		}

		// Write phase at slotIdx.
		for {
			v := table.values[slotIdx].Load()

			if newVal.equalContent(v) {
				return v
			}

			if next := table.successor(); next != nil {
				if (v.isTomb() && table.tableFull(reprobeCnt)) || v.isPrimed() {
					m.resize(table)
				}
				table = m.copySlotAndCheck(table, slotIdx, policy != matchFromCopy)
				continue outer
			}

			if !matchAllows(policy, v, expected) {
				return v
			}

			if table.values[slotIdx].CompareAndSwap(v, newVal) {
				wasLive := v.isPresent()
				nowLive := newVal.isPresent()
				switch {
				case !wasLive && nowLive:
					atomic.AddInt64(&table.ctl.liveSize, 1)
				case wasLive && !nowLive:
					atomic.AddInt64(&table.ctl.liveSize, -1)
				}
				if v.isAbsent() {
					return newTombValue[V]()
				}
				return v
			}
			// Lost the CAS race; reload v and re-evaluate the slot.
		}
	}
}

// get implements §4.5's lookup algorithm: walk the probe chain for key
// in table, following published successors until either the key is
// found with a live value or its probe chain runs into an Absent slot.
func (m *Map[K, V]) get(table *Table[K, V], key K) (*valueCell[V], bool) {
	fullHash := hashKey(m.seed, key)

outer:
	for {
		idx := table.homeIndex(fullHash)
		reprobeCnt := 0

		for {
			k := table.keys[idx].Load()
			if k.isAbsent() {
				return nil, false
			}

			if k.isPresent() && fastKeyEqual(table.hashes[idx].Load(), fullHash, k, key) {
				v := table.values[idx].Load()
				if !v.isPrimed() {
					if v.isAbsent() || v.isTomb() {
						return nil, false
					}
					return v, true
				}
				// The slot is frozen for migration; help finish moving
				// it and continue the lookup in the successor.
				table = m.copySlotAndCheck(table, idx, true)
				continue outer
			}

			reprobeCnt++
			if reprobeCnt >= table.reprobeLimit() || k.isTomb() {
				next := table.successor()
				if next == nil {
					return nil, false
				}
				m.helpCopy()
				table = next
				continue outer
			}
			idx = table.nextIndex(idx)
		}
	}
}

// PutIfMatch conditionally installs newVal for key according to policy,
// exposing put_if_match's MatchAny/MatchAnyPresent/MatchEquals variants
// of §4.5 directly (Put and Delete are thin MatchAny wrappers over the
// same machinery). expected and expectedPresent together encode
// MatchEquals's comparison value: expectedPresent == false means
// "matches an Absent or logically-deleted slot" (the Tomb-equivalence
// §4.5 defines for a deletion match), expectedPresent == true means
// "matches a slot holding exactly expected". Both are ignored for
// MatchAny and MatchAnyPresent.
//
// It returns the value observed immediately before the (possible)
// write, and whether that value was live.
func (m *Map[K, V]) PutIfMatch(key K, newVal V, policy MatchPolicy, expected V, expectedPresent bool) (V, bool) {
	start := m.timeProvider.Now()
	table := m.current.Load()

	var expectedCell *valueCell[V]
	if expectedPresent {
		expectedCell = newPresentValue(expected)
	} else {
		expectedCell = newTombValue[V]()
	}

	prior := m.putIfMatch(table, key, newPresentValue(newVal), policy, expectedCell)
	hadPrior := prior.isPresent()
	if m.metrics != nil {
		m.metrics.RecordPut(m.timeProvider.Now()-start, hadPrior)
	}
	if !hadPrior {
		var zero V
		return zero, false
	}
	return prior.value, true
}

// Put inserts or overwrites key's value, returning the prior value and
// true if the key held a live value immediately beforehand.
func (m *Map[K, V]) Put(key K, value V) (V, bool) {
	start := m.timeProvider.Now()
	table := m.current.Load()
	prior := m.putIfMatch(table, key, newPresentValue(value), MatchAny, nil)
	hadPrior := prior.isPresent()
	if m.metrics != nil {
		m.metrics.RecordPut(m.timeProvider.Now()-start, hadPrior)
	}
	if !hadPrior {
		var zero V
		return zero, false
	}
	return prior.value, true
}

// Get returns key's current live value, if any.
func (m *Map[K, V]) Get(key K) (V, bool) {
	start := m.timeProvider.Now()
	table := m.current.Load()
	v, ok := m.get(table, key)
	if m.metrics != nil {
		m.metrics.RecordGet(m.timeProvider.Now()-start, ok)
	}
	if !ok {
		var zero V
		return zero, false
	}
	return v.value, true
}

// Delete removes key's live value, if any, logically: the slot
// transitions to Tomb rather than being reclaimed, so a later Put for
// the same key reuses the slot (§8 scenario 6). It returns true if a
// live value was actually removed.
func (m *Map[K, V]) Delete(key K) bool {
	start := m.timeProvider.Now()
	table := m.current.Load()
	prior := m.putIfMatch(table, key, newTombValue[V](), MatchAny, nil)
	removed := prior.isPresent()
	if m.metrics != nil {
		m.metrics.RecordDelete(m.timeProvider.Now()-start, removed)
	}
	return removed
}

// Capacity returns the slot count of the map's current (newest)
// generation.
func (m *Map[K, V]) Capacity() int {
	return m.current.Load().length
}

// Len returns the number of live entries in the map's current
// generation. Under concurrent mutation this is a snapshot, not a
// guarantee.
func (m *Map[K, V]) Len() int {
	return int(atomic.LoadInt64(&m.current.Load().ctl.liveSize))
}

// Generations returns a snapshot of every generation currently
// reachable from the oldest in-flight table to the newest, for
// diagnostics (§6). Index 0 is always Map.current, the oldest
// generation still linked in; the last entry is always the newest.
func (m *Map[K, V]) Generations() []TableStats {
	var out []TableStats
	for t := m.current.Load(); t != nil; t = t.successor() {
		out = append(out, t.stats())
	}
	return out
}

// GenerationAt returns the stats of the generation level steps ahead of
// the map's current table (level 0 is current itself), or false if the
// map has fewer than level+1 generations linked in. Grounded on
// get_kvs_level, original_source/src/lib.rs.
func (m *Map[K, V]) GenerationAt(level int) (TableStats, bool) {
	t := m.current.Load()
	for level > 0 && t != nil {
		t = t.successor()
		level--
	}
	if t == nil {
		return TableStats{}, false
	}
	return t.stats(), true
}
