// copy.go: the slot-copy state machine and the work-sharing coordinator
// that drives a generation's migration to completion (§4.6, §4.7)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package hydra

import "sync/atomic"

// copySlot migrates a single slot of old to old's successor, per the
// monotone state machine of §4.6. It reports whether THIS call is the
// one that completed the slot's migration (so callers can attribute
// copy_done credit exactly once per slot).
//
// Grounded on copy_slot, original_source/src/lib.rs.
func (m *Map[K, V]) copySlot(old *Table[K, V], idx uint64) bool {
	// Step 1: close empty slots so no new key can ever land here once
	// migration begins -- a late writer must go to the successor instead.
	for {
		k := old.keys[idx].Load()
		if !k.isAbsent() {
			break
		}
		if old.keys[idx].CompareAndSwap(nil, newKeyTomb[K]()) {
			return true
		}
	}

	k := old.keys[idx].Load()
	if k.isTomb() {
		return false
	}

	// Step 2/3: freeze the value. Absent/Tomb freezes straight to
	// TOMBPRIME (nothing to transfer); Present(v) freezes to
	// Prime(Present(v)) so concurrent writers in this generation can
	// detect the freeze and redirect themselves to the successor.
	var frozen *valueCell[V]
	for {
		v := old.values[idx].Load()
		if v.isPrimed() {
			frozen = v
			break
		}
		primed := v.primedForm()
		if old.values[idx].CompareAndSwap(v, primed) {
			if primed.isTombPrime() {
				return true
			}
			frozen = primed
			break
		}
	}

	// Step 4: if the slot was already frozen as TOMBPRIME by a racing
	// copier before we got here, there is nothing left to transfer.
	if frozen.isTombPrime() {
		return false
	}

	// Step 5: transfer the unprimed Present(v) into the successor. The
	// FromCopy policy only installs into a still-Absent successor slot
	// and disables recursive help_copy, so a newer writer racing ahead
	// in the successor always wins over this stale copy.
	next := old.successor()
	unprimed := frozen.unprimed()
	m.putIfMatch(next, k.key, unprimed, matchFromCopy, nil)

	// Step 6: retire the old slot to TOMBPRIME, the terminal state for
	// a migrated slot (§3 invariant 2).
	for {
		v := old.values[idx].Load()
		if v.isTombPrime() {
			return false
		}
		if old.values[idx].CompareAndSwap(v, newTombPrimeValue[V]()) {
			return true
		}
	}
}

// copySlotAndCheck migrates slot idx of old, credits copy_done if this
// call completed it, optionally helps the current table's migration
// along, and returns old's successor -- the table callers should
// restart their operation against. Grounded on copy_slot_and_check,
// original_source/src/lib.rs.
func (m *Map[K, V]) copySlotAndCheck(old *Table[K, V], idx uint64, shouldHelp bool) *Table[K, V] {
	if m.copySlot(old, idx) {
		m.copyCheckAndPromote(old, 1)
	}
	if shouldHelp {
		m.helpCopy()
	}
	return old.successor()
}

// helpCopy advances the migration of the map's current table by one
// chunk, if it has a successor in flight. Unlike copySlotAndCheck,
// which always acts on a specific generation a caller is already
// working against, helpCopy always targets Map.current -- matching
// help_copy, original_source/src/lib.rs.
func (m *Map[K, V]) helpCopy() {
	cur := m.current.Load()
	if cur.successor() != nil {
		m.helpCopyImpl(cur, false)
	}
}

// helpCopyImpl claims and migrates chunks of old's slots until either
// one chunk has been processed (copyAll == false, the common
// incremental-help case) or the whole generation is done (copyAll ==
// true, used when a caller must block until migration finishes).
//
// copyIdx is claimed via CAS up to 2*length; once claims run past that
// point (panic mode), every helper just marches its own local cursor
// over the table without claiming -- duplicate work is possible but
// harmless, since copySlot's own CAS machinery makes each slot's
// migration idempotent. Grounded on help_copy_impl,
// original_source/src/lib.rs.
func (m *Map[K, V]) helpCopyImpl(old *Table[K, V], copyAll bool) {
	length := int64(old.length)
	chunk := length
	if chunk > copyChunkSize {
		chunk = copyChunkSize
	}

	panicMode := false
	var claimed int64

	for atomic.LoadInt64(&old.ctl.copyDone) < length {
		if !panicMode {
			claimed = atomic.LoadInt64(&old.ctl.copyIdx)
			for claimed < length*2 {
				if atomic.CompareAndSwapInt64(&old.ctl.copyIdx, claimed, claimed+chunk) {
					break
				}
				claimed = atomic.LoadInt64(&old.ctl.copyIdx)
			}
			if claimed >= length*2 {
				panicMode = true
				m.logger.Debug("hydra: copy entered panic mode", "length", old.length)
			}
		}

		workDone := 0
		for i := int64(0); i < chunk; i++ {
			slot := uint64(claimed+i) & old.mask
			if m.copySlot(old, slot) {
				workDone++
			}
		}
		if workDone > 0 {
			m.copyCheckAndPromote(old, workDone)
			if m.metrics != nil {
				m.metrics.RecordCopyChunk(workDone)
			}
		}

		claimed += chunk

		if !copyAll && !panicMode {
			return
		}
	}
	m.copyCheckAndPromote(old, 0)
}

// copyCheckAndPromote adds workDone to old's copy_done counter via a
// CAS retry loop and, once the total reaches old's full length, swaps
// the map's current-table pointer over to old's successor -- the one
// place a generation is retired. A workDone of 0 only re-checks whether
// promotion is already due without crediting any new work (used by the
// "did we just finish the whole table" tail call of helpCopyImpl).
// Grounded on copy_check_and_promote, original_source/src/lib.rs.
func (m *Map[K, V]) copyCheckAndPromote(old *Table[K, V], workDone int) {
	length := int64(old.length)

	if workDone == 0 {
		m.maybePromote(old, atomic.LoadInt64(&old.ctl.copyDone), length)
		return
	}

	for {
		done := atomic.LoadInt64(&old.ctl.copyDone)
		newDone := done + int64(workDone)
		if newDone > length {
			panic(m.fatalInvariant("copy_check_and_promote: copy_done exceeded table length",
				"done", done, "work_done", workDone, "length", length))
		}
		if atomic.CompareAndSwapInt64(&old.ctl.copyDone, done, newDone) {
			m.maybePromote(old, newDone, length)
			return
		}
	}
}

// maybePromote advances Map.current from old to old's successor once
// done reaches length, provided current is still pointing at old
// (another helper may have already promoted it).
func (m *Map[K, V]) maybePromote(old *Table[K, V], done, length int64) {
	if done != length {
		return
	}
	if m.current.Load() != old {
		return
	}
	next := old.successor()
	if next == nil {
		return
	}
	if !m.current.CompareAndSwap(old, next) {
		return
	}
	atomic.StoreInt64(&m.lastResize, m.timeProvider.Now())
	m.logger.Debug("hydra: promoted generation", "old_length", old.length, "new_length", next.length)
	if m.metrics != nil {
		m.metrics.RecordPromotion(old.length, next.length)
	}
}
