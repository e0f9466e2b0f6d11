// resize.go: per-table resize metadata and the resize decision algorithm
// (§4.4, §4.5 "Resize decision")
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package hydra

import (
	"sync/atomic"
	"time"
)

// resizeController holds the metadata that drives one table generation's
// migration to its successor. Every field is accessed only through the
// atomic package or atomic.Pointer; there is no lock protecting this
// struct (§4.4, §5).
type resizeController[K comparable, V comparable] struct {
	liveSize     int64 // count of Present(v) entries; drives grow policy
	slots        int64 // count of slots whose key left Absent
	copyIdx      int64 // next slot index (mod 2*len) to claim for copying
	copyDone     int64 // number of slots fully migrated, range [0, len]
	resizerCount int64 // election counter: 0->1 transition elects the allocator
	successor    atomic.Pointer[Table[K, V]]
}

// resizeBackoff is the bounded wait a thread performs when it loses the
// resizer election and must wait for the elected allocator to publish
// the successor (§5 "the one place a thread waits"). An implementation
// may substitute a bounded exponential-backoff spin loop; this one does.
const (
	resizeBackoffInitial = 50 * time.Microsecond
	resizeBackoffMax     = 5 * time.Millisecond
)

// resize implements the published resize decision algorithm of §4.5.
// It returns the (possibly freshly allocated) successor table, electing
// exactly one allocator among concurrent callers via resizerCount.
func (m *Map[K, V]) resize(table *Table[K, V]) *Table[K, V] {
	if s := table.successor(); s != nil {
		return s
	}

	oldLen := table.length
	liveSize := atomic.LoadInt64(&table.ctl.liveSize)
	newSize := liveSize

	if liveSize >= int64(oldLen)/4 {
		newSize = int64(oldLen) * 2
		if liveSize >= int64(oldLen)/2 {
			newSize = int64(oldLen) * 4
		}
	}

	now := m.timeProvider.Now()
	lastResize := atomic.LoadInt64(&m.lastResize)
	if newSize <= int64(oldLen) &&
		now-lastResize <= int64(time.Second) &&
		atomic.LoadInt64(&table.ctl.slots) >= atomic.LoadInt64(&table.ctl.liveSize)*2 {
		newSize = int64(oldLen) * 2
	}

	if newSize < int64(oldLen) {
		newSize = int64(oldLen)
	}

	length := minSize
	for int64(length) < newSize {
		length <<= 1
	}

	if s := table.successor(); s != nil {
		return s
	}

	count := atomic.AddInt64(&table.ctl.resizerCount, 1)
	if count == 1 {
		newTbl := newTable[K, V](length)
		if !table.ctl.successor.CompareAndSwap(nil, newTbl) {
			panic(m.fatalInvariant("resize: successor CAS failed for the uniquely elected allocator",
				"old_length", oldLen, "new_length", length))
		}
		m.logger.Debug("hydra: resize elected allocator", "old_length", oldLen, "new_length", length)
		if m.metrics != nil {
			m.metrics.RecordResize(oldLen, length)
		}
		return newTbl
	}

	backoff := resizeBackoffInitial
	for {
		if s := table.successor(); s != nil {
			return s
		}
		time.Sleep(backoff)
		backoff *= 2
		if backoff > resizeBackoffMax {
			backoff = resizeBackoffMax
		}
	}
}

// TableStats is a read-only snapshot of one generation, returned by
// Map.Generations for the out-of-scope external pretty-printer (§6).
type TableStats struct {
	Length   int
	LiveSize int64
	Slots    int64
	CopyDone int64
	HasNext  bool
}

func (t *Table[K, V]) stats() TableStats {
	return TableStats{
		Length:   t.length,
		LiveSize: atomic.LoadInt64(&t.ctl.liveSize),
		Slots:    atomic.LoadInt64(&t.ctl.slots),
		CopyDone: atomic.LoadInt64(&t.ctl.copyDone),
		HasNext:  t.successor() != nil,
	}
}
