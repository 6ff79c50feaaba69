// Package multimap implements the fixed-capacity, open-addressing
// concurrent multimap (C7) that backs hash-join:
// a single lock-free build phase (concurrent inserts via CAS on the key
// slot) followed by a read-only probe phase. Duplicate keys are allowed,
// and the table never resizes or erases.
package multimap

import (
	"sync/atomic"

	"dfkernel/internal/errs"
)

// emptyKey is the sentinel marking an unused slot. Row hashes are 32-bit
// unsigned, so the sentinel is carried as a wider signed value that no
// valid hash can produce.
const emptyKey int64 = -1

type slot struct {
	key   atomic.Int64
	value int32
}

// Table is a fixed-size open-addressing hash table mapping a uint32 row
// hash to one or more int32 row indices (the payload). Capacity is set
// once at construction; callers size it for the target load factor.
type Table struct {
	slots []slot
	mask  uint64 // capacity is always a power of two, so (hash & mask) replaces %
}

// New allocates a table sized to hold at least capacityHint keys at
// roughly a 50% load factor, per the contract's sizing rule of
// ceil(build_side_size / load_factor).
func New(capacityHint int) *Table {
	if capacityHint < 1 {
		capacityHint = 1
	}
	size := nextPow2(capacityHint * 2)
	t := &Table{slots: make([]slot, size), mask: uint64(size - 1)}
	for i := range t.slots {
		t.slots[i].key.Store(emptyKey)
	}
	return t
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Capacity returns the number of slots in the table.
func (t *Table) Capacity() int { return len(t.slots) }

// Insert places (key, value) into the table via linear probing with a
// compare-and-swap on the key slot: a probe that finds an empty slot
// attempts to claim it, and only a losing CAS continues probing (the
// winner falls through to an unconditional value write, since the value
// slot is only ever observed after its key has been published via the
// successful CAS, so a plain store is safe). Safe for concurrent callers.
func (t *Table) Insert(key uint32, value int32) error {
	k := int64(key)
	start := uint64(key) & t.mask
	for probe := uint64(0); probe < uint64(len(t.slots)); probe++ {
		idx := (start + probe) & t.mask
		s := &t.slots[idx]
		if s.key.Load() == emptyKey && s.key.CompareAndSwap(emptyKey, k) {
			s.value = value
			return nil
		}
	}
	return errs.New(errs.CapacityExceeded, "multimap insert: table of capacity %d is full", len(t.slots))
}

// Iterator walks every slot whose key equals the query hash, stopping at
// the first unused slot encountered (per the open-addressing probe
// contract). Valid only after every Insert has completed (probe is read-only).
type Iterator struct {
	t     *Table
	key   int64
	probe uint64
	start uint64
	done  bool
}

// Find returns an iterator over every value inserted under key.
func (t *Table) Find(key uint32) *Iterator {
	return &Iterator{t: t, key: int64(key), start: uint64(key) & t.mask}
}

// Next reports whether another matching value is available and, if so,
// returns it.
func (it *Iterator) Next() (int32, bool) {
	if it.done {
		return 0, false
	}
	for it.probe < uint64(len(it.t.slots)) {
		idx := (it.start + it.probe) & it.t.mask
		s := &it.t.slots[idx]
		it.probe++
		k := s.key.Load()
		if k == emptyKey {
			it.done = true
			return 0, false
		}
		if k == it.key {
			return s.value, true
		}
	}
	it.done = true
	return 0, false
}

// HasAny reports whether key has at least one matching value, without
// the caller having to walk an iterator.
func (t *Table) HasAny(key uint32) bool {
	it := t.Find(key)
	_, ok := it.Next()
	return ok
}
