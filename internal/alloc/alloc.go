// Package alloc holds the process-wide "current allocator" handle: every
// kernel that produces output buffers reserves against it before calling
// into Go's own allocator, so installing a different Allocator (a budget
// cap, an arena, a pool) changes every kernel's output path without any
// kernel code knowing about it. This mirrors the global-mutable-state
// idiom the rest of the package uses for process-wide atomics: a
// thread-safe cell set once at startup and read on every hot path.
package alloc

import (
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"dfkernel/internal/errs"
)

// Allocator accounts for buffer allocations made on its behalf. Reserve is
// called with the exact byte count a kernel is about to allocate; an
// Allocator that wants to refuse the request (over budget, device out of
// memory) returns an AllocationFailure instead of letting the caller
// proceed. Reserve does not itself produce memory — Go's runtime allocator
// still does that via make — it is purely an admission-control hook.
type Allocator interface {
	Reserve(nbytes int64) error
}

type passthrough struct{}

func (passthrough) Reserve(nbytes int64) error { return nil }

var current atomic.Pointer[Allocator]

func init() {
	var a Allocator = passthrough{}
	current.Store(&a)
}

// Current returns the process-wide allocator in effect.
func Current() Allocator { return *current.Load() }

// SetDefault installs a as the process-wide allocator. Safe to call while
// other goroutines are calling Current or Reserve.
func SetDefault(a Allocator) { current.Store(&a) }

// Budgeted refuses any Reserve that would push cumulative reservations past
// Limit bytes, for tests and embedders that want to bound kernel memory use.
type Budgeted struct {
	Limit int64
	used  atomic.Int64
}

func (b *Budgeted) Reserve(nbytes int64) error {
	if b.used.Add(nbytes) > b.Limit {
		b.used.Add(-nbytes)
		return errs.Allocation(nbytes, "allocator budget of %s exceeded", humanize.Bytes(uint64(b.Limit)))
	}
	return nil
}
