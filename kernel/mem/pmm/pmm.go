// Package pmm exposes the global physical memory allocator used by the boot
// code and the Go runtime hooks. It wraps a rangeset of free physical
// addresses with a spinlock so allocations can safely race once the runtime
// spins up additional goroutines.
package pmm

import (
	"github.com/relativehysteria/os-skelet/kernel"
	"github.com/relativehysteria/os-skelet/kernel/kfmt"
	"github.com/relativehysteria/os-skelet/kernel/mem/rangeset"
	"github.com/relativehysteria/os-skelet/kernel/sync"
)

var (
	// panicFn is mocked by tests and is automatically inlined by the compiler.
	panicFn = kfmt.Panic

	errUseBeforeInit   = &kernel.Error{Module: "pmm", Message: "free memory tracker used before Init"}
	errFreeRangeWrap   = &kernel.Error{Module: "pmm", Message: "freed block wraps past the end of the address space"}
	errBookkeepingFull = &kernel.Error{Module: "pmm", Message: "free memory tracker ran out of range entries"}

	// freeMemory tracks the physical address ranges that are available for
	// allocation. It is populated exactly once by Init.
	freeMemory struct {
		lock        sync.Spinlock
		ranges      rangeset.RangeSet
		initialized bool
	}
)

// Init seeds the allocator with the free memory ranges tracked by set. The
// ranges are copied so the caller's set can live in temporary storage. Only
// the first call has any effect.
func Init(set *rangeset.RangeSet) {
	freeMemory.lock.Acquire()
	defer freeMemory.lock.Release()

	if freeMemory.initialized {
		return
	}

	set.Visit(func(r rangeset.Range) {
		// Cannot fail: set respects the same entry limit.
		freeMemory.ranges.Insert(r)
	})
	freeMemory.initialized = true
}

// Alloc reserves a physical memory block of the given size and alignment and
// returns its address. Blocks are carved from the lowest suitable free range.
// Alloc returns 0 if the allocator has not been initialized yet or no free
// range can satisfy the request; malformed size or alignment values trigger
// a panic as they always indicate a bug in the caller.
func Alloc(size, align uintptr) uintptr {
	freeMemory.lock.Acquire()
	defer freeMemory.lock.Release()

	if !freeMemory.initialized {
		return 0
	}

	addr, found, err := freeMemory.ranges.Allocate(size, align)
	if err != nil {
		panicFn(err)
	}
	if !found {
		return 0
	}

	return addr
}

// Free returns the size-byte block at addr to the allocator. Freeing memory
// the allocator never handed out corrupts the free list, so failures here
// are not recoverable: a degenerate block, an uninitialized allocator or
// exhausted range bookkeeping all trigger a panic.
func Free(addr, size uintptr) {
	freeMemory.lock.Acquire()
	defer freeMemory.lock.Release()

	if !freeMemory.initialized {
		panicFn(errUseBeforeInit)
		return
	}

	if size == 0 {
		panicFn(errFreeRangeWrap)
		return
	}

	end := addr + size - 1
	if end < addr {
		panicFn(errFreeRangeWrap)
		return
	}

	if err := freeMemory.ranges.Insert(rangeset.Range{Start: addr, End: end}); err != nil {
		panicFn(errBookkeepingFull)
	}
}

// TotalFreeBytes returns the number of bytes currently available for
// allocation.
func TotalFreeBytes() uintptr {
	freeMemory.lock.Acquire()
	defer freeMemory.lock.Release()

	return freeMemory.ranges.TotalBytes()
}
