// Package goruntime provides the glue that allows the memory allocation
// primitives of the Go runtime to be backed by the physical memory allocator.
package goruntime

import (
	"unsafe"

	"github.com/relativehysteria/os-skelet/kernel"
	"github.com/relativehysteria/os-skelet/kernel/mem"
	"github.com/relativehysteria/os-skelet/kernel/mem/pmm"
)

var (
	// allocFn and freeFn are mocked by tests and are automatically inlined
	// by the compiler.
	allocFn = pmm.Alloc
	freeFn  = pmm.Free
)

// sysAlloc reserves enough pages to cover size bytes, zeroes them and returns
// a pointer to the start of the reservation. It returns nil if the request
// cannot be satisfied, in which case the runtime treats the allocation as
// having failed.
//
// This function replaces runtime.sysAlloc and must run on the system stack.
//
//go:redirect-from runtime.sysAlloc
//go:nosplit
func sysAlloc(size uintptr, sysStat *uint64) unsafe.Pointer {
	regionSize := pageAlign(size)

	addr := allocFn(regionSize, uintptr(mem.PageSize))
	if addr == 0 {
		return nil
	}

	kernel.Memset(addr, 0, regionSize)
	*sysStat += uint64(regionSize)

	return unsafe.Pointer(addr)
}

// sysReserve reserves address space without allocating any physical memory.
// Physical memory and address space are identity mapped here so the
// reservation is backed immediately.
//
// This function replaces runtime.sysReserve and must run on the system stack.
//
//go:redirect-from runtime.sysReserve
//go:nosplit
func sysReserve(v unsafe.Pointer, size uintptr, reserved *bool) unsafe.Pointer {
	regionSize := pageAlign(size)

	addr := allocFn(regionSize, uintptr(mem.PageSize))
	if addr == 0 {
		return nil
	}

	*reserved = true
	return unsafe.Pointer(addr)
}

// sysFree returns the pages covering [v, v+size) to the physical allocator.
//
// This function replaces runtime.sysFree and must run on the system stack.
//
//go:redirect-from runtime.sysFree
//go:nosplit
func sysFree(v unsafe.Pointer, size uintptr, sysStat *uint64) {
	if v == nil {
		return
	}

	regionSize := pageAlign(size)
	freeFn(uintptr(v), regionSize)
	*sysStat -= uint64(regionSize)
}

// pageAlign rounds size up to the next page boundary. A zero size still
// claims one page; the runtime never asks for zero bytes but the allocator
// below cannot represent an empty block.
func pageAlign(size uintptr) uintptr {
	pageSize := uintptr(mem.PageSize)
	if size == 0 {
		return pageSize
	}

	aligned := (size + pageSize - 1) &^ (pageSize - 1)
	if aligned < size {
		return size
	}
	return aligned
}

// Init is the ordering point after which the hooked runtime allocation
// primitives are expected to work.
func Init() *kernel.Error {
	return nil
}

func init() {
	// Dummy calls so the linker does not treat the redirection targets as
	// dead code and strip them. The physical allocator is not initialized
	// at init time so the calls are no-ops.
	var stat uint64
	var reserved bool
	sysFree(sysAlloc(0, &stat), 0, &stat)
	sysReserve(nil, 0, &reserved)
}
