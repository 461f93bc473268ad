package goruntime

import (
	"testing"
	"unsafe"

	"github.com/relativehysteria/os-skelet/kernel/mem"
	"github.com/relativehysteria/os-skelet/kernel/mem/pmm"
)

func TestSysAlloc(t *testing.T) {
	defer func() {
		allocFn = pmm.Alloc
		freeFn = pmm.Free
	}()

	// Serve allocations out of a static buffer so the returned pointers
	// are valid host memory.
	backing := make([]byte, 3*uintptr(mem.PageSize))
	for i := range backing {
		backing[i] = 0xff
	}

	var gotSize, gotAlign uintptr
	allocFn = func(size, align uintptr) uintptr {
		gotSize, gotAlign = size, align
		return uintptr(unsafe.Pointer(&backing[0]))
	}

	var stat uint64
	ptr := sysAlloc(uintptr(mem.PageSize)+1, &stat)
	if ptr == nil {
		t.Fatal("expected sysAlloc to succeed")
	}

	if exp := 2 * uintptr(mem.PageSize); gotSize != exp {
		t.Fatalf("expected the request to be rounded up to %d bytes; got %d", exp, gotSize)
	}
	if gotAlign != uintptr(mem.PageSize) {
		t.Fatalf("expected page alignment; got %d", gotAlign)
	}
	if stat != uint64(2*mem.PageSize) {
		t.Fatalf("expected sysStat to grow by the region size; got %d", stat)
	}

	// The handed out region must be zeroed.
	for i := uintptr(0); i < 2*uintptr(mem.PageSize); i++ {
		if backing[i] != 0 {
			t.Fatalf("expected byte %d of the region to be zeroed; got 0x%x", i, backing[i])
		}
	}

	// Exhausted allocator
	allocFn = func(size, align uintptr) uintptr { return 0 }
	if ptr = sysAlloc(uintptr(mem.PageSize), &stat); ptr != nil {
		t.Fatal("expected sysAlloc to return nil when no memory is available")
	}
}

func TestSysReserve(t *testing.T) {
	defer func() { allocFn = pmm.Alloc }()

	allocFn = func(size, align uintptr) uintptr { return 0x100000 }

	var reserved bool
	ptr := sysReserve(nil, uintptr(mem.PageSize), &reserved)
	if uintptr(ptr) != 0x100000 {
		t.Fatalf("expected to get the allocated address back; got %v", ptr)
	}
	if !reserved {
		t.Fatal("expected the reserved flag to be set")
	}

	allocFn = func(size, align uintptr) uintptr { return 0 }
	reserved = false
	if ptr = sysReserve(nil, uintptr(mem.PageSize), &reserved); ptr != nil || reserved {
		t.Fatal("expected a failed reservation to return nil and leave the flag clear")
	}
}

func TestSysFree(t *testing.T) {
	defer func() { freeFn = pmm.Free }()

	var freedAddr, freedSize uintptr
	freeFn = func(addr, size uintptr) {
		freedAddr, freedSize = addr, size
	}

	stat := uint64(2 * mem.PageSize)
	sysFree(unsafe.Pointer(uintptr(0x200000)), uintptr(mem.PageSize)+1, &stat)

	if freedAddr != 0x200000 {
		t.Fatalf("expected to free address 0x200000; got 0x%x", freedAddr)
	}
	if exp := 2 * uintptr(mem.PageSize); freedSize != exp {
		t.Fatalf("expected the freed size to be rounded up to %d; got %d", exp, freedSize)
	}
	if stat != 0 {
		t.Fatalf("expected sysStat to shrink by the region size; got %d", stat)
	}

	// Freeing a nil pointer is a no-op.
	freedAddr, freedSize = 0, 0
	sysFree(nil, uintptr(mem.PageSize), &stat)
	if freedAddr != 0 || freedSize != 0 {
		t.Fatal("expected freeing a nil pointer to be a no-op")
	}
}

func TestPageAlign(t *testing.T) {
	pageSize := uintptr(mem.PageSize)

	specs := []struct {
		size uintptr
		exp  uintptr
	}{
		{0, pageSize},
		{1, pageSize},
		{pageSize, pageSize},
		{pageSize + 1, 2 * pageSize},
		{3*pageSize - 1, 3 * pageSize},
	}

	for specIndex, spec := range specs {
		if got := pageAlign(spec.size); got != spec.exp {
			t.Errorf("[spec %d] expected pageAlign(%d) to return %d; got %d", specIndex, spec.size, spec.exp, got)
		}
	}
}
