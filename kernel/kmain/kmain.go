// Package kmain contains the machine-independent entry point that takes over
// once the assembly stub hands control to Go code.
package kmain

import (
	"github.com/relativehysteria/os-skelet/kernel"
	"github.com/relativehysteria/os-skelet/kernel/goruntime"
	"github.com/relativehysteria/os-skelet/kernel/hal"
	"github.com/relativehysteria/os-skelet/kernel/hal/efi"
	"github.com/relativehysteria/os-skelet/kernel/kfmt"
	"github.com/relativehysteria/os-skelet/kernel/mem/pmm"
	"github.com/relativehysteria/os-skelet/kernel/mem/rangeset"
)

var errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

// bootMemory receives the free memory ranges handed over by the firmware. It
// lives in package scope rather than on Kmain's stack: the boot stack is a
// single page and a RangeSet does not fit on it comfortably.
var bootMemory rangeset.RangeSet

// Kmain is the only Go symbol the boot stub knows about. The stub calls it
// with the firmware-provided image handle and system table pointer after
// setting up a minimal environment (flat GDT, zeroed .bss, boot stack).
//
// Kmain is not expected to return. If it does, or if any bring-up step fails,
// the machine halts.
//
//go:noinline
func Kmain(imageHandle, sysTablePtr uintptr) {
	hal.InitConsole()
	kfmt.Printf("starting up (image handle: 0x%x, system table: 0x%x)\n", imageHandle, sysTablePtr)

	sysTable, err := efi.SystemTableFromPtr(sysTablePtr)
	if err != nil {
		kfmt.Panic(err)
	}

	kfmt.Printf("firmware revision: %d.%d\n",
		sysTable.FirmwareRevision>>16, sysTable.FirmwareRevision&0xffff)

	// Past this point the firmware no longer owns the machine; every
	// range in bootMemory is ours.
	if err = efi.DetectFreeMemory(efi.Handle(imageHandle), sysTable.BootServices(), &bootMemory); err != nil {
		kfmt.Panic(err)
	}
	printMemoryMap()

	pmm.Init(&bootMemory)

	if err = goruntime.Init(); err != nil {
		kfmt.Panic(err)
	}

	kfmt.Panic(errKmainReturned)
}

// printMemoryMap logs the free physical memory ranges received from the
// firmware.
func printMemoryMap() {
	kfmt.Printf("free physical memory:\n")
	bootMemory.Visit(func(r rangeset.Range) {
		kfmt.Printf("\t[0x%16x - 0x%16x]\n", r.Start, r.End)
	})
	kfmt.Printf("%dKb free in %d ranges\n", uint64(bootMemory.TotalBytes())/1024, bootMemory.Len())
}
