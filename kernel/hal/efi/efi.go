// Package efi provides the minimal subset of the UEFI boot services interface
// that the boot code needs: locating the system table handed over by the
// firmware, querying the memory map and exiting boot services.
package efi

import (
	"unsafe"

	"github.com/relativehysteria/os-skelet/kernel"
	"github.com/relativehysteria/os-skelet/kernel/cpu"
)

// Handle is an opaque reference to a firmware-managed object. The firmware
// passes the handle of the loaded image to the entry point.
type Handle uintptr

// systemTableSignature is the value of the Signature header field of a valid
// EFI system table ("IBI SYST" read as a little-endian 64-bit integer).
const systemTableSignature = 0x5453595320494249

var (
	// efiCallFn invokes a firmware entry point using the calling convention
	// the firmware expects. It is mocked by tests.
	efiCallFn = cpu.EFICall5

	errBadSystemTable = &kernel.Error{Module: "efi", Message: "system table pointer does not carry the EFI signature"}
)

// TableHeader precedes all EFI tables.
type TableHeader struct {
	Signature  uint64
	Revision   uint32
	HeaderSize uint32
	CRC32      uint32
	_          uint32
}

// SystemTable mirrors the layout of EFI_SYSTEM_TABLE. Fields that the boot
// code never touches are folded into padding; only their slots in the layout
// are preserved so the bootServices pointer lands at the right offset.
type SystemTable struct {
	Header           TableHeader
	FirmwareVendor   uintptr
	FirmwareRevision uint32
	_                uint32

	// consoleInHandle, conIn, consoleOutHandle, conOut, standardErrorHandle,
	// stdErr and runtimeServices
	_ [7]uintptr

	bootServices *bootServicesTable

	configEntryCount uintptr
	configTable      uintptr
}

// SystemTableFromPtr interprets ptr as a pointer to the firmware system table
// and validates its signature.
func SystemTableFromPtr(ptr uintptr) (*SystemTable, *kernel.Error) {
	table := (*SystemTable)(unsafe.Pointer(ptr))
	if table == nil || table.Header.Signature != systemTableSignature {
		return nil, errBadSystemTable
	}
	return table, nil
}

// BootServices returns the boot services interface published by the system
// table. The returned value becomes invalid once ExitBootServices succeeds.
func (t *SystemTable) BootServices() Services {
	activeCallTable.services = t.bootServices
	return &activeCallTable
}

// bootServicesTable mirrors the layout of EFI_BOOT_SERVICES_TABLE up to the
// last entry point the boot code invokes. Entries that are never called are
// folded into padding.
type bootServicesTable struct {
	Header TableHeader

	// raiseTPL, restoreTPL, allocatePages and freePages
	_ [4]uintptr

	getMemoryMap uintptr

	// allocatePool through unloadImage
	_ [21]uintptr

	exitBootServices uintptr
}

// MemoryMapInfo describes the memory map snapshot produced by GetMemoryMap.
type MemoryMapInfo struct {
	// Size is the number of bytes of descriptor data copied into the
	// caller's buffer, or the required buffer size when the call fails
	// with ErrBufferTooSmall.
	Size uintptr

	// MapKey identifies this snapshot of the memory map. ExitBootServices
	// only succeeds when given the key of the latest snapshot.
	MapKey uintptr

	// DescriptorSize is the firmware's stride between successive
	// descriptors in the buffer. It can exceed the size of
	// MemoryDescriptor; consumers must iterate using this stride.
	DescriptorSize uintptr

	// DescriptorVersion is the layout version of the descriptors.
	DescriptorVersion uint32
}

// Services is the subset of the UEFI boot services used during hand-off.
type Services interface {
	// GetMemoryMap copies the firmware's physical memory map into buf.
	GetMemoryMap(buf []byte) (MemoryMapInfo, Status)

	// ExitBootServices terminates the firmware's ownership of the machine.
	// After it succeeds the firmware no longer owns any memory described
	// as reclaimable in the memory map and no further boot service can be
	// called.
	ExitBootServices(handle Handle, mapKey uintptr) Status
}

// activeCallTable is a package-level singleton so that acquiring the Services
// interface does not allocate. Only one system table exists per boot.
var activeCallTable callTable

// callTable implements Services by invoking the firmware entry points from
// the boot services table.
type callTable struct {
	services *bootServicesTable
}

func (ct *callTable) GetMemoryMap(buf []byte) (MemoryMapInfo, Status) {
	info := MemoryMapInfo{Size: uintptr(len(buf))}

	var bufPtr uintptr
	if len(buf) != 0 {
		bufPtr = uintptr(unsafe.Pointer(&buf[0]))
	}

	st := Status(efiCallFn(
		ct.services.getMemoryMap,
		uintptr(unsafe.Pointer(&info.Size)),
		bufPtr,
		uintptr(unsafe.Pointer(&info.MapKey)),
		uintptr(unsafe.Pointer(&info.DescriptorSize)),
		uintptr(unsafe.Pointer(&info.DescriptorVersion)),
	))

	return info, st
}

func (ct *callTable) ExitBootServices(handle Handle, mapKey uintptr) Status {
	return Status(efiCallFn(ct.services.exitBootServices, uintptr(handle), mapKey, 0, 0, 0))
}
