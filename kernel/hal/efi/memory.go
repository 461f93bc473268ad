package efi

import (
	"unsafe"

	"github.com/relativehysteria/os-skelet/kernel"
	"github.com/relativehysteria/os-skelet/kernel/mem/rangeset"
)

// MemoryType classifies a region of the firmware memory map.
type MemoryType uint32

const (
	MemReserved MemoryType = iota
	MemLoaderCode
	MemLoaderData
	MemBootServicesCode
	MemBootServicesData
	MemRuntimeServicesCode
	MemRuntimeServicesData
	MemConventional
	MemUnusable
	MemACPIReclaim
	MemACPINVS
	MemMappedIO
	MemMappedIOPortSpace
	MemPalCode
	MemPersistent
)

// UsableAfterExit returns true if memory of this type is free for the OS to
// use once ExitBootServices has succeeded. Loader regions are deliberately
// excluded: they back the image and stack of this very program.
func (mt MemoryType) UsableAfterExit() bool {
	switch mt {
	case MemBootServicesCode, MemBootServicesData, MemConventional, MemPersistent:
		return true
	default:
		return false
	}
}

// String returns the UEFI name of the memory type.
func (mt MemoryType) String() string {
	switch mt {
	case MemReserved:
		return "EfiReservedMemoryType"
	case MemLoaderCode:
		return "EfiLoaderCode"
	case MemLoaderData:
		return "EfiLoaderData"
	case MemBootServicesCode:
		return "EfiBootServicesCode"
	case MemBootServicesData:
		return "EfiBootServicesData"
	case MemRuntimeServicesCode:
		return "EfiRuntimeServicesCode"
	case MemRuntimeServicesData:
		return "EfiRuntimeServicesData"
	case MemConventional:
		return "EfiConventionalMemory"
	case MemUnusable:
		return "EfiUnusableMemory"
	case MemACPIReclaim:
		return "EfiACPIReclaimMemory"
	case MemACPINVS:
		return "EfiACPIMemoryNVS"
	case MemMappedIO:
		return "EfiMemoryMappedIO"
	case MemMappedIOPortSpace:
		return "EfiMemoryMappedIOPortSpace"
	case MemPalCode:
		return "EfiPalCode"
	case MemPersistent:
		return "EfiPersistentMemory"
	default:
		return "EfiUnknownMemoryType"
	}
}

// MemoryDescriptor mirrors the layout of EFI_MEMORY_DESCRIPTOR.
type MemoryDescriptor struct {
	Type MemoryType
	_    uint32

	PhysAddr  uint64
	VirtAddr  uint64
	PageCount uint64
	Attribute uint64
}

const (
	// maxMemoryDescriptors bounds the size of the static buffer that
	// receives the firmware memory map.
	maxMemoryDescriptors = 2048

	// descriptorPageSize is the page unit used by PageCount, fixed at 4KiB
	// by the UEFI specification regardless of the CPU page size.
	descriptorPageSize = 4096
)

// memoryMapBuf receives the raw descriptor data produced by GetMemoryMap. It
// is static so querying the memory map needs no allocator.
var memoryMapBuf [maxMemoryDescriptors * unsafe.Sizeof(MemoryDescriptor{})]byte

var (
	errMapTooLarge    = &kernel.Error{Module: "efi", Message: "firmware memory map exceeds the descriptor buffer"}
	errMapQueryFailed = &kernel.Error{Module: "efi", Message: "GetMemoryMap failed"}
	errExitFailed     = &kernel.Error{Module: "efi", Message: "ExitBootServices failed"}
	errMapOverflow    = &kernel.Error{Module: "efi", Message: "memory descriptor extends past the end of the address space"}
)

// DetectFreeMemory terminates boot services and fills dst with the physical
// memory ranges the firmware hands over as free. On success the firmware no
// longer owns the machine and every range in dst is available for allocation.
//
// The zero page is withheld from dst even when the firmware reports it as
// free so the address 0 can keep meaning "allocation failed".
func DetectFreeMemory(handle Handle, svc Services, dst *rangeset.RangeSet) *kernel.Error {
	info, st := svc.GetMemoryMap(memoryMapBuf[:])
	switch st {
	case StatusSuccess:
	case ErrBufferTooSmall:
		return errMapTooLarge
	default:
		return errMapQueryFailed
	}

	// The snapshot is current; hand-off must use its key before any other
	// service call invalidates it.
	if st = svc.ExitBootServices(handle, info.MapKey); st != StatusSuccess {
		return errExitFailed
	}

	// Iterate using the firmware's stride: firmware revisions may append
	// fields to the descriptor.
	stride := info.DescriptorSize
	if stride < unsafe.Sizeof(MemoryDescriptor{}) {
		stride = unsafe.Sizeof(MemoryDescriptor{})
	}

	dst.Reset()
	for off := uintptr(0); off+unsafe.Sizeof(MemoryDescriptor{}) <= info.Size; off += stride {
		desc := (*MemoryDescriptor)(unsafe.Pointer(&memoryMapBuf[off]))
		if !desc.Type.UsableAfterExit() || desc.PageCount == 0 {
			continue
		}

		byteCount := uintptr(desc.PageCount) * descriptorPageSize
		if byteCount/descriptorPageSize != uintptr(desc.PageCount) {
			return errMapOverflow
		}

		start := uintptr(desc.PhysAddr)
		end := start + byteCount - 1
		if end < start {
			return errMapOverflow
		}

		if err := dst.Insert(rangeset.Range{Start: start, End: end}); err != nil {
			return err
		}
	}

	return dst.Remove(rangeset.Range{Start: 0, End: 0})
}
