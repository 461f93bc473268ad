// Package cpu provides thin wrappers over the privileged instructions that
// the boot code needs to touch directly: interrupt masking, halting, port
// I/O, model-specific registers and the trampoline for invoking firmware
// entry points.
package cpu

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// Halt disables interrupts and stops instruction execution. There is no
// supervisor to hand control to this early, so Halt never returns.
func Halt()

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8

// PortWriteDword writes a uint32 value to the requested port.
func PortWriteDword(port uint16, val uint32)

// PortReadDword reads a uint32 value from the requested port.
func PortReadDword(port uint16) uint32

// ReadMSR returns the value stored in the requested model-specific register.
func ReadMSR(msr uint32) uint64

// WriteMSR stores a 64-bit value to the requested model-specific register.
func WriteMSR(msr uint32, val uint64)

// EFICall5 invokes fn, a firmware entry point that follows the Microsoft
// x64 calling convention, passing up to five arguments and returning the
// raw status word. Unused arguments must be zero.
func EFICall5(fn, a1, a2, a3, a4, a5 uintptr) uintptr
