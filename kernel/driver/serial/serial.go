// Package serial provides a polled driver for 8250-compatible UARTs. The
// serial port is the only console available to the boot code so the driver
// must work without interrupts and without allocating any memory.
package serial

import (
	"github.com/relativehysteria/os-skelet/kernel/cpu"
	"github.com/relativehysteria/os-skelet/kernel/sync"
)

// I/O base addresses for the standard PC COM ports.
const (
	COM1 = uint16(0x3f8)
	COM2 = uint16(0x2f8)
)

// Register offsets relative to the UART base address. With the DLAB bit set
// in the line control register, offsets 0 and 1 address the two halves of the
// baud rate divisor instead.
const (
	regData         = 0
	regInterruptEn  = 1
	regDivisorLow   = 0
	regDivisorHigh  = 1
	regLineControl  = 3
	regModemControl = 4
	regLineStatus   = 5

	lineControlDLAB = 1 << 7
	lineControl8n1  = 0x03

	// bit 5 of the line status register: transmitter holding register empty
	lineStatusTHREmpty = 1 << 5

	// divisor 4 yields 115200 / 4 = 28800 baud
	baudDivisor = 4
)

var (
	// portReadFn and portWriteFn are mocked by tests and are automatically
	// inlined by the compiler.
	portReadFn  = cpu.PortReadByte
	portWriteFn = cpu.PortWriteByte
)

// Device drives a single 8250-compatible UART in polled mode. A zero Device
// is valid but inert; Init must be called before any writes produce output.
type Device struct {
	lock sync.Spinlock
	port uint16
}

// Init programs the UART at the given base port for 28800 baud, 8 data bits,
// no parity, one stop bit, with all interrupt sources masked. Calling Init on
// an already initialized device is a no-op.
func (d *Device) Init(port uint16) {
	d.lock.Acquire()
	defer d.lock.Release()

	if d.port != 0 {
		return
	}

	// Mask interrupts; this driver polls the line status register instead.
	portWriteFn(port+regInterruptEn, 0x00)

	// Raise DLAB to expose the divisor registers and program the baud rate.
	portWriteFn(port+regLineControl, lineControlDLAB)
	portWriteFn(port+regDivisorLow, baudDivisor&0xff)
	portWriteFn(port+regDivisorHigh, baudDivisor>>8)

	// Clear DLAB and select 8n1 framing.
	portWriteFn(port+regLineControl, lineControl8n1)

	// Assert DTR and RTS.
	portWriteFn(port+regModemControl, 0x03)

	d.port = port
}

// Write writes len(p) bytes from p to the UART. Line feeds are translated to
// a carriage return, line feed pair so the output renders correctly on
// terminal emulators attached to the port. It always returns len(p), nil so
// it can back an io.Writer based console.
func (d *Device) Write(p []byte) (int, error) {
	d.lock.Acquire()
	defer d.lock.Release()

	if d.port == 0 {
		return len(p), nil
	}

	for _, b := range p {
		if b == '\n' {
			d.writeByte('\r')
		}
		d.writeByte(b)
	}

	return len(p), nil
}

// writeByte busy-waits until the transmitter holding register drains and then
// emits b. The caller must hold the device lock.
func (d *Device) writeByte(b byte) {
	for portReadFn(d.port+regLineStatus)&lineStatusTHREmpty == 0 {
	}
	portWriteFn(d.port+regData, b)
}
