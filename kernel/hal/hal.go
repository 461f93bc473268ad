// Package hal wires concrete hardware drivers to the interfaces the rest of
// the boot code consumes.
package hal

import (
	"github.com/relativehysteria/os-skelet/kernel/driver/serial"
	"github.com/relativehysteria/os-skelet/kernel/kfmt"
)

// serialConsole is the UART behind COM1. Firmware on every supported target
// exposes it, which makes it the earliest console available.
var serialConsole = &serial.Device{}

// InitConsole brings up the serial console and redirects the formatted output
// helpers to it. Any output buffered before this point is flushed to the
// device.
func InitConsole() {
	serialConsole.Init(serial.COM1)
	kfmt.SetOutputSink(serialConsole)
}
