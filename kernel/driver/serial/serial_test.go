package serial

import (
	"bytes"
	"testing"
)

// portLog records the (port, value) pairs written through the mocked port
// write function and answers reads of the line status register with a
// permanently drained transmitter.
type portLog struct {
	writes []struct {
		port uint16
		val  uint8
	}
}

func (pl *portLog) install() {
	portWriteFn = func(port uint16, val uint8) {
		pl.writes = append(pl.writes, struct {
			port uint16
			val  uint8
		}{port, val})
	}
	portReadFn = func(port uint16) uint8 {
		if port == COM1+regLineStatus || port == COM2+regLineStatus {
			return lineStatusTHREmpty
		}
		return 0
	}
}

func restorePortFns() {
	portReadFn = func(uint16) uint8 { return 0 }
	portWriteFn = func(uint16, uint8) {}
}

func TestDeviceInit(t *testing.T) {
	defer restorePortFns()

	var pl portLog
	pl.install()

	var dev Device
	dev.Init(COM1)

	expWrites := []struct {
		port uint16
		val  uint8
	}{
		{COM1 + regInterruptEn, 0x00},
		{COM1 + regLineControl, lineControlDLAB},
		{COM1 + regDivisorLow, baudDivisor & 0xff},
		{COM1 + regDivisorHigh, baudDivisor >> 8},
		{COM1 + regLineControl, lineControl8n1},
		{COM1 + regModemControl, 0x03},
	}

	if len(pl.writes) != len(expWrites) {
		t.Fatalf("expected %d port writes; got %d", len(expWrites), len(pl.writes))
	}
	for i, exp := range expWrites {
		if pl.writes[i] != exp {
			t.Errorf("[write %d] expected port 0x%x <- 0x%x; got port 0x%x <- 0x%x",
				i, exp.port, exp.val, pl.writes[i].port, pl.writes[i].val)
		}
	}

	// A second Init must not touch the hardware again.
	pl.writes = pl.writes[:0]
	dev.Init(COM2)
	if len(pl.writes) != 0 {
		t.Fatalf("expected re-initialization to be a no-op; got %d port writes", len(pl.writes))
	}
}

func TestDeviceWrite(t *testing.T) {
	defer restorePortFns()

	var pl portLog
	pl.install()

	var dev Device
	dev.Init(COM1)
	pl.writes = pl.writes[:0]

	data := []byte("hi\nthere")
	n, err := dev.Write(data)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(data) {
		t.Fatalf("expected Write to report %d bytes; got %d", len(data), n)
	}

	var out bytes.Buffer
	for _, w := range pl.writes {
		if w.port != COM1+regData {
			t.Fatalf("expected all writes to target the data register; got port 0x%x", w.port)
		}
		out.WriteByte(w.val)
	}

	if exp, got := "hi\r\nthere", out.String(); got != exp {
		t.Fatalf("expected the device to emit %q; got %q", exp, got)
	}
}

func TestDeviceWriteBeforeInit(t *testing.T) {
	defer restorePortFns()

	var pl portLog
	pl.install()

	var dev Device
	n, err := dev.Write([]byte("dropped"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Fatalf("expected Write to report 7 bytes; got %d", n)
	}
	if len(pl.writes) != 0 {
		t.Fatalf("expected no port writes before Init; got %d", len(pl.writes))
	}
}
