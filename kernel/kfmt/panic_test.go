package kfmt

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/relativehysteria/os-skelet/kernel"
)

func TestPanic(t *testing.T) {
	defer func() {
		cpuHaltFn = func() {}
		SetOutputSink(nil)
	}()

	var cpuHaltCalled bool
	cpuHaltFn = func() { cpuHaltCalled = true }

	t.Run("with *kernel.Error", func(t *testing.T) {
		cpuHaltCalled = false
		var buf bytes.Buffer
		setSink(&buf)

		err := &kernel.Error{Module: "test", Message: "panic test"}
		Panic(err)

		exp := "\n-----------------------------------\n[test] unrecoverable error: panic test\n*** boot panic: system halted ***\n-----------------------------------\n"
		if got := buf.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt to be called by Panic")
		}
	})

	t.Run("with error", func(t *testing.T) {
		cpuHaltCalled = false
		var buf bytes.Buffer
		setSink(&buf)

		Panic(errors.New("go error"))

		exp := "\n-----------------------------------\n[rt] unrecoverable error: go error\n*** boot panic: system halted ***\n-----------------------------------\n"
		if got := buf.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt to be called by Panic")
		}
	})

	t.Run("with string", func(t *testing.T) {
		cpuHaltCalled = false
		var buf bytes.Buffer
		setSink(&buf)

		Panic("string panic")

		exp := "\n-----------------------------------\n[rt] unrecoverable error: string panic\n*** boot panic: system halted ***\n-----------------------------------\n"
		if got := buf.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt to be called by Panic")
		}
	})

	t.Run("without error", func(t *testing.T) {
		cpuHaltCalled = false
		var buf bytes.Buffer
		setSink(&buf)

		Panic(nil)

		exp := "\n-----------------------------------\n*** boot panic: system halted ***\n-----------------------------------\n"
		if got := buf.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt to be called by Panic")
		}
	})
}

// setSink swaps the output sink without draining the early print buffer into
// the new writer, so each sub-test starts with a clean capture.
func setSink(w io.Writer) {
	var drain [ringBufferSize]byte
	earlyPrintBuffer.Read(drain[:])
	outputSink = w
}
