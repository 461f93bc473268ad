package kfmt

import (
	"bytes"
	"io"
	"testing"
)

func TestRingBufferWrite(t *testing.T) {
	var rb ringBuffer

	data := make([]byte, ringBufferSize)
	for i := 0; i < len(data); i++ {
		data[i] = byte(i % 256)
	}

	n, err := rb.Write(data)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(data) {
		t.Fatalf("expected to write %d bytes; wrote %d", len(data), n)
	}

	if !bytes.Equal(rb.buffer[:], data) {
		t.Fatal("expected ring buffer contents to match the written data")
	}

	// Writing past the buffer capacity overwrites the oldest data and
	// pushes the read index forward.
	rb.Write([]byte{'x'})
	if rb.wIndex != 1 {
		t.Fatalf("expected write index to wrap to 1; got %d", rb.wIndex)
	}
	if rb.rIndex != 2 {
		t.Fatalf("expected read index to advance to 2; got %d", rb.rIndex)
	}
}

func TestRingBufferRead(t *testing.T) {
	var rb ringBuffer

	if _, err := rb.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("expected to get io.EOF reading an empty buffer; got %v", err)
	}

	rb.Write([]byte("0123456789"))

	buf := make([]byte, 4)
	n, err := rb.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(buf[:n]); got != "0123" {
		t.Fatalf("expected to read %q; got %q", "0123", got)
	}

	// Force the read pointer to chase a wrapped write pointer.
	pad := make([]byte, ringBufferSize-8)
	rb.Write(pad)
	rb.Write([]byte("abcdef"))

	var out bytes.Buffer
	if _, err = io.Copy(&out, &rb); err != nil {
		t.Fatal(err)
	}

	if got := out.Bytes(); !bytes.HasSuffix(got, []byte("abcdef")) {
		t.Fatalf("expected drained data to end with %q; got tail %q", "abcdef", got[len(got)-6:])
	}
}
