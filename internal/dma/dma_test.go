// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dma

import (
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"
)

func TestAlloc(t *testing.T) {
	for _, size := range []int{1, 16, 4096, 4097, 1 << 20} {
		buf, err := Alloc(size)
		if err != nil {
			t.Fatalf("could not alloc %d bytes: %+v", size, err)
		}

		if got, want := buf.Len(), size; got != want {
			t.Fatalf("invalid buffer size: got=%d, want=%d", got, want)
		}
		if got, want := len(buf.Bytes()), size; got != want {
			t.Fatalf("invalid bytes size: got=%d, want=%d", got, want)
		}

		page := uintptr(unix.Getpagesize())
		if addr := uintptr(unsafe.Pointer(&buf.Bytes()[0])); addr%page != 0 {
			t.Fatalf("buffer not page-aligned: addr=0x%x, page=%d", addr, page)
		}

		err = buf.Free()
		if err != nil {
			t.Fatalf("could not free buffer: %+v", err)
		}
		if got := buf.Bytes(); got != nil {
			t.Fatalf("buffer still accessible after free")
		}

		err = buf.Free()
		if err != nil {
			t.Fatalf("double-free should be benign: %+v", err)
		}
	}
}

func TestAllocInvalid(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := Alloc(size)
		if err == nil {
			t.Fatalf("expected an error for size=%d", size)
		}
	}
}
