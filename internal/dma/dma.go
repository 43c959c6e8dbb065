// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dma provides page-aligned scratch buffers suitable for
// hand-off to hardware streaming interfaces.
package dma // import "github.com/go-sdr/osmosdr/internal/dma"

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

// Buffer is a page-aligned chunk of memory backed by an anonymous mapping.
type Buffer struct {
	data []byte
	size int
}

// Alloc allocates a page-aligned buffer of at least size bytes.
func Alloc(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("dma: invalid buffer size %d", size)
	}

	page := unix.Getpagesize()
	n := (size + page - 1) / page * page

	data, err := unix.Mmap(
		-1, 0, n,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON,
	)
	if err != nil {
		return nil, fmt.Errorf("dma: could not mmap %d bytes: %w", n, err)
	}

	buf := &Buffer{data: data, size: size}
	runtime.SetFinalizer(buf, (*Buffer).Free)
	return buf, nil
}

// Bytes returns the buffer contents, aligned to the start of a page.
func (b *Buffer) Bytes() []byte {
	if b == nil || b.data == nil {
		return nil
	}
	return b.data[:b.size]
}

// Len returns the usable size of the buffer.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return b.size
}

// Free releases the buffer back to the OS.
func (b *Buffer) Free() error {
	if b == nil {
		return os.ErrInvalid
	}

	if b.data == nil {
		return nil
	}
	data := b.data
	b.data = nil
	b.size = 0
	runtime.SetFinalizer(b, nil)

	return unix.Munmap(data)
}
