// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package brf

import (
	"unsafe"

	"github.com/go-sdr/osmosdr/internal/dma"
)

// buffers holds the two conversion scratch buffers: the floating-point
// de-interleave buffer and the fixed-point output buffer. Both are
// sized to the configured per-buffer sample capacity, page-aligned,
// and valid only while the sink runs.
type buffers struct {
	fmem *dma.Buffer
	imem *dma.Buffer

	fbuf []complex64
	ibuf []int16
}

func (b *buffers) alloc(nsamples int) error {
	fmem, err := dma.Alloc(nsamples * int(unsafe.Sizeof(complex64(0))))
	if err != nil {
		return err
	}

	imem, err := dma.Alloc(2 * nsamples * int(unsafe.Sizeof(int16(0))))
	if err != nil {
		_ = fmem.Free()
		return err
	}

	b.fmem = fmem
	b.imem = imem
	b.fbuf = unsafe.Slice((*complex64)(unsafe.Pointer(&fmem.Bytes()[0])), nsamples)
	b.ibuf = unsafe.Slice((*int16)(unsafe.Pointer(&imem.Bytes()[0])), 2*nsamples)

	return nil
}

func (b *buffers) free() error {
	b.fbuf = nil
	b.ibuf = nil

	var (
		errF = b.fmem.Free()
		errI = b.imem.Free()
	)
	b.fmem = nil
	b.imem = nil

	if errF != nil {
		return errF
	}
	return errI
}
