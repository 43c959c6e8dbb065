// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package brf

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"
)

// CaptureTX is a TX backend that records transmitted samples to an
// io.Writer as raw interleaved int16 little-endian I/Q, the same wire
// format the hardware consumes. It is used by stand-alone runs and as
// the input of offline analysis tools.
type CaptureTX struct {
	mu  sync.Mutex
	w   io.Writer
	cfg StreamConfig

	enabled map[Channel]bool

	nsamples uint64 // samples written so far
	nbursts  uint64 // bursts started so far
}

var _ TX = (*CaptureTX)(nil)

// NewCaptureTX creates a capture backend writing to w.
func NewCaptureTX(w io.Writer) *CaptureTX {
	return &CaptureTX{
		w:       w,
		enabled: make(map[Channel]bool, MaxChannels),
	}
}

func (tx *CaptureTX) ConfigureStream(cfg StreamConfig) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.cfg = cfg
	return nil
}

func (tx *CaptureTX) EnableChannel(ch Channel, on bool) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.enabled[ch] = on
	return nil
}

func (tx *CaptureTX) Transmit(samples []int16, n int, meta *Metadata, timeout time.Duration) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if 2*n > len(samples) {
		return fmt.Errorf("brf: short sample buffer (got=%d, want=%d)", len(samples), 2*n)
	}

	err := binary.Write(tx.w, binary.LittleEndian, samples[:2*n])
	if err != nil {
		return fmt.Errorf("brf: could not record %d samples: %w", n, err)
	}

	tx.nsamples += uint64(n)
	if meta != nil && meta.Flags&FlagBurstStart != 0 {
		tx.nbursts++
	}
	return nil
}

func (tx *CaptureTX) SetBiasTee(ch Channel, on bool) error {
	return ErrUnsupported
}

// Samples returns the number of samples recorded so far.
func (tx *CaptureTX) Samples() uint64 {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.nsamples
}

// Bursts returns the number of bursts started so far.
func (tx *CaptureTX) Bursts() uint64 {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.nbursts
}
