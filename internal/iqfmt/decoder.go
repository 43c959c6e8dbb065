// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iqfmt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-sdr/osmosdr/internal/crc16"
)

// Decoder reads (and validates) sample frames from an underlying data
// source. Decoder computes CRC-16 checksums on the fly, during the
// acquisition of frames.
type Decoder struct {
	r   io.Reader
	buf []byte
	err error
	crc crc16.Hash16
}

// NewDecoder creates a decoder that reads and validates frames from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   r,
		buf: make([]byte, 8),
		crc: crc16.New(nil),
	}
}

func (dec *Decoder) crcw(p []byte) {
	_, _ = dec.crc.Write(p) // can not fail.
}

func (dec *Decoder) reset() {
	dec.crc.Reset()
}

// Decode reads the next frame from the stream into frame, validating
// the frame markers and the trailing CRC-16 checksum.
func (dec *Decoder) Decode(frame *Frame) error {
	dec.reset()

	v := dec.readU8()
	if dec.err != nil {
		if dec.err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("iqfmt: could not read frame header marker: %w", dec.err)
	}
	if v != frHeader {
		return fmt.Errorf("iqfmt: invalid frame header marker (got=0x%x, want=0x%x)",
			v, frHeader,
		)
	}

	frame.Seq = dec.readU32()
	frame.Origin = dec.readU64()
	nmarkers := int(dec.readU8())
	nsamples := int(dec.readU32())
	if dec.err != nil {
		return fmt.Errorf("iqfmt: could not read frame header: %w", dec.err)
	}

	if nsamples > MaxSamples {
		return fmt.Errorf("iqfmt: too many samples (got=%d, max=%d)",
			nsamples, MaxSamples,
		)
	}

	frame.Markers = frame.Markers[:0]
	for i := 0; i < nmarkers; i++ {
		var m Marker
		m.Kind = dec.readU8()
		m.Offset = dec.readU64()
		if dec.err != nil {
			return fmt.Errorf("iqfmt: could not read marker %d: %w", i, dec.err)
		}
		frame.Markers = append(frame.Markers, m)
	}

	frame.Samples = frame.Samples[:0]
	for i := 0; i < nsamples; i++ {
		re := dec.readF32()
		im := dec.readF32()
		if dec.err != nil {
			return fmt.Errorf("iqfmt: could not read sample %d: %w", i, dec.err)
		}
		frame.Samples = append(frame.Samples, complex(re, im))
	}

	v = dec.readU8()
	if dec.err != nil {
		return fmt.Errorf("iqfmt: could not read frame trailer marker: %w", dec.err)
	}
	if v != frTrailer {
		return fmt.Errorf("iqfmt: invalid frame trailer marker (got=0x%x, want=0x%x)",
			v, frTrailer,
		)
	}

	var (
		compCRC = dec.crc.Sum16()
		recvCRC = dec.readU16()
	)
	if dec.err != nil {
		return fmt.Errorf("iqfmt: could not read CRC-16: %w", dec.err)
	}
	if compCRC != recvCRC {
		return fmt.Errorf("iqfmt: inconsistent CRC: recv=0x%04x comp=0x%04x",
			recvCRC, compCRC,
		)
	}

	return nil
}

func (dec *Decoder) read(p []byte) {
	if dec.err != nil {
		return
	}
	_, dec.err = io.ReadFull(dec.r, p)
	if dec.err != nil {
		return
	}
	dec.crcw(p)
}

func (dec *Decoder) readU8() uint8 {
	const n = 1
	dec.read(dec.buf[:n])
	return dec.buf[0]
}

func (dec *Decoder) readU16() uint16 {
	const n = 2
	if dec.err != nil {
		return 0
	}
	// the checksum itself is not part of the checksummed stream.
	_, dec.err = io.ReadFull(dec.r, dec.buf[:n])
	if dec.err != nil {
		return 0
	}
	return binary.BigEndian.Uint16(dec.buf[:n])
}

func (dec *Decoder) readU32() uint32 {
	const n = 4
	dec.read(dec.buf[:n])
	return binary.BigEndian.Uint32(dec.buf[:n])
}

func (dec *Decoder) readU64() uint64 {
	const n = 8
	dec.read(dec.buf[:n])
	return binary.BigEndian.Uint64(dec.buf[:n])
}

func (dec *Decoder) readF32() float32 {
	return math.Float32frombits(dec.readU32())
}
