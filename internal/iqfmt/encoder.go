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

// Encoder writes sample frames to an output stream.
// Encoder computes the CRC-16 checksum on the fly and appends it
// at the end of each frame.
type Encoder struct {
	w   io.Writer
	buf []byte
	err error
	crc crc16.Hash16
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		buf: make([]byte, 8),
		crc: crc16.New(nil),
	}
}

func (enc *Encoder) crcw(p []byte) {
	_, _ = enc.crc.Write(p) // can not fail.
}

func (enc *Encoder) reset() {
	enc.crc.Reset()
}

// Encode writes the frame to the stream, computes the corresponding
// CRC-16 checksum on the fly and appends it to the stream.
func (enc *Encoder) Encode(frame *Frame) error {
	if frame == nil {
		return nil
	}

	if len(frame.Markers) > MaxMarkers {
		return fmt.Errorf("iqfmt: too many markers (got=%d, max=%d)",
			len(frame.Markers), MaxMarkers,
		)
	}
	if len(frame.Samples) > MaxSamples {
		return fmt.Errorf("iqfmt: too many samples (got=%d, max=%d)",
			len(frame.Samples), MaxSamples,
		)
	}

	enc.reset()

	enc.writeU8(frHeader)
	if enc.err != nil {
		return fmt.Errorf("iqfmt: could not write frame header marker: %w", enc.err)
	}

	enc.writeU32(frame.Seq)
	enc.writeU64(frame.Origin)
	enc.writeU8(uint8(len(frame.Markers)))
	enc.writeU32(uint32(len(frame.Samples)))

	for _, m := range frame.Markers {
		enc.writeU8(m.Kind)
		enc.writeU64(m.Offset)
	}
	for _, iq := range frame.Samples {
		enc.writeF32(real(iq))
		enc.writeF32(imag(iq))
	}

	enc.writeU8(frTrailer)

	crc := enc.crc.Sum16()
	enc.writeU16(crc)

	return enc.err
}

func (enc *Encoder) write(p []byte) {
	if enc.err != nil {
		return
	}
	_, enc.err = enc.w.Write(p)
	enc.crcw(p)
}

func (enc *Encoder) writeU8(v uint8) {
	const n = 1
	enc.buf[0] = v
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeU16(v uint16) {
	const n = 2
	binary.BigEndian.PutUint16(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeU32(v uint32) {
	const n = 4
	binary.BigEndian.PutUint32(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeU64(v uint64) {
	const n = 8
	binary.BigEndian.PutUint64(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeF32(v float32) {
	enc.writeU32(math.Float32bits(v))
}
