// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package iqfmt holds functions to manipulate framed baseband sample
// streams.
package iqfmt // import "github.com/go-sdr/osmosdr/internal/iqfmt"

const (
	frHeader  = 0xb5 // frame header marker
	frTrailer = 0xa5 // frame trailer marker

	// MaxSamples bounds the payload of a single frame.
	MaxSamples = 1 << 20
	// MaxMarkers bounds the burst markers of a single frame.
	MaxMarkers = 0xff
)

// Marker kinds.
const (
	BurstStart uint8 = iota + 1
	BurstEnd
)

// Frame represents one contiguous window of complex baseband samples,
// together with the burst markers intersecting it.
type Frame struct {
	Seq     uint32 // frame sequence number
	Origin  uint64 // absolute sample offset of the first sample
	Markers []Marker
	Samples []complex64
}

// Marker annotates an absolute sample offset with a burst boundary
// event.
type Marker struct {
	Kind   uint8
	Offset uint64
}
