// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package brf

import (
	"errors"
	"fmt"
	"time"
)

// MaxChannels is the number of hardware TX paths on the device.
const MaxChannels = 2

var (
	// ErrDone signals the scheduler that the sink will not accept
	// further work.
	ErrDone = errors.New("brf: no more work")

	// ErrInvalidState reports a malformed burst marker sequence.
	ErrInvalidState = errors.New("brf: invalid burst state")

	// ErrUnsupported reports an operation the hardware does not provide.
	ErrUnsupported = errors.New("brf: operation not supported")
)

// Layout selects the hardware channel grouping mode of a stream.
type Layout uint8

const (
	TxX1 Layout = iota + 1 // single TX channel
	TxX2                   // dual synchronized TX channels
)

// NumStreams returns the number of logical sample streams the layout carries.
func (l Layout) NumStreams() int {
	if l == TxX2 {
		return 2
	}
	return 1
}

func (l Layout) String() string {
	switch l {
	case TxX1:
		return "tx-x1"
	case TxX2:
		return "tx-x2"
	}
	return fmt.Sprintf("Layout(%d)", uint8(l))
}

// Format selects the transfer format of a stream.
type Format uint8

const (
	SC16Q11     Format = iota + 1 // plain fixed-point I/Q
	SC16Q11Meta                   // fixed-point I/Q with metadata/timestamps
)

func (f Format) String() string {
	switch f {
	case SC16Q11:
		return "sc16-q11"
	case SC16Q11Meta:
		return "sc16-q11-meta"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// Channel identifies one hardware transmit path.
type Channel uint8

// ChannelTX returns the hardware channel for the logical TX index n.
func ChannelTX(n int) Channel { return Channel(n<<1 | 0x1) }

// TXIndex returns the logical TX index of the channel.
func (ch Channel) TXIndex() int { return int(ch) >> 1 }

func (ch Channel) String() string {
	return fmt.Sprintf("tx%d", ch.TXIndex()+1)
}

// Flags qualify one hardware transmission.
type Flags uint32

const (
	FlagBurstStart Flags = 1 << iota // first transmission of a burst
	FlagBurstEnd                     // closes the current burst
	FlagTxNow                        // transmit immediately, ignore timestamp
)

// Metadata carries the sideband information of one timed transmission.
type Metadata struct {
	Timestamp uint64
	Flags     Flags
}

// StreamConfig holds the hardware stream parameters.
// It is set once at start and immutable while the sink runs.
type StreamConfig struct {
	Layout     Layout
	Format     Format
	NumBuffers int           // number of buffers in the transfer ring
	BufSize    int           // samples per buffer
	NumXfers   int           // in-flight USB transfers
	Timeout    time.Duration // per-transfer timeout
}

// TX is the capability surface the sink needs from a hardware backend.
//
// Transmit blocks the calling goroutine until the transfer completed or
// the timeout expired; it consumes n interleaved I/Q samples (2n int16
// values) from the head of samples. A nil meta selects the plain,
// un-timed transmission path.
type TX interface {
	ConfigureStream(cfg StreamConfig) error
	EnableChannel(ch Channel, on bool) error
	Transmit(samples []int16, n int, meta *Metadata, timeout time.Duration) error
	SetBiasTee(ch Channel, on bool) error
}
