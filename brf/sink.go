// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package brf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
)

// MaxConsecutiveFailures is the number of back-to-back transmit failures
// after which the sink stops requesting work.
const MaxConsecutiveFailures = 3

// Sink streams complex baseband samples to a hardware TX backend.
//
// A single mutex serializes Start, Stop and every Work invocation, so
// burst state threads through invocations in strict temporal order.
type Sink struct {
	mu  sync.Mutex
	msg *log.Logger
	hw  TX
	cfg config

	layout Layout
	format Format

	chans  []Channel // logical index -> hardware channel
	enable map[Channel]bool

	running  bool
	failures int
	consumed uint64 // absolute count of samples consumed so far

	inBurst bool

	buffers
}

// NewSink creates a sink streaming to hw.
func NewSink(hw TX, opts ...Option) (*Sink, error) {
	msg := log.New(os.Stdout, "brf: ", 0)

	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.nchans < 1 {
		return nil, fmt.Errorf("brf: invalid channel count %d", cfg.nchans)
	}
	if cfg.nchans > MaxChannels {
		msg.Printf(
			"number of channels requested (%d) is greater than the maximum "+
				"supported by this device (%d), resetting to %d",
			cfg.nchans, MaxChannels, MaxChannels,
		)
		cfg.nchans = MaxChannels
	}

	sink := &Sink{
		msg:    msg,
		hw:     hw,
		cfg:    cfg,
		format: SC16Q11,
		enable: make(map[Channel]bool, MaxChannels),
	}

	sink.layout = TxX1
	if cfg.nchans > 1 {
		sink.layout = TxX2
	}
	if cfg.meta {
		sink.format = SC16Q11Meta
	}

	// initial wiring of antennas to channels
	for i := 0; i < cfg.nchans; i++ {
		ch := ChannelTX(i)
		sink.chans = append(sink.chans, ch)
		sink.enable[ch] = true
	}

	if cfg.biastee {
		err := hw.SetBiasTee(ChannelTX(0), true)
		switch {
		case errors.Is(err, ErrUnsupported):
			// unsupported, but not worth crashing out
			msg.Printf("bias-tee not supported by device")
		case err != nil:
			return nil, fmt.Errorf("brf: could not set bias-tee: %w", err)
		}
	}

	return sink, nil
}

// NumChannels returns the number of logical TX channels.
func (s *Sink) NumChannels() int { return len(s.chans) }

// Start configures the hardware stream, enables the TX channels and
// allocates the conversion buffers.
func (s *Sink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.msg.Printf("starting sink")

	s.inBurst = false

	cfg := s.cfg.stream
	cfg.Layout = s.layout
	cfg.Format = s.format
	err := s.hw.ConfigureStream(cfg)
	if err != nil {
		return fmt.Errorf("brf: could not configure stream: %w", err)
	}

	for i := 0; i < MaxChannels; i++ {
		ch := ChannelTX(i)
		err = s.hw.EnableChannel(ch, s.enable[ch])
		if err != nil {
			return fmt.Errorf("brf: could not enable channel %v: %w", ch, err)
		}
	}

	err = s.buffers.alloc(s.cfg.stream.BufSize)
	if err != nil {
		return fmt.Errorf("brf: could not allocate conversion buffers: %w", err)
	}

	s.running = true

	return nil
}

// Stop disables the TX channels and releases the conversion buffers.
// Stopping an already stopped sink is a benign no-op.
func (s *Sink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.msg.Printf("stopping sink")

	if !s.running {
		s.msg.Printf("sink already stopped, nothing to do here")
		return nil
	}

	s.running = false

	for i := 0; i < MaxChannels; i++ {
		ch := ChannelTX(i)
		err := s.hw.EnableChannel(ch, false)
		if err != nil {
			return fmt.Errorf("brf: could not disable channel %v: %w", ch, err)
		}
	}

	err := s.buffers.free()
	if err != nil {
		return fmt.Errorf("brf: could not release conversion buffers: %w", err)
	}

	return nil
}

// Work converts the per-channel input streams and transmits them,
// together with the burst markers intersecting this sample window.
//
// Work returns the total number of samples consumed across streams.
// A (0, nil) return means the sink is not running and the scheduler
// should wait; ErrDone means the sink will not accept further work.
// Transmit failures below the consecutive-failure threshold are logged
// and swallowed: the samples still count as consumed.
func (s *Sink) Work(in [][]complex64, markers []Marker) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// if we aren't running, nothing to do here
	if !s.running {
		return 0, nil
	}

	nstreams := s.layout.NumStreams()
	if len(in) != nstreams {
		return 0, fmt.Errorf(
			"brf: invalid number of input streams (got=%d, want=%d)",
			len(in), nstreams,
		)
	}

	n := len(in[0]) * nstreams
	if n == 0 {
		return 0, nil
	}
	if n > s.cfg.stream.BufSize {
		return 0, fmt.Errorf(
			"brf: too many samples for one invocation (got=%d, max=%d)",
			n, s.cfg.stream.BufSize,
		)
	}

	interleave(s.fbuf, in, n)
	convertSC16(s.ibuf, s.fbuf, n)

	var err error
	switch s.format {
	case SC16Q11Meta:
		err = s.transmitWithMarkers(s.ibuf, n, markers)
	default:
		err = s.hw.Transmit(s.ibuf, n, nil, s.cfg.stream.Timeout)
	}

	s.consumed += uint64(n)

	if err != nil {
		s.msg.Printf("could not transmit samples: %+v", err)
		s.failures++

		if s.failures >= MaxConsecutiveFailures {
			s.msg.Printf("consecutive error limit hit, shutting down")
			return 0, ErrDone
		}
	} else {
		s.failures = 0
	}

	return n, nil
}

// Consumed returns the absolute number of samples consumed so far.
func (s *Sink) Consumed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumed
}

// Antenna returns the antenna port name driven by logical channel idx.
func (s *Sink) Antenna(idx int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.chans) {
		return "", fmt.Errorf("brf: invalid channel index %d", idx)
	}
	return AntennaForChannel(s.chans[idx])
}

// SetAntenna wires logical channel idx to the named antenna port.
// When the sink runs, the stream is restarted to apply the remapping,
// preserving the prior running state.
func (s *Sink) SetAntenna(idx int, name string) error {
	ch, err := ChannelForAntenna(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if idx < 0 || idx >= len(s.chans) {
		s.mu.Unlock()
		return fmt.Errorf("brf: invalid channel index %d", idx)
	}
	wasRunning := s.running
	s.mu.Unlock()

	if wasRunning {
		err = s.Stop()
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	old := s.chans[idx]
	s.enable[old] = false
	s.chans[idx] = ch
	s.enable[ch] = true
	s.mu.Unlock()

	if wasRunning {
		return s.Start()
	}
	return nil
}
