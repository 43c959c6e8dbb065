// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package brf

import "fmt"

// MarkerKind enumerates the burst boundary events.
type MarkerKind uint8

const (
	BurstStart MarkerKind = iota + 1
	BurstEnd
)

func (k MarkerKind) String() string {
	switch k {
	case BurstStart:
		return "burst-start"
	case BurstEnd:
		return "burst-end"
	}
	return fmt.Sprintf("MarkerKind(%d)", uint8(k))
}

// Marker annotates an absolute sample offset with a burst boundary
// event. Markers handed to Work must intersect the current sample
// window and be ordered ascending by offset.
type Marker struct {
	Kind   MarkerKind
	Offset uint64
}

const (
	invalidIdx = -1
	flushLen   = 4 // zero samples transmitted to force burst closure
)

// relIndex maps the absolute offset of a marker to an index into the
// current window of n samples, rejecting offsets outside the window.
func (s *Sink) relIndex(m Marker, n int) (int, error) {
	if m.Offset < s.consumed || m.Offset-s.consumed >= uint64(n) {
		return invalidIdx, fmt.Errorf(
			"brf: %v marker offset 0x%x outside sample window [0x%x, 0x%x): %w",
			m.Kind, m.Offset, s.consumed, s.consumed+uint64(n), ErrInvalidState,
		)
	}
	return int(m.Offset - s.consumed), nil
}

// transmitWithMarkers partitions n interleaved samples into zero or
// more timed hardware transmissions according to the burst markers,
// preserving burst state across invocations.
func (s *Sink) transmitWithMarkers(samples []int16, n int, markers []Marker) error {
	// A long burst may span many invocations, in which case the whole
	// buffer is sent as-is. Initialize the transient indices for that case.
	var (
		start = 0
		end   = n - 1

		meta    Metadata
		timeout = s.cfg.stream.Timeout
	)

	if len(markers) == 0 {
		if !s.inBurst {
			s.msg.Printf("dropping %d samples not in a burst", n)
			return nil
		}
		return s.hw.Transmit(samples, n, &meta, timeout)
	}

	var prev uint64
	for i, m := range markers {
		if i > 0 && m.Offset < prev {
			return fmt.Errorf(
				"brf: markers not sorted by offset (0x%x after 0x%x): %w",
				m.Offset, prev, ErrInvalidState,
			)
		}
		prev = m.Offset

		switch m.Kind {
		case BurstStart:
			// Record the offset and arm the start flags. The head of the
			// burst is transmitted when the matching end marker shows up,
			// or at the end of this invocation, whichever comes first.
			if s.inBurst {
				s.msg.Printf("got burst-start while already within a burst")
				return ErrInvalidState
			}

			idx, err := s.relIndex(m, n)
			if err != nil {
				return err
			}

			start = idx
			meta.Flags |= FlagTxNow | FlagBurstStart
			s.inBurst = true

		case BurstEnd:
			if !s.inBurst {
				s.msg.Printf("got burst-end while not in a burst")
				return ErrInvalidState
			}

			idx, err := s.relIndex(m, n)
			if err != nil {
				return err
			}

			end = idx
			if start == invalidIdx || start > end {
				return fmt.Errorf(
					"brf: invalid burst indices [%d:%d]: %w",
					start, end, ErrInvalidState,
				)
			}

			count := end - start + 1
			err = s.hw.Transmit(samples[2*start:], count, &meta, timeout)
			if err != nil {
				return err
			}

			// Flush a handful of zero samples carrying the burst-end flag
			// to force the hardware to close out the burst.
			meta.Flags &^= FlagTxNow | FlagBurstStart
			meta.Flags |= FlagBurstEnd
			var zeros [2 * flushLen]int16
			err = s.hw.Transmit(zeros[:], flushLen, &meta, timeout)

			start = invalidIdx
			end = n - 1
			meta.Flags = 0
			s.inBurst = false

			if err != nil {
				s.msg.Printf("could not flush zero samples at end of burst")
				return err
			}

		default:
			// markers of no interest to the TX path
		}
	}

	// A burst start with no end yet: transmit what we have, the burst
	// stays open for the next invocation.
	if s.inBurst {
		count := end - start + 1
		return s.hw.Transmit(samples[2*start:], count, &meta, timeout)
	}

	return nil
}
