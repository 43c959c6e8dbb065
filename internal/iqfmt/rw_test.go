// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iqfmt

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func TestCodec(t *testing.T) {
	for _, tc := range []struct {
		name  string
		frame Frame
	}{
		{
			name: "burst",
			frame: Frame{
				Seq:    42,
				Origin: 0x1122334455,
				Markers: []Marker{
					{Kind: BurstStart, Offset: 0x1122334455},
					{Kind: BurstEnd, Offset: 0x1122334465},
				},
				Samples: []complex64{
					complex(0.5, -0.5),
					complex(0.25, 0.125),
					complex(-1, 1),
				},
			},
		},
		{
			name: "no-marker",
			frame: Frame{
				Seq:     43,
				Origin:  100,
				Samples: []complex64{complex(0.1, 0.2)},
			},
		},
		{
			name: "empty",
			frame: Frame{
				Seq: 44,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			enc := NewEncoder(buf)
			err := enc.Encode(&tc.frame)
			if err != nil {
				t.Fatalf("could not encode frame: %+v", err)
			}

			dec := NewDecoder(buf)
			var got Frame
			err = dec.Decode(&got)
			if err != nil {
				t.Fatalf("could not decode frame: %+v", err)
			}

			// the decoder reuses caller slices: normalize empties.
			if len(got.Markers) == 0 {
				got.Markers = nil
			}
			if len(got.Samples) == 0 {
				got.Samples = nil
			}
			if got, want := got, tc.frame; !reflect.DeepEqual(got, want) {
				t.Fatalf("invalid r/w round-trip:\ngot= %#v\nwant=%#v", got, want)
			}
		})
	}
}

func TestCodecStream(t *testing.T) {
	buf := new(bytes.Buffer)
	enc := NewEncoder(buf)
	for i := 0; i < 3; i++ {
		frame := Frame{
			Seq:     uint32(i),
			Origin:  uint64(i) * 4,
			Samples: []complex64{0, 1, 2, 3},
		}
		err := enc.Encode(&frame)
		if err != nil {
			t.Fatalf("could not encode frame %d: %+v", i, err)
		}
	}

	dec := NewDecoder(buf)
	var frame Frame
	for i := 0; i < 3; i++ {
		err := dec.Decode(&frame)
		if err != nil {
			t.Fatalf("could not decode frame %d: %+v", i, err)
		}
		if got, want := frame.Seq, uint32(i); got != want {
			t.Fatalf("invalid sequence number: got=%d, want=%d", got, want)
		}
	}

	err := dec.Decode(&frame)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("got err=%+v, want=%+v", err, io.EOF)
	}
}

func TestEncoder(t *testing.T) {
	{
		buf := new(bytes.Buffer)
		enc := NewEncoder(buf)

		if got, want := enc.Encode(nil), error(nil); got != want {
			t.Fatalf("invalid nil-frame encoding: got=%v, want=%v", got, want)
		}
	}
	{
		buf := failingWriter{n: 0}
		enc := NewEncoder(&buf)
		err := enc.Encode(&Frame{})
		want := "iqfmt: could not write frame header marker: unexpected EOF"
		if err == nil || err.Error() != want {
			t.Fatalf("invalid error:\ngot= %+v\nwant=%+v", err, want)
		}
	}
	{
		enc := NewEncoder(new(bytes.Buffer))
		err := enc.Encode(&Frame{Markers: make([]Marker, MaxMarkers+1)})
		if err == nil {
			t.Fatalf("expected an error for too many markers")
		}
	}
	{
		enc := NewEncoder(new(bytes.Buffer))
		err := enc.Encode(&Frame{Samples: make([]complex64, MaxSamples+1)})
		if err == nil {
			t.Fatalf("expected an error for too many samples")
		}
	}
}

func TestDecoder(t *testing.T) {
	encode := func(frame Frame) []byte {
		buf := new(bytes.Buffer)
		err := NewEncoder(buf).Encode(&frame)
		if err != nil {
			t.Fatalf("could not encode frame: %+v", err)
		}
		return buf.Bytes()
	}
	raw := encode(Frame{Seq: 1, Samples: []complex64{complex(0.5, 0)}})

	t.Run("bad-header", func(t *testing.T) {
		bad := append([]byte(nil), raw...)
		bad[0] = 0xde
		var frame Frame
		err := NewDecoder(bytes.NewReader(bad)).Decode(&frame)
		if err == nil || !strings.Contains(err.Error(), "invalid frame header marker") {
			t.Fatalf("invalid error: %+v", err)
		}
	})

	t.Run("bad-crc", func(t *testing.T) {
		bad := append([]byte(nil), raw...)
		bad[len(bad)-1] ^= 0xff
		var frame Frame
		err := NewDecoder(bytes.NewReader(bad)).Decode(&frame)
		if err == nil || !strings.Contains(err.Error(), "inconsistent CRC") {
			t.Fatalf("invalid error: %+v", err)
		}
	})

	t.Run("corrupted-payload", func(t *testing.T) {
		bad := append([]byte(nil), raw...)
		bad[20] ^= 0xff // inside the I/Q payload
		var frame Frame
		err := NewDecoder(bytes.NewReader(bad)).Decode(&frame)
		if err == nil || !strings.Contains(err.Error(), "inconsistent CRC") {
			t.Fatalf("invalid error: %+v", err)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		bad := raw[:len(raw)-4]
		var frame Frame
		err := NewDecoder(bytes.NewReader(bad)).Decode(&frame)
		if err == nil {
			t.Fatalf("expected an error for a truncated frame")
		}
	})
}

type failingWriter struct {
	n   int
	cur int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.cur += len(p)
	if w.cur >= w.n {
		return 0, io.ErrUnexpectedEOF
	}
	return len(p), nil
}
