// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package brf

import (
	"math"
	"testing"
)

func TestInterleave(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   [][]complex64
		n    int
		want []complex64
	}{
		{
			name: "single-stream",
			in: [][]complex64{
				{1 + 2i, 3 + 4i, 5 + 6i},
			},
			n:    3,
			want: []complex64{1 + 2i, 3 + 4i, 5 + 6i},
		},
		{
			name: "dual-stream",
			in: [][]complex64{
				{1 + 1i, 2 + 2i, 3 + 3i},
				{-1 - 1i, -2 - 2i, -3 - 3i},
			},
			n: 6,
			want: []complex64{
				1 + 1i, -1 - 1i,
				2 + 2i, -2 - 2i,
				3 + 3i, -3 - 3i,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := make([]complex64, tc.n)
			interleave(got, tc.in, tc.n)
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("invalid sample %d: got=%v, want=%v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestConvertSC16(t *testing.T) {
	src := []complex64{
		complex(0.5, -0.5),
		complex(0.25, 0),
		complex(-0.999, 0.999),
	}
	dst := make([]int16, 2*len(src))
	convertSC16(dst, src, len(src))

	want := []int16{1024, -1024, 512, 0, -2045, 2045}
	for i := range want {
		if got := dst[i]; got != want[i] {
			t.Fatalf("invalid scalar %d: got=%d, want=%d", i, got, want[i])
		}
	}
}

func TestConvertRoundTrip(t *testing.T) {
	// converting to fixed-point and back must stay within the Q11
	// quantization resolution.
	src := []complex64{
		complex(0.123456, -0.654321),
		complex(0.998, 0.001),
		complex(-0.5, 0.75),
	}
	dst := make([]int16, 2*len(src))
	convertSC16(dst, src, len(src))

	const eps = 1.0 / ScalingFactor
	for i, v := range src {
		re := float64(dst[2*i]) / ScalingFactor
		im := float64(dst[2*i+1]) / ScalingFactor
		if math.Abs(re-float64(real(v))) > eps {
			t.Fatalf("sample %d: |%v - %v| > %v", i, re, real(v), eps)
		}
		if math.Abs(im-float64(imag(v))) > eps {
			t.Fatalf("sample %d: |%v - %v| > %v", i, im, imag(v), eps)
		}
	}
}

func TestConvertEmpty(t *testing.T) {
	convertSC16(nil, nil, 0) // must not panic
}
