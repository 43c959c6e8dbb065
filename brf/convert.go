// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package brf

import "unsafe"

// ScalingFactor is the full-scale amplitude of the SC16 Q11 wire format.
const ScalingFactor = 2048

// interleave copies n samples from the input streams into dst,
// channel-major per sample: in[0][0], in[1][0], in[0][1], in[1][1], ...
// With a single stream it degenerates to a bulk copy.
func interleave(dst []complex64, in [][]complex64, n int) {
	if len(in) == 1 {
		copy(dst[:n], in[0][:n])
		return
	}

	i := 0
	for s := 0; s < n/len(in); s++ {
		for _, stream := range in {
			dst[i] = stream[s]
			i++
		}
	}
}

// convertSC16 converts n complex samples to scaled fixed-point I/Q,
// treating real and imaginary parts as 2n independent floats.
func convertSC16(dst []int16, src []complex64, n int) {
	if n == 0 {
		return
	}
	fs := unsafe.Slice((*float32)(unsafe.Pointer(&src[0])), 2*n)
	for i, v := range fs {
		dst[i] = int16(v * ScalingFactor)
	}
}
