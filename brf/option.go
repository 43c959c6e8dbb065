// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package brf

import "time"

type config struct {
	nchans  int  // number of logical TX channels
	meta    bool // use the metadata transfer format
	biastee bool

	stream StreamConfig
}

func newConfig() config {
	return config{
		nchans: 1,
		stream: StreamConfig{
			NumBuffers: 512,
			BufSize:    4096,
			NumXfers:   32,
			Timeout:    3 * time.Second,
		},
	}
}

// Option configures a Sink.
type Option func(*config)

// WithChannels sets the number of logical TX channels.
// Channel counts above the hardware maximum are clamped at construction.
func WithChannels(n int) Option {
	return func(cfg *config) {
		cfg.nchans = n
	}
}

// WithMetadata selects the metadata transfer format, enabling
// burst-delimited transmission driven by stream markers.
func WithMetadata(on bool) Option {
	return func(cfg *config) {
		cfg.meta = on
	}
}

// WithNumBuffers sets the number of buffers in the transfer ring.
func WithNumBuffers(n int) Option {
	return func(cfg *config) {
		cfg.stream.NumBuffers = n
	}
}

// WithBufferSize sets the per-buffer sample capacity. It bounds the
// number of samples a single streaming invocation may carry.
func WithBufferSize(n int) Option {
	return func(cfg *config) {
		cfg.stream.BufSize = n
	}
}

// WithNumTransfers sets the number of in-flight transfers.
func WithNumTransfers(n int) Option {
	return func(cfg *config) {
		cfg.stream.NumXfers = n
	}
}

// WithTimeout sets the per-transfer timeout.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.stream.Timeout = d
	}
}

// WithBiasTee powers the bias-tee of the first TX port at construction.
func WithBiasTee(on bool) Option {
	return func(cfg *config) {
		cfg.biastee = on
	}
}
