// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package brf holds the transmit sample-streaming engine for bladeRF-class
// transceivers: it takes complex baseband samples from a processing graph,
// converts them to the device wire format (SC16 Q11) and hands them to a
// hardware streaming interface, with optional burst-delimited transmission
// driven by markers embedded in the sample stream.
package brf // import "github.com/go-sdr/osmosdr/brf"
