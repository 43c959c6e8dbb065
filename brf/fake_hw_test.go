// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package brf

import "time"

type enableCall struct {
	ch Channel
	on bool
}

type txCall struct {
	n     int
	meta  bool
	flags Flags
	head  []int16 // copy of the first transmitted I/Q pair
}

// fakeTX records every hardware call and fails on demand.
type fakeTX struct {
	cfg     StreamConfig
	ncfg    int
	enables []enableCall
	calls   []txCall

	cfgErr    error
	enableErr error
	txErrs    []error // popped one per Transmit; nil when exhausted
	biasErr   error
}

var _ TX = (*fakeTX)(nil)

func (tx *fakeTX) ConfigureStream(cfg StreamConfig) error {
	if tx.cfgErr != nil {
		return tx.cfgErr
	}
	tx.cfg = cfg
	tx.ncfg++
	return nil
}

func (tx *fakeTX) EnableChannel(ch Channel, on bool) error {
	if tx.enableErr != nil {
		return tx.enableErr
	}
	tx.enables = append(tx.enables, enableCall{ch, on})
	return nil
}

func (tx *fakeTX) Transmit(samples []int16, n int, meta *Metadata, timeout time.Duration) error {
	var err error
	if len(tx.txErrs) > 0 {
		err, tx.txErrs = tx.txErrs[0], tx.txErrs[1:]
	}
	if err != nil {
		return err
	}

	call := txCall{n: n}
	if meta != nil {
		call.meta = true
		call.flags = meta.Flags
	}
	if n > 0 {
		call.head = []int16{samples[0], samples[1]}
	}
	tx.calls = append(tx.calls, call)
	return nil
}

func (tx *fakeTX) SetBiasTee(ch Channel, on bool) error {
	return tx.biasErr
}
