// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crc16 implements the 16-bit cyclic redundancy check, using
// the CCITT polynomial (x16 + x12 + x5 + 1) with an all-ones
// initial value.
package crc16

import "hash"

// Size of a CRC-16 checksum in bytes.
const Size = 2

const (
	poly = 0x1021
	seed = 0xffff
)

// Table is a 256-word table representing the polynomial for efficient
// processing.
type Table [256]uint16

var ccitt = makeTable(poly)

func makeTable(poly uint16) *Table {
	var tab Table
	for i := range tab {
		crc := uint16(i) << 8
		for j := 0; j < 8; j++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		tab[i] = crc
	}
	return &tab
}

// Hash16 is the common interface implemented by all 16-bit hash
// functions.
type Hash16 interface {
	hash.Hash
	Sum16() uint16
}

type digest struct {
	crc uint16
	tab *Table
}

// New creates a new Hash16 computing the CRC-16 checksum using the
// polynomial represented by tab. A nil table selects the CCITT
// polynomial.
func New(tab *Table) Hash16 {
	if tab == nil {
		tab = ccitt
	}
	return &digest{crc: seed, tab: tab}
}

func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return 1 }
func (d *digest) Reset()         { d.crc = seed }

func (d *digest) Write(p []byte) (int, error) {
	crc := d.crc
	for _, v := range p {
		crc = crc<<8 ^ d.tab[byte(crc>>8)^v]
	}
	d.crc = crc
	return len(p), nil
}

func (d *digest) Sum16() uint16 { return d.crc }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum16()
	return append(in, byte(s>>8), byte(s))
}
