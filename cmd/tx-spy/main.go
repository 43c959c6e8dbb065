// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// tx-spy inspects SC16 Q11 capture files.
//
// Usage: tx-spy [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> tx-spy -o h1d.yoda ./tx_a1b2c3d4_042.sc16
//	=== tx_a1b2c3d4_042.sc16 ===
//	samples:      123456
//	clipped:           0
//	i-mean:      +0.0012
//	i-rms:        0.2833
//	q-mean:      -0.0008
//	q-rms:        0.2835
package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go-hep.org/x/hep/hbook"
)

const scale = 2048 // SC16 Q11 full-scale

func main() {
	log.SetPrefix("tx-spy: ")
	log.SetFlags(0)

	oname := flag.String("o", "", "path to output YODA histogram file")

	flag.Usage = func() {
		fmt.Printf(`tx-spy inspects SC16 Q11 capture files.

Usage: tx-spy [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> tx-spy -o h1d.yoda ./tx_a1b2c3d4_042.sc16
 === tx_a1b2c3d4_042.sc16 ===
 samples:      123456
 clipped:           0
 i-mean:      +0.0012
 i-rms:        0.2833
 [...]

`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing path to input capture file")
	}

	hi := hbook.NewH1D(128, -1, 1)
	hi.Annotation()["name"] = "/tx/i"
	hq := hbook.NewH1D(128, -1, 1)
	hq.Annotation()["name"] = "/tx/q"

	for _, fname := range flag.Args() {
		err := process(os.Stdout, fname, hi, hq)
		if err != nil {
			log.Fatalf("could not inspect file %q: %+v", fname, err)
		}
	}

	if *oname != "" {
		err := save(*oname, hi, hq)
		if err != nil {
			log.Fatalf("could not save histograms: %+v", err)
		}
	}
}

func process(w io.Writer, fname string, hi, hq *hbook.H1D) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	var (
		stats stats
		r     = bufio.NewReader(f)
		iq    [2]int16

		fi = hbook.NewH1D(128, -1, 1)
		fq = hbook.NewH1D(128, -1, 1)
	)

loop:
	for {
		err := binary.Read(r, binary.LittleEndian, iq[:])
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			return fmt.Errorf("could not read sample %d: %w", stats.n, err)
		}
		stats.count(iq)
		fill(iq, fi, fq)
		fill(iq, hi, hq)
	}

	fmt.Fprintf(wbuf, "=== %s ===\n", fname)
	fmt.Fprintf(wbuf, "samples: % 12d\n", stats.n)
	fmt.Fprintf(wbuf, "clipped: % 12d\n", stats.clipped)
	fmt.Fprintf(wbuf, "i-mean:  % 12.4f\n", fi.XMean())
	fmt.Fprintf(wbuf, "i-rms:   % 12.4f\n", fi.XRMS())
	fmt.Fprintf(wbuf, "q-mean:  % 12.4f\n", fq.XMean())
	fmt.Fprintf(wbuf, "q-rms:   % 12.4f\n", fq.XRMS())

	return nil
}

type stats struct {
	n       uint64
	clipped uint64
}

func (st *stats) count(iq [2]int16) {
	st.n++
	if iq[0] <= -scale || iq[0] >= scale-1 ||
		iq[1] <= -scale || iq[1] >= scale-1 {
		st.clipped++
	}
}

func fill(iq [2]int16, hi, hq *hbook.H1D) {
	hi.Fill(float64(iq[0])/scale, 1)
	hq.Fill(float64(iq[1])/scale, 1)
}

func save(oname string, hs ...*hbook.H1D) error {
	f, err := os.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", oname, err)
	}
	defer f.Close()

	for _, h := range hs {
		raw, err := h.MarshalYODA()
		if err != nil {
			return fmt.Errorf("could not marshal histogram: %w", err)
		}
		_, err = f.Write(raw)
		if err != nil {
			return fmt.Errorf("could not write histogram: %w", err)
		}
	}

	return f.Close()
}
