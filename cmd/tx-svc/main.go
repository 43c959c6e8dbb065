// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command tx-svc exposes a bladeRF TX sink over a TCP command channel.
package main // import "github.com/go-sdr/osmosdr/cmd/tx-svc"

import (
	"flag"
	"log"
	"os"

	"github.com/go-sdr/osmosdr/brf"
)

func main() {
	var (
		addr  = flag.String("addr", ":9000", "tx-svc [addr]:port")
		oname = flag.String("o", "tx.sc16", "output capture file")

		nchans = flag.Int("nchans", 1, "number of TX channels")
		meta   = flag.Bool("meta", true, "use the metadata transfer format")
		bias   = flag.Bool("bias-tee", false, "power the TX bias-tee")
	)

	log.SetPrefix("tx-svc: ")
	log.SetFlags(0)

	flag.Parse()

	out, err := os.Create(*oname)
	if err != nil {
		log.Fatalf("could not create capture file: %+v", err)
	}
	defer out.Close()

	sink, err := brf.NewSink(
		brf.NewCaptureTX(out),
		brf.WithChannels(*nchans),
		brf.WithMetadata(*meta),
		brf.WithBiasTee(*bias),
	)
	if err != nil {
		log.Fatalf("could not create TX sink: %+v", err)
	}

	err = brf.Serve(*addr, sink)
	if err != nil {
		log.Fatalf("could not run tx-svc service: %+v", err)
	}
}
