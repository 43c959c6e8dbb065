// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command tx-temp monitors the temperature of the TX front-end board
// through an LM75 sensor sitting on the I2C bus.
package main // import "github.com/go-sdr/osmosdr/cmd/tx-temp"

import (
	"flag"
	"log"
	"time"

	"github.com/go-daq/smbus"
)

const lm75TempReg = 0x0

func main() {
	var (
		bus  = flag.Int("bus", 0, "I2C bus number")
		addr = flag.Int("addr", 0x48, "I2C address of the LM75 sensor")
		freq = flag.Duration("freq", 10*time.Second, "probing interval")
		tmax = flag.Float64("tmax", 70, "temperature threshold (Celsius)")
	)

	log.SetPrefix("tx-temp: ")
	log.SetFlags(0)

	flag.Parse()

	conn, err := smbus.Open(*bus, uint8(*addr))
	if err != nil {
		log.Fatalf("could not open I2C bus %d: %+v", *bus, err)
	}
	defer conn.Close()

	tick := time.NewTicker(*freq)
	defer tick.Stop()

	for range tick.C {
		temp, err := readTemp(conn, uint8(*addr))
		if err != nil {
			log.Printf("could not read temperature: %+v", err)
			continue
		}
		log.Printf("temperature: %.3f C", temp)
		if temp > *tmax {
			log.Printf("temperature %.3f C above threshold %.3f C", temp, *tmax)
		}
	}
}

func readTemp(conn *smbus.Conn, addr uint8) (float64, error) {
	raw, err := conn.ReadWord(addr, lm75TempReg)
	if err != nil {
		return 0, err
	}
	// the LM75 sends the MSB first, the SMBus word is little-endian.
	raw = raw<<8 | raw>>8
	return lm75Temp(raw), nil
}

// lm75Temp converts a raw LM75 temperature register word, a left
// aligned 11-bit two's complement value with a 0.125 C resolution.
func lm75Temp(raw uint16) float64 {
	return float64(int16(raw)>>5) * 0.125
}
