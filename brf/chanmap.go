// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package brf

import "fmt"

// Antennas returns the names of the TX antenna ports.
func Antennas() []string {
	return []string{"TX1", "TX2"}
}

// ChannelForAntenna returns the hardware channel wired to the named
// antenna port.
func ChannelForAntenna(name string) (Channel, error) {
	switch name {
	case "TX1":
		return ChannelTX(0), nil
	case "TX2":
		return ChannelTX(1), nil
	}
	return 0, fmt.Errorf("brf: unknown antenna %q", name)
}

// AntennaForChannel returns the antenna port name wired to ch.
func AntennaForChannel(ch Channel) (string, error) {
	switch ch {
	case ChannelTX(0):
		return "TX1", nil
	case ChannelTX(1):
		return "TX2", nil
	}
	return "", fmt.Errorf("brf: unknown channel %d", ch)
}
