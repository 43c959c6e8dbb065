// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	bin, err := os.ReadFile("/bin/sleep")
	if err != nil {
		t.Skipf("could not read sleep binary: %+v", err)
	}

	dir := t.TempDir()
	cmds := make([]string, 3)
	for i := range cmds {
		sim := filepath.Join(dir, "tx-sim-"+strconv.Itoa(i))
		err := os.WriteFile(sim, bin, 0755)
		if err != nil {
			t.Fatalf("could not create test program: %+v", err)
		}
		cmds[i] = sim
	}

	for _, tc := range []struct {
		name string
		cmds []*exec.Cmd
		mon  bool
		stop bool
	}{
		{
			name: "simple",
			cmds: []*exec.Cmd{
				exec.Command(cmds[0], "1"),
				exec.Command(cmds[1], "1"),
				exec.Command(cmds[2], "1"),
			},
		},
		{
			name: "simple-pmon",
			cmds: []*exec.Cmd{
				exec.Command(cmds[0], "1"),
				exec.Command(cmds[1], "1"),
				exec.Command(cmds[2], "1"),
			},
			mon: true,
		},
		{
			name: "simple-stop",
			cmds: []*exec.Cmd{
				exec.Command(cmds[0], "10"),
				exec.Command(cmds[1], "10"),
				exec.Command(cmds[2], "10"),
			},
			stop: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			odir := t.TempDir()

			stop := make(chan os.Signal, 1)
			if tc.stop {
				go func() {
					time.Sleep(2 * time.Second)
					stop <- os.Interrupt
				}()
			}
			err := run(tc.mon, 1*time.Second, tc.cmds, odir, stop)
			if err != nil {
				t.Fatalf("could not run processes: %+v", err)
			}
		})
	}
}
