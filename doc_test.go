// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package osmosdr

import (
	"runtime/debug"
	"testing"
)

func TestVersionOf(t *testing.T) {
	const root = "github.com/go-sdr/osmosdr"
	for _, tc := range []struct {
		name    string
		binfo   *debug.BuildInfo
		version string
		sum     string
	}{
		{
			name: "nil",
		},
		{
			name:  "not-found",
			binfo: &debug.BuildInfo{},
		},
		{
			name: "main-module",
			binfo: &debug.BuildInfo{
				Main: debug.Module{Path: root, Version: "v0.1.0", Sum: "h1:xxx"},
			},
			version: "v0.1.0",
			sum:     "h1:xxx",
		},
		{
			name: "dep",
			binfo: &debug.BuildInfo{
				Main: debug.Module{Path: "example.com/station"},
				Deps: []*debug.Module{
					{Path: root, Version: "v0.2.0", Sum: "h1:yyy"},
				},
			},
			version: "v0.2.0",
			sum:     "h1:yyy",
		},
		{
			name: "dep-replaced",
			binfo: &debug.BuildInfo{
				Main: debug.Module{Path: "example.com/station"},
				Deps: []*debug.Module{
					{
						Path:    root,
						Version: "v0.2.0",
						Replace: &debug.Module{
							Path:    "example.com/fork",
							Version: "v0.2.1",
							Sum:     "h1:zzz",
						},
					},
				},
			},
			version: "example.com/fork v0.2.1",
			sum:     "h1:zzz",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			version, sum := versionOf(tc.binfo)
			if version != tc.version || sum != tc.sum {
				t.Fatalf(
					"invalid version: got=(%q, %q), want=(%q, %q)",
					version, sum, tc.version, tc.sum,
				)
			}
		})
	}
}
