// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package brf

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"
)

func TestServerFail(t *testing.T) {
	sink, err := NewSink(&fakeTX{})
	if err != nil {
		t.Fatalf("could not create sink: %+v", err)
	}

	err = Serve(":invalid", sink)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestServer(t *testing.T) {
	hw := &fakeTX{}
	sink := newTestSink(t, hw)

	addr, err := getTCPPort()
	if err != nil {
		t.Fatalf("could not get TCP port: %+v", err)
	}
	addr = "localhost:" + addr

	srv, err := newServer(addr, sink)
	if err != nil {
		t.Fatal(err)
	}

	errch := make(chan error)
	go func() {
		errch <- srv.serve()
	}()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("could not dial tx-svc: %+v", err)
	}
	defer conn.Close()

	send := func(name string, args ...string) string {
		t.Helper()

		req := struct {
			Name string   `json:"name"`
			Args []string `json:"args"`
		}{name, args}

		err := json.NewEncoder(conn).Encode(req)
		if err != nil {
			t.Fatalf("could not send %q request: %+v", name, err)
		}

		var rep struct {
			Msg string `json:"msg"`
		}
		err = json.NewDecoder(conn).Decode(&rep)
		if err != nil {
			t.Fatalf("could not read %q reply: %+v", name, err)
		}
		return rep.Msg
	}

	ack := func(name string, args ...string) {
		t.Helper()
		if msg := send(name, args...); msg != "ok" {
			t.Fatalf("invalid %q reply: %q", name, msg)
		}
	}

	ack("start")
	if got, want := hw.ncfg, 1; got != want {
		t.Fatalf("sink not started: ncfg=%d, want=%d", got, want)
	}

	ack("antenna", "0", "TX2")
	name, err := sink.Antenna(0)
	if err != nil {
		t.Fatalf("could not get antenna: %+v", err)
	}
	if got, want := name, "TX2"; got != want {
		t.Fatalf("invalid antenna: got=%q, want=%q", got, want)
	}

	if msg := send("antenna", "0", "RX1"); msg == "ok" {
		t.Fatalf("expected an error reply for an unknown antenna")
	}
	if msg := send("antenna", "0"); msg == "ok" {
		t.Fatalf("expected an error reply for missing arguments")
	}
	if msg := send("antenna", "x", "TX1"); msg == "ok" {
		t.Fatalf("expected an error reply for an invalid channel index")
	}

	if msg := send("status"); !strings.HasPrefix(msg, "consumed=0") {
		t.Fatalf("invalid status reply: %q", msg)
	}

	if msg := send("brew-coffee"); msg != fmt.Sprintf("unknown command %q", "brew-coffee") {
		t.Fatalf("invalid reply for an unknown command: %q", msg)
	}

	ack("stop")
	ack("quit")

	if err := <-errch; err != nil {
		t.Fatalf("server failed: %+v", err)
	}
}

func getTCPPort() (string, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return "", err
	}
	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return "", err
	}
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port), nil
}
