// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package brf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
)

// transmitter is the capability surface the control server needs from
// a sink.
type transmitter interface {
	Start() error
	Stop() error
	Antenna(idx int) (string, error)
	SetAntenna(idx int, name string) error
	Consumed() uint64
}

// server allows to control a TX sink over a TCP command channel.
type server struct {
	ctl net.Listener
	msg *log.Logger
	dev transmitter
}

// Serve listens on addr and runs control commands against the sink.
func Serve(addr string, sink *Sink) error {
	srv, err := newServer(addr, sink)
	if err != nil {
		return fmt.Errorf("could not create tx server: %w", err)
	}
	return srv.serve()
}

func newServer(addr string, dev transmitter) (*server, error) {
	ctl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not create tx-ctl server on %q: %w", addr, err)
	}

	srv := &server{
		ctl: ctl,
		msg: log.New(os.Stdout, "tx-svc: ", 0),
		dev: dev,
	}
	return srv, nil
}

func (srv *server) serve() error {
	defer srv.close()

	for {
		conn, err := srv.ctl.Accept()
		if err != nil {
			return fmt.Errorf("could not accept connection: %w", err)
		}

		quit, err := srv.handle(conn)
		if err != nil {
			srv.msg.Printf("could not run TX sink: %+v", err)
		}
		if quit {
			return nil
		}
	}
}

func (srv *server) handle(conn net.Conn) (quit bool, err error) {
	defer conn.Close()
	srv.msg.Printf("serving %v...", conn.RemoteAddr())
	defer srv.msg.Printf("serving %v... [done]", conn.RemoteAddr())

loop:
	for {
		var req struct {
			Name string           `json:"name"`
			Args *json.RawMessage `json:"args"`
		}

		err = json.NewDecoder(conn).Decode(&req)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
				break loop
			}
			srv.msg.Printf("could not decode command request: %+v", err)
			srv.reply(conn, err)
			continue
		}
		srv.msg.Printf("received request: name=%q", req.Name)

		switch strings.ToLower(req.Name) {
		case "start":
			err = srv.dev.Start()
			srv.reply(conn, err)
			if err != nil {
				srv.msg.Printf("could not start TX sink: %+v", err)
				continue
			}

		case "stop":
			err = srv.dev.Stop()
			srv.reply(conn, err)
			if err != nil {
				srv.msg.Printf("could not stop TX sink: %+v", err)
				continue
			}

		case "antenna":
			var args []string
			err = json.Unmarshal(*req.Args, &args)
			if err != nil {
				srv.msg.Printf("could not decode %q payload: %+v",
					req.Name, err,
				)
				srv.reply(conn, err)
				continue
			}
			if len(args) != 2 {
				err = fmt.Errorf("invalid number of arguments for %q (got=%d, want=2)",
					req.Name, len(args),
				)
				srv.reply(conn, err)
				continue
			}

			idx, err := strconv.Atoi(args[0])
			if err != nil {
				srv.msg.Printf("could not decode channel index (args=%v): %+v",
					args, err,
				)
				srv.reply(conn, err)
				continue
			}

			err = srv.dev.SetAntenna(idx, args[1])
			srv.reply(conn, err)
			if err != nil {
				srv.msg.Printf("could not set antenna: %+v", err)
				continue
			}

		case "status":
			var sb strings.Builder
			fmt.Fprintf(&sb, "consumed=%d", srv.dev.Consumed())
			for i := 0; i < MaxChannels; i++ {
				name, err := srv.dev.Antenna(i)
				if err != nil {
					continue
				}
				fmt.Fprintf(&sb, " chan%d=%s", i, name)
			}
			srv.replyMsg(conn, sb.String())

		case "quit":
			err = srv.dev.Stop()
			srv.reply(conn, err)
			quit = true
			break loop

		default:
			srv.msg.Printf("unknown command name=%q, args=%q", req.Name, req.Args)
			err = fmt.Errorf("unknown command %q", req.Name)
			srv.reply(conn, err)
			continue
		}
	}

	return quit, err
}

func (srv *server) reply(conn net.Conn, err error) {
	msg := "ok"
	if err != nil {
		msg = fmt.Sprintf("%+v", err)
	}
	srv.replyMsg(conn, msg)
}

func (srv *server) replyMsg(conn net.Conn, msg string) {
	rep := struct {
		Msg string `json:"msg"`
	}{msg}

	_ = json.NewEncoder(conn).Encode(rep)
}

func (srv *server) close() {
	_ = srv.ctl.Close()
}
