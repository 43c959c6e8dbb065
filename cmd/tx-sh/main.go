// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command tx-sh provides an interactive shell to a tx-svc service.
package main // import "github.com/go-sdr/osmosdr/cmd/tx-sh"

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

var cmdNames = []string{"start", "stop", "antenna", "status", "quit"}

func main() {
	var (
		addr = flag.String("addr", "localhost:9000", "address of the tx-svc service")
	)

	log.SetPrefix("tx-sh: ")
	log.SetFlags(0)

	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("could not dial tx-svc on %q: %+v", *addr, err)
	}
	defer conn.Close()

	err = repl(conn)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func repl(conn net.Conn) error {
	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)
	term.SetCompleter(func(line string) []string {
		var o []string
		for _, name := range cmdNames {
			if strings.HasPrefix(name, strings.ToLower(line)) {
				o = append(o, name)
			}
		}
		return o
	})

	history := filepath.Join(os.TempDir(), ".tx-sh.history")
	if f, err := os.Open(history); err == nil {
		_, _ = term.ReadHistory(f)
		f.Close()
	}
	defer func() {
		f, err := os.Create(history)
		if err != nil {
			log.Printf("could not save history: %+v", err)
			return
		}
		defer f.Close()
		_, _ = term.WriteHistory(f)
	}()

	for {
		line, err := term.Prompt("tx> ")
		switch {
		case errors.Is(err, io.EOF):
			fmt.Println()
			return nil
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case err != nil:
			return fmt.Errorf("could not read line: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		words := strings.Fields(line)
		msg, err := send(conn, words[0], words[1:])
		if err != nil {
			return fmt.Errorf("could not send %q command: %w", words[0], err)
		}
		fmt.Printf("%s\n", msg)

		if words[0] == "quit" {
			return nil
		}
	}
}

func send(conn net.Conn, name string, args []string) (string, error) {
	req := struct {
		Name string   `json:"name"`
		Args []string `json:"args"`
	}{name, args}

	err := json.NewEncoder(conn).Encode(req)
	if err != nil {
		return "", fmt.Errorf("could not encode request: %w", err)
	}

	var rep struct {
		Msg string `json:"msg"`
	}
	err = json.NewDecoder(conn).Decode(&rep)
	if err != nil {
		return "", fmt.Errorf("could not decode reply: %w", err)
	}
	return rep.Msg, nil
}
