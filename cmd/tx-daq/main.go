// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command tx-daq starts a TDAQ server streaming baseband samples to a
// bladeRF TX sink.
//
// The server receives framed sample windows on its /iq input endpoint
// and drives the sink from them. The streaming parameters may be
// looked up in the station database (TX_RUNDB, TX_SERIAL), and runs
// are recorded there when a database is configured.
package main // import "github.com/go-sdr/osmosdr/cmd/tx-daq"

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/go-sdr/osmosdr/brf"
	"github.com/go-sdr/osmosdr/internal/iqfmt"
	"github.com/go-sdr/osmosdr/rundb"
)

func main() {
	cmd := flags.New()

	dev := txdev{
		name:   cmd.Args[0],
		odir:   envOr("TX_ODIR", "."),
		dbname: os.Getenv("TX_RUNDB"),
		serial: envOr("TX_SERIAL", "unknown"),
	}

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.InputHandle("/iq", dev.iq)

	srv.RunHandle(dev.loop)

	err := srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

func envOr(name, alt string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return alt
}

type txdev struct {
	name   string
	odir   string
	dbname string
	serial string

	opts []brf.Option

	out  *os.File
	sink *brf.Sink

	run     uint32
	seq     uint32
	nframes uint64
}

func (dev *txdev) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")

	dev.opts = []brf.Option{brf.WithMetadata(true)}
	if dev.dbname == "" {
		return nil
	}

	db, err := rundb.Open(dev.dbname)
	if err != nil {
		ctx.Msg.Errorf("could not open run db: %+v", err)
		return fmt.Errorf("could not open run db: %w", err)
	}
	defer db.Close()

	cfg, err := db.DeviceConfig(ctx.Ctx, dev.serial)
	if err != nil {
		ctx.Msg.Errorf("could not fetch device config: %+v", err)
		return fmt.Errorf("could not fetch device config for %q: %w", dev.serial, err)
	}

	dev.opts = append(dev.opts,
		brf.WithNumBuffers(cfg.NumBuffers),
		brf.WithBufferSize(cfg.BufSize),
		brf.WithNumTransfers(cfg.NumXfers),
		brf.WithBiasTee(cfg.BiasTee),
	)
	ctx.Msg.Infof("configured device %q from run db", dev.serial)
	return nil
}

func (dev *txdev) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")

	fname := filepath.Join(dev.odir, fmt.Sprintf(
		"tx_%s_%s.sc16",
		dev.serial, time.Now().UTC().Format("20060102-150405"),
	))
	out, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("could not create output file %q: %w", fname, err)
	}

	sink, err := brf.NewSink(brf.NewCaptureTX(out), dev.opts...)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("could not create TX sink: %w", err)
	}

	dev.out = out
	dev.sink = sink
	dev.seq = 0
	dev.nframes = 0
	return nil
}

func (dev *txdev) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	if dev.sink != nil {
		_ = dev.sink.Stop()
	}
	if dev.out != nil {
		_ = dev.out.Close()
	}
	dev.sink = nil
	dev.out = nil
	dev.seq = 0
	dev.nframes = 0
	return nil
}

func (dev *txdev) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")

	err := dev.sink.Start()
	if err != nil {
		return fmt.Errorf("could not start TX sink: %w", err)
	}

	if dev.dbname != "" {
		db, err := rundb.Open(dev.dbname)
		if err != nil {
			return fmt.Errorf("could not open run db: %w", err)
		}
		defer db.Close()

		last, err := db.LastRun(ctx.Ctx)
		if err != nil {
			return fmt.Errorf("could not fetch last run: %w", err)
		}
		dev.run = last + 1
		err = db.InsertRun(ctx.Ctx, dev.run, dev.serial)
		if err != nil {
			return fmt.Errorf("could not record run %d: %w", dev.run, err)
		}
		ctx.Msg.Infof("started run %d", dev.run)
	}
	return nil
}

func (dev *txdev) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /stop command... -> frames=%d", dev.nframes)

	err := dev.sink.Stop()
	if err != nil {
		return fmt.Errorf("could not stop TX sink: %w", err)
	}

	if dev.dbname != "" {
		db, err := rundb.Open(dev.dbname)
		if err != nil {
			return fmt.Errorf("could not open run db: %w", err)
		}
		defer db.Close()

		err = db.FinishRun(ctx.Ctx, dev.run, dev.sink.Consumed())
		if err != nil {
			return fmt.Errorf("could not finish run %d: %w", dev.run, err)
		}
	}
	return nil
}

func (dev *txdev) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	if dev.sink != nil {
		_ = dev.sink.Stop()
	}
	if dev.out != nil {
		_ = dev.out.Close()
		dev.out = nil
	}
	return nil
}

func (dev *txdev) iq(ctx tdaq.Context, src tdaq.Frame) error {
	if len(src.Body) == 0 {
		return nil
	}

	var frame iqfmt.Frame
	err := iqfmt.NewDecoder(bytes.NewReader(src.Body)).Decode(&frame)
	if err != nil {
		ctx.Msg.Errorf("could not decode sample frame: %+v", err)
		return fmt.Errorf("could not decode sample frame: %w", err)
	}

	if frame.Seq != dev.seq {
		ctx.Msg.Warnf("sequence gap: got=%d, want=%d", frame.Seq, dev.seq)
	}
	dev.seq = frame.Seq + 1
	dev.nframes++

	markers := make([]brf.Marker, 0, len(frame.Markers))
	for _, m := range frame.Markers {
		var kind brf.MarkerKind
		switch m.Kind {
		case iqfmt.BurstStart:
			kind = brf.BurstStart
		case iqfmt.BurstEnd:
			kind = brf.BurstEnd
		default:
			continue
		}
		markers = append(markers, brf.Marker{Kind: kind, Offset: m.Offset})
	}

	_, err = dev.sink.Work([][]complex64{frame.Samples}, markers)
	switch {
	case errors.Is(err, brf.ErrDone):
		ctx.Msg.Errorf("TX sink hit its failure limit, shutting down")
		return err
	case err != nil:
		ctx.Msg.Errorf("could not stream frame %d: %+v", frame.Seq, err)
		return fmt.Errorf("could not stream frame %d: %w", frame.Seq, err)
	}
	return nil
}

func (dev *txdev) loop(ctx tdaq.Context) error {
	<-ctx.Ctx.Done()
	return nil
}
