// Copyright 2024 The go-sdr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rundb holds types to describe the run bookkeeping and device
// configuration database of an SDR transmit station.
package rundb // import "github.com/go-sdr/osmosdr/rundb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// DeviceConfig holds the streaming parameters recorded for one device.
type DeviceConfig struct {
	Serial     string // device serial number
	Antenna    string // TX antenna port
	NumBuffers int
	BufSize    int
	NumXfers   int
	BiasTee    bool
}

// DB exposes convenience methods to retrieve device configurations and
// to record runs in the station database.
type DB struct {
	db   *sql.DB
	name string // name of the station database
}

// Open opens a connection to the station database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("rundb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("rundb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("rundb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// LastRun returns the number of the most recent run on record.
func (db *DB) LastRun(ctx context.Context) (uint32, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var run uint32
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT run FROM runs ORDER BY start DESC LIMIT 1",
	)
	if err != nil {
		return run, fmt.Errorf("rundb: could not query last run: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&run)
		if err != nil {
			return run, fmt.Errorf("rundb: could not get last run value: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return run, fmt.Errorf("rundb: could not scan db for last run: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return run, fmt.Errorf("rundb: context error while retrieving last run: %w", err)
	}

	return run, nil
}

// DeviceConfig returns the streaming parameters recorded for the
// device with the given serial number.
func (db *DB) DeviceConfig(ctx context.Context, serial string) (DeviceConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cfg DeviceConfig
	rows, err := db.db.QueryContext(
		ctx,
		`
SELECT serial, antenna, nbufs, bufsize, nxfers, biastee FROM devices
WHERE serial=?
ORDER BY datetime DESC LIMIT 1
`,
		serial,
	)
	if err != nil {
		return cfg, fmt.Errorf("rundb: could not run device cfg query: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		err = rows.Scan(
			&cfg.Serial, &cfg.Antenna,
			&cfg.NumBuffers, &cfg.BufSize, &cfg.NumXfers,
			&cfg.BiasTee,
		)
		if err != nil {
			return cfg, fmt.Errorf("rundb: could not scan device cfg: %w", err)
		}
		n++
	}

	if err := rows.Err(); err != nil {
		return cfg, fmt.Errorf("rundb: could not scan db for device cfg: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return cfg, fmt.Errorf("rundb: context error while retrieving device cfg: %w", err)
	}

	if n == 0 {
		return cfg, fmt.Errorf("rundb: no device cfg for serial %q", serial)
	}

	return cfg, nil
}

// InsertRun records the start of a new run for the device with the
// given serial number.
func (db *DB) InsertRun(ctx context.Context, run uint32, serial string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.db.ExecContext(
		ctx,
		"INSERT INTO runs (run, serial, start) VALUES (?, ?, NOW())",
		run, serial,
	)
	if err != nil {
		return fmt.Errorf("rundb: could not insert run %d: %w", run, err)
	}

	return nil
}

// FinishRun records the end of a run, together with the total number
// of samples consumed.
func (db *DB) FinishRun(ctx context.Context, run uint32, consumed uint64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.db.ExecContext(
		ctx,
		"UPDATE runs SET stop=NOW(), consumed=? WHERE run=?",
		consumed, run,
	)
	if err != nil {
		return fmt.Errorf("rundb: could not finish run %d: %w", run, err)
	}

	return nil
}
