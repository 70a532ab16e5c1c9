package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// The local results tree stays the source of truth; mirror trouble must
// never fail a benchmark run.
type ResultsMirror struct {
	db *sql.DB
}

func OpenResultsMirror(url string) (*ResultsMirror, error) {
	db, err := sql.Open("libsql", url)
	if err != nil {
		return nil, errors.Wrapf(err, "open results mirror")
	}
	return &ResultsMirror{db: db}, nil
}

func (m *ResultsMirror) Close() error {
	return m.db.Close()
}

// Parameter rows are written once; reruns keep the original values.
func (m *ResultsMirror) Init(info SysInfo) error {
	_, err := m.db.Exec("CREATE TABLE IF NOT EXISTS parameters (name TEXT PRIMARY KEY, value)")
	if err != nil {
		return err
	}
	parameters := make([]any, 0)
	parameters = append(parameters, "time", time.Now().Format("2006-01-02 15:04:05"))
	for _, pair := range info.Parameters() {
		parameters = append(parameters, pair[0], pair[1])
	}
	placeholders := strings.TrimSuffix(strings.Repeat("(?, ?), ", len(parameters)/2), ", ")
	_, err = m.db.Exec(
		fmt.Sprintf("INSERT INTO parameters VALUES %v ON CONFLICT DO NOTHING", placeholders),
		parameters...,
	)
	if err != nil {
		return err
	}
	_, err = m.db.Exec(`CREATE TABLE IF NOT EXISTS measurements (
		duration TEXT,
		ops INTEGER,
		gage TEXT,
		command TEXT,
		measurement TEXT,
		runs REAL,
		value REAL,
		PRIMARY KEY (duration, ops, gage, command, measurement)
	)`)
	if err != nil {
		return err
	}
	_, err = m.db.Exec(`CREATE TABLE IF NOT EXISTS exports (
		duration TEXT,
		ops INTEGER,
		gage TEXT,
		filename TEXT,
		content BLOB,
		PRIMARY KEY (duration, ops, gage, filename)
	)`)
	if err != nil {
		return err
	}
	Logger.Infof("initialized results mirror")
	return nil
}

func (m *ResultsMirror) RecordCase(c BenchmarkCase, timings map[string]*Timing, resultDir string) error {
	tx, err := m.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for command, timing := range timings {
		measurements := map[string]float64{
			"mean":   timing.Mean,
			"stddev": timing.Stddev,
			"median": timing.Median,
			"min":    timing.Min,
			"max":    timing.Max,
		}
		for measurement, value := range measurements {
			_, err = tx.Exec(
				"INSERT OR REPLACE INTO measurements VALUES (?, ?, ?, ?, ?, ?, ?)",
				c.Duration, c.Ops, c.Gage, command, measurement, float64(len(timing.Times)), value,
			)
			if err != nil {
				return err
			}
		}
	}
	for _, filename := range exportNames {
		data, err := os.ReadFile(filepath.Join(resultDir, filename))
		if err != nil {
			return err
		}
		_, err = tx.Exec(
			"INSERT OR REPLACE INTO exports VALUES (?, ?, ?, ?, ?)",
			c.Duration, c.Ops, c.Gage, filename, data,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
