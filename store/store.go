/*
Copyright © 2024 the IAMData authors.
This file is part of IAMData.

IAMData is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

IAMData is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with IAMData.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package store is a parameter store for model scenarios backed by a
// SQLite database. Each scenario holds parameter data, sets and metadata.
// Writes happen in transactions that are recorded in a commit log;
// a row written with the same index as an existing row replaces it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	// Register the sqlite3 database driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/iamdata/param"
)

const schema = `
CREATE TABLE IF NOT EXISTS par (
	scenario TEXT NOT NULL,
	name TEXT NOT NULL,
	key TEXT NOT NULL,
	idx TEXT NOT NULL,
	value REAL,
	unit TEXT,
	PRIMARY KEY (scenario, name, key)
);
CREATE TABLE IF NOT EXISTS sets (
	scenario TEXT NOT NULL,
	name TEXT NOT NULL,
	member TEXT NOT NULL,
	PRIMARY KEY (scenario, name, member)
);
CREATE TABLE IF NOT EXISTS meta (
	scenario TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT,
	PRIMARY KEY (scenario, key)
);
CREATE TABLE IF NOT EXISTS commits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scenario TEXT NOT NULL,
	comment TEXT,
	time TEXT
);`

// Store holds the data of one scenario in a SQLite file.
type Store struct {
	// Scenario is the name of the scenario that all operations act on.
	Scenario string

	// Log receives progress messages. It defaults to the standard logger.
	Log logrus.FieldLogger

	db *sql.DB
}

// Open opens (creating if necessary) the store at path for scenario.
func Open(path, scenario string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %v", path, err)
	}
	// A single connection keeps ":memory:" databases consistent.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating schema: %v", err)
	}
	return &Store{Scenario: scenario, Log: logrus.StandardLogger(), db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Tx is a transaction against a Store.
type Tx struct {
	ctx      context.Context
	tx       *sql.Tx
	scenario string
}

// Transact runs fn in a transaction. If fn returns an error the
// transaction is rolled back; otherwise it is committed and recorded in
// the commit log with comment.
func (s *Store) Transact(ctx context.Context, comment string, fn func(*Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: beginning transaction: %v", err)
	}
	if err := fn(&Tx{ctx: ctx, tx: tx, scenario: s.Scenario}); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO commits (scenario, comment, time) VALUES (?, ?, ?)`,
		s.Scenario, comment, time.Now().UTC().Format(time.RFC3339)); err != nil {
		tx.Rollback()
		return fmt.Errorf("store: recording commit: %v", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: committing %q: %v", comment, err)
	}
	s.Log.WithFields(logrus.Fields{"scenario": s.Scenario, "comment": comment}).Info("committed")
	return nil
}

// AddPar adds the rows of d, replacing any rows with the same index.
func (t *Tx) AddPar(d *param.Data) error {
	if err := d.Complete(); err != nil {
		return fmt.Errorf("store: adding parameter: %v", err)
	}
	stmt, err := t.tx.PrepareContext(t.ctx, `INSERT INTO par (scenario, name, key, idx, value, unit) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (scenario, name, key) DO UPDATE SET idx = excluded.idx, value = excluded.value, unit = excluded.unit`)
	if err != nil {
		return fmt.Errorf("store: adding %s: %v", d.Name, err)
	}
	defer stmt.Close()
	for _, r := range d.Rows {
		idx, err := json.Marshal(r.Index)
		if err != nil {
			return fmt.Errorf("store: adding %s: %v", d.Name, err)
		}
		var v interface{} = r.Value
		if math.IsNaN(r.Value) {
			v = nil
		}
		if _, err := stmt.ExecContext(t.ctx, t.scenario, d.Name, d.Key(r), string(idx), v, r.Unit); err != nil {
			return fmt.Errorf("store: adding %s: %v", d.Name, err)
		}
	}
	return nil
}

// RemovePar removes the rows with the same index as the rows of d.
func (t *Tx) RemovePar(d *param.Data) error {
	for _, r := range d.Rows {
		if _, err := t.tx.ExecContext(t.ctx, `DELETE FROM par WHERE scenario = ? AND name = ? AND key = ?`,
			t.scenario, d.Name, d.Key(r)); err != nil {
			return fmt.Errorf("store: removing %s: %v", d.Name, err)
		}
	}
	return nil
}

// AddSet adds members to set name.
func (t *Tx) AddSet(name string, members ...string) error {
	for _, m := range members {
		if _, err := t.tx.ExecContext(t.ctx, `INSERT OR IGNORE INTO sets (scenario, name, member) VALUES (?, ?, ?)`,
			t.scenario, name, m); err != nil {
			return fmt.Errorf("store: adding to set %s: %v", name, err)
		}
	}
	return nil
}

// SetMeta sets a metadata value.
func (t *Tx) SetMeta(key, value string) error {
	if _, err := t.tx.ExecContext(t.ctx, `INSERT INTO meta (scenario, key, value) VALUES (?, ?, ?)
		ON CONFLICT (scenario, key) DO UPDATE SET value = excluded.value`, t.scenario, key, value); err != nil {
		return fmt.Errorf("store: setting %s: %v", key, err)
	}
	return nil
}

// Par returns the rows of parameter name that match every filter.
// The result has no rows if the parameter has no data.
func (t *Tx) Par(name string, filters map[string][]string) (*param.Data, error) {
	return queryPar(t.ctx, t.tx, t.scenario, name, filters)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func queryPar(ctx context.Context, q querier, scenario, name string, filters map[string][]string) (*param.Data, error) {
	if _, ok := param.Dims[name]; !ok {
		return nil, fmt.Errorf("store: unknown parameter %q", name)
	}
	rows, err := q.QueryContext(ctx, `SELECT idx, value, unit FROM par WHERE scenario = ? AND name = ? ORDER BY rowid`, scenario, name)
	if err != nil {
		return nil, fmt.Errorf("store: reading %s: %v", name, err)
	}
	defer rows.Close()
	d := &param.Data{Name: name}
	for rows.Next() {
		var idx string
		var v sql.NullFloat64
		var unit sql.NullString
		if err := rows.Scan(&idx, &v, &unit); err != nil {
			return nil, fmt.Errorf("store: reading %s: %v", name, err)
		}
		r := param.Row{Value: math.NaN(), Unit: unit.String}
		if v.Valid {
			r.Value = v.Float64
		}
		if err := json.Unmarshal([]byte(idx), &r.Index); err != nil {
			return nil, fmt.Errorf("store: reading %s: %v", name, err)
		}
		if param.Match(r, filters) {
			d.Rows = append(d.Rows, r)
		}
	}
	return d, rows.Err()
}

// Par returns the rows of parameter name that match every filter.
func (s *Store) Par(ctx context.Context, name string, filters map[string][]string) (*param.Data, error) {
	return queryPar(ctx, s.db, s.Scenario, name, filters)
}

// Set returns the members of set name in insertion order.
func (s *Store) Set(ctx context.Context, name string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT member FROM sets WHERE scenario = ? AND name = ? ORDER BY rowid`, s.Scenario, name)
	if err != nil {
		return nil, fmt.Errorf("store: reading set %s: %v", name, err)
	}
	defer rows.Close()
	var o []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("store: reading set %s: %v", name, err)
		}
		o = append(o, m)
	}
	return o, rows.Err()
}

// Meta returns a metadata value, or an error if it is not set.
func (s *Store) Meta(ctx context.Context, key string) (string, error) {
	var v sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE scenario = ? AND key = ?`, s.Scenario, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("store: metadata %q not set for scenario %s", key, s.Scenario)
	} else if err != nil {
		return "", fmt.Errorf("store: reading metadata %q: %v", key, err)
	}
	return v.String, nil
}

// Info returns the structure of the scenario: its nodes (excluding
// "World"), its years and its first model year.
func (s *Store) Info(ctx context.Context) (*param.Info, error) {
	nodes, err := s.Set(ctx, "node")
	if err != nil {
		return nil, err
	}
	info := new(param.Info)
	for _, n := range nodes {
		if n != "World" {
			info.Nodes = append(info.Nodes, n)
		}
	}
	years, err := s.Set(ctx, "year")
	if err != nil {
		return nil, err
	}
	for _, y := range years {
		v, err := strconv.Atoi(y)
		if err != nil {
			return nil, fmt.Errorf("store: invalid year %q: %v", y, err)
		}
		info.Years = append(info.Years, v)
	}
	sort.Ints(info.Years)
	y0, err := s.Meta(ctx, "firstmodelyear")
	if err != nil {
		return nil, err
	}
	if info.Y0, err = strconv.Atoi(y0); err != nil {
		return nil, fmt.Errorf("store: invalid first model year %q: %v", y0, err)
	}
	return info, nil
}

// Commit is an entry in the commit log.
type Commit struct {
	ID      int64
	Comment string
	Time    string
}

// Commits returns the commit log of the scenario, oldest first.
func (s *Store) Commits(ctx context.Context) ([]Commit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, comment, time FROM commits WHERE scenario = ? ORDER BY id`, s.Scenario)
	if err != nil {
		return nil, fmt.Errorf("store: reading commits: %v", err)
	}
	defer rows.Close()
	var o []Commit
	for rows.Next() {
		var c Commit
		if err := rows.Scan(&c.ID, &c.Comment, &c.Time); err != nil {
			return nil, fmt.Errorf("store: reading commits: %v", err)
		}
		o = append(o, c)
	}
	return o, rows.Err()
}

// AddData adds every parameter in data in one transaction. If dryRun is
// true, the data are only counted and logged.
func (s *Store) AddData(ctx context.Context, comment string, data map[string]*param.Data, dryRun bool) error {
	for _, name := range param.Names(data) {
		s.Log.WithFields(logrus.Fields{"parameter": name, "rows": data[name].Len(), "dry_run": dryRun}).Info("adding data")
	}
	if dryRun {
		return nil
	}
	return s.Transact(ctx, comment, func(tx *Tx) error {
		for _, name := range param.Names(data) {
			if err := tx.AddPar(data[name]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Init sets up the structure of the scenario: node and year sets, and the
// first model year.
func (s *Store) Init(ctx context.Context, info *param.Info) error {
	return s.Transact(ctx, "initialize scenario structure", func(tx *Tx) error {
		if err := tx.AddSet("node", append([]string{"World"}, info.Nodes...)...); err != nil {
			return err
		}
		if err := tx.AddSet("year", param.YearLabels(info.Years)...); err != nil {
			return err
		}
		return tx.SetMeta("firstmodelyear", strconv.Itoa(info.Y0))
	})
}
