/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package database provides the local note store of the client
package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	// sqlite driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DB contains information about the current database connection. A DB
// returned by Begin shares the connection and the change broker of its parent
// and routes every statement through the transaction.
type DB struct {
	Conn *sql.DB
	Tx   *sql.Tx

	broker  *Broker
	pending []Change
}

// Open initializes a new connection to the sqlite database at the given path
func Open(dbPath string) (*DB, error) {
	if !strings.HasPrefix(dbPath, "file:") {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating database directory at %s", dir)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening db connection")
	}

	// foreground commands and background passes share one connection so that
	// concurrent writers never observe SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	return &DB{Conn: conn, broker: NewBroker()}, nil
}

// Begin begins a transaction
func (d *DB) Begin() (*DB, error) {
	tx, err := d.Conn.Begin()
	if err != nil {
		return nil, err
	}

	return &DB{Conn: d.Conn, Tx: tx, broker: d.broker}, nil
}

// Commit commits a transaction and publishes the changes it made
func (d *DB) Commit() error {
	if d.Tx == nil {
		return errors.New("transaction not started")
	}

	if err := d.Tx.Commit(); err != nil {
		return err
	}

	for _, c := range d.pending {
		d.broker.Publish(c)
	}
	d.pending = nil

	return nil
}

// Rollback rolls back a transaction and drops the changes it would have published
func (d *DB) Rollback() error {
	if d.Tx == nil {
		return errors.New("transaction not started")
	}

	d.pending = nil

	return d.Tx.Rollback()
}

// Exec executes a sql
func (d *DB) Exec(query string, values ...interface{}) (sql.Result, error) {
	if d.Tx != nil {
		return d.Tx.Exec(query, values...)
	}

	return d.Conn.Exec(query, values...)
}

// Query queries rows
func (d *DB) Query(query string, values ...interface{}) (*sql.Rows, error) {
	if d.Tx != nil {
		return d.Tx.Query(query, values...)
	}

	return d.Conn.Query(query, values...)
}

// QueryRow queries a row
func (d *DB) QueryRow(query string, values ...interface{}) *sql.Row {
	if d.Tx != nil {
		return d.Tx.QueryRow(query, values...)
	}

	return d.Conn.QueryRow(query, values...)
}

// Close closes a db connection and the change broker
func (d *DB) Close() error {
	d.broker.Close()

	return d.Conn.Close()
}

// Watch subscribes to the changes made to the notes of the given user
func (d *DB) Watch(userID int) (<-chan Change, func()) {
	return d.broker.Subscribe(userID)
}

func (d *DB) publish(c Change) {
	if d.Tx != nil {
		d.pending = append(d.pending, c)
		return
	}

	d.broker.Publish(c)
}
