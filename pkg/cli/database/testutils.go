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

package database

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MustScan scans the given row and fails a test in case of any errors
func MustScan(t *testing.T, message string, row *sql.Row, args ...interface{}) {
	t.Helper()

	err := row.Scan(args...)
	if err != nil {
		t.Fatal(errors.Wrap(errors.Wrap(err, "scanning a row"), message))
	}
}

// MustExec executes the given SQL query and fails a test if an error occurs
func MustExec(t *testing.T, message string, db *DB, query string, args ...interface{}) sql.Result {
	t.Helper()

	result, err := db.Exec(query, args...)
	if err != nil {
		t.Fatal(errors.Wrap(errors.Wrap(err, "executing sql"), message))
	}

	return result
}

// MustInsertNote inserts the given note and fails a test if an error occurs
func MustInsertNote(t *testing.T, db *DB, n Note) Note {
	t.Helper()

	id, err := InsertNote(db, n)
	if err != nil {
		t.Fatal(errors.Wrap(err, "inserting a test note"))
	}

	n.ID = id
	return n
}

// MustGetNote returns the note with the given id and fails a test if it cannot be found
func MustGetNote(t *testing.T, db *DB, id int) Note {
	t.Helper()

	n, err := NoteByID(db, id)
	if err != nil {
		t.Fatal(errors.Wrapf(err, "getting test note %d", id))
	}

	return n
}

// CountNotes returns the number of rows in the notes table
func CountNotes(t *testing.T, db *DB) int {
	t.Helper()

	var count int
	MustScan(t, "counting notes", db.QueryRow("SELECT count(*) FROM notes"), &count)

	return count
}

// SyncedNote builds a note the server knows by the given id
func SyncedNote(userID, serverID int, title, description string, ts time.Time) Note {
	return Note{
		ID:          serverID,
		ServerID:    IntPtr(serverID),
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		Status:      StatusSynced,
	}
}

// InitTestMemoryDB initializes an in-memory test database with every migration applied
func InitTestMemoryDB(t *testing.T) *DB {
	t.Helper()

	db := InitTestMemoryDBRaw(t)
	if _, err := Migrate(db); err != nil {
		t.Fatal(errors.Wrap(err, "migrating the test database"))
	}

	return db
}

// InitTestMemoryDBRaw initializes an in-memory test database without running migrations
func InitTestMemoryDBRaw(t *testing.T) *DB {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := Open(dbName)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening in-memory database"))
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// InitTestFileDB initializes a file-based test database with every migration applied
func InitTestFileDB(t *testing.T) (*DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), fmt.Sprintf("notable-%s.db", uuid.NewString()))

	db, err := Open(dbPath)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening database"))
	}
	if _, err := Migrate(db); err != nil {
		t.Fatal(errors.Wrap(err, "migrating the test database"))
	}

	t.Cleanup(func() { db.Close() })
	return db, dbPath
}
