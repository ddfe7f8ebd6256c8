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
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const noteColumns = `id, server_id, user_id, title, description, created_at, updated_at,
	creator_name, creator_username, deleted, sync_status`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(s scanner) (Note, error) {
	var n Note
	var createdAt, updatedAt string

	if err := s.Scan(&n.ID, &n.ServerID, &n.UserID, &n.Title, &n.Description, &createdAt, &updatedAt,
		&n.CreatorName, &n.CreatorUsername, &n.Deleted, &n.Status); err != nil {
		return n, err
	}

	var err error
	if n.CreatedAt, err = ParseTime(createdAt); err != nil {
		return n, err
	}
	if n.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return n, err
	}

	return n, nil
}

func queryNotes(db *DB, query string, args ...interface{}) ([]Note, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying notes")
	}
	defer rows.Close()

	notes := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning a note")
		}

		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating notes")
	}

	return notes, nil
}

// NotesForUser returns the notes of the given user that are not deleted, most
// recently updated first
func NotesForUser(db *DB, userID int) ([]Note, error) {
	notes, err := queryNotes(db, `SELECT `+noteColumns+` FROM notes
		WHERE user_id = ? AND deleted = false
		ORDER BY updated_at DESC, id DESC`, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "getting notes of user %d", userID)
	}

	return notes, nil
}

// NoteByID returns the note with the given local id
func NoteByID(db *DB, id int) (Note, error) {
	row := db.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)

	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return Note{}, errors.Wrapf(ErrNoteNotFound, "id %d", id)
	} else if err != nil {
		return Note{}, errors.Wrapf(err, "finding note %d", id)
	}

	return n, nil
}

// NoteByServerID returns the note of the given user that the server knows by the given id
func NoteByServerID(db *DB, userID, serverID int) (Note, error) {
	row := db.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE user_id = ? AND server_id = ?`, userID, serverID)

	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return Note{}, errors.Wrapf(ErrNoteNotFound, "server id %d", serverID)
	} else if err != nil {
		return Note{}, errors.Wrapf(err, "finding note with server id %d", serverID)
	}

	return n, nil
}

// NextLocalID returns an id strictly less than every existing negative id, or -1
// if there is none
func NextLocalID(db *DB) (int, error) {
	var id int
	if err := db.QueryRow("SELECT COALESCE(MIN(id), 0) - 1 FROM notes WHERE id < 0").Scan(&id); err != nil {
		return 0, errors.Wrap(err, "computing the next local id")
	}

	return id, nil
}

func isUniqueViolation(err error) bool {
	var sqlErr sqlite3.Error
	if !errors.As(err, &sqlErr) {
		return false
	}

	return sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// InsertNote inserts the given note and returns its id. A note with a zero id is
// given the next local id in the same statement.
func InsertNote(db *DB, n Note) (int, error) {
	allocate := n.ID == 0
	if allocate {
		n.ID = -1 // satisfies validate; the statement allocates the real id
	}
	if err := n.validate(); err != nil {
		return 0, err
	}

	idExpr := "?"
	args := []interface{}{n.ID}
	if allocate {
		idExpr = "(SELECT COALESCE(MIN(id), 0) - 1 FROM notes WHERE id < 0)"
		args = nil
	}

	args = append(args, n.ServerID, n.UserID, n.Title, n.Description, FormatTime(n.CreatedAt), FormatTime(n.UpdatedAt),
		n.CreatorName, n.CreatorUsername, n.Deleted, n.Status)

	res, err := db.Exec(`INSERT INTO notes (`+noteColumns+`)
		VALUES (`+idExpr+`, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if isUniqueViolation(err) {
		return 0, errors.Wrapf(ErrDuplicateNote, "inserting note %d for user %d", n.ID, n.UserID)
	} else if err != nil {
		return 0, errors.Wrapf(err, "inserting note for user %d", n.UserID)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "getting the inserted id")
	}

	db.publish(Change{UserID: n.UserID, NoteID: int(id), Kind: ChangeInsert})

	return int(id), nil
}

// UpdateNote overwrites the stored note having the id of the given note
func UpdateNote(db *DB, n Note) error {
	if err := n.validate(); err != nil {
		return err
	}

	res, err := db.Exec(`UPDATE notes SET server_id = ?, user_id = ?, title = ?, description = ?,
		created_at = ?, updated_at = ?, creator_name = ?, creator_username = ?, deleted = ?, sync_status = ?
		WHERE id = ?`,
		n.ServerID, n.UserID, n.Title, n.Description, FormatTime(n.CreatedAt), FormatTime(n.UpdatedAt),
		n.CreatorName, n.CreatorUsername, n.Deleted, n.Status, n.ID)
	if err != nil {
		return errors.Wrapf(err, "updating note %d", n.ID)
	}

	if err := mustAffect(res, n.ID); err != nil {
		return err
	}

	db.publish(Change{UserID: n.UserID, NoteID: n.ID, Kind: ChangeUpdate})

	return nil
}

// SoftDeleteNote marks the note deleted with the given status, hiding it from listings
func SoftDeleteNote(db *DB, id int, status SyncStatus, ts time.Time) error {
	n, err := NoteByID(db, id)
	if err != nil {
		return err
	}

	n.Deleted = true
	n.Status = status
	n.UpdatedAt = ts
	if err := n.validate(); err != nil {
		return err
	}

	res, err := db.Exec("UPDATE notes SET deleted = true, sync_status = ?, updated_at = ? WHERE id = ?",
		n.Status, FormatTime(n.UpdatedAt), id)
	if err != nil {
		return errors.Wrapf(err, "soft-deleting note %d", id)
	}
	if err := mustAffect(res, id); err != nil {
		return err
	}

	db.publish(Change{UserID: n.UserID, NoteID: id, Kind: ChangeUpdate})

	return nil
}

// HardDeleteNote permanently removes the note
func HardDeleteNote(db *DB, id int) error {
	var userID int
	err := db.QueryRow("DELETE FROM notes WHERE id = ? RETURNING user_id", id).Scan(&userID)
	if err == sql.ErrNoRows {
		return errors.Wrapf(ErrNoteNotFound, "id %d", id)
	} else if err != nil {
		return errors.Wrapf(err, "deleting note %d", id)
	}

	db.publish(Change{UserID: userID, NoteID: id, Kind: ChangeDelete})

	return nil
}

// DeleteAllNotesForUser permanently removes every note of the given user
func DeleteAllNotesForUser(db *DB, userID int) error {
	res, err := db.Exec("DELETE FROM notes WHERE user_id = ?", userID)
	if err != nil {
		return errors.Wrapf(err, "deleting notes of user %d", userID)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		db.publish(Change{UserID: userID, Kind: ChangeDelete})
	}

	return nil
}

// NotesNeedingSync returns the notes of the given user in the given status,
// least recently updated first
func NotesNeedingSync(db *DB, userID int, status SyncStatus) ([]Note, error) {
	notes, err := queryNotes(db, `SELECT `+noteColumns+` FROM notes
		WHERE user_id = ? AND sync_status = ?
		ORDER BY updated_at ASC, id DESC`, userID, status)
	if err != nil {
		return nil, errors.Wrapf(err, "getting %s notes of user %d", status, userID)
	}

	return notes, nil
}

// SearchNotes returns the notes of the given user whose title or description
// contains the query, ignoring case. The order is the one of NotesForUser.
func SearchNotes(db *DB, userID int, query string) ([]Note, error) {
	notes, err := NotesForUser(db, userID)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)

	ret := []Note{}
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Description), q) {
			ret = append(ret, n)
		}
	}

	return ret, nil
}

// CountNotesByStatus returns the number of notes of the given user in each status
func CountNotesByStatus(db *DB, userID int) (map[SyncStatus]int, error) {
	rows, err := db.Query("SELECT sync_status, count(*) FROM notes WHERE user_id = ? GROUP BY sync_status", userID)
	if err != nil {
		return nil, errors.Wrap(err, "counting notes")
	}
	defer rows.Close()

	ret := map[SyncStatus]int{}
	for rows.Next() {
		var st SyncStatus
		var count int
		if err := rows.Scan(&st, &count); err != nil {
			return nil, errors.Wrap(err, "scanning a count")
		}

		ret[st] = count
	}

	return ret, rows.Err()
}

func mustAffect(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "getting affected rows")
	}
	if n == 0 {
		return errors.Wrapf(ErrNoteNotFound, "id %d", id)
	}

	return nil
}
