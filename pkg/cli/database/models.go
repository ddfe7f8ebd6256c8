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
	"time"

	"github.com/pkg/errors"
)

// TimeLayout is the layout of the timestamps stored in the database. It is
// fixed-width so that the lexical order of the column is the chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Note represents a note
type Note struct {
	ID              int        `json:"id"`
	ServerID        *int       `json:"server_id"`
	UserID          int        `json:"user_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CreatorName     string     `json:"creator_name"`
	CreatorUsername string     `json:"creator_username"`
	Deleted         bool       `json:"deleted"`
	Status          SyncStatus `json:"sync_status"`
}

// NewLocalNote constructs a note created on this device that the server has not seen yet
func NewLocalNote(id, userID int, title, description string, ts time.Time) Note {
	return Note{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		Status:      StatusPendingCreate,
	}
}

// HasServerID checks if the server has assigned an id to the note
func (n Note) HasServerID() bool {
	return n.ServerID != nil
}

// IntPtr returns a pointer to the given server id
func IntPtr(i int) *int {
	return &i
}

var (
	// ErrNoteNotFound is an error for a missing note
	ErrNoteNotFound = errors.New("note not found")
	// ErrDuplicateNote is an error for a note whose id or server id is already stored
	ErrDuplicateNote = errors.New("note already exists")
	// ErrInvalidTransition is an error for a note whose status contradicts its server id or deletion
	ErrInvalidTransition = errors.New("sync status contradicts the note state")
	// ErrInvalidID is an error for a zero note id
	ErrInvalidID = errors.New("invalid note id")
)

// validate checks the invariants that the store enforces on every write
func (n Note) validate() error {
	if n.ID == 0 {
		return ErrInvalidID
	}
	if !n.Status.Valid() {
		return errors.Wrapf(ErrInvalidStatus, "note %d", n.ID)
	}
	if !n.HasServerID() && (n.Status == StatusPendingUpdate || n.Status == StatusPendingDelete) {
		return errors.Wrapf(ErrInvalidTransition, "note %d is %s", n.ID, n.Status)
	}
	if n.Deleted && n.Status != StatusPendingDelete {
		return errors.Wrapf(ErrInvalidTransition, "deleted note %d is %s", n.ID, n.Status)
	}

	return nil
}

// FormatTime formats the given time for storage
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing timestamp '%s'", s)
	}

	return t, nil
}
