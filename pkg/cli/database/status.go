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
	"database/sql/driver"

	"github.com/pkg/errors"
)

// SyncStatus is the synchronization state of a note
type SyncStatus int

const (
	// StatusSynced means the note matches the last known server state
	StatusSynced SyncStatus = iota + 1
	// StatusPendingCreate means the server has never seen the note
	StatusPendingCreate
	// StatusPendingUpdate means the note was edited after the last sync
	StatusPendingUpdate
	// StatusPendingDelete means the note was deleted locally and the server still has it
	StatusPendingDelete
	// StatusSyncError is reserved for notes whose sync is no longer retried.
	// No transition currently enters it.
	StatusSyncError
)

var statusNames = map[SyncStatus]string{
	StatusSynced:        "SYNCED",
	StatusPendingCreate: "PENDING_CREATE",
	StatusPendingUpdate: "PENDING_UPDATE",
	StatusPendingDelete: "PENDING_DELETE",
	StatusSyncError:     "SYNC_ERROR",
}

// Statuses lists every sync status in the order of the sync protocol
var Statuses = []SyncStatus{
	StatusSynced,
	StatusPendingCreate,
	StatusPendingUpdate,
	StatusPendingDelete,
	StatusSyncError,
}

// ErrInvalidStatus is an error for an unknown sync status
var ErrInvalidStatus = errors.New("invalid sync status")

// ParseSyncStatus returns the status with the given canonical name
func ParseSyncStatus(s string) (SyncStatus, error) {
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}

	return 0, errors.Wrapf(ErrInvalidStatus, "'%s'", s)
}

// String returns the canonical name of the status
func (s SyncStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return "UNKNOWN"
}

// Valid checks if the status is one of the known statuses
func (s SyncStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// IsPending checks if the note has local work the server has not seen
func (s SyncStatus) IsPending() bool {
	return s == StatusPendingCreate || s == StatusPendingUpdate || s == StatusPendingDelete
}

// Value implements driver.Valuer
func (s SyncStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, errors.Wrapf(ErrInvalidStatus, "%d", int(s))
	}

	return statusNames[s], nil
}

// Scan implements sql.Scanner
func (s *SyncStatus) Scan(src interface{}) error {
	var name string

	switch v := src.(type) {
	case string:
		name = v
	case []byte:
		name = string(v)
	default:
		return errors.Errorf("scanning sync status from %T", src)
	}

	st, err := ParseSyncStatus(name)
	if err != nil {
		return err
	}

	*s = st
	return nil
}
