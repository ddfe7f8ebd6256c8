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

	"github.com/pkg/errors"
)

// ErrSystemNotFound is an error for a missing system key
var ErrSystemNotFound = errors.New("system key not found")

// GetSystem scans the value of the given system key into dest
func GetSystem(db *DB, key string, dest interface{}) error {
	err := db.QueryRow("SELECT value FROM system WHERE key = ?", key).Scan(dest)
	if err == sql.ErrNoRows {
		return errors.Wrapf(ErrSystemNotFound, "key '%s'", key)
	} else if err != nil {
		return errors.Wrapf(err, "finding system config with key '%s'", key)
	}

	return nil
}

// UpsertSystem sets the value of the given system key, creating it if needed
func UpsertSystem(db *DB, key, val string) error {
	_, err := db.Exec(`INSERT INTO system (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, val)
	if err != nil {
		return errors.Wrapf(err, "saving system config with key '%s'", key)
	}

	return nil
}

// DeleteSystem deletes the given system key. It is not an error if the key does not exist.
func DeleteSystem(db *DB, key string) error {
	if _, err := db.Exec("DELETE FROM system WHERE key = ?", key); err != nil {
		return errors.Wrapf(err, "deleting system config with key '%s'", key)
	}

	return nil
}
