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

package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/notable/notable/pkg/assert"
	"github.com/notable/notable/pkg/server/database"
	"github.com/notable/notable/pkg/server/testutils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T, path string) *gorm.DB {
	db := database.Open(database.DriverSQLite, path, "")
	database.InitSchema(db)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	return db
}

func TestUserCreateCmd(t *testing.T) {
	tmpDB := filepath.Join(t.TempDir(), "test.db")

	userCreateCmd([]string{"--dbPath", tmpDB, "--username", "alice", "--email", "alice@example.com", "--password", "password123", "--firstName", "Alice"})

	db := openTestDB(t, tmpDB)
	defer database.Close(db)

	var count int64
	testutils.MustExec(t, db.Model(&database.User{}).Count(&count), "counting users")
	assert.Equal(t, count, int64(1), "should have 1 user")

	var user database.User
	testutils.MustExec(t, db.Where("username = ?", "alice").First(&user), "finding user")
	assert.Equal(t, user.Email, "alice@example.com", "email mismatch")
	assert.Equal(t, user.FirstName, "Alice", "first name mismatch")

	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123"))
	assert.Equal(t, err, nil, "password mismatch")
}

func TestUserRemoveCmd(t *testing.T) {
	testCases := []struct {
		answer        string
		expectedUsers int64
		expectedNotes int64
	}{
		{answer: "y\n", expectedUsers: 0, expectedNotes: 0},
		{answer: "n\n", expectedUsers: 1, expectedNotes: 1},
	}

	for _, tc := range testCases {
		t.Run(strings.TrimSpace(tc.answer), func(t *testing.T) {
			tmpDB := filepath.Join(t.TempDir(), "test.db")

			db := openTestDB(t, tmpDB)
			user := testutils.SetupUserData(db, "alice", "password123")
			testutils.SetupNoteData(db, user, "Groceries", "milk", user.CreatedAt)
			database.Close(db)

			userRemoveCmd([]string{"--dbPath", tmpDB, "--username", "alice"}, strings.NewReader(tc.answer))

			db2 := openTestDB(t, tmpDB)
			defer database.Close(db2)

			var userCount, noteCount int64
			testutils.MustExec(t, db2.Model(&database.User{}).Count(&userCount), "counting users")
			testutils.MustExec(t, db2.Model(&database.Note{}).Count(&noteCount), "counting notes")
			assert.Equal(t, userCount, tc.expectedUsers, "user count mismatch")
			assert.Equal(t, noteCount, tc.expectedNotes, "note count mismatch")
		})
	}
}
