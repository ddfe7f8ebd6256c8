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

package app

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/notable/notable/pkg/assert"
	"github.com/notable/notable/pkg/server/database"
	"github.com/notable/notable/pkg/server/testutils"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		a := NewTest(db)

		user, err := a.CreateUser(RegisterParams{
			Username:  " alice ",
			Password:  "pass1234",
			Email:     "alice@example.com",
			FirstName: "Alice",
		})
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		var userCount int64
		var userRecord database.User
		testutils.MustExec(t, db.Model(&database.User{}).Count(&userCount), "counting user")
		testutils.MustExec(t, db.First(&userRecord), "finding user")

		assert.Equal(t, userCount, int64(1), "user count mismatch")
		assert.Equal(t, userRecord.ID, user.ID, "id mismatch")
		assert.Equal(t, userRecord.Username, "alice", "username should be trimmed")
		assert.Equal(t, userRecord.FirstName, "Alice", "first name mismatch")

		passwordErr := bcrypt.CompareHashAndPassword([]byte(userRecord.Password), []byte("pass1234"))
		assert.Equal(t, passwordErr, nil, "Password mismatch")
	})

	t.Run("duplicate username", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		testutils.SetupUserData(db, "alice", "somepassword")

		a := NewTest(db)
		_, err := a.CreateUser(RegisterParams{Username: "Alice", Password: "newpassword", Email: "a@example.com"})

		assert.Equal(t, err, ErrDuplicateUsername, "error mismatch")

		var userCount int64
		testutils.MustExec(t, db.Model(&database.User{}).Count(&userCount), "counting user")
		assert.Equal(t, userCount, int64(1), "user count mismatch")
	})

	t.Run("registration disabled", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		a := NewTest(db)
		a.DisableRegistration = true

		_, err := a.CreateUser(RegisterParams{Username: "alice", Password: "pass1234", Email: "a@example.com"})
		assert.Equal(t, err, ErrRegistrationDisabled, "error mismatch")
	})
}

func TestCreateUser_validation(t *testing.T) {
	testCases := []struct {
		name   string
		params RegisterParams
	}{
		{
			name:   "missing username",
			params: RegisterParams{Password: "pass1234", Email: "a@example.com"},
		},
		{
			name:   "username with a space",
			params: RegisterParams{Username: "alice l", Password: "pass1234", Email: "a@example.com"},
		},
		{
			name:   "short password",
			params: RegisterParams{Username: "alice", Password: "pass", Email: "a@example.com"},
		},
		{
			name:   "malformed email",
			params: RegisterParams{Username: "alice", Password: "pass1234", Email: "alice"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := testutils.InitMemoryDB(t)
			a := NewTest(db)

			_, err := a.CreateUser(tc.params)

			var verr validation.Errors
			assert.Equal(t, errors.As(err, &verr), true, "should be a validation error")
		})
	}
}

func TestAuthenticate(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	alice := testutils.SetupUserData(db, "alice", "pass1234")
	a := NewTest(db)

	testCases := []struct {
		username    string
		password    string
		expectedErr error
	}{
		{"alice", "pass1234", nil},
		{"alice", "wrong", ErrLoginInvalid},
		{"bob", "pass1234", ErrLoginInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.username+"/"+tc.password, func(t *testing.T) {
			user, err := a.Authenticate(tc.username, tc.password)

			assert.Equal(t, err, tc.expectedErr, "error mismatch")
			if tc.expectedErr == nil {
				assert.Equal(t, user.ID, alice.ID, "user mismatch")
			}
		})
	}
}

func TestChangePassword(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		alice := testutils.SetupUserData(db, "alice", "pass1234")
		a := NewTest(db)

		pair, err := a.SignIn(alice)
		if err != nil {
			t.Fatal(errors.Wrap(err, "signing in"))
		}

		if err := a.ChangePassword(alice, "pass1234", "newpass1234"); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		_, err = a.Authenticate("alice", "newpass1234")
		assert.Equal(t, err, nil, "new password should authenticate")
		_, err = a.Authenticate("alice", "pass1234")
		assert.Equal(t, err, ErrLoginInvalid, "old password should not authenticate")

		_, err = a.RefreshAccessToken(pair.Refresh)
		assert.Equal(t, err, ErrInvalidToken, "existing refresh tokens should be revoked")
	})

	t.Run("wrong current password", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		alice := testutils.SetupUserData(db, "alice", "pass1234")
		a := NewTest(db)

		err := a.ChangePassword(alice, "wrong", "newpass1234")
		assert.Equal(t, err, ErrPasswordIncorrect, "error mismatch")
	})

	t.Run("short new password", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		alice := testutils.SetupUserData(db, "alice", "pass1234")
		a := NewTest(db)

		err := a.ChangePassword(alice, "pass1234", "short")

		var verr validation.Errors
		assert.Equal(t, errors.As(err, &verr), true, "should be a validation error")
	})
}

func TestRemoveUser(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	alice := testutils.SetupUserData(db, "alice", "pass1234")
	bob := testutils.SetupUserData(db, "bob", "pass1234")
	a := NewTest(db)

	testutils.SetupNoteData(db, alice, "Groceries", "milk", a.Clock.Now())
	testutils.SetupNoteData(db, bob, "Reading", "", a.Clock.Now())
	if _, err := a.SignIn(alice); err != nil {
		t.Fatal(errors.Wrap(err, "signing in"))
	}

	if err := a.RemoveUser("alice"); err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	var userCount, noteCount, tokenCount int64
	testutils.MustExec(t, db.Model(&database.User{}).Count(&userCount), "counting users")
	testutils.MustExec(t, db.Model(&database.Note{}).Count(&noteCount), "counting notes")
	testutils.MustExec(t, db.Model(&database.Token{}).Count(&tokenCount), "counting tokens")

	assert.Equal(t, userCount, int64(1), "user count mismatch")
	assert.Equal(t, noteCount, int64(1), "only the other user's note should remain")
	assert.Equal(t, tokenCount, int64(0), "token count mismatch")

	assert.Equal(t, a.RemoveUser("alice"), ErrNotFound, "removing twice")
}
