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

// Package auth manages the session of the signed in user and supplies the
// credentials for the requests to the server
package auth

import (
	"strconv"
	"sync"

	"github.com/notable/notable/pkg/cli/consts"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/pkg/errors"
)

// User is the signed in user
type User struct {
	ID       int
	Username string
	Name     string
}

// Session holds the credentials and the identity of the signed in user. It is
// populated at login, cleared at logout and safe for concurrent use.
type Session struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	user         *User
}

// NewSession returns a session for the given user and tokens
func NewSession(user User, accessToken, refreshToken string) *Session {
	return &Session{
		accessToken:  accessToken,
		refreshToken: refreshToken,
		user:         &user,
	}
}

// LoadSession reads the persisted session. The returned session is empty if
// nobody is signed in.
func LoadSession(db *database.DB) (*Session, error) {
	vals := map[string]string{}
	for _, key := range consts.SessionKeys {
		var val string
		err := database.GetSystem(db, key, &val)
		if errors.Is(err, database.ErrSystemNotFound) {
			continue
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading %s", key)
		}

		vals[key] = val
	}

	s := &Session{
		accessToken:  vals[consts.SystemAccessToken],
		refreshToken: vals[consts.SystemRefreshToken],
	}

	if raw, ok := vals[consts.SystemUserID]; ok && s.accessToken != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing the user id '%s'", raw)
		}

		s.user = &User{
			ID:       id,
			Username: vals[consts.SystemUsername],
			Name:     vals[consts.SystemUserName],
		}
	}

	return s, nil
}

// User returns the signed in user. The second return value is false if nobody is signed in.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return User{}, false
	}

	return *s.user, true
}

// UserID returns the id of the signed in user
func (s *Session) UserID() (int, bool) {
	u, ok := s.User()
	return u.ID, ok
}

// Tokens returns the access token and the refresh token
func (s *Session) Tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.accessToken, s.refreshToken
}

// Save persists the session
func (s *Session) Save(db *database.DB) error {
	s.mu.RLock()
	vals := map[string]string{
		consts.SystemAccessToken:  s.accessToken,
		consts.SystemRefreshToken: s.refreshToken,
	}
	if s.user != nil {
		vals[consts.SystemUserID] = strconv.Itoa(s.user.ID)
		vals[consts.SystemUsername] = s.user.Username
		vals[consts.SystemUserName] = s.user.Name
	}
	s.mu.RUnlock()

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	for _, key := range consts.SessionKeys {
		val, ok := vals[key]
		if !ok {
			continue
		}

		if err := database.UpsertSystem(tx, key, val); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "saving %s", key)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing the session")
	}

	return nil
}

// setAccessToken replaces the access token and persists it
func (s *Session) setAccessToken(db *database.DB, token string) error {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()

	if err := database.UpsertSystem(db, consts.SystemAccessToken, token); err != nil {
		return errors.Wrap(err, "saving the access token")
	}

	return nil
}

// replace swaps the content of the session with the given one
func (s *Session) replace(o *Session) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = o.accessToken
	s.refreshToken = o.refreshToken
	s.user = o.user
}

// Clear signs the user out locally and deletes the persisted session
func (s *Session) Clear(db *database.DB) error {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.mu.Unlock()

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	for _, key := range consts.SessionKeys {
		if err := database.DeleteSystem(tx, key); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "deleting %s", key)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing")
	}

	return nil
}
