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

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/notable/notable/pkg/assert"
	"github.com/notable/notable/pkg/cli/client"
	"github.com/notable/notable/pkg/cli/consts"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/clock"
	"github.com/pkg/errors"
)

type fakeRemote struct {
	refreshErr   error
	refreshCalls int
	signoutCalls int
	nextAccess   string
}

func (r *fakeRemote) Signin(ctx context.Context, username, password string) (client.TokenResp, error) {
	if password != "pass1234" {
		return client.TokenResp{}, client.ErrInvalidLogin
	}

	return client.TokenResp{Access: "access-1", Refresh: "refresh-1"}, nil
}

func (r *fakeRemote) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	r.refreshCalls++
	if r.refreshErr != nil {
		return "", r.refreshErr
	}

	return r.nextAccess, nil
}

func (r *fakeRemote) GetUserInfo(ctx context.Context, credential string) (client.UserInfo, error) {
	return client.UserInfo{ID: 7, Username: "alice", FirstName: "Alice", LastName: "Liddell"}, nil
}

func (r *fakeRemote) Signout(ctx context.Context, credential, refreshToken string) error {
	r.signoutCalls++
	return nil
}

func mustSignToken(t *testing.T, exp time.Time) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(errors.Wrap(err, "signing a token"))
	}

	return s
}

func setupAuthenticator(t *testing.T, access, refresh string, remote Remote) (*Authenticator, *database.DB, *clock.Mock) {
	t.Helper()

	db := database.InitTestMemoryDB(t)
	c := clock.NewMock()

	s := NewSession(User{ID: 7, Username: "alice", Name: "Alice"}, access, refresh)
	if err := s.Save(db); err != nil {
		t.Fatal(errors.Wrap(err, "saving the session"))
	}

	return New(db, s, remote, c), db, c
}

func TestCredential(t *testing.T) {
	c := clock.NewMock()
	fresh := mustSignToken(t, c.Now().Add(30*time.Minute))
	expiring := mustSignToken(t, c.Now().Add(2*time.Minute))

	testCases := []struct {
		name         string
		access       string
		refreshErr   error
		expected     string
		expectedErr  error
		refreshCalls int
	}{
		{
			name:         "valid token",
			access:       fresh,
			expected:     fresh,
			refreshCalls: 0,
		},
		{
			name:         "opaque token",
			access:       "opaque",
			expected:     "opaque",
			refreshCalls: 0,
		},
		{
			name:         "expiring token",
			access:       expiring,
			expected:     "access-2",
			refreshCalls: 1,
		},
		{
			name:         "expiring token while offline",
			access:       expiring,
			refreshErr:   &client.NetworkError{Err: errors.New("dial tcp")},
			expected:     expiring,
			refreshCalls: 1,
		},
		{
			name:         "expiring token rejected",
			access:       expiring,
			refreshErr:   &client.HTTPError{StatusCode: 401, Message: "token is invalid"},
			expectedErr:  ErrAuthExpired,
			refreshCalls: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			remote := &fakeRemote{refreshErr: tc.refreshErr, nextAccess: "access-2"}
			a, _, _ := setupAuthenticator(t, tc.access, "refresh-1", remote)

			got, err := a.Credential(context.Background())
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr, "error mismatch")
			} else {
				if err != nil {
					t.Fatal(errors.Wrap(err, "executing"))
				}
				assert.Equal(t, got, tc.expected, "credential mismatch")
			}

			assert.Equal(t, remote.refreshCalls, tc.refreshCalls, "refresh calls mismatch")
		})
	}
}

func TestCredential_signedOut(t *testing.T) {
	db := database.InitTestMemoryDB(t)
	a := New(db, &Session{}, &fakeRemote{}, clock.NewMock())

	_, err := a.Credential(context.Background())
	assert.ErrorIs(t, err, ErrAuthRequired, "error mismatch")

	_, err = a.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrAuthRequired, "refresh error mismatch")
}

func TestRefresh(t *testing.T) {
	remote := &fakeRemote{nextAccess: "access-2"}
	a, db, _ := setupAuthenticator(t, "access-1", "refresh-1", remote)

	got, err := a.Refresh(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}
	assert.Equal(t, got, "access-2", "token mismatch")

	var stored string
	if err := database.GetSystem(db, consts.SystemAccessToken, &stored); err != nil {
		t.Fatal(errors.Wrap(err, "reading the stored token"))
	}
	assert.Equal(t, stored, "access-2", "stored token mismatch")
}

func TestRefresh_rejected(t *testing.T) {
	remote := &fakeRemote{refreshErr: &client.HTTPError{StatusCode: 401, Message: "token is blacklisted"}}
	a, db, _ := setupAuthenticator(t, "access-1", "refresh-1", remote)

	_, err := a.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrAuthExpired, "error mismatch")

	_, ok := a.Session().User()
	assert.Equal(t, ok, false, "session should be cleared")

	var count int
	database.MustScan(t, "counting system rows", db.QueryRow("SELECT count(*) FROM system"), &count)
	assert.Equal(t, count, 0, "persisted session should be deleted")
}

func TestRefresh_networkKeepsSession(t *testing.T) {
	remote := &fakeRemote{refreshErr: &client.NetworkError{Err: errors.New("connection refused")}}
	a, _, _ := setupAuthenticator(t, "access-1", "refresh-1", remote)

	_, err := a.Refresh(context.Background())
	assert.ErrorIs(t, err, client.ErrNetworkUnavailable, "error mismatch")

	access, _ := a.Session().Tokens()
	assert.Equal(t, access, "access-1", "session should be kept")
}

func TestWithCredential(t *testing.T) {
	testCases := []struct {
		name        string
		results     []error
		refreshErr  error
		expectedErr error
		calls       []string
	}{
		{
			name:    "success",
			results: []error{nil},
			calls:   []string{"access-1"},
		},
		{
			name:    "unauthorized then success",
			results: []error{&client.HTTPError{StatusCode: 401}, nil},
			calls:   []string{"access-1", "access-2"},
		},
		{
			name:        "unauthorized twice",
			results:     []error{&client.HTTPError{StatusCode: 401}, &client.HTTPError{StatusCode: 401}},
			expectedErr: client.ErrUnauthorized,
			calls:       []string{"access-1", "access-2"},
		},
		{
			name:        "unauthorized and refresh rejected",
			results:     []error{&client.HTTPError{StatusCode: 401}},
			refreshErr:  &client.HTTPError{StatusCode: 401},
			expectedErr: ErrAuthExpired,
			calls:       []string{"access-1"},
		},
		{
			name:        "server error is not retried",
			results:     []error{&client.HTTPError{StatusCode: 500}},
			expectedErr: client.ErrServer,
			calls:       []string{"access-1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			remote := &fakeRemote{refreshErr: tc.refreshErr, nextAccess: "access-2"}
			a, _, _ := setupAuthenticator(t, "access-1", "refresh-1", remote)

			calls := []string{}
			err := WithCredential(context.Background(), a, func(cred string) error {
				idx := len(calls)
				calls = append(calls, cred)
				return tc.results[idx]
			})

			if tc.expectedErr == nil {
				if err != nil {
					t.Fatal(errors.Wrap(err, "executing"))
				}
			} else {
				assert.ErrorIs(t, err, tc.expectedErr, "error mismatch")
			}
			assert.DeepEqual(t, calls, tc.calls, "calls mismatch")
		})
	}
}

func TestLoginLogout(t *testing.T) {
	db := database.InitTestMemoryDB(t)
	remote := &fakeRemote{}
	a := New(db, &Session{}, remote, clock.NewMock())

	_, err := a.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, client.ErrInvalidLogin, "wrong password")

	user, err := a.Login(context.Background(), "alice", "pass1234")
	if err != nil {
		t.Fatal(errors.Wrap(err, "logging in"))
	}
	assert.Equal(t, user, User{ID: 7, Username: "alice", Name: "Alice Liddell"}, "user mismatch")

	loaded, err := LoadSession(db)
	if err != nil {
		t.Fatal(errors.Wrap(err, "loading the session"))
	}
	loadedUser, ok := loaded.User()
	assert.Equal(t, ok, true, "loaded session should have a user")
	assert.Equal(t, loadedUser, user, "loaded user mismatch")
	access, refresh := loaded.Tokens()
	assert.Equal(t, access, "access-1", "access token mismatch")
	assert.Equal(t, refresh, "refresh-1", "refresh token mismatch")

	if err := a.Logout(context.Background()); err != nil {
		t.Fatal(errors.Wrap(err, "logging out"))
	}
	assert.Equal(t, remote.signoutCalls, 1, "signout calls mismatch")

	loaded, err = LoadSession(db)
	if err != nil {
		t.Fatal(errors.Wrap(err, "loading the session after logout"))
	}
	_, ok = loaded.User()
	assert.Equal(t, ok, false, "session should be empty after logout")

	assert.ErrorIs(t, a.Logout(context.Background()), ErrAuthRequired, "logging out twice")
}
