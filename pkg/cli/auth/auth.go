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
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/notable/notable/pkg/cli/client"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/clock"
	"github.com/pkg/errors"
)

var (
	// ErrAuthRequired is an error for an operation that needs a signed in user
	ErrAuthRequired = errors.New("login required")
	// ErrAuthExpired is an error for a session the server no longer accepts. The
	// session is cleared when it is returned.
	ErrAuthExpired = errors.New("session expired")
)

// RefreshBuffer is how long before its expiry an access token is refreshed
const RefreshBuffer = 5 * time.Minute

// Remote is the part of the server API the authenticator needs
type Remote interface {
	Signin(ctx context.Context, username, password string) (client.TokenResp, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	GetUserInfo(ctx context.Context, credential string) (client.UserInfo, error)
	Signout(ctx context.Context, credential, refreshToken string) error
}

// Authenticator supplies valid bearer credentials for the session, refreshing
// the access token when needed. It fails closed: a rejected refresh clears the session.
type Authenticator struct {
	db      *database.DB
	session *Session
	remote  Remote
	clock   clock.Clock

	// serializes refreshes so that concurrent 401s refresh once each in turn
	refreshMu sync.Mutex
}

// New returns a new authenticator
func New(db *database.DB, session *Session, remote Remote, c clock.Clock) *Authenticator {
	return &Authenticator{
		db:      db,
		session: session,
		remote:  remote,
		clock:   c,
	}
}

// Session returns the session the authenticator manages
func (a *Authenticator) Session() *Session {
	return a.session
}

// tokenExpiry returns the expiry of a JWT without verifying its signature. The
// second return value is false for tokens without a readable expiry.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}

func (a *Authenticator) expiringSoon(token string) bool {
	exp, ok := tokenExpiry(token)
	if !ok {
		return false
	}

	return exp.Sub(a.clock.Now()) < RefreshBuffer
}

// Credential returns the current access token. A token about to expire is
// refreshed first; if the server cannot be reached the current token is returned.
func (a *Authenticator) Credential(ctx context.Context) (string, error) {
	access, _ := a.session.Tokens()
	if access == "" {
		return "", ErrAuthRequired
	}

	if !a.expiringSoon(access) {
		return access, nil
	}

	fresh, err := a.Refresh(ctx)
	if errors.Is(err, ErrAuthExpired) || errors.Is(err, ErrAuthRequired) {
		return "", err
	} else if err != nil {
		log.Debug("refreshing an expiring token: %s\n", err.Error())
		return access, nil
	}

	return fresh, nil
}

// Refresh exchanges the refresh token for a new access token. If the server
// rejects the refresh token, the session is cleared and ErrAuthExpired returned.
func (a *Authenticator) Refresh(ctx context.Context) (string, error) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	access, refresh := a.session.Tokens()
	if access == "" && refresh == "" {
		return "", ErrAuthRequired
	}
	if refresh == "" {
		return "", a.expire()
	}

	token, err := a.remote.RefreshToken(ctx, refresh)
	if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrBadRequest) {
		return "", a.expire()
	} else if err != nil {
		return "", errors.Wrap(err, "refreshing the access token")
	}

	if err := a.session.setAccessToken(a.db, token); err != nil {
		return "", err
	}

	return token, nil
}

func (a *Authenticator) expire() error {
	if err := a.session.Clear(a.db); err != nil {
		return errors.Wrap(err, "clearing the expired session")
	}

	return ErrAuthExpired
}

// Login signs in with the given credentials and persists the new session
func (a *Authenticator) Login(ctx context.Context, username, password string) (User, error) {
	tok, err := a.remote.Signin(ctx, username, password)
	if err != nil {
		return User{}, errors.Wrap(err, "signing in")
	}

	info, err := a.remote.GetUserInfo(ctx, tok.Access)
	if err != nil {
		return User{}, errors.Wrap(err, "getting the user info")
	}

	user := User{
		ID:       info.ID,
		Username: info.Username,
		Name:     info.DisplayName(),
	}

	s := NewSession(user, tok.Access, tok.Refresh)
	if err := s.Save(a.db); err != nil {
		return User{}, errors.Wrap(err, "saving the session")
	}
	a.session.replace(s)

	return user, nil
}

// Logout revokes the refresh token on the server when possible and clears the session
func (a *Authenticator) Logout(ctx context.Context) error {
	access, refresh := a.session.Tokens()
	if access == "" {
		return ErrAuthRequired
	}

	if err := a.remote.Signout(ctx, access, refresh); err != nil {
		log.Debug("revoking the session on the server: %s\n", err.Error())
	}

	if err := a.session.Clear(a.db); err != nil {
		return errors.Wrap(err, "clearing the session")
	}

	return nil
}

// WithCredential calls fn with the current credential. If the server rejects the
// credential, it is refreshed once and fn is retried once with the new one.
func WithCredential(ctx context.Context, a Credentials, fn func(credential string) error) error {
	cred, err := a.Credential(ctx)
	if err != nil {
		return err
	}

	err = fn(cred)
	if !errors.Is(err, client.ErrUnauthorized) {
		return err
	}

	cred, err = a.Refresh(ctx)
	if err != nil {
		return err
	}

	return fn(cred)
}

// Credentials supplies bearer credentials
type Credentials interface {
	Credential(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}
