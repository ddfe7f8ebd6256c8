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
	"errors"

	"github.com/notable/notable/pkg/server/database"
	"github.com/notable/notable/pkg/server/log"
	pkgErrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// TokenPair is the result of a sign in
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// SignIn issues a new pair of tokens for the given user
func (a *App) SignIn(user database.User) (TokenPair, error) {
	access, err := a.Tokens.IssueAccess(user.ID)
	if err != nil {
		return TokenPair{}, pkgErrors.Wrap(err, "issuing access token")
	}

	refresh, _, err := a.Tokens.IssueRefresh(a.DB, user.ID)
	if err != nil {
		return TokenPair{}, pkgErrors.Wrap(err, "issuing refresh token")
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// activeRefreshToken verifies the given refresh token and returns its record.
// Revoked, purged or expired tokens are rejected with ErrInvalidToken.
func (a *App) activeRefreshToken(raw string) (database.Token, error) {
	claims, err := a.Tokens.Parse(raw, database.TokenTypeRefresh)
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Debug("rejected refresh token")
		return database.Token{}, ErrInvalidToken
	}

	var tok database.Token
	err = a.DB.Where("jti = ?", claims.ID).First(&tok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.Token{}, ErrInvalidToken
	} else if err != nil {
		return database.Token{}, pkgErrors.Wrap(err, "finding refresh token")
	}

	if tok.RevokedAt != nil || !tok.ExpiresAt.After(a.now()) {
		return database.Token{}, ErrInvalidToken
	}

	return tok, nil
}

// RefreshAccessToken exchanges a refresh token for a new access token
func (a *App) RefreshAccessToken(raw string) (string, error) {
	tok, err := a.activeRefreshToken(raw)
	if err != nil {
		return "", err
	}

	if _, err := a.GetUser(tok.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidToken
		}

		return "", err
	}

	access, err := a.Tokens.IssueAccess(tok.UserID)
	if err != nil {
		return "", pkgErrors.Wrap(err, "issuing access token")
	}

	return access, nil
}

// RevokeRefreshToken revokes the given refresh token of the given user
func (a *App) RevokeRefreshToken(userID int, raw string) error {
	tok, err := a.activeRefreshToken(raw)
	if err != nil {
		return err
	}
	if tok.UserID != userID {
		return ErrInvalidToken
	}

	now := a.now()
	if err := a.DB.Model(&tok).Update("revoked_at", &now).Error; err != nil {
		return pkgErrors.Wrap(err, "revoking refresh token")
	}

	return nil
}

func (a *App) revokeUserTokens(tx *gorm.DB, userID int) error {
	now := a.now()

	return tx.Model(&database.Token{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", &now).Error
}

// AuthenticateAccessToken returns the user the given access token was issued to
func (a *App) AuthenticateAccessToken(raw string) (*database.User, error) {
	claims, err := a.Tokens.Parse(raw, database.TokenTypeAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := a.GetUser(userID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidToken
	} else if err != nil {
		return nil, err
	}

	return user, nil
}

// PurgeExpiredTokens deletes the refresh tokens that expired before now and
// returns the number of deleted tokens
func (a *App) PurgeExpiredTokens() (int64, error) {
	res := a.DB.Where("expires_at < ?", a.now()).Delete(&database.Token{})
	if res.Error != nil {
		return 0, pkgErrors.Wrap(res.Error, "deleting expired tokens")
	}

	return res.RowsAffected, nil
}
