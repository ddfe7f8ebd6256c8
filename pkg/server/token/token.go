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

// Package token issues and verifies the signed access and refresh tokens
package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/notable/notable/pkg/clock"
	"github.com/notable/notable/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrInvalid is an error for a token that is malformed, expired, badly signed
	// or of the wrong type
	ErrInvalid = errors.New("Token is invalid or expired")
)

// Claims are the claims of the tokens issued by the server
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"token_type"`
}

// UserID returns the id of the user the token was issued to
func (c Claims) UserID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalid, "malformed subject '%s'", c.Subject)
	}

	return id, nil
}

// Issuer signs tokens with an HMAC secret
type Issuer struct {
	secret     []byte
	clock      clock.Clock
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewIssuer returns a new issuer
func NewIssuer(secret string, c clock.Clock, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		clock:      c,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

func (i *Issuer) sign(userID int, kind string, ttl time.Duration) (string, Claims, error) {
	now := i.clock.Now().UTC()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type: kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", claims, errors.Wrap(err, "signing token")
	}

	return signed, claims, nil
}

// IssueAccess returns a new access token for the given user
func (i *Issuer) IssueAccess(userID int) (string, error) {
	signed, _, err := i.sign(userID, database.TokenTypeAccess, i.AccessTTL)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// IssueRefresh returns a new refresh token for the given user and records it
// so that it can be revoked
func (i *Issuer) IssueRefresh(db *gorm.DB, userID int) (string, database.Token, error) {
	signed, claims, err := i.sign(userID, database.TokenTypeRefresh, i.RefreshTTL)
	if err != nil {
		return "", database.Token{}, err
	}

	tok := database.Token{
		UserID:    userID,
		JTI:       claims.ID,
		Type:      database.TokenTypeRefresh,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if err := db.Create(&tok).Error; err != nil {
		return "", database.Token{}, errors.Wrap(err, "saving refresh token")
	}

	return signed, tok, nil
}

// Parse verifies the signature, expiry and type of the given token and returns its claims
func (i *Issuer) Parse(raw, kind string) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return claims, errors.Wrap(ErrInvalid, err.Error())
	}

	if claims.Type != kind {
		return claims, errors.Wrapf(ErrInvalid, "expected a %s token, got '%s'", kind, claims.Type)
	}

	return claims, nil
}
