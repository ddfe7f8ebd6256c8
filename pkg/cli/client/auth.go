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

package client

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// RegisterParams is the payload for registering a user
type RegisterParams struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RegisterResp is the response from the register endpoint
type RegisterResp struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register creates a user on the server
func (c *Client) Register(ctx context.Context, p RegisterParams) (RegisterResp, error) {
	var ret RegisterResp
	if err := c.do(ctx, http.MethodPost, "/auth/register/", "", p, &ret); err != nil {
		return ret, errors.Wrap(err, "registering")
	}

	return ret, nil
}

type signinPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResp is the response from the token endpoint
type TokenResp struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Signin exchanges the given credentials for a pair of access and refresh tokens
func (c *Client) Signin(ctx context.Context, username, password string) (TokenResp, error) {
	var ret TokenResp

	err := c.do(ctx, http.MethodPost, "/auth/token/", "", signinPayload{Username: username, Password: password}, &ret)
	if errors.Is(err, ErrUnauthorized) {
		return ret, ErrInvalidLogin
	} else if err != nil {
		return ret, errors.Wrap(err, "requesting tokens")
	}

	return ret, nil
}

type refreshPayload struct {
	Refresh string `json:"refresh"`
}

type refreshResp struct {
	Access string `json:"access"`
}

// RefreshToken exchanges the given refresh token for a new access token
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	var ret refreshResp
	if err := c.do(ctx, http.MethodPost, "/auth/token/refresh/", "", refreshPayload{Refresh: refreshToken}, &ret); err != nil {
		return "", errors.Wrap(err, "refreshing the access token")
	}

	return ret.Access, nil
}

// Signout revokes the given refresh token
func (c *Client) Signout(ctx context.Context, credential, refreshToken string) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout/", credential, refreshPayload{Refresh: refreshToken}, nil); err != nil {
		return errors.Wrap(err, "signing out")
	}

	return nil
}

// UserInfo is the information about the signed in user
type UserInfo struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName returns the full name of the user, or the username if the user has no name
func (u UserInfo) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}

	return name
}

// GetUserInfo returns the user the given credential belongs to
func (c *Client) GetUserInfo(ctx context.Context, credential string) (UserInfo, error) {
	var ret UserInfo
	if err := c.do(ctx, http.MethodGet, "/auth/userinfo/", credential, nil, &ret); err != nil {
		return ret, errors.Wrap(err, "getting user info")
	}

	return ret, nil
}

type changePasswordPayload struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword changes the password of the signed in user
func (c *Client) ChangePassword(ctx context.Context, credential, oldPassword, newPassword string) error {
	p := changePasswordPayload{OldPassword: oldPassword, NewPassword: newPassword}
	if err := c.do(ctx, http.MethodPost, "/auth/change-password/", credential, p, nil); err != nil {
		return errors.Wrap(err, "changing password")
	}

	return nil
}
