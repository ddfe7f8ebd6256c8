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

package controllers

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/notable/notable/pkg/server/app"
	"github.com/notable/notable/pkg/server/context"
	"github.com/notable/notable/pkg/server/presenters"
)

// NewUsers creates a new Users controller.
func NewUsers(app *app.App) *Users {
	return &Users{
		app: app,
	}
}

// Users is a user controller.
type Users struct {
	app *app.App
}

// Register handles POST /auth/register/
func (u *Users) Register(w http.ResponseWriter, r *http.Request) {
	var params app.RegisterParams
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	user, err := u.app.CreateUser(params)
	if err != nil {
		handleJSONError(w, err, "creating user")
		return
	}

	respondJSON(w, http.StatusCreated, presenters.PresentRegistration(user))
}

type tokenPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (p tokenPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

// Token handles POST /auth/token/
func (u *Users) Token(w http.ResponseWriter, r *http.Request) {
	var payload tokenPayload
	if err := parseRequestData(r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}
	if err := payload.Validate(); err != nil {
		handleJSONError(w, err, "validating payload")
		return
	}

	user, err := u.app.Authenticate(payload.Username, payload.Password)
	if err != nil {
		handleJSONError(w, err, "authenticating")
		return
	}

	pair, err := u.app.SignIn(*user)
	if err != nil {
		handleJSONError(w, err, "signing in")
		return
	}

	respondJSON(w, http.StatusOK, pair)
}

type refreshPayload struct {
	Refresh string `json:"refresh"`
}

func (p refreshPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Refresh, validation.Required),
	)
}

type refreshResponse struct {
	Access string `json:"access"`
}

// Refresh handles POST /auth/token/refresh/
func (u *Users) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload refreshPayload
	if err := parseRequestData(r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}
	if err := payload.Validate(); err != nil {
		handleJSONError(w, err, "validating payload")
		return
	}

	access, err := u.app.RefreshAccessToken(payload.Refresh)
	if err != nil {
		handleJSONError(w, err, "refreshing access token")
		return
	}

	respondJSON(w, http.StatusOK, refreshResponse{Access: access})
}

// Logout handles POST /auth/logout/. It revokes the given refresh token.
func (u *Users) Logout(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	var payload refreshPayload
	if err := parseRequestData(r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}
	if err := payload.Validate(); err != nil {
		handleJSONError(w, err, "validating payload")
		return
	}

	if err := u.app.RevokeRefreshToken(user.ID, payload.Refresh); err != nil {
		handleJSONError(w, err, "revoking refresh token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UserInfo handles GET /auth/userinfo/
func (u *Users) UserInfo(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	respondJSON(w, http.StatusOK, presenters.PresentUser(*user))
}

type changePasswordPayload struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

// ChangePassword handles POST /auth/change-password/
func (u *Users) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	var payload changePasswordPayload
	if err := parseRequestData(r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	if err := u.app.ChangePassword(*user, payload.OldPassword, payload.NewPassword); err != nil {
		handleJSONError(w, err, "changing password")
		return
	}

	respondJSON(w, http.StatusOK, detailResponse{Detail: "Password updated successfully."})
}
