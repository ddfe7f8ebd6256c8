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
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is an error for a missing user or a note of another user
	ErrNotFound = errors.New("Not found.")
	// ErrLoginInvalid is an error for a wrong username or password
	ErrLoginInvalid = errors.New("No active account found with the given credentials")
	// ErrDuplicateUsername is an error for registering a taken username
	ErrDuplicateUsername = errors.New("A user with that username already exists.")
	// ErrRegistrationDisabled is an error for registering on a server that does not accept new users
	ErrRegistrationDisabled = errors.New("Registration is disabled.")
	// ErrPasswordIncorrect is an error for a password change with a wrong current password
	ErrPasswordIncorrect = errors.New("The current password is incorrect.")
	// ErrInvalidToken is an error for a token that is invalid, expired or revoked
	ErrInvalidToken = errors.New("Token is invalid or expired")
)
