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

// Package validate validates the user input of the commands before it reaches the store or the server
package validate

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pkg/errors"
)

const (
	// MaxTitleLength is the longest title the server accepts
	MaxTitleLength = 255
	// MinPasswordLength is the shortest password the server accepts
	MinPasswordLength = 8
)

var (
	// ErrTitleEmpty is an error for a note without a title
	ErrTitleEmpty = errors.New("The title is empty")
	// ErrTitleTooLong is an error for a title longer than MaxTitleLength
	ErrTitleTooLong = errors.New("The title is too long")
	// ErrTitleMultiline is an error for a title that has linebreaks
	ErrTitleMultiline = errors.New("The title contains multiple lines")
)

// Title validates a note title
func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleEmpty
	}

	if len([]rune(title)) > MaxTitleLength {
		return ErrTitleTooLong
	}

	if strings.ContainsAny(title, "\r\n") {
		return ErrTitleMultiline
	}

	return nil
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var usernameRule = validation.Match(usernamePattern).Error("may contain only letters, digits and @/./+/-/_")

// Registration is the input of the register command
type Registration struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// Validate validates the registration input
func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 150), usernameRule),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 0)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.FirstName, validation.Length(0, 150)),
		validation.Field(&r.LastName, validation.Length(0, 150)),
	)
}

// Login validates the input of the login command
func Login(username, password string) error {
	return validation.Errors{
		"username": validation.Validate(username, validation.Required),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
}

// PasswordChange validates a new password against the current one
func PasswordChange(oldPassword, newPassword string) error {
	if err := validation.Validate(newPassword, validation.Required, validation.Length(MinPasswordLength, 0)); err != nil {
		return errors.Wrap(err, "new password")
	}

	if oldPassword == newPassword {
		return errors.New("new password must differ from the current one")
	}

	return nil
}
