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
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/notable/notable/pkg/server/database"
	pkgErrors "github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength is the shortest password accepted
const MinPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var passwordRules = []validation.Rule{validation.Required, validation.Length(MinPasswordLength, 128)}

// RegisterParams are the fields of a new user
type RegisterParams struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Validate validates the registration fields
func (p RegisterParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required, validation.Length(1, 150),
			validation.Match(usernamePattern).Error("may contain only letters, digits and @/./+/-/_")),
		validation.Field(&p.Password, passwordRules...),
		validation.Field(&p.Email, validation.Required, is.EmailFormat),
		validation.Field(&p.FirstName, validation.Length(0, 150)),
		validation.Field(&p.LastName, validation.Length(0, 150)),
	)
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", pkgErrors.Wrap(err, "hashing password")
	}

	return string(hashed), nil
}

// CreateUser creates a user
func (a *App) CreateUser(p RegisterParams) (database.User, error) {
	if a.DisableRegistration {
		return database.User{}, ErrRegistrationDisabled
	}

	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	if err := p.Validate(); err != nil {
		return database.User{}, err
	}

	hashedPassword, err := hashPassword(p.Password)
	if err != nil {
		return database.User{}, err
	}

	user := database.User{
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Password:  hashedPassword,
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.User{}).Where("LOWER(username) = LOWER(?)", p.Username).Count(&count).Error; err != nil {
			return pkgErrors.Wrap(err, "counting user")
		}
		if count > 0 {
			return ErrDuplicateUsername
		}

		if err := tx.Create(&user).Error; err != nil {
			return pkgErrors.Wrap(err, "saving user")
		}

		return nil
	})
	if err != nil {
		return database.User{}, err
	}

	return user, nil
}

// Authenticate returns the user with the given username and password
func (a *App) Authenticate(username, password string) (*database.User, error) {
	var user database.User
	err := a.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLoginInvalid
	} else if err != nil {
		return nil, pkgErrors.Wrap(err, "finding user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrLoginInvalid
	}

	return &user, nil
}

// GetUser returns the user with the given id
func (a *App) GetUser(id int) (*database.User, error) {
	var user database.User
	err := a.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, pkgErrors.Wrap(err, "finding user")
	}

	return &user, nil
}

// ChangePassword replaces the password of the given user and revokes every
// refresh token issued to the user
func (a *App) ChangePassword(user database.User, oldPassword, newPassword string) error {
	if err := fieldError("new_password", validation.Validate(newPassword, passwordRules...)); err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrPasswordIncorrect
	}

	hashedPassword, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	return a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password", hashedPassword).Error; err != nil {
			return pkgErrors.Wrap(err, "updating password")
		}
		if err := a.revokeUserTokens(tx, user.ID); err != nil {
			return pkgErrors.Wrap(err, "revoking tokens")
		}

		return nil
	})
}

// RemoveUser deletes the user with the given username along with the notes and tokens
func (a *App) RemoveUser(username string) error {
	var user database.User
	err := a.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	} else if err != nil {
		return pkgErrors.Wrap(err, "finding user")
	}

	return a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&database.Note{}).Error; err != nil {
			return pkgErrors.Wrap(err, "deleting notes")
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&database.Token{}).Error; err != nil {
			return pkgErrors.Wrap(err, "deleting tokens")
		}
		if err := tx.Delete(&user).Error; err != nil {
			return pkgErrors.Wrap(err, "deleting user")
		}

		return nil
	})
}
