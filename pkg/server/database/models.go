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

package database

import (
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is a model for a user
type User struct {
	Model
	Username  string `gorm:"uniqueIndex;type:varchar(150);not null"`
	Email     string `gorm:"index"`
	FirstName string
	LastName  string
	Password  string `json:"-"`
}

// DisplayName returns the full name of the user, or the username if the user has no name
func (u User) DisplayName() string {
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

// Note is a model for a note. CreatedAt and UpdatedAt are managed by the
// application clock rather than by gorm.
type Note struct {
	ID          int       `gorm:"primaryKey"`
	UserID      int       `gorm:"index;not null"`
	User        User      `gorm:"constraint:OnDelete:CASCADE"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false;index"`
}

// Token is a model for an issued refresh token, identified by the jti claim
type Token struct {
	Model
	UserID    int    `gorm:"index;not null"`
	JTI       string `gorm:"uniqueIndex;type:varchar(64);not null"`
	Type      string
	ExpiresAt time.Time
	RevokedAt *time.Time
}
