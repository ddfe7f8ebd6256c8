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
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/notable/notable/pkg/server/database"
	pkgErrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	// DefaultPerPage is the page size when the request does not give one
	DefaultPerPage = 20
	// MaxPerPage is the largest page size served
	MaxPerPage = 100
	// MaxTitleLength is the longest title accepted
	MaxTitleLength = 255
)

// NoteParams are the fields of a note written by a user
type NoteParams struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate validates the note fields
func (p NoteParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.RuneLength(1, MaxTitleLength)),
	)
}

// CreateNote creates a note of the given user
func (a *App) CreateNote(user database.User, p NoteParams) (database.Note, error) {
	if err := p.Validate(); err != nil {
		return database.Note{}, err
	}

	now := a.now()
	note := database.Note{
		UserID:      user.ID,
		User:        user,
		Title:       p.Title,
		Description: p.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.DB.Omit("User").Create(&note).Error; err != nil {
		return note, pkgErrors.Wrap(err, "inserting note")
	}

	return note, nil
}

// GetUserNote returns the note with the given id if it belongs to the given user
func (a *App) GetUserNote(userID, noteID int) (database.Note, error) {
	var ret database.Note
	err := a.DB.Preload("User").Where("user_id = ? AND id = ?", userID, noteID).First(&ret).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ret, ErrNotFound
	} else if err != nil {
		return ret, pkgErrors.Wrap(err, "finding note")
	}

	return ret, nil
}

// UpdateNote replaces the title and the description of the given note of the user
func (a *App) UpdateNote(userID, noteID int, p NoteParams) (database.Note, error) {
	if err := p.Validate(); err != nil {
		return database.Note{}, err
	}

	note, err := a.GetUserNote(userID, noteID)
	if err != nil {
		return note, err
	}

	note.Title = p.Title
	note.Description = p.Description
	note.UpdatedAt = a.now()

	if err := a.DB.Model(&database.Note{}).Where("id = ?", note.ID).Updates(map[string]interface{}{
		"title":       note.Title,
		"description": note.Description,
		"updated_at":  note.UpdatedAt,
	}).Error; err != nil {
		return note, pkgErrors.Wrap(err, "updating note")
	}

	return note, nil
}

// DeleteNote deletes the given note of the user
func (a *App) DeleteNote(userID, noteID int) error {
	res := a.DB.Where("user_id = ? AND id = ?", userID, noteID).Delete(&database.Note{})
	if res.Error != nil {
		return pkgErrors.Wrap(res.Error, "deleting note")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetNotesParams is params for finding notes. Empty filters are ignored.
type GetNotesParams struct {
	Title      string
	Desc       string
	UpdatedGTE *time.Time
	UpdatedLTE *time.Time
	Page       int
	PerPage    int
}

// normalize clamps the pagination to the served range
func (p GetNotesParams) normalize() GetNotesParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}

	return p
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a LIKE pattern matching the given substring
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func getNotesBaseQuery(db *gorm.DB, userID int, q GetNotesParams) *gorm.DB {
	conn := db.Where("notes.user_id = ?", userID)

	if q.Title != "" {
		conn = conn.Where(`LOWER(notes.title) LIKE ? ESCAPE '\'`, containsPattern(q.Title))
	}
	if q.Desc != "" {
		conn = conn.Where(`LOWER(notes.description) LIKE ? ESCAPE '\'`, containsPattern(q.Desc))
	}
	if q.UpdatedGTE != nil {
		conn = conn.Where("notes.updated_at >= ?", q.UpdatedGTE.UTC())
	}
	if q.UpdatedLTE != nil {
		conn = conn.Where("notes.updated_at <= ?", q.UpdatedLTE.UTC())
	}

	return conn
}

func orderGetNotes(conn *gorm.DB) *gorm.DB {
	return conn.Order("notes.updated_at DESC, notes.id DESC")
}

func paginate(conn *gorm.DB, page, perPage int) *gorm.DB {
	if page > 0 {
		offset := perPage * (page - 1)
		conn = conn.Offset(offset)
	}

	conn = conn.Limit(perPage)

	return conn
}

// GetNotesResult is the result of getting notes
type GetNotesResult struct {
	Notes   []database.Note
	Total   int64
	Page    int
	PerPage int
}

// HasNext reports whether a page follows the result
func (r GetNotesResult) HasNext() bool {
	return int64(r.Page*r.PerPage) < r.Total
}

// HasPrevious reports whether a page precedes the result
func (r GetNotesResult) HasPrevious() bool {
	return r.Page > 1
}

// GetNotes returns a page of the matching notes of the given user, newest-updated first.
// A page past the last one is empty.
func (a *App) GetNotes(userID int, params GetNotesParams) (GetNotesResult, error) {
	params = params.normalize()
	conn := getNotesBaseQuery(a.DB, userID, params)

	var total int64
	if err := conn.Model(database.Note{}).Count(&total).Error; err != nil {
		return GetNotesResult{}, pkgErrors.Wrap(err, "counting total")
	}

	notes := []database.Note{}
	if total != 0 {
		conn = getNotesBaseQuery(a.DB, userID, params)
		conn = orderGetNotes(conn).Preload("User")
		conn = paginate(conn, params.Page, params.PerPage)

		if err := conn.Find(&notes).Error; err != nil {
			return GetNotesResult{}, pkgErrors.Wrap(err, "finding notes")
		}
	}

	res := GetNotesResult{
		Notes:   notes,
		Total:   total,
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	return res, nil
}
