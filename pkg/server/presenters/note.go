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

package presenters

import (
	"time"

	"github.com/notable/notable/pkg/server/database"
)

// Note is a result of PresentNote
type Note struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	CreatorName     string    `json:"creator_name"`
	CreatorUsername string    `json:"creator_username"`
}

// PresentNote presents note. The creator is read from the preloaded user.
func PresentNote(note database.Note) Note {
	ret := Note{
		ID:              note.ID,
		Title:           note.Title,
		Description:     note.Description,
		CreatedAt:       FormatTS(note.CreatedAt),
		UpdatedAt:       FormatTS(note.UpdatedAt),
		CreatorName:     note.User.DisplayName(),
		CreatorUsername: note.User.Username,
	}

	return ret
}

// PresentNotes presents notes
func PresentNotes(notes []database.Note) []Note {
	ret := []Note{}

	for _, note := range notes {
		p := PresentNote(note)
		ret = append(ret, p)
	}

	return ret
}

// Page is a page of a listing
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// PresentNotesPage presents a page of notes. next and previous are the
// URLs of the adjacent pages, or empty if there is none.
func PresentNotesPage(notes []database.Note, count int64, next, previous string) Page {
	ret := Page{
		Count:   count,
		Results: PresentNotes(notes),
	}
	if next != "" {
		ret.Next = &next
	}
	if previous != "" {
		ret.Previous = &previous
	}

	return ret
}
