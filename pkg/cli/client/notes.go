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
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Note is a note as the server represents it
type Note struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	CreatorName     string    `json:"creator_name"`
	CreatorUsername string    `json:"creator_username"`
}

// NotesPage is a page of notes
type NotesPage struct {
	Items   []Note
	Count   int
	HasMore bool
}

type notesResp struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Note  `json:"results"`
}

func (r notesResp) page() NotesPage {
	items := r.Results
	if items == nil {
		items = []Note{}
	}

	return NotesPage{
		Items:   items,
		Count:   r.Count,
		HasMore: r.Next != nil && *r.Next != "",
	}
}

type notePayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateNote creates a note on the server
func (c *Client) CreateNote(ctx context.Context, credential, title, description string) (Note, error) {
	var ret Note
	if err := c.do(ctx, http.MethodPost, "/notes/", credential, notePayload{Title: title, Description: description}, &ret); err != nil {
		return ret, errors.Wrap(err, "creating a note")
	}

	return ret, nil
}

// UpdateNote replaces the content of the note with the given server id
func (c *Client) UpdateNote(ctx context.Context, credential string, serverID int, title, description string) (Note, error) {
	var ret Note

	path := fmt.Sprintf("/notes/%d/", serverID)
	if err := c.do(ctx, http.MethodPut, path, credential, notePayload{Title: title, Description: description}, &ret); err != nil {
		return ret, errors.Wrapf(err, "updating note %d", serverID)
	}

	return ret, nil
}

// DeleteNote deletes the note with the given server id
func (c *Client) DeleteNote(ctx context.Context, credential string, serverID int) error {
	path := fmt.Sprintf("/notes/%d/", serverID)
	if err := c.do(ctx, http.MethodDelete, path, credential, nil, nil); err != nil {
		return errors.Wrapf(err, "deleting note %d", serverID)
	}

	return nil
}

// GetNote returns the note with the given server id
func (c *Client) GetNote(ctx context.Context, credential string, serverID int) (Note, error) {
	var ret Note

	path := fmt.Sprintf("/notes/%d/", serverID)
	if err := c.do(ctx, http.MethodGet, path, credential, nil, &ret); err != nil {
		return ret, errors.Wrapf(err, "getting note %d", serverID)
	}

	return ret, nil
}

func (c *Client) pageSize() int {
	if c.PageSize > 0 {
		return c.PageSize
	}

	return DefaultPageSize
}

// ListNotes returns the given page of the notes of the signed in user. Pages start at 1.
func (c *Client) ListNotes(ctx context.Context, credential string, page int) (NotesPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(c.pageSize()))

	var ret notesResp
	if err := c.do(ctx, http.MethodGet, "/notes/?"+q.Encode(), credential, nil, &ret); err != nil {
		return NotesPage{}, errors.Wrapf(err, "listing notes page %d", page)
	}

	return ret.page(), nil
}

// FilterParams are the conditions of a server-side note filter. Empty fields are ignored.
type FilterParams struct {
	Title         string
	Description   string
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
}

func (p FilterParams) query() url.Values {
	q := url.Values{}
	if p.Title != "" {
		q.Set("title", p.Title)
	}
	if p.Description != "" {
		q.Set("description", p.Description)
	}
	if p.UpdatedAfter != nil {
		q.Set("updated__gte", p.UpdatedAfter.UTC().Format(time.RFC3339))
	}
	if p.UpdatedBefore != nil {
		q.Set("updated__lte", p.UpdatedBefore.UTC().Format(time.RFC3339))
	}

	return q
}

// FilterNotes returns the given page of the notes of the signed in user matching the filter
func (c *Client) FilterNotes(ctx context.Context, credential string, p FilterParams, page int) (NotesPage, error) {
	q := p.query()
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(c.pageSize()))

	var ret notesResp
	if err := c.do(ctx, http.MethodGet, "/notes/filter/?"+q.Encode(), credential, nil, &ret); err != nil {
		return NotesPage{}, errors.Wrap(err, "filtering notes")
	}

	return ret.page(), nil
}
