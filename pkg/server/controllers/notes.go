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

	"github.com/notable/notable/pkg/server/app"
	"github.com/notable/notable/pkg/server/context"
	"github.com/notable/notable/pkg/server/presenters"
)

// NewNotes creates a new Notes controller.
func NewNotes(app *app.App) *Notes {
	return &Notes{
		app: app,
	}
}

// Notes is a notes controller.
type Notes struct {
	app *app.App
}

type notesQuery struct {
	Page       int    `schema:"page"`
	PageSize   int    `schema:"page_size"`
	Title      string `schema:"title"`
	Desc       string `schema:"description"`
	UpdatedGTE string `schema:"updated__gte"`
	UpdatedLTE string `schema:"updated__lte"`
}

func parseNotesQuery(r *http.Request, withFilters bool) (app.GetNotesParams, error) {
	var q notesQuery
	if err := parseQuery(r, &q); err != nil {
		return app.GetNotesParams{}, err
	}

	ret := app.GetNotesParams{
		Page:    q.Page,
		PerPage: q.PageSize,
	}
	if !withFilters {
		return ret, nil
	}

	gte, err := parseTimeParam("updated__gte", q.UpdatedGTE)
	if err != nil {
		return ret, err
	}
	lte, err := parseTimeParam("updated__lte", q.UpdatedLTE)
	if err != nil {
		return ret, err
	}

	ret.Title = q.Title
	ret.Desc = q.Desc
	ret.UpdatedGTE = gte
	ret.UpdatedLTE = lte

	return ret, nil
}

func (n *Notes) list(w http.ResponseWriter, r *http.Request, withFilters bool) {
	user := context.User(r.Context())

	params, err := parseNotesQuery(r, withFilters)
	if err != nil {
		handleJSONError(w, err, "parsing query")
		return
	}

	res, err := n.app.GetNotes(user.ID, params)
	if err != nil {
		handleJSONError(w, err, "getting notes")
		return
	}

	var next, previous string
	if res.HasNext() {
		next = pageURL(n.app.WebURL, r, res.Page+1)
	}
	if res.HasPrevious() {
		previous = pageURL(n.app.WebURL, r, res.Page-1)
	}

	respondJSON(w, http.StatusOK, presenters.PresentNotesPage(res.Notes, res.Total, next, previous))
}

// Index handles GET /notes/
func (n *Notes) Index(w http.ResponseWriter, r *http.Request) {
	n.list(w, r, false)
}

// Filter handles GET /notes/filter/
func (n *Notes) Filter(w http.ResponseWriter, r *http.Request) {
	n.list(w, r, true)
}

// Show handles GET /notes/{noteID}/
func (n *Notes) Show(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	noteID, err := getIntVar(r, "noteID")
	if err != nil {
		handleJSONError(w, err, "parsing note id")
		return
	}

	note, err := n.app.GetUserNote(user.ID, noteID)
	if err != nil {
		handleJSONError(w, err, "getting note")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentNote(note))
}

// Create handles POST /notes/
func (n *Notes) Create(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	var params app.NoteParams
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	note, err := n.app.CreateNote(*user, params)
	if err != nil {
		handleJSONError(w, err, "creating note")
		return
	}

	respondJSON(w, http.StatusCreated, presenters.PresentNote(note))
}

// Update handles PUT /notes/{noteID}/
func (n *Notes) Update(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	noteID, err := getIntVar(r, "noteID")
	if err != nil {
		handleJSONError(w, err, "parsing note id")
		return
	}

	var params app.NoteParams
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	note, err := n.app.UpdateNote(user.ID, noteID, params)
	if err != nil {
		handleJSONError(w, err, "updating note")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentNote(note))
}

// Delete handles DELETE /notes/{noteID}/
func (n *Notes) Delete(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	noteID, err := getIntVar(r, "noteID")
	if err != nil {
		handleJSONError(w, err, "parsing note id")
		return
	}

	if err := n.app.DeleteNote(user.ID, noteID); err != nil {
		handleJSONError(w, err, "deleting note")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
