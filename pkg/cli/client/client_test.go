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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/notable/notable/pkg/assert"
	"github.com/pkg/errors"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return New(ts.URL+"/api", "test", ts.Client())
}

func TestErrorTaxonomy(t *testing.T) {
	testCases := []struct {
		status   int
		expected error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusConflict, ErrBadRequest},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
		{http.StatusTooManyRequests, ErrServer},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("status %d", tc.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, tc.status, map[string]string{"detail": "nope"})
			})

			_, err := c.GetNote(context.Background(), "tok", 1)
			assert.ErrorIs(t, err, tc.expected, "error mismatch")

			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected an HTTPError, got %v", err)
			}
			assert.Equal(t, httpErr.StatusCode, tc.status, "status mismatch")
			assert.Equal(t, httpErr.Message, "nope", "message mismatch")
		})
	}
}

func TestNetworkUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := ts.URL + "/api"
	ts.Close()

	c := New(endpoint, "test", &http.Client{Timeout: time.Second})

	_, err := c.CreateNote(context.Background(), "tok", "a", "b")
	assert.ErrorIs(t, err, ErrNetworkUnavailable, "error mismatch")
	assert.Equal(t, errors.Is(err, ErrServer), false, "network errors are not server errors")

	assert.ErrorIs(t, c.Health(context.Background()), ErrNetworkUnavailable, "health error mismatch")
}

func TestContentTypeMismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	})

	_, err := c.GetNote(context.Background(), "tok", 1)
	assert.ErrorIs(t, err, ErrServer, "error mismatch")
}

func TestCreateNote(t *testing.T) {
	ts := time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.Method, http.MethodPost, "method mismatch")
		assert.Equal(t, r.URL.Path, "/api/notes/", "path mismatch")
		assert.Equal(t, r.Header.Get("Authorization"), "Bearer tok", "authorization mismatch")

		var p notePayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Error(errors.Wrap(err, "decoding payload"))
			return
		}
		assert.Equal(t, p.Title, "Shopping", "title mismatch")
		assert.Equal(t, p.Description, "milk, eggs", "description mismatch")

		respondJSON(w, http.StatusCreated, Note{ID: 42, Title: p.Title, Description: p.Description, CreatedAt: ts, UpdatedAt: ts})
	})

	n, err := c.CreateNote(context.Background(), "tok", "Shopping", "milk, eggs")
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	assert.Equal(t, n.ID, 42, "id mismatch")
	assert.Equal(t, n.UpdatedAt.Equal(ts), true, "updated_at mismatch")
}

func TestDeleteNote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.Method, http.MethodDelete, "method mismatch")
		assert.Equal(t, r.URL.Path, "/api/notes/7/", "path mismatch")
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.DeleteNote(context.Background(), "tok", 7); err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}
}

func TestListNotes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, q.Get("page_size"), "2", "page size mismatch")

		switch q.Get("page") {
		case "1":
			next := "http://example.com/api/notes/?page=2"
			respondJSON(w, http.StatusOK, notesResp{Count: 3, Next: &next, Results: []Note{{ID: 1}, {ID: 2}}})
		case "2":
			respondJSON(w, http.StatusOK, notesResp{Count: 3, Results: []Note{{ID: 3}}})
		default:
			t.Errorf("unexpected page %s", q.Get("page"))
		}
	})
	c.PageSize = 2

	p1, err := c.ListNotes(context.Background(), "tok", 1)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting page 1"))
	}
	assert.Equal(t, len(p1.Items), 2, "page 1 length mismatch")
	assert.Equal(t, p1.HasMore, true, "page 1 should have more")
	assert.Equal(t, p1.Count, 3, "count mismatch")

	p2, err := c.ListNotes(context.Background(), "tok", 2)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting page 2"))
	}
	assert.Equal(t, len(p2.Items), 1, "page 2 length mismatch")
	assert.Equal(t, p2.HasMore, false, "page 2 should be the last")
}

func TestFilterNotes(t *testing.T) {
	after := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, r.URL.Path, "/api/notes/filter/", "path mismatch")
		assert.Equal(t, q.Get("title"), "groc", "title mismatch")
		assert.Equal(t, q.Get("description"), "", "description should be omitted")
		assert.Equal(t, q.Get("updated__gte"), "2025-03-01T00:00:00Z", "updated__gte mismatch")

		respondJSON(w, http.StatusOK, notesResp{Count: 0})
	})

	p, err := c.FilterNotes(context.Background(), "tok", FilterParams{Title: "groc", UpdatedAfter: &after}, 1)
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}
	assert.DeepEqual(t, p.Items, []Note{}, "items mismatch")
}

func TestSignin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		var p signinPayload
		json.Unmarshal(body, &p)
		if p.Password != "pass1234" {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"detail": "no active account"})
			return
		}

		respondJSON(w, http.StatusOK, TokenResp{Access: "a", Refresh: "r"})
	})

	tok, err := c.Signin(context.Background(), "alice", "pass1234")
	if err != nil {
		t.Fatal(errors.Wrap(err, "signing in"))
	}
	assert.Equal(t, tok, TokenResp{Access: "a", Refresh: "r"}, "tokens mismatch")

	_, err = c.Signin(context.Background(), "alice", "wrong")
	assert.Equal(t, err, ErrInvalidLogin, "error mismatch")
}

func TestUserInfo_DisplayName(t *testing.T) {
	testCases := []struct {
		info     UserInfo
		expected string
	}{
		{UserInfo{Username: "alice", FirstName: "Alice", LastName: "Liddell"}, "Alice Liddell"},
		{UserInfo{Username: "alice", FirstName: "Alice"}, "Alice"},
		{UserInfo{Username: "alice", LastName: "Liddell"}, "Liddell"},
		{UserInfo{Username: "alice"}, "alice"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.info.DisplayName(), tc.expected, "display name mismatch")
	}
}
