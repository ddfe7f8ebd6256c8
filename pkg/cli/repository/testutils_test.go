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

package repository

import (
	"context"
	"net/http"
	"sort"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/client"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/sync"
	"github.com/notable/notable/pkg/clock"
)

// fakeRemote is an in-memory note service
type fakeRemote struct {
	mu     gosync.Mutex
	notes  map[int]client.Note
	nextID int
	now    time.Time

	// validToken, if set, is the only credential accepted
	validToken string
	err        error

	// onCreate runs once a note is created, before the response is returned
	onCreate func(n client.Note)

	creates int
	updates int
	deletes int
	lists   int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		notes:  map[int]client.Note{},
		nextID: 100,
		now:    time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC),
	}
}

func (r *fakeRemote) check(cred string) error {
	if r.validToken != "" && cred != r.validToken {
		return &client.HTTPError{StatusCode: http.StatusUnauthorized, Message: "token is invalid"}
	}

	return r.err
}

func (r *fakeRemote) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = err
}

func (r *fakeRemote) put(id int, title, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.now = r.now.Add(time.Second)
	r.notes[id] = client.Note{ID: id, Title: title, Description: description, CreatedAt: r.now, UpdatedAt: r.now}
}

func (r *fakeRemote) get(id int) (client.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notes[id]
	return n, ok
}

func (r *fakeRemote) counts() (int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.creates, r.updates, r.deletes
}

func (r *fakeRemote) CreateNote(ctx context.Context, credential, title, description string) (client.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(credential); err != nil {
		return client.Note{}, err
	}

	r.creates++
	r.nextID++
	r.now = r.now.Add(time.Second)
	n := client.Note{ID: r.nextID, Title: title, Description: description, CreatedAt: r.now, UpdatedAt: r.now,
		CreatorName: "Alice", CreatorUsername: "alice"}
	r.notes[n.ID] = n

	if r.onCreate != nil {
		r.onCreate(n)
	}

	return n, nil
}

func (r *fakeRemote) UpdateNote(ctx context.Context, credential string, serverID int, title, description string) (client.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(credential); err != nil {
		return client.Note{}, err
	}

	n, ok := r.notes[serverID]
	if !ok {
		return client.Note{}, &client.HTTPError{StatusCode: http.StatusNotFound, Message: "not found"}
	}

	r.updates++
	r.now = r.now.Add(time.Second)
	n.Title = title
	n.Description = description
	n.UpdatedAt = r.now
	r.notes[serverID] = n

	return n, nil
}

func (r *fakeRemote) DeleteNote(ctx context.Context, credential string, serverID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(credential); err != nil {
		return err
	}
	if _, ok := r.notes[serverID]; !ok {
		return &client.HTTPError{StatusCode: http.StatusNotFound, Message: "not found"}
	}

	r.deletes++
	delete(r.notes, serverID)

	return nil
}

func (r *fakeRemote) ListNotes(ctx context.Context, credential string, page int) (client.NotesPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(credential); err != nil {
		return client.NotesPage{}, err
	}
	r.lists++

	items := []client.Note{}
	for _, n := range r.notes {
		items = append(items, n)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return client.NotesPage{Items: items, Count: len(items)}, nil
}

// staticCreds hands out a fixed token and fails refreshes with refreshErr
type staticCreds struct {
	token      string
	refreshErr error
}

func (c *staticCreds) Credential(ctx context.Context) (string, error) {
	return c.token, nil
}

func (c *staticCreds) Refresh(ctx context.Context) (string, error) {
	if c.refreshErr != nil {
		return "", c.refreshErr
	}

	return c.token, nil
}

// toggle is a connectivity checker that can be switched on and off
type toggle struct {
	online atomic.Bool
}

func newToggle(online bool) *toggle {
	t := &toggle{}
	t.online.Store(online)
	return t
}

func (t *toggle) Online(ctx context.Context) bool {
	return t.online.Load()
}

const testUserID = 1

var testUser = auth.User{ID: testUserID, Username: "alice", Name: "Alice"}

type testRepo struct {
	*Repository
	db     *database.DB
	remote *fakeRemote
	net    *toggle
	clock  *clock.Mock
	creds  *staticCreds
}

func setupRepo(t *testing.T, online bool) testRepo {
	t.Helper()

	db := database.InitTestMemoryDB(t)
	remote := newFakeRemote()
	creds := &staticCreds{token: "tok"}
	c := clock.NewMock()
	net := newToggle(online)
	session := auth.NewSession(testUser, "tok", "refresh")

	repo := New(Params{
		DB:          db,
		Syncer:      sync.New(db, remote, creds, session, c),
		Remote:      remote,
		Credentials: creds,
		Session:     session,
		Checker:     net,
		Clock:       c,
	})
	t.Cleanup(func() { repo.Close() })

	return testRepo{
		Repository: repo,
		db:         db,
		remote:     remote,
		net:        net,
		clock:      c,
		creds:      creds,
	}
}
