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

package sync

import (
	"context"
	"net/http"
	"sort"
	gosync "sync"
	"testing"
	"time"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/client"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/clock"
)

var serverTime = time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)

// fakeRemote is an in-memory note service
type fakeRemote struct {
	mu       gosync.Mutex
	notes    map[int]client.Note
	nextID   int
	now      time.Time
	pageSize int

	// validToken, if set, is the only credential accepted
	validToken string

	createErr error
	updateErr error
	deleteErr error
	listErr   error

	// failCreateTitle makes the create of a note with the given title fail
	failCreateTitle string

	// onCreate runs before a create is answered, outside of the lock
	onCreate func(title string)
	// onUpdate runs before an update is answered, outside of the lock
	onUpdate func(serverID int)
	// onList runs when ListNotes is called, before listGate is awaited
	onList func()
	// listGate, if set, blocks ListNotes until it is closed
	listGate chan struct{}

	creates int
	updates int
	deletes int
	lists   int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		notes:    map[int]client.Note{},
		nextID:   100,
		now:      serverTime,
		pageSize: 2,
	}
}

func (r *fakeRemote) authorize(cred string) error {
	if r.validToken != "" && cred != r.validToken {
		return &client.HTTPError{StatusCode: http.StatusUnauthorized, Message: "token is invalid"}
	}

	return nil
}

func (r *fakeRemote) tick() time.Time {
	r.now = r.now.Add(time.Second)
	return r.now
}

// put stores a note as if another device had created it
func (r *fakeRemote) put(id int, title, description string) client.Note {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.tick()
	n := client.Note{ID: id, Title: title, Description: description, CreatedAt: ts, UpdatedAt: ts,
		CreatorName: "Alice", CreatorUsername: "alice"}
	r.notes[id] = n

	return n
}

func (r *fakeRemote) get(id int) (client.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notes[id]
	return n, ok
}

func (r *fakeRemote) CreateNote(ctx context.Context, credential, title, description string) (client.Note, error) {
	if r.onCreate != nil {
		r.onCreate(title)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(credential); err != nil {
		return client.Note{}, err
	}
	if r.createErr != nil {
		return client.Note{}, r.createErr
	}
	if r.failCreateTitle != "" && title == r.failCreateTitle {
		return client.Note{}, &client.HTTPError{StatusCode: http.StatusInternalServerError, Message: "boom"}
	}

	r.creates++
	r.nextID++
	ts := r.tick()
	n := client.Note{ID: r.nextID, Title: title, Description: description, CreatedAt: ts, UpdatedAt: ts,
		CreatorName: "Alice", CreatorUsername: "alice"}
	r.notes[n.ID] = n

	return n, nil
}

func (r *fakeRemote) UpdateNote(ctx context.Context, credential string, serverID int, title, description string) (client.Note, error) {
	if r.onUpdate != nil {
		r.onUpdate(serverID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(credential); err != nil {
		return client.Note{}, err
	}
	if r.updateErr != nil {
		return client.Note{}, r.updateErr
	}

	n, ok := r.notes[serverID]
	if !ok {
		return client.Note{}, &client.HTTPError{StatusCode: http.StatusNotFound, Message: "not found"}
	}

	r.updates++
	n.Title = title
	n.Description = description
	n.UpdatedAt = r.tick()
	r.notes[serverID] = n

	return n, nil
}

func (r *fakeRemote) DeleteNote(ctx context.Context, credential string, serverID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(credential); err != nil {
		return err
	}
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.notes[serverID]; !ok {
		return &client.HTTPError{StatusCode: http.StatusNotFound, Message: "not found"}
	}

	r.deletes++
	delete(r.notes, serverID)

	return nil
}

func (r *fakeRemote) ListNotes(ctx context.Context, credential string, page int) (client.NotesPage, error) {
	if r.onList != nil {
		r.onList()
	}
	if r.listGate != nil {
		<-r.listGate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(credential); err != nil {
		return client.NotesPage{}, err
	}
	r.lists++
	if r.listErr != nil {
		return client.NotesPage{}, r.listErr
	}

	all := []client.Note{}
	for _, n := range r.notes {
		all = append(all, n)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := (page - 1) * r.pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + r.pageSize
	if end > len(all) {
		end = len(all)
	}

	return client.NotesPage{
		Items:   all[start:end],
		Count:   len(all),
		HasMore: end < len(all),
	}, nil
}

// fakeCreds hands out a fixed token and a fresh one on refresh
type fakeCreds struct {
	mu         gosync.Mutex
	token      string
	err        error
	refreshErr error
	refreshes  int
}

func (c *fakeCreds) Credential(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return "", c.err
	}

	return c.token, nil
}

func (c *fakeCreds) Refresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshes++
	if c.refreshErr != nil {
		return "", c.refreshErr
	}
	c.token = "fresh"

	return c.token, nil
}

var _ auth.Credentials = &fakeCreds{}

// switchableIdentity is a signed in user that can change during a pass
type switchableIdentity struct {
	mu     gosync.Mutex
	userID int
}

func (i *switchableIdentity) UserID() (int, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.userID, i.userID != 0
}

func (i *switchableIdentity) set(userID int) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.userID = userID
}

const testUserID = 1

func setupEngine(t *testing.T) (*Engine, *database.DB, *fakeRemote, *fakeCreds) {
	t.Helper()

	db := database.InitTestMemoryDB(t)
	remote := newFakeRemote()
	creds := &fakeCreds{token: "tok"}
	session := auth.NewSession(auth.User{ID: testUserID, Username: "alice"}, "tok", "refresh")

	return New(db, remote, creds, session, clock.NewMock()), db, remote, creds
}
