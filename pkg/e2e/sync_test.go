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

package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/notable/notable/pkg/assert"
	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/client"
	cliDatabase "github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/repository"
	"github.com/notable/notable/pkg/server/app"
	"github.com/pkg/errors"
)

func TestOfflineCreateThenSync(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.mustCreateUser("alice")

	d := newDevice(t, srv)
	user := d.mustLogin(t, "alice")
	assert.Equal(t, user.ID, alice.ID, "user id mismatch")

	d.network.set(false)
	n, err := d.services.Repo.Create(context.Background(), "Shopping", "milk, eggs")
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating offline"))
	}
	assert.Equal(t, n.ID, -1, "local id mismatch")
	assert.Equal(t, n.Status, cliDatabase.StatusPendingCreate, "status mismatch")
	assert.Equal(t, len(srv.notesOf(t, alice.ID)), 0, "the server should not have the note yet")

	d.network.set(true)
	res := d.mustSync(t, user.ID)
	assert.Equal(t, res.Created, 1, "created mismatch")
	assert.Equal(t, res.Pulled, 0, "the pushed note should not be pulled back")

	got := cliDatabase.MustGetNote(t, d.ctx.DB, -1)
	assert.Equal(t, got.Status, cliDatabase.StatusSynced, "status mismatch")
	assert.Equal(t, got.HasServerID(), true, "server id should be assigned")
	assert.Equal(t, got.CreatorUsername, "alice", "creator mismatch")

	serverNotes := srv.notesOf(t, alice.ID)
	assert.Equal(t, len(serverNotes), 1, "server note count mismatch")
	assert.Equal(t, *got.ServerID, serverNotes[0].ID, "server id mismatch")
	assert.Equal(t, serverNotes[0].Title, "Shopping", "server title mismatch")
	assert.Equal(t, serverNotes[0].Description, "milk, eggs", "server description mismatch")
}

func TestSync_noDuplicatePush(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.mustCreateUser("alice")

	d := newDevice(t, srv)
	user := d.mustLogin(t, "alice")

	d.network.set(false)
	for i := 0; i < 3; i++ {
		if _, err := d.services.Repo.Create(context.Background(), fmt.Sprintf("Note %d", i), ""); err != nil {
			t.Fatal(errors.Wrap(err, "creating offline"))
		}
	}

	d.network.set(true)
	first := d.mustSync(t, user.ID)
	second := d.mustSync(t, user.ID)

	assert.Equal(t, first.Created, 3, "first pass created mismatch")
	assert.Equal(t, second.Created, 0, "second pass should not create")
	assert.Equal(t, second.Pulled, 0, "second pass should not pull")
	assert.Equal(t, len(srv.notesOf(t, alice.ID)), 3, "server note count mismatch")
	assert.Equal(t, cliDatabase.CountNotes(t, d.ctx.DB), 3, "local note count mismatch")
}

func TestSync_idempotentPull(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.mustCreateUser("alice")
	for i := 0; i < 5; i++ {
		srv.mustCreateNote(alice, fmt.Sprintf("Server note %d", i), "from the web")
	}

	d := newDevice(t, srv)
	user := d.mustLogin(t, "alice")

	first := d.mustSync(t, user.ID)
	assert.Equal(t, first.Pulled, 5, "first pass pulled mismatch")

	second := d.mustSync(t, user.ID)
	assert.Equal(t, second.Pulled, 0, "second pass pulled mismatch")
	assert.Equal(t, second.Refreshed, 0, "second pass refreshed mismatch")

	notes := d.notesOf(t, user.ID)
	assert.Equal(t, len(notes), 5, "local note count mismatch")
	for _, n := range notes {
		assert.Equal(t, n.Status, cliDatabase.StatusSynced, fmt.Sprintf("status of %d mismatch", n.ID))
		assert.Equal(t, *n.ServerID, n.ID, fmt.Sprintf("pulled note %d should keep the server id", n.ID))
	}
}

func TestSync_pendingUpdateWins(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.mustCreateUser("alice")
	sn := srv.mustCreateNote(alice, "Todo", "buy milk")

	d := newDevice(t, srv)
	user := d.mustLogin(t, "alice")
	d.mustSync(t, user.ID)

	d.network.set(false)
	local, err := d.services.Repo.Update(context.Background(), sn.ID, "Todo", "buy oat milk")
	if err != nil {
		t.Fatal(errors.Wrap(err, "updating offline"))
	}
	assert.Equal(t, local.Status, cliDatabase.StatusPendingUpdate, "status mismatch")

	// Someone edits the same note on another device in the meantime
	srv.clock.Advance(time.Minute)
	if _, err := srv.app.UpdateNote(alice.ID, sn.ID, app.NoteParams{Title: "Todo", Description: "buy soy milk"}); err != nil {
		t.Fatal(errors.Wrap(err, "updating on the server"))
	}

	d.network.set(true)
	res := d.mustSync(t, user.ID)
	assert.Equal(t, res.Updated, 1, "updated mismatch")

	got := cliDatabase.MustGetNote(t, d.ctx.DB, sn.ID)
	assert.Equal(t, got.Description, "buy oat milk", "local description mismatch")
	assert.Equal(t, got.Status, cliDatabase.StatusSynced, "local status mismatch")
	assert.Equal(t, srv.mustGetNote(t, sn.ID).Description, "buy oat milk", "server description mismatch")
}

func TestSync_hardDeleteFinality(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.mustCreateUser("alice")
	sn := srv.mustCreateNote(alice, "Old", "remove me")
	srv.mustCreateNote(alice, "Keep", "")

	d := newDevice(t, srv)
	user := d.mustLogin(t, "alice")
	d.mustSync(t, user.ID)

	d.network.set(false)
	if err := d.services.Repo.Delete(context.Background(), sn.ID); err != nil {
		t.Fatal(errors.Wrap(err, "deleting offline"))
	}

	pending := cliDatabase.MustGetNote(t, d.ctx.DB, sn.ID)
	assert.Equal(t, pending.Status, cliDatabase.StatusPendingDelete, "status mismatch")
	assert.Equal(t, pending.Deleted, true, "the note should be hidden")
	_, err := d.services.Repo.Get(context.Background(), sn.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound, "a deleted note should not be found")

	d.network.set(true)
	res := d.mustSync(t, user.ID)
	assert.Equal(t, res.Deleted, 1, "deleted mismatch")
	assert.Equal(t, res.Pulled, 0, "the deleted note should not be pulled back")

	_, err = cliDatabase.NoteByID(d.ctx.DB, sn.ID)
	assert.ErrorIs(t, err, cliDatabase.ErrNoteNotFound, "the local row should be removed")
	assert.Equal(t, srv.noteExists(t, sn.ID), false, "the server note should be removed")

	d.mustSync(t, user.ID)
	assert.Equal(t, cliDatabase.CountNotes(t, d.ctx.DB), 1, "local note count mismatch")
	assert.DeepEqual(t, titlesOf(d.notesOf(t, user.ID)), []string{"Keep"}, "remaining notes mismatch")
}

func TestSync_serverDeletionKeepsLocalCopy(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.mustCreateUser("alice")
	sn := srv.mustCreateNote(alice, "Ephemeral", "")

	d := newDevice(t, srv)
	user := d.mustLogin(t, "alice")
	d.mustSync(t, user.ID)

	if err := srv.app.DeleteNote(alice.ID, sn.ID); err != nil {
		t.Fatal(errors.Wrap(err, "deleting on the server"))
	}

	d.mustSync(t, user.ID)

	got := cliDatabase.MustGetNote(t, d.ctx.DB, sn.ID)
	assert.Equal(t, got.Status, cliDatabase.StatusSynced, "status mismatch")
	assert.Equal(t, got.Title, "Ephemeral", "title mismatch")
}

func TestSync_twoDevicesConverge(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.mustCreateUser("alice")

	laptop := newDevice(t, srv)
	phone := newDevice(t, srv)
	user := laptop.mustLogin(t, "alice")
	phone.mustLogin(t, "alice")

	laptop.network.set(false)
	if _, err := laptop.services.Repo.Create(context.Background(), "Trip", "pack the tent"); err != nil {
		t.Fatal(errors.Wrap(err, "creating on the laptop"))
	}
	laptop.network.set(true)
	laptop.mustSync(t, user.ID)

	res := phone.mustSync(t, user.ID)
	assert.Equal(t, res.Pulled, 1, "phone pulled mismatch")

	serverID := srv.notesOf(t, alice.ID)[0].ID
	phone.network.set(false)
	if _, err := phone.services.Repo.Update(context.Background(), serverID, "Trip", "pack the tent and the stove"); err != nil {
		t.Fatal(errors.Wrap(err, "updating on the phone"))
	}
	phone.network.set(true)
	phone.mustSync(t, user.ID)

	res = laptop.mustSync(t, user.ID)
	assert.Equal(t, res.Refreshed, 1, "laptop refreshed mismatch")

	got := laptop.notesOf(t, user.ID)
	assert.Equal(t, len(got), 1, "laptop note count mismatch")
	assert.Equal(t, got[0].ID, -1, "the laptop should keep its local id")
	assert.Equal(t, got[0].Description, "pack the tent and the stove", "laptop description mismatch")
}

func TestCreate_online(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.mustCreateUser("alice")

	d := newDevice(t, srv)
	d.mustLogin(t, "alice")

	n, err := d.services.Repo.Create(context.Background(), "Shopping", "milk, eggs")
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating online"))
	}
	d.settle(t)

	assert.Equal(t, n.Status, cliDatabase.StatusSynced, "status mismatch")
	assert.Equal(t, n.HasServerID(), true, "server id should be assigned")

	serverNotes := srv.notesOf(t, alice.ID)
	assert.Equal(t, len(serverNotes), 1, "server note count mismatch")
	assert.Equal(t, serverNotes[0].ID, *n.ServerID, "server id mismatch")
	assert.Equal(t, cliDatabase.CountNotes(t, d.ctx.DB), 1, "local note count mismatch")
}

func TestSync_onlySignedInUser(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.mustCreateUser("alice")
	bob := srv.mustCreateUser("bob")
	srv.mustCreateNote(alice, "Alice secret", "x")

	d := newDevice(t, srv)
	d.mustLogin(t, "alice")
	// left over from an earlier session of bob
	cliDatabase.MustInsertNote(t, d.ctx.DB, cliDatabase.NewLocalNote(0, bob.ID, "Bob draft", "y", srv.clock.Now()))

	_, err := d.services.Repo.SyncNow(context.Background(), bob.ID)
	assert.ErrorIs(t, err, auth.ErrAuthRequired, "sync error mismatch")
	d.settle(t)

	aliceNotes := srv.notesOf(t, alice.ID)
	assert.Equal(t, len(aliceNotes), 1, "alice's server note count mismatch")
	assert.Equal(t, aliceNotes[0].Title, "Alice secret", "alice's server note mismatch")
	assert.Equal(t, len(srv.notesOf(t, bob.ID)), 0, "bob's draft should not reach the server")
	assert.DeepEqual(t, titlesOf(d.notesOf(t, bob.ID)), []string{"Bob draft"}, "bob's local notes mismatch")
}

func TestSearch_scopedToUser(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.mustCreateUser("alice")
	bob := srv.mustCreateUser("bob")
	srv.mustCreateNote(alice, "Groceries", "milk, eggs")
	srv.mustCreateNote(alice, "Reading", "The Go Programming Language")
	srv.mustCreateNote(bob, "Groceries", "bob's list")

	d := newDevice(t, srv)
	bobUser := d.mustLogin(t, "bob")
	d.mustSync(t, bobUser.ID)
	aliceUser := d.mustLogin(t, "alice")
	d.mustSync(t, aliceUser.ID)

	testCases := []struct {
		query    string
		expected []string
	}{
		{
			query:    "GROC",
			expected: []string{"Groceries"},
		},
		{
			query:    "go programming",
			expected: []string{"Reading"},
		},
		{
			query:    "bob",
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			got, err := d.services.Repo.Search(context.Background(), alice.ID, tc.query)
			if err != nil {
				t.Fatal(errors.Wrap(err, "searching"))
			}

			assert.DeepEqual(t, titlesOf(got), tc.expected, "result mismatch")
			for _, n := range got {
				assert.Equal(t, n.UserID, alice.ID, "note of another user")
			}
		})
	}
}

func TestLogin_invalidCredentials(t *testing.T) {
	srv := newTestServer(t)
	srv.mustCreateUser("alice")

	d := newDevice(t, srv)

	_, err := d.services.Auth.Login(context.Background(), "alice", "wrong-password")
	assert.ErrorIs(t, err, client.ErrInvalidLogin, "error mismatch")

	_, ok := d.ctx.Session.User()
	assert.Equal(t, ok, false, "nobody should be signed in")
}

func TestAuth_refreshExpiringAccessToken(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.mustCreateUser("alice")
	srv.mustCreateNote(alice, "Groceries", "")

	d := newDevice(t, srv)
	user := d.mustLogin(t, "alice")
	before, _ := d.ctx.Session.Tokens()

	srv.clock.Advance(20 * time.Minute)

	res := d.mustSync(t, user.ID)
	assert.Equal(t, res.Pulled, 1, "pulled mismatch")

	after, _ := d.ctx.Session.Tokens()
	assert.NotEqual(t, after, before, "the access token should be refreshed")

	stored, err := auth.LoadSession(d.ctx.DB)
	if err != nil {
		t.Fatal(errors.Wrap(err, "loading the session"))
	}
	persisted, _ := stored.Tokens()
	assert.Equal(t, persisted, after, "the refreshed token should be persisted")
}

func TestAuth_sessionExpired(t *testing.T) {
	srv := newTestServer(t)
	srv.mustCreateUser("alice")

	d := newDevice(t, srv)
	user := d.mustLogin(t, "alice")

	srv.clock.Advance(25 * time.Hour)

	_, err := d.services.Repo.SyncNow(context.Background(), user.ID)
	assert.ErrorIs(t, err, auth.ErrAuthExpired, "sync error mismatch")

	_, ok := d.ctx.Session.User()
	assert.Equal(t, ok, false, "the session should be cleared")

	_, err = d.services.Repo.Create(context.Background(), "Shopping", "")
	assert.ErrorIs(t, err, auth.ErrAuthRequired, "create error mismatch")
}

func TestCreate_sessionExpiresDuringCreate(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.mustCreateUser("alice")

	d := newDevice(t, srv)
	d.mustLogin(t, "alice")

	srv.clock.Advance(25 * time.Hour)

	n, err := d.services.Repo.Create(context.Background(), "Shopping", "milk, eggs")
	assert.ErrorIs(t, err, auth.ErrAuthExpired, "error mismatch")
	d.settle(t)

	assert.Equal(t, n.ID, -1, "the note should be kept with a local id")
	assert.Equal(t, n.Status, cliDatabase.StatusPendingCreate, "status mismatch")
	assert.Equal(t, cliDatabase.CountNotes(t, d.ctx.DB), 1, "local note count mismatch")
	assert.Equal(t, len(srv.notesOf(t, alice.ID)), 0, "the server should not have the note")
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	srv.mustCreateUser("alice")

	d := newDevice(t, srv)
	d.mustLogin(t, "alice")
	_, refresh := d.ctx.Session.Tokens()

	if err := d.services.Auth.Logout(context.Background()); err != nil {
		t.Fatal(errors.Wrap(err, "logging out"))
	}

	_, ok := d.ctx.Session.User()
	assert.Equal(t, ok, false, "the session should be cleared")

	_, err := srv.app.RefreshAccessToken(refresh)
	assert.ErrorIs(t, err, app.ErrInvalidToken, "the refresh token should be revoked")
}
