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

// Package repository provides the note operations of the client. Every
// operation answers from the local store first and reconciles with the server
// in the background.
package repository

import (
	"context"
	gosync "sync"
	"time"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/client"
	"github.com/notable/notable/pkg/cli/connectivity"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/sync"
	"github.com/notable/notable/pkg/clock"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotFound is an error for a note that does not exist for the current user
	ErrNotFound = errors.New("note not found")
	// ErrClosed is an error for an operation on a closed repository
	ErrClosed = errors.New("repository closed")
)

// Remote is the part of the server API used for immediate writes
type Remote interface {
	CreateNote(ctx context.Context, credential, title, description string) (client.Note, error)
	UpdateNote(ctx context.Context, credential string, serverID int, title, description string) (client.Note, error)
	DeleteNote(ctx context.Context, credential string, serverID int) error
}

// Syncer runs reconciliation passes
type Syncer interface {
	Run(ctx context.Context, userID int) (sync.Result, error)
}

// Params are the dependencies of a repository
type Params struct {
	DB          *database.DB
	Syncer      Syncer
	Remote      Remote
	Credentials auth.Credentials
	Session     *auth.Session
	Checker     connectivity.Checker
	Clock       clock.Clock
}

// Repository is the note API of the client
type Repository struct {
	db      *database.DB
	syncer  Syncer
	remote  Remote
	creds   auth.Credentials
	session *auth.Session
	checker connectivity.Checker
	clock   clock.Clock

	// ctx outlives the callers; background passes run under it
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu     gosync.Mutex
	closed bool
}

// New returns a new repository
func New(p Params) *Repository {
	ctx, cancel := context.WithCancel(context.Background())

	c := p.Clock
	if c == nil {
		c = clock.New()
	}

	return &Repository{
		db:      p.DB,
		syncer:  p.Syncer,
		remote:  p.Remote,
		creds:   p.Credentials,
		session: p.Session,
		checker: p.Checker,
		clock:   c,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (r *Repository) currentUser() (auth.User, error) {
	u, ok := r.session.User()
	if !ok {
		return auth.User{}, auth.ErrAuthRequired
	}

	return u, nil
}

// signedIn returns an error wrapping auth.ErrAuthRequired unless the given user
// is the one signed in
func (r *Repository) signedIn(userID int) error {
	uid, ok := r.session.UserID()
	if !ok {
		return auth.ErrAuthRequired
	}
	if uid != userID {
		return errors.Wrapf(auth.ErrAuthRequired, "user %d is not signed in", userID)
	}

	return nil
}

// schedule starts a background pass for the given user if the server can be
// reached. It returns without waiting for the pass.
func (r *Repository) schedule(ctx context.Context, userID int) {
	if r.signedIn(userID) != nil {
		return
	}
	if !r.checker.Online(ctx) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.group.Go(func() error {
		res, err := r.syncer.Run(r.ctx, userID)
		if err != nil {
			log.Debug("background sync for user %d: %s\n", userID, err.Error())
		} else {
			log.Debug("background sync for user %d: pushed %d, pulled %d\n", userID, res.Pushed(), res.Pulled)
		}

		return nil
	})
}

// stamp returns the timestamp of a local edit. It never goes back in time
// relative to the previous timestamp of the note.
func (r *Repository) stamp(prev time.Time) time.Time {
	now := r.clock.Now().UTC()
	if now.Before(prev) {
		return prev
	}

	return now
}

// List returns the notes of the user, most recently updated first, and starts
// a background pass
func (r *Repository) List(ctx context.Context, userID int) ([]database.Note, error) {
	notes, err := database.NotesForUser(r.db, userID)
	if err != nil {
		return nil, errors.Wrap(err, "listing notes")
	}

	r.schedule(ctx, userID)

	return notes, nil
}

// Get returns the note of the current user with the given id
func (r *Repository) Get(ctx context.Context, id int) (database.Note, error) {
	u, err := r.currentUser()
	if err != nil {
		return database.Note{}, err
	}

	return r.find(u.ID, id)
}

func (r *Repository) find(userID, id int) (database.Note, error) {
	n, err := database.NoteByID(r.db, id)
	if errors.Is(err, database.ErrNoteNotFound) {
		return database.Note{}, errors.Wrapf(ErrNotFound, "id %d", id)
	} else if err != nil {
		return database.Note{}, errors.Wrapf(err, "finding note %d", id)
	}

	if n.UserID != userID || n.Deleted {
		return database.Note{}, errors.Wrapf(ErrNotFound, "id %d", id)
	}

	return n, nil
}

// surfaced returns the error of an immediate remote call that the caller must
// see. Other failures only make the note wait for the background pass.
func surfaced(op string, err error) error {
	if errors.Is(err, auth.ErrAuthExpired) {
		return err
	}

	log.Debug("%s on the server, keeping it for later: %s\n", op, err.Error())
	return nil
}

func (r *Repository) pulledCopy(userID, serverID int) (database.Note, error) {
	n, err := database.NoteByServerID(r.db, userID, serverID)
	if err != nil {
		return database.Note{}, errors.Wrap(err, "finding the created note")
	}

	return n, nil
}

// Create creates a note for the current user. Online, the server is asked
// first and the note is stored as synced. Otherwise, or if the server fails,
// the note is stored with a local id for the background pass to push. If the
// session expired during the attempt, the stored note is returned along with
// auth.ErrAuthExpired.
func (r *Repository) Create(ctx context.Context, title, description string) (database.Note, error) {
	u, err := r.currentUser()
	if err != nil {
		return database.Note{}, err
	}

	defer r.schedule(ctx, u.ID)

	var ret error
	if r.checker.Online(ctx) {
		var rn client.Note
		err := auth.WithCredential(ctx, r.creds, func(cred string) error {
			var err error
			rn, err = r.remote.CreateNote(ctx, cred, title, description)
			return err
		})
		if err == nil {
			n := sync.Adopt(database.Note{ID: rn.ID, UserID: u.ID}, rn)
			_, err := database.InsertNote(r.db, n)
			if errors.Is(err, database.ErrDuplicateNote) {
				// a pass pulled the note before the response arrived
				return r.pulledCopy(u.ID, rn.ID)
			} else if err != nil {
				return database.Note{}, errors.Wrap(err, "saving the created note")
			}

			return n, nil
		}

		ret = surfaced("creating the note", err)
	}

	n := database.NewLocalNote(0, u.ID, title, description, r.stamp(time.Time{}))
	n.CreatorName = u.Name
	n.CreatorUsername = u.Username

	id, err := database.InsertNote(r.db, n)
	if err != nil {
		return database.Note{}, errors.Wrap(err, "saving the note")
	}
	n.ID = id

	return n, ret
}

// Update replaces the title and the description of the note with the given id.
// A synced note is updated on the server right away when it can be reached.
// Otherwise the edit is stored and left for the background pass.
func (r *Repository) Update(ctx context.Context, id int, title, description string) (database.Note, error) {
	u, err := r.currentUser()
	if err != nil {
		return database.Note{}, err
	}

	n, err := r.find(u.ID, id)
	if err != nil {
		return database.Note{}, err
	}

	defer r.schedule(ctx, u.ID)

	var ret error
	if n.Status == database.StatusSynced && n.HasServerID() && r.checker.Online(ctx) {
		var rn client.Note
		err := auth.WithCredential(ctx, r.creds, func(cred string) error {
			var err error
			rn, err = r.remote.UpdateNote(ctx, cred, *n.ServerID, title, description)
			return err
		})
		if err == nil {
			next := sync.Adopt(n, rn)
			if err := database.UpdateNote(r.db, next); err != nil {
				return database.Note{}, errors.Wrap(err, "saving the updated note")
			}

			return next, nil
		}

		ret = surfaced("updating the note", err)
	}

	n.Title = title
	n.Description = description
	n.UpdatedAt = r.stamp(n.UpdatedAt)
	switch n.Status {
	case database.StatusSynced, database.StatusSyncError:
		if n.HasServerID() {
			n.Status = database.StatusPendingUpdate
		} else {
			n.Status = database.StatusPendingCreate
		}
	}

	if err := database.UpdateNote(r.db, n); err != nil {
		return database.Note{}, errors.Wrap(err, "saving the note")
	}

	return n, ret
}

// Delete deletes the note with the given id. A note the server never saw is
// removed right away. A synced note is deleted on the server when it can be
// reached; otherwise it is hidden and left for the background pass.
func (r *Repository) Delete(ctx context.Context, id int) error {
	u, err := r.currentUser()
	if err != nil {
		return err
	}

	n, err := r.find(u.ID, id)
	if err != nil {
		return err
	}

	defer r.schedule(ctx, u.ID)

	if !n.HasServerID() {
		if err := database.HardDeleteNote(r.db, n.ID); err != nil {
			return errors.Wrap(err, "removing the note")
		}

		return nil
	}

	var ret error
	if n.Status == database.StatusSynced && r.checker.Online(ctx) {
		err := auth.WithCredential(ctx, r.creds, func(cred string) error {
			return r.remote.DeleteNote(ctx, cred, *n.ServerID)
		})
		if err == nil || errors.Is(err, client.ErrNotFound) {
			if err := database.HardDeleteNote(r.db, n.ID); err != nil {
				return errors.Wrap(err, "removing the note")
			}

			return nil
		}

		ret = surfaced("deleting the note", err)
	}

	if err := database.SoftDeleteNote(r.db, n.ID, database.StatusPendingDelete, r.stamp(n.UpdatedAt)); err != nil {
		return errors.Wrap(err, "marking the note deleted")
	}

	return ret
}

// Search returns the notes of the user whose title or description contains
// the query, ignoring case
func (r *Repository) Search(ctx context.Context, userID int, query string) ([]database.Note, error) {
	notes, err := database.SearchNotes(r.db, userID, query)
	if err != nil {
		return nil, errors.Wrap(err, "searching notes")
	}

	return notes, nil
}

// SyncNow runs a reconciliation pass for the user and waits for it. It does
// nothing if the server cannot be reached. Only the signed in user can be synced.
func (r *Repository) SyncNow(ctx context.Context, userID int) (sync.Result, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return sync.Result{}, ErrClosed
	}
	if err := r.signedIn(userID); err != nil {
		return sync.Result{}, err
	}

	if !r.checker.Online(ctx) {
		log.Debug("offline, skipping sync for user %d\n", userID)
		return sync.Result{}, nil
	}

	return r.syncer.Run(ctx, userID)
}

// Watch returns the changes to the notes of the user. The returned func stops
// the subscription.
func (r *Repository) Watch(userID int) (<-chan database.Change, func()) {
	return r.db.Watch(userID)
}

// Close stops scheduling background passes and waits for the ones in flight
func (r *Repository) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	err := r.group.Wait()
	r.cancel()

	return err
}
