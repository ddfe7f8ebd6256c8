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

// Package sync reconciles the local notes of a user with the server. A pass
// pushes the pending local changes and then pulls the server state.
package sync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/client"
	"github.com/notable/notable/pkg/cli/consts"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/utils/diff"
	"github.com/notable/notable/pkg/clock"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// ErrSyncIncomplete is an error for a pass in which some of the steps failed
var ErrSyncIncomplete = errors.New("sync incomplete")

// Remote is the part of the server API the engine needs
type Remote interface {
	CreateNote(ctx context.Context, credential, title, description string) (client.Note, error)
	UpdateNote(ctx context.Context, credential string, serverID int, title, description string) (client.Note, error)
	DeleteNote(ctx context.Context, credential string, serverID int) error
	ListNotes(ctx context.Context, credential string, page int) (client.NotesPage, error)
}

// Identity reports the user the credentials belong to
type Identity interface {
	UserID() (int, bool)
}

// Result is the outcome of a pass
type Result struct {
	// Created is the number of local notes created on the server
	Created int
	// Updated is the number of local edits accepted by the server
	Updated int
	// Deleted is the number of local deletions confirmed and removed
	Deleted int
	// Pulled is the number of server notes inserted locally
	Pulled int
	// Refreshed is the number of synced notes overwritten by the server state
	Refreshed int
	// Skipped is the number of server notes ignored because the local copy has pending changes
	Skipped int
	// Failed is the number of notes that could not be reconciled
	Failed int
	// PullErr is the error that aborted the pull, if any
	PullErr error
}

// Pushed returns the number of local changes the server accepted
func (r Result) Pushed() int {
	return r.Created + r.Updated + r.Deleted
}

func (r Result) incomplete() error {
	if r.Failed == 0 && r.PullErr == nil {
		return nil
	}

	if r.PullErr != nil {
		return errors.Wrapf(ErrSyncIncomplete, "%d notes failed, pull failed: %s", r.Failed, r.PullErr.Error())
	}

	return errors.Wrapf(ErrSyncIncomplete, "%d notes failed", r.Failed)
}

// Engine runs reconciliation passes. At most one pass per user runs at a time;
// concurrent callers share the pass in flight.
type Engine struct {
	db       *database.DB
	remote   Remote
	creds    auth.Credentials
	identity Identity
	clock    clock.Clock

	group singleflight.Group
}

// New returns a new engine
func New(db *database.DB, remote Remote, creds auth.Credentials, identity Identity, c clock.Clock) *Engine {
	return &Engine{
		db:       db,
		remote:   remote,
		creds:    creds,
		identity: identity,
		clock:    c,
	}
}

// Run reconciles the notes of the given user: it pushes creates, updates and
// deletes, then pulls every page of the server state. A note that fails is left
// as it was and counted. The error is ErrSyncIncomplete if anything failed, or
// the reason the pass could not run at all. Only the signed in user can be
// synced; for anyone else the error wraps auth.ErrAuthRequired.
func (e *Engine) Run(ctx context.Context, userID int) (Result, error) {
	v, err, shared := e.group.Do(strconv.Itoa(userID), func() (interface{}, error) {
		return e.run(ctx, userID)
	})
	if shared {
		log.Debug("joined the sync in flight for user %d\n", userID)
	}

	res, _ := v.(Result)
	return res, err
}

func isAuthErr(err error) bool {
	return errors.Is(err, auth.ErrAuthRequired) || errors.Is(err, auth.ErrAuthExpired)
}

// signedIn returns an error unless the credentials belong to the given user
func (e *Engine) signedIn(userID int) error {
	uid, ok := e.identity.UserID()
	if !ok {
		return auth.ErrAuthRequired
	}
	if uid != userID {
		return errors.Wrapf(auth.ErrAuthRequired, "user %d is not signed in", userID)
	}

	return nil
}

type step func(ctx context.Context, userID int, res *Result) error

func (e *Engine) run(ctx context.Context, userID int) (Result, error) {
	var res Result

	if err := e.signedIn(userID); err != nil {
		return res, err
	}
	if _, err := e.creds.Credential(ctx); err != nil {
		return res, errors.Wrap(err, "getting the credential")
	}

	steps := []struct {
		name string
		fn   step
	}{
		{"pushing creates", e.pushCreates},
		{"pushing updates", e.pushUpdates},
		{"pushing deletes", e.pushDeletes},
		{"pulling", e.pull},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return res, errors.Wrap(err, s.name)
		}

		if err := s.fn(ctx, userID, &res); err != nil {
			return res, errors.Wrap(err, s.name)
		}
	}

	log.Debug("sync for user %d: %+v\n", userID, res)

	if res.PullErr == nil {
		ts := strconv.FormatInt(e.clock.Now().Unix(), 10)
		if err := database.UpsertSystem(e.db, consts.SystemLastSyncAt, ts); err != nil {
			return res, errors.Wrap(err, "saving the last sync time")
		}
	}

	return res, res.incomplete()
}

// LastSyncAt returns the time of the last pass whose pull completed. It is the
// zero time if there was none.
func LastSyncAt(db *database.DB) (time.Time, error) {
	var ts int64
	err := database.GetSystem(db, consts.SystemLastSyncAt, &ts)
	if errors.Is(err, database.ErrSystemNotFound) {
		return time.Time{}, nil
	} else if err != nil {
		return time.Time{}, errors.Wrap(err, "getting the last sync time")
	}

	return time.Unix(ts, 0).UTC(), nil
}

// call runs fn with a credential of the given user, refreshing it once on
// rejection. It fails if another user signed in during the pass.
func (e *Engine) call(ctx context.Context, userID int, fn func(credential string) error) error {
	if err := e.signedIn(userID); err != nil {
		return err
	}

	return auth.WithCredential(ctx, e.creds, fn)
}

// noteFailed records a per-note failure. Authentication failures end the pass
// because every later call would fail the same way.
func noteFailed(res *Result, n database.Note, action string, err error) error {
	if isAuthErr(err) {
		return err
	}

	res.Failed++
	log.Debug("%s note %d: %s\n", action, n.ID, err.Error())

	return nil
}

// Adopt returns the local note with the server state of the note copied into
// it. The result is SYNCED.
func Adopt(n database.Note, rn client.Note) database.Note {
	n.ServerID = database.IntPtr(rn.ID)
	n.Title = rn.Title
	n.Description = rn.Description
	if !rn.CreatedAt.IsZero() {
		n.CreatedAt = storedTime(rn.CreatedAt)
	}
	if !rn.UpdatedAt.IsZero() {
		n.UpdatedAt = storedTime(rn.UpdatedAt)
	}
	if rn.CreatorName != "" {
		n.CreatorName = rn.CreatorName
	}
	if rn.CreatorUsername != "" {
		n.CreatorUsername = rn.CreatorUsername
	}
	n.Deleted = false
	n.Status = database.StatusSynced

	return n
}

// storedTime truncates a server timestamp to the precision of the local store
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func sameServerID(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

// sameNote reports whether two notes hold the same state
func sameNote(a, b database.Note) bool {
	return a.ID == b.ID &&
		sameServerID(a.ServerID, b.ServerID) &&
		a.UserID == b.UserID &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.UpdatedAt.Equal(b.UpdatedAt) &&
		a.CreatorName == b.CreatorName &&
		a.CreatorUsername == b.CreatorUsername &&
		a.Deleted == b.Deleted &&
		a.Status == b.Status
}

// editedSince reports whether the local note changed after it was read for a push.
// Edits can share a timestamp, so the content is compared as well.
func editedSince(cur, sent database.Note) bool {
	return !cur.UpdatedAt.Equal(sent.UpdatedAt) ||
		cur.Status != sent.Status ||
		cur.Title != sent.Title ||
		cur.Description != sent.Description ||
		cur.Deleted != sent.Deleted
}

// writeBack stores the server response for a pushed note. If the note was
// edited locally while the request was in flight, the edit is kept and stays
// pending. It returns false if the note no longer exists.
func (e *Engine) writeBack(sent database.Note, rn client.Note) (bool, error) {
	tx, err := e.db.Begin()
	if err != nil {
		return false, errors.Wrap(err, "beginning a transaction")
	}

	cur, err := database.NoteByID(tx, sent.ID)
	if errors.Is(err, database.ErrNoteNotFound) {
		tx.Rollback()
		return false, nil
	} else if err != nil {
		tx.Rollback()
		return false, err
	}

	var next database.Note
	if !editedSince(cur, sent) {
		next = Adopt(cur, rn)
	} else {
		next = cur
		next.ServerID = database.IntPtr(rn.ID)
		if next.Status == database.StatusPendingCreate {
			next.Status = database.StatusPendingUpdate
		}
	}

	if err := database.UpdateNote(tx, next); err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, errors.Wrap(err, "committing")
	}

	return true, nil
}

func (e *Engine) pushCreates(ctx context.Context, userID int, res *Result) error {
	notes, err := database.NotesNeedingSync(e.db, userID, database.StatusPendingCreate)
	if err != nil {
		return err
	}

	for _, n := range notes {
		var rn client.Note
		err := e.call(ctx, userID, func(cred string) error {
			var err error
			rn, err = e.remote.CreateNote(ctx, cred, n.Title, n.Description)
			return err
		})
		if err != nil {
			if err := noteFailed(res, n, "creating", err); err != nil {
				return err
			}
			continue
		}

		ok, err := e.writeBack(n, rn)
		if err != nil {
			if err := noteFailed(res, n, "saving the created", err); err != nil {
				return err
			}
			continue
		}
		if !ok {
			e.discardOrphan(ctx, n, rn.ID)
			continue
		}

		res.Created++
	}

	return nil
}

// discardOrphan deletes from the server a note whose local copy was removed
// while it was being created
func (e *Engine) discardOrphan(ctx context.Context, n database.Note, serverID int) {
	err := e.call(ctx, n.UserID, func(cred string) error {
		return e.remote.DeleteNote(ctx, cred, serverID)
	})
	if err != nil && !errors.Is(err, client.ErrNotFound) {
		log.Debug("discarding server note %d of removed note %d: %s\n", serverID, n.ID, err.Error())
	}
}

func (e *Engine) pushUpdates(ctx context.Context, userID int, res *Result) error {
	notes, err := database.NotesNeedingSync(e.db, userID, database.StatusPendingUpdate)
	if err != nil {
		return err
	}

	for _, n := range notes {
		if !n.HasServerID() {
			res.Failed++
			log.Debug("note %d is %s without a server id\n", n.ID, n.Status)
			continue
		}

		var rn client.Note
		err := e.call(ctx, userID, func(cred string) error {
			var err error
			rn, err = e.remote.UpdateNote(ctx, cred, *n.ServerID, n.Title, n.Description)
			return err
		})
		if err != nil {
			if err := noteFailed(res, n, "updating", err); err != nil {
				return err
			}
			continue
		}

		if _, err := e.writeBack(n, rn); err != nil {
			if err := noteFailed(res, n, "saving the updated", err); err != nil {
				return err
			}
			continue
		}

		res.Updated++
	}

	return nil
}

func (e *Engine) pushDeletes(ctx context.Context, userID int, res *Result) error {
	notes, err := database.NotesNeedingSync(e.db, userID, database.StatusPendingDelete)
	if err != nil {
		return err
	}

	for _, n := range notes {
		if n.HasServerID() {
			err := e.call(ctx, userID, func(cred string) error {
				return e.remote.DeleteNote(ctx, cred, *n.ServerID)
			})
			if err != nil && !errors.Is(err, client.ErrNotFound) {
				if err := noteFailed(res, n, "deleting", err); err != nil {
					return err
				}
				continue
			}
		}

		if err := database.HardDeleteNote(e.db, n.ID); err != nil && !errors.Is(err, database.ErrNoteNotFound) {
			if err := noteFailed(res, n, "removing the deleted", err); err != nil {
				return err
			}
			continue
		}

		res.Deleted++
	}

	return nil
}

func (e *Engine) pull(ctx context.Context, userID int, res *Result) error {
	for page := 1; ; page++ {
		var p client.NotesPage
		err := e.call(ctx, userID, func(cred string) error {
			var err error
			p, err = e.remote.ListNotes(ctx, cred, page)
			return err
		})
		if isAuthErr(err) {
			return err
		} else if err != nil {
			res.PullErr = errors.Wrapf(err, "listing page %d", page)
			log.Debug("pull aborted: %s\n", res.PullErr.Error())
			return nil
		}

		for _, rn := range p.Items {
			if err := e.merge(userID, rn, res); err != nil {
				res.Failed++
				log.Debug("merging server note %d: %s\n", rn.ID, err.Error())
			}
		}

		if !p.HasMore || len(p.Items) == 0 {
			return nil
		}
	}
}

// merge applies a server note to the local store. The server state replaces a
// synced local copy. A local copy with pending changes is left untouched.
func (e *Engine) merge(userID int, rn client.Note, res *Result) error {
	tx, err := e.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	local, err := database.NoteByServerID(tx, userID, rn.ID)
	if errors.Is(err, database.ErrNoteNotFound) {
		n := Adopt(database.Note{ID: rn.ID, UserID: userID}, rn)
		if _, err := database.InsertNote(tx, n); err != nil {
			tx.Rollback()
			return err
		}
		res.Pulled++

		return commit(tx)
	} else if err != nil {
		tx.Rollback()
		return err
	}

	if local.Status != database.StatusSynced {
		tx.Rollback()
		res.Skipped++

		if log.IsDebug() && (local.Title != rn.Title || diff.Changed(local.Description, rn.Description)) {
			log.Debug("kept %s note %d over the server copy:\n%s", local.Status, local.ID,
				diff.Render(fmt.Sprintf("%s\n%s", rn.Title, rn.Description), fmt.Sprintf("%s\n%s", local.Title, local.Description)))
		}

		return nil
	}

	next := Adopt(local, rn)
	if sameNote(next, local) {
		tx.Rollback()
		return nil
	}

	if err := database.UpdateNote(tx, next); err != nil {
		tx.Rollback()
		return err
	}
	res.Refreshed++

	return commit(tx)
}

func commit(tx *database.DB) error {
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing")
	}

	return nil
}
