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
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/notable/notable/pkg/cli/auth"
	cliContext "github.com/notable/notable/pkg/cli/context"
	cliDatabase "github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/sync"
	"github.com/notable/notable/pkg/clock"
	"github.com/notable/notable/pkg/server/app"
	"github.com/notable/notable/pkg/server/controllers"
	"github.com/notable/notable/pkg/server/database"
	apitest "github.com/notable/notable/pkg/server/testutils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const testPassword = "pass1234"

// testServer is an in-process server sharing its mock clock with the devices
type testServer struct {
	db    *gorm.DB
	app   *app.App
	url   string
	clock *clock.Mock
}

func newTestServer(t *testing.T) *testServer {
	db := apitest.InitMemoryDB(t)

	a := app.NewTest(db)
	c := a.Clock.(*clock.Mock)
	// The client reads the expiry of the tokens it holds
	c.SetNow(time.Now().UTC().Truncate(time.Second))

	server := controllers.MustNewServer(t, &a)

	return &testServer{
		db:    db,
		app:   &a,
		url:   server.URL,
		clock: c,
	}
}

func (s *testServer) mustCreateUser(username string) database.User {
	return apitest.SetupUserData(s.db, username, testPassword)
}

func (s *testServer) mustCreateNote(user database.User, title, description string) database.Note {
	return apitest.SetupNoteData(s.db, user, title, description, s.clock.Now())
}

func (s *testServer) notesOf(t *testing.T, userID int) []database.Note {
	var notes []database.Note
	apitest.MustExec(t, s.db.Where("user_id = ?", userID).Order("id ASC").Find(&notes), "finding server notes")

	return notes
}

func (s *testServer) mustGetNote(t *testing.T, id int) database.Note {
	var note database.Note
	apitest.MustExec(t, s.db.Where("id = ?", id).First(&note), "finding server note")

	return note
}

func (s *testServer) noteExists(t *testing.T, id int) bool {
	var count int64
	apitest.MustExec(t, s.db.Model(&database.Note{}).Where("id = ?", id).Count(&count), "counting server notes")

	return count > 0
}

// network is a connectivity checker that the tests switch on and off
type network struct {
	online atomic.Bool
}

func (n *network) Online(ctx context.Context) bool {
	return n.online.Load()
}

func (n *network) set(online bool) {
	n.online.Store(online)
}

// device is a client installation with its own local database
type device struct {
	ctx      cliContext.NotableCtx
	services *infra.Services
	network  *network
}

func newDevice(t *testing.T, s *testServer) *device {
	ctx := cliContext.InitTestCtx(t)
	ctx.APIEndpoint = s.url + "/api"
	ctx.Clock = s.clock
	ctx.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	// Small pages make every pull span several requests
	ctx.PageSize = 2

	n := &network{}
	n.set(true)

	services := infra.NewServices(ctx, n)
	t.Cleanup(func() { services.Close() })

	return &device{
		ctx:      ctx,
		services: services,
		network:  n,
	}
}

func (d *device) mustLogin(t *testing.T, username string) auth.User {
	user, err := d.services.Auth.Login(context.Background(), username, testPassword)
	if err != nil {
		t.Fatal(errors.Wrapf(err, "logging in as %s", username))
	}

	return user
}

func (d *device) mustSync(t *testing.T, userID int) sync.Result {
	res, err := d.services.Repo.SyncNow(context.Background(), userID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	return res
}

// settle waits for the background passes of the device to finish. The
// repository of the device is closed afterwards.
func (d *device) settle(t *testing.T) {
	if err := d.services.Close(); err != nil {
		t.Fatal(errors.Wrap(err, "closing the services"))
	}
}

func (d *device) notesOf(t *testing.T, userID int) []cliDatabase.Note {
	notes, err := cliDatabase.NotesForUser(d.ctx.DB, userID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing local notes"))
	}

	return notes
}

func titlesOf(notes []cliDatabase.Note) []string {
	ret := []string{}
	for _, n := range notes {
		ret = append(ret, n.Title)
	}

	return ret
}
