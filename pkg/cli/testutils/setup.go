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

package testutils

import (
	"testing"
	"time"

	"github.com/notable/notable/pkg/cli/connectivity"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/infra"
)

// SetupTime is the timestamp of the notes inserted by the setups
var SetupTime = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

// InitOfflineServices returns the services of a signed in test context whose
// server can never be reached
func InitOfflineServices(t *testing.T) (context.NotableCtx, *infra.Services) {
	ctx := context.InitTestCtx(t)
	context.Login(t, &ctx)
	ctx.APIEndpoint = "http://127.0.0.1:1/api"

	s := infra.NewServices(ctx, connectivity.Static(false))
	t.Cleanup(func() { s.Close() })

	return ctx, s
}

// Setup1 sets up a notable env #1: two synced notes and one offline note of
// the test user, and one note of another user
func Setup1(t *testing.T, db *database.DB) {
	uid := context.TestUser.ID

	database.MustInsertNote(t, db, database.SyncedNote(uid, 11, "Groceries", "milk, eggs", SetupTime))
	database.MustInsertNote(t, db, database.SyncedNote(uid, 12, "Reading", "The Go Programming Language", SetupTime.Add(time.Hour)))
	database.MustInsertNote(t, db, database.NewLocalNote(-1, uid, "Grocery list", "bread", SetupTime.Add(2*time.Hour)))
	database.MustInsertNote(t, db, database.SyncedNote(uid+1, 13, "Groceries", "someone else's", SetupTime))
}
