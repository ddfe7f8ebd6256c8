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

package job

import (
	"testing"
	"time"

	"github.com/notable/notable/pkg/assert"
	"github.com/notable/notable/pkg/clock"
	"github.com/notable/notable/pkg/server/app"
	"github.com/notable/notable/pkg/server/database"
	"github.com/notable/notable/pkg/server/testutils"
	"github.com/pkg/errors"
)

func TestNewRunner(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		a := app.NewTest(db)

		_, err := NewRunner(&a)
		assert.Equal(t, err, nil, "error mismatch")
	})

	t.Run("missing db", func(t *testing.T) {
		a := app.NewTest(nil)

		_, err := NewRunner(&a)
		assert.ErrorIs(t, err, app.ErrEmptyDB, "error mismatch")
	})
}

func TestStartStop(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := app.NewTest(db)

	r, err := NewRunner(&a)
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing runner"))
	}

	if err := r.Start(); err != nil {
		t.Fatal(errors.Wrap(err, "starting"))
	}
	assert.Equal(t, r.Start(), nil, "starting twice")

	r.Stop()
	r.Stop()
	assert.Equal(t, r.cron == nil, true, "the schedule should be cleared")
}

func TestPurgeExpiredTokens(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := app.NewTest(db)
	alice := testutils.SetupUserData(db, "alice", "pass1234")

	if _, err := a.SignIn(alice); err != nil {
		t.Fatal(errors.Wrap(err, "signing in"))
	}
	a.Clock.(*clock.Mock).Advance(48 * time.Hour)
	if _, err := a.SignIn(alice); err != nil {
		t.Fatal(errors.Wrap(err, "signing in again"))
	}

	r, err := NewRunner(&a)
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing runner"))
	}
	r.PurgeExpiredTokens()

	var tokenCount int64
	testutils.MustExec(t, db.Model(&database.Token{}).Count(&tokenCount), "counting tokens")
	assert.Equal(t, tokenCount, int64(1), "only the active token should remain")
}
