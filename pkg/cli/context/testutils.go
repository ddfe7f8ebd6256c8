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

package context

import (
	"testing"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/clock"
	"github.com/pkg/errors"
)

// TestUser is the user signed in by Login
var TestUser = auth.User{ID: 1, Username: "alice", Name: "Alice"}

func getDefaultTestPaths(t *testing.T) Paths {
	tmpDir := t.TempDir()
	return Paths{
		Home:   tmpDir,
		Cache:  tmpDir,
		Config: tmpDir,
		Data:   tmpDir,
	}
}

// InitTestCtx initializes a test context with an in-memory database, a mock
// clock and a temporary directory for all paths. Nobody is signed in.
func InitTestCtx(t *testing.T) NotableCtx {
	return InitTestCtxWithDB(t, database.InitTestMemoryDB(t))
}

// InitTestCtxWithDB initializes a test context with the provided database
func InitTestCtxWithDB(t *testing.T, db *database.DB) NotableCtx {
	paths := getDefaultTestPaths(t)

	if err := InitNotableDirs(paths); err != nil {
		t.Fatal(errors.Wrap(err, "creating test directories"))
	}

	return NotableCtx{
		DB:       db,
		Paths:    paths,
		Session:  &auth.Session{},
		PageSize: 50,
		Clock:    clock.NewMock(),
	}
}

// Login signs in TestUser by persisting a session
func Login(t *testing.T, ctx *NotableCtx) {
	s := auth.NewSession(TestUser, "someAccessToken", "someRefreshToken")
	if err := s.Save(ctx.DB); err != nil {
		t.Fatal(errors.Wrap(err, "saving the test session"))
	}

	ctx.Session = s
}
