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

// Package context defines the runtime context of the notable client
package context

import (
	"net/http"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/clock"
)

// Paths contain directory definitions
type Paths struct {
	Home   string
	Config string
	Data   string
	Cache  string
}

// NotableCtx is a context holding the information of the current runtime
type NotableCtx struct {
	Paths        Paths
	APIEndpoint  string
	Version      string
	DB           *database.DB
	Session      *auth.Session
	Editor       string
	SyncInterval string
	PageSize     int
	Clock        clock.Clock
	HTTPClient   *http.Client
}

// Summary describes the context for debug logging without the credentials
type Summary struct {
	Paths        Paths
	APIEndpoint  string
	Version      string
	Editor       string
	SyncInterval string
	PageSize     int
	SignedIn     bool
}

// Redact returns the parts of the context that are safe to log
func Redact(ctx NotableCtx) Summary {
	var signedIn bool
	if ctx.Session != nil {
		_, signedIn = ctx.Session.User()
	}

	return Summary{
		Paths:        ctx.Paths,
		APIEndpoint:  ctx.APIEndpoint,
		Version:      ctx.Version,
		Editor:       ctx.Editor,
		SyncInterval: ctx.SyncInterval,
		PageSize:     ctx.PageSize,
		SignedIn:     signedIn,
	}
}
