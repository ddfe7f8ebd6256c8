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

package infra

import (
	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/client"
	"github.com/notable/notable/pkg/cli/connectivity"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/repository"
	"github.com/notable/notable/pkg/cli/sync"
	"github.com/pkg/errors"
)

// ErrLoginRequired is returned by the commands that need a signed in user
var ErrLoginRequired = errors.Wrap(auth.ErrAuthRequired, "run 'notable login' first")

// Services are the components the commands are built on. They share the
// database and the session of the context.
type Services struct {
	Client  *client.Client
	Auth    *auth.Authenticator
	Engine  *sync.Engine
	Checker connectivity.Checker
	Repo    *repository.Repository
}

// NewServices wires the components for the given context. A nil checker probes
// the health endpoint of the server.
func NewServices(ctx context.NotableCtx, checker connectivity.Checker) *Services {
	c := client.New(ctx.APIEndpoint, ctx.Version, ctx.HTTPClient)
	if ctx.PageSize > 0 {
		c.PageSize = ctx.PageSize
	}

	if checker == nil {
		checker = connectivity.NewHTTPChecker(c, ctx.Clock, connectivity.DefaultTTL)
	}

	a := auth.New(ctx.DB, ctx.Session, c, ctx.Clock)
	engine := sync.New(ctx.DB, c, a, ctx.Session, ctx.Clock)

	repo := repository.New(repository.Params{
		DB:          ctx.DB,
		Syncer:      engine,
		Remote:      c,
		Credentials: a,
		Session:     ctx.Session,
		Checker:     checker,
		Clock:       ctx.Clock,
	})

	return &Services{
		Client:  c,
		Auth:    a,
		Engine:  engine,
		Checker: checker,
		Repo:    repo,
	}
}

// CurrentUser returns the signed in user or ErrLoginRequired
func (s *Services) CurrentUser() (auth.User, error) {
	u, ok := s.Auth.Session().User()
	if !ok {
		return auth.User{}, ErrLoginRequired
	}

	return u, nil
}

// Close waits for the background passes of the repository to finish
func (s *Services) Close() error {
	return s.Repo.Close()
}
