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

package login

import (
	stdctx "context"
	"net/url"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/client"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/output"
	"github.com/notable/notable/pkg/cli/sync"
	"github.com/notable/notable/pkg/cli/ui"
	"github.com/notable/notable/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  notable login`

var usernameFlag, passwordFlag string

// NewCmd returns a new login command
func NewCmd(ctx context.NotableCtx, s *infra.Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Login to the server",
		Example: example,
		RunE:    newRun(ctx, s),
	}

	f := cmd.Flags()
	f.StringVarP(&usernameFlag, "username", "u", "", "username")
	f.StringVarP(&passwordFlag, "password", "p", "", "password")

	return cmd
}

// Do signs in and runs a first sync for the user. A failed sync does not fail the login.
func Do(ctx stdctx.Context, s *infra.Services, username, password string) (auth.User, error) {
	if err := validate.Login(username, password); err != nil {
		return auth.User{}, err
	}

	user, err := s.Auth.Login(ctx, username, password)
	if errors.Is(err, client.ErrInvalidLogin) {
		return auth.User{}, errors.New("wrong login")
	} else if err != nil {
		return auth.User{}, errors.Wrap(err, "logging in")
	}

	res, err := s.Repo.SyncNow(ctx, user.ID)
	if err != nil && !errors.Is(err, sync.ErrSyncIncomplete) {
		log.Warnf("could not sync: %s\n", err.Error())
		return user, nil
	}
	output.SyncResult(res)

	return user, nil
}

func getUsername() (string, error) {
	if usernameFlag != "" {
		return usernameFlag, nil
	}

	var ret string
	if err := ui.PromptInput("username", &ret); err != nil {
		return "", errors.Wrap(err, "getting username input")
	}

	return ret, nil
}

func getPassword() (string, error) {
	if passwordFlag != "" {
		return passwordFlag, nil
	}

	var ret string
	if err := ui.PromptPassword("password", &ret); err != nil {
		return "", errors.Wrap(err, "getting password input")
	}

	return ret, nil
}

// getServerDisplayURL returns the scheme and host of the API endpoint
func getServerDisplayURL(ctx context.NotableCtx) string {
	u, err := url.Parse(ctx.APIEndpoint)
	if err != nil {
		return ""
	}

	if u.Scheme == "" || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host
}

func newRun(ctx context.NotableCtx, s *infra.Services) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		greeting := "Welcome to notable"
		if serverURL := getServerDisplayURL(ctx); serverURL != "" {
			greeting += " (" + serverURL + ")"
		}
		log.Plain(greeting + "\n")

		username, err := getUsername()
		if err != nil {
			return err
		}
		password, err := getPassword()
		if err != nil {
			return err
		}

		user, err := Do(cmd.Context(), s, username, password)
		if err != nil {
			return err
		}

		log.Successf("logged in as %s\n", user.Username)

		return nil
	}
}
