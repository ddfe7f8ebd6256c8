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

package register

import (
	stdctx "context"

	"github.com/notable/notable/pkg/cli/client"
	"github.com/notable/notable/pkg/cli/cmd/login"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/ui"
	"github.com/notable/notable/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  notable register`

// NewCmd returns a new register command
func NewCmd(ctx context.NotableCtx, s *infra.Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Create an account on the server",
		Example: example,
		RunE:    newRun(ctx, s),
	}

	return cmd
}

// Do creates the account on the server and signs in with it
func Do(ctx stdctx.Context, s *infra.Services, r validate.Registration) error {
	if err := r.Validate(); err != nil {
		return err
	}

	_, err := s.Client.Register(ctx, client.RegisterParams{
		Username:  r.Username,
		Password:  r.Password,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	})
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && errors.Is(err, client.ErrBadRequest) {
		return errors.Errorf("registration refused: %s", httpErr.Message)
	} else if err != nil {
		return errors.Wrap(err, "registering")
	}

	if _, err := login.Do(ctx, s, r.Username, r.Password); err != nil {
		return errors.Wrap(err, "logging in")
	}

	return nil
}

func prompt() (validate.Registration, error) {
	var ret validate.Registration

	fields := []struct {
		label  string
		dest   *string
		masked bool
	}{
		{"username", &ret.Username, false},
		{"email", &ret.Email, false},
		{"first name (optional)", &ret.FirstName, false},
		{"last name (optional)", &ret.LastName, false},
		{"password", &ret.Password, true},
	}

	for _, f := range fields {
		var err error
		if f.masked {
			err = ui.PromptPassword(f.label, f.dest)
		} else {
			err = ui.PromptInput(f.label, f.dest)
		}
		if err != nil {
			return ret, errors.Wrapf(err, "getting %s", f.label)
		}
	}

	var confirm string
	if err := ui.PromptPassword("confirm password", &confirm); err != nil {
		return ret, errors.Wrap(err, "getting password confirmation")
	}
	if confirm != ret.Password {
		return ret, errors.New("passwords do not match")
	}

	return ret, nil
}

func newRun(ctx context.NotableCtx, s *infra.Services) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if _, err := s.CurrentUser(); err == nil {
			return errors.New("already logged in. Run 'notable logout' first")
		}

		r, err := prompt()
		if err != nil {
			return err
		}

		if err := Do(cmd.Context(), s, r); err != nil {
			return err
		}

		log.Successf("registered and logged in as %s\n", r.Username)

		return nil
	}
}
