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

package passwd

import (
	stdctx "context"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/client"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/ui"
	"github.com/notable/notable/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ErrWrongPassword is an error for a current password the server rejected
var ErrWrongPassword = errors.New("the current password is wrong")

var example = `
  notable passwd`

// NewCmd returns a new passwd command
func NewCmd(ctx context.NotableCtx, s *infra.Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "passwd",
		Short:   "Change the password of the account",
		Example: example,
		RunE:    newRun(ctx, s),
	}

	return cmd
}

// Do changes the password of the signed in user on the server
func Do(ctx stdctx.Context, s *infra.Services, oldPassword, newPassword string) error {
	if _, err := s.CurrentUser(); err != nil {
		return err
	}

	if err := validate.PasswordChange(oldPassword, newPassword); err != nil {
		return err
	}

	err := auth.WithCredential(ctx, s.Auth, func(cred string) error {
		return s.Client.ChangePassword(ctx, cred, oldPassword, newPassword)
	})
	if errors.Is(err, client.ErrBadRequest) {
		return ErrWrongPassword
	} else if errors.Is(err, auth.ErrAuthExpired) {
		return errors.Wrap(err, "run 'notable login' again")
	} else if err != nil {
		return errors.Wrap(err, "changing the password")
	}

	return nil
}

func newRun(ctx context.NotableCtx, s *infra.Services) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if _, err := s.CurrentUser(); err != nil {
			return err
		}

		var oldPassword, newPassword, confirm string
		if err := ui.PromptPassword("current password", &oldPassword); err != nil {
			return errors.Wrap(err, "getting the current password")
		}
		if err := ui.PromptPassword("new password", &newPassword); err != nil {
			return errors.Wrap(err, "getting the new password")
		}
		if err := ui.PromptPassword("confirm new password", &confirm); err != nil {
			return errors.Wrap(err, "getting the password confirmation")
		}
		if confirm != newPassword {
			return errors.New("passwords do not match")
		}

		if err := Do(cmd.Context(), s, oldPassword, newPassword); err != nil {
			return err
		}

		log.Success("password changed\n")

		return nil
	}
}
