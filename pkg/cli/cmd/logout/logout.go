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

package logout

import (
	stdctx "context"
	"fmt"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ErrNotLoggedIn is an error for logging out when not logged in
var ErrNotLoggedIn = errors.New("not logged in")

var example = `
  notable logout

  * Logout and keep the local copy of the notes
  notable logout --keep-notes`

var keepNotesFlag bool
var yesFlag bool

// NewCmd returns a new logout command
func NewCmd(ctx context.NotableCtx, s *infra.Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logout",
		Short:   "Logout from the server",
		Example: example,
		RunE:    newRun(ctx, s),
	}

	f := cmd.Flags()
	f.BoolVarP(&keepNotesFlag, "keep-notes", "", false, "keep the local notes of the user")
	f.BoolVarP(&yesFlag, "yes", "y", false, "logout without confirmation")

	return cmd
}

// countPending returns the number of notes of the user with changes the server has not seen
func countPending(db *database.DB, userID int) (int, error) {
	counts, err := database.CountNotesByStatus(db, userID)
	if err != nil {
		return 0, err
	}

	var ret int
	for st, c := range counts {
		if st != database.StatusSynced {
			ret += c
		}
	}

	return ret, nil
}

// Do performs logout. Unless keepNotes is true, the local notes of the user are
// removed once the session is cleared.
func Do(ctx stdctx.Context, nctx context.NotableCtx, s *infra.Services, keepNotes bool) error {
	u, err := s.CurrentUser()
	if err != nil {
		return ErrNotLoggedIn
	}

	if err := s.Auth.Logout(ctx); errors.Is(err, auth.ErrAuthRequired) {
		return ErrNotLoggedIn
	} else if err != nil {
		return errors.Wrap(err, "clearing the session")
	}

	if keepNotes {
		return nil
	}

	if err := database.DeleteAllNotesForUser(nctx.DB, u.ID); err != nil {
		return errors.Wrap(err, "removing the local notes")
	}

	return nil
}

func newRun(ctx context.NotableCtx, s *infra.Services) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		u, err := s.CurrentUser()
		if err != nil {
			log.Error("not logged in\n")
			return nil
		}

		if !keepNotesFlag && !yesFlag {
			pending, err := countPending(ctx.DB, u.ID)
			if err != nil {
				return errors.Wrap(err, "counting unsynced notes")
			}

			if pending > 0 {
				q := fmt.Sprintf("%d notes are not synced and will be lost. Logout anyway?", pending)
				ok, err := ui.Confirm(q, false)
				if err != nil {
					return errors.Wrap(err, "getting confirmation")
				}
				if !ok {
					log.Warnf("aborted by user\n")
					return nil
				}
			}
		}

		err = Do(cmd.Context(), ctx, s, keepNotesFlag)
		if err == ErrNotLoggedIn {
			log.Error("not logged in\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging out")
		}

		log.Success("logged out\n")

		return nil
	}
}
