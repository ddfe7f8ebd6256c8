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

package remove

import (
	stdctx "context"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/output"
	"github.com/notable/notable/pkg/cli/repository"
	"github.com/notable/notable/pkg/cli/ui"
	"github.com/notable/notable/pkg/cli/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var yesFlag bool

var example = `
  * Remove a note by id
  notable remove 1

  * Remove a note that is not synced yet, without confirmation
  notable remove -y -- -1
`

// PromptRemoveNote is the question asked before removing a note
const PromptRemoveNote = "remove this note?"

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new remove command
func NewCmd(ctx context.NotableCtx, s *infra.Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <note id>",
		Short:   "Remove a note",
		Aliases: []string{"rm", "d"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx, s),
	}

	f := cmd.Flags()
	f.BoolVarP(&yesFlag, "yes", "y", false, "remove without confirmation")

	return cmd
}

func find(ctx stdctx.Context, s *infra.Services, id int) (database.Note, error) {
	n, err := s.Repo.Get(ctx, id)
	if errors.Is(err, auth.ErrAuthRequired) {
		return n, infra.ErrLoginRequired
	} else if errors.Is(err, repository.ErrNotFound) {
		return n, errors.Errorf("note %d not found", id)
	} else if err != nil {
		return n, errors.Wrap(err, "finding the note")
	}

	return n, nil
}

// Do removes the note with the given id
func Do(ctx stdctx.Context, s *infra.Services, id int) error {
	err := s.Repo.Delete(ctx, id)
	if errors.Is(err, auth.ErrAuthExpired) {
		log.Warnf("your session expired. The note will be removed from the server after 'notable login'\n")
		return nil
	} else if errors.Is(err, repository.ErrNotFound) {
		return errors.Errorf("note %d not found", id)
	} else if err != nil {
		return errors.Wrap(err, "removing the note")
	}

	return nil
}

func newRun(ctx context.NotableCtx, s *infra.Services) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		id, err := utils.ParseNoteID(args[0])
		if err != nil {
			return err
		}

		n, err := find(cmd.Context(), s, id)
		if err != nil {
			return err
		}

		if !yesFlag {
			output.NoteInfo(n)

			ok, err := ui.Confirm(PromptRemoveNote, false)
			if err != nil {
				return errors.Wrap(err, "getting confirmation")
			}
			if !ok {
				log.Warnf("aborted by user\n")
				return nil
			}
		}

		if err := Do(cmd.Context(), s, id); err != nil {
			return err
		}

		log.Successf("removed note %d\n", id)

		return nil
	}
}
