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

package edit

import (
	stdctx "context"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/repository"
	"github.com/notable/notable/pkg/cli/ui"
	"github.com/notable/notable/pkg/cli/utils"
	"github.com/notable/notable/pkg/cli/utils/diff"
	"github.com/notable/notable/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var titleFlag string
var contentFlag string

var example = `
  * Edit a note by id
  notable edit 3

  * Edit a note that is not synced yet
  notable edit -- -1

  * Edit a note without launching an editor
  notable edit 3 -c "milk, eggs, bread"

  * Rename a note
  notable edit 3 -t Groceries
`

// ErrNothingChanged is an error for an edit that leaves the note as it was
var ErrNothingChanged = errors.New("Nothing changed")

// NewCmd returns a new edit command
func NewCmd(ctx context.NotableCtx, s *infra.Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edit <note id>",
		Short:   "Edit a note",
		Aliases: []string{"e"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx, s),
	}

	f := cmd.Flags()
	f.StringVarP(&titleFlag, "title", "t", "", "a new title for the note")
	f.StringVarP(&contentFlag, "content", "c", "", "a new content for the note")

	return cmd
}

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// getChange returns the new title and description of the note from the flags,
// or from an editor opened on the current content
func getChange(ctx context.NotableCtx, n database.Note) (string, string, error) {
	if titleFlag != "" || contentFlag != "" {
		title, desc := n.Title, n.Description
		if titleFlag != "" {
			title = titleFlag
		}
		if contentFlag != "" {
			desc = contentFlag
		}

		return title, desc, nil
	}

	raw, err := ui.GetEditorInput(ctx, utils.JoinContent(n.Title, n.Description))
	if err != nil {
		return "", "", errors.Wrap(err, "getting editor input")
	}

	title, desc := utils.SplitContent(raw)

	return title, desc, nil
}

// Do applies the edit to the note. It returns ErrNothingChanged if the note
// would be left as it is.
func Do(ctx stdctx.Context, s *infra.Services, n database.Note, title, description string) (database.Note, error) {
	before := utils.JoinContent(n.Title, n.Description)
	after := utils.JoinContent(title, description)
	if !diff.Changed(before, after) {
		return n, ErrNothingChanged
	}

	if err := validate.Title(title); err != nil {
		return n, errors.Wrap(err, "invalid title")
	}

	log.Debug("edit of note %d:\n%s", n.ID, diff.Render(before, after))

	next, err := s.Repo.Update(ctx, n.ID, title, description)
	if errors.Is(err, auth.ErrAuthExpired) {
		log.Warnf("your session expired. The edit was saved on this device; run 'notable login' to sync it\n")
		return next, nil
	} else if err != nil {
		return n, errors.Wrap(err, "updating the note")
	}

	return next, nil
}

func newRun(ctx context.NotableCtx, s *infra.Services) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		id, err := utils.ParseNoteID(args[0])
		if err != nil {
			return err
		}

		n, err := s.Repo.Get(cmd.Context(), id)
		if errors.Is(err, auth.ErrAuthRequired) {
			return infra.ErrLoginRequired
		} else if errors.Is(err, repository.ErrNotFound) {
			return errors.Errorf("note %d not found", id)
		} else if err != nil {
			return errors.Wrap(err, "finding the note")
		}

		title, desc, err := getChange(ctx, n)
		if err != nil {
			return err
		}

		next, err := Do(cmd.Context(), s, n, title, desc)
		if errors.Is(err, ErrNothingChanged) {
			log.Info("Nothing changed\n")
			return nil
		} else if err != nil {
			return err
		}

		log.Successf("edited note %d\n", next.ID)
		log.Plain(diff.Render(utils.JoinContent(n.Title, n.Description), utils.JoinContent(next.Title, next.Description)))

		return nil
	}
}
