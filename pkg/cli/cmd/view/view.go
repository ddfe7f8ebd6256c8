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

package view

import (
	stdctx "context"
	"fmt"
	"io"
	"os"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/cmd/ls"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/output"
	"github.com/notable/notable/pkg/cli/repository"
	"github.com/notable/notable/pkg/cli/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * View all notes
 notable view

 * View a particular note
 notable view 3

 * Print only the content of a note that is not synced yet
 notable view --content-only -- -2
 `

var contentOnly bool

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new view command
func NewCmd(ctx context.NotableCtx, s *infra.Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "view <note id?>",
		Aliases: []string{"v"},
		Short:   "List notes or view a content",
		Example: example,
		RunE:    newRun(ctx, s),
		PreRunE: preRun,
	}

	f := cmd.Flags()
	f.BoolVarP(&contentOnly, "content-only", "", false, "print the note content only")

	return cmd
}

// viewNote writes the note with the given id to w
func viewNote(ctx stdctx.Context, s *infra.Services, w io.Writer, noteID string, contentOnly bool) error {
	id, err := utils.ParseNoteID(noteID)
	if err != nil {
		return err
	}

	n, err := s.Repo.Get(ctx, id)
	if errors.Is(err, auth.ErrAuthRequired) {
		return infra.ErrLoginRequired
	} else if errors.Is(err, repository.ErrNotFound) {
		return errors.Errorf("note %d not found", id)
	} else if err != nil {
		return errors.Wrap(err, "finding the note")
	}

	if contentOnly {
		if _, err := fmt.Fprint(w, utils.JoinContent(n.Title, n.Description)); err != nil {
			return errors.Wrap(err, "writing the content")
		}

		return nil
	}

	defer log.SetOutput(w)()
	output.NoteInfo(n)

	return nil
}

func newRun(ctx context.NotableCtx, s *infra.Services) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			if contentOnly {
				return errors.New("--content-only flag is only valid when viewing a note")
			}

			return ls.NewRun(ctx, s)(cmd, args)
		}

		return viewNote(cmd.Context(), s, os.Stdout, args[0], contentOnly)
	}
}
