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

package add

import (
	stdctx "context"
	"strings"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/output"
	"github.com/notable/notable/pkg/cli/ui"
	"github.com/notable/notable/pkg/cli/utils"
	"github.com/notable/notable/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var titleFlag string
var contentFlag string

var example = `
 * Open an editor to write a note. The first line is the title
 notable add

 * Skip the editor by providing the title and the content directly
 notable add -t Shopping -c "milk, eggs"

 * Send stdin content to a note
 echo "bread" | notable add -t Shopping
 # or
 notable add << EOF
 Shopping
 milk, eggs
 EOF`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new add command
func NewCmd(ctx context.NotableCtx, s *infra.Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a new note",
		Aliases: []string{"a", "n", "new"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx, s),
	}

	f := cmd.Flags()
	f.StringVarP(&titleFlag, "title", "t", "", "The title of the note")
	f.StringVarP(&contentFlag, "content", "c", "", "The content of the note")

	return cmd
}

// getContent returns the title and the description of the new note from the
// flags, the standard input or an editor, in that order
func getContent(ctx context.NotableCtx) (string, string, error) {
	if titleFlag != "" && contentFlag != "" {
		return titleFlag, contentFlag, nil
	}

	var raw string
	var err error
	if contentFlag != "" {
		raw = contentFlag
	} else if ui.IsPiped() {
		raw, err = ui.ReadStdInput()
		if err != nil {
			return "", "", errors.Wrap(err, "Failed to get piped input")
		}
	} else {
		raw, err = ui.GetEditorInput(ctx, "")
		if err != nil {
			return "", "", errors.Wrap(err, "Failed to get editor input")
		}
	}

	return resolveContent(titleFlag, raw)
}

// resolveContent splits the raw content into a title and a description unless
// the title is given
func resolveContent(title, raw string) (string, string, error) {
	if title != "" {
		return title, strings.TrimSpace(raw), nil
	}

	t, desc := utils.SplitContent(raw)
	if t == "" {
		return "", "", errors.New("Empty content")
	}

	return t, desc, nil
}

// Do validates the title and creates the note. A note saved locally after the
// session expired is returned along with a nil error and a warning.
func Do(ctx stdctx.Context, s *infra.Services, title, description string) (database.Note, error) {
	if err := validate.Title(title); err != nil {
		return database.Note{}, errors.Wrap(err, "invalid title")
	}

	n, err := s.Repo.Create(ctx, title, description)
	if errors.Is(err, auth.ErrAuthExpired) {
		log.Warnf("your session expired. The note was saved on this device; run 'notable login' to sync it\n")
		return n, nil
	} else if errors.Is(err, auth.ErrAuthRequired) {
		return database.Note{}, infra.ErrLoginRequired
	} else if err != nil {
		return database.Note{}, errors.Wrap(err, "Failed to write note")
	}

	return n, nil
}

func newRun(ctx context.NotableCtx, s *infra.Services) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		title, description, err := getContent(ctx)
		if err != nil {
			return errors.Wrap(err, "getting content")
		}

		n, err := Do(cmd.Context(), s, title, description)
		if err != nil {
			return err
		}

		log.Successf("added %s\n", n.Title)
		output.NoteInfo(n)

		return nil
	}
}
