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

package find

import (
	stdctx "context"
	"strings"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/client"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  # find notes whose title or description contains "grocer"
  notable find grocer

  # ask the server for notes whose title contains "grocer"
  notable find --remote grocer

  # ask the server for notes whose description contains "eggs"
  notable find --remote --description eggs
	`

var remoteFlag bool
var descriptionFlag bool

// maxRemotePages bounds the pages fetched for a remote search
const maxRemotePages = 10

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}
	if strings.TrimSpace(args[0]) == "" {
		return errors.New("Empty query")
	}
	if descriptionFlag && !remoteFlag {
		return errors.New("--description is only valid with --remote")
	}

	return nil
}

// NewCmd returns a new find command
func NewCmd(ctx context.NotableCtx, s *infra.Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "find <query>",
		Short:   "Find notes by keywords",
		Aliases: []string{"f"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx, s),
	}

	f := cmd.Flags()
	f.BoolVarP(&remoteFlag, "remote", "r", false, "search the notes on the server instead of the local ones")
	f.BoolVarP(&descriptionFlag, "description", "d", false, "match the description instead of the title on the server")

	return cmd
}

// Local returns the local notes of the signed in user matching the query
func Local(ctx stdctx.Context, s *infra.Services, query string) ([]database.Note, error) {
	u, err := s.CurrentUser()
	if err != nil {
		return nil, err
	}

	notes, err := s.Repo.Search(ctx, u.ID, query)
	if err != nil {
		return nil, errors.Wrap(err, "searching")
	}

	return notes, nil
}

// Remote returns the notes on the server matching the query
func Remote(ctx stdctx.Context, s *infra.Services, query string, description bool) ([]client.Note, error) {
	if _, err := s.CurrentUser(); err != nil {
		return nil, err
	}

	p := client.FilterParams{Title: query}
	if description {
		p = client.FilterParams{Description: query}
	}

	ret := []client.Note{}
	for page := 1; page <= maxRemotePages; page++ {
		var res client.NotesPage
		err := auth.WithCredential(ctx, s.Auth, func(cred string) error {
			var err error
			res, err = s.Client.FilterNotes(ctx, cred, p, page)
			return err
		})
		if errors.Is(err, auth.ErrAuthExpired) {
			return nil, errors.Wrap(err, "run 'notable login' again")
		} else if err != nil {
			return nil, errors.Wrap(err, "searching the server")
		}

		ret = append(ret, res.Items...)
		if !res.HasMore {
			break
		}
	}

	return ret, nil
}

func newRun(ctx context.NotableCtx, s *infra.Services) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(args[0])

		if remoteFlag {
			notes, err := Remote(cmd.Context(), s, query, descriptionFlag)
			if err != nil {
				return err
			}

			output.RemoteNoteList(notes)
			return nil
		}

		notes, err := Local(cmd.Context(), s, query)
		if err != nil {
			return err
		}

		output.NoteList(notes)

		return nil
	}
}
