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

package ls

import (
	stdctx "context"

	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var noWaitFlag bool

var example = `
 * List all notes
 notable ls

 * List the local notes without waiting for the server
 notable ls --no-wait
 `

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new ls command
func NewCmd(ctx context.NotableCtx, s *infra.Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"l", "notes"},
		Short:   "List all notes",
		Example: example,
		RunE:    NewRun(ctx, s),
		PreRunE: preRun,
	}

	f := cmd.Flags()
	f.BoolVarP(&noWaitFlag, "no-wait", "", false, "do not wait for the background sync")

	return cmd
}

// drained reports whether any change arrived on the channel, without blocking
func drained(changes <-chan database.Change) bool {
	changed := false
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return changed
			}
			changed = true
		default:
			return changed
		}
	}
}

// Do lists the notes of the signed in user from the local store. Unless wait is
// false, it then waits for the background pass started by the listing and
// lists again if the pass changed the store.
func Do(ctx stdctx.Context, s *infra.Services, wait bool) error {
	u, err := s.CurrentUser()
	if err != nil {
		return err
	}

	changes, stop := s.Repo.Watch(u.ID)
	defer stop()

	notes, err := s.Repo.List(ctx, u.ID)
	if err != nil {
		return errors.Wrap(err, "listing notes")
	}
	output.NoteList(notes)

	if !wait {
		return nil
	}

	if err := s.Repo.Close(); err != nil {
		return errors.Wrap(err, "waiting for the background sync")
	}
	if !drained(changes) {
		return nil
	}

	notes, err = s.Repo.List(ctx, u.ID)
	if err != nil {
		return errors.Wrap(err, "listing notes")
	}

	log.Plain("\n")
	log.Info("updated from the server\n")
	output.NoteList(notes)

	return nil
}

// NewRun returns a new run function for ls
func NewRun(ctx context.NotableCtx, s *infra.Services) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return Do(cmd.Context(), s, !noWaitFlag)
	}
}
