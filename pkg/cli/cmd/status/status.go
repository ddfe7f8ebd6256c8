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

package status

import (
	"time"

	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/output"
	"github.com/notable/notable/pkg/cli/sync"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  notable status`

// Info is the sync state of the local store
type Info struct {
	Username string
	Counts   map[database.SyncStatus]int
	LastSync time.Time
}

// NewCmd returns a new status command
func NewCmd(ctx context.NotableCtx, s *infra.Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"st"},
		Short:   "Show the sync state of the local notes",
		Example: example,
		RunE:    newRun(ctx, s),
	}

	return cmd
}

// Do returns the sync state of the notes of the signed in user. Signed out, the
// counts are empty.
func Do(ctx context.NotableCtx, s *infra.Services) (Info, error) {
	ret := Info{Counts: map[database.SyncStatus]int{}}

	last, err := sync.LastSyncAt(ctx.DB)
	if err != nil {
		return ret, err
	}
	ret.LastSync = last

	u, err := s.CurrentUser()
	if errors.Is(err, infra.ErrLoginRequired) {
		return ret, nil
	}

	counts, err := database.CountNotesByStatus(ctx.DB, u.ID)
	if err != nil {
		return ret, errors.Wrap(err, "counting notes")
	}

	ret.Username = u.Username
	ret.Counts = counts

	return ret, nil
}

func newRun(ctx context.NotableCtx, s *infra.Services) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		info, err := Do(ctx, s)
		if err != nil {
			return err
		}

		output.Status(info.Username, info.Counts, info.LastSync)

		return nil
	}
}
