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

package sync

import (
	stdctx "context"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/output"
	"github.com/notable/notable/pkg/cli/sync"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ErrOffline is an error for a sync while the server cannot be reached
var ErrOffline = errors.New("the server cannot be reached")

var example = `
  notable sync`

// NewCmd returns a new sync command
func NewCmd(ctx context.NotableCtx, s *infra.Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Aliases: []string{"s"},
		Short:   "Sync notes with the server",
		Example: example,
		RunE:    newRun(ctx, s),
	}

	return cmd
}

// Do runs a reconciliation pass for the signed in user and waits for it. A pass
// in which some notes failed is not an error: the notes are retried by the
// next pass.
func Do(ctx stdctx.Context, s *infra.Services) (sync.Result, error) {
	u, err := s.CurrentUser()
	if err != nil {
		return sync.Result{}, err
	}

	if !s.Checker.Online(ctx) {
		return sync.Result{}, ErrOffline
	}

	res, err := s.Repo.SyncNow(ctx, u.ID)
	if errors.Is(err, auth.ErrAuthExpired) {
		return res, errors.Wrap(err, "run 'notable login' again")
	} else if errors.Is(err, sync.ErrSyncIncomplete) {
		log.Debug("incomplete sync: %s\n", err.Error())
		return res, nil
	} else if err != nil {
		return res, errors.Wrap(err, "syncing")
	}

	return res, nil
}

func newRun(ctx context.NotableCtx, s *infra.Services) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		res, err := Do(cmd.Context(), s)
		if errors.Is(err, ErrOffline) {
			log.Warnf("%s. Local changes will be synced later\n", ErrOffline.Error())
			return nil
		} else if err != nil {
			return err
		}

		output.SyncResult(res)
		if res.Failed == 0 && res.PullErr == nil {
			log.Success("synced\n")
		}

		return nil
	}
}
