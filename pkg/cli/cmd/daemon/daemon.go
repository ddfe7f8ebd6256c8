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

package daemon

import (
	stdctx "context"
	"os"
	"os/signal"
	"path/filepath"
	gosync "sync"
	"syscall"
	"time"

	"github.com/notable/notable/pkg/cli/config"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/sync"
	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"github.com/robfig/cron"
	"github.com/spf13/cobra"
)

var example = `
  * Sync in the foreground on the interval of the config file
  notable daemon

  * Sync every minute
  notable daemon --interval "@every 1m"`

var intervalFlag string

// pollInterval is how often the config file is checked for changes
const pollInterval = 500 * time.Millisecond

// passTimeout bounds a single scheduled pass
const passTimeout = 2 * time.Minute

var errStopped = errors.New("daemon stopped")

// NewCmd returns a new daemon command
func NewCmd(ctx context.NotableCtx, s *infra.Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "daemon",
		Short:   "Sync periodically in the foreground",
		Example: example,
		RunE:    newRun(ctx, s),
	}

	f := cmd.Flags()
	f.StringVarP(&intervalFlag, "interval", "i", "", "cron spec of the sync (defaults to syncInterval in config)")

	return cmd
}

// Daemon runs a sync pass for the signed in user on a cron schedule and
// follows the sync interval of the config file
type Daemon struct {
	ctx      context.NotableCtx
	services *infra.Services

	mu      gosync.Mutex
	spec    string
	cron    *cron.Cron
	pinned  bool
	stopped bool

	// passes is only added to under mu while the daemon is not stopped
	passes gosync.WaitGroup
}

// New returns a new daemon. A non-empty spec overrides the config file and is
// kept across reloads.
func New(ctx context.NotableCtx, s *infra.Services, spec string) *Daemon {
	d := &Daemon{
		ctx:      ctx,
		services: s,
		spec:     ctx.SyncInterval,
	}
	if spec != "" {
		d.spec = spec
		d.pinned = true
	}
	if d.spec == "" {
		d.spec = config.DefaultSyncInterval
	}

	return d
}

// Spec returns the cron spec currently scheduled
func (d *Daemon) Spec() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.spec
}

// schedule replaces the running schedule with the given spec
func (d *Daemon) schedule(spec string) error {
	c := cron.New()
	if err := c.AddFunc(spec, d.tick); err != nil {
		return errors.Wrapf(err, "parsing sync interval '%s'", spec)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return errStopped
	}
	if d.cron != nil {
		d.cron.Stop()
	}
	d.cron = c
	d.spec = spec
	c.Start()

	return nil
}

// stop ends the schedule and waits for the pass in flight. No pass starts
// afterwards.
func (d *Daemon) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.cron != nil {
		d.cron.Stop()
		d.cron = nil
	}
	d.mu.Unlock()

	d.passes.Wait()
}

// begin registers a pass. It returns false once the daemon is stopped.
func (d *Daemon) begin() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	d.passes.Add(1)

	return true
}

// tick runs one pass. Failures are logged and left for the next tick.
func (d *Daemon) tick() {
	if !d.begin() {
		return
	}
	defer d.passes.Done()

	u, err := d.services.CurrentUser()
	if err != nil {
		log.Debug("daemon: not logged in, skipping\n")
		return
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), passTimeout)
	defer cancel()

	res, err := d.services.Repo.SyncNow(ctx, u.ID)
	if err != nil && !errors.Is(err, sync.ErrSyncIncomplete) {
		log.Warnf("sync failed: %s\n", err.Error())
		return
	}

	log.Debug("daemon: pushed %d, pulled %d, failed %d\n", res.Pushed(), res.Pulled, res.Failed)
	if res.Pushed()+res.Pulled+res.Refreshed > 0 {
		log.Infof("synced at %s: pushed %d, pulled %d\n", time.Now().Format(time.Kitchen), res.Pushed(), res.Pulled+res.Refreshed)
	}
}

// reload reads the config file and reschedules if its sync interval changed.
// An invalid config keeps the current schedule.
func (d *Daemon) reload() error {
	if d.pinned {
		return nil
	}

	cf, err := config.Read(d.ctx)
	if err != nil {
		return errors.Wrap(err, "reading the config")
	}
	if err := cf.Validate(); err != nil {
		return errors.Wrap(err, "validating the config")
	}

	if cf.SyncInterval == d.Spec() {
		return nil
	}

	if err := d.schedule(cf.SyncInterval); err != nil {
		return err
	}

	log.Infof("sync interval changed to %s\n", cf.SyncInterval)

	return nil
}

func (d *Daemon) newWatcher() (*watcher.Watcher, error) {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create, watcher.Rename, watcher.Move)

	if err := w.Add(filepath.Dir(config.GetPath(d.ctx))); err != nil {
		return nil, errors.Wrap(err, "watching the config directory")
	}

	return w, nil
}

// Run schedules the passes and follows the config file until ctx is done. It
// waits for the pass in flight before returning.
func (d *Daemon) Run(ctx stdctx.Context) error {
	if err := d.schedule(d.Spec()); err != nil {
		return err
	}
	defer d.stop()

	w, err := d.newWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Start(pollInterval)
	}()
	w.Wait()

	configName := filepath.Base(config.GetPath(d.ctx))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-w.Event:
			if filepath.Base(event.Path) != configName {
				continue
			}
			if err := d.reload(); err != nil {
				log.Warnf("keeping the sync interval %s: %s\n", d.Spec(), err.Error())
			}
		case err := <-w.Error:
			log.Debug("watching the config: %s\n", err.Error())
		case err := <-errCh:
			if err != nil {
				return errors.Wrap(err, "watching the config")
			}
		}
	}
}

func newRun(ctx context.NotableCtx, s *infra.Services) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if _, err := s.CurrentUser(); err != nil {
			return err
		}

		sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d := New(ctx, s, intervalFlag)
		log.Infof("syncing on '%s'. Press Ctrl+C to stop\n", d.Spec())

		// sync once right away
		d.tick()

		if err := d.Run(sigCtx); err != nil {
			return err
		}

		log.Plain("\n")
		log.Success("stopped\n")

		return nil
	}
}
