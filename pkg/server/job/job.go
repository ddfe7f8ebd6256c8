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

// Package job schedules the background jobs of the server
package job

import (
	"sync"

	"github.com/notable/notable/pkg/server/app"
	"github.com/notable/notable/pkg/server/log"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
)

// PurgeSpec is the schedule of the expired token purge
const PurgeSpec = "@daily"

// Runner runs the scheduled jobs
type Runner struct {
	app  *app.App
	cron *cron.Cron
	mu   sync.Mutex
}

// NewRunner returns a new runner for the given app
func NewRunner(a *app.App) (*Runner, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	return &Runner{app: a}, nil
}

// Start schedules the jobs. It is a no-op if the runner is already started.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil {
		return nil
	}

	c := cron.New()
	if err := c.AddFunc(PurgeSpec, r.PurgeExpiredTokens); err != nil {
		return errors.Wrap(err, "scheduling the token purge")
	}
	c.Start()
	r.cron = c

	log.WithFields(log.Fields{"spec": PurgeSpec}).Info("scheduled the token purge")

	return nil
}

// Stop stops the schedule
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil {
		r.cron.Stop()
		r.cron = nil
	}
}

// PurgeExpiredTokens deletes the expired refresh tokens. Failures are logged.
func (r *Runner) PurgeExpiredTokens() {
	n, err := r.app.PurgeExpiredTokens()
	if err != nil {
		log.ErrorWrap(err, "purging expired tokens")
		return
	}

	log.WithFields(log.Fields{"count": n}).Info("purged expired tokens")
}
