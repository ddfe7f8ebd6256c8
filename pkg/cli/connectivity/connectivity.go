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

// Package connectivity tells whether the server can be reached
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/clock"
)

// Checker reports whether the remote service is reachable
type Checker interface {
	Online(ctx context.Context) bool
}

// Prober is something that can check the health of the server
type Prober interface {
	Health(ctx context.Context) error
}

// DefaultTTL is how long a probe result is reused
const DefaultTTL = 10 * time.Second

// probeTimeout bounds a single health check
const probeTimeout = 3 * time.Second

// HTTPChecker probes the health endpoint of the server and caches the result
// for a short while
type HTTPChecker struct {
	prober Prober
	clock  clock.Clock
	ttl    time.Duration

	mu        sync.Mutex
	checkedAt time.Time
	online    bool
}

// NewHTTPChecker returns a checker that probes the server with the given prober
func NewHTTPChecker(p Prober, c clock.Clock, ttl time.Duration) *HTTPChecker {
	return &HTTPChecker{
		prober: p,
		clock:  c,
		ttl:    ttl,
	}
}

// Online returns true if the last probe, made at most ttl ago, succeeded
func (c *HTTPChecker) Online(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if !c.checkedAt.IsZero() && now.Sub(c.checkedAt) < c.ttl {
		return c.online
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	err := c.prober.Health(ctx)
	if err != nil {
		log.Debug("server unreachable: %s\n", err.Error())
	}

	c.online = err == nil
	c.checkedAt = now

	return c.online
}

// Invalidate discards the cached probe result
func (c *HTTPChecker) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checkedAt = time.Time{}
}

// Static is a checker with a fixed answer
type Static bool

// Online returns the fixed answer
func (s Static) Online(ctx context.Context) bool {
	return bool(s)
}
