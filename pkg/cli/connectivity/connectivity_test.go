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

package connectivity

import (
	"context"
	"testing"
	"time"

	"github.com/notable/notable/pkg/assert"
	"github.com/notable/notable/pkg/clock"
	"github.com/pkg/errors"
)

type fakeProber struct {
	err   error
	calls int
}

func (p *fakeProber) Health(ctx context.Context) error {
	p.calls++
	return p.err
}

func TestHTTPChecker(t *testing.T) {
	p := &fakeProber{}
	c := clock.NewMock()
	checker := NewHTTPChecker(p, c, 10*time.Second)

	assert.Equal(t, checker.Online(context.Background()), true, "first probe")
	assert.Equal(t, p.calls, 1, "calls after first probe")

	// cached
	p.err = errors.New("connection refused")
	c.Advance(5 * time.Second)
	assert.Equal(t, checker.Online(context.Background()), true, "cached probe")
	assert.Equal(t, p.calls, 1, "calls while cached")

	c.Advance(5 * time.Second)
	assert.Equal(t, checker.Online(context.Background()), false, "expired probe")
	assert.Equal(t, p.calls, 2, "calls after expiry")

	p.err = nil
	checker.Invalidate()
	assert.Equal(t, checker.Online(context.Background()), true, "probe after invalidation")
	assert.Equal(t, p.calls, 3, "calls after invalidation")
}

func TestStatic(t *testing.T) {
	assert.Equal(t, Static(true).Online(context.Background()), true, "online")
	assert.Equal(t, Static(false).Online(context.Background()), false, "offline")
}
