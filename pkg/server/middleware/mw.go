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

// Package middleware provides the HTTP middlewares of the server
package middleware

import (
	"net/http"

	"github.com/notable/notable/pkg/server/app"
)

// Middleware wraps the handler of a route
type Middleware func(h http.HandlerFunc, app *app.App, rateLimit bool) http.Handler

// APIMw returns the middleware for the API routes. Routes are rate limited
// by the given limiter unless it is nil.
func APIMw(rl *RateLimiter) Middleware {
	return func(h http.HandlerFunc, app *app.App, rateLimit bool) http.Handler {
		return ApplyLimit(rl, h, rateLimit)
	}
}

// ApplyLimit applies rate limit conditionally
func ApplyLimit(rl *RateLimiter, h http.HandlerFunc, rateLimit bool) http.Handler {
	if rateLimit && rl != nil {
		return rl.Limit(h)
	}

	return h
}

// Global is the middleware for every route
func Global(h http.Handler) http.Handler {
	return Logging(Recover(h))
}
