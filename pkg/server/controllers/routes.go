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

package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/notable/notable/pkg/server/app"
	mw "github.com/notable/notable/pkg/server/middleware"
	"github.com/pkg/errors"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	APIRoutes   []Route
	// Limiter rate limits the routes that ask for it. Nil disables rate limiting.
	Limiter *mw.RateLimiter
}

// NewAPIRoutes returns a new api routes
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"POST", "/auth/register/", c.Users.Register, true},
		{"POST", "/auth/token/", c.Users.Token, true},
		{"POST", "/auth/token/refresh/", c.Users.Refresh, true},
		{"POST", "/auth/logout/", mw.Auth(a, c.Users.Logout), true},
		{"GET", "/auth/userinfo/", mw.Auth(a, c.Users.UserInfo), true},
		{"POST", "/auth/change-password/", mw.Auth(a, c.Users.ChangePassword), true},

		{"GET", "/notes/", mw.Auth(a, c.Notes.Index), true},
		{"POST", "/notes/", mw.Auth(a, c.Notes.Create), true},
		// filter is registered before the id routes
		{"GET", "/notes/filter/", mw.Auth(a, c.Notes.Filter), true},
		{"GET", "/notes/{noteID:[0-9]+}/", mw.Auth(a, c.Notes.Show), true},
		{"PUT", "/notes/{noteID:[0-9]+}/", mw.Auth(a, c.Notes.Update), true},
		{"DELETE", "/notes/{noteID:[0-9]+}/", mw.Auth(a, c.Notes.Delete), true},

		{"GET", "/health", c.Health.Index, false},
	}
}

func registerRoutes(router *mux.Router, wrapper mw.Middleware, app *app.App, routes []Route) {
	for _, route := range routes {
		wrappedHandler := wrapper(route.Handler, app, route.RateLimit)

		router.
			Handle(route.Pattern, wrappedHandler).
			Methods(route.Method)
	}
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)
	router.NotFoundHandler = http.HandlerFunc(mw.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(mw.MethodNotAllowed)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.NotFoundHandler = http.HandlerFunc(mw.NotFound)
	apiRouter.MethodNotAllowedHandler = http.HandlerFunc(mw.MethodNotAllowed)
	registerRoutes(apiRouter, mw.APIMw(rc.Limiter), app, rc.APIRoutes)

	router.HandleFunc("/health", rc.Controllers.Health.Index).Methods("GET")

	return mw.Global(router), nil
}
