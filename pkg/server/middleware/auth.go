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

package middleware

import (
	"errors"
	"net/http"

	"github.com/notable/notable/pkg/server/app"
	"github.com/notable/notable/pkg/server/context"
)

// Auth is an authentication middleware. It puts the user the bearer access
// token was issued to into the request context.
func Auth(a *app.App, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential, err := GetCredential(r)
		if err != nil || credential == "" {
			RespondUnauthorized(w)
			return
		}

		user, err := a.AuthenticateAccessToken(credential)
		if errors.Is(err, app.ErrInvalidToken) {
			RespondUnauthorized(w)
			return
		} else if err != nil {
			DoError(w, "authenticating with token", err, http.StatusInternalServerError)
			return
		}

		ctx := context.WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
