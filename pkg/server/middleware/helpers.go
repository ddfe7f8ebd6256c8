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
	"encoding/json"
	"net/http"
	"strings"

	"github.com/notable/notable/pkg/server/log"
	"github.com/pkg/errors"
)

// ErrMalformedCredential is an error for an Authorization header that is not a bearer credential
var ErrMalformedCredential = errors.New("malformed Authorization header")

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// GetCredential extracts the bearer credential from the Authorization header.
// It returns an empty string if the request carries no credential.
func GetCredential(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", nil
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMalformedCredential
	}

	return strings.TrimSpace(parts[1]), nil
}

// RespondJSON responds with the JSON-encoding of the given value
func RespondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

// RespondDetail responds with an error body carrying the given message
func RespondDetail(w http.ResponseWriter, statusCode int, msg string) {
	RespondJSON(w, statusCode, ErrorResponse{Detail: msg})
}

// RespondUnauthorized responds with unauthorized
func RespondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	RespondDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided or are invalid.")
}

// DoError logs the error and responds with the given status code and its text
func DoError(w http.ResponseWriter, msg string, err error, statusCode int) {
	if err != nil {
		log.ErrorWrap(err, msg)
	}

	RespondDetail(w, statusCode, http.StatusText(statusCode))
}

// NotFound responds with not found
func NotFound(w http.ResponseWriter, r *http.Request) {
	RespondDetail(w, http.StatusNotFound, "Not found.")
}

// MethodNotAllowed responds with method not allowed
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	RespondDetail(w, http.StatusMethodNotAllowed, "Method not allowed.")
}
