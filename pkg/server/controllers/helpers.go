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
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/notable/notable/pkg/server/app"
	"github.com/notable/notable/pkg/server/log"
	mw "github.com/notable/notable/pkg/server/middleware"
	"github.com/pkg/errors"
)

// errBadRequest is an error for a request that could not be parsed
var errBadRequest = errors.New("bad request")

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// parseRequestData parses the JSON body of the request into v
func parseRequestData(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.Wrap(errBadRequest, "empty body")
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrapf(errBadRequest, "malformed JSON: %s", err.Error())
	}

	return nil
}

// parseQuery decodes the query string of the request into v
func parseQuery(r *http.Request, v interface{}) error {
	if err := queryDecoder.Decode(v, r.URL.Query()); err != nil {
		return errors.Wrapf(errBadRequest, "malformed query: %s", err.Error())
	}

	return nil
}

// parseTimeParam parses a timestamp in RFC3339 or a date. It returns nil for an empty value.
func parseTimeParam(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}

	return nil, errors.Wrapf(errBadRequest, "%s must be an RFC3339 timestamp or a date", name)
}

// getIntVar returns the integer route variable with the given name
func getIntVar(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(errBadRequest, "invalid %s '%s'", name, raw)
	}

	return n, nil
}

// pageURL returns the absolute URL of the given page of the listing being requested
func pageURL(webURL string, r *http.Request, page int) string {
	q := url.Values{}
	for k, v := range r.URL.Query() {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))

	return webURL + r.URL.Path + "?" + q.Encode()
}

func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	mw.RespondJSON(w, statusCode, v)
}

// handleJSONError responds with the status code and the detail for the given error.
// Unknown errors are logged and reported as internal server errors.
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	var verr validation.Errors

	switch {
	case errors.Is(err, app.ErrNotFound):
		mw.RespondDetail(w, http.StatusNotFound, app.ErrNotFound.Error())
	case errors.Is(err, app.ErrLoginInvalid):
		mw.RespondDetail(w, http.StatusUnauthorized, app.ErrLoginInvalid.Error())
	case errors.Is(err, app.ErrInvalidToken):
		mw.RespondDetail(w, http.StatusUnauthorized, app.ErrInvalidToken.Error())
	case errors.Is(err, app.ErrDuplicateUsername):
		mw.RespondDetail(w, http.StatusBadRequest, app.ErrDuplicateUsername.Error())
	case errors.Is(err, app.ErrPasswordIncorrect):
		mw.RespondDetail(w, http.StatusBadRequest, app.ErrPasswordIncorrect.Error())
	case errors.Is(err, app.ErrRegistrationDisabled):
		mw.RespondDetail(w, http.StatusForbidden, app.ErrRegistrationDisabled.Error())
	case errors.As(err, &verr):
		mw.RespondDetail(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, errBadRequest):
		mw.RespondDetail(w, http.StatusBadRequest, err.Error())
	default:
		log.WithFields(log.Fields{"err": err}).Error(msg)
		mw.RespondDetail(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
