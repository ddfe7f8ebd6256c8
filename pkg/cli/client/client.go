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

// Package client provides interfaces for interacting with the Notable server
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/notable/notable/pkg/cli/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

var (
	// ErrInvalidLogin is an error for invalid credentials for login
	ErrInvalidLogin = errors.New("wrong credentials")
	// ErrContentTypeMismatch is an error for a response in an unexpected format
	ErrContentTypeMismatch = errors.New("content type mismatch")

	// ErrUnauthorized is an error for a missing, invalid or expired credential
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is an error for a resource the server does not have
	ErrNotFound = errors.New("not found")
	// ErrBadRequest is an error for a request the server refused to process
	ErrBadRequest = errors.New("bad request")
	// ErrServer is an error for a server failure or an unexpected response
	ErrServer = errors.New("server error")
	// ErrNetworkUnavailable is an error for a request that never got a response
	ErrNetworkUnavailable = errors.New("network unavailable")
)

// HTTPError represents an HTTP error response from the server
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// Unwrap returns the sentinel error matching the status code
func (e *HTTPError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusBadRequest, e.StatusCode == http.StatusConflict,
		e.StatusCode == http.StatusUnprocessableEntity:
		return ErrBadRequest
	default:
		return ErrServer
	}
}

// NetworkError is an error for a request that failed before the server responded
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network unavailable: %s", e.Err.Error())
}

// Unwrap returns the transport error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is reports network errors as ErrNetworkUnavailable
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetworkUnavailable
}

var contentTypeApplicationJSON = "application/json"

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 50
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 100

	// DefaultTimeout is the timeout of every request made by the default http client
	DefaultTimeout = 30 * time.Second
	// DefaultPageSize is the number of notes requested per page
	DefaultPageSize = 50
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting
func NewRateLimitedHTTPClient() *http.Client {
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
		Timeout:   DefaultTimeout,
	}
}

// Client is a client of the Notable REST API
type Client struct {
	// Endpoint is the base URL of the API, without a trailing slash
	Endpoint   string
	HTTPClient *http.Client
	Version    string
	PageSize   int
}

// New returns a new client for the API at the given endpoint
func New(endpoint, version string, hc *http.Client) *Client {
	if hc == nil {
		hc = NewRateLimitedHTTPClient()
	}

	return &Client{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		HTTPClient: hc,
		Version:    version,
		PageSize:   DefaultPageSize,
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// checkRespErr returns an HTTPError if the given http response indicates an error
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "server responded with %d but client could not read the response body", res.StatusCode)
	}

	msg := strings.TrimRight(string(body), "\n")

	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Detail != "" {
		msg = er.Detail
	}

	return &HTTPError{
		StatusCode: res.StatusCode,
		Message:    msg,
	}
}

func checkContentType(res *http.Response) error {
	if res.StatusCode == http.StatusNoContent {
		return nil
	}

	got := res.Header.Get("Content-Type")
	if !strings.HasPrefix(got, contentTypeApplicationJSON) {
		return errors.Wrapf(ErrContentTypeMismatch, "got: '%s' want: '%s'. Did you configure your endpoint correctly?", got, contentTypeApplicationJSON)
	}

	return nil
}

func (c *Client) newReq(ctx context.Context, method, path, credential string, payload interface{}) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "marshalling payload")
		}
		body = bytes.NewReader(b)
	}

	endpoint := fmt.Sprintf("%s%s", c.Endpoint, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("Client-Version", c.Version)
	if payload != nil {
		req.Header.Set("Content-Type", contentTypeApplicationJSON)
	}
	if credential != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", credential))
	}

	return req, nil
}

// do makes a request to the given path in the api endpoint and decodes the
// JSON response into dest unless dest is nil. The given path should include the
// preceding slash.
func (c *Client) do(ctx context.Context, method, path, credential string, payload, dest interface{}) error {
	req, err := c.newReq(ctx, method, path, credential, payload)
	if err != nil {
		return errors.Wrap(err, "getting request")
	}

	log.Debug("HTTP %s %s\n", method, path)

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "making http request")
		}

		return &NetworkError{Err: err}
	}
	defer res.Body.Close()

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err = checkRespErr(res); err != nil {
		return errors.Wrap(err, "server responded with an error")
	}

	if err = checkContentType(res); err != nil {
		return errors.Wrap(ErrServer, err.Error())
	}

	if dest == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return errors.Wrap(ErrServer, errors.Wrap(err, "decoding the payload").Error())
	}

	return nil
}

// Health checks if the server is reachable
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newReq(ctx, http.MethodGet, "/health", "", nil)
	if err != nil {
		return errors.Wrap(err, "getting request")
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return &HTTPError{StatusCode: res.StatusCode, Message: "health check failed"}
	}

	return nil
}
