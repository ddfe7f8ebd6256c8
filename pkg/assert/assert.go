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

// Package assert provides functions to assert a condition in tests
package assert

import (
	"fmt"
	"io"
	"net/http"
	"reflect"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func getErrorMessage(m string, a, b interface{}) string {
	return fmt.Sprintf(`%s.
Actual:
========================
%+v
========================

Expected:
========================
%+v
========================

%s`, m, a, b, string(debug.Stack()))
}

func checkEqual(a, b interface{}, message string) (bool, string) {
	if a == b {
		return true, ""
	}

	var m string
	if len(message) == 0 {
		m = fmt.Sprintf("%v != %v", a, b)
	} else {
		m = message
	}
	errorMessage := getErrorMessage(m, a, b)

	return false, errorMessage
}

// Equal errors a test if the actual does not match the expected
func Equal(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	ok, m := checkEqual(a, b, message)
	if !ok {
		t.Error(m)
	}
}

// Equalf fails a test if the actual does not match the expected
func Equalf(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	ok, m := checkEqual(a, b, message)
	if !ok {
		t.Fatal(m)
	}
}

// NotEqual fails a test if the actual matches the expected
func NotEqual(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	ok, m := checkEqual(a, b, message)
	if ok {
		t.Error(m)
	}
}

// DeepEqual fails a test if the actual does not deeply equal the expected
func DeepEqual(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if !reflect.DeepEqual(a, b) {
		errorMessage := fmt.Sprintf("%s.\n%s\n\n%s", message, cmp.Diff(b, a), string(debug.Stack()))
		t.Error(errorMessage)
	}
}

// EqualError fails a test if the error is nil or its message is not the expected one
func EqualError(t *testing.T, err error, expected, message string) {
	t.Helper()

	if err == nil {
		t.Errorf("%s. Expected error '%s' but got nil", message, expected)
		return
	}

	Equal(t, err.Error(), expected, message)
}

// ErrorIs fails a test if the error does not match the target in its chain
func ErrorIs(t *testing.T, err, target error, message string) {
	t.Helper()

	if !errors.Is(err, target) {
		t.Errorf("%s. Expected error to match '%v' but got '%v'", message, target, err)
	}
}

// Contains fails a test if the string does not contain the substring
func Contains(t *testing.T, s, substr, message string) {
	t.Helper()

	if !strings.Contains(s, substr) {
		t.Errorf("%s. '%s' does not contain '%s'", message, s, substr)
	}
}

// StatusCodeEquals fails a test if the response does not have the given status code.
// The body is included in the failure message.
func StatusCodeEquals(t *testing.T, res *http.Response, expected int, message string) {
	t.Helper()

	if res.StatusCode != expected {
		body, err := io.ReadAll(res.Body)
		if err != nil {
			t.Fatalf("%s. reading the response body: %v", message, err)
		}

		t.Errorf("%s. status code mismatch. Expected %d but got %d. Body: %s", message, expected, res.StatusCode, string(body))
	}
}
