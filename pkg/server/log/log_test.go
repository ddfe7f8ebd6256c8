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

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/notable/notable/pkg/assert"
	"github.com/pkg/errors"
)

func TestSetLevel(t *testing.T) {
	// Reset to default after test
	defer SetLevel(LevelInfo)

	SetLevel(LevelDebug)
	if currentLevel != LevelDebug {
		t.Errorf("Expected level %s, got %s", LevelDebug, currentLevel)
	}

	SetLevel(LevelError)
	if currentLevel != LevelError {
		t.Errorf("Expected level %s, got %s", LevelError, currentLevel)
	}
}

func TestShouldLog(t *testing.T) {
	defer SetLevel(LevelInfo)

	testCases := []struct {
		currentLevel string
		logLevel     string
		expected     bool
	}{
		{LevelDebug, LevelDebug, true},
		{LevelDebug, LevelError, true},
		{LevelInfo, LevelDebug, false},
		{LevelInfo, LevelInfo, true},
		{LevelInfo, LevelWarn, true},
		{LevelWarn, LevelInfo, false},
		{LevelWarn, LevelError, true},
		{LevelError, LevelWarn, false},
		{LevelError, LevelError, true},
		// unknown levels are treated as info
		{"verbose", LevelInfo, true},
		{"verbose", LevelDebug, false},
	}

	for _, tc := range testCases {
		SetLevel(tc.currentLevel)
		result := shouldLog(tc.logLevel)
		if result != tc.expected {
			t.Errorf("current %s, log %s: expected %v, got %v", tc.currentLevel, tc.logLevel, tc.expected, result)
		}
	}
}

func TestValidLevel(t *testing.T) {
	assert.Equal(t, ValidLevel(LevelDebug), true, "debug")
	assert.Equal(t, ValidLevel(LevelError), true, "error")
	assert.Equal(t, ValidLevel(""), false, "empty")
	assert.Equal(t, ValidLevel("verbose"), false, "unknown")
}

func TestWrite(t *testing.T) {
	defer SetLevel(LevelInfo)

	var buf bytes.Buffer
	defer SetOutput(&buf)()

	WithFields(Fields{
		"method": "GET",
		"status": 200,
		"err":    errors.New("boom"),
	}).Info("request")
	Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, len(lines), 1, "debug entries should be filtered at the info level")

	var got map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatal(errors.Wrap(err, "decoding the entry"))
	}

	assert.Equal(t, got["level"], "info", "level mismatch")
	assert.Equal(t, got["msg"], "request", "message mismatch")
	assert.Equal(t, got["method"], "GET", "method mismatch")
	assert.Equal(t, got["status"], float64(200), "status mismatch")
	assert.Equal(t, got["err"], "boom", "errors should be serialized as their message")
}

func TestErrorWrap(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(&buf)()

	ErrorWrap(errors.New("connection refused"), "opening database")

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(errors.Wrap(err, "decoding the entry"))
	}

	assert.Equal(t, got["level"], "error", "level mismatch")
	assert.Equal(t, got["msg"], "opening database: connection refused", "message mismatch")
}
