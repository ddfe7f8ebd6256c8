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

package validate

import (
	"strings"
	"testing"

	"github.com/notable/notable/pkg/assert"
)

func TestTitle(t *testing.T) {
	testCases := []struct {
		input    string
		expected error
	}{
		{
			input:    "Shopping",
			expected: nil,
		},
		{
			input:    "Grocery list",
			expected: nil,
		},
		{
			input:    "Ünïcödé 日本",
			expected: nil,
		},
		{
			input:    "",
			expected: ErrTitleEmpty,
		},
		{
			input:    "   ",
			expected: ErrTitleEmpty,
		},
		{
			input:    "first\nsecond",
			expected: ErrTitleMultiline,
		},
		{
			input:    "first\r\nsecond",
			expected: ErrTitleMultiline,
		},
		{
			input:    strings.Repeat("a", MaxTitleLength),
			expected: nil,
		},
		{
			input:    strings.Repeat("a", MaxTitleLength+1),
			expected: ErrTitleTooLong,
		},
		{
			input:    strings.Repeat("日", MaxTitleLength),
			expected: nil,
		},
	}

	for _, tc := range testCases {
		actual := Title(tc.input)

		assert.Equal(t, actual, tc.expected, "result does not match")
	}
}

func TestRegistration(t *testing.T) {
	valid := Registration{Username: "alice", Password: "pass1234", Email: "alice@example.com", FirstName: "Alice"}

	testCases := []struct {
		name     string
		mutate   func(r *Registration)
		expected bool
	}{
		{
			name:     "valid",
			mutate:   func(r *Registration) {},
			expected: true,
		},
		{
			name:     "missing username",
			mutate:   func(r *Registration) { r.Username = "" },
			expected: false,
		},
		{
			name:     "username with a space",
			mutate:   func(r *Registration) { r.Username = "alice liddell" },
			expected: false,
		},
		{
			name:     "username with allowed symbols",
			mutate:   func(r *Registration) { r.Username = "alice.l+notes@home-1_x" },
			expected: true,
		},
		{
			name:     "short password",
			mutate:   func(r *Registration) { r.Password = "pass" },
			expected: false,
		},
		{
			name:     "malformed email",
			mutate:   func(r *Registration) { r.Email = "alice" },
			expected: false,
		},
		{
			name:     "missing names",
			mutate:   func(r *Registration) { r.FirstName, r.LastName = "", "" },
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)

			assert.Equal(t, r.Validate() == nil, tc.expected, "validation result mismatch")
		})
	}
}

func TestLogin(t *testing.T) {
	assert.Equal(t, Login("alice", "pass1234"), nil, "valid login")
	assert.NotEqual(t, Login("", "pass1234"), nil, "missing username")
	assert.NotEqual(t, Login("alice", ""), nil, "missing password")
}

func TestPasswordChange(t *testing.T) {
	assert.Equal(t, PasswordChange("pass1234", "newpass1234"), nil, "valid change")
	assert.NotEqual(t, PasswordChange("pass1234", "short"), nil, "short password")
	assert.NotEqual(t, PasswordChange("pass1234", "pass1234"), nil, "same password")
}
