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

// Package utils provides helpers shared by the commands
package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// regexNoteID matches a note id. Notes not yet known to the server have negative ids.
var regexNoteID = regexp.MustCompile(`^-?\d+$`)

// ErrInvalidNoteID is an error for an argument that is not a note id
var ErrInvalidNoteID = errors.New("invalid note id")

// IsNumber checks if the given string is in the form of an integer, optionally negative
func IsNumber(s string) bool {
	if s == "" {
		return false
	}

	return regexNoteID.MatchString(s)
}

// ParseNoteID parses a note id given on the command line
func ParseNoteID(s string) (int, error) {
	if !IsNumber(s) {
		return 0, errors.Wrapf(ErrInvalidNoteID, "'%s'", s)
	}

	id, err := strconv.Atoi(s)
	if err != nil || id == 0 {
		return 0, errors.Wrapf(ErrInvalidNoteID, "'%s'", s)
	}

	return id, nil
}

// SplitContent splits the text written in the editor into a title, taken from
// the first non-empty line, and a description made of the rest
func SplitContent(raw string) (string, string) {
	text := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))

	title, rest, _ := strings.Cut(text, "\n")

	return strings.TrimSpace(title), strings.TrimSpace(rest)
}

// JoinContent is the inverse of SplitContent
func JoinContent(title, description string) string {
	if description == "" {
		return title + "\n"
	}

	return title + "\n\n" + description + "\n"
}
