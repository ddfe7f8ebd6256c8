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

// Package prompt reads answers to interactive questions
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// FormatQuestion formats a yes/no question with the appropriate choice indicator
func FormatQuestion(question string, optimistic bool) string {
	choices := "(y/N)"
	if optimistic {
		choices = "(Y/n)"
	}
	return fmt.Sprintf("%s %s", question, choices)
}

// ParseYesNo interprets an answer to a yes/no question.
// In optimistic mode, an empty answer is treated as confirmation.
func ParseYesNo(input string, optimistic bool) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "y" || input == "yes" {
		return true
	}

	return optimistic && input == ""
}

// Reader reads one answer per line. It keeps its buffer across questions so
// that piped answers are not lost between them.
type Reader struct {
	r *bufio.Reader
}

// NewReader returns a reader of answers from r
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Line reads the next answer without its line ending. The last answer of a
// stream does not need a trailing newline.
func (p *Reader) Line() (string, error) {
	input, err := p.r.ReadString('\n')
	if err == io.EOF && input != "" {
		err = nil
	}
	if err != nil {
		return "", errors.Wrap(err, "reading the answer")
	}

	return strings.TrimRight(input, "\r\n"), nil
}

// YesNo reads the next answer as a yes/no answer
func (p *Reader) YesNo(optimistic bool) (bool, error) {
	input, err := p.Line()
	if err != nil {
		return false, err
	}

	return ParseYesNo(input, optimistic), nil
}

// Rest reads all remaining lines
func (p *Reader) Rest() (string, error) {
	var lines []string

	s := bufio.NewScanner(p.r)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return "", errors.Wrap(err, "reading the input")
	}

	return strings.Join(lines, "\n"), nil
}
