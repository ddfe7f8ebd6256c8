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

package assert

import (
	"io"
	"time"

	"github.com/pkg/errors"
)

// readUntil reads r one byte at a time until the given text has been read.
// Nothing past the text is consumed, so the rest of the output stays available.
func readUntil(r io.Reader, text string) error {
	var tail []byte
	b := make([]byte, 1)

	for {
		n, err := r.Read(b)
		if n > 0 {
			tail = append(tail, b[0])
			if len(tail) > len(text) {
				tail = tail[len(tail)-len(text):]
			}
			if string(tail) == text {
				return nil
			}
		}

		if err == io.EOF {
			return errors.Errorf("expected prompt '%s' not found in stdout", text)
		} else if err != nil {
			return errors.Wrap(err, "reading stdout")
		}
	}
}

// WaitForPrompt waits for an expected prompt to appear in stdout with a timeout.
// The prompt does not need to end with a newline.
func WaitForPrompt(stdout io.Reader, expectedPrompt string, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- readUntil(stdout, expectedPrompt)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return errors.Errorf("timeout waiting for prompt '%s'", expectedPrompt)
	}
}

// RespondToPrompt waits for a prompt and writes the response to stdin
func RespondToPrompt(stdout io.Reader, stdin io.WriteCloser, expectedPrompt, response string, timeout time.Duration) error {
	if err := WaitForPrompt(stdout, expectedPrompt, timeout); err != nil {
		return err
	}

	if _, err := io.WriteString(stdin, response); err != nil {
		return errors.Wrap(err, "writing response to stdin")
	}

	return nil
}
