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

package ui

import (
	"fmt"
	"os"

	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/prompt"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// stdin is shared by the prompts of a command so that piped answers survive
// between questions
var stdin = prompt.NewReader(os.Stdin)

// PromptInput prompts the user input and saves the result to the destination
func PromptInput(message string, dest *string) error {
	log.Askf(message, false)

	input, err := stdin.Line()
	if err != nil {
		return errors.Wrap(err, "getting user input")
	}

	*dest = input

	return nil
}

// PromptPassword prompts the user input a password and saves the result to the destination.
// The input is masked, meaning it is not echoed on the terminal. Piped input is read as is.
func PromptPassword(message string, dest *string) error {
	log.Askf(message, true)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		input, err := stdin.Line()
		if err != nil {
			return errors.Wrap(err, "getting user input")
		}

		*dest = input
		return nil
	}

	password, err := term.ReadPassword(fd)
	if err != nil {
		return errors.Wrap(err, "getting user input")
	}

	fmt.Println("")

	*dest = string(password)

	return nil
}

// Confirm prompts for user input to confirm a choice
func Confirm(question string, optimistic bool) (bool, error) {
	message := prompt.FormatQuestion(question, optimistic)

	log.Askf(message, false)

	confirmed, err := stdin.YesNo(optimistic)
	if err != nil {
		return false, errors.Wrap(err, "Failed to get user input")
	}

	return confirmed, nil
}

// IsPiped returns true if the standard input is not a terminal
func IsPiped() bool {
	return !term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadStdInput reads all of the standard input
func ReadStdInput() (string, error) {
	return stdin.Rest()
}
