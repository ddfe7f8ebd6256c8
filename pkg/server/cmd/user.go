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

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/notable/notable/pkg/prompt"
	"github.com/notable/notable/pkg/server/app"
	"github.com/notable/notable/pkg/server/log"
	"github.com/pkg/errors"
)

// confirm prompts for user input to confirm a choice
func confirm(r io.Reader, question string, optimistic bool) (bool, error) {
	message := prompt.FormatQuestion(question, optimistic)
	fmt.Print(message + " ")

	confirmed, err := prompt.NewReader(r).YesNo(optimistic)
	if err != nil {
		return false, errors.Wrap(err, "reading stdin")
	}

	return confirmed, nil
}

func userCreateCmd(args []string) {
	fs := setupFlagSet("create", "notable-server user create")

	username := fs.String("username", "", "Username (required)")
	email := fs.String("email", "", "User email address (required)")
	password := fs.String("password", "", "User password (required)")
	firstName := fs.String("firstName", "", "First name")
	lastName := fs.String("lastName", "", "Last name")
	dbPath := fs.String("dbPath", "", "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/notable/server.db)")

	fs.Parse(args)

	requireString(fs, *username, "username")
	requireString(fs, *email, "email")
	requireString(fs, *password, "password")

	a, cleanup := setupAppWithDB(fs, *dbPath)
	defer cleanup()

	// Administrators can create users on servers closed to registration
	a.DisableRegistration = false

	_, err := a.CreateUser(app.RegisterParams{
		Username:  *username,
		Password:  *password,
		Email:     *email,
		FirstName: *firstName,
		LastName:  *lastName,
	})
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		cleanup()
		os.Exit(1)
	}

	fmt.Printf("User created successfully\n")
	fmt.Printf("Username: %s\n", *username)
}

func userRemoveCmd(args []string, stdin io.Reader) {
	fs := setupFlagSet("remove", "notable-server user remove")

	username := fs.String("username", "", "Username (required)")
	dbPath := fs.String("dbPath", "", "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/notable/server.db)")

	fs.Parse(args)

	requireString(fs, *username, "username")

	a, cleanup := setupAppWithDB(fs, *dbPath)
	defer cleanup()

	// Show confirmation prompt
	ok, err := confirm(stdin, fmt.Sprintf("Remove user %s and all of their notes?", *username), false)
	if err != nil {
		log.ErrorWrap(err, "getting confirmation")
		cleanup()
		os.Exit(1)
	}
	if !ok {
		fmt.Println("Aborted by user")
		return
	}

	if err := a.RemoveUser(*username); err != nil {
		if errors.Is(err, app.ErrNotFound) {
			fmt.Printf("Error: user %s not found\n", *username)
		} else {
			log.ErrorWrap(err, "removing user")
		}
		cleanup()
		os.Exit(1)
	}

	fmt.Printf("User removed successfully\n")
	fmt.Printf("Username: %s\n", *username)
}

func userCmd(args []string) {
	if len(args) < 1 {
		fmt.Println(`Usage:
  notable-server user [command]

Available commands:
  create: Create a new user
  remove: Remove a user along with their notes`)
		os.Exit(1)
	}

	subcommand := args[0]
	subArgs := []string{}
	if len(args) > 1 {
		subArgs = args[1:]
	}

	switch subcommand {
	case "create":
		userCreateCmd(subArgs)
	case "remove":
		userRemoveCmd(subArgs, os.Stdin)
	default:
		fmt.Printf("Unknown subcommand: %s\n\n", subcommand)
		fmt.Println(`Available commands:
  create: Create a new user
  remove: Remove a user along with their notes`)
		os.Exit(1)
	}
}
