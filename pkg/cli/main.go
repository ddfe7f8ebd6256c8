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

package main

import (
	"os"
	"strings"

	"github.com/notable/notable/pkg/cli/infra"
	"github.com/notable/notable/pkg/cli/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	// commands
	"github.com/notable/notable/pkg/cli/cmd/add"
	"github.com/notable/notable/pkg/cli/cmd/daemon"
	"github.com/notable/notable/pkg/cli/cmd/edit"
	"github.com/notable/notable/pkg/cli/cmd/find"
	"github.com/notable/notable/pkg/cli/cmd/login"
	"github.com/notable/notable/pkg/cli/cmd/logout"
	"github.com/notable/notable/pkg/cli/cmd/ls"
	"github.com/notable/notable/pkg/cli/cmd/passwd"
	"github.com/notable/notable/pkg/cli/cmd/register"
	"github.com/notable/notable/pkg/cli/cmd/remove"
	"github.com/notable/notable/pkg/cli/cmd/root"
	"github.com/notable/notable/pkg/cli/cmd/status"
	"github.com/notable/notable/pkg/cli/cmd/sync"
	"github.com/notable/notable/pkg/cli/cmd/version"
	"github.com/notable/notable/pkg/cli/cmd/view"
)

// versionTag is populated during link time
var versionTag = "master"

// parseFlag extracts the value of a persistent flag from the command line
// arguments regardless of where it appears (before or after subcommand).
// Returns empty string if not found.
func parseFlag(args []string, name string) string {
	prefix := "--" + name
	for i, arg := range args {
		if arg == "--" {
			break
		}
		// Handle --name=value
		if strings.HasPrefix(arg, prefix+"=") {
			return strings.TrimPrefix(arg, prefix+"=")
		}
		// Handle --name value
		if arg == prefix && i+1 < len(args) {
			return args[i+1]
		}
	}

	return ""
}

func run() int {
	// The database and the endpoint are needed before the commands are built,
	// and root.ParseFlags only parses flags before the subcommand.
	dbPath := parseFlag(os.Args[1:], "dbPath")
	apiEndpoint := parseFlag(os.Args[1:], "apiEndpoint")

	ctx, err := infra.Init(versionTag, apiEndpoint, dbPath)
	if err != nil {
		log.Errorf("%s\n", errors.Wrap(err, "initializing context").Error())
		return 1
	}
	defer ctx.DB.Close()

	s := infra.NewServices(*ctx, nil)
	// background passes must finish before the database is closed
	defer func() {
		if err := s.Close(); err != nil {
			log.Debug("closing services: %s\n", err.Error())
		}
	}()

	root.Register(add.NewCmd(*ctx, s))
	root.Register(edit.NewCmd(*ctx, s))
	root.Register(remove.NewCmd(*ctx, s))
	root.Register(ls.NewCmd(*ctx, s))
	root.Register(view.NewCmd(*ctx, s))
	root.Register(find.NewCmd(*ctx, s))
	root.Register(sync.NewCmd(*ctx, s))
	root.Register(status.NewCmd(*ctx, s))
	root.Register(login.NewCmd(*ctx, s))
	root.Register(logout.NewCmd(*ctx, s))
	root.Register(register.NewCmd(*ctx, s))
	root.Register(passwd.NewCmd(*ctx, s))
	root.Register(daemon.NewCmd(*ctx, s))
	root.Register(version.NewCmd(*ctx))

	if err := root.Execute(); err != nil {
		log.Errorf("%s\n", err.Error())
		return 1
	}

	return 0
}

func main() {
	os.Exit(run())
}
