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

// Package infra provides operations and definitions for the
// local infrastructure for Notable
package infra

import (
	"os"
	"path/filepath"

	"github.com/notable/notable/pkg/cli/auth"
	"github.com/notable/notable/pkg/cli/client"
	"github.com/notable/notable/pkg/cli/config"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/utils"
	"github.com/notable/notable/pkg/clock"
	"github.com/notable/notable/pkg/dirs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	// DefaultAPIEndpoint is the default API endpoint used when none is configured
	DefaultAPIEndpoint = "http://localhost:3001/api"
)

// RunEFunc is a function type of notable commands
type RunEFunc func(*cobra.Command, []string) error

func getDBPath(paths context.Paths, customPath string) string {
	if customPath != "" {
		return customPath
	}

	return paths.DBPath()
}

// newBaseCtx creates a minimal context with paths and database connection.
// This base context is used for file and database initialization before
// being enriched with config values by setupCtx.
func newBaseCtx(base dirs.Base, versionTag, customDBPath string) (context.NotableCtx, error) {
	paths := context.Paths{
		Home:   base.Home,
		Config: base.Config,
		Data:   base.Data,
		Cache:  base.Cache,
	}

	if err := context.InitNotableDirs(paths); err != nil {
		return context.NotableCtx{}, errors.Wrap(err, "creating the notable dirs")
	}

	db, err := database.Open(getDBPath(paths, customDBPath))
	if err != nil {
		return context.NotableCtx{}, errors.Wrap(err, "connecting to db")
	}

	ctx := context.NotableCtx{
		Paths:   paths,
		Version: versionTag,
		DB:      db,
	}

	return ctx, nil
}

// Init initializes the Notable environment and returns a new notable context.
// A non-empty apiEndpoint overrides the configured one without changing the
// config file. It is also the endpoint written to a new config file.
func Init(versionTag, apiEndpoint, dbPath string) (*context.NotableCtx, error) {
	base, err := dirs.Load()
	if err != nil {
		return nil, errors.Wrap(err, "resolving the base directories")
	}

	return InitWithDirs(base, versionTag, apiEndpoint, dbPath)
}

// InitWithDirs initializes the Notable environment under the given base directories
func InitWithDirs(base dirs.Base, versionTag, apiEndpoint, dbPath string) (*context.NotableCtx, error) {
	ctx, err := newBaseCtx(base, versionTag, dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "initializing a context")
	}

	if err := initConfigFile(ctx, apiEndpoint); err != nil {
		ctx.DB.Close()
		return nil, errors.Wrap(err, "generating the config file")
	}

	n, err := database.Migrate(ctx.DB)
	if err != nil {
		ctx.DB.Close()
		return nil, errors.Wrap(err, "running migration")
	}
	if n > 0 {
		log.Debug("applied %d migrations\n", n)
	}

	ctx, err = setupCtx(ctx, apiEndpoint)
	if err != nil {
		ctx.DB.Close()
		return nil, errors.Wrap(err, "setting up the context")
	}

	log.Debug("context: %+v\n", context.Redact(ctx))

	return &ctx, nil
}

// setupCtx enriches the base context with values from config file and database.
// This is called after files and database have been initialized.
func setupCtx(ctx context.NotableCtx, apiEndpoint string) (context.NotableCtx, error) {
	session, err := auth.LoadSession(ctx.DB)
	if err != nil {
		return ctx, errors.Wrap(err, "loading the session")
	}

	cf, err := config.Read(ctx)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}
	if apiEndpoint != "" {
		cf.APIEndpoint = apiEndpoint
	}
	if err := cf.Validate(); err != nil {
		return ctx, errors.Wrapf(err, "invalid config at %s", config.GetPath(ctx))
	}

	ret := context.NotableCtx{
		Paths:        ctx.Paths,
		Version:      ctx.Version,
		DB:           ctx.DB,
		Session:      session,
		APIEndpoint:  cf.APIEndpoint,
		Editor:       cf.Editor,
		SyncInterval: cf.SyncInterval,
		PageSize:     cf.PageSize,
		Clock:        clock.New(),
		HTTPClient:   client.NewRateLimitedHTTPClient(),
	}

	return ret, nil
}

// getEditorCommand returns the system's editor command with appropriate flags,
// if necessary, to make the command wait until editor is close to exit.
func getEditorCommand() string {
	editor := os.Getenv("EDITOR")

	var ret string

	switch filepath.Base(editor) {
	case "atom":
		ret = "atom -w"
	case "subl":
		ret = "subl -n -w"
	case "code":
		ret = "code -n -w"
	case "mate":
		ret = "mate -w"
	case "vim", "nano", "emacs", "nvim", "hx", "micro":
		ret = editor
	default:
		ret = "vi"
	}

	return ret
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile(ctx context.NotableCtx, apiEndpoint string) error {
	path := config.GetPath(ctx)
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	endpoint := apiEndpoint
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}

	if err := config.Write(ctx, config.Default(getEditorCommand(), endpoint)); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}
