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

// Package dirs resolves the base directories of the XDG base directory specification
package dirs

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// The environment variable names for the XDG base directories
const (
	envConfigHome = "XDG_CONFIG_HOME"
	envDataHome   = "XDG_DATA_HOME"
	envCacheHome  = "XDG_CACHE_HOME"
)

// Base holds the base directories of the user
type Base struct {
	// Home is the home directory of the user
	Home string
	// Config is the directory in which user-specific configurations should be written
	Config string
	// Data is the directory in which user-specific data files should be written
	Data string
	// Cache is the directory in which user-specific non-essential data should be written
	Cache string
}

// Resolve returns the base directories under the given home directory. Absolute
// paths in the XDG environment variables take precedence.
func Resolve(home string, getenv func(string) string) Base {
	return Base{
		Home:   home,
		Config: readPath(getenv, envConfigHome, filepath.Join(home, ".config")),
		Data:   readPath(getenv, envDataHome, filepath.Join(home, ".local", "share")),
		Cache:  readPath(getenv, envCacheHome, filepath.Join(home, ".cache")),
	}
}

// Load returns the base directories of the current user
func Load() (Base, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Base{}, errors.Wrap(err, "getting home dir")
	}

	return Resolve(home, os.Getenv), nil
}

// relative paths are invalid per the XDG specification and are ignored
func readPath(getenv func(string) string, envName, defaultPath string) string {
	if dir := getenv(envName); dir != "" && filepath.IsAbs(dir) {
		return dir
	}

	return defaultPath
}
