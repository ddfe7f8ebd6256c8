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

package context

import (
	"path/filepath"

	"github.com/notable/notable/pkg/cli/consts"
	"github.com/notable/notable/pkg/cli/utils"
	"github.com/pkg/errors"
)

// InitNotableDirs creates the notable directories if they don't already exist.
func InitNotableDirs(paths Paths) error {
	dirs := []struct {
		base string
		name string
	}{
		{paths.Config, "config"},
		{paths.Data, "data"},
		{paths.Cache, "cache"},
	}

	for _, d := range dirs {
		if d.base == "" {
			continue
		}

		if err := utils.EnsureDir(filepath.Join(d.base, consts.NotableDirName)); err != nil {
			return errors.Wrapf(err, "initializing %s dir", d.name)
		}
	}

	return nil
}

// DBPath returns the path to the database file
func (p Paths) DBPath() string {
	return filepath.Join(p.Data, consts.NotableDirName, consts.NotableDBFileName)
}

// ConfigPath returns the path to the config file
func (p Paths) ConfigPath() string {
	return filepath.Join(p.Config, consts.NotableDirName, consts.ConfigFilename)
}

// CacheDir returns the directory for temporary files
func (p Paths) CacheDir() string {
	return filepath.Join(p.Cache, consts.NotableDirName)
}
