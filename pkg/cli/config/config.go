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

// Package config reads and writes the notable configuration file
package config

import (
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/notable/notable/pkg/cli/context"
	"github.com/notable/notable/pkg/cli/utils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// EnvAPIEndpoint overrides the API endpoint of the config file
const EnvAPIEndpoint = "NOTABLE_API_ENDPOINT"

const (
	// DefaultSyncInterval is the cron spec of the background sync of the daemon
	DefaultSyncInterval = "@every 5m"
	// DefaultPageSize is the number of notes requested per page during a pull
	DefaultPageSize = 50
	// MaxPageSize is the largest page the server serves
	MaxPageSize = 100
)

// Config holds notable configuration
type Config struct {
	Editor       string `yaml:"editor"`
	APIEndpoint  string `yaml:"apiEndpoint"`
	SyncInterval string `yaml:"syncInterval"`
	PageSize     int    `yaml:"pageSize"`
}

// Default returns the config written on the first run
func Default(editor, apiEndpoint string) Config {
	return Config{
		Editor:       editor,
		APIEndpoint:  apiEndpoint,
		SyncInterval: DefaultSyncInterval,
		PageSize:     DefaultPageSize,
	}
}

// Validate validates the config
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.APIEndpoint, validation.Required, is.URL),
		validation.Field(&c.SyncInterval, validation.Required),
		validation.Field(&c.PageSize, validation.Required, validation.Min(1), validation.Max(MaxPageSize)),
	)
}

// fillDefaults fills the keys missing from older config files
func (c *Config) fillDefaults() {
	if c.SyncInterval == "" {
		c.SyncInterval = DefaultSyncInterval
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
}

// GetPath returns the path to the notable config file
func GetPath(ctx context.NotableCtx) string {
	return ctx.Paths.ConfigPath()
}

// Read reads the config file. The API endpoint can be overridden by the environment.
func Read(ctx context.NotableCtx) (Config, error) {
	var ret Config

	configPath := GetPath(ctx)
	b, err := os.ReadFile(configPath)
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	err = yaml.Unmarshal(b, &ret)
	if err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	ret.fillDefaults()
	if v := strings.TrimSpace(os.Getenv(EnvAPIEndpoint)); v != "" {
		ret.APIEndpoint = v
	}

	return ret, nil
}

// Write writes the config to the config file
func Write(ctx context.NotableCtx, cf Config) error {
	path := GetPath(ctx)

	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	if err := utils.WriteFileAtomic(path, b, 0644); err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}
