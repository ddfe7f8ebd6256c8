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

// Package config builds the server configuration from flags, the environment and .env files
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/notable/notable/pkg/dirs"
	"github.com/notable/notable/pkg/server/log"
	"github.com/pkg/errors"
)

const (
	// AppEnvProduction represents an app environment for production.
	AppEnvProduction string = "PRODUCTION"
	// DefaultDBDir is the default directory name for the server data
	DefaultDBDir = "notable"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"

	// DBDriverSQLite selects the embedded sqlite database
	DBDriverSQLite = "sqlite"
	// DBDriverPostgres selects a postgres database reachable at DATABASE_URL
	DBDriverPostgres = "postgres"

	// DefaultAccessTokenTTL is the lifetime of an access token
	DefaultAccessTokenTTL = 15 * time.Minute
	// DefaultRefreshTokenTTL is the lifetime of a refresh token
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour

	devJWTSecret = "notable-development-secret"
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrDBMissingURL is an error for a postgres configuration without DATABASE_URL
	ErrDBMissingURL = errors.New("DATABASE_URL is empty")
	// ErrDBDriverInvalid is an error for an unknown database driver
	ErrDBDriverInvalid = errors.New("Invalid DB driver")
	// ErrWebURLInvalid is an error for an incomplete configuration with invalid web url
	ErrWebURLInvalid = errors.New("Invalid WebURL")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrJWTSecretMissing is an error for a production configuration without a signing secret
	ErrJWTSecretMissing = errors.New("JWT_SECRET is empty")
	// ErrLogLevelInvalid is an error for an unknown log level
	ErrLogLevelInvalid = errors.New("Invalid log level")
	// ErrTokenTTLInvalid is an error for a non-positive token lifetime
	ErrTokenTTLInvalid = errors.New("Invalid token TTL")
)

func readBoolEnv(name string) bool {
	return os.Getenv(name) == "true"
}

// getOrEnv returns value if non-empty, otherwise env var, otherwise default
func getOrEnv(value, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

func getDurationOrEnv(value, envKey string, defaultVal time.Duration) (time.Duration, error) {
	s := getOrEnv(value, envKey, "")
	if s == "" {
		return defaultVal, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", envKey)
	}

	return d, nil
}

// defaultDBPath returns the path to the sqlite database under the XDG data home
func defaultDBPath() string {
	base, err := dirs.Load()
	if err != nil {
		return DefaultDBFilename
	}

	return filepath.Join(base.Data, DefaultDBDir, DefaultDBFilename)
}

// Config is an application configuration
type Config struct {
	AppEnv              string
	WebURL              string
	DisableRegistration bool
	Port                string
	DBDriver            string
	DBPath              string
	DatabaseURL         string
	JWTSecret           string
	LogLevel            string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	AppEnv              string
	Port                string
	WebURL              string
	DBDriver            string
	DBPath              string
	DatabaseURL         string
	JWTSecret           string
	DisableRegistration bool
	LogLevel            string
	AccessTokenTTL      string
	RefreshTokenTTL     string
	// EnvFile is a .env file to load. If empty, a .env file in the working
	// directory is loaded when present.
	EnvFile string
}

// loadEnvFile populates the environment from the given .env file. Variables
// already present in the environment are kept.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "loading %s", path)
		}

		return nil
	}

	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return errors.Wrap(err, "loading .env")
	}

	log.Debug("loaded .env")

	return nil
}

// New constructs and returns a new validated config.
// Empty string params will fall back to environment variables and defaults.
func New(p Params) (Config, error) {
	if err := loadEnvFile(p.EnvFile); err != nil {
		return Config{}, err
	}

	accessTTL, err := getDurationOrEnv(p.AccessTokenTTL, "ACCESS_TOKEN_TTL", DefaultAccessTokenTTL)
	if err != nil {
		return Config{}, err
	}
	refreshTTL, err := getDurationOrEnv(p.RefreshTokenTTL, "REFRESH_TOKEN_TTL", DefaultRefreshTokenTTL)
	if err != nil {
		return Config{}, err
	}

	c := Config{
		AppEnv:              getOrEnv(p.AppEnv, "APP_ENV", AppEnvProduction),
		Port:                getOrEnv(p.Port, "PORT", "3001"),
		WebURL:              getOrEnv(p.WebURL, "WebURL", "http://localhost:3001"),
		DBDriver:            getOrEnv(p.DBDriver, "DB_DRIVER", DBDriverSQLite),
		DBPath:              getOrEnv(p.DBPath, "DBPath", defaultDBPath()),
		DatabaseURL:         getOrEnv(p.DatabaseURL, "DATABASE_URL", ""),
		JWTSecret:           getOrEnv(p.JWTSecret, "JWT_SECRET", ""),
		DisableRegistration: p.DisableRegistration || readBoolEnv("DisableRegistration"),
		LogLevel:            getOrEnv(p.LogLevel, "LOG_LEVEL", log.LevelInfo),
		AccessTokenTTL:      accessTTL,
		RefreshTokenTTL:     refreshTTL,
	}

	if c.JWTSecret == "" && !c.IsProd() {
		c.JWTSecret = devJWTSecret
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// IsProd checks if the app environment is configured to be production.
func (c Config) IsProd() bool {
	return c.AppEnv == AppEnvProduction
}

// DSN returns the data source name for the configured driver
func (c Config) DSN() string {
	if c.DBDriver == DBDriverPostgres {
		return c.DatabaseURL
	}

	return c.DBPath
}

func validate(c Config) error {
	if _, err := url.ParseRequestURI(c.WebURL); err != nil {
		return errors.Wrapf(ErrWebURLInvalid, "'%s'", c.WebURL)
	}
	if c.Port == "" {
		return ErrPortInvalid
	}

	switch c.DBDriver {
	case DBDriverSQLite:
		if c.DBPath == "" {
			return ErrDBMissingPath
		}
	case DBDriverPostgres:
		if c.DatabaseURL == "" {
			return ErrDBMissingURL
		}
	default:
		return errors.Wrapf(ErrDBDriverInvalid, "'%s'", c.DBDriver)
	}

	if c.JWTSecret == "" {
		return ErrJWTSecretMissing
	}
	if !log.ValidLevel(c.LogLevel) {
		return errors.Wrapf(ErrLogLevelInvalid, "'%s'", c.LogLevel)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return ErrTokenTTLInvalid
	}

	return nil
}
