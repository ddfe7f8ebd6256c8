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

// Package database defines the server models and opens the gorm connection
package database

import (
	"os"
	"path/filepath"

	"github.com/notable/notable/pkg/server/log"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverSQLite is the name of the sqlite driver
	DriverSQLite = "sqlite"
	// DriverPostgres is the name of the postgres driver
	DriverPostgres = "postgres"
)

// InitSchema migrates database schema to reflect the latest model definition
func InitSchema(db *gorm.DB) {
	if err := db.AutoMigrate(
		&User{},
		&Note{},
		&Token{},
	); err != nil {
		panic(err)
	}
}

// getDBLogLevel maps the server log level to the level of the gorm logger.
// SQL statements are only logged in debug.
func getDBLogLevel(level string) logger.LogLevel {
	switch level {
	case log.LevelDebug:
		return logger.Info
	case log.LevelWarn:
		return logger.Warn
	case log.LevelError:
		return logger.Error
	default:
		return logger.Silent
	}
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite, "":
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating database directory at %s", dir)
		}

		return sqlite.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, errors.Errorf("unsupported database driver '%s'", driver)
	}
}

// Open initializes the database connection for the given driver and data source name
func Open(driver, dsn, logLevel string) *gorm.DB {
	d, err := dialector(driver, dsn)
	if err != nil {
		panic(errors.Wrap(err, "preparing database dialector"))
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(getDBLogLevel(logLevel)),
	})
	if err != nil {
		panic(errors.Wrap(err, "opening database conection"))
	}

	if driver != DriverPostgres {
		// sqlite allows a single writer
		sqlDB, err := db.DB()
		if err != nil {
			panic(errors.Wrap(err, "getting the connection pool"))
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db
}

// Close closes the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "getting the connection pool")
	}

	return sqlDB.Close()
}
