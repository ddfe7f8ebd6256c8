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

// Command schema writes the local database schema produced by all migrations
// to a file, for review alongside the migrations.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notable/notable/pkg/cli/database"
	"github.com/pkg/errors"
)

const header = "-- This is the final state of the local schema after all migrations. Do not edit.\n"

func dumpSchema(db *database.DB) (string, error) {
	rows, err := db.Query(`SELECT sql FROM sqlite_master
		WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%' AND name != ?
		ORDER BY CASE type WHEN 'table' THEN 0 ELSE 1 END, name`, database.MigrationTableName)
	if err != nil {
		return "", errors.Wrap(err, "querying the schema")
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString(header)

	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", errors.Wrap(err, "scanning a statement")
		}

		b.WriteString("\n")
		b.WriteString(stmt)
		b.WriteString(";\n")
	}
	if err := rows.Err(); err != nil {
		return "", errors.Wrap(err, "iterating the schema")
	}

	return b.String(), nil
}

func run(tmpDir, outputPath string) error {
	db, err := database.Open(filepath.Join(tmpDir, "schema.db"))
	if err != nil {
		return errors.Wrap(err, "opening the database")
	}
	defer db.Close()

	if _, err := database.Migrate(db); err != nil {
		return errors.Wrap(err, "migrating")
	}

	schema, err := dumpSchema(db)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(schema), 0644); err != nil {
		return errors.Wrap(err, "writing the schema")
	}

	return nil
}

func main() {
	output := flag.String("output", "schema.sql", "path of the schema file")
	flag.Parse()

	tmpDir, err := os.MkdirTemp("", "notable-schema-*")
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Wrap(err, "creating a temporary directory"))
		os.Exit(1)
	}
	defer os.RemoveAll(tmpDir)

	if err := run(tmpDir, *output); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.RemoveAll(tmpDir)
		os.Exit(1)
	}
}
