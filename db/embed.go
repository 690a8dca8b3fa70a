// Package db provides embedded database schema files.
package db

import _ "embed"

// Schema contains the DDL statements for the print journal.
//
//go:embed migrations/001_schema.sql
var Schema string
