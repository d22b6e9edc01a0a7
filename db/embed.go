// Package db embeds the database schema applied at startup.
package db

import _ "embed"

// Schema holds the DDL for every application table, including the cart and
// order tables and their uniqueness constraints.
//
//go:embed migrations/001_schema.sql
var Schema string
