// Package migrations схема локального зеркала в Postgres.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
