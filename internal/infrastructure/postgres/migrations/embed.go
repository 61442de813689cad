// Package migrations contiene el esquema SQL embebido de PostgreSQL.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
