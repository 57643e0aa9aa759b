package migrations

import "embed"

// FS holds the relationship schema, one directory per dialect.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
