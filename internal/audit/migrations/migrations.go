// Package migrations embeds the audit service schema for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
