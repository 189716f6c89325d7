// Package migrations embebe los scripts SQL de goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
