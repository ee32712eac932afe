// Package migrations embeds the versioned SQL schema so binaries and tests
// can migrate without the files on disk.
package migrations

import "embed"

// FS holds every *.sql migration
//
//go:embed *.sql
var FS embed.FS
