// Package schemas holds the JSON Schemas for documents the CLI and API emit.
package schemas

import "embed"

// Files contains every *.schema.json in this directory.
//
//go:embed *.schema.json
var Files embed.FS
