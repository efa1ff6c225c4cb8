package appfs

import "embed"

// FS holds the assets shipped within the binary.
//
//go:embed migrations catalog all:templates
var FS embed.FS
