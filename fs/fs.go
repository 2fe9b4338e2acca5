package appfs

import "embed"

// FS holds files needed at runtime regardless of the working directory.
//go:embed migrations
var FS embed.FS
