//go:build !dev

package dashboard

import (
	"embed"
	"io/fs"
)

//go:embed all:web
var embeddedFS embed.FS

// webFS wraps the embedded filesystem. Non-nil in production builds.
var webFS fs.FS = embeddedFS
