//go:build dev

package dashboard

import "io/fs"

// webFS is nil in dev mode -- the handler returns 404 for all requests,
// allowing a local file server or proxy to serve the page instead.
var webFS fs.FS
