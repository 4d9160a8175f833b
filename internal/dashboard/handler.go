// Package dashboard serves the embedded HealthGenie page: the BMI
// calculator, the question box and the connection status banner.
package dashboard

import (
	"io/fs"
	"net/http"
	"strings"
)

// Handler returns an http.Handler that serves the embedded page assets.
// Unknown paths fall back to index.html so a bookmarked or mistyped path
// still lands on the page.
func Handler() http.Handler {
	if webFS == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "dashboard not available (dev mode)", http.StatusNotFound)
		})
	}

	subFS, err := fs.Sub(webFS, "web")
	if err != nil {
		panic("dashboard: failed to create sub filesystem: " + err.Error())
	}

	fileServer := http.FileServer(http.FS(subFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Never shadow API routes, health endpoints, metrics or swagger.
		if strings.HasPrefix(r.URL.Path, "/api/") ||
			strings.HasPrefix(r.URL.Path, "/swagger/") ||
			r.URL.Path == "/healthz" ||
			r.URL.Path == "/readyz" ||
			r.URL.Path == "/metrics" {
			http.NotFound(w, r)
			return
		}

		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		f, err := subFS.Open(strings.TrimPrefix(path, "/"))
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}

		// Unknown path, serve the page itself.
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
