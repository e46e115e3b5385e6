// Package frontend embeds the dashboard page served at the root path.
package frontend

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed all:dist
var dist embed.FS

// GetHTTPFS returns the dashboard files. It fails when dist has no index.html.
func GetHTTPFS() (http.FileSystem, error) {
	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		return nil, err
	}
	if _, err := fs.Stat(sub, "index.html"); err != nil {
		return nil, err
	}
	return http.FS(sub), nil
}
