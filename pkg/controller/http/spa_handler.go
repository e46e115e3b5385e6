package http

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// SPAHandler serves the embedded dashboard page and its assets. Unknown paths get index.html.
type SPAHandler struct {
	fileSystem http.FileSystem
	indexFile  []byte
	loadedAt   time.Time
}

// NewSPAHandler creates a new SPA handler
func NewSPAHandler(filesystem http.FileSystem) (*SPAHandler, error) {
	indexFile, err := filesystem.Open("/index.html")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open index.html for SPA handler")
	}
	defer indexFile.Close()

	indexContent, err := io.ReadAll(indexFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read index.html content")
	}

	return &SPAHandler{
		fileSystem: filesystem,
		indexFile:  indexContent,
		loadedAt:   time.Now(),
	}, nil
}

// ServeHTTP implements the http.Handler interface for SPA routing
func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cleanPath := path.Clean("/" + r.URL.Path)

	file, err := h.fileSystem.Open(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			h.serveIndex(w, r)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if stat.IsDir() {
		h.serveIndex(w, r)
		return
	}

	if contentType := getContentType(cleanPath); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if strings.HasPrefix(cleanPath, "/assets/") {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
	http.ServeContent(w, r, stat.Name(), stat.ModTime(), file)
}

// serveIndex serves index.html. It is never cached so a new build is picked up on reload.
func (h *SPAHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, "index.html", h.loadedAt, bytes.NewReader(h.indexFile))
}

var mimeTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "application/javascript; charset=utf-8",
	".json":  "application/json; charset=utf-8",
	".png":   "image/png",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".woff2": "font/woff2",
}

// getContentType returns the content type for common file extensions
func getContentType(filePath string) string {
	return mimeTypes[path.Ext(filePath)]
}
