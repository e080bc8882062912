// Package site serves the embedded landing page.
package site

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// IndexPath is where the root path redirects to.
const IndexPath = "/static/index.html"

// ErrServe is returned when an embedded asset cannot be read.
var ErrServe = errors.New("static asset serve failed")

// served as the Last-Modified time of every embedded asset
var startedAt = time.Now()

// Register attaches the root redirect and the /static/* asset routes to r.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	assets := NewAssetHandler(FS())
	r.Get("/", HandleRoot)
	r.Get("/static", HandleRoot)
	r.Get("/static/*", assets.ServeHTTP)
	r.Head("/static/*", assets.ServeHTTP)
}

// HandleRoot redirects to the landing page.
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
}

// AssetHandler serves files from an fs.FS mounted under /static/. It serves
// paths verbatim, unlike http.FileServer which rewrites */index.html.
type AssetHandler struct {
	files fs.FS
}

// NewAssetHandler creates a handler for files.
func NewAssetHandler(files fs.FS) *AssetHandler {
	return &AssetHandler{files: files}
}

func (h *AssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/static/")
	if name == "" || !fs.ValidPath(name) {
		http.NotFound(w, r)
		return
	}

	f, err := h.files.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	content, ok := f.(io.ReadSeeker)
	if !ok {
		http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, info.Name(), startedAt, content)
}
