package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// pageRoutes maps URL patterns to HTML documents under the web root.
var pageRoutes = map[string]string{
	"GET /{$}":              "index.html",
	"GET /index.html":       "index.html",
	"GET /identify":         "identify.html",
	"GET /identify.html":    "identify.html",
	"GET /marketplace.html": "marketplace.html",
	"GET /vendors.html":     "vendors.html",
	"GET /pricing.html":     "pricing.html",
}

// assetDirs are mounted read-only under /<dir>/ when they exist at startup.
var assetDirs = []string{"css", "js", "images", "dataset"}

type Pages struct {
	root   string
	logger *zap.Logger
}

func NewPages(root string, logger *zap.Logger) *Pages {
	return &Pages{root: root, logger: logger}
}

// Register adds the page routes and any asset mounts to mux. It returns the
// asset prefixes that were mounted.
func (p *Pages) Register(mux *http.ServeMux) []string {
	for pattern, file := range pageRoutes {
		mux.HandleFunc(pattern, p.serveFile(file))
	}

	var mounted []string
	for _, dir := range assetDirs {
		path := filepath.Join(p.root, dir)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		prefix := "/" + dir + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(noDirFS{http.Dir(path)})))
		mounted = append(mounted, prefix)
	}
	return mounted
}

func (p *Pages) serveFile(name string) http.HandlerFunc {
	path := filepath.Join(p.root, name)
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				http.NotFound(w, r)
				return
			}
			p.logger.Error("open page", zap.String("path", path), zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		// ServeContent rather than ServeFile: ServeFile redirects */index.html.
		http.ServeContent(w, r, name, info.ModTime(), f)
	}
}

// noDirFS hides directories so asset mounts never produce listings.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
