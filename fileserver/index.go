package fileserver

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const indexPage = "index.html"

// serveIndexFiles answers explicit requests for an index.html with the file
// itself. http.FileServer would redirect them to the parent directory.
func serveIndexFiles(root http.FileSystem, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		name := path.Clean("/" + req.URL.Path)
		if path.Base(name) != indexPage || strings.HasSuffix(req.URL.Path, "/") {
			next.ServeHTTP(rw, req)
			return
		}

		f, err := root.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(rw, req)
			return
		} else if errors.Is(err, fs.ErrPermission) {
			http.Error(rw, "403 Forbidden", http.StatusForbidden)
			return
		} else if err != nil {
			http.Error(rw, "500 Internal Server Error", http.StatusInternalServerError)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			next.ServeHTTP(rw, req)
			return
		}

		http.ServeContent(rw, req, info.Name(), info.ModTime(), f)
	})
}
