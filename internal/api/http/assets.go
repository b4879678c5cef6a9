package http

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/selfcheck/internal/storage"
)

// AssetsPrefix is where figures referenced by question prompts live.
const AssetsPrefix = "assets/"

// MountAssets serves GET /* from the assets/ area of the blob store.
// Set documents are never reachable through it.
func MountAssets(r chi.Router, bs storage.BlobStore) {
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(path.Clean("/"+chi.URLParam(r, "*")), "/")
		if key == "" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		rc, err := bs.Get(AssetsPrefix + key)
		if err != nil {
			writeErr(w, err)
			return
		}
		defer rc.Close()
		ct := mime.TypeByExtension(path.Ext(key))
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		_, _ = io.Copy(w, rc)
	})
}
