// Package assets serves the embedded stylesheet and scripts, minified once
// at startup, and WebP thumbnails of project images.
package assets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

//go:embed static
var rawFS embed.FS

type asset struct {
	data        []byte
	contentType string
	etag        string
}

// Bundle holds the minified static files keyed by name, e.g. "app.js".
type Bundle struct {
	files map[string]asset
}

// NewBundle minifies every embedded file. A file that fails to minify is
// served as authored.
func NewBundle() *Bundle {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)

	b := &Bundle{files: make(map[string]asset)}
	_ = fs.WalkDir(rawFS, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		raw, err := rawFS.ReadFile(p)
		if err != nil {
			return nil
		}
		name := strings.TrimPrefix(p, "static/")
		media := mediaType(name)

		out, err := m.Bytes(media, raw)
		if err != nil {
			log.Printf("level=warn msg=\"minify failed, using original\" file=%s err=%q", name, err)
			out = raw
		}
		sum := sha256.Sum256(out)
		b.files[name] = asset{
			data:        out,
			contentType: media + "; charset=utf-8",
			etag:        `"` + hex.EncodeToString(sum[:8]) + `"`,
		}
		return nil
	})
	return b
}

func mediaType(name string) string {
	switch path.Ext(name) {
	case ".js":
		return "application/javascript"
	case ".css":
		return "text/css"
	}
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return strings.SplitN(t, ";", 2)[0]
	}
	return "application/octet-stream"
}

// Get returns the minified bytes and content type of name.
func (b *Bundle) Get(name string) ([]byte, string, bool) {
	a, ok := b.files[name]
	return a.data, a.contentType, ok
}

// Names lists the bundled files.
func (b *Bundle) Names() []string {
	names := make([]string, 0, len(b.files))
	for n := range b.files {
		names = append(names, n)
	}
	return names
}

// Handler serves the bundle. Mount it with http.StripPrefix.
func (b *Bundle) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := b.files[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("ETag", a.etag)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if r.Header.Get("If-None-Match") == a.etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", a.contentType)
		w.Write(a.data)
	})
}
