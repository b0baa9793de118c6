package httpapi

import (
	"net/http"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultDenyGlobs keeps the data files and dotfiles out of the static site.
var DefaultDenyGlobs = []string{
	"**/.*",
	"**/.*/**",
	"**/*.db",
	"**/*.db-*",
	"**/*.lock",
	"**/argumentaires.json",
	"**/argumentaire.{yaml,yml,toml}",
	"**/*.tmp-*",
}

func (s *Server) staticHandler() http.Handler {
	if s.staticDir == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
	}
	files := http.FileServer(http.Dir(s.staticDir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.denied(r.URL.Path) {
			s.logger.Debug("static path denied", "path", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// denied reports whether urlPath matches one of the deny globs.
func (s *Server) denied(urlPath string) bool {
	rel := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if rel == "" {
		return false
	}
	for _, pattern := range s.denyGlobs {
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			s.logger.Warn("invalid deny glob", "pattern", pattern, "error", err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
