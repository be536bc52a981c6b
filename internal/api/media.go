package api

import (
	"net/http"
	"strings"
)

// registerMediaRoutes serves uploaded images. Only refs that resolve inside
// the image kinds are served; directories are never listed.
func (s *Server) registerMediaRoutes() {
	if s.media == nil {
		return
	}
	s.router.Get("/media/*", s.handleMedia)
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimPrefix(r.URL.Path, "/media/")
	path, err := s.media.Path(ref)
	if err != nil || !s.media.Exists(ref) {
		s.handleNotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, path)
}
