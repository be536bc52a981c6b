package api

import (
	"net/http"
	"net/url"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
)

// moderatorOnly gates moderator pages. The status endpoints check the role
// in the service with their own message.
var moderatorOnly = service.All(
	service.RequireLogin,
	service.RequireRole(func(u *domain.User) bool { return u.IsSuperuser }, i18n.MsgForbidden),
)

// guard applies g to page routes. UNAUTHORIZED redirects to login, other
// failures render the error page.
func (s *Server) guard(g service.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g(ViewerFrom(r.Context())); err != nil {
				s.renderError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// redirectToLogin sends the visitor to the login form, returning them to
// the current page afterwards. Form posts return to the catalog.
func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	next := "/books/"
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		next = r.URL.RequestURI()
	}
	http.Redirect(w, r, "/users/login/?next="+url.QueryEscape(next), http.StatusSeeOther)
}
