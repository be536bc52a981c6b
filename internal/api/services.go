package api

import "github.com/bookbazaar/bookbazaar-server/internal/service"

// Services groups the business services the HTTP layer calls.
type Services struct {
	Sessions *service.SessionService
	Auth     *service.AuthService
	Books    *service.BookService
	Comments *service.CommentService
	Genres   *service.GenreService
	Admin    *service.AdminService
}
