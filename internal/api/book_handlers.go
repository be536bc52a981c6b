package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	s.router.Get("/books/", s.handleListBooks)
	s.router.Get("/books/search/", s.handleSearchBooks)
	s.router.Get("/books/{id}/", s.handleBookDetail)

	s.router.Group(func(r chi.Router) {
		r.Use(s.guard(service.RequireLogin))
		r.Get("/books/add/", s.handleAddBookForm)
		r.Post("/books/add/", s.handleAddBook)
		r.Get("/books/{id}/edit/", s.handleEditBookForm)
		r.Post("/books/{id}/edit/", s.handleEditBook)
		r.Get("/books/{id}/delete/", s.handleDeleteBookForm)
		r.Post("/books/{id}/delete/", s.handleDeleteBook)
	})
}

// bookFormView is the data behind books/form.html.
type bookFormView struct {
	Action string
	Book   *domain.Book // nil when adding
	Genres []domain.Genre
}

// bookDetailView is the data behind books/detail.html.
type bookDetailView struct {
	*service.BookDetail
	CommentAction string
}

// searchView is the data behind books/search.html.
type searchView struct {
	Result *service.SearchPage
	Genres []domain.Genre
	Query  string
	Genre  string
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	page, err := s.services.Books.List(r.Context(), pageParam(r))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "books/list.html", &PageData{Title: "Catalog", Data: page})
}

func (s *Server) handleBookDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	detail, err := s.services.Books.Get(ctx, ViewerFrom(ctx), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	// A rejected comment comes back through the flash with its input.
	data := &PageData{
		Title: detail.Book.Name,
		Form:  service.CommentForm{},
		Data: bookDetailView{
			BookDetail:    detail,
			CommentAction: bookURL(detail.Book.ID) + "comments/add/",
		},
	}
	if flash := s.popFlash(w, r); flash != nil {
		data.Flash = flash
		data.Errors = flash.Errors
		data.Form = service.CommentForm{Email: flash.Values["email"], Text: flash.Values["text"]}
	}
	s.render(w, r, http.StatusOK, "books/detail.html", data)
}

func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	req := service.SearchRequest{
		Query: strings.TrimSpace(q.Get("q")),
		Genre: strings.TrimSpace(q.Get("genre")),
		Sort:  q.Get("sort"),
		Page:  pageParam(r),
	}

	result, err := s.services.Books.Search(ctx, req)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	genres, err := s.services.Genres.List(ctx)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "books/search.html", &PageData{
		Title: "Search",
		Data:  searchView{Result: result, Genres: genres, Query: req.Query, Genre: req.Genre},
	})
}

func (s *Server) handleAddBookForm(w http.ResponseWriter, r *http.Request) {
	s.renderBookForm(w, r, nil, service.BookForm{}, nil)
}

func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var form service.BookForm
	if err := decodeForm(w, r, "image", &form); err != nil {
		s.renderBookForm(w, r, nil, form, err)
		return
	}

	image, err := uploadedFile(r, "image")
	if err != nil {
		s.renderBookForm(w, r, nil, form, err)
		return
	}
	defer closeUpload(image)
	form.Image = image

	if _, err := s.services.Books.Create(ctx, ViewerFrom(ctx), form); err != nil {
		s.renderBookForm(w, r, nil, form, err)
		return
	}

	s.setFlash(w, &Flash{Level: flashSuccess, Message: i18n.MsgBookPending})
	http.Redirect(w, r, "/books/", http.StatusSeeOther)
}

func (s *Server) handleEditBookForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	book, err := s.services.Books.GetForEdit(ctx, ViewerFrom(ctx), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderBookForm(w, r, book, service.FormFromBook(book), nil)
}

func (s *Server) handleEditBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := ViewerFrom(ctx)

	// Ownership is checked before the body is read.
	book, err := s.services.Books.GetForEdit(ctx, viewer, chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	var form service.BookForm
	if err := decodeForm(w, r, "image", &form); err != nil {
		s.renderBookForm(w, r, book, service.FormFromBook(book), err)
		return
	}

	image, err := uploadedFile(r, "image")
	if err != nil {
		s.renderBookForm(w, r, book, form, err)
		return
	}
	defer closeUpload(image)
	form.Image = image

	if _, err := s.services.Books.Edit(ctx, viewer, book.ID, form); err != nil {
		s.renderBookForm(w, r, book, form, err)
		return
	}
	http.Redirect(w, r, bookURL(book.ID), http.StatusSeeOther)
}

// renderBookForm shows the add or edit form. Validation errors re-render
// it with 422; any other error renders the error page.
func (s *Server) renderBookForm(w http.ResponseWriter, r *http.Request, book *domain.Book, form service.BookForm, err error) {
	if err != nil && domainerrors.CodeOf(err) != domainerrors.CodeValidation {
		s.renderError(w, r, err)
		return
	}

	genres, gerr := s.services.Genres.List(r.Context())
	if gerr != nil {
		s.renderError(w, r, gerr)
		return
	}

	view := bookFormView{Action: "/books/add/", Book: book, Genres: genres}
	data := &PageData{Title: "Add book", Form: form, Data: view}
	if book != nil {
		view.Action = bookURL(book.ID) + "edit/"
		data.Title = "Edit book"
		data.Data = view
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
		data.Errors = domainerrors.FieldErrors(err)
		if len(data.Errors) == 0 {
			data.Message = domainerrors.Message(err)
		}
	}
	s.render(w, r, status, "books/form.html", data)
}

func (s *Server) handleDeleteBookForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	book, err := s.services.Books.GetForDelete(ctx, ViewerFrom(ctx), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "books/delete.html", &PageData{Title: "Delete book", Data: book})
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.services.Books.Delete(ctx, ViewerFrom(ctx), chi.URLParam(r, "id")); err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/books/", http.StatusSeeOther)
}
