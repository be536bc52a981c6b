package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
)

func (s *Server) registerCommentRoutes() {
	s.router.Post("/books/{id}/comments/add/", s.handleAddComment)

	s.router.Group(func(r chi.Router) {
		r.Use(s.guard(service.RequireLogin))
		r.Get("/books/{id}/comments/{comment_id}/edit/", s.handleEditCommentForm)
		r.Post("/books/{id}/comments/{comment_id}/edit/", s.handleEditComment)
		r.Post("/books/{id}/comments/{comment_id}/delete/", s.handleDeleteComment)
	})
}

// commentEditView is the data behind comments/edit.html.
type commentEditView struct {
	Action  string
	BookURL string
	Comment *domain.Comment
}

// handleAddComment always answers with a redirect to the book. A rejected
// comment is not stored; its errors and input ride along in the flash.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := chi.URLParam(r, "id")

	var form service.CommentForm
	err := decodeForm(w, r, "", &form)
	if err == nil {
		_, err = s.services.Comments.Add(ctx, ViewerFrom(ctx), bookID, form)
	}

	switch {
	case err == nil:
		s.setFlash(w, &Flash{Level: flashSuccess, Message: i18n.MsgCommentPending})
	case domainerrors.CodeOf(err) == domainerrors.CodeValidation:
		s.setFlash(w, &Flash{
			Level:   flashError,
			Message: i18n.MsgCommentRejected,
			Errors:  domainerrors.FieldErrors(err),
			Values:  map[string]string{"email": form.Email, "text": form.Text},
		})
	default:
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, bookURL(bookID), http.StatusSeeOther)
}

func (s *Server) handleEditCommentForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := chi.URLParam(r, "id")
	comment, err := s.services.Comments.GetForEdit(ctx, ViewerFrom(ctx), chi.URLParam(r, "comment_id"), bookID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderCommentForm(w, r, comment, service.CommentForm{Email: comment.Email, Text: comment.Text}, nil)
}

func (s *Server) handleEditComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := ViewerFrom(ctx)
	bookID := chi.URLParam(r, "id")

	comment, err := s.services.Comments.GetForEdit(ctx, viewer, chi.URLParam(r, "comment_id"), bookID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	var form service.CommentForm
	if err := decodeForm(w, r, "", &form); err != nil {
		s.renderCommentForm(w, r, comment, service.CommentForm{Email: comment.Email, Text: comment.Text}, err)
		return
	}

	if _, err := s.services.Comments.Edit(ctx, viewer, comment.ID, bookID, form); err != nil {
		s.renderCommentForm(w, r, comment, form, err)
		return
	}
	http.Redirect(w, r, bookURL(bookID), http.StatusSeeOther)
}

func (s *Server) renderCommentForm(w http.ResponseWriter, r *http.Request, comment *domain.Comment, form service.CommentForm, err error) {
	if err != nil && domainerrors.CodeOf(err) != domainerrors.CodeValidation {
		s.renderError(w, r, err)
		return
	}

	data := &PageData{
		Title: "Edit comment",
		Form:  form,
		Data: commentEditView{
			Action:  bookURL(comment.BookID) + "comments/" + comment.ID + "/edit/",
			BookURL: bookURL(comment.BookID),
			Comment: comment,
		},
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
		data.Errors = domainerrors.FieldErrors(err)
		if len(data.Errors) == 0 {
			data.Message = domainerrors.Message(err)
		}
	}
	s.render(w, r, status, "comments/edit.html", data)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := chi.URLParam(r, "id")
	if err := s.services.Comments.Delete(ctx, ViewerFrom(ctx), chi.URLParam(r, "comment_id"), bookID); err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, bookURL(bookID), http.StatusSeeOther)
}
