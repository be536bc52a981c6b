package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/id"
	"github.com/bookbazaar/bookbazaar-server/internal/richtext"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
	"github.com/bookbazaar/bookbazaar-server/internal/validation"
)

// CommentForm is the comment form. Email is required only from anonymous
// visitors; signed-in authors default to their account email.
type CommentForm struct {
	Email string `form:"email" validate:"omitempty,email,max=254"`
	Text  string `form:"text" validate:"required,max=2000"`
}

func (f *CommentForm) normalize() {
	f.Email = strings.TrimSpace(f.Email)
	if richtext.ContainsHTML(f.Text) {
		f.Text = richtext.PlainText(f.Text)
	} else {
		f.Text = strings.TrimSpace(f.Text)
	}
}

// CommentService manages comments and their moderation.
type CommentService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(store store.Store, validator *validation.Validator, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CommentService{store: store, validator: validator, logger: logger}
}

// Add leaves a comment on a book the viewer can see. Anonymous comments
// are allowed. New comments start unverified and are hidden until a
// moderator approves them.
func (s *CommentService) Add(ctx context.Context, v *domain.Viewer, bookID string, form CommentForm) (*domain.Comment, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFoundOr(err, i18n.MsgBookNotFound, "failed to load book")
	}
	if !book.VisibleTo(v) {
		return nil, domainerrors.NotFound(i18n.MsgBookNotFound)
	}

	form.normalize()
	if form.Email == "" && v.IsAuthenticated() {
		form.Email = v.User.Email
	}
	if err := s.validator.Validate(&form); err != nil {
		return nil, err
	}
	if form.Email == "" && !v.IsAuthenticated() {
		return nil, domainerrors.FieldError("email", "This field is required.")
	}

	comment := &domain.Comment{
		BookID:   book.ID,
		AuthorID: v.UserID(),
		Email:    form.Email,
		Text:     form.Text,
	}
	comment.ID = id.MustGenerate(id.PrefixComment)
	comment.InitTimestamps()

	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, notFoundOr(err, i18n.MsgBookNotFound, "failed to create comment")
	}

	s.logger.Info("comment added", "comment_id", comment.ID, "book_id", book.ID, "anonymous", comment.IsAnonymous())
	return comment, nil
}

// GetForEdit loads a comment the viewer wrote on bookID.
func (s *CommentService) GetForEdit(ctx context.Context, v *domain.Viewer, commentID, bookID string) (*domain.Comment, error) {
	return s.authoredComment(ctx, v, commentID, bookID, i18n.MsgEditCommentForbidden)
}

// authoredComment checks login, existence (on the given book) and
// authorship, in that order. Anonymous comments have no author, so nobody
// passes the authorship check for them.
func (s *CommentService) authoredComment(ctx context.Context, v *domain.Viewer, commentID, bookID, forbidden string) (*domain.Comment, error) {
	if err := RequireLogin(v); err != nil {
		return nil, err
	}
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, i18n.MsgCommentNotFound, "failed to load comment")
	}
	if bookID != "" && comment.BookID != bookID {
		return nil, domainerrors.NotFound(i18n.MsgCommentNotFound)
	}
	if err := RequireOwnership(v, comment.AuthorID, forbidden); err != nil {
		return nil, err
	}
	return comment, nil
}

// Edit rewrites the viewer's comment. The verification flag is kept.
func (s *CommentService) Edit(ctx context.Context, v *domain.Viewer, commentID, bookID string, form CommentForm) (*domain.Comment, error) {
	comment, err := s.authoredComment(ctx, v, commentID, bookID, i18n.MsgEditCommentForbidden)
	if err != nil {
		return nil, err
	}

	form.normalize()
	if form.Email == "" {
		form.Email = comment.Email
	}
	if err := s.validator.Validate(&form); err != nil {
		return nil, err
	}

	comment.Email = form.Email
	comment.Text = form.Text
	comment.Touch()

	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, notFoundOr(err, i18n.MsgCommentNotFound, "failed to update comment")
	}

	s.logger.Info("comment updated", "comment_id", comment.ID)
	return comment, nil
}

// Delete removes the viewer's comment.
func (s *CommentService) Delete(ctx context.Context, v *domain.Viewer, commentID, bookID string) error {
	comment, err := s.authoredComment(ctx, v, commentID, bookID, i18n.MsgDeleteCommentForbidden)
	if err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, comment.ID); err != nil {
		return notFoundOr(err, i18n.MsgCommentNotFound, "failed to delete comment")
	}
	s.logger.Info("comment deleted", "comment_id", comment.ID, "book_id", comment.BookID)
	return nil
}

// SetVerified sets the moderation flag, or toggles it when verified is nil.
// Setting the current value succeeds without writing.
func (s *CommentService) SetVerified(ctx context.Context, v *domain.Viewer, commentID string, verified *bool) (*domain.Comment, error) {
	if err := RequireSuperuser(v); err != nil {
		return nil, err
	}

	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, i18n.MsgCommentNotFound, "failed to load comment")
	}

	target := !comment.IsVerified
	if verified != nil {
		target = *verified
	}
	if target == comment.IsVerified {
		return comment, nil
	}

	if err := s.store.SetCommentVerified(ctx, comment.ID, target); err != nil {
		return nil, notFoundOr(err, i18n.MsgCommentNotFound, "failed to update comment")
	}
	comment.IsVerified = target

	s.logger.Info("comment verification changed", "comment_id", comment.ID, "is_verified", target, "moderator_id", v.UserID())
	return comment, nil
}

// ListUnverified returns comments waiting for moderation, newest first,
// with the book name filled in.
func (s *CommentService) ListUnverified(ctx context.Context, v *domain.Viewer) ([]*domain.Comment, error) {
	if err := RequireSuperuser(v); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, store.CommentFilter{Verified: store.Bool(false)})
	if err != nil {
		return nil, domainerrors.Wrap(err, "failed to list unverified comments")
	}
	return comments, nil
}
