package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerModerationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "setBookStatus",
		Method:      http.MethodPost,
		Path:        "/books/{id}/status/",
		Summary:     "Set book verification",
		Description: "Sets the book's verification flag, or toggles it when no body is sent. Moderators only.",
		Tags:        []string{"Moderation"},
		Security:    []map[string][]string{{"session": {}}},
	}, s.handleSetBookStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "setCommentStatus",
		Method:      http.MethodPost,
		Path:        "/comments/{id}/status/",
		Summary:     "Set comment verification",
		Description: "Sets the comment's verification flag, or toggles it when no body is sent. Moderators only.",
		Tags:        []string{"Moderation"},
		Security:    []map[string][]string{{"session": {}}},
	}, s.handleSetCommentStatus)
}

// VerifyRequest is the optional moderation body.
type VerifyRequest struct {
	IsVerified *bool `json:"is_verified,omitempty" doc:"Target value; omitted toggles the current one"`
}

// VerifyInput addresses a book or comment by id.
type VerifyInput struct {
	ID   string         `path:"id" doc:"Book or comment ID"`
	Body *VerifyRequest `required:"false"`
}

func (in *VerifyInput) target() *bool {
	if in.Body == nil {
		return nil
	}
	return in.Body.IsVerified
}

// VerifyResponse reports the resulting flag.
type VerifyResponse struct {
	Status     string `json:"status" doc:"Always \"success\"" example:"success"`
	IsVerified bool   `json:"is_verified" doc:"Verification flag after the change"`
}

// VerifyOutput wraps VerifyResponse for huma.
type VerifyOutput struct {
	Body VerifyResponse
}

func (s *Server) handleSetBookStatus(ctx context.Context, input *VerifyInput) (*VerifyOutput, error) {
	book, err := s.services.Books.SetVerified(ctx, ViewerFrom(ctx), input.ID, input.target())
	if err != nil {
		return nil, s.apiError(ctx, err)
	}
	return &VerifyOutput{Body: VerifyResponse{Status: "success", IsVerified: book.IsVerified}}, nil
}

func (s *Server) handleSetCommentStatus(ctx context.Context, input *VerifyInput) (*VerifyOutput, error) {
	comment, err := s.services.Comments.SetVerified(ctx, ViewerFrom(ctx), input.ID, input.target())
	if err != nil {
		return nil, s.apiError(ctx, err)
	}
	return &VerifyOutput{Body: VerifyResponse{Status: "success", IsVerified: comment.IsVerified}}, nil
}
