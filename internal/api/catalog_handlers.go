package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

func (s *Server) registerCatalogAPIRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a page of verified books, newest first",
		Tags:        []string{"Catalog"},
	}, s.handleAPIListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its genres and verified comments",
		Tags:        []string{"Catalog"},
	}, s.handleAPIGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Full-text search over verified books",
		Tags:        []string{"Catalog"},
	}, s.handleAPISearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Tags:        []string{"Genres"},
	}, s.handleAPIListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createGenre",
		Method:        http.MethodPost,
		Path:          "/api/v1/genres",
		Summary:       "Create genre",
		Description:   "Adds a genre. Moderators only.",
		Tags:          []string{"Genres"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"session": {}}},
	}, s.handleAPICreateGenre)
}

// === DTOs ===

// GenreResponse is a genre in API responses.
type GenreResponse struct {
	ID   string `json:"id" doc:"Genre ID"`
	Name string `json:"name" doc:"Display name"`
	Slug string `json:"slug" doc:"URL-safe name"`
}

// BookResponse is a book in API responses. Price is a decimal string.
type BookResponse struct {
	ID              string          `json:"id" doc:"Book ID"`
	Name            string          `json:"name" doc:"Title"`
	Author          string          `json:"author" doc:"Author"`
	Genres          []GenreResponse `json:"genres" doc:"Genres"`
	Description     string          `json:"description" doc:"Description (Markdown)"`
	Publication     string          `json:"publication" doc:"Publisher"`
	PublicationYear string          `json:"publication_year" doc:"Year of publication"`
	Quantity        int             `json:"quantity" doc:"Copies available"`
	Price           string          `json:"price" doc:"Price with two decimals" example:"350.00"`
	ImageURL        string          `json:"image_url,omitempty" doc:"Cover image URL"`
	ImageBlurHash   string          `json:"image_blurhash,omitempty" doc:"BlurHash placeholder for the cover"`
	CreatedAt       time.Time       `json:"created_at" doc:"Listing time"`
}

// CommentResponse is a verified comment in API responses. Emails are not
// exposed.
type CommentResponse struct {
	ID         string    `json:"id" doc:"Comment ID"`
	AuthorName string    `json:"author_name,omitempty" doc:"Author display name; empty for anonymous comments"`
	Text       string    `json:"text" doc:"Comment text"`
	CreatedAt  time.Time `json:"created_at" doc:"Creation time"`
}

// BookDetailResponse is a book with its comments.
type BookDetailResponse struct {
	BookResponse
	Comments []CommentResponse `json:"comments" doc:"Verified comments, newest first"`
}

// BookListResponse is a page of books.
type BookListResponse struct {
	Items    []BookResponse `json:"items" doc:"Books on this page"`
	Total    int            `json:"total" doc:"Total matching books"`
	Page     int            `json:"page" doc:"Page number, 1-based"`
	PageSize int            `json:"page_size" doc:"Books per page"`
	HasMore  bool           `json:"has_more" doc:"Whether a later page has books"`
}

// GenreFacet is a genre with its hit count in search results.
type GenreFacet struct {
	Slug  string `json:"slug" doc:"Genre slug"`
	Count int    `json:"count" doc:"Matching books in this genre"`
}

// SearchResponse is a page of search hits.
type SearchResponse struct {
	BookListResponse
	Query  string       `json:"query" doc:"Normalized query"`
	Genres []GenreFacet `json:"genres,omitempty" doc:"Genre facets"`
}

func toGenreResponse(g domain.Genre) GenreResponse {
	return GenreResponse{ID: g.ID, Name: g.Name, Slug: g.Slug}
}

func toBookResponse(b *domain.Book) BookResponse {
	genres := make([]GenreResponse, len(b.Genres))
	for i, g := range b.Genres {
		genres[i] = toGenreResponse(g)
	}
	resp := BookResponse{
		ID:              b.ID,
		Name:            b.Name,
		Author:          b.Author,
		Genres:          genres,
		Description:     b.Description,
		Publication:     b.Publication,
		PublicationYear: b.PublicationYear,
		Quantity:        b.Quantity,
		Price:           b.Price.String(),
		ImageBlurHash:   b.ImageBlurHash,
		CreatedAt:       b.CreatedAt,
	}
	if b.Image != "" {
		resp.ImageURL = "/media/" + b.Image
	}
	return resp
}

func toBookResponses(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = toBookResponse(b)
	}
	return out
}

// === Handlers ===

// PageInput selects a page.
type PageInput struct {
	Page int `query:"page" default:"1" minimum:"1" doc:"Page number, 1-based"`
}

// BookListOutput wraps BookListResponse for huma.
type BookListOutput struct {
	Body BookListResponse
}

func (s *Server) handleAPIListBooks(ctx context.Context, input *PageInput) (*BookListOutput, error) {
	page, err := s.services.Books.List(ctx, input.Page)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}
	return &BookListOutput{Body: BookListResponse{
		Items:    toBookResponses(page.Items),
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		HasMore:  page.HasNext(),
	}}, nil
}

// BookIDInput addresses a book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookDetailOutput wraps BookDetailResponse for huma.
type BookDetailOutput struct {
	Body BookDetailResponse
}

func (s *Server) handleAPIGetBook(ctx context.Context, input *BookIDInput) (*BookDetailOutput, error) {
	detail, err := s.services.Books.Get(ctx, ViewerFrom(ctx), input.ID)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}

	comments := make([]CommentResponse, len(detail.Comments))
	for i, c := range detail.Comments {
		comments[i] = CommentResponse{ID: c.ID, AuthorName: c.AuthorName, Text: c.Text, CreatedAt: c.CreatedAt}
	}
	return &BookDetailOutput{Body: BookDetailResponse{
		BookResponse: toBookResponse(detail.Book),
		Comments:     comments,
	}}, nil
}

// SearchInput is a catalog query.
type SearchInput struct {
	Query string `query:"q" maxLength:"200" doc:"Search text"`
	Genre string `query:"genre" doc:"Genre slug, alias or name"`
	Sort  string `query:"sort" enum:"relevance,recent,name" doc:"Sort order"`
	Page  int    `query:"page" default:"1" minimum:"1" doc:"Page number, 1-based"`
}

// SearchOutput wraps SearchResponse for huma.
type SearchOutput struct {
	Body SearchResponse
}

func (s *Server) handleAPISearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	result, err := s.services.Books.Search(ctx, service.SearchRequest{
		Query: input.Query,
		Genre: input.Genre,
		Sort:  input.Sort,
		Page:  input.Page,
	})
	if err != nil {
		return nil, s.apiError(ctx, err)
	}

	facets := make([]GenreFacet, len(result.Genres))
	for i, f := range result.Genres {
		facets[i] = GenreFacet{Slug: f.Value, Count: f.Count}
	}
	return &SearchOutput{Body: SearchResponse{
		BookListResponse: BookListResponse{
			Items:    toBookResponses(result.Books),
			Total:    result.Total,
			Page:     result.Page,
			PageSize: store.DefaultPageSize,
			HasMore:  result.HasNext(),
		},
		Query:  result.Query,
		Genres: facets,
	}}, nil
}

// GenreListOutput lists genres.
type GenreListOutput struct {
	Body struct {
		Items []GenreResponse `json:"items" doc:"Genres by name"`
	}
}

func (s *Server) handleAPIListGenres(ctx context.Context, _ *struct{}) (*GenreListOutput, error) {
	genres, err := s.services.Genres.List(ctx)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}
	out := &GenreListOutput{}
	out.Body.Items = make([]GenreResponse, len(genres))
	for i, g := range genres {
		out.Body.Items[i] = toGenreResponse(g)
	}
	return out, nil
}

// CreateGenreInput is the genre creation body.
type CreateGenreInput struct {
	Body service.CreateGenreRequest
}

// GenreOutput wraps a single genre.
type GenreOutput struct {
	Body GenreResponse
}

func (s *Server) handleAPICreateGenre(ctx context.Context, input *CreateGenreInput) (*GenreOutput, error) {
	g, err := s.services.Genres.Create(ctx, ViewerFrom(ctx), input.Body)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}
	return &GenreOutput{Body: toGenreResponse(*g)}, nil
}
