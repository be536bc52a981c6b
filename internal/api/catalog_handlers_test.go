package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

func TestAPIListBooks(t *testing.T) {
	ts := newTestServer(t)
	api := humatest.Wrap(t, ts.API())
	seller, _ := ts.user(t, "seller", false)
	moderator, _ := ts.user(t, "moderator", true)
	for i := range 13 {
		ts.book(t, seller, fmt.Sprintf("Том %02d", i), moderator)
	}
	ts.book(t, seller, "Черновик", nil)

	resp := api.Get("/api/v1/books")
	require.Equal(t, http.StatusOK, resp.Code)
	first := decode[BookListResponse](t, resp.Body.Bytes())
	assert.Len(t, first.Items, store.DefaultPageSize)
	assert.Equal(t, 13, first.Total)
	assert.Equal(t, 1, first.Page)
	assert.True(t, first.HasMore)
	assert.Equal(t, "650.00", first.Items[0].Price)

	resp = api.Get("/api/v1/books?page=2")
	require.Equal(t, http.StatusOK, resp.Code)
	second := decode[BookListResponse](t, resp.Body.Bytes())
	assert.Len(t, second.Items, 1)
	assert.False(t, second.HasMore)

	resp = api.Get("/api/v1/books?page=9")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[BookListResponse](t, resp.Body.Bytes()).Items)

	resp = api.Get("/api/v1/books?page=0")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestAPIGetBookHidesUnverified(t *testing.T) {
	ts := newTestServer(t)
	api := humatest.Wrap(t, ts.API())
	seller, sellerCookie := ts.user(t, "seller", false)
	book := ts.book(t, seller, "Черновик", nil)

	resp := api.Get("/api/v1/books/" + book.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.Get("/api/v1/books/"+book.ID, cookieHeader(sellerCookie))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, book.ID, decode[BookDetailResponse](t, resp.Body.Bytes()).ID)
}

func TestAPIGenres(t *testing.T) {
	ts := newTestServer(t)
	api := humatest.Wrap(t, ts.API())
	_, readerCookie := ts.user(t, "reader", false)
	_, modCookie := ts.user(t, "moderator", true)

	resp := api.Post("/api/v1/genres", map[string]any{"name": "Фантастика"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Post("/api/v1/genres", cookieHeader(readerCookie), map[string]any{"name": "Фантастика"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = api.Post("/api/v1/genres", cookieHeader(modCookie), map[string]any{"name": "Фантастика"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decode[GenreResponse](t, resp.Body.Bytes())
	assert.Equal(t, "Фантастика", created.Name)
	assert.NotEmpty(t, created.Slug)

	resp = api.Get("/api/v1/genres")
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[struct {
		Items []GenreResponse `json:"items"`
	}](t, resp.Body.Bytes())
	var names []string
	for _, g := range list.Items {
		names = append(names, g.Name)
	}
	assert.Contains(t, names, "Фантастика")
}

func TestAPISearch(t *testing.T) {
	ts := newTestServer(t)
	api := humatest.Wrap(t, ts.API())
	seller, _ := ts.user(t, "seller", false)
	moderator, _ := ts.user(t, "moderator", true)
	ts.book(t, seller, "Собачье сердце", moderator)
	ts.book(t, seller, "Роковые яйца", moderator)

	resp := api.Get("/api/v1/search?q=%D1%81%D0%B5%D1%80%D0%B4%D1%86%D0%B5&sort=relevance")
	require.Equal(t, http.StatusOK, resp.Code)
	got := decode[SearchResponse](t, resp.Body.Bytes())
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Собачье сердце", got.Items[0].Name)

	resp = api.Get("/api/v1/search?sort=price")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	api := humatest.Wrap(t, ts.API())

	resp := api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	got := decode[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, "ok", got.Components["database"].Status)
	assert.Equal(t, "ok", got.Components["search"].Status)
}

func TestHealthWithoutSearchIsDegraded(t *testing.T) {
	ts := newTestServer(t, func(o *Options) { o.Search = nil })
	api := humatest.Wrap(t, ts.API())

	resp := api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "degraded", decode[HealthResponse](t, resp.Body.Bytes()).Status)
}

func TestOpenAPIDocument(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.get("/api/openapi.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "setBookStatus")
	assert.Contains(t, rec.Body.String(), "listBooks")
}

func TestAPICORS(t *testing.T) {
	ts := newTestServer(t, func(o *Options) { o.CORSOrigins = []string{"https://shop.example.com"} })

	const origin = "Origin: https://shop.example.com"

	rec := ts.get("/api/v1/books")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), "no Origin, no CORS headers")

	api := humatest.Wrap(t, ts.API())
	resp := api.Get("/api/v1/books", origin)
	assert.Equal(t, "https://shop.example.com", resp.Header().Get("Access-Control-Allow-Origin"))

	resp = api.Get("/books/", origin)
	assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"), "pages are not shared cross-origin")
}

func TestUnknownAPIPathAnswersJSON(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.get("/api/v1/nothing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	body := decode[APIError](t, rec.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", body.Code)
	assert.Equal(t, "Page not found.", body.Message)
}
