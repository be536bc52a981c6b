package api

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookbazaar/bookbazaar-server/internal/auth"
	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	"github.com/bookbazaar/bookbazaar-server/internal/id"
	"github.com/bookbazaar/bookbazaar-server/internal/media/images"
	"github.com/bookbazaar/bookbazaar-server/internal/ratelimit"
	"github.com/bookbazaar/bookbazaar-server/internal/search"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
	"github.com/bookbazaar/bookbazaar-server/internal/store/sqlite"
	"github.com/bookbazaar/bookbazaar-server/internal/validation"
)

// renderedPage is one page the recording renderer was asked for.
type renderedPage struct {
	Name string
	Data *PageData
}

// recordingRenderer captures page data instead of producing HTML. It writes
// the template name as the body.
type recordingRenderer struct {
	mu    sync.Mutex
	pages []renderedPage
}

func (r *recordingRenderer) Render(w io.Writer, name string, data *PageData) error {
	r.mu.Lock()
	r.pages = append(r.pages, renderedPage{Name: name, Data: data})
	r.mu.Unlock()
	_, err := io.WriteString(w, name)
	return err
}

func (r *recordingRenderer) last(t *testing.T) renderedPage {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.pages, "no page rendered")
	return r.pages[len(r.pages)-1]
}

type testServer struct {
	*Server
	store    *sqlite.Store
	renderer *recordingRenderer
}

type serverOption func(*Options)

func withAuthLimiter(l *ratelimit.KeyedRateLimiter) serverOption {
	return func(o *Options) { o.AuthLimiter = l }
}

func withRenderer(r Renderer) serverOption {
	return func(o *Options) { o.Renderer = r }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	storage, err := images.NewStorage(filepath.Join(dir, "media"))
	require.NoError(t, err)
	processor := images.NewProcessor(storage, nil)

	index, err := search.NewSearchIndex(search.Options{DataPath: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokens, err := auth.NewSessionTokens(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	v := validation.New()
	sessions := service.NewSessionService(st, tokens, time.Hour, nil)
	books := service.NewBookService(st, processor, index, v, nil)
	comments := service.NewCommentService(st, v, nil)

	renderer := &recordingRenderer{}
	options := Options{
		Services: &Services{
			Sessions: sessions,
			Auth:     service.NewAuthService(st, sessions, processor, v, nil),
			Books:    books,
			Comments: comments,
			Genres:   service.NewGenreService(st, v, nil),
			Admin:    service.NewAdminService(books, comments, nil),
		},
		Store:    st,
		Search:   index,
		Media:    storage,
		Renderer: renderer,
		Tokens:   tokens,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &testServer{Server: NewServer(options), store: st, renderer: renderer}
}

var phoneSeq int

// user inserts an account directly and returns it as a viewer with a live
// session cookie.
func (ts *testServer) user(t *testing.T, username string, superuser bool) (*domain.Viewer, *http.Cookie) {
	t.Helper()
	ctx := context.Background()

	phoneSeq++
	hash, err := auth.HashPassword("correct horse battery")
	require.NoError(t, err)
	u := &domain.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     username,
		Email:        username + "@example.com",
		PhoneNumber:  fmt.Sprintf("+7901%07d", phoneSeq),
		IsSuperuser:  superuser,
		IsActive:     true,
	}
	u.ID = id.MustGenerate(id.PrefixUser)
	u.InitTimestamps()
	require.NoError(t, ts.store.CreateUser(ctx, u))

	session, token, err := ts.services.Sessions.Issue(ctx, u.ID, service.ClientInfo{})
	require.NoError(t, err)

	viewer := &domain.Viewer{SessionID: session.ID, User: u}
	return viewer, &http.Cookie{Name: DefaultCookieName, Value: token}
}

func bookValues(name string) url.Values {
	return url.Values{
		"name":             {name},
		"author":           {"Михаил Булгаков"},
		"description":      {"Роман о визите дьявола в Москву."},
		"publication":      {"АСТ"},
		"publication_year": {"1967"},
		"quantity":         {"3"},
		"price":            {"650.00"},
	}
}

// book lists a book for seller through the service, approving it when
// moderator is set.
func (ts *testServer) book(t *testing.T, seller *domain.Viewer, name string, moderator *domain.Viewer) *domain.Book {
	t.Helper()
	ctx := context.Background()
	b, err := ts.services.Books.Create(ctx, seller, service.BookForm{
		Name:            name,
		Author:          "Михаил Булгаков",
		Description:     "Роман о визите дьявола в Москву.",
		Publication:     "АСТ",
		PublicationYear: "1967",
		Quantity:        "3",
		Price:           "650.00",
	})
	require.NoError(t, err)
	if moderator != nil {
		verified := true
		b, err = ts.services.Books.SetVerified(ctx, moderator, b.ID, &verified)
		require.NoError(t, err)
	}
	return b
}

// get performs a GET with English messages.
func (ts *testServer) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return ts.do(req, cookies...)
}

// postForm submits url-encoded values.
func (ts *testServer) postForm(path string, values url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(req, cookies...)
}

// postMultipart submits values plus an optional file under fileField.
func (ts *testServer) postMultipart(t *testing.T, path string, values url.Values, fileField string, file []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, vals := range values {
		for _, v := range vals {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, "upload.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return ts.do(req, cookies...)
}

func (ts *testServer) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req.Header.Set("Accept-Language", "en")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

// responseCookie returns the cookie named name set by the response, or nil.
func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		for y := range 8 {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: 90, B: uint8(y * 30), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
