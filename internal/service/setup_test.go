package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookbazaar/bookbazaar-server/internal/auth"
	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	"github.com/bookbazaar/bookbazaar-server/internal/id"
	"github.com/bookbazaar/bookbazaar-server/internal/media/images"
	"github.com/bookbazaar/bookbazaar-server/internal/search"
	"github.com/bookbazaar/bookbazaar-server/internal/store/sqlite"
	"github.com/bookbazaar/bookbazaar-server/internal/validation"
)

type testEnv struct {
	store    *sqlite.Store
	storage  *images.Storage
	index    *search.SearchIndex
	sessions *SessionService
	auth     *AuthService
	books    *BookService
	comments *CommentService
	genres   *GenreService
	admin    *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
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
	sessions := NewSessionService(st, tokens, time.Hour, nil)
	books := NewBookService(st, processor, index, v, nil)
	comments := NewCommentService(st, v, nil)

	return &testEnv{
		store:    st,
		storage:  storage,
		index:    index,
		sessions: sessions,
		auth:     NewAuthService(st, sessions, processor, v, nil),
		books:    books,
		comments: comments,
		genres:   NewGenreService(st, v, nil),
		admin:    NewAdminService(books, comments, nil),
	}
}

var phoneSeq int

// viewer inserts a user directly and returns it as a signed-in viewer.
func (e *testEnv) viewer(t *testing.T, username string, superuser bool) *domain.Viewer {
	t.Helper()
	phoneSeq++
	u := &domain.User{
		Username:     username,
		PasswordHash: "unused",
		FirstName:    "Test",
		LastName:     username,
		Email:        username + "@example.com",
		PhoneNumber:  fmt.Sprintf("+7900%07d", phoneSeq),
		IsSuperuser:  superuser,
		IsActive:     true,
	}
	u.ID = id.MustGenerate(id.PrefixUser)
	u.InitTimestamps()
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return &domain.Viewer{SessionID: id.MustGenerate(id.PrefixSession), User: u}
}

func bookForm(name string) BookForm {
	return BookForm{
		Name:            name,
		Author:          "Лев Толстой",
		Description:     "Роман-эпопея о войне 1812 года.",
		Publication:     "Эксмо",
		PublicationYear: "1869",
		Quantity:        "2",
		Price:           "499.90",
	}
}

// book lists a book for seller and optionally approves it with moderator.
func (e *testEnv) book(t *testing.T, seller *domain.Viewer, name string, approveBy *domain.Viewer) *domain.Book {
	t.Helper()
	b, err := e.books.Create(context.Background(), seller, bookForm(name))
	require.NoError(t, err)
	if approveBy != nil {
		b, err = e.books.SetVerified(context.Background(), approveBy, b.ID, boolPtr(true))
		require.NoError(t, err)
	}
	return b
}

func boolPtr(b bool) *bool { return &b }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		for y := range 8 {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
