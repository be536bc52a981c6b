package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

func (ts *testServer) comments(t *testing.T, bookID string) []*domain.Comment {
	t.Helper()
	comments, err := ts.store.ListComments(context.Background(), store.CommentFilter{BookID: bookID})
	require.NoError(t, err)
	return comments
}

// An anonymous comment with empty text is not stored. The visitor is still
// redirected to the book, and the errors come back on the next page view.
func TestAnonymousEmptyCommentIsRejectedWithRedirect(t *testing.T) {
	ts := newTestServer(t)
	seller, _ := ts.user(t, "seller", false)
	moderator, _ := ts.user(t, "moderator", true)
	book := ts.book(t, seller, "Мастер и Маргарита", moderator)

	rec := ts.postForm(bookURL(book.ID)+"comments/add/", url.Values{
		"email": {"reader@example.com"},
		"text":  {""},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, bookURL(book.ID), rec.Header().Get("Location"))
	assert.Empty(t, ts.comments(t, book.ID), "invalid comment must not be persisted")

	flash := responseCookie(rec, flashCookieName)
	require.NotNil(t, flash)

	rec = ts.get(bookURL(book.ID), flash)
	require.Equal(t, http.StatusOK, rec.Code)
	page := ts.renderer.last(t)
	require.NotNil(t, page.Data.Flash)
	assert.Equal(t, i18n.MsgCommentRejected, page.Data.Flash.Message)
	assert.Equal(t, flashError, page.Data.Flash.Level)
	assert.Contains(t, page.Data.Errors, "text")
	assert.Equal(t, "reader@example.com", page.Data.Form.(service.CommentForm).Email, "input is echoed back")

	cleared := responseCookie(rec, flashCookieName)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge, "flash is shown once")
}

func TestForgedFlashIsIgnored(t *testing.T) {
	ts := newTestServer(t)
	seller, _ := ts.user(t, "seller", false)
	moderator, _ := ts.user(t, "moderator", true)
	book := ts.book(t, seller, "Мастер и Маргарита", moderator)

	payload, err := json.Marshal(Flash{Level: flashError, Message: "Your account is locked, call +70000000000"})
	require.NoError(t, err)
	forged := &http.Cookie{Name: flashCookieName, Value: base64.RawURLEncoding.EncodeToString(payload)}

	rec := ts.get(bookURL(book.ID), forged)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, ts.renderer.last(t).Data.Flash)
	cleared := responseCookie(rec, flashCookieName)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestAnonymousCommentWithoutEmail(t *testing.T) {
	ts := newTestServer(t)
	seller, _ := ts.user(t, "seller", false)
	moderator, _ := ts.user(t, "moderator", true)
	book := ts.book(t, seller, "Белая гвардия", moderator)

	rec := ts.postForm(bookURL(book.ID)+"comments/add/", url.Values{"text": {"Отличная книга"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, ts.comments(t, book.ID))
}

func TestAddComment(t *testing.T) {
	ts := newTestServer(t)
	seller, _ := ts.user(t, "seller", false)
	moderator, _ := ts.user(t, "moderator", true)
	reader, readerCookie := ts.user(t, "reader", false)
	book := ts.book(t, seller, "Бег", moderator)

	rec := ts.postForm(bookURL(book.ID)+"comments/add/", url.Values{
		"email": {"anon@example.com"},
		"text":  {"Анонимный отзыв"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = ts.postForm(bookURL(book.ID)+"comments/add/", url.Values{"text": {"Отзыв читателя"}}, readerCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	comments := ts.comments(t, book.ID)
	require.Len(t, comments, 2)
	byText := map[string]*domain.Comment{}
	for _, c := range comments {
		byText[c.Text] = c
		assert.False(t, c.IsVerified, "comments wait for moderation")
	}
	assert.True(t, byText["Анонимный отзыв"].IsAnonymous())
	assert.Equal(t, reader.UserID(), byText["Отзыв читателя"].AuthorID)
	assert.Equal(t, "reader@example.com", byText["Отзыв читателя"].Email)

	// Pending comments are not shown on the book page.
	ts.get(bookURL(book.ID))
	detail := ts.renderer.last(t).Data.Data.(bookDetailView)
	assert.Empty(t, detail.Comments)
}

func TestAddCommentToMissingBook(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.postForm("/books/book-missing/comments/add/", url.Values{
		"email": {"anon@example.com"},
		"text":  {"Где книга?"},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditComment(t *testing.T) {
	ts := newTestServer(t)
	seller, _ := ts.user(t, "seller", false)
	moderator, _ := ts.user(t, "moderator", true)
	reader, readerCookie := ts.user(t, "reader", false)
	_, otherCookie := ts.user(t, "other", false)
	book := ts.book(t, seller, "Театральный роман", moderator)

	comment, err := ts.services.Comments.Add(context.Background(), reader, book.ID, service.CommentForm{Text: "Первая версия"})
	require.NoError(t, err)
	editURL := bookURL(book.ID) + "comments/" + comment.ID + "/edit/"

	rec := ts.get(editURL, otherCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, i18n.MsgEditCommentForbidden, ts.renderer.last(t).Data.Message)

	rec = ts.get(editURL)
	assert.Equal(t, http.StatusSeeOther, rec.Code, "anonymous visitors are sent to log in")

	rec = ts.get(editURL, readerCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Первая версия", ts.renderer.last(t).Data.Form.(service.CommentForm).Text)

	rec = ts.postForm(editURL, url.Values{"text": {""}}, readerCookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, ts.renderer.last(t).Data.Errors, "text")

	rec = ts.postForm(editURL, url.Values{"text": {"Вторая версия"}}, readerCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, bookURL(book.ID), rec.Header().Get("Location"))

	stored, err := ts.store.GetComment(context.Background(), comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Вторая версия", stored.Text)
}

func TestDeleteComment(t *testing.T) {
	ts := newTestServer(t)
	seller, _ := ts.user(t, "seller", false)
	moderator, _ := ts.user(t, "moderator", true)
	reader, readerCookie := ts.user(t, "reader", false)
	_, otherCookie := ts.user(t, "other", false)
	book := ts.book(t, seller, "Жизнь господина де Мольера", moderator)

	comment, err := ts.services.Comments.Add(context.Background(), reader, book.ID, service.CommentForm{Text: "Удалю позже"})
	require.NoError(t, err)
	deleteURL := bookURL(book.ID) + "comments/" + comment.ID + "/delete/"

	rec := ts.postForm(deleteURL, nil, otherCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, i18n.MsgDeleteCommentForbidden, ts.renderer.last(t).Data.Message)
	assert.Len(t, ts.comments(t, book.ID), 1)

	rec = ts.postForm("/books/book-other/comments/"+comment.ID+"/delete/", nil, readerCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code, "comment must belong to the book in the path")

	rec = ts.postForm(deleteURL, nil, readerCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, bookURL(book.ID), rec.Header().Get("Location"))
	assert.Empty(t, ts.comments(t, book.ID))
}
