package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/ratelimit"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

func registration(username, phone string) url.Values {
	return url.Values{
		"username":     {username},
		"password1":    {"master-and-margarita"},
		"password2":    {"master-and-margarita"},
		"email":        {username + "@example.com"},
		"first_name":   {"Михаил"},
		"last_name":    {"Булгаков"},
		"father_name":  {"Афанасьевич"},
		"phone_number": {phone},
	}
}

func TestRegisterSignsIn(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.postMultipart(t, "/users/registration/", registration("mbulgakov", "+79010000001"), "avatar_image", pngBytes(t))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/books/", rec.Header().Get("Location"))

	cookie := responseCookie(rec, DefaultCookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	rec = ts.get("/users/profile/", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	page := ts.renderer.last(t)
	assert.Equal(t, "users/profile.html", page.Name)
	require.NotNil(t, page.Data.Viewer)
	assert.Equal(t, "mbulgakov", page.Data.Viewer.User.Username)
	assert.NotEmpty(t, page.Data.Viewer.User.AvatarImage)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.postForm("/users/registration/", registration("mbulgakov", "+79010000001"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = ts.postForm("/users/registration/", registration("mbulgakov", "+79010000001"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Nil(t, responseCookie(rec, DefaultCookieName))

	page := ts.renderer.last(t)
	assert.Equal(t, "users/register.html", page.Name)
	assert.Equal(t, i18n.MsgUsernameTaken, page.Data.Errors["username"])
	assert.Equal(t, i18n.MsgPhoneTaken, page.Data.Errors["phone_number"])

	form := page.Data.Form.(service.RegisterRequest)
	assert.Equal(t, "mbulgakov", form.Username)
	assert.Empty(t, form.Password1, "passwords are never echoed")
	assert.Empty(t, form.Password2)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	ts := newTestServer(t)
	values := registration("mbulgakov", "+79010000001")
	values.Set("password2", "something-else")

	rec := ts.postForm("/users/registration/", values)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, ts.renderer.last(t).Data.Errors, "password2")
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.user(t, "reader", false)

	tests := []struct {
		name     string
		path     string
		values   url.Values
		wantCode int
		wantNext string
	}{
		{
			name:     "wrong password",
			path:     "/users/login/",
			values:   url.Values{"username": {"reader"}, "password": {"wrong"}},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "unknown user",
			path:     "/users/login/",
			values:   url.Values{"username": {"nobody"}, "password": {"correct horse battery"}},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "default target",
			path:     "/users/login/",
			values:   url.Values{"username": {"reader"}, "password": {"correct horse battery"}},
			wantCode: http.StatusSeeOther,
			wantNext: "/books/",
		},
		{
			name:     "next from query",
			path:     "/users/login/?next=" + url.QueryEscape("/users/profile/"),
			values:   url.Values{"username": {"reader"}, "password": {"correct horse battery"}},
			wantCode: http.StatusSeeOther,
			wantNext: "/users/profile/",
		},
		{
			name:     "posted next wins",
			path:     "/users/login/?next=" + url.QueryEscape("/users/profile/"),
			values:   url.Values{"username": {"reader"}, "password": {"correct horse battery"}, "next": {"/books/add/"}},
			wantCode: http.StatusSeeOther,
			wantNext: "/books/add/",
		},
		{
			name:     "offsite next ignored",
			path:     "/users/login/?next=" + url.QueryEscape("//evil.example.com/"),
			values:   url.Values{"username": {"reader"}, "password": {"correct horse battery"}},
			wantCode: http.StatusSeeOther,
			wantNext: "/books/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.postForm(tt.path, tt.values)
			require.Equal(t, tt.wantCode, rec.Code)

			if tt.wantNext == "" {
				page := ts.renderer.last(t)
				assert.Equal(t, "users/login.html", page.Name)
				assert.Equal(t, i18n.MsgInvalidCredentials, page.Data.Message)
				assert.Empty(t, page.Data.Form.(service.LoginRequest).Password)
				assert.Nil(t, responseCookie(rec, DefaultCookieName))
				return
			}
			assert.Equal(t, tt.wantNext, rec.Header().Get("Location"))
			assert.NotNil(t, responseCookie(rec, DefaultCookieName))
		})
	}
}

func TestLoginValidation(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.postForm("/users/login/", url.Values{"username": {""}, "password": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := ts.renderer.last(t).Data.Errors
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")
}

func TestLoginFormCarriesNext(t *testing.T) {
	ts := newTestServer(t)
	ts.get("/users/login/?next=" + url.QueryEscape("/books/add/"))
	assert.Equal(t, "/books/add/", ts.renderer.last(t).Data.Data.(loginView).Next)
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	_, cookie := ts.user(t, "reader", false)

	require.Equal(t, http.StatusOK, ts.get("/users/profile/", cookie).Code)

	rec := ts.postForm("/users/logout/", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/books/", rec.Header().Get("Location"))
	cleared := responseCookie(rec, DefaultCookieName)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)

	// The old token no longer resolves to a session.
	rec = ts.get("/users/profile/", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	// Logging out anonymously is harmless.
	assert.Equal(t, http.StatusSeeOther, ts.get("/users/logout/").Code)
}

func TestProfileRequiresLogin(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.get("/users/profile/")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/login/?next=%2Fusers%2Fprofile%2F", rec.Header().Get("Location"))
}

func TestProfileListsOwnBooks(t *testing.T) {
	ts := newTestServer(t)
	seller, cookie := ts.user(t, "seller", false)
	other, _ := ts.user(t, "other", false)
	ts.book(t, seller, "Черновик", nil)
	ts.book(t, other, "Чужая книга", nil)

	require.Equal(t, http.StatusOK, ts.get("/users/profile/", cookie).Code)
	page := ts.renderer.last(t).Data.Data.(*store.Page[*domain.Book])
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Черновик", page.Items[0].Name)
}

func TestAdminDashboard(t *testing.T) {
	ts := newTestServer(t)
	seller, sellerCookie := ts.user(t, "seller", false)
	_, modCookie := ts.user(t, "moderator", true)
	ts.book(t, seller, "На модерации", nil)

	rec := ts.get("/users/admin_dashboard/", sellerCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, i18n.MsgForbidden, ts.renderer.last(t).Data.Message)

	rec = ts.get("/users/admin_dashboard/")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = ts.get("/users/admin_dashboard/", modCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	dashboard := ts.renderer.last(t).Data.Data.(*service.Dashboard)
	require.Len(t, dashboard.Books, 1)
	assert.Equal(t, "На модерации", dashboard.Books[0].Name)
}

func TestAuthRateLimit(t *testing.T) {
	limiter := ratelimit.PerMinute(1, 1)
	t.Cleanup(limiter.Stop)
	ts := newTestServer(t, withAuthLimiter(limiter))

	values := url.Values{"username": {"nobody"}, "password": {"wrong"}}
	rec := ts.postForm("/users/login/", values)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.postForm("/users/login/", values)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, i18n.MsgTooManyAttempts, ts.renderer.last(t).Data.Message)

	// Page views are never throttled.
	assert.Equal(t, http.StatusOK, ts.get("/users/login/").Code)
}
