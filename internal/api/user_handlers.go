package api

import (
	"net/http"

	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	s.router.Get("/users/registration/", s.handleRegisterForm)
	s.router.With(s.rateLimitAuth).Post("/users/registration/", s.handleRegister)
	s.router.Get("/users/login/", s.handleLoginForm)
	s.router.With(s.rateLimitAuth).Post("/users/login/", s.handleLogin)
	s.router.Get("/users/logout/", s.handleLogout)
	s.router.Post("/users/logout/", s.handleLogout)

	s.router.With(s.guard(service.RequireLogin)).Get("/users/profile/", s.handleProfile)
	s.router.With(s.guard(moderatorOnly)).Get("/users/admin_dashboard/", s.handleAdminDashboard)
}

// loginView is the data behind users/login.html.
type loginView struct {
	Next string
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.renderRegisterForm(w, r, service.RegisterRequest{}, nil)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req service.RegisterRequest
	if err := decodeForm(w, r, "avatar_image", &req); err != nil {
		s.renderRegisterForm(w, r, req, err)
		return
	}

	avatar, err := uploadedFile(r, "avatar_image")
	if err != nil {
		s.renderRegisterForm(w, r, req, err)
		return
	}
	defer closeUpload(avatar)
	req.Avatar = avatar

	result, err := s.services.Auth.Register(ctx, req, clientInfo(r))
	if err != nil {
		s.renderRegisterForm(w, r, req, err)
		return
	}

	s.setSessionCookie(w, result.Token, result.Session.ExpiresAt)
	http.Redirect(w, r, "/books/", http.StatusSeeOther)
}

func (s *Server) renderRegisterForm(w http.ResponseWriter, r *http.Request, req service.RegisterRequest, err error) {
	if err != nil && domainerrors.CodeOf(err) != domainerrors.CodeValidation {
		s.renderError(w, r, err)
		return
	}

	req.Password1, req.Password2, req.Avatar = "", "", nil
	data := &PageData{Title: "Registration", Form: req}
	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
		data.Errors = domainerrors.FieldErrors(err)
		if len(data.Errors) == 0 {
			data.Message = domainerrors.Message(err)
		}
	}
	s.render(w, r, status, "users/register.html", data)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "users/login.html", &PageData{
		Title: "Log in",
		Form:  service.LoginRequest{},
		Data:  loginView{Next: safeNext(r.URL.Query().Get("next"))},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	next := safeNext(r.URL.Query().Get("next"))

	var req service.LoginRequest
	err := decodeForm(w, r, "", &req)
	if err == nil {
		if posted := r.PostFormValue("next"); posted != "" {
			next = safeNext(posted)
		}
		var result *service.AuthResult
		result, err = s.services.Auth.Login(ctx, req, clientInfo(r))
		if err == nil {
			s.setSessionCookie(w, result.Token, result.Session.ExpiresAt)
			http.Redirect(w, r, next, http.StatusSeeOther)
			return
		}
	}

	switch domainerrors.CodeOf(err) {
	case domainerrors.CodeValidation, domainerrors.CodeInvalidCredentials:
	default:
		s.renderError(w, r, err)
		return
	}

	req.Password = ""
	data := &PageData{
		Title:  "Log in",
		Form:   req,
		Errors: domainerrors.FieldErrors(err),
		Data:   loginView{Next: next},
	}
	if len(data.Errors) == 0 {
		data.Message = domainerrors.Message(err)
	}
	s.render(w, r, domainerrors.CodeOf(err).HTTPStatus(), "users/login.html", data)
}

// handleLogout ends the session. It accepts GET so a plain link works.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.services.Auth.Logout(ctx, ViewerFrom(ctx)); err != nil {
		s.logger.Error("logout failed", "error", err)
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/books/", http.StatusSeeOther)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := s.services.Books.ListBySeller(ctx, ViewerFrom(ctx), pageParam(r))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "users/profile.html", &PageData{Title: "Profile", Data: page})
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dashboard, err := s.services.Admin.Dashboard(ctx, ViewerFrom(ctx))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "users/dashboard.html", &PageData{Title: "Moderation", Data: dashboard})
}
