// Package service holds the marketplace business logic: accounts and
// sessions, the book catalog, comments, genres and moderation.
//
// Every operation takes the request's *domain.Viewer explicitly; a nil
// viewer is an anonymous visitor. Errors are domain errors from
// internal/errors whose messages are i18n keys.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bookbazaar/bookbazaar-server/internal/auth"
	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/id"
	"github.com/bookbazaar/bookbazaar-server/internal/media/images"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
	"github.com/bookbazaar/bookbazaar-server/internal/validation"
)

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Username    string `form:"username" validate:"required,max=150,username"`
	Password1   string `form:"password1" validate:"required,min=8,max=1024"`
	Password2   string `form:"password2" validate:"required,eqfield=Password1"`
	Email       string `form:"email" validate:"omitempty,email,max=254"`
	FirstName   string `form:"first_name" validate:"max=150"`
	LastName    string `form:"last_name" validate:"max=150"`
	FatherName  string `form:"father_name" validate:"max=50"`
	PhoneNumber string `form:"phone_number" validate:"required,e164"`

	// Avatar is an optional image upload.
	Avatar io.Reader `form:"-"`
}

func (r *RegisterRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.FatherName = strings.TrimSpace(r.FatherName)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
}

// LoginRequest is the sign-in form.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// AuthResult is a signed-in user with the session and cookie token.
type AuthResult struct {
	User    *domain.User
	Session *domain.Session
	Token   string
}

// AuthService handles registration, login and logout.
type AuthService struct {
	store     store.Store
	sessions  *SessionService
	images    *images.Processor
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new auth service. images may be nil, in which
// case avatar uploads are ignored.
func NewAuthService(store store.Store, sessions *SessionService, images *images.Processor, validator *validation.Validator, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthService{
		store:     store,
		sessions:  sessions,
		images:    images,
		validator: validator,
		logger:    logger,
	}
}

// Register creates an account and its first session in one transaction,
// so a failure leaves neither behind.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, client ClientInfo) (*AuthResult, error) {
	req.normalize()
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	fields := make(map[string]string)
	if _, err := s.store.GetUserByUsername(ctx, req.Username); err == nil {
		fields["username"] = i18n.MsgUsernameTaken
	} else if !domainerrors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Wrap(err, "failed to check username")
	}
	if _, err := s.store.GetUserByPhone(ctx, req.PhoneNumber); err == nil {
		fields["phone_number"] = i18n.MsgPhoneTaken
	} else if !domainerrors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Wrap(err, "failed to check phone number")
	}
	if len(fields) > 0 {
		return nil, domainerrors.ValidationWithDetails("validation failed", fields)
	}

	hash, err := auth.HashPassword(req.Password1)
	if err != nil {
		return nil, domainerrors.Wrap(err, "failed to hash password")
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		FatherName:   req.FatherName,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		IsActive:     true,
	}
	user.ID = id.MustGenerate(id.PrefixUser)
	user.InitTimestamps()
	loginAt := user.CreatedAt
	user.LastLoginAt = &loginAt

	if req.Avatar != nil && s.images != nil {
		stored, err := s.images.Store(ctx, images.KindAvatar, req.Avatar)
		if err != nil {
			return nil, imageError("avatar_image", err)
		}
		user.AvatarImage = stored.Ref
	}

	session, err := s.sessions.build(user.ID, client)
	if err != nil {
		s.discardImage(user.AvatarImage)
		return nil, domainerrors.Wrap(err, "failed to create session")
	}

	if err := s.store.CreateUserWithSession(ctx, user, session); err != nil {
		s.discardImage(user.AvatarImage)
		return nil, registrationError(err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	return &AuthResult{User: user, Session: session, Token: s.sessions.Token(session)}, nil
}

// registrationError maps a unique-constraint race at insert time to the
// same field errors the pre-checks produce.
func registrationError(err error) error {
	var serr *store.Error
	if domainerrors.As(err, &serr) && domainerrors.Is(err, store.ErrAlreadyExists) {
		switch serr.Field {
		case "username":
			return domainerrors.FieldError("username", i18n.MsgUsernameTaken)
		case "phone_number":
			return domainerrors.FieldError("phone_number", i18n.MsgPhoneTaken)
		}
	}
	return domainerrors.Wrap(err, "failed to create user")
}

// Login checks credentials and opens a new session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, client ClientInfo) (*AuthResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			// Same cost as a real comparison, so timing does not reveal accounts.
			auth.BurnVerify(req.Password)
			return nil, domainerrors.InvalidCredentials(i18n.MsgInvalidCredentials)
		}
		return nil, domainerrors.Wrap(err, "failed to look up user")
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) || !user.IsActive {
		return nil, domainerrors.InvalidCredentials(i18n.MsgInvalidCredentials)
	}

	if _, err := s.sessions.PurgeExpired(ctx); err != nil {
		s.logger.Warn("failed to purge expired sessions", "error", err)
	}

	session, token, err := s.sessions.Issue(ctx, user.ID, client)
	if err != nil {
		return nil, domainerrors.Wrap(err, "failed to create session")
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &AuthResult{User: user, Session: session, Token: token}, nil
}

// Logout ends the viewer's session. Anonymous viewers are a no-op.
func (s *AuthService) Logout(ctx context.Context, v *domain.Viewer) error {
	if v == nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, v.SessionID); err != nil {
		return domainerrors.Wrap(err, "failed to end session")
	}
	return nil
}

// EnsureSuperuser creates a moderator account, or promotes and re-keys an
// existing account with the same username.
func (s *AuthService) EnsureSuperuser(ctx context.Context, username, password, phone, email string) (*domain.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		user.PasswordHash = hash
		user.IsSuperuser = true
		user.IsActive = true
		user.Touch()
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("promote %s: %w", username, err)
		}
		return user, nil
	case !domainerrors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("look up %s: %w", username, err)
	}

	user = &domain.User{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		PhoneNumber:  phone,
		IsSuperuser:  true,
		IsActive:     true,
	}
	user.ID = id.MustGenerate(id.PrefixUser)
	user.InitTimestamps()
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create %s: %w", username, err)
	}
	return user, nil
}

func (s *AuthService) discardImage(ref string) {
	if ref == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ref); err != nil {
		s.logger.Warn("failed to remove orphaned image", "ref", ref, "error", err)
	}
}
