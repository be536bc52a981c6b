package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
)

func TestGuards(t *testing.T) {
	seller := &domain.Viewer{User: &domain.User{Record: domain.Record{ID: "user-1"}}}
	admin := &domain.Viewer{User: &domain.User{Record: domain.Record{ID: "user-2"}, IsSuperuser: true}}

	tests := []struct {
		name   string
		err    error
		expect domainerrors.Code
	}{
		{"login anonymous", RequireLogin(nil), domainerrors.CodeUnauthorized},
		{"login user", RequireLogin(seller), ""},
		{"superuser anonymous", RequireSuperuser(nil), domainerrors.CodeUnauthorized},
		{"superuser regular", RequireSuperuser(seller), domainerrors.CodeForbidden},
		{"superuser admin", RequireSuperuser(admin), ""},
		{"owner anonymous", RequireOwnership(nil, "user-1", i18n.MsgEditBookForbidden), domainerrors.CodeUnauthorized},
		{"owner match", RequireOwnership(seller, "user-1", i18n.MsgEditBookForbidden), ""},
		{"owner mismatch", RequireOwnership(admin, "user-1", i18n.MsgEditBookForbidden), domainerrors.CodeForbidden},
		{"owner of anonymous content", RequireOwnership(seller, "", i18n.MsgEditCommentForbidden), domainerrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.expect == "" {
				assert.NoError(t, tt.err)
				return
			}
			assert.Equal(t, tt.expect, domainerrors.CodeOf(tt.err))
		})
	}

	err := RequireOwnership(admin, "user-1", i18n.MsgDeleteBookForbidden)
	assert.Equal(t, i18n.MsgDeleteBookForbidden, domainerrors.Message(err))
}

func TestAll_StopsAtFirstFailure(t *testing.T) {
	calls := 0
	counting := func(*domain.Viewer) error { calls++; return nil }

	guard := All(RequireLogin, counting)
	assert.Equal(t, domainerrors.CodeUnauthorized, domainerrors.CodeOf(guard(nil)))
	assert.Zero(t, calls)

	named := RequireRole(func(u *domain.User) bool { return u.Username == "moderator" }, i18n.MsgForbidden)
	assert.NoError(t, All(counting, named)(&domain.Viewer{User: &domain.User{Username: "moderator"}}))
	assert.Equal(t, 1, calls)
}
