package service

import (
	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
)

// Guard checks whether a viewer may proceed. Guards compose with All and
// are evaluated before any load or mutation that depends on them.
type Guard func(v *domain.Viewer) error

// RequireLogin fails with UNAUTHORIZED for anonymous viewers.
func RequireLogin(v *domain.Viewer) error {
	if !v.IsAuthenticated() {
		return domainerrors.Unauthorized(i18n.MsgLoginRequired)
	}
	return nil
}

// RequireRole returns a guard that requires a signed-in user satisfying pred.
// msg is the FORBIDDEN message reported when pred fails.
func RequireRole(pred func(*domain.User) bool, msg string) Guard {
	return func(v *domain.Viewer) error {
		if err := RequireLogin(v); err != nil {
			return err
		}
		if !pred(v.User) {
			return domainerrors.Forbidden(msg)
		}
		return nil
	}
}

// RequireSuperuser is RequireRole for moderators.
func RequireSuperuser(v *domain.Viewer) error {
	return RequireRole(func(u *domain.User) bool { return u.IsSuperuser }, i18n.MsgSuperuserRequired)(v)
}

// RequireOwnership fails unless the viewer is the user identified by ownerID.
// Anonymous content (empty ownerID) is owned by nobody.
func RequireOwnership(v *domain.Viewer, ownerID, msg string) error {
	if err := RequireLogin(v); err != nil {
		return err
	}
	if !v.Owns(ownerID) {
		return domainerrors.Forbidden(msg)
	}
	return nil
}

// All runs guards in order and returns the first failure.
func All(guards ...Guard) Guard {
	return func(v *domain.Viewer) error {
		for _, g := range guards {
			if err := g(v); err != nil {
				return err
			}
		}
		return nil
	}
}
