package service

import (
	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/media/images"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

// notFoundOr maps store.ErrNotFound to a NOT_FOUND error with msg and
// anything else to an internal error.
func notFoundOr(err error, msg, op string) error {
	if domainerrors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg)
	}
	return domainerrors.Wrap(err, op)
}

// imageError reports upload problems on the form field that carried the file.
func imageError(field string, err error) error {
	switch {
	case domainerrors.Is(err, images.ErrTooLarge):
		return domainerrors.FieldError(field, i18n.MsgImageTooLarge)
	case domainerrors.Is(err, images.ErrNotImage):
		return domainerrors.FieldError(field, i18n.MsgImageInvalid)
	default:
		return domainerrors.Wrap(err, "failed to store image")
	}
}
