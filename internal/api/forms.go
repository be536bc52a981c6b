package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/form/v4"

	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/media/images"
)

const (
	// maxRequestBody leaves room for the text fields next to one upload.
	maxRequestBody = images.MaxUploadSize + 1<<20
	maxFormMemory  = 8 << 20
)

// parseForm reads a url-encoded or multipart body. Only uploads can push a
// body past the limit, so an oversized body is reported on uploadField.
func parseForm(w http.ResponseWriter, r *http.Request, uploadField string) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		if uploadField == "" {
			return domainerrors.Validation("The request is too large.")
		}
		return domainerrors.FieldError(uploadField, i18n.MsgImageTooLarge)
	}
	return domainerrors.Validation("The form could not be read.")
}

// uploadedFile returns the file posted as field, or nil when none was sent.
// The caller closes the returned file.
func uploadedFile(r *http.Request, field string) (multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, domainerrors.FieldError(field, i18n.MsgImageInvalid)
	}
	if header.Size == 0 {
		file.Close()
		return nil, nil
	}
	return file, nil
}

func closeUpload(f io.Closer) {
	if f != nil {
		_ = f.Close()
	}
}

var formDecoder = form.NewDecoder()

// decodeForm parses the body and decodes it into dst by its form tags.
func decodeForm(w http.ResponseWriter, r *http.Request, uploadField string, dst any) error {
	if err := parseForm(w, r, uploadField); err != nil {
		return err
	}
	return bindForm(r.PostForm, dst)
}

// bindForm reports values that do not fit their field as field errors.
// Keys without a matching field are ignored.
func bindForm(values url.Values, dst any) error {
	err := formDecoder.Decode(dst, values)
	if err == nil {
		return nil
	}
	var decodeErrs form.DecodeErrors
	if !errors.As(err, &decodeErrs) {
		return domainerrors.Validation("The form could not be read.")
	}
	fields := make(map[string]string, len(decodeErrs))
	for field := range decodeErrs {
		fields[field] = "Enter a valid value."
	}
	return domainerrors.ValidationWithDetails("The form could not be read.", fields)
}

// pageParam reads ?page=, defaulting to 1 for anything unusable.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// safeNext accepts only local absolute paths as a post-login target.
func safeNext(raw string) string {
	const fallback = "/books/"
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.ContainsRune(raw, '\\') {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return raw
}

func bookURL(bookID string) string {
	return "/books/" + url.PathEscape(bookID) + "/"
}
