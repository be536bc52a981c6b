package service

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/id"
	"github.com/bookbazaar/bookbazaar-server/internal/media/images"
	"github.com/bookbazaar/bookbazaar-server/internal/richtext"
	"github.com/bookbazaar/bookbazaar-server/internal/search"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
	"github.com/bookbazaar/bookbazaar-server/internal/validation"
)

// BookForm is the add/edit listing form. Numeric fields arrive as text and
// are parsed after validation.
type BookForm struct {
	Name            string   `form:"name" validate:"required,max=200"`
	Author          string   `form:"author" validate:"required,max=100"`
	GenreIDs        []string `form:"genres" validate:"dive,required"`
	Description     string   `form:"description" validate:"required,max=500"`
	Publication     string   `form:"publication" validate:"required,max=100"`
	PublicationYear string   `form:"publication_year" validate:"required,year4"`
	Quantity        string   `form:"quantity" validate:"omitempty,number,max=9"`
	Price           string   `form:"price" validate:"required,price"`

	// Image replaces the current image when set. ClearImage removes it.
	Image      io.Reader `form:"-"`
	ClearImage bool      `form:"image-clear"`
}

func (f *BookForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Author = strings.TrimSpace(f.Author)
	f.Description = richtext.ToMarkdown(f.Description)
	f.Publication = strings.TrimSpace(f.Publication)
	f.PublicationYear = strings.TrimSpace(f.PublicationYear)
	f.Quantity = strings.TrimSpace(f.Quantity)
	f.Price = strings.TrimSpace(f.Price)

	seen := make(map[string]bool, len(f.GenreIDs))
	genres := f.GenreIDs[:0:0]
	for _, g := range f.GenreIDs {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		genres = append(genres, g)
	}
	f.GenreIDs = genres
}

// FormFromBook pre-fills the edit form.
func FormFromBook(b *domain.Book) BookForm {
	return BookForm{
		Name:            b.Name,
		Author:          b.Author,
		GenreIDs:        b.GenreIDs(),
		Description:     b.Description,
		Publication:     b.Publication,
		PublicationYear: b.PublicationYear,
		Quantity:        strconv.Itoa(b.Quantity),
		Price:           b.Price.String(),
	}
}

// BookDetail is a book with its public comments.
type BookDetail struct {
	Book     *domain.Book
	Comments []*domain.Comment
}

// BookService manages listings: the public catalog, seller edits and
// moderation.
type BookService struct {
	store     store.Store
	images    *images.Processor
	index     *search.SearchIndex
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service. index may be nil, which
// disables search.
func NewBookService(store store.Store, images *images.Processor, index *search.SearchIndex, validator *validation.Validator, logger *slog.Logger) *BookService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BookService{
		store:     store,
		images:    images,
		index:     index,
		validator: validator,
		logger:    logger,
	}
}

// List returns a page of verified books, newest first. A page past the end
// is empty, not an error.
func (s *BookService) List(ctx context.Context, page int) (*store.Page[*domain.Book], error) {
	result, err := s.store.ListBooks(ctx,
		store.BookFilter{Verified: store.Bool(true)},
		store.PageParams{Page: page, PageSize: store.DefaultPageSize},
	)
	if err != nil {
		return nil, domainerrors.Wrap(err, "failed to list books")
	}
	return result, nil
}

// ListBySeller returns every listing of the viewer, verified or not.
func (s *BookService) ListBySeller(ctx context.Context, v *domain.Viewer, page int) (*store.Page[*domain.Book], error) {
	if err := RequireLogin(v); err != nil {
		return nil, err
	}
	result, err := s.store.ListBooks(ctx,
		store.BookFilter{SellerID: v.UserID()},
		store.PageParams{Page: page, PageSize: store.DefaultPageSize},
	)
	if err != nil {
		return nil, domainerrors.Wrap(err, "failed to list seller books")
	}
	return result, nil
}

// Get returns a book with its verified comments. Unverified books are
// NOT_FOUND for everyone but the seller and moderators. Unverified comments
// are never included, whoever is asking.
func (s *BookService) Get(ctx context.Context, v *domain.Viewer, bookID string) (*BookDetail, error) {
	book, err := s.visibleBook(ctx, v, bookID)
	if err != nil {
		return nil, err
	}

	comments, err := s.store.ListComments(ctx, store.CommentFilter{BookID: book.ID, Verified: store.Bool(true)})
	if err != nil {
		return nil, domainerrors.Wrap(err, "failed to list comments")
	}

	return &BookDetail{Book: book, Comments: comments}, nil
}

func (s *BookService) visibleBook(ctx context.Context, v *domain.Viewer, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFoundOr(err, i18n.MsgBookNotFound, "failed to load book")
	}
	if !book.VisibleTo(v) {
		return nil, domainerrors.NotFound(i18n.MsgBookNotFound)
	}
	return book, nil
}

// GetForEdit loads a book the viewer may edit.
func (s *BookService) GetForEdit(ctx context.Context, v *domain.Viewer, bookID string) (*domain.Book, error) {
	return s.ownedBook(ctx, v, bookID, i18n.MsgEditBookForbidden)
}

// GetForDelete loads a book the viewer may delete.
func (s *BookService) GetForDelete(ctx context.Context, v *domain.Viewer, bookID string) (*domain.Book, error) {
	return s.ownedBook(ctx, v, bookID, i18n.MsgDeleteBookForbidden)
}

// ownedBook checks login, existence and ownership, in that order.
func (s *BookService) ownedBook(ctx context.Context, v *domain.Viewer, bookID, forbidden string) (*domain.Book, error) {
	if err := RequireLogin(v); err != nil {
		return nil, err
	}
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFoundOr(err, i18n.MsgBookNotFound, "failed to load book")
	}
	if err := RequireOwnership(v, book.SellerID, forbidden); err != nil {
		return nil, err
	}
	return book, nil
}

// bookFields is a validated form with parsed values.
type bookFields struct {
	form     BookForm
	genres   []domain.Genre
	quantity int
	price    domain.Price
}

func (s *BookService) validate(ctx context.Context, form BookForm) (*bookFields, error) {
	form.normalize()
	if err := s.validator.Validate(&form); err != nil {
		return nil, err
	}

	fields := &bookFields{form: form}

	if form.Quantity != "" {
		q, err := strconv.Atoi(form.Quantity)
		if err != nil {
			return nil, domainerrors.FieldError("quantity", "Enter a whole number.")
		}
		fields.quantity = q
	}

	price, err := domain.ParsePrice(form.Price)
	if err != nil {
		return nil, domainerrors.FieldError("price", "Enter a number.")
	}
	fields.price = price

	if len(form.GenreIDs) > 0 {
		genres, err := s.store.GetGenresByIDs(ctx, form.GenreIDs)
		if err != nil {
			return nil, domainerrors.Wrap(err, "failed to load genres")
		}
		if len(genres) != len(form.GenreIDs) {
			return nil, domainerrors.FieldError("genres", i18n.MsgUnknownGenre)
		}
		fields.genres = genres
	}

	return fields, nil
}

func (f *bookFields) apply(b *domain.Book) {
	b.Name = f.form.Name
	b.Author = f.form.Author
	b.Genres = f.genres
	b.Description = f.form.Description
	b.Publication = f.form.Publication
	b.PublicationYear = f.form.PublicationYear
	b.Quantity = f.quantity
	b.Price = f.price
}

// Create lists a new book for the viewer. New listings start unverified.
func (s *BookService) Create(ctx context.Context, v *domain.Viewer, form BookForm) (*domain.Book, error) {
	if err := RequireLogin(v); err != nil {
		return nil, err
	}

	fields, err := s.validate(ctx, form)
	if err != nil {
		return nil, err
	}

	book := &domain.Book{SellerID: v.UserID()}
	fields.apply(book)
	book.ID = id.MustGenerate(id.PrefixBook)
	book.InitTimestamps()

	if form.Image != nil {
		stored, err := s.images.Store(ctx, images.KindBook, form.Image)
		if err != nil {
			return nil, imageError("image", err)
		}
		book.Image = stored.Ref
		book.ImageBlurHash = stored.BlurHash
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		s.removeImage(book.Image, book.ID)
		return nil, domainerrors.Wrap(err, "failed to create book")
	}

	s.logger.Info("book created", "book_id", book.ID, "seller_id", book.SellerID)
	return book, nil
}

// Edit replaces the editable fields of the viewer's book. Verification,
// seller and creation time are kept. A replaced or cleared image is removed
// after the row is saved.
func (s *BookService) Edit(ctx context.Context, v *domain.Viewer, bookID string, form BookForm) (*domain.Book, error) {
	book, err := s.GetForEdit(ctx, v, bookID)
	if err != nil {
		return nil, err
	}

	fields, err := s.validate(ctx, form)
	if err != nil {
		return nil, err
	}
	fields.apply(book)
	book.Touch()

	oldImage := book.Image
	switch {
	case form.Image != nil:
		stored, err := s.images.Store(ctx, images.KindBook, form.Image)
		if err != nil {
			return nil, imageError("image", err)
		}
		book.Image = stored.Ref
		book.ImageBlurHash = stored.BlurHash
	case form.ClearImage:
		book.Image = ""
		book.ImageBlurHash = ""
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		if book.Image != oldImage {
			s.removeImage(book.Image, book.ID)
		}
		return nil, notFoundOr(err, i18n.MsgBookNotFound, "failed to update book")
	}
	if book.Image != oldImage {
		s.removeImage(oldImage, book.ID)
	}

	if book.IsVerified {
		s.indexBook(book)
	}

	s.logger.Info("book updated", "book_id", book.ID)
	return book, nil
}

// Delete removes the viewer's book. The image goes first and a failure
// there is only logged; the row delete cascades to comments and genre links.
func (s *BookService) Delete(ctx context.Context, v *domain.Viewer, bookID string) error {
	book, err := s.GetForDelete(ctx, v, bookID)
	if err != nil {
		return err
	}

	s.removeImage(book.Image, book.ID)

	if err := s.store.DeleteBook(ctx, book.ID); err != nil {
		return notFoundOr(err, i18n.MsgBookNotFound, "failed to delete book")
	}

	s.unindexBook(book.ID)

	s.logger.Info("book deleted", "book_id", book.ID, "seller_id", book.SellerID)
	return nil
}

// SetVerified sets the moderation flag, or toggles it when verified is nil.
// Setting the current value succeeds without writing.
func (s *BookService) SetVerified(ctx context.Context, v *domain.Viewer, bookID string, verified *bool) (*domain.Book, error) {
	if err := RequireSuperuser(v); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFoundOr(err, i18n.MsgBookNotFound, "failed to load book")
	}

	target := !book.IsVerified
	if verified != nil {
		target = *verified
	}
	if target == book.IsVerified {
		return book, nil
	}

	if err := s.store.SetBookVerified(ctx, book.ID, target); err != nil {
		return nil, notFoundOr(err, i18n.MsgBookNotFound, "failed to update book")
	}
	book.IsVerified = target

	if target {
		s.indexBook(book)
	} else {
		s.unindexBook(book.ID)
	}

	s.logger.Info("book verification changed", "book_id", book.ID, "is_verified", target, "moderator_id", v.UserID())
	return book, nil
}

// ListUnverified returns books waiting for moderation, newest first.
func (s *BookService) ListUnverified(ctx context.Context, v *domain.Viewer) ([]*domain.Book, error) {
	if err := RequireSuperuser(v); err != nil {
		return nil, err
	}
	var books []*domain.Book
	err := s.eachBook(ctx, store.BookFilter{Verified: store.Bool(false)}, func(page []*domain.Book) error {
		books = append(books, page...)
		return nil
	})
	if err != nil {
		return nil, domainerrors.Wrap(err, "failed to list unverified books")
	}
	return books, nil
}

// eachBook walks every book matching filter in pages of 100.
func (s *BookService) eachBook(ctx context.Context, filter store.BookFilter, fn func([]*domain.Book) error) error {
	for page := 1; ; page++ {
		result, err := s.store.ListBooks(ctx, filter, store.PageParams{Page: page, PageSize: 100})
		if err != nil {
			return err
		}
		if len(result.Items) == 0 {
			return nil
		}
		if err := fn(result.Items); err != nil {
			return err
		}
		if !result.HasNext() {
			return nil
		}
	}
}

func (s *BookService) removeImage(ref, bookID string) {
	if ref == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ref); err != nil {
		s.logger.Warn("failed to delete book image", "book_id", bookID, "ref", ref, "error", err)
	}
}
