package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

const bookColumns = `b.id, b.created_at, b.updated_at, b.seller_id, b.name, b.author,
	b.description, b.publication, b.publication_year, b.quantity, b.price_cents,
	b.image, b.image_blurhash, b.is_verified`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b          domain.Book
		createdAt  string
		updatedAt  string
		priceCents int64
		image      sql.NullString
		blurHash   sql.NullString
		isVerified int
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.SellerID,
		&b.Name,
		&b.Author,
		&b.Description,
		&b.Publication,
		&b.PublicationYear,
		&b.Quantity,
		&priceCents,
		&image,
		&blurHash,
		&isVerified,
	)
	if err != nil {
		return nil, err
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	b.Price = domain.Price(priceCents)
	b.Image = image.String
	b.ImageBlurHash = blurHash.String
	b.IsVerified = isVerified != 0

	return &b, nil
}

// CreateBook inserts a book and its genre links in one transaction.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO books (
				id, created_at, updated_at, seller_id, name, author,
				description, publication, publication_year, quantity, price_cents,
				image, image_blurhash, is_verified
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			book.ID,
			formatTime(book.CreatedAt),
			formatTime(book.UpdatedAt),
			book.SellerID,
			book.Name,
			book.Author,
			book.Description,
			book.Publication,
			book.PublicationYear,
			book.Quantity,
			int64(book.Price),
			nullString(book.Image),
			nullString(book.ImageBlurHash),
			boolToInt(book.IsVerified),
		)
		if err != nil {
			return uniqueViolation(err)
		}
		return replaceBookGenres(ctx, tx, book.ID, book.GenreIDs())
	})
}

// GetBook retrieves a book with its genres.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books b WHERE b.id = ?`, id)
	book, err := scanBook(row)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.attachGenres(ctx, []*domain.Book{book}); err != nil {
		return nil, err
	}
	return book, nil
}

// GetBooksByIDs returns the books that exist among ids, in the order of ids.
func (s *Store) GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books b WHERE b.id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Book, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}
	ordered := make([]*domain.Book, 0, len(found))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
		}
	}
	return ordered, nil
}

// UpdateBook replaces the editable fields and the genre set. Seller,
// created_at and the verification flag are not touched.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE books SET
				updated_at = ?,
				name = ?,
				author = ?,
				description = ?,
				publication = ?,
				publication_year = ?,
				quantity = ?,
				price_cents = ?,
				image = ?,
				image_blurhash = ?
			WHERE id = ?`,
			formatTime(book.UpdatedAt),
			book.Name,
			book.Author,
			book.Description,
			book.Publication,
			book.PublicationYear,
			book.Quantity,
			int64(book.Price),
			nullString(book.Image),
			nullString(book.ImageBlurHash),
			book.ID,
		)
		if err != nil {
			return err
		}
		if err := checkAffected(result); err != nil {
			return err
		}
		return replaceBookGenres(ctx, tx, book.ID, book.GenreIDs())
	})
}

// SetBookVerified sets the moderation flag.
func (s *Store) SetBookVerified(ctx context.Context, id string, verified bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE books SET is_verified = ? WHERE id = ?`, boolToInt(verified), id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// DeleteBook removes a book. Comments and genre links go with it via ON DELETE CASCADE.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// ListBooks returns one page of books, newest first.
func (s *Store) ListBooks(ctx context.Context, filter store.BookFilter, params store.PageParams) (*store.Page[*domain.Book], error) {
	params.Normalize()

	var (
		where []string
		args  []any
	)
	if filter.Verified != nil {
		where = append(where, "b.is_verified = ?")
		args = append(args, boolToInt(*filter.Verified))
	}
	if filter.SellerID != "" {
		where = append(where, "b.seller_id = ?")
		args = append(args, filter.SellerID)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	page := &store.Page[*domain.Book]{Page: params.Page, PageSize: params.PageSize}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books b`+clause, args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}
	if params.Offset() >= page.Total {
		page.Items = []*domain.Book{}
		return page, nil
	}

	books, err := s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books b`+clause+
			` ORDER BY b.created_at DESC, b.rowid DESC LIMIT ? OFFSET ?`,
		append(args, params.PageSize, params.Offset())...)
	if err != nil {
		return nil, err
	}
	page.Items = books
	return page, nil
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		books = append(books, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachGenres(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// attachGenres loads the genres of all books with one query.
func (s *Store) attachGenres(ctx context.Context, books []*domain.Book) error {
	if len(books) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Book, len(books))
	ids := make([]string, len(books))
	for i, b := range books {
		b.Genres = []domain.Genre{}
		byID[b.ID] = b
		ids[i] = b.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT bg.book_id, g.id, g.name, g.slug, g.created_at
		FROM book_genres bg
		JOIN genres g ON g.id = bg.genre_id
		WHERE bg.book_id IN (`+placeholders(len(ids))+`)
		ORDER BY bg.book_id, bg.position, g.name`,
		stringArgs(ids)...)
	if err != nil {
		return fmt.Errorf("load book genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookID    string
			g         domain.Genre
			createdAt string
		)
		if err := rows.Scan(&bookID, &g.ID, &g.Name, &g.Slug, &createdAt); err != nil {
			return err
		}
		if g.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if b, ok := byID[bookID]; ok {
			b.Genres = append(b.Genres, g)
		}
	}
	return rows.Err()
}

func replaceBookGenres(ctx context.Context, tx *sql.Tx, bookID string, genreIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("clear book genres: %w", err)
	}
	for i, genreID := range genreIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO book_genres (book_id, genre_id, position) VALUES (?, ?, ?)`,
			bookID, genreID, i)
		if err != nil {
			return fmt.Errorf("link genre %s: %w", genreID, err)
		}
	}
	return nil
}
