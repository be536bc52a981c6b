package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

// commentColumns joins the author and book for display names.
const commentColumns = `c.id, c.created_at, c.updated_at, c.book_id, c.author_id,
	c.email, c.text, c.is_verified,
	COALESCE(NULLIF(TRIM(u.last_name || ' ' || u.first_name), ''), u.username, ''),
	COALESCE(b.name, '')`

const commentFrom = ` FROM comments c
	LEFT JOIN users u ON u.id = c.author_id
	LEFT JOIN books b ON b.id = c.book_id`

func scanComment(scanner interface{ Scan(dest ...any) error }) (*domain.Comment, error) {
	var (
		c          domain.Comment
		createdAt  string
		updatedAt  string
		authorID   sql.NullString
		isVerified int
	)

	err := scanner.Scan(
		&c.ID,
		&createdAt,
		&updatedAt,
		&c.BookID,
		&authorID,
		&c.Email,
		&c.Text,
		&isVerified,
		&c.AuthorName,
		&c.BookName,
	)
	if err != nil {
		return nil, err
	}

	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	c.AuthorID = authorID.String
	c.IsVerified = isVerified != 0

	return &c, nil
}

// CreateComment inserts a comment. The book must exist.
func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, created_at, updated_at, book_id, author_id, email, text, is_verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		formatTime(comment.CreatedAt),
		formatTime(comment.UpdatedAt),
		comment.BookID,
		nullString(comment.AuthorID),
		comment.Email,
		comment.Text,
		boolToInt(comment.IsVerified),
	)
	if err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		return store.ErrNotFound.WithMessage("book not found").WithCause(err)
	}
	return uniqueViolation(err)
}

// GetComment retrieves a comment by ID.
func (s *Store) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+commentColumns+commentFrom+` WHERE c.id = ?`, id)
	c, err := scanComment(row)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// UpdateComment rewrites the text and email. Book, author and flag stay as they are.
func (s *Store) UpdateComment(ctx context.Context, comment *domain.Comment) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE comments SET updated_at = ?, email = ?, text = ? WHERE id = ?`,
		formatTime(comment.UpdatedAt), comment.Email, comment.Text, comment.ID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// SetCommentVerified sets the moderation flag.
func (s *Store) SetCommentVerified(ctx context.Context, id string, verified bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE comments SET is_verified = ? WHERE id = ?`, boolToInt(verified), id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// ListComments returns comments matching filter. Comments of one book come
// oldest first; cross-book listings come newest first.
func (s *Store) ListComments(ctx context.Context, filter store.CommentFilter) ([]*domain.Comment, error) {
	var (
		where []string
		args  []any
	)
	if filter.BookID != "" {
		where = append(where, "c.book_id = ?")
		args = append(args, filter.BookID)
	}
	if filter.Verified != nil {
		where = append(where, "c.is_verified = ?")
		args = append(args, boolToInt(*filter.Verified))
	}

	query := `SELECT ` + commentColumns + commentFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.BookID != "" {
		query += " ORDER BY c.created_at ASC, c.rowid ASC"
	} else {
		query += " ORDER BY c.created_at DESC, c.rowid DESC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
