package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
)

// userColumns must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, username, password_hash,
	first_name, last_name, father_name, email, phone_number, avatar_image,
	is_superuser, is_active, last_login_at`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u           domain.User
		createdAt   string
		updatedAt   string
		avatar      sql.NullString
		isSuperuser int
		isActive    int
		lastLoginAt sql.NullString
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.FatherName,
		&u.Email,
		&u.PhoneNumber,
		&avatar,
		&isSuperuser,
		&isActive,
		&lastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if u.LastLoginAt, err = parseNullableTime(lastLoginAt); err != nil {
		return nil, err
	}

	u.AvatarImage = avatar.String
	u.IsSuperuser = isSuperuser != 0
	u.IsActive = isActive != 0

	return &u, nil
}

func insertUser(ctx context.Context, q querier, user *domain.User) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.FatherName,
		user.Email,
		user.PhoneNumber,
		nullString(user.AvatarImage),
		boolToInt(user.IsSuperuser),
		boolToInt(user.IsActive),
		nullTimeString(user.LastLoginAt),
	)
	return uniqueViolation(err)
}

// CreateUser inserts a new user.
// Returns store.ErrAlreadyExists, with Field set, on a duplicate username or phone number.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return insertUser(ctx, s.db, user)
}

// CreateUserWithSession inserts a user and its first session in one transaction.
// Either both rows exist afterwards or neither does.
func (s *Store) CreateUserWithSession(ctx context.Context, user *domain.User, session *domain.Session) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		if err := insertSession(ctx, tx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// GetUserByPhone retrieves a user by normalized phone number.
func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE phone_number = ?`, phone)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// UpdateUser rewrites every mutable column. created_at is left alone.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			updated_at = ?,
			username = ?,
			password_hash = ?,
			first_name = ?,
			last_name = ?,
			father_name = ?,
			email = ?,
			phone_number = ?,
			avatar_image = ?,
			is_superuser = ?,
			is_active = ?,
			last_login_at = ?
		WHERE id = ?`,
		formatTime(user.UpdatedAt),
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.FatherName,
		user.Email,
		user.PhoneNumber,
		nullString(user.AvatarImage),
		boolToInt(user.IsSuperuser),
		boolToInt(user.IsActive),
		nullTimeString(user.LastLoginAt),
		user.ID,
	)
	if err != nil {
		return uniqueViolation(err)
	}
	return checkAffected(result)
}

// CountUsers returns the number of accounts.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

