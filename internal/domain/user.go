package domain

import (
	"strings"
	"time"
)

// User is a marketplace account. Sellers, commenters and moderators are all users;
// moderators have IsSuperuser set.
type User struct {
	Record
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	FatherName   string     `json:"father_name,omitempty"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phone_number"`
	AvatarImage  string     `json:"avatar_image,omitempty"`
	IsSuperuser  bool       `json:"is_superuser"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// FullName joins last, first and father name, skipping empty parts.
func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.LastName, u.FirstName, u.FatherName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// DisplayName is the full name, or the username when no name parts are set.
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}

// Initials returns up to two uppercase letters for avatar placeholders.
func (u *User) Initials() string {
	var out []rune
	for _, p := range []string{u.FirstName, u.LastName} {
		for _, r := range p {
			out = append(out, r)
			break
		}
	}
	if len(out) == 0 {
		for _, r := range u.Username {
			out = append(out, r)
			break
		}
	}
	return strings.ToUpper(string(out))
}
