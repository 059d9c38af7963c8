package domain

import (
	"strings"
	"time"
)

// User is a locally registered account. Password is stored and compared as plaintext;
// this is a known non-production authentication model, not a security boundary.
type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	CreatedAt time.Time
}

// UserInput holds write-time values for NewUser.
type UserInput struct {
	ID       string
	Email    string
	Password string
	Name     string
}

// NewUser validates input and constructs a user.
func NewUser(in UserInput, now time.Time) (User, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.ID == "" {
		return User{}, ErrInvalidID
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return User{}, ErrInvalidEmail
	}
	if in.Password == "" {
		return User{}, ErrInvalidPassword
	}
	return User{
		ID:        in.ID,
		Email:     in.Email,
		Password:  in.Password,
		Name:      in.Name,
		CreatedAt: now.UTC(),
	}, nil
}

// Matches reports whether the credentials match exactly.
func (u User) Matches(email, password string) bool {
	return u.Email == email && u.Password == password
}

// DisplayName returns the name, falling back to the email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
