package app

import (
	"github.com/evanschultz/achiever/internal/domain"
)

// RegisterUser stamps CreatedAt, appends the user and signs them in.
// Emails are not checked for uniqueness; registering the same email twice is accepted.
// The ID is stored as given, so an empty ID is kept and still loads back.
func (s *Store) RegisterUser(user domain.User) domain.User {
	user.CreatedAt = s.clock().UTC()
	_ = s.apply("register_user", func(st State) (State, error) {
		st.Users = appendCopy(st.Users, user)
		current := user
		st.CurrentUser = &current
		return st, nil
	})
	return user
}

// SignIn looks up a user by exact email and plaintext password. On a match the user
// becomes current; otherwise the current user is left as is and false is returned.
// Unknown emails and wrong passwords are indistinguishable.
func (s *Store) SignIn(email, password string) (domain.User, bool) {
	var matched domain.User
	err := s.apply("sign_in", func(st State) (State, error) {
		for _, user := range st.Users {
			if user.Matches(email, password) {
				matched = user
				st.CurrentUser = &matched
				return st, nil
			}
		}
		return st, notFound("user", email)
	})
	if err != nil {
		return domain.User{}, false
	}
	return matched, true
}

// SignOut clears the current user.
func (s *Store) SignOut() {
	_ = s.apply("sign_out", func(st State) (State, error) {
		st.CurrentUser = nil
		return st, nil
	})
}

// SetCurrentUser replaces the current user directly; nil signs out.
func (s *Store) SetCurrentUser(user *domain.User) {
	_ = s.apply("set_current_user", func(st State) (State, error) {
		if user == nil {
			st.CurrentUser = nil
			return st, nil
		}
		current := *user
		st.CurrentUser = &current
		return st, nil
	})
}
