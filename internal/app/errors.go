package app

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// notFound wraps ErrNotFound with the entity kind and its id path.
func notFound(kind string, ids ...string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, strings.Join(ids, "/"))
}

// alreadyExists wraps ErrAlreadyExists with the entity kind and its id path.
func alreadyExists(kind string, ids ...string) error {
	return fmt.Errorf("%w: %s %s", ErrAlreadyExists, kind, strings.Join(ids, "/"))
}
