package app

import "context"

// Persister is durable key/document storage for the store's state mirror.
// LoadDocument returns ErrNotFound when nothing is stored under key.
type Persister interface {
	LoadDocument(ctx context.Context, key string) ([]byte, error)
	SaveDocument(ctx context.Context, key string, body []byte) error
}
