// Package kvstore persists small string values such as the shopper's cart id,
// locale and customer token.
package kvstore

import (
	"context"
	"strings"
)

// Store is a string key-value store. Get returns an ErrNotFound AppError for
// missing or expired keys; Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Key namespaces name under a session id: "session:<id>:<name>".
func Key(sessionID, name string) string {
	return strings.Join([]string{"session", sessionID, name}, ":")
}
