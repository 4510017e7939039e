// Package credstore implements the durable, encrypted key-value store the
// client uses for the token pair (and, when configured, the onboarding step).
// Values are sealed with AES-GCM under a key derived from a device secret, so
// the on-disk database never contains plaintext credentials.
package credstore

import "context"

// Store is durable key-value persistence for small secrets. Get returns
// (nil, nil) when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
