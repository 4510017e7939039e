package refreshtokens

import (
	"context"
	"time"
)

// RefreshToken is the stored half of a refresh credential. The token value
// itself is opaque; expiry is enforced at lookup time by the service.
type RefreshToken struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID string) error
}
