// Package tokens provides the logout blacklist: revoked JWTs are held
// in Redis until they would have expired anyway.
package tokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "rigforge/internal/errors"
)

const keyPrefix = "rigforge:blacklist:"

// Blacklist stores revoked token digests in Redis with a TTL.
type Blacklist struct {
	client *redis.Client
}

// NewBlacklist connects to Redis at addr.
func NewBlacklist(addr, password string) *Blacklist {
	return &Blacklist{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// NewBlacklistWithClient wraps an existing client (used by tests with
// miniredis).
func NewBlacklistWithClient(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

// hashToken returns the SHA-256 hex digest of a token string. Only the
// digest is stored so a dump of the blacklist never leaks live tokens.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// Revoke blacklists a token for ttl. A non-positive ttl means the
// token is already expired and there is nothing to store.
func (b *Blacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, keyPrefix+hashToken(token), "1", ttl).Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// IsRevoked reports whether the token has been blacklisted.
func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := b.client.Get(ctx, keyPrefix+hashToken(token)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return true, nil
}

// Close releases the underlying Redis connection.
func (b *Blacklist) Close() error {
	return b.client.Close()
}
